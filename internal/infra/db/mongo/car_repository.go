package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaincar "driveshare/internal/domain/car"
	"driveshare/internal/domain/shared/money"
)

type CarRepository struct {
	col *mongo.Collection
}

func NewCarRepository(db *mongo.Database) *CarRepository {
	col := db.Collection("agg_car")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "location.city", Value: 1}, {Key: "price_per_day", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &CarRepository{col: col}
}

func (r *CarRepository) ByID(ctx context.Context, id domaincar.ID) (*domaincar.Car, error) {
	var doc carDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaincar.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *CarRepository) Save(ctx context.Context, c *domaincar.Car) error {
	doc := newCarDocument(c)
	filter := bson.M{"_id": doc.ID, "version": c.Version}
	doc.Version = c.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	c.Version = doc.Version
	return nil
}

func (r *CarRepository) ByOwner(ctx context.Context, owner domaincar.OwnerID) ([]*domaincar.Car, error) {
	filter := bson.M{"owner_id": string(owner), "removed": false}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, filter, opts)
}

func (r *CarRepository) Search(ctx context.Context, params domaincar.SearchParams) (domaincar.SearchResult, error) {
	opts := params.Normalized()
	filter := bson.M{}
	if !opts.IncludeRemoved {
		filter["removed"] = false
	}
	if opts.Owner != "" {
		filter["owner_id"] = string(opts.Owner)
	}
	if opts.City != "" {
		filter["location.city"] = bson.M{"$regex": "^" + opts.City + "$", "$options": "i"}
	}
	if opts.Transmission != "" {
		filter["transmission"] = string(opts.Transmission)
	}
	if opts.FuelType != "" {
		filter["fuel_type"] = string(opts.FuelType)
	}
	if opts.MinSeats > 0 {
		filter["seats"] = bson.M{"$gte": opts.MinSeats}
	}
	if opts.MaxDailyRate > 0 {
		filter["price_per_day"] = bson.M{"$lte": opts.MaxDailyRate}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return domaincar.SearchResult{}, err
	}
	findOpts := options.Find().
		SetSort(sortFor(opts.Sort)).
		SetSkip(int64(opts.Offset)).
		SetLimit(int64(opts.Limit))
	items, err := r.find(ctx, filter, findOpts)
	if err != nil {
		return domaincar.SearchResult{}, err
	}
	return domaincar.SearchResult{Items: items, Total: int(total)}, nil
}

func (r *CarRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domaincar.Car, error) {
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var result []*domaincar.Car
	for cursor.Next(ctx) {
		var doc carDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		result = append(result, doc.toAggregate())
	}
	return result, cursor.Err()
}

func sortFor(sort domaincar.SearchSort) bson.D {
	switch sort {
	case domaincar.SortByPriceDesc:
		return bson.D{{Key: "price_per_day", Value: -1}, {Key: "created_at", Value: -1}}
	case domaincar.SortByNewest:
		return bson.D{{Key: "created_at", Value: -1}}
	default:
		return bson.D{{Key: "price_per_day", Value: 1}, {Key: "created_at", Value: -1}}
	}
}

type carDocument struct {
	ID           string           `bson:"_id"`
	OwnerID      string           `bson:"owner_id"`
	Brand        string           `bson:"brand"`
	Model        string           `bson:"model"`
	Year         int              `bson:"year"`
	Plate        string           `bson:"plate"`
	FuelType     string           `bson:"fuel_type"`
	Transmission string           `bson:"transmission"`
	Seats        int              `bson:"seats"`
	PricePerDay  int64            `bson:"price_per_day"`
	Currency     string           `bson:"currency"`
	Available    bool             `bson:"available"`
	Location     locationDocument `bson:"location"`
	Removed      bool             `bson:"removed"`
	CreatedAt    int64            `bson:"created_at"`
	UpdatedAt    int64            `bson:"updated_at"`
	Version      int64            `bson:"version"`
}

type locationDocument struct {
	City    string `bson:"city"`
	State   string `bson:"state,omitempty"`
	Area    string `bson:"area,omitempty"`
	Address string `bson:"address,omitempty"`
}

func newCarDocument(c *domaincar.Car) carDocument {
	return carDocument{
		ID:           string(c.ID),
		OwnerID:      string(c.Owner),
		Brand:        c.Brand,
		Model:        c.Model,
		Year:         c.Year,
		Plate:        c.Plate,
		FuelType:     string(c.FuelType),
		Transmission: string(c.Transmission),
		Seats:        c.Seats,
		PricePerDay:  c.PricePerDay.Amount,
		Currency:     c.PricePerDay.Currency,
		Available:    c.Available,
		Location: locationDocument{
			City:    c.Location.City,
			State:   c.Location.State,
			Area:    c.Location.Area,
			Address: c.Location.Address,
		},
		Removed:   c.Removed,
		CreatedAt: c.CreatedAt.UnixMilli(),
		UpdatedAt: c.UpdatedAt.UnixMilli(),
		Version:   c.Version,
	}
}

func (d carDocument) toAggregate() *domaincar.Car {
	return &domaincar.Car{
		ID:           domaincar.ID(d.ID),
		Owner:        domaincar.OwnerID(d.OwnerID),
		Brand:        d.Brand,
		Model:        d.Model,
		Year:         d.Year,
		Plate:        d.Plate,
		FuelType:     domaincar.FuelType(d.FuelType),
		Transmission: domaincar.Transmission(d.Transmission),
		Seats:        d.Seats,
		PricePerDay:  money.Money{Amount: d.PricePerDay, Currency: d.Currency},
		Available:    d.Available,
		Location: domaincar.Location{
			City:    d.Location.City,
			State:   d.Location.State,
			Area:    d.Location.Area,
			Address: d.Location.Address,
		},
		Removed:   d.Removed,
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
		Version:   d.Version,
	}
}

var _ domaincar.Repository = (*CarRepository)(nil)
