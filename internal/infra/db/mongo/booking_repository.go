package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "driveshare/internal/domain/booking"
	domaincar "driveshare/internal/domain/car"
	"driveshare/internal/domain/shared/money"
	"driveshare/internal/domain/shared/timeslot"
)

var (
	ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")
	ErrSlotLockBusy     = errors.New("mongo: car slot lock busy")
)

const slotLockTTL = 10 * time.Second

type BookingRepository struct {
	col   *mongo.Collection
	locks *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	col := db.Collection("agg_booking")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "car_id", Value: 1}, {Key: "slot.pickup_at", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &BookingRepository{col: col, locks: db.Collection("booking_slot_locks")}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
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
	b.Version = doc.Version
	return nil
}

// InsertIfFree takes a short advisory lock on the car, re-runs the
// overlap query under it and inserts only when the slot is still free.
// Without multi-document transactions this is what closes the race
// between two creates for the same car.
func (r *BookingRepository) InsertIfFree(ctx context.Context, b *domainbooking.Booking) error {
	release, err := r.acquireSlotLock(ctx, b.CarID)
	if err != nil {
		return err
	}
	defer release()

	conflicts, err := r.FindOverlapping(ctx, b.CarID, b.Slot)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		slots := make([]timeslot.Slot, 0, len(conflicts))
		for _, c := range conflicts {
			slots = append(slots, c.Slot)
		}
		return &domainbooking.ConflictError{CarID: b.CarID, Conflicts: slots}
	}

	doc := newBookingDocument(b)
	doc.Version = b.Version + 1
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return err
	}
	b.Version = doc.Version
	return nil
}

// FindOverlapping selects active bookings whose half-open interval
// intersects slot: pickup < slot.dropoff AND dropoff > slot.pickup.
func (r *BookingRepository) FindOverlapping(ctx context.Context, carID domaincar.ID, slot timeslot.Slot) ([]*domainbooking.Booking, error) {
	statuses := domainbooking.ActiveStatuses()
	active := make([]string, 0, len(statuses))
	for _, s := range statuses {
		active = append(active, string(s))
	}
	filter := bson.M{
		"car_id":          string(carID),
		"status":          bson.M{"$in": active},
		"slot.pickup_at":  bson.M{"$lt": slot.DropoffAt.UnixMilli()},
		"slot.dropoff_at": bson.M{"$gt": slot.PickupAt.UnixMilli()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "slot.pickup_at", Value: 1}})
	return r.find(ctx, filter, opts)
}

func (r *BookingRepository) ListByRenter(ctx context.Context, renterID string) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{"renter_id": renterID}, opts)
}

func (r *BookingRepository) ListByOwner(ctx context.Context, ownerID domaincar.OwnerID) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{"owner_id": string(ownerID)}, opts)
}

func (r *BookingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domainbooking.Booking, error) {
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var result []*domainbooking.Booking
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		result = append(result, doc.toAggregate())
	}
	return result, cursor.Err()
}

func (r *BookingRepository) acquireSlotLock(ctx context.Context, carID domaincar.ID) (func(), error) {
	now := time.Now().UTC()
	filter := bson.M{
		"_id":        string(carID),
		"expires_at": bson.M{"$lt": now.UnixMilli()},
	}
	update := bson.M{"$set": bson.M{"expires_at": now.Add(slotLockTTL).UnixMilli()}}
	opts := options.Update().SetUpsert(true)
	if _, err := r.locks.UpdateOne(ctx, filter, update, opts); err != nil {
		// Upsert hits the _id unique index when another writer holds
		// an unexpired lock for this car.
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrSlotLockBusy
		}
		return nil, err
	}
	release := func() {
		_, _ = r.locks.DeleteOne(context.Background(), bson.M{"_id": string(carID)})
	}
	return release, nil
}

type bookingDocument struct {
	ID           string              `bson:"_id"`
	CarID        string              `bson:"car_id"`
	RenterID     string              `bson:"renter_id"`
	OwnerID      string              `bson:"owner_id"`
	Slot         slotDocument        `bson:"slot"`
	PricePerDay  int64               `bson:"price_per_day"`
	Currency     string              `bson:"currency"`
	BillableDays int64               `bson:"billable_days"`
	Total        int64               `bson:"total"`
	Status       string              `bson:"status"`
	Method       string              `bson:"payment_method"`
	PayStatus    string              `bson:"payment_status"`
	Completion   *completionDocument `bson:"completion,omitempty"`
	CreatedAt    int64               `bson:"created_at"`
	UpdatedAt    int64               `bson:"updated_at"`
	Version      int64               `bson:"version"`
}

type slotDocument struct {
	PickupAt  int64 `bson:"pickup_at"`
	DropoffAt int64 `bson:"dropoff_at"`
}

type completionDocument struct {
	ReturnedAt  int64 `bson:"returned_at"`
	LateMinutes int64 `bson:"late_minutes"`
	LateHours   int64 `bson:"late_hours"`
	LateFee     int64 `bson:"late_fee"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	doc := bookingDocument{
		ID:           string(b.ID),
		CarID:        string(b.CarID),
		RenterID:     b.RenterID,
		OwnerID:      string(b.OwnerID),
		Slot:         slotDocument{PickupAt: b.Slot.PickupAt.UnixMilli(), DropoffAt: b.Slot.DropoffAt.UnixMilli()},
		PricePerDay:  b.PricePerDay.Amount,
		Currency:     b.PricePerDay.Currency,
		BillableDays: b.BillableDays,
		Total:        b.Total.Amount,
		Status:       string(b.Status),
		Method:       string(b.Payment.Method),
		PayStatus:    string(b.Payment.Status),
		CreatedAt:    b.CreatedAt.UnixMilli(),
		UpdatedAt:    b.UpdatedAt.UnixMilli(),
		Version:      b.Version,
	}
	if b.Completion != nil {
		doc.Completion = &completionDocument{
			ReturnedAt:  b.Completion.ReturnedAt.UnixMilli(),
			LateMinutes: b.Completion.LateMinutes,
			LateHours:   b.Completion.LateHours,
			LateFee:     b.Completion.LateFee.Amount,
		}
	}
	return doc
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	agg := &domainbooking.Booking{
		ID:       domainbooking.ID(d.ID),
		CarID:    domaincar.ID(d.CarID),
		RenterID: d.RenterID,
		OwnerID:  domaincar.OwnerID(d.OwnerID),
		Slot: timeslot.Slot{
			PickupAt:  timestampToTime(d.Slot.PickupAt),
			DropoffAt: timestampToTime(d.Slot.DropoffAt),
		},
		PricePerDay:  money.Money{Amount: d.PricePerDay, Currency: d.Currency},
		BillableDays: d.BillableDays,
		Total:        money.Money{Amount: d.Total, Currency: d.Currency},
		Status:       domainbooking.Status(d.Status),
		Payment: domainbooking.Payment{
			Method: domainbooking.PaymentMethod(d.Method),
			Status: domainbooking.PaymentStatus(d.PayStatus),
		},
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
		Version:   d.Version,
	}
	if d.Completion != nil {
		agg.Completion = &domainbooking.Completion{
			ReturnedAt:  timestampToTime(d.Completion.ReturnedAt),
			LateMinutes: d.Completion.LateMinutes,
			LateHours:   d.Completion.LateHours,
			LateFee:     money.Money{Amount: d.Completion.LateFee, Currency: d.Currency},
		}
	}
	return agg
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
