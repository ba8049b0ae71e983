package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaincar "driveshare/internal/domain/car"
	domainledger "driveshare/internal/domain/ledger"
	"driveshare/internal/domain/shared/money"
)

type LedgerRepository struct {
	col *mongo.Collection
}

func NewLedgerRepository(db *mongo.Database) *LedgerRepository {
	col := db.Collection("ledger_transactions")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "renter_id", Value: 1}, {Key: "created_at", Value: -1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &LedgerRepository{col: col}
}

func (r *LedgerRepository) Append(ctx context.Context, tx domainledger.Transaction) error {
	_, err := r.col.InsertOne(ctx, newTransactionDocument(tx))
	return err
}

func (r *LedgerRepository) ListByUser(ctx context.Context, userID string) ([]domainledger.Transaction, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"renter_id": userID},
		bson.M{"owner_id": userID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var result []domainledger.Transaction
	for cursor.Next(ctx) {
		var doc transactionDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		result = append(result, doc.toTransaction())
	}
	return result, cursor.Err()
}

type transactionDocument struct {
	ID        string `bson:"_id"`
	BookingID string `bson:"booking_id"`
	CarID     string `bson:"car_id"`
	RenterID  string `bson:"renter_id"`
	OwnerID   string `bson:"owner_id"`
	Kind      string `bson:"kind"`
	Amount    int64  `bson:"amount"`
	Currency  string `bson:"currency"`
	Method    string `bson:"method"`
	CreatedAt int64  `bson:"created_at"`
}

func newTransactionDocument(tx domainledger.Transaction) transactionDocument {
	return transactionDocument{
		ID:        string(tx.ID),
		BookingID: tx.BookingID,
		CarID:     string(tx.CarID),
		RenterID:  tx.RenterID,
		OwnerID:   string(tx.OwnerID),
		Kind:      string(tx.Kind),
		Amount:    tx.Amount.Amount,
		Currency:  tx.Amount.Currency,
		Method:    tx.Method,
		CreatedAt: tx.CreatedAt.UnixMilli(),
	}
}

func (d transactionDocument) toTransaction() domainledger.Transaction {
	return domainledger.Transaction{
		ID:        domainledger.TransactionID(d.ID),
		BookingID: d.BookingID,
		CarID:     domaincar.ID(d.CarID),
		RenterID:  d.RenterID,
		OwnerID:   domaincar.OwnerID(d.OwnerID),
		Kind:      domainledger.Kind(d.Kind),
		Amount:    money.Money{Amount: d.Amount, Currency: d.Currency},
		Method:    d.Method,
		CreatedAt: timestampToTime(d.CreatedAt),
	}
}

var _ domainledger.Repository = (*LedgerRepository)(nil)
