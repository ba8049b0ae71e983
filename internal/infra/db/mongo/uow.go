package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"driveshare/internal/app/uow"
	domainbooking "driveshare/internal/domain/booking"
	domaincar "driveshare/internal/domain/car"
	domainledger "driveshare/internal/domain/ledger"
	domainuser "driveshare/internal/domain/user"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	CarRepo     domaincar.Repository
	BookingRepo domainbooking.Repository
	UserRepo    domainuser.Repository
	LedgerRepo  domainledger.Repository
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		db:       f.DB,
		session:  session,
		cars:     f.CarRepo,
		bookings: f.BookingRepo,
		users:    f.UserRepo,
		ledger:   f.LedgerRepo,
	}, nil
}

type Unit struct {
	db      *mongo.Database
	session mongo.Session

	cars     domaincar.Repository
	bookings domainbooking.Repository
	users    domainuser.Repository
	ledger   domainledger.Repository
}

func (u *Unit) Cars() domaincar.Repository         { return u.cars }
func (u *Unit) Bookings() domainbooking.Repository { return u.bookings }
func (u *Unit) Users() domainuser.Repository       { return u.users }
func (u *Unit) Ledger() domainledger.Repository    { return u.ledger }

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext makes the Mongo session visible to downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}
