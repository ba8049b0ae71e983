package memory

import (
	"context"
	"errors"

	"driveshare/internal/app/uow"
	domainbooking "driveshare/internal/domain/booking"
	domaincar "driveshare/internal/domain/car"
	domainledger "driveshare/internal/domain/ledger"
	domainuser "driveshare/internal/domain/user"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	CarRepo     domaincar.Repository
	BookingRepo domainbooking.Repository
	UserRepo    domainuser.Repository
	LedgerRepo  domainledger.Repository
}

var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a lightweight transaction boundary. No isolation is
// provided but the abstraction matches the application ports; the
// booking repository's per-car lock covers the one write that needs
// real atomicity.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.CarRepo == nil || f.BookingRepo == nil || f.UserRepo == nil || f.LedgerRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		cars:     f.CarRepo,
		bookings: f.BookingRepo,
		users:    f.UserRepo,
		ledger:   f.LedgerRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
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
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}
