package uow

import (
	"context"

	domainbooking "driveshare/internal/domain/booking"
	domaincar "driveshare/internal/domain/car"
	domainledger "driveshare/internal/domain/ledger"
	domainuser "driveshare/internal/domain/user"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Cars() domaincar.Repository
	Bookings() domainbooking.Repository
	Users() domainuser.Repository
	Ledger() domainledger.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Factory starts unit of work instances.
type Factory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
