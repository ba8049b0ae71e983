package users

import (
	"context"

	"driveshare/internal/app/dto"
	handlersupport "driveshare/internal/app/handlers/support"
	"driveshare/internal/app/queries"
	"driveshare/internal/app/uow"
	domainuser "driveshare/internal/domain/user"
)

const (
	getUserKey          = "users.get"
	userTransactionsKey = "users.transactions"
)

type GetUserQuery struct {
	UserID string
}

func (q GetUserQuery) Key() string { return getUserKey }

type GetUserHandler struct {
	UoWFactory uow.Factory
}

func (h *GetUserHandler) Handle(ctx context.Context, q GetUserQuery) (dto.UserView, error) {
	var zero dto.UserView
	unit, ctx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return zero, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	usr, err := unit.Users().ByID(ctx, domainuser.ID(q.UserID))
	if err != nil {
		return zero, err
	}
	return dto.MapUser(usr), nil
}

type UserTransactionsQuery struct {
	UserID string
}

func (q UserTransactionsQuery) Key() string { return userTransactionsKey }

// UserTransactionsHandler lists ledger lines where the user was either
// side of the payment.
type UserTransactionsHandler struct {
	UoWFactory uow.Factory
}

func (h *UserTransactionsHandler) Handle(ctx context.Context, q UserTransactionsQuery) (dto.TransactionCollection, error) {
	unit, ctx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.TransactionCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	items, err := unit.Ledger().ListByUser(ctx, q.UserID)
	if err != nil {
		return dto.TransactionCollection{}, err
	}
	return dto.MapTransactions(items), nil
}

var _ queries.Handler[GetUserQuery, dto.UserView] = (*GetUserHandler)(nil)
var _ queries.Handler[UserTransactionsQuery, dto.TransactionCollection] = (*UserTransactionsHandler)(nil)
