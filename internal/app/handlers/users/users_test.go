package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainledger "driveshare/internal/domain/ledger"
	domainuser "driveshare/internal/domain/user"
	"driveshare/internal/domain/shared/money"
	"driveshare/internal/infra/storage/memory"
)

var baseNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return baseNow }

func newFactory() (memory.Factory, *memory.LedgerRepository) {
	ledger := memory.NewLedgerRepository()
	return memory.Factory{
		CarRepo:     memory.NewCarRepository(),
		BookingRepo: memory.NewBookingRepository(),
		UserRepo:    memory.NewUserRepository(),
		LedgerRepo:  ledger,
	}, ledger
}

func TestRegisterUser(t *testing.T) {
	factory, _ := newFactory()
	h := &RegisterUserHandler{UoWFactory: factory, Clock: fixedClock}
	ctx := context.Background()

	result, err := h.Handle(ctx, RegisterUserCommand{
		CommandID: "user-1",
		Email:     "Priya@Example.com",
		Name:      "Priya",
		Phone:     "+91 98765 43210",
	})
	require.NoError(t, err)
	assert.Equal(t, "user-1", result.User.ID)
	assert.Equal(t, "priya@example.com", result.User.Email, "email is normalized")
	assert.Equal(t, []string{string(domainuser.RoleRenter)}, result.User.Roles, "renter is the default role")
}

func TestRegisterUserDuplicateEmail(t *testing.T) {
	factory, _ := newFactory()
	h := &RegisterUserHandler{UoWFactory: factory, Clock: fixedClock}
	ctx := context.Background()

	_, err := h.Handle(ctx, RegisterUserCommand{CommandID: "user-1", Email: "a@example.com", Name: "A"})
	require.NoError(t, err)

	_, err = h.Handle(ctx, RegisterUserCommand{CommandID: "user-2", Email: "A@Example.com", Name: "B"})
	assert.ErrorIs(t, err, domainuser.ErrEmailAlreadyUsed)
}

func TestRegisterUserInvalidRole(t *testing.T) {
	factory, _ := newFactory()
	h := &RegisterUserHandler{UoWFactory: factory, Clock: fixedClock}

	_, err := h.Handle(context.Background(), RegisterUserCommand{
		CommandID: "user-1", Email: "a@example.com", Name: "A", Roles: []string{"admin"},
	})
	assert.ErrorIs(t, err, domainuser.ErrInvalidRole)
}

func TestGetUser(t *testing.T) {
	factory, _ := newFactory()
	ctx := context.Background()
	reg := &RegisterUserHandler{UoWFactory: factory, Clock: fixedClock}
	_, err := reg.Handle(ctx, RegisterUserCommand{CommandID: "user-1", Email: "a@example.com", Name: "A"})
	require.NoError(t, err)

	h := &GetUserHandler{UoWFactory: factory}
	view, err := h.Handle(ctx, GetUserQuery{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, "A", view.Name)

	_, err = h.Handle(ctx, GetUserQuery{UserID: "missing"})
	assert.ErrorIs(t, err, domainuser.ErrNotFound)
}

func TestUserTransactions(t *testing.T) {
	factory, ledger := newFactory()
	ctx := context.Background()

	tx, err := domainledger.NewTransaction(
		"tx-1", "bk-1", "car-1", "renter-1", "owner-1",
		domainledger.KindRental, money.Rupees(3000), "cod", baseNow,
	)
	require.NoError(t, err)
	require.NoError(t, ledger.Append(ctx, tx))

	h := &UserTransactionsHandler{UoWFactory: factory}

	asRenter, err := h.Handle(ctx, UserTransactionsQuery{UserID: "renter-1"})
	require.NoError(t, err)
	require.Len(t, asRenter.Items, 1)
	assert.Equal(t, string(domainledger.KindRental), asRenter.Items[0].Kind)
	assert.Equal(t, int64(3000), asRenter.Items[0].Amount.Amount)

	asOwner, err := h.Handle(ctx, UserTransactionsQuery{UserID: "owner-1"})
	require.NoError(t, err)
	assert.Len(t, asOwner.Items, 1)

	uninvolved, err := h.Handle(ctx, UserTransactionsQuery{UserID: "someone-else"})
	require.NoError(t, err)
	assert.Empty(t, uninvolved.Items)
}
