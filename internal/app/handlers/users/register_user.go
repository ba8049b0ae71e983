package users

import (
	"context"
	"errors"
	"time"

	"driveshare/internal/app/commands"
	"driveshare/internal/app/dto"
	handlersupport "driveshare/internal/app/handlers/support"
	"driveshare/internal/app/middleware"
	"driveshare/internal/app/uow"
	domainuser "driveshare/internal/domain/user"
)

const registerUserKey = "users.register"

type RegisterUserCommand struct {
	CommandID string
	Email     string
	Name      string
	Phone     string
	Roles     []string
}

func (c RegisterUserCommand) Key() string { return registerUserKey }

func (c RegisterUserCommand) Validate() error {
	if c.Email == "" {
		return domainuser.ErrEmailRequired
	}
	if c.Name == "" {
		return domainuser.ErrNameRequired
	}
	return nil
}

type RegisterUserResult struct {
	User dto.UserView `json:"user"`
}

type RegisterUserHandler struct {
	UoWFactory uow.Factory
	Clock      func() time.Time
}

func (h *RegisterUserHandler) Handle(ctx context.Context, cmd RegisterUserCommand) (*RegisterUserResult, error) {
	unit, ctx, finish, err := handlersupport.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	result, err := h.handle(ctx, unit, cmd)
	if ferr := finish(err); ferr != nil {
		return nil, ferr
	}
	return result, nil
}

func (h *RegisterUserHandler) handle(ctx context.Context, unit uow.UnitOfWork, cmd RegisterUserCommand) (*RegisterUserResult, error) {
	existing, err := unit.Users().ByEmail(ctx, cmd.Email)
	if err != nil && !errors.Is(err, domainuser.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domainuser.ErrEmailAlreadyUsed
	}

	now := time.Now().UTC()
	if h.Clock != nil {
		now = h.Clock().UTC()
	}
	roles := make([]domainuser.Role, 0, len(cmd.Roles))
	for _, r := range cmd.Roles {
		roles = append(roles, domainuser.Role(r))
	}
	usr, err := domainuser.New(domainuser.CreateParams{
		ID:        domainuser.ID(cmd.CommandID),
		Email:     cmd.Email,
		Name:      cmd.Name,
		Phone:     cmd.Phone,
		Roles:     roles,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Users().Save(ctx, usr); err != nil {
		return nil, err
	}
	view := dto.MapUser(usr)
	return &RegisterUserResult{User: view}, nil
}

var _ commands.Handler[RegisterUserCommand, *RegisterUserResult] = (*RegisterUserHandler)(nil)
var _ middleware.SelfValidating = RegisterUserCommand{}
