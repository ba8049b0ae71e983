package support

import (
	"context"

	"driveshare/internal/app/uow"
)

// BeginReadOnlyUnit reuses a unit of work from the context when the bus
// middleware already opened one, otherwise begins a throwaway read-only
// unit and returns a cleanup that rolls it back.
func BeginReadOnlyUnit(ctx context.Context, factory uow.Factory) (uow.UnitOfWork, context.Context, func(), error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, nil, nil
	}
	if factory == nil {
		return nil, ctx, nil, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, ctx, nil, err
	}
	execCtx := uow.ContextWithUnitOfWork(ctx, unit)
	cleanup := func() { _ = unit.Rollback(execCtx) }
	return unit, execCtx, cleanup, nil
}

// BeginUnit is the writable variant used by command handlers invoked
// outside the transactional bus middleware (tests, composition roots).
// The returned finish func commits on success and rolls back otherwise.
func BeginUnit(ctx context.Context, factory uow.Factory) (uow.UnitOfWork, context.Context, func(err error) error, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, func(err error) error { return err }, nil
	}
	if factory == nil {
		return nil, ctx, nil, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, ctx, nil, err
	}
	execCtx := uow.ContextWithUnitOfWork(ctx, unit)
	finish := func(err error) error {
		if err != nil {
			_ = unit.Rollback(execCtx)
			return err
		}
		return unit.Commit(execCtx)
	}
	return unit, execCtx, finish, nil
}
