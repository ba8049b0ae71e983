package pricing

import (
	"context"
	"time"

	"driveshare/internal/app/policies"
	domainpricing "driveshare/internal/domain/pricing"
)

// CapPolicy anchors the vehicle-age factor to the injected clock, so the
// same listing computed in a test and in production agrees on "now".
type CapPolicy struct {
	Clock func() time.Time
}

func NewCapPolicy(clock func() time.Time) *CapPolicy {
	if clock == nil {
		clock = time.Now
	}
	return &CapPolicy{Clock: clock}
}

func (p *CapPolicy) Compute(ctx context.Context, attrs domainpricing.VehicleAttrs) (domainpricing.PriceCap, error) {
	if err := ctx.Err(); err != nil {
		return domainpricing.PriceCap{}, err
	}
	year := p.Clock().UTC().Year()
	return domainpricing.ComputeMaxPrice(attrs, year), nil
}

var _ policies.PriceCapPort = (*CapPolicy)(nil)
