package policies

import (
	"context"

	domainpricing "driveshare/internal/domain/pricing"
)

// PriceCapPort computes listing price bounds. Injected rather than called
// statically so the year anchor (and any future market data source) stays
// a composition-root decision.
type PriceCapPort interface {
	Compute(ctx context.Context, attrs domainpricing.VehicleAttrs) (domainpricing.PriceCap, error)
}
