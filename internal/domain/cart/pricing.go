// internal/domain/cart/pricing.go
package cart

const (
	// DefaultFreeShippingThreshold is the subtotal at which shipping becomes free
	DefaultFreeShippingThreshold int64 = 1000
	// DefaultFlatShippingRate is charged below the threshold
	DefaultFlatShippingRate int64 = 99
)

// ShippingPolicy is a two-tier step function over the subtotal
type ShippingPolicy struct {
	FreeThreshold int64
	FlatRate      int64
}

// DefaultShippingPolicy returns the storefront's standard policy
func DefaultShippingPolicy() ShippingPolicy {
	return ShippingPolicy{
		FreeThreshold: DefaultFreeShippingThreshold,
		FlatRate:      DefaultFlatShippingRate,
	}
}

// ComputeShippingCost is free for an empty cart and at or above the threshold
func (p ShippingPolicy) ComputeShippingCost(subtotal int64) int64 {
	if subtotal == 0 || subtotal >= p.FreeThreshold {
		return 0
	}
	return p.FlatRate
}

// ComputeAggregates sums quantities and line totals
func ComputeAggregates(items []LineItem) Aggregates {
	var agg Aggregates
	for _, item := range items {
		agg.ItemCount += item.Quantity
		agg.Subtotal += item.LineTotal()
	}
	return agg
}

// Price builds the full summary for items under policy
func (p ShippingPolicy) Price(items []LineItem) Summary {
	agg := ComputeAggregates(items)
	shipping := p.ComputeShippingCost(agg.Subtotal)

	if items == nil {
		items = []LineItem{}
	}
	return Summary{
		Items:        items,
		ItemCount:    agg.ItemCount,
		Subtotal:     agg.Subtotal,
		ShippingCost: shipping,
		Total:        agg.Subtotal + shipping,
	}
}
