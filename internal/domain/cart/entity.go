// internal/domain/cart/entity.go
package cart

// LineItem is one product and size combination in the cart.
// ProductID and Variant together identify the item; UnitPrice is captured when the item is first added.
type LineItem struct {
	ProductID string   `json:"product_id"`
	Variant   string   `json:"size"`
	Name      string   `json:"name"`
	UnitPrice int64    `json:"price"`
	Quantity  int      `json:"quantity"`
	Images    []string `json:"images,omitempty"`
	InStock   bool     `json:"in_stock"`
}

// LineTotal is UnitPrice times Quantity
func (li LineItem) LineTotal() int64 {
	return li.UnitPrice * int64(li.Quantity)
}

func (li LineItem) matches(productID, variant string) bool {
	return li.ProductID == productID && li.Variant == variant
}

// Aggregates are derived from the line items and never stored
type Aggregates struct {
	ItemCount int   `json:"item_count"`
	Subtotal  int64 `json:"subtotal"`
}

// Summary is the priced view of a cart
type Summary struct {
	Items        []LineItem `json:"items"`
	ItemCount    int        `json:"item_count"`
	Subtotal     int64      `json:"subtotal"`
	ShippingCost int64      `json:"shipping_cost"`
	Total        int64      `json:"total"`
}

// EventKind names the mutation that produced an Event
type EventKind string

const (
	EventItemAdded       EventKind = "item_added"
	EventItemRemoved     EventKind = "item_removed"
	EventQuantityUpdated EventKind = "quantity_updated"
	EventCleared         EventKind = "cleared"
)

// Event is delivered to observers after a mutation has been persisted
type Event struct {
	Kind       EventKind
	ProductID  string
	Variant    string
	Items      []LineItem
	Aggregates Aggregates
}

// Observer is notified after every successful cart mutation
type Observer func(Event)

// cloneItems deep copies a line item slice
func cloneItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	for i, item := range items {
		out[i] = item
		if item.Images != nil {
			out[i].Images = append([]string(nil), item.Images...)
		}
	}
	return out
}
