package models

// DishOption is a single selectable add-on for a dish (e.g. extra topping).
type DishOption struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// LineItem is one dish + option-set combination currently held by the remote
// cart. Two entries may share a dish ID and still be distinct units when their
// option sets differ.
type LineItem struct {
	DishID      string       `json:"dish_id"`
	DishName    string       `json:"dish_name"`
	Quantity    int          `json:"quantity"`
	UnitPrice   float64      `json:"unit_price"`
	MinQuantity int          `json:"min_quantity"`
	MaxQuantity int          `json:"max_quantity"` // 0 means unbounded
	Options     []DishOption `json:"options"`
}

// ClampQuantity bounds q to the item's allowed quantity range.
func (li LineItem) ClampQuantity(q int) int {
	minQty := li.MinQuantity
	if minQty < 1 {
		minQty = 1
	}
	if q < minQty {
		return minQty
	}
	if li.MaxQuantity > 0 && q > li.MaxQuantity {
		return li.MaxQuantity
	}
	return q
}
