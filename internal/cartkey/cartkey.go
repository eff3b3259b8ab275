// Package cartkey derives the identity string for a cart line item. Every
// comparison of "is this the same checkout unit" in the client goes through
// Build: selection lookups, quantity rebuilds, removal matching and
// post-checkout pruning.
package cartkey

import (
	"sort"
	"strconv"
	"strings"

	"github.com/platefull/storefront/internal/models"
)

// Build returns the composite key for a dish and its option set. The key is
// deterministic and order-independent: option sets differing only in insertion
// order collapse to the same key. An empty option set reduces to the dish ID.
func Build(dishID string, options []models.DishOption) string {
	if len(options) == 0 {
		return dishID
	}

	sorted := make([]models.DishOption, len(options))
	copy(sorted, options)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].Price < sorted[j].Price
	})

	parts := make([]string, len(sorted))
	for i, opt := range sorted {
		parts[i] = opt.Name + ":" + strconv.FormatFloat(opt.Price, 'f', -1, 64)
	}
	return dishID + "__" + strings.Join(parts, "|")
}

// ForItem is a convenience wrapper for line items read from the cart service.
func ForItem(item models.LineItem) string {
	return Build(item.DishID, item.Options)
}

// KeySet collects the composite keys of items into a set, used when pruning
// the selection overlay to the live cart contents.
func KeySet(items []models.LineItem) map[string]struct{} {
	keys := make(map[string]struct{}, len(items))
	for _, item := range items {
		keys[ForItem(item)] = struct{}{}
	}
	return keys
}
