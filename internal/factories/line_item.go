// Package factories builds realistic fixture data for tests and the demo
// session.
package factories

import (
	"math/rand"

	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"
	"github.com/platefull/storefront/internal/models"
)

var fake = faker.New()

type LineItemFactory struct{}

// CreateLineItem returns a plausible cart line with zero to three options.
func (lf *LineItemFactory) CreateLineItem() models.LineItem {
	optionCount := fake.IntBetween(0, 3)
	options := make([]models.DishOption, 0, optionCount)
	for i := 0; i < optionCount; i++ {
		options = append(options, models.DishOption{
			Name:  generateRandomOptionName(),
			Price: fake.Float64(2, 0, 4),
		})
	}
	return models.LineItem{
		DishID:      cuid.New(),
		DishName:    generateRandomDishName(),
		Quantity:    fake.IntBetween(1, 3),
		UnitPrice:   fake.Float64(2, 5, 30),
		MinQuantity: 1,
		MaxQuantity: 10,
		Options:     options,
	}
}

// CreateLineItems returns n independent lines.
func (lf *LineItemFactory) CreateLineItems(n int) []models.LineItem {
	items := make([]models.LineItem, n)
	for i := range items {
		items[i] = lf.CreateLineItem()
	}
	return items
}

func generateRandomDishName() string {
	dishes := []string{
		"Margherita Pizza", "Chicken Tikka Masala", "Classic Cheeseburger",
		"Pad Thai", "Caesar Salad", "Sushi Roll", "Falafel Wrap",
		"Spaghetti Carbonara", "Beef Madras", "Ramen",
	}
	return dishes[rand.Intn(len(dishes))]
}

func generateRandomOptionName() string {
	options := []string{
		"extra cheese", "bacon", "jalapenos", "double portion",
		"gluten-free base", "garlic sauce", "no onion", "extra spicy",
	}
	return options[rand.Intn(len(options))]
}
