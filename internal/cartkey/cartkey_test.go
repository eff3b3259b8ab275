package cartkey

import (
	"math/rand"
	"testing"

	"github.com/platefull/storefront/internal/models"
)

func TestBuildWithoutOptionsIsDishID(t *testing.T) {
	if got := Build("dish-42", nil); got != "dish-42" {
		t.Errorf("expected bare dish id, got %q", got)
	}
	if got := Build("dish-42", []models.DishOption{}); got != "dish-42" {
		t.Errorf("expected bare dish id for empty slice, got %q", got)
	}
}

func TestBuildIsOrderIndependent(t *testing.T) {
	options := []models.DishOption{
		{Name: "extra cheese", Price: 1.5},
		{Name: "bacon", Price: 2},
		{Name: "jalapenos", Price: 0.75},
	}
	want := Build("dish-1", options)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := make([]models.DishOption, len(options))
		copy(shuffled, options)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		if got := Build("dish-1", shuffled); got != want {
			t.Fatalf("shuffle %d changed key: %q != %q", i, got, want)
		}
	}
}

func TestBuildDistinguishesOptionChanges(t *testing.T) {
	base := []models.DishOption{{Name: "bacon", Price: 2}}
	key := Build("dish-1", base)

	if got := Build("dish-1", []models.DishOption{{Name: "bacon", Price: 2.5}}); got == key {
		t.Error("price change did not change the key")
	}
	if got := Build("dish-1", []models.DishOption{{Name: "ham", Price: 2}}); got == key {
		t.Error("name change did not change the key")
	}
	if got := Build("dish-2", base); got == key {
		t.Error("dish change did not change the key")
	}
}

func TestSameDishDifferentOptionsAreDistinctUnits(t *testing.T) {
	plain := models.LineItem{DishID: "dishA", Quantity: 2}
	topped := models.LineItem{DishID: "dishA", Quantity: 1, Options: []models.DishOption{{Name: "topping X", Price: 1}}}

	if ForItem(plain) == ForItem(topped) {
		t.Fatal("items with different option sets must have distinct keys")
	}

	keys := KeySet([]models.LineItem{plain, topped})
	if len(keys) != 2 {
		t.Fatalf("expected 2 distinct keys, got %d", len(keys))
	}
}

func TestBuildCollapsesFloatRepresentation(t *testing.T) {
	a := Build("dish-1", []models.DishOption{{Name: "sauce", Price: 1.0}})
	b := Build("dish-1", []models.DishOption{{Name: "sauce", Price: 0.5 + 0.5}})
	if a != b {
		t.Errorf("equal prices produced different keys: %q vs %q", a, b)
	}
}
