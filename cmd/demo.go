package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jaswdr/faker"
	"github.com/platefull/storefront/internal/addressbook"
	"github.com/platefull/storefront/internal/cartkey"
	"github.com/platefull/storefront/internal/checkout"
	"github.com/platefull/storefront/internal/estimator"
	"github.com/platefull/storefront/internal/factories"
	"github.com/platefull/storefront/internal/models"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Replay a scripted cart session against the configured services",
	Long:  `demo walks the full engine once: reads the remote cart, toggles a selection, aggregates a delivery estimate, rebuilds the cart for a quantity change, and checks out with a generated buyer. Useful as a smoke test against a staging marketplace.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfigOrExit()
		ctx := context.Background()

		eng, err := buildEngine(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error building engine: %v\n", err)
			os.Exit(1)
		}
		defer eng.Close()

		if err := runDemo(ctx, eng); err != nil {
			fmt.Fprintf(os.Stderr, "Demo failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(ctx context.Context, eng *engine) error {
	scope := eng.cfg.StorageScope
	fake := faker.New()

	bar := progressbar.NewOptions(5,
		progressbar.OptionSetDescription("cart session"),
		progressbar.OptionSetWriter(os.Stderr),
	)

	items, err := eng.cart.List(ctx)
	if err != nil {
		return fmt.Errorf("listing cart: %w", err)
	}
	if len(items) == 0 {
		itemFactory := &factories.LineItemFactory{}
		for _, item := range itemFactory.CreateLineItems(3) {
			if err := eng.cart.Add(ctx, item); err != nil {
				return fmt.Errorf("seeding cart: %w", err)
			}
		}
		if items, err = eng.cart.List(ctx); err != nil {
			return fmt.Errorf("listing cart after seeding: %w", err)
		}
	}
	log.Printf("Cart holds %d line items", len(items))
	bar.Add(1)

	// Deselect the first line, then put it back, exercising the overlay.
	firstKey := cartkey.ForItem(items[0])
	eng.selection.SetSelected(ctx, scope, firstKey, false)
	eng.selection.SetSelected(ctx, scope, firstKey, true)
	bar.Add(1)

	addr := addressbook.Address{
		Label:  "demo",
		Street: fake.Address().StreetAddress(),
		Lat:    eng.cfg.DefaultLat,
		Lon:    eng.cfg.DefaultLon,
	}
	eng.addressBook.SetLast(ctx, addr)

	estimate, err := eng.estimator.Estimate(ctx, estimator.Input{
		Items:        items,
		Lat:          addr.Lat,
		Lon:          addr.Lon,
		DeliveryType: eng.cfg.DefaultDeliveryType,
	})
	if err != nil {
		return fmt.Errorf("estimating delivery: %w", err)
	}
	log.Printf("Estimate: delivery %.2f, total %.2f, cooking %d min",
		estimate.DeliveryPrice, estimate.TotalPrice, estimate.EstimatedCookingTime)
	bar.Add(1)

	// Bump the first line's quantity through the rebuild path.
	next, err := eng.cartOps.SetQuantity(ctx, scope, firstKey, items[0].Quantity+1)
	if err != nil {
		return fmt.Errorf("changing quantity: %w", err)
	}
	log.Printf("Cart rebuilt with %d line items", len(next))
	bar.Add(1)

	buyer := checkout.BuyerDetails{
		Name:          fake.Person().Name(),
		Phone:         fake.Phone().Number(),
		AgreedToTerms: true,
	}
	delivery := checkout.DeliveryDetails{
		Address:      addr.Street,
		Lat:          addr.Lat,
		Lon:          addr.Lon,
		DeliveryType: eng.cfg.DefaultDeliveryType,
	}
	result, err := eng.checkout.Checkout(ctx, scope, buyer, delivery)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	bar.Add(1)

	for _, outcome := range result.Orders {
		if outcome.Err != "" {
			log.Printf("Order %s (%s): %s - %s", outcome.OrderID, outcome.DishID, outcome.Status, outcome.Err)
			continue
		}
		log.Printf("Order %s (%s): %s", outcome.OrderID, outcome.DishID, outcome.Status)
	}

	reportOutcomes(result)
	return nil
}

func reportOutcomes(result checkout.Result) {
	var paid, failed int
	for _, outcome := range result.Orders {
		if outcome.Status == models.OrderStatusPaid {
			paid++
		} else {
			failed++
		}
	}
	log.Printf("Checkout complete: %d paid, %d pending or failed", paid, failed)
}
