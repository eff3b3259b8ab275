package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/platefull/storefront/internal/checkout"
	"github.com/platefull/storefront/internal/models"
	"github.com/spf13/cobra"
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Check out the currently selected cart items",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfigOrExit()
		ctx := context.Background()

		eng, err := buildEngine(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error building engine: %v\n", err)
			os.Exit(1)
		}
		defer eng.Close()

		name, _ := cmd.Flags().GetString("name")
		phone, _ := cmd.Flags().GetString("phone")
		address, _ := cmd.Flags().GetString("address")
		promo, _ := cmd.Flags().GetString("promo")
		agree, _ := cmd.Flags().GetBool("agree-to-terms")
		lat, _ := cmd.Flags().GetFloat64("lat")
		lon, _ := cmd.Flags().GetFloat64("lon")

		if lat == 0 && lon == 0 {
			if last, ok := eng.addressBook.Last(ctx); ok {
				lat, lon = last.Lat, last.Lon
				if address == "" {
					address = last.Street
				}
			}
		}

		result, err := eng.checkout.Checkout(ctx, cfg.StorageScope,
			checkout.BuyerDetails{Name: name, Phone: phone, AgreedToTerms: agree},
			checkout.DeliveryDetails{
				Address:      address,
				Lat:          lat,
				Lon:          lon,
				DeliveryType: cfg.DefaultDeliveryType,
				PromoCode:    promo,
			})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Checkout failed: %v\n", err)
			os.Exit(1)
		}

		for _, outcome := range result.Orders {
			switch outcome.Status {
			case models.OrderStatusPaid:
				log.Printf("Order %s placed and paid", outcome.OrderID)
			case models.OrderStatusPayFailed:
				log.Printf("Order %s placed, payment failed: %s", outcome.OrderID, outcome.Err)
			default:
				log.Printf("Order for dish %s not placed: %s", outcome.DishID, outcome.Err)
			}
		}
	},
}

func init() {
	checkoutCmd.Flags().String("name", "", "Buyer name")
	checkoutCmd.Flags().String("phone", "", "Buyer phone")
	checkoutCmd.Flags().String("address", "", "Delivery address")
	checkoutCmd.Flags().String("promo", "", "Promo code (applied to the first order only)")
	checkoutCmd.Flags().Bool("agree-to-terms", false, "Accept the marketplace terms")
	checkoutCmd.Flags().Float64("lat", 0, "Delivery latitude")
	checkoutCmd.Flags().Float64("lon", 0, "Delivery longitude")
	rootCmd.AddCommand(checkoutCmd)
}
