package cartcli

import (
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MarcGrol/tripcart/services/cart"
	"github.com/MarcGrol/tripcart/services/cart/cartcodec"
	"github.com/MarcGrol/tripcart/services/cart/cartmodel"
)

func run(opts *RootOptions, cmd *cobra.Command, f func(store *cart.Store) cartmodel.CartState) error {
	state, err := withCart(cmd.Context(), opts, f)
	if err != nil {
		return err
	}
	return printState(cmd.OutOrStdout(), opts, state)
}

func newShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the cart with its totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts, cmd, (*cart.Store).State)
		},
	}
}

func newAddCommand(opts *RootOptions) *cobra.Command {
	var (
		id, itemType, title, currency string
		price                         float64
		quantity                      int
		details                       map[string]string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a line item, an existing item gets its quantity increased",
		Example: `  cartctl add --id hotel-1 --type hotel --title "Bosphorus View Hotel" --price 1500
  cartctl add --id tour-1 --type tour --price 800 --quantity 2 --detail date=2026-06-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := map[string]any{
				"id":       id,
				"type":     itemType,
				"title":    title,
				"price":    price,
				"quantity": quantity,
				"currency": currency,
			}
			for k, v := range details {
				if !cartmodel.KnownKeys[k] {
					raw[k] = v
				}
			}
			item, err := cartcodec.Decode(raw)
			if err != nil {
				return err
			}
			return run(opts, cmd, func(store *cart.Store) cartmodel.CartState {
				return store.AddItem(item)
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "product id")
	cmd.Flags().StringVar(&itemType, "type", "", "product type (hotel, tour, transfer, car-rental, rental-property, flight)")
	cmd.Flags().StringVar(&title, "title", "", "display title")
	cmd.Flags().Float64Var(&price, "price", 0, "unit price")
	cmd.Flags().IntVar(&quantity, "quantity", 1, "quantity")
	cmd.Flags().StringVar(&currency, "currency", cartmodel.DefaultCurrency, "currency tag")
	cmd.Flags().StringToStringVar(&details, "detail", nil, "product details as key=value")
	cmd.MarkFlagRequired("id")
	cmd.MarkFlagRequired("type")
	cmd.MarkFlagRequired("price")

	return cmd
}

func newRemoveCommand(opts *RootOptions) *cobra.Command {
	var itemType string

	cmd := &cobra.Command{
		Use:   "remove <item-id>",
		Short: "Remove an item, all types unless --type is given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts, cmd, func(store *cart.Store) cartmodel.CartState {
				return store.RemoveItem(args[0], itemType)
			})
		},
	}
	cmd.Flags().StringVar(&itemType, "type", "", "only remove the item of this type")

	return cmd
}

func newQuantityCommand(opts *RootOptions) *cobra.Command {
	var itemType string

	cmd := &cobra.Command{
		Use:   "quantity <item-id> <quantity>",
		Short: "Set the quantity of an item, values below one become one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q: %w", args[1], err)
			}
			return run(opts, cmd, func(store *cart.Store) cartmodel.CartState {
				return store.UpdateQuantity(args[0], itemType, quantity)
			})
		},
	}
	cmd.Flags().StringVar(&itemType, "type", "", "only update the item of this type")

	return cmd
}

func newUpdateCommand(opts *RootOptions) *cobra.Command {
	var (
		itemType, title string
		price           float64
		details         map[string]string
	)

	cmd := &cobra.Command{
		Use:   "update <item-id>",
		Short: "Change price, title or details of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := map[string]any{}
			if cmd.Flags().Changed("title") {
				raw["title"] = title
			}
			if cmd.Flags().Changed("price") {
				raw["price"] = price
			}
			for k, v := range details {
				if !cartmodel.KnownKeys[k] {
					raw[k] = v
				}
			}
			patch, err := cartcodec.DecodePatch(raw)
			if err != nil {
				return err
			}
			return run(opts, cmd, func(store *cart.Store) cartmodel.CartState {
				return store.UpdateItem(args[0], itemType, patch)
			})
		},
	}
	cmd.Flags().StringVar(&itemType, "type", "", "only update the item of this type")
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().Float64Var(&price, "price", 0, "new unit price")
	cmd.Flags().StringToStringVar(&details, "detail", nil, "product details to replace as key=value")

	return cmd
}

func newDiscountCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discount",
		Short: "Apply or remove the discount of the cart",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "apply <code> <amount>",
		Short: "Apply a flat discount",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}
			if math.IsNaN(amount) || math.IsInf(amount, 0) {
				return fmt.Errorf("invalid amount %q: must be a finite number", args[1])
			}
			return run(opts, cmd, func(store *cart.Store) cartmodel.CartState {
				return store.ApplyDiscount(args[0], amount)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove",
		Short: "Remove the discount",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts, cmd, (*cart.Store).RemoveDiscount)
		},
	})

	return cmd
}

func newClearCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts, cmd, (*cart.Store).ClearCart)
		},
	}
}
