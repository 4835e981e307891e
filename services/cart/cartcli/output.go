package cartcli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/MarcGrol/tripcart/services/cart/cartmodel"
)

func printState(w io.Writer, opts *RootOptions, state cartmodel.CartState) error {
	if opts.Format == "json" {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(state)
	}

	fmt.Fprintf(w, "Cart %s (%s)\n", opts.Session, state.Currency)
	if len(state.Items) == 0 {
		fmt.Fprintln(w, "  (empty)")
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, item := range state.Items {
		fmt.Fprintf(tw, "  %d x\t%s\t%s\t%s\t%.2f %s\n", item.Quantity, item.ID, item.Type, item.Title, item.Price, item.Currency)
	}
	tw.Flush()

	fmt.Fprintf(w, "Items:    %d\n", state.TotalItems)
	fmt.Fprintf(w, "Subtotal: %.2f\n", state.TotalPrice)
	fmt.Fprintf(w, "Tax:      %.2f\n", state.TaxAmount)
	if state.DiscountAmount != nil {
		fmt.Fprintf(w, "Discount: %.2f (%s)\n", *state.DiscountAmount, state.DiscountCode)
	}
	fmt.Fprintf(w, "Total:    %.2f\n", state.FinalTotal)

	return nil
}
