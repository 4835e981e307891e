package cartcli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds the flags shared by all commands
type RootOptions struct {
	Storage string
	Path    string
	Session string
	Format  string
}

var (
	ValidFormats  = []string{"text", "json"}
	ValidStorages = []string{"file", "sqlite"}
)

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "cartctl",
		Short: "Inspect and change a stored travel cart",
		Long: `Inspect and change a travel cart that is persisted in a snapshot directory
or a SQLite database. Every change is applied through the cart store, so totals
are always derived the same way the server does it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if !slices.Contains(ValidStorages, opts.Storage) {
				return fmt.Errorf("invalid storage %q: must be one of %v", opts.Storage, ValidStorages)
			}
			if opts.Session == "" {
				return fmt.Errorf("missing --session")
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Storage, "storage", "file", "storage backend (file|sqlite)")
	cmd.PersistentFlags().StringVar(&opts.Path, "path", "", "snapshot directory or database file (default data or data/carts.db)")
	cmd.PersistentFlags().StringVarP(&opts.Session, "session", "s", "default", "cart session uid")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newShowCommand(opts))
	cmd.AddCommand(newAddCommand(opts))
	cmd.AddCommand(newRemoveCommand(opts))
	cmd.AddCommand(newQuantityCommand(opts))
	cmd.AddCommand(newUpdateCommand(opts))
	cmd.AddCommand(newDiscountCommand(opts))
	cmd.AddCommand(newClearCommand(opts))

	return cmd
}
