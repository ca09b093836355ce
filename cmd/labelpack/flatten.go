package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/labelpack/internal/home"
	"github.com/jackzampolin/labelpack/internal/orders"
)

var flattenOut string

var flattenCmd = &cobra.Command{
	Use:   "flatten <export.json>",
	Short: "Convert a marketplace order export into the flat order list",
	Long: `Flatten reads an order export (the raw marketplace payload keyed by seller
account, or an already flat list) and writes the flat list with one entry per
order and its tracking numbers.

Examples:
  labelpack flatten shipped.json               # writes ~/.labelpack/orders.json
  labelpack flatten shipped.json --out -       # writes to stdout`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := orders.Load(args[0])
		if err != nil {
			return err
		}

		if flattenOut == "-" {
			return orders.WriteFlat(os.Stdout, records)
		}

		path := flattenOut
		if path == "" {
			h, err := home.New(homeDir)
			if err != nil {
				return err
			}
			if err := h.EnsureExists(); err != nil {
				return err
			}
			path = h.OrdersPath()
		}

		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		if err := orders.WriteFlat(f, records); err != nil {
			f.Close()
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "Wrote %d orders to %s\n", len(records), path)
		return nil
	},
}

func init() {
	flattenCmd.Flags().StringVar(&flattenOut, "out", "", "output path, or - for stdout (default: ~/.labelpack/orders.json)")
}
