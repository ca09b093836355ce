package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/labelpack/internal/orders"
	"github.com/jackzampolin/labelpack/internal/output"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <tracking-number>...",
	Short: "Look up tracking numbers in the order export",
	Long: `Resolve prints the packing info, seller account and buyer notes that would be
printed for each tracking number. It fails on the first number with no order.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, logger, err := setup()
		if err != nil {
			return err
		}
		p, err := newPipeline(mgr.Get(), logger, pipelineOptions{})
		if err != nil {
			return err
		}

		idx, err := p.LoadIndex()
		if err != nil {
			return err
		}

		results := make([]orders.Resolved, 0, len(args))
		for _, number := range args {
			res, err := idx.Resolve(number)
			if err != nil {
				return err
			}
			results = append(results, res)
		}
		return output.Write(results)
	},
}
