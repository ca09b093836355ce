package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/labelpack/internal/output"
)

var (
	annotateOut    string
	annotateLabels int
)

var annotateCmd = &cobra.Command{
	Use:   "annotate",
	Short: "Annotate every label PDF in the work dir",
	Long: `Annotate reads every label PDF in the work dir (skipping earlier output),
resolves each tracking number against the order export and writes one merged,
annotated PDF.

Nothing is written if a PDF cannot be read or a tracking number has no order.

Examples:
  labelpack annotate
  labelpack annotate -d ~/labels --orders ~/exports/orders.json
  labelpack annotate --labels 40 --out today.pdf`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, logger, err := setup()
		if err != nil {
			return err
		}

		p, err := newPipeline(mgr.Get(), logger, pipelineOptions{
			outputPath: annotateOut,
			labels:     annotateLabels,
		})
		if err != nil {
			return err
		}

		res, err := p.Run(cmd.Context())
		if err != nil {
			return err
		}
		return output.Write(res)
	},
}

func init() {
	annotateCmd.Flags().StringVar(&annotateOut, "out", "", "output file (default: \"<date> <time> (<labels>)+packing.pdf\" in the work dir)")
	annotateCmd.Flags().IntVar(&annotateLabels, "labels", 0, "label total for page counters (default: count tracking numbers found)")
}
