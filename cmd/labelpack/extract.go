package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/labelpack/internal/extract"
	"github.com/jackzampolin/labelpack/internal/output"
	"github.com/jackzampolin/labelpack/internal/pipeline"
)

type extractReport struct {
	Files  []string             `json:"files" yaml:"files"`
	Labels int                  `json:"labels" yaml:"labels"`
	Pages  []extract.PageResult `json:"pages" yaml:"pages"`
}

func (r extractReport) String() string {
	var sb strings.Builder
	for _, p := range r.Pages {
		fmt.Fprintf(&sb, "%s p%d:", p.SourceFile, p.PageNumber)
		if len(p.TrackingNumbers) == 0 {
			sb.WriteString(" -")
		}
		for _, tn := range p.TrackingNumbers {
			fmt.Fprintf(&sb, " %s", tn)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "%d labels on %d pages", r.Labels, len(r.Pages))
	return sb.String()
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "List the tracking numbers found on each label page",
	Long: `Extract runs tracking number extraction on the work dir and prints what was
found per page, without touching the order export or writing output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, logger, err := setup()
		if err != nil {
			return err
		}
		p, err := newPipeline(mgr.Get(), logger, pipelineOptions{})
		if err != nil {
			return err
		}

		files, pages, err := p.Extract(cmd.Context())
		if err != nil {
			return err
		}
		return output.Write(extractReport{
			Files:  files,
			Labels: pipeline.CountLabels(pages),
			Pages:  pages,
		})
	},
}
