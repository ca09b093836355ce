package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/labelpack/internal/output"
	"github.com/jackzampolin/labelpack/internal/render"
)

type pageInfo struct {
	File     string  `json:"file" yaml:"file"`
	Page     int     `json:"page" yaml:"page"`
	Width    float64 `json:"width" yaml:"width"`
	Height   float64 `json:"height" yaml:"height"`
	HalfPage bool    `json:"half_page" yaml:"half_page"`
}

type inspectReport []pageInfo

func (r inspectReport) String() string {
	lines := make([]string, 0, len(r))
	for _, p := range r {
		line := fmt.Sprintf("%s p%d: %gx%g", p.File, p.Page, p.Width, p.Height)
		if p.HalfPage {
			line += " (half page, promoted to letter)"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <pdf>...",
	Short: "Show page sizes and which pages will be promoted to full letter",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var report inspectReport
		for _, path := range args {
			geoms, err := render.ProbeFile(path)
			if err != nil {
				return err
			}
			for i, g := range geoms {
				report = append(report, pageInfo{
					File:     path,
					Page:     i + 1,
					Width:    g.Width,
					Height:   g.Height,
					HalfPage: g.IsHalfPage(),
				})
			}
		}
		return output.Write(report)
	},
}
