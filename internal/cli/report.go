package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	apperrors "portfolio-analyzer/internal/errors"
	"portfolio-analyzer/internal/models"
	"portfolio-analyzer/internal/presenter"
	"portfolio-analyzer/internal/store"
)

func addReportCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newReportCmd(app))
	rootCmd.AddCommand(newHoldingsCmd(app))
	rootCmd.AddCommand(newChartCmd(app))
	rootCmd.AddCommand(newExportCmd(app))
	rootCmd.AddCommand(newResetCmd(app))
}

const noAnalysisHint = "No analysis stored yet. Run 'portfolio-analyzer upload <file.csv>' first."

func (a *App) loadReport(ctx context.Context) (*presenter.Report, error) {
	s, err := a.openStore()
	if err != nil {
		return nil, err
	}
	return presenter.Load(ctx, s)
}

func newReportCmd(app *App) *cobra.Command {
	var section string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the stored portfolio analysis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			section = strings.ToLower(section)
			if !validSection(section) {
				return fmt.Errorf("unknown section %q (want overall, performance, risk or all)", section)
			}

			report, err := app.loadReport(cmd.Context())
			if apperrors.Is(err, apperrors.ErrNoAnalysis) {
				output.Warning(noAnalysisHint)
				return nil
			}
			if err != nil {
				return err
			}

			if output.IsJSON() {
				sections := presenter.BuildCards(report.Result)
				if section != "all" {
					s, _ := presenter.FindSection(sections, section)
					sections = []presenter.Section{s}
				}
				return output.JSON(sections)
			}
			if !report.AnalyzedAt.IsZero() {
				output.Dim("Analyzed at %s", report.AnalyzedAt.Local().Format("2006-01-02 15:04:05"))
				output.Println()
			}
			renderReport(output, report.Result, section)
			return nil
		},
	}

	cmd.Flags().StringVarP(&section, "section", "s", "all", "section to show: overall, performance, risk, all")
	return cmd
}

func validSection(section string) bool {
	if section == "all" {
		return true
	}
	for _, k := range presenter.SectionKeys {
		if k == section {
			return true
		}
	}
	return false
}

func renderReport(output *Output, result *models.AnalysisResult, section string) {
	for _, s := range presenter.BuildCards(result) {
		if section != "all" && s.Key != section {
			continue
		}
		output.Bold("━━ %s ━━", s.Title)
		for _, c := range s.Cards {
			if c.Value != "" {
				output.Printf("%s  %s\n", output.BoldText(c.Title), output.Toned(c.Tone, c.Value))
			} else {
				output.Println(output.BoldText(c.Title))
			}
			if c.Description != "" {
				output.Printf("  %s\n", output.DimText(c.Description))
			}
		}
		output.Println()
	}
}

// holdingJSON is the JSON shape of one holding in the overview.
type holdingJSON struct {
	Ticker      string `json:"ticker"`
	Name        string `json:"name"`
	Sector      string `json:"sector"`
	TotalCost   string `json:"total_cost"`
	Allocation  string `json:"allocation"`
	Performance string `json:"performance"`
}

type sectorJSON struct {
	Sector string `json:"sector"`
	Cost   string `json:"cost"`
	Share  string `json:"share"`
}

type overviewJSON struct {
	Holdings  []holdingJSON `json:"holdings"`
	Sectors   []sectorJSON  `json:"sectors"`
	TotalCost string        `json:"total_cost"`
	Currency  string        `json:"currency,omitempty"`
	Warnings  []string      `json:"warnings,omitempty"`
}

func newHoldingsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "holdings",
		Short: "Show stored holdings with allocation, performance and sector shares",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			s, err := app.openStore()
			if err != nil {
				return err
			}
			items, err := store.LoadHoldings(cmd.Context(), s)
			if err != nil {
				return err
			}
			ov := presenter.BuildOverview(items)

			if output.IsJSON() {
				return output.JSON(toOverviewJSON(ov))
			}
			if len(ov.Holdings) == 0 {
				output.Warning(noAnalysisHint)
				return nil
			}
			renderOverview(output, ov)
			return nil
		},
	}
}

func toOverviewJSON(ov *presenter.Overview) overviewJSON {
	out := overviewJSON{
		Holdings:  make([]holdingJSON, 0, len(ov.Holdings)),
		Sectors:   make([]sectorJSON, 0, len(ov.Sectors)),
		TotalCost: ov.TotalCost.StringFixed(2),
		Currency:  ov.Currency,
		Warnings:  ov.Warnings,
	}
	for _, h := range ov.Holdings {
		out.Holdings = append(out.Holdings, holdingJSON{
			Ticker:      h.Ticker,
			Name:        h.AssetName,
			Sector:      h.Sector,
			TotalCost:   h.TotalCost.StringFixed(2),
			Allocation:  h.Allocation.String(),
			Performance: h.Performance.Signed(),
		})
	}
	for _, s := range ov.Sectors {
		out.Sectors = append(out.Sectors, sectorJSON{
			Sector: s.Sector,
			Cost:   s.Cost.StringFixed(2),
			Share:  s.Share.String(),
		})
	}
	return out
}

func renderOverview(output *Output, ov *presenter.Overview) {
	output.Bold("Holdings")
	table := NewTable(output, "Ticker", "Name", "Sector", "Total Cost", "Allocation", "Performance")
	for _, h := range ov.Holdings {
		cost := "n/a"
		if h.CostValid {
			cost = presenter.FormatMoney(h.TotalCost, h.Currency)
		}
		table.AddRow(h.Ticker, h.AssetName, h.Sector, cost, h.Allocation.String(), output.Gain(h.Performance))
	}
	table.Render()
	output.Println()

	output.Bold("Sectors")
	sectors := NewTable(output, "Sector", "Cost", "Share")
	for _, s := range ov.Sectors {
		sectors.AddRow(s.Sector, presenter.FormatMoney(s.Cost, ov.Currency), s.Share.String())
	}
	sectors.Render()
	output.Println()

	output.Printf("Total cost: %s\n", output.BoldText(presenter.FormatMoney(ov.TotalCost, ov.Currency)))
	for _, w := range ov.Warnings {
		output.Warning("⚠ %s", w)
	}
}

func newChartCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render the sector allocation as a PNG pie chart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			report, err := app.loadReport(cmd.Context())
			if err != nil && !apperrors.Is(err, apperrors.ErrNoAnalysis) {
				return err
			}

			err = writeTo(out, cmd.OutOrStdout(), func(w io.Writer) error {
				return presenter.RenderSectorChart(report.Overview, w)
			})
			if err != nil {
				return err
			}
			if out != "-" {
				if output.IsJSON() {
					return output.JSON(map[string]string{"chart": out})
				}
				output.Success("✓ Chart written to %s", out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "sectors.png", "output file, or - for stdout")
	return cmd
}

func newExportCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export holdings with allocation and performance as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			s, err := app.openStore()
			if err != nil {
				return err
			}
			items, err := store.LoadHoldings(cmd.Context(), s)
			if err != nil {
				return err
			}
			ov := presenter.BuildOverview(items)

			err = writeTo(out, cmd.OutOrStdout(), func(w io.Writer) error {
				return presenter.ExportHoldings(ov, w)
			})
			if err != nil {
				return err
			}
			if out != "-" {
				output.Success("✓ %d holdings exported to %s", len(ov.Holdings), out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, or - for stdout")
	return cmd
}

// writeTo runs fn against stdout when path is "-", otherwise against a
// newly created file.
func writeTo(path string, stdout io.Writer, fn func(io.Writer) error) error {
	if path == "-" {
		return fn(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func newResetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Remove stored holdings and analysis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			s, err := app.openStore()
			if err != nil {
				return err
			}
			if err := store.ClearAll(cmd.Context(), s); err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"cleared": true})
			}
			output.Success("✓ Stored holdings and analysis removed")
			return nil
		},
	}
}
