package cli

import (
	"io"

	"github.com/spf13/cobra"

	"portfolio-analyzer/internal/ingest"
	"portfolio-analyzer/internal/models"
)

// addHelpCommands adds help and documentation commands.
func addHelpCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newExamplesCmd())
	rootCmd.AddCommand(newTemplateCmd())
}

func newExamplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "Show common workflow examples",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			output.Bold("Common Workflow Examples")
			output.Println()

			examples := []struct {
				title    string
				commands []string
			}{
				{
					title: "First Analysis",
					commands: []string{
						"portfolio-analyzer template -o holdings.csv   # Start from the expected layout",
						"portfolio-analyzer preview holdings.csv       # Check the first rows",
						"portfolio-analyzer upload holdings.csv        # Confirm and submit",
					},
				},
				{
					title: "Scripted Submission",
					commands: []string{
						"portfolio-analyzer upload holdings.csv --yes --strategy conservative",
						"portfolio-analyzer upload holdings.csv --yes --security-mode --json > analysis.json",
						"portfolio-analyzer upload holdings.csv --yes --reference-investor \"Warren Buffett\"",
					},
				},
				{
					title: "Review Results",
					commands: []string{
						"portfolio-analyzer report                     # All sections",
						"portfolio-analyzer report -s risk             # Risk section only",
						"portfolio-analyzer holdings                   # Allocation and performance",
						"portfolio-analyzer chart -o sectors.png       # Sector pie chart",
						"portfolio-analyzer export -o holdings-out.csv # Holdings with derived columns",
					},
				},
				{
					title: "Housekeeping",
					commands: []string{
						"portfolio-analyzer config show                # Effective configuration",
						"portfolio-analyzer reset                      # Forget stored results",
					},
				},
			}

			for _, ex := range examples {
				output.Info("▸ %s", ex.title)
				for _, c := range ex.commands {
					output.Printf("  %s\n", c)
				}
				output.Println()
			}
			return nil
		},
	}
}

var templateRows = [][]string{
	{"AAPL", "Apple Inc.", "10", "150.00", "175.50", "2023-01-15", "Technology", "USD", "0.5", "1500.00"},
	{"JNJ", "Johnson & Johnson", "5", "160.00", "150.00", "2023-02-01", "Healthcare", "USD", "2.9", "800.00"},
}

func newTemplateCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write an example holdings file with the expected columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			grid := models.Grid{models.PortfolioFields}
			grid = append(grid, templateRows...)
			text := ingest.Join(grid) + "\n"

			err := writeTo(out, cmd.OutOrStdout(), func(w io.Writer) error {
				_, err := io.WriteString(w, text)
				return err
			})
			if err != nil {
				return err
			}
			if out != "-" {
				output.Success("✓ Template written to %s", out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, or - for stdout")
	return cmd
}
