package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"portfolio-analyzer/internal/ingest"
	"portfolio-analyzer/internal/models"
	"portfolio-analyzer/internal/upload"
	"portfolio-analyzer/pkg/utils"
)

func addUploadCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newPreviewCmd(app))
	rootCmd.AddCommand(newUploadCmd(app))
}

// previewJSON is the JSON shape of a preview.
type previewJSON struct {
	UploadID  string     `json:"upload_id"`
	File      string     `json:"file"`
	TotalRows int        `json:"total_rows"`
	Preview   [][]string `json:"preview"`
}

func newPreviewCmd(app *App) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "preview <file.csv>",
		Short: "Preview the first rows of a holdings file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			orch, err := app.newOrchestrator(cmd.Context())
			if err != nil {
				return err
			}
			if err := selectFile(cmd, orch, args[0]); err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(previewJSON{
					UploadID:  orch.UploadID(),
					File:      orch.File().Name,
					TotalRows: len(orch.Grid()),
					Preview:   orch.Preview(),
				})
			}
			if raw {
				output.Println(ingest.Join(orch.Preview()))
				return nil
			}
			renderPreview(output, orch)
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print preview rows as comma-separated text")
	return cmd
}

func newUploadCmd(app *App) *cobra.Command {
	var (
		securityMode      bool
		strategy          string
		referenceInvestor string
		yes               bool
	)

	cmd := &cobra.Command{
		Use:   "upload <file.csv>",
		Short: "Submit a holdings file for analysis",
		Long: `Reads and previews the holdings file, then submits it to the analysis
service. The holdings and the returned analysis are stored locally and
replace any previous upload.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			orch, err := app.newOrchestrator(cmd.Context())
			if err != nil {
				return err
			}
			if err := selectFile(cmd, orch, args[0]); err != nil {
				return err
			}

			if !cmd.Flags().Changed("security-mode") {
				securityMode = app.Config.Upload.SecurityMode
			}
			// The orchestrator validates the strategy and fills the default.
			opts := models.SubmitOptions{
				SecurityMode:      securityMode,
				Strategy:          models.Strategy(strings.ToLower(strings.TrimSpace(strategy))),
				ReferenceInvestor: referenceInvestor,
			}

			if !output.IsJSON() {
				renderPreview(output, orch)
				output.Println()
				if !yes && !confirm(cmd, "Submit for analysis?") {
					output.Warning("Upload cancelled")
					return nil
				}
				output.Info("Analyzing portfolio via %s ...", app.Config.Endpoint())
			}

			orch.OnSucceeded = func(result *models.AnalysisResult) {
				if output.IsJSON() {
					return
				}
				output.Success("✓ Analysis stored")
				output.Println()
				renderReport(output, result, "overall")
				output.Dim("Run 'portfolio-analyzer report' for performance and risk details.")
			}

			result, err := orch.Submit(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(result)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&securityMode, "security-mode", false, "ask the service to mask holding details (default from config)")
	cmd.Flags().StringVar(&strategy, "strategy", "", "investment strategy: conservative, balanced, aggressive (default from config)")
	cmd.Flags().StringVar(&referenceInvestor, "reference-investor", "", "investor whose style the analysis should compare against")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "submit without confirmation")
	return cmd
}

func selectFile(cmd *cobra.Command, orch *upload.Orchestrator, path string) error {
	f, err := upload.FileFromPath(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	return orch.Select(cmd.Context(), f)
}

func renderPreview(output *Output, orch *upload.Orchestrator) {
	preview := orch.Preview()
	output.Bold("Preview: %s (%d rows incl. header)", orch.File().Name, len(orch.Grid()))
	if len(preview) == 0 {
		output.Dim("  (file is empty)")
		return
	}

	headers := make([]string, len(preview[0]))
	for i, h := range preview[0] {
		headers[i] = utils.Truncate(h, 20)
	}
	table := NewTable(output, headers...)
	var ragged []int
	for i, row := range preview.Rows() {
		cells := make([]string, len(row))
		for j, c := range row {
			cells[j] = utils.Truncate(c, 20)
		}
		if len(row) != len(headers) {
			ragged = append(ragged, i+2)
		}
		table.AddRow(cells...)
	}
	table.Render()
	if len(ragged) > 0 {
		output.Warning("⚠ Rows %v do not have %d cells like the header", ragged, len(headers))
	}
	if hidden := len(orch.Grid()) - len(preview); hidden > 0 {
		output.Dim("... %d more rows", hidden)
	}
}

// confirm asks a yes/no question on the command's input.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)
	reader := bufio.NewReader(cmd.InOrStdin())
	answer, _ := reader.ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
