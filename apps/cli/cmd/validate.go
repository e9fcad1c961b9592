package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/reqline/packages/core/parser"
)

var validateCmd = &cobra.Command{
	Use:   "validate [reqline...]",
	Short: "Validate reqline syntax without executing",
	Long: `Validate reqlines for syntax errors without sending any request.

Examples:
  reqline validate 'HTTP GET | URL https://example.com'
  reqline validate --file smoke.reqline`,
	RunE: validateCommand,
}

var validateFileFlag string

func init() {
	validateCmd.Flags().StringVarP(&validateFileFlag, "file", "f", "", "Read reqlines from file")
}

func validateCommand(cmd *cobra.Command, args []string) error {
	lines, err := collectLines(cmd, validateFileFlag, args)
	if err != nil {
		return err
	}

	if noColorFlag {
		color.NoColor = true
	}
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	invalid := 0
	var lastErr error
	for _, line := range lines {
		if _, err := parser.Parse(line.Text); err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %v\n", red("✗"), line.Number, err)
			invalid++
			lastErr = err
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s #%d valid\n", green("✓"), line.Number)
	}

	switch {
	case invalid == 0:
		return nil
	case len(lines) == 1:
		return lastErr
	default:
		return &exitError{code: ExitParseError, err: fmt.Errorf("%d of %d reqlines are invalid", invalid, len(lines))}
	}
}
