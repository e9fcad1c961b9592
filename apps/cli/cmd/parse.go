package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/reqline/packages/core/parser"
	"github.com/abdul-hamid-achik/reqline/packages/http"
)

var parseCmd = &cobra.Command{
	Use:   "parse <reqline>",
	Short: "Show the request a reqline describes without sending it",
	Long: `Parse a reqline and print the method, URL, headers, query, body and
the full URL that would be requested. Nothing is sent.

Examples:
  reqline parse 'HTTP POST | URL https://api.example.com/items | BODY {"name": "x"}'
  reqline parse --json 'HTTP GET | URL https://api.example.com | QUERY {"q": "go"}'`,
	Args: cobra.ExactArgs(1),
	RunE: parseCommand,
}

var parseJSONFlag bool

func init() {
	parseCmd.Flags().BoolVar(&parseJSONFlag, "json", false, "Print the descriptor as JSON")
}

type parsedRequest struct {
	*parser.Descriptor
	FullURL string `json:"full_url"`
}

func parseCommand(cmd *cobra.Command, args []string) error {
	d, err := parser.Parse(args[0])
	if err != nil {
		return err
	}

	result := parsedRequest{Descriptor: d, FullURL: http.BuildURL(d.URL, d.Query)}

	if parseJSONFlag {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	if noColorFlag {
		color.NoColor = true
	}
	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s %s\n", bold(d.Method), cyan(result.FullURL))
	for _, m := range d.Headers.Members() {
		fmt.Fprintf(w, "%s: %s\n", m.Key, m.Value.String())
	}
	if d.Method == parser.MethodPost {
		body, err := json.Marshal(d.Body)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\n%s\n", body)
	}
	return nil
}
