package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/reqline/packages/core/config"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new reqline project",
	Long: `Initialize a new reqline project in the current directory.

This creates:
  - .reqline.yaml      - Configuration file with defaults
  - example.reqline    - Example reqlines, one per line

Examples:
  reqline init
  reqline init --force`,
	RunE: initCommand,
}

const exampleReqlines = `# One reqline per line. Blank lines and lines starting with # are skipped.
# Run with: reqline exec --file example.reqline

HTTP GET | URL https://httpbin.org/get | QUERY {"page": 1, "tags": ["go", "http"]}
HTTP GET | URL https://httpbin.org/headers | HEADERS {"Accept": "application/json"}
HTTP POST | URL https://httpbin.org/post | BODY {"name": "reqline", "active": true}
`

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite existing files")
}

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	return initProject(cmd, cwd)
}

func initProject(cmd *cobra.Command, dir string) error {
	configFile := filepath.Join(dir, config.ConfigFilenames[0])
	exampleFile := filepath.Join(dir, "example.reqline")

	if !forceInit {
		for _, f := range []string{configFile, exampleFile} {
			if _, err := os.Stat(f); err == nil {
				return fmt.Errorf("file already exists: %s (use --force to overwrite)", f)
			}
		}
	}

	cfg := config.DefaultConfig()
	cfg.Headers = map[string]string{"User-Agent": "reqline/" + version}
	cfg.History.Path = filepath.Join(dir, ".reqline-history.db")
	if err := cfg.SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	if err := os.WriteFile(exampleFile, []byte(exampleReqlines), 0644); err != nil {
		return fmt.Errorf("failed to create example file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", exampleFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nNext: reqline exec --file %s\n", filepath.Base(exampleFile))
	return nil
}
