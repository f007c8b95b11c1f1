package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/assetforge/assetforge/internal/config"
	"github.com/assetforge/assetforge/internal/logging"
	"github.com/assetforge/assetforge/internal/manifest"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List declared asset blocks and their staleness",
	Long: `List every declared asset block with its compiler kind, asset count, and
whether it needs recompilation.

Examples:
  assetforge list                 # Table output
  assetforge list -f json         # JSON output for tooling
  assetforge list -f yaml         # YAML output`,
	RunE: runList,
}

var listFormat string

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "Output format (table|json|yaml)")
	AddFlagValidation(listCmd, "format", ValidateOutputFormat)
}

// blockStatus is one row of list output.
type blockStatus struct {
	Name   string `json:"name" yaml:"name"`
	Kind   string `json:"kind" yaml:"kind"`
	Hash   string `json:"hash" yaml:"hash"`
	Assets int    `json:"assets" yaml:"assets"`
	Stale  bool   `json:"stale" yaml:"stale"`
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	blocks, err := manifest.LoadBlocks(cfg.Build.BlocksPath)
	if err != nil {
		return err
	}
	if len(blocks) == 0 {
		fmt.Println("No asset blocks declared.")
		return nil
	}

	cached, err := manifest.LoadOrEmpty(cfg.Build.ManifestPath)
	if err != nil {
		return err
	}
	current, err := manifest.ComputeCurrent(cfg.StaticDir, blocks)
	if err != nil {
		return err
	}

	ctx := context.Background()
	logger := logging.NopLogger{}
	upper := cases.Upper(language.English)

	statuses := make([]blockStatus, len(blocks))
	for i, b := range blocks {
		statuses[i] = blockStatus{
			Name:   b.Name,
			Kind:   upper.String(string(b.Kind)),
			Hash:   shortHash(b.NameHash),
			Assets: len(b.Paths),
			Stale:  manifest.IsStale(ctx, logger, cached, current, b.NameHash, b.CompiledPath(cfg.OutputDir, current)),
		}
	}

	switch strings.ToLower(listFormat) {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(statuses)
	case "yaml":
		encoder := yaml.NewEncoder(os.Stdout)
		defer encoder.Close()
		return encoder.Encode(statuses)
	case "table":
		return outputTable(statuses)
	default:
		return fmt.Errorf("unsupported format: %s", listFormat)
	}
}

func outputTable(statuses []blockStatus) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "NAME\tKIND\tHASH\tASSETS\tSTALE")
	for _, s := range statuses {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%v\n", s.Name, s.Kind, s.Hash, s.Assets, s.Stale)
	}
	return nil
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
