package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/assetforge/assetforge/internal/config"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check external compiler tools and configuration",
	Long: `Check that the external compiler tools assetforge drives are available and
that the configuration points at real directories.

The doctor command checks for:

- java and the closure compiler / YUI compressor jars
- the lessc and sass transpilers
- the static and output directories

Examples:
  assetforge doctor                 # Full environment check
  assetforge doctor --format json   # Output as JSON for tooling`,
	RunE: runDoctor,
}

var doctorFormat string

// DiagnosticResult represents the result of a diagnostic check
type DiagnosticResult struct {
	Name       string `json:"name" yaml:"name"`
	Status     string `json:"status" yaml:"status"` // "ok", "warning", "error"
	Message    string `json:"message" yaml:"message"`
	Suggestion string `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// DoctorReport represents the complete diagnostic report
type DoctorReport struct {
	Timestamp time.Time          `json:"timestamp" yaml:"timestamp"`
	Results   []DiagnosticResult `json:"results" yaml:"results"`
	Errors    int                `json:"errors" yaml:"errors"`
	Warnings  int                `json:"warnings" yaml:"warnings"`
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().StringVarP(&doctorFormat, "format", "f", "table", "Output format (table|json|yaml)")
	AddFlagValidation(doctorCmd, "format", ValidateOutputFormat)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	report := &DoctorReport{Timestamp: time.Now()}
	report.Results = append(report.Results,
		checkBinary("java", cfg.Tools.Java, "JS and CSS minification run through java -jar"),
		checkJar("closure compiler", cfg.Tools.ClosureCompiler, "tools.closure_compiler"),
		checkJar("css minifier", cfg.Tools.CSSMinifier, "tools.css_minifier"),
		checkBinary("lessc", cfg.Tools.LessCompiler, "LESS blocks need the lessc transpiler"),
		checkBinary("sass", cfg.Tools.SassCompiler, "SASS blocks need the sass transpiler"),
		checkDir("static dir", cfg.StaticDir),
		checkDir("output dir", cfg.OutputDir),
	)

	for _, res := range report.Results {
		switch res.Status {
		case "error":
			report.Errors++
		case "warning":
			report.Warnings++
		}
	}

	switch strings.ToLower(doctorFormat) {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case "yaml":
		data, err := yaml.Marshal(report)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	case "table":
		return printDoctorReport(report)
	default:
		return fmt.Errorf("unsupported format: %s", doctorFormat)
	}
}

func checkBinary(name, path, why string) DiagnosticResult {
	if _, err := exec.LookPath(path); err != nil {
		return DiagnosticResult{
			Name:       name,
			Status:     "error",
			Message:    fmt.Sprintf("%s not found in PATH", path),
			Suggestion: why,
		}
	}
	return DiagnosticResult{Name: name, Status: "ok", Message: path}
}

func checkJar(name, path, key string) DiagnosticResult {
	if path == "" {
		return DiagnosticResult{
			Name:       name,
			Status:     "warning",
			Message:    "not configured",
			Suggestion: fmt.Sprintf("set %s in .assetforge.yml", key),
		}
	}
	if _, err := os.Stat(path); err != nil {
		return DiagnosticResult{
			Name:       name,
			Status:     "error",
			Message:    fmt.Sprintf("jar missing at %s", path),
			Suggestion: fmt.Sprintf("fix %s in .assetforge.yml", key),
		}
	}
	return DiagnosticResult{Name: name, Status: "ok", Message: path}
}

func checkDir(name, path string) DiagnosticResult {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return DiagnosticResult{
			Name:       name,
			Status:     "warning",
			Message:    fmt.Sprintf("%s does not exist", path),
			Suggestion: "it will be created on first use, or fix the configured path",
		}
	}
	return DiagnosticResult{Name: name, Status: "ok", Message: path}
}

func printDoctorReport(report *DoctorReport) error {
	fmt.Println("🔍 Assetforge Environment Doctor")
	fmt.Println("================================")

	for _, res := range report.Results {
		icon := "✅"
		switch res.Status {
		case "warning":
			icon = "⚠️ "
		case "error":
			icon = "❌"
		}
		fmt.Printf("%s %-16s %s\n", icon, res.Name, res.Message)
		if res.Suggestion != "" && res.Status != "ok" {
			fmt.Printf("   ↳ %s\n", res.Suggestion)
		}
	}

	fmt.Printf("\n%d errors, %d warnings\n", report.Errors, report.Warnings)
	if report.Errors > 0 {
		return fmt.Errorf("environment has %d blocking issues", report.Errors)
	}
	return nil
}
