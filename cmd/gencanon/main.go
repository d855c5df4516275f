// Command gencanon runs the genealogical canonicalization pipeline over an
// extracted record document and writes the enriched document back out.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/plattline/gencanon/core/document"
	"github.com/plattline/gencanon/core/pipeline"
	"github.com/plattline/gencanon/core/validate"
	"github.com/plattline/gencanon/internal/config"
	"github.com/plattline/gencanon/internal/logging"
)

const version = "0.4.0"

// CLI defines the command-line interface for gencanon.
var CLI struct {
	// Global flags
	Config    string `name:"config" short:"c" help:"Path to YAML config file" type:"path"`
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" default:"info"`
	LogFormat string `name:"log-format" help:"Log format (json, text)" default:"json"`

	Canonicalize CanonicalizeCmd `cmd:"" help:"Run the full canonicalization pipeline"`
	Validate     ValidateCmd     `cmd:"" help:"Run only the integrity validator"`
	Version      VersionCmd      `cmd:"" help:"Print version information"`
}

// loadConfig reads the config file named by the global flag, or the defaults.
func loadConfig() (*config.Config, error) {
	if CLI.Config == "" {
		return config.Default(), nil
	}
	return config.Load(CLI.Config)
}

// loadDocument reads a canonical document from a JSON file.
func loadDocument(path string) (*document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	doc := document.New()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return doc, nil
}

// writeDocument writes the document as indented JSON.
func writeDocument(doc *document.Document, path string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}
	data = append(data, '\n')
	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// CanonicalizeCmd runs the full pipeline.
type CanonicalizeCmd struct {
	Input string `arg:"" help:"Path to extracted document JSON" type:"existingfile"`
	Out   string `short:"o" required:"" help:"Output path (- for stdout)" type:"path"`

	DisablePlaceVersions bool   `name:"disable-place-versions" help:"Skip place version derivation"`
	DisablePlaceRefs     bool   `name:"disable-place-refs" help:"Skip event place refs"`
	JurisdictionSystem   string `name:"jurisdiction-system" help:"Override the default jurisdiction system"`
}

func (c *CanonicalizeCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts := pipeline.Options{Version: cfg.VersionOptions()}
	if c.DisablePlaceVersions {
		opts.Version.EnablePlaceVersions = false
	}
	if c.DisablePlaceRefs {
		opts.Version.EnableEventPlaceRefs = false
	}
	if c.JurisdictionSystem != "" {
		opts.Version.DefaultJurisdictionSystem = c.JurisdictionSystem
	}

	doc, err := loadDocument(c.Input)
	if err != nil {
		return err
	}

	if err := pipeline.Run(doc, opts); err != nil {
		return err
	}

	if err := writeDocument(doc, c.Out); err != nil {
		return err
	}

	logging.Info("canonicalize_complete",
		"input", c.Input,
		"output", c.Out,
		"individuals", len(doc.Individuals),
		"families", len(doc.Families),
		"places", len(doc.Places),
		"place_versions", len(doc.PlaceVersions),
	)
	return nil
}

// ValidateCmd runs the integrity gate against an already-canonical document.
type ValidateCmd struct {
	Input string `arg:"" help:"Path to canonical document JSON" type:"existingfile"`
	JSON  bool   `help:"Output violations as JSON"`
}

func (c *ValidateCmd) Run() error {
	doc, err := loadDocument(c.Input)
	if err != nil {
		return err
	}

	report := validate.Run(doc)
	if report == nil {
		fmt.Println("Validation passed.")
		return nil
	}

	if c.JSON {
		data, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(data))
	} else {
		fmt.Printf("Validation failed in category %q:\n", report.Category)
		for _, v := range report.Violations {
			fmt.Printf("  %s\n", v)
		}
	}
	return report.Err()
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("gencanon %s (schema %s)\n", version, document.SchemaVersion)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("gencanon"),
		kong.Description("Genealogical record canonicalization pipeline"),
		kong.UsageOnError(),
	)

	logging.InitLogger(logging.ParseLevel(CLI.LogLevel), logging.ParseFormat(CLI.LogFormat))

	if err := ctx.Run(); err != nil {
		logging.Error("command_failed", "error", err.Error())
		os.Exit(1)
	}
}
