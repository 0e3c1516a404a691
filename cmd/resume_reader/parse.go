package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/resume-reader/internal/extraction"
	"github.com/jonathan/resume-reader/internal/observability"
	"github.com/jonathan/resume-reader/internal/schemas"
	"github.com/spf13/cobra"
)

var (
	parseValidate bool
	parseSummary  bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a résumé into ResumeRecord JSON",
	Long:  "Parse a PDF or DOCX résumé and print the extracted record as JSON. Nothing is stored.",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&parseValidate, "validate", false, "Validate the record against the resume_record schema")
	parseCmd.Flags().BoolVar(&parseSummary, "summary", false, "Print a human-readable summary instead of JSON")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	parser := extraction.NewParser(extraction.WithLogger(logger))
	record, err := parser.Parse(data, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if parseValidate {
		if err := schemas.ValidateRecord(record); err != nil {
			return fmt.Errorf("record failed validation: %w", err)
		}
	}

	if parseSummary {
		observability.NewPrinter(cmd.OutOrStdout()).PrintResumeRecord(record)
		return nil
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(record); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}
