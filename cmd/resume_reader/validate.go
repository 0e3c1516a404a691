package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jonathan/resume-reader/internal/schemas"
	schemafiles "github.com/jonathan/resume-reader/schemas"
	"github.com/spf13/cobra"
)

var (
	validateSchemaPath string
	validateMasked     bool
)

var validateCmd = &cobra.Command{
	Use:   "validate <file.json>",
	Short: "Validate record JSON against a schema",
	Long: `Validate a JSON document, such as the output of "parse", against the resume record schema.
Use --masked for a search listing entry, or --schema to check against a schema file on disk.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateSchemaPath, "schema", "", "Path to a JSON Schema file (overrides the embedded schemas)")
	validateCmd.Flags().BoolVar(&validateMasked, "masked", false, "Validate against the masked listing entry schema")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]

	var err error
	if validateSchemaPath != "" {
		err = schemas.ValidateJSON(validateSchemaPath, path)
	} else {
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("failed to read input file: %w", readErr)
		}
		schema := schemafiles.ResumeRecord
		if validateMasked {
			schema = schemafiles.MaskedResumeView
		}
		err = schemas.ValidateJSONString(schema, string(data))
	}

	var validationErr *schemas.ValidationError
	switch {
	case err == nil:
		fmt.Fprintf(cmd.OutOrStdout(), "%s: valid\n", path)
		return nil
	case errors.As(err, &validationErr):
		return fmt.Errorf("%s does not validate against schema: %w", path, err)
	default:
		return err
	}
}
