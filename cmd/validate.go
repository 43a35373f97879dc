package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/McNamara84/ernie-sub002/format"
	"github.com/McNamara84/ernie-sub002/format/datacite"
	"github.com/McNamara84/ernie-sub002/format/igsncsv"
	"github.com/McNamara84/ernie-sub002/graph"
	"github.com/McNamara84/ernie-sub002/ingest"
)

var (
	validateInput   string
	validateProfile string
	validateSchema  bool
	validateStrict  bool
)

var validateCmd = &cobra.Command{
	Use:   "validate <format>",
	Short: "Validate metadata without converting",
	Long: `Validate metadata by parsing it into the resource graph and running it
through batch ingestion against an empty store.

The output is the report document batch clients receive: row-scoped
errors with category and code, in row order, one entry per problem. A
bad row never hides the problems of the rows after it. With --schema
each resource is additionally checked against the embedded DataCite
schema.

Arguments:
  format  Input format (igsncsv, datacite, datacite-json, graphjson),
          or auto to detect it from the file name and content

Input defaults to stdin.

Examples:
  ernie validate igsncsv -i batch.csv
  ernie validate datacite -i export.xml --schema
  cat batch.csv | ernie validate igsncsv`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateInput, "input", "i", "", "Input file (default: stdin)")
	validateCmd.Flags().StringVarP(&validateProfile, "profile", "p", "", "Column mapping profile (default: from config)")
	validateCmd.Flags().BoolVar(&validateSchema, "schema", false, "Also check resources against the DataCite schema")
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Fail on the first row issue")
}

func runValidate(cmd *cobra.Command, args []string) (err error) {
	fromFormat := args[0]

	// Determine input source
	var input io.Reader
	var inputName string

	if validateInput != "" {
		f, openErr := os.Open(validateInput)
		if openErr != nil {
			return fmt.Errorf("opening input file: %w", openErr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing input file: %w", cerr)
			}
		}()
		input = f
		inputName = filepath.Base(validateInput)
	} else {
		input = os.Stdin
		inputName = "stdin"
	}

	parser, input, err := resolveParser(fromFormat, validateInput, input)
	if err != nil {
		return err
	}

	profile, err := loadProfile("", validateProfile)
	if err != nil {
		return fmt.Errorf("loading profile: %w", err)
	}

	parseOpts := &format.ParseOptions{
		Profile:        profile,
		StripHTML:      true,
		Strict:         validateStrict || viper.GetBool("strict"),
		SourceName:     inputName,
		FallbackOffset: viper.GetString("dates.fallback_offset"),
	}

	store := ingest.NewMemStore()
	processor := ingest.NewProcessor(store)

	// Batch formats carry their row issues into the report; everything
	// else goes through the plain resource path.
	var report *ingest.Report
	if batchParser, ok := parser.(*igsncsv.Format); ok {
		batch, perr := batchParser.ParseBatch(input, parseOpts)
		if perr != nil {
			return fmt.Errorf("parsing input: %w", perr)
		}
		report = processor.ProcessBatch(batch, inputName)
	} else {
		resources, perr := parser.Parse(input, parseOpts)
		if perr != nil {
			return fmt.Errorf("parsing input: %w", perr)
		}
		report = processor.ProcessResources(resources, inputName)
	}

	if validateSchema {
		appendSchemaErrors(report, store.All())
	}

	out, merr := json.MarshalIndent(report, "", "  ")
	if merr != nil {
		return merr
	}
	fmt.Println(string(out))

	if !report.Success {
		return fmt.Errorf("validation found %d errors", len(report.Errors))
	}
	return nil
}

// appendSchemaErrors runs each stored resource through DataCite schema
// validation and folds any violations into the report.
func appendSchemaErrors(report *ingest.Report, resources []*graph.Resource) {
	serializer := &datacite.JSONFormat{}
	opts := format.NewSerializeOptions()

	for _, res := range resources {
		err := serializer.Serialize(io.Discard, []*graph.Resource{res}, opts)
		var sv *datacite.SchemaValidationError
		if !errors.As(err, &sv) {
			continue
		}
		report.SchemaVersion = sv.SchemaVersion
		report.Success = false
		for _, se := range sv.Errors {
			report.Errors = append(report.Errors, ingest.RowError{
				Row:        res.SourceRow,
				Identifier: res.Identifier,
				Category:   ingest.CategorySchemaValidationFailure,
				Code:       ingest.CodeSchemaValidationFailure,
				Path:       se.Path,
				Keyword:    se.Keyword,
				Context:    se.Context,
				Message:    se.Message,
			})
		}
	}
}
