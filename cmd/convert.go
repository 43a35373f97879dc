package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/McNamara84/ernie-sub002/format"
	"github.com/McNamara84/ernie-sub002/format/datacite"
	"github.com/McNamara84/ernie-sub002/graph"
	"github.com/McNamara84/ernie-sub002/ingest"
	"github.com/McNamara84/ernie-sub002/mapping"
)

var (
	inputFile      string
	outputFile     string
	outputDir      string
	profileName    string
	profileFile    string
	multiValueSep  string
	columns        []string
	stripHTML      bool
	pretty         bool
	validateOutput bool
	strictParse    bool
	fallbackOffset string
)

var convertCmd = &cobra.Command{
	Use:   "convert <from> <to>",
	Short: "Convert metadata between formats",
	Long: `Convert sample and dataset metadata from one format to another.

Arguments:
  from    Source format (igsncsv, datacite, datacite-json, graphjson),
          or auto to detect it from the file name and content
  to      Target format (igsncsv, datacite, datacite-json, graphjson)

Input defaults to stdin, output defaults to stdout. DataCite output is
validated against the embedded schema before anything is written; on
failure an error report document is printed instead of a partial export.

Examples:
  # Batch file to DataCite XML (stdin to stdout)
  cat batch.csv | ernie convert igsncsv datacite

  # Explicit input and output files
  ernie convert igsncsv datacite-json -i batch.csv -o export.json --pretty

  # One file per resource, named by identifier
  ernie convert igsncsv datacite -i batch.csv --out-dir export/

  # Reimport a DataCite export into a graph dump
  ernie convert datacite graphjson -i export.xml --pretty

  # Turn a DataCite export back into a batch file
  ernie convert datacite igsncsv -i export.xml -o batch.csv

  # Let the source format be detected
  ernie convert auto graphjson -i export.xml --pretty`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file (default: stdin)")
	convertCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	convertCmd.Flags().StringVar(&outputDir, "out-dir", "", "Write one file per resource into this directory")
	convertCmd.Flags().StringVarP(&profileName, "profile", "p", "", "Column mapping profile (default: from config)")
	convertCmd.Flags().StringVar(&profileFile, "profile-file", "", "Custom profile YAML file")
	convertCmd.Flags().StringVar(&multiValueSep, "separator", "", "Multi-value separator override")
	convertCmd.Flags().StringSliceVarP(&columns, "columns", "c", nil, "Columns for tabular output (default: all mapped)")
	convertCmd.Flags().BoolVar(&stripHTML, "strip-html", true, "Strip HTML from text fields")
	convertCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	convertCmd.Flags().BoolVar(&validateOutput, "validate", true, "Validate DataCite output against the schema")
	convertCmd.Flags().BoolVar(&strictParse, "strict", false, "Fail on the first row issue instead of accumulating")
	convertCmd.Flags().StringVar(&fallbackOffset, "fallback-offset", "", "UTC offset for datetimes without one (default: from config)")
}

func runConvert(cmd *cobra.Command, args []string) (err error) {
	fromFormat := args[0]
	toFormat := args[1]

	// Determine input source
	var input io.Reader
	var inputName string

	if inputFile != "" {
		f, openErr := os.Open(inputFile)
		if openErr != nil {
			return fmt.Errorf("opening input file: %w", openErr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing input file: %w", cerr)
			}
		}()
		input = f
		inputName = filepath.Base(inputFile)
	} else {
		input = os.Stdin
		inputName = "stdin"
	}

	parser, input, err := resolveParser(fromFormat, inputFile, input)
	if err != nil {
		return err
	}

	serializer, err := format.GetSerializer(toFormat)
	if err != nil {
		return fmt.Errorf("target format: %w", err)
	}

	profile, err := loadProfile(profileFile, profileName)
	if err != nil {
		return fmt.Errorf("loading profile: %w", err)
	}

	parseOpts := &format.ParseOptions{
		Profile:        profile,
		StripHTML:      stripHTML,
		Strict:         strictParse || viper.GetBool("strict"),
		SourceName:     inputName,
		FallbackOffset: offsetSetting(),
	}

	resources, err := parser.Parse(input, parseOpts)
	if err != nil {
		return fmt.Errorf("parsing input: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Parsed %d resources\n", len(resources))

	serializeOpts := format.NewSerializeOptions()
	serializeOpts.Pretty = pretty
	serializeOpts.Validate = validateOutput
	serializeOpts.FallbackOffset = offsetSetting()
	serializeOpts.Profile = profile
	serializeOpts.Columns = columns
	if multiValueSep != "" {
		serializeOpts.MultiValueSeparator = multiValueSep
	} else if profile != nil {
		serializeOpts.MultiValueSeparator = profile.Separator()
	}

	if outputDir != "" {
		return writePerResource(serializer, toFormat, resources, serializeOpts)
	}

	// Determine output destination
	var output io.Writer
	if outputFile != "" {
		f, createErr := os.Create(outputFile)
		if createErr != nil {
			return fmt.Errorf("creating output file: %w", createErr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing output file: %w", cerr)
			}
		}()
		output = f
	} else {
		output = os.Stdout
	}

	if err := serializer.Serialize(output, resources, serializeOpts); err != nil {
		return exportError(err, outputFile)
	}

	return nil
}

// writePerResource serializes each resource into its own file inside
// outputDir, named after its identifier.
func writePerResource(serializer format.Serializer, toFormat string, resources []*graph.Resource, opts *format.SerializeOptions) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	ext := formatExtension(toFormat)
	for _, res := range resources {
		name := datacite.ExportFilename(res, ext)
		path := filepath.Join(outputDir, name)

		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		serr := serializer.Serialize(f, []*graph.Resource{res}, opts)
		cerr := f.Close()
		if serr != nil {
			// Validation runs before any write; drop the empty file.
			os.Remove(path)
			return exportError(serr, name)
		}
		if cerr != nil {
			return fmt.Errorf("closing %s: %w", path, cerr)
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
	}

	return nil
}

// exportError turns a schema validation failure into the error report
// document clients receive; other serialization errors pass through.
func exportError(err error, filename string) error {
	var sv *datacite.SchemaValidationError
	if !errors.As(err, &sv) {
		return fmt.Errorf("serializing output: %w", err)
	}

	report := &ingest.Report{
		Message:       "document does not conform to the DataCite schema",
		Filename:      filename,
		SchemaVersion: sv.SchemaVersion,
	}
	for _, se := range sv.Errors {
		report.Errors = append(report.Errors, ingest.RowError{
			Category: ingest.CategorySchemaValidationFailure,
			Code:     ingest.CodeSchemaValidationFailure,
			Path:     se.Path,
			Keyword:  se.Keyword,
			Context:  se.Context,
			Message:  se.Message,
		})
	}

	if out, merr := json.MarshalIndent(report, "", "  "); merr == nil {
		fmt.Println(string(out))
	}
	return fmt.Errorf("schema validation failed: %d violations", len(sv.Errors))
}

// loadProfile resolves the mapping profile: an explicit file wins, then
// the named profile from the embedded set and $HOME/.ernie/profiles/.
// sniffLen is how many leading bytes format detection may inspect.
const sniffLen = 512

// resolveParser looks up the parser for the named format. The name "auto"
// detects the format from the input path and leading bytes instead; the
// returned reader replays whatever was peeked.
func resolveParser(name, path string, input io.Reader) (format.Parser, io.Reader, error) {
	if name != "auto" {
		p, err := format.GetParser(name)
		if err != nil {
			return nil, nil, err
		}
		return p, input, nil
	}

	br := bufio.NewReaderSize(input, sniffLen)
	peek, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("reading input: %w", err)
	}

	var f format.Format
	if path != "" {
		f, err = format.DetectFormat(filepath.Base(path), peek)
	} else {
		f, err = format.DetectFromContent(peek)
	}
	if err != nil {
		return nil, nil, err
	}
	p, ok := f.(format.Parser)
	if !ok {
		return nil, nil, fmt.Errorf("detected format %q has no parser", f.Name())
	}
	return p, br, nil
}

func loadProfile(file, name string) (*mapping.Profile, error) {
	if file != "" {
		return mapping.LoadProfile(file)
	}

	if name == "" {
		name = viper.GetString("profile")
	}

	registry, err := mapping.NewProfileRegistry()
	if err != nil {
		return nil, err
	}
	if home, herr := os.UserHomeDir(); herr == nil {
		// User profiles shadow embedded ones of the same name.
		_ = registry.LoadFromDirectory(filepath.Join(home, ".ernie", "profiles"))
	}

	p, ok := registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown profile: %s", name)
	}
	return p, nil
}

func offsetSetting() string {
	if fallbackOffset != "" {
		return fallbackOffset
	}
	return viper.GetString("dates.fallback_offset")
}

func formatExtension(name string) string {
	if f, ok := format.Get(name); ok {
		if exts := f.Extensions(); len(exts) > 0 {
			return exts[0]
		}
	}
	if strings.Contains(name, "json") {
		return "json"
	}
	return "txt"
}
