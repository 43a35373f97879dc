package ingest

import (
	"errors"
	"fmt"
	"sort"

	"github.com/McNamara84/ernie-sub002/format/igsncsv"
	"github.com/McNamara84/ernie-sub002/graph"
)

// Error categories. Every row error belongs to exactly one.
const (
	CategoryDuplicateIdentifier     = "DuplicateIdentifier"
	CategoryMissingRequiredField    = "MissingRequiredField"
	CategoryInvalidDateComponent    = "InvalidDateComponent"
	CategorySchemaValidationFailure = "SchemaValidationFailure"
	CategoryMalformedInput          = "MalformedInput"
)

// Canonical error codes. Validation errors keep their finer-grained codes
// (invalid_format, out_of_range, conflict) under CategoryMalformedInput.
const (
	CodeDuplicateIGSN           = "duplicate_igsn"
	CodeMissingRequiredField    = "missing_required_field"
	CodeInvalidDateComponent    = "invalid_date_component"
	CodeSchemaValidationFailure = "schema_validation_failure"
	CodeMalformedInput          = "malformed_input"
)

// RowError is one row-scoped ingestion failure. Path, Keyword and Context
// are only set for export schema violations folded into a report.
type RowError struct {
	Row        int    `json:"row,omitempty"`
	Identifier string `json:"identifier,omitempty"`
	Category   string `json:"category,omitempty"`
	Code       string `json:"code,omitempty"`
	Path       string `json:"path,omitempty"`
	Keyword    string `json:"keyword,omitempty"`
	Context    string `json:"context,omitempty"`
	Message    string `json:"message"`
}

// Report is the batch result document returned to clients. Errors are
// ordered by row; a batch with any error reports Success false even when
// some rows were stored.
type Report struct {
	Success       bool       `json:"success"`
	Message       string     `json:"message,omitempty"`
	Filename      string     `json:"filename,omitempty"`
	Errors        []RowError `json:"errors,omitempty"`
	SchemaVersion string     `json:"schema_version,omitempty"`
	Created       int        `json:"created,omitempty"`
	Skipped       int        `json:"skipped,omitempty"`
}

// Processor runs batches against a store.
type Processor struct {
	Store Store
}

// NewProcessor creates a batch processor backed by the given store.
func NewProcessor(store Store) *Processor {
	return &Processor{Store: store}
}

// ProcessBatch ingests a parsed batch: parse-time row issues are carried
// into the report, then each built resource is checked for identifier
// collisions, validated, and stored. A duplicate identifier rejects the
// whole row; the remaining rows still run.
func (p *Processor) ProcessBatch(batch *igsncsv.Batch, filename string) *Report {
	report := &Report{Filename: filename}

	for _, issue := range batch.Issues {
		report.Errors = append(report.Errors, RowError{
			Row:        issue.Row,
			Identifier: issue.Identifier,
			Category:   categoryFor(issue.Code),
			Code:       issue.Code,
			Message:    issueMessage(issue),
		})
	}

	p.storeAll(batch.Resources, report)
	finish(report)
	return report
}

// ProcessResources ingests resources that did not come from a batch file,
// such as a parsed DataCite document or a graph dump.
func (p *Processor) ProcessResources(resources []*graph.Resource, filename string) *Report {
	report := &Report{Filename: filename}
	p.storeAll(resources, report)
	finish(report)
	return report
}

func (p *Processor) storeAll(resources []*graph.Resource, report *Report) {
	for _, res := range resources {
		row := res.SourceRow

		if res.Identifier != "" && p.Store.HasIdentifier(res.Identifier) {
			report.Errors = append(report.Errors, RowError{
				Row:        row,
				Identifier: res.Identifier,
				Category:   CategoryDuplicateIdentifier,
				Code:       CodeDuplicateIGSN,
				Message:    fmt.Sprintf("identifier %s already exists", res.Identifier),
			})
			report.Skipped++
			continue
		}

		result := graph.ValidateResource(res, graph.DefaultValidationOptions())
		if !result.IsValid() {
			for _, ve := range result.Errors {
				report.Errors = append(report.Errors, validationRowError(row, res.Identifier, ve))
			}
			report.Skipped++
			continue
		}

		if err := p.Store.Put(res); err != nil {
			code := CodeMalformedInput
			if errors.Is(err, ErrDuplicateIdentifier) {
				code = CodeDuplicateIGSN
			}
			report.Errors = append(report.Errors, RowError{
				Row:        row,
				Identifier: res.Identifier,
				Category:   categoryFor(code),
				Code:       code,
				Message:    err.Error(),
			})
			report.Skipped++
			continue
		}
		report.Created++
	}
}

func finish(report *Report) {
	sort.SliceStable(report.Errors, func(i, j int) bool {
		return report.Errors[i].Row < report.Errors[j].Row
	})
	report.Success = len(report.Errors) == 0
	total := report.Created + report.Skipped
	report.Message = fmt.Sprintf("stored %d of %d resources", report.Created, total)
}

func validationRowError(row int, identifier string, ve graph.ValidationError) RowError {
	code := ve.Code
	if code == "required" {
		code = CodeMissingRequiredField
	}
	return RowError{
		Row:        row,
		Identifier: identifier,
		Category:   categoryFor(code),
		Code:       code,
		Message:    ve.Error(),
	}
}

func categoryFor(code string) string {
	switch code {
	case CodeDuplicateIGSN:
		return CategoryDuplicateIdentifier
	case CodeMissingRequiredField:
		return CategoryMissingRequiredField
	case CodeInvalidDateComponent:
		return CategoryInvalidDateComponent
	case CodeSchemaValidationFailure:
		return CategorySchemaValidationFailure
	default:
		return CategoryMalformedInput
	}
}

func issueMessage(issue igsncsv.RowIssue) string {
	if issue.Field != "" {
		return fmt.Sprintf("%s: %s", issue.Field, issue.Message)
	}
	return issue.Message
}
