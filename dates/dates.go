// Package dates resolves granular date strings.
//
// Stored dates keep the precision they arrived with: a bare year, a
// year-month, a full date or an ISO-8601 datetime. Parse expands the
// partial forms into concrete calendar days for range endpoints; the
// Resolver renders stored (start, end) pairs as DataCite date strings.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Granularity is the precision at which a date is known.
type Granularity int

const (
	GranularityUnknown Granularity = iota
	GranularityYear
	GranularityMonth
	GranularityDay
	GranularityDateTime
)

var (
	// Year only: 1978
	yearOnlyRegex = regexp.MustCompile(`^(\d{4})$`)

	// Year-month: 1978-03
	yearMonthRegex = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

	// Full date: 1978-03-15
	fullDateRegex = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)

	// Datetime prefix: 1978-03-15T22:43
	dateTimeRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}`)

	// Trailing UTC offset: Z, +02:00, -0500
	offsetRegex = regexp.MustCompile(`(Z|[+-]\d{2}:?\d{2})$`)
)

// ParseError reports a rejected date component.
type ParseError struct {
	Raw    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid date %q: %s", e.Raw, e.Reason)
}

// dateTimeLayouts are the accepted ISO-8601 datetime shapes, with and
// without seconds and offset.
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// Parse resolves a granular date string into a concrete value.
//
// Empty or whitespace-only input resolves to "" without error. A bare year
// becomes its first or last day depending on endOfRange; a year-month
// becomes the first or the last calendar day of that month, honoring leap
// years. Full dates and datetimes are returned unchanged. Months outside
// 01-12 and impossible days are rejected, never guessed.
func Parse(raw string, endOfRange bool) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", nil
	}

	if matches := yearOnlyRegex.FindStringSubmatch(trimmed); matches != nil {
		if endOfRange {
			return matches[1] + "-12-31", nil
		}
		return matches[1] + "-01-01", nil
	}

	if matches := yearMonthRegex.FindStringSubmatch(trimmed); matches != nil {
		year, _ := strconv.Atoi(matches[1])
		month, _ := strconv.Atoi(matches[2])
		if month < 1 || month > 12 {
			return "", &ParseError{Raw: raw, Reason: fmt.Sprintf("month %02d is not in 01-12", month)}
		}
		if endOfRange {
			return fmt.Sprintf("%04d-%02d-%02d", year, month, lastDayOfMonth(year, month)), nil
		}
		return fmt.Sprintf("%04d-%02d-01", year, month), nil
	}

	if fullDateRegex.MatchString(trimmed) {
		if _, err := time.Parse("2006-01-02", trimmed); err != nil {
			return "", &ParseError{Raw: raw, Reason: "impossible calendar day"}
		}
		return trimmed, nil
	}

	if dateTimeRegex.MatchString(trimmed) {
		for _, layout := range dateTimeLayouts {
			if _, err := time.Parse(layout, trimmed); err == nil {
				return trimmed, nil
			}
		}
		return "", &ParseError{Raw: raw, Reason: "unparseable datetime"}
	}

	return "", &ParseError{Raw: raw, Reason: "unrecognized date format"}
}

// lastDayOfMonth uses the day-zero normalization of time.Date: day 0 of
// the following month is the last day of this one, leap years included.
func lastDayOfMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// GranularityOf classifies a stored date string.
func GranularityOf(v string) Granularity {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return GranularityUnknown
	case yearOnlyRegex.MatchString(v):
		return GranularityYear
	case yearMonthRegex.MatchString(v):
		return GranularityMonth
	case fullDateRegex.MatchString(v):
		return GranularityDay
	case dateTimeRegex.MatchString(v):
		return GranularityDateTime
	default:
		return GranularityUnknown
	}
}

// SplitRange splits a rendered "start/end" date into its halves. A value
// without a slash is an open-ended start; a leading slash marks an
// open start.
func SplitRange(raw string) (start, end string) {
	trimmed := strings.TrimSpace(raw)
	idx := strings.Index(trimmed, "/")
	if idx < 0 {
		return trimmed, ""
	}
	return strings.TrimSpace(trimmed[:idx]), strings.TrimSpace(trimmed[idx+1:])
}

// Resolver renders stored dates for export. FallbackOffset is the UTC
// offset applied to datetimes that carry none; it is deployment
// configuration handed in explicitly, never a package-level default.
type Resolver struct {
	FallbackOffset string
}

// NewResolver creates a Resolver with the given fallback UTC offset
// ("Z", "+02:00", ...). An empty offset leaves offset-less datetimes
// unchanged.
func NewResolver(fallbackOffset string) *Resolver {
	return &Resolver{FallbackOffset: strings.TrimSpace(fallbackOffset)}
}

// RenderValue renders one stored date value. Datetimes without a UTC
// offset get the configured fallback appended; everything else passes
// through unchanged.
func (r *Resolver) RenderValue(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if GranularityOf(v) == GranularityDateTime && !offsetRegex.MatchString(v) && r.FallbackOffset != "" {
		return v + r.FallbackOffset
	}
	return v
}

// RenderRange renders a (start, end) pair as a DataCite date string:
// "start/end" when both are present, the bare start when the end is open
// (never "start/"), and "/end" when only the end is known.
func (r *Resolver) RenderRange(start, end string) string {
	s := r.RenderValue(start)
	e := r.RenderValue(end)
	switch {
	case s != "" && e != "":
		return s + "/" + e
	case s != "":
		return s
	case e != "":
		return "/" + e
	default:
		return ""
	}
}
