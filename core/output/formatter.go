// Package output renders run reports for humans and machines.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"pricesync/core/reconcile"
	"pricesync/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatText is a human-readable table
	FormatText Format = "text"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render writes the report
	Render(w io.Writer, report *reconcile.Report) error
}

// New returns the formatter for a format name
func New(f Format) (Formatter, error) {
	switch f {
	case FormatText:
		return &TextFormatter{}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	}
	return nil, errors.Newf(errors.TypeConfig, "unknown output format %q", f)
}

// TextFormatter renders a human-readable table
type TextFormatter struct{}

// Format returns the format type
func (f *TextFormatter) Format() Format { return FormatText }

// Render writes one line per outcome followed by the summary
func (f *TextFormatter) Render(w io.Writer, report *reconcile.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "SKU\tSTATUS\tOLD\tNEW\tDETAIL\n")
	for _, o := range report.Outcomes {
		oldPrice, newPrice := "-", "-"
		if o.OldPrice != nil {
			oldPrice = o.OldPrice.StringFixed(2)
		}
		if o.NewPrice != nil {
			newPrice = o.NewPrice.StringFixed(2)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", o.SupplierSKU, o.Status, oldPrice, newPrice, o.Detail)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := report.Summary
	_, err := fmt.Fprintf(w, "\nrun %s: %d updated, %d not found, %d failed, %d skipped (%d items, margin %s%%, %s)\n",
		report.RunID, s.UpdatedCount, s.NotFoundCount, s.FailedCount, s.SkippedCount,
		len(report.Outcomes), report.MarginPercent.String(), report.Duration.Round(time.Millisecond))
	return err
}

// JSONFormatter renders the full report as indented JSON
type JSONFormatter struct{}

// Format returns the format type
func (f *JSONFormatter) Format() Format { return FormatJSON }

// Render writes the report as JSON
func (f *JSONFormatter) Render(w io.Writer, report *reconcile.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
