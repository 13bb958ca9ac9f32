package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/teamcutter/fetchr/internal/domain"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
	dim   = color.New(color.Faint).SprintFunc()
)

func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, o := range r.Rows {
		if err := cw.Write(Values(o)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the rows as a JSON array of flat objects; absent values are null.
func (r *Report) WriteJSON(w io.Writer) error {
	rows := make([]row, 0, len(r.Rows))
	for _, o := range r.Rows {
		rows = append(rows, flatten(o))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// WriteTable writes a human-oriented summary: one line per row with status,
// sizes and destination, followed by the error message of failed rows.
func (r *Report) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join([]string{"", bold("status"), bold("size"), bold("destination"), bold("extracted")}, "\t"))

	for _, o := range r.Rows {
		fmt.Fprintln(tw, strings.Join([]string{
			mark(o),
			statusText(o),
			sizeText(o),
			o.Destination,
			extractionText(o),
		}, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, o := range r.Rows {
		if !o.Success && o.ErrorMessage != "" {
			if _, err := fmt.Fprintf(w, "%s %s: %s\n", red("✗"), o.URL, o.ErrorMessage); err != nil {
				return err
			}
		}
	}
	return nil
}

func mark(o domain.Outcome) string {
	if o.Success {
		return green("✓")
	}
	return red("✗")
}

func statusText(o domain.Outcome) string {
	status := "-"
	if o.StatusCode != nil {
		status = fmt.Sprint(*o.StatusCode)
	}
	if o.Cached {
		status += " " + dim("(cached)")
	}
	return status
}

func sizeText(o domain.Outcome) string {
	if o.FileSize != nil {
		return humanize.Bytes(uint64(max(*o.FileSize, 0)))
	}
	if o.DownloadedBytes > 0 {
		return humanize.Bytes(uint64(o.DownloadedBytes))
	}
	return "-"
}

func extractionText(o domain.Outcome) string {
	e := o.Extraction
	if e == nil {
		return "-"
	}
	text := fmt.Sprintf("%s (%s)", e.Destination, humanize.Bytes(uint64(max(e.FileSize, 0))))
	if e.Cached {
		text += " " + dim("(cached)")
	}
	return text
}
