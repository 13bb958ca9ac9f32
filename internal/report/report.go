// Package report turns download outcomes into a table with one row per
// request, in request order.
package report

import (
	"strconv"

	"github.com/teamcutter/fetchr/internal/domain"
)

// Columns is the exact column order of every rendering of a report.
var Columns = []string{
	"status_code",
	"file_size",
	"downloaded_bytes",
	"url",
	"destination",
	"success",
	"cached",
	"error_message",
	domain.ExtractionPrefix + "file_size",
	domain.ExtractionPrefix + "destination",
	domain.ExtractionPrefix + "cached",
	domain.ExtractionPrefix + "success",
}

type Report struct {
	// Batch identifies the download call that produced the rows.
	Batch string
	Rows  []domain.Outcome
}

func New(batch string, rows []domain.Outcome) *Report {
	return &Report{Batch: batch, Rows: rows}
}

func (r *Report) Len() int {
	return len(r.Rows)
}

// Failed returns the rows whose download did not succeed.
func (r *Report) Failed() []domain.Outcome {
	var failed []domain.Outcome
	for _, row := range r.Rows {
		if !row.Success {
			failed = append(failed, row)
		}
	}
	return failed
}

// row is the flattened form of an outcome. Field order matches Columns.
type row struct {
	StatusCode            *int    `json:"status_code"`
	FileSize              *int64  `json:"file_size"`
	DownloadedBytes       int64   `json:"downloaded_bytes"`
	URL                   string  `json:"url"`
	Destination           string  `json:"destination"`
	Success               bool    `json:"success"`
	Cached                bool    `json:"cached"`
	ErrorMessage          string  `json:"error_message"`
	ExtractionFileSize    *int64  `json:"extraction_file_size"`
	ExtractionDestination *string `json:"extraction_destination"`
	ExtractionCached      *bool   `json:"extraction_cached"`
	ExtractionSuccess     *bool   `json:"extraction_success"`
}

func flatten(o domain.Outcome) row {
	r := row{
		StatusCode:      o.StatusCode,
		FileSize:        o.FileSize,
		DownloadedBytes: o.DownloadedBytes,
		URL:             o.URL,
		Destination:     o.Destination,
		Success:         o.Success,
		Cached:          o.Cached,
		ErrorMessage:    o.ErrorMessage,
	}
	if e := o.Extraction; e != nil {
		r.ExtractionFileSize = &e.FileSize
		r.ExtractionDestination = &e.Destination
		r.ExtractionCached = &e.Cached
		r.ExtractionSuccess = &e.Success
	}
	return r
}

// Values renders an outcome as strings in Columns order; absent values are empty.
func Values(o domain.Outcome) []string {
	r := flatten(o)
	return []string{
		intOrEmpty(r.StatusCode),
		int64OrEmpty(r.FileSize),
		strconv.FormatInt(r.DownloadedBytes, 10),
		r.URL,
		r.Destination,
		strconv.FormatBool(r.Success),
		strconv.FormatBool(r.Cached),
		r.ErrorMessage,
		int64OrEmpty(r.ExtractionFileSize),
		stringOrEmpty(r.ExtractionDestination),
		boolOrEmpty(r.ExtractionCached),
		boolOrEmpty(r.ExtractionSuccess),
	}
}

func intOrEmpty(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func int64OrEmpty(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func stringOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func boolOrEmpty(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}
