package domain

import "io"

// ExtractionPrefix prefixes the extraction fields of an outcome when it is
// flattened into a report row.
const ExtractionPrefix = "extraction_"

// DownloadRequest is one item of a batch. An empty Destination is resolved
// from the response headers or the URL.
type DownloadRequest struct {
	URL         string
	Destination string
}

// Outcome is the report row produced for a single DownloadRequest.
type Outcome struct {
	StatusCode      *int
	FileSize        *int64
	DownloadedBytes int64
	URL             string
	Destination     string
	Success         bool
	Cached          bool
	ErrorMessage    string
	Extraction      *ExtractionOutcome
}

// ExtractionOutcome describes the result of unpacking a downloaded file.
type ExtractionOutcome struct {
	FileSize    int64
	Destination string
	Cached      bool
	Success     bool
}

// ExtractionFields returns the extraction fields keyed with ExtractionPrefix, or nil
// when no extraction happened.
func (o *Outcome) ExtractionFields() map[string]any {
	if o.Extraction == nil {
		return nil
	}
	return map[string]any{
		ExtractionPrefix + "file_size":   o.Extraction.FileSize,
		ExtractionPrefix + "destination": o.Extraction.Destination,
		ExtractionPrefix + "cached":      o.Extraction.Cached,
		ExtractionPrefix + "success":     o.Extraction.Success,
	}
}

// Response is a streamed HTTP response whose body has not been read yet.
type Response struct {
	StatusCode    int
	ContentLength int64
	// Filename is the name suggested by the Content-Disposition header, if any.
	Filename string
	Body     io.ReadCloser
}
