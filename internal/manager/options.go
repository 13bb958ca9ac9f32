package manager

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/teamcutter/fetchr/internal/domain"
)

const (
	// AutoWorkers uses one worker per available CPU.
	AutoWorkers = -1

	DefaultChunkSize = 32768
	DefaultTargetDir = "downloads"
	DefaultTimeout   = 1 * time.Hour
)

// Verbosity levels.
const (
	Silent = iota
	BatchProgress
	ItemProgress
)

// Options configures a Manager. Use DefaultOptions as the starting point:
// the zero value of Workers is rejected.
type Options struct {
	// Workers is the number of concurrent downloads. Negative means one per
	// CPU; zero is invalid.
	Workers int

	// ChunkSize is the read size used while streaming response bodies.
	ChunkSize int

	// AutoExtract unpacks downloads whose format is recognized.
	AutoExtract bool

	// DeleteOriginal removes a download once it has been extracted.
	DeleteOriginal bool

	// Cache skips downloads and extractions whose output already exists.
	Cache bool

	// TargetDir receives downloads whose destination is inferred.
	TargetDir string

	// FailFast aborts the batch on the first failed item. When false, failures
	// are recorded in the report and the batch continues.
	FailFast bool

	// Verbose selects the progress output: Silent, BatchProgress or ItemProgress.
	Verbose int

	// Timeout bounds each HTTP request, body included.
	Timeout time.Duration

	// Output is where progress bars are drawn. Default: os.Stderr
	Output io.Writer

	Logger zerolog.Logger
}

func DefaultOptions() Options {
	return Options{
		Workers:     AutoWorkers,
		ChunkSize:   DefaultChunkSize,
		AutoExtract: true,
		Cache:       true,
		TargetDir:   DefaultTargetDir,
		FailFast:    true,
		Verbose:     BatchProgress,
		Timeout:     DefaultTimeout,
		Logger:      zerolog.Nop(),
	}
}

// resolve validates o and fills in the values that depend on the machine.
func (o Options) resolve() (Options, error) {
	if o.Workers == 0 {
		return o, fmt.Errorf("%w: worker count must be nonzero, use %d for one per CPU", domain.ErrConfiguration, AutoWorkers)
	}
	if o.ChunkSize <= 0 {
		return o, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrConfiguration, o.ChunkSize)
	}
	if o.Verbose < Silent || o.Verbose > ItemProgress {
		return o, fmt.Errorf("%w: verbosity must be between %d and %d, got %d", domain.ErrConfiguration, Silent, ItemProgress, o.Verbose)
	}
	if o.Timeout < 0 {
		return o, fmt.Errorf("%w: timeout must not be negative", domain.ErrConfiguration)
	}

	if o.Workers < 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.Workers == 1 && o.Verbose == BatchProgress {
		o.Verbose = ItemProgress
	}
	if o.TargetDir == "" {
		o.TargetDir = DefaultTargetDir
	}
	if o.Output == nil {
		o.Output = os.Stderr
	}
	return o, nil
}
