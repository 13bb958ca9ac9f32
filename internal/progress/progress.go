// Package progress renders download progress. Bars are purely observational:
// nothing they do feeds back into the download.
package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

const (
	descriptionPattern = "Downloading to %s"
	maxDescription     = 50
)

// Bar receives progress updates. Write counts bytes, Add counts items.
type Bar interface {
	io.Writer
	Add(n int) error
	Finish() error
}

type Reporter interface {
	// Bytes starts a byte-counting bar. A negative total means unknown.
	Bytes(total int64, label string) Bar
	// Items starts a bar counting completed items.
	Items(total int, label string) Bar
}

// Terminal draws bars on an output stream.
type Terminal struct {
	out io.Writer
}

func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

func (t *Terminal) Bytes(total int64, label string) Bar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(t.out),
		progressbar.OptionSetDescription(label),
		progressbar.OptionShowBytes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(10),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
		progressbar.OptionClearOnFinish(),
	)
}

func (t *Terminal) Items(total int, label string) Bar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(t.out),
		progressbar.OptionSetDescription(label),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// Nop discards every update.
type Nop struct{}

func (Nop) Bytes(int64, string) Bar { return nopBar{} }
func (Nop) Items(int, string) Bar   { return nopBar{} }

type nopBar struct{}

func (nopBar) Write(p []byte) (int, error) { return len(p), nil }
func (nopBar) Add(int) error               { return nil }
func (nopBar) Finish() error               { return nil }

// Describe returns the label of a per-file bar, eliding the middle of long
// paths. Lengths count runes.
func Describe(path string) string {
	limit := maxDescription - len(descriptionPattern)
	if runes := []rune(path); len(runes) > limit {
		half := limit / 2
		path = string(runes[:half]) + "..." + string(runes[len(runes)-(limit-half):])
	}
	return fmt.Sprintf(descriptionPattern, path)
}
