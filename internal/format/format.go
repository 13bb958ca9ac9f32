// Package format classifies files by their content rather than their name.
package format

// Format is the archive or compression format of a file.
type Format int

const (
	None Format = iota
	Gzip
	Xz
	Bzip2
	Zstd
	Tar
	TarGz
	Zip
)

func (f Format) String() string {
	switch f {
	case Gzip:
		return "gzip"
	case Xz:
		return "xz"
	case Bzip2:
		return "bzip2"
	case Zstd:
		return "zstd"
	case Tar:
		return "tar"
	case TarGz:
		return "tar.gz"
	case Zip:
		return "zip"
	default:
		return "none"
	}
}

// classifyOrder lists compound formats before their components so a
// gzip-compressed tar never reports as gzip.
var classifyOrder = []Format{TarGz, Tar, Gzip, Xz, Bzip2, Zstd, Zip}

// Classify returns the format of the file at path, or None if it is not
// recognized or cannot be read.
func Classify(path string) Format {
	for _, f := range classifyOrder {
		if Is(path, f) {
			return f
		}
	}
	return None
}

// Is reports whether the file at path is of format f. The tar and tar.gz
// checks are mutually exclusive, and Gzip excludes gzip-compressed tars.
func Is(path string, f Format) bool {
	switch f {
	case Gzip:
		return IsGzip(path) && !IsTarGz(path)
	case Xz:
		return IsXz(path)
	case Bzip2:
		return IsBzip2(path)
	case Zstd:
		return IsZstd(path)
	case Tar:
		return IsTar(path)
	case TarGz:
		return IsTarGz(path)
	case Zip:
		return IsZip(path)
	default:
		return false
	}
}
