package format

import (
	"archive/tar"
	"bytes"
	"compress/bzip2"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/ulikunitz/xz"
)

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	zstdMagic  = []byte{0x28, 0xb5, 0x2f, 0xfd}
	bzip2Magic = []byte{'B', 'Z', 'h'}
)

// IsGzip reports whether the file starts with the gzip magic 0x1F 0x8B.
func IsGzip(path string) bool {
	return hasMagic(path, gzipMagic)
}

// IsZstd reports whether the file starts with the zstd frame magic.
func IsZstd(path string) bool {
	return hasMagic(path, zstdMagic)
}

// IsBzip2 reports whether the file carries a bzip2 header and its first
// byte decompresses.
func IsBzip2(path string) bool {
	header, err := readPrefix(path, 4)
	if err != nil || len(header) < 4 || !bytes.HasPrefix(header, bzip2Magic) {
		return false
	}
	if header[3] < '1' || header[3] > '9' {
		return false
	}

	return readsOneByte(path, func(r io.Reader) (io.Reader, error) {
		return bzip2.NewReader(r), nil
	})
}

// IsXz reports whether the file opens as an xz stream and yields its first byte.
func IsXz(path string) bool {
	return readsOneByte(path, func(r io.Reader) (io.Reader, error) {
		return xz.NewReader(r)
	})
}

// IsTar reports whether the file is an uncompressed tar container.
func IsTar(path string) bool {
	if IsGzip(path) {
		return false
	}
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	return validTar(file)
}

// IsTarGz reports whether the file is a gzip stream wrapping a tar container.
func IsTarGz(path string) bool {
	if !IsGzip(path) {
		return false
	}
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	gzr, err := gzip.NewReader(file)
	if err != nil {
		return false
	}
	defer gzr.Close()

	return validTar(gzr)
}

// IsZip reports whether the file opens as a zip container.
func IsZip(path string) bool {
	r, err := zip.OpenReader(path)
	if err != nil {
		return false
	}
	r.Close()
	return true
}

func validTar(r io.Reader) bool {
	_, err := tar.NewReader(r).Next()
	return err == nil
}

func hasMagic(path string, magic []byte) bool {
	header, err := readPrefix(path, len(magic))
	if err != nil {
		return false
	}
	return bytes.Equal(header, magic)
}

func readPrefix(path string, n int) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(file, buf)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		return buf[:read], nil
	}
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// readsOneByte opens path through open and reports whether the first
// decompressed byte can be read. An empty stream counts as readable.
func readsOneByte(path string, open func(io.Reader) (io.Reader, error)) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	r, err := open(file)
	if err != nil {
		return false
	}
	if _, err := io.ReadFull(r, make([]byte, 1)); err != nil && err != io.EOF {
		return false
	}
	return true
}
