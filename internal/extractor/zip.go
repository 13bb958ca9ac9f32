package extractor

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/klauspost/compress/zip"
)

func unpackZip(ctx context.Context, src, dst string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if !isLocal(f.Name) {
			return fmt.Errorf("%w: %s", ErrUnsafePath, f.Name)
		}
	}

	if err := os.MkdirAll(dst, 0755); err != nil {
		return err
	}
	root, err := os.OpenRoot(dst)
	if err != nil {
		return err
	}
	defer root.Close()

	for _, f := range r.File {
		name := filepath.FromSlash(path.Clean(f.Name))

		if f.FileInfo().IsDir() {
			if name == "." {
				continue
			}
			if err := root.MkdirAll(name, 0755); err != nil {
				return err
			}
			continue
		}

		if err := mkdirParent(root, name); err != nil {
			return err
		}

		rc, err := f.Open()
		if err != nil {
			return err
		}

		err = writeFile(ctx, root, name, rc, f.Mode())
		rc.Close()
		if err != nil {
			return err
		}
	}

	return nil
}
