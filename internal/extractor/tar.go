package extractor

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrUnsafePath is returned for archive members that would be written
// outside the extraction directory.
var ErrUnsafePath = errors.New("member path escapes destination")

func unpackTar(ctx context.Context, src, dst string) error {
	return untar(ctx, src, dst, openPlain)
}

func unpackTarGz(ctx context.Context, src, dst string) error {
	return untar(ctx, src, dst, openGzip)
}

// untar validates every member before writing any of them, so a rejected
// archive leaves nothing behind. Writes go through an os.Root, which refuses
// to follow links out of dst.
func untar(ctx context.Context, src, dst string, open openFunc) error {
	check := newMemberCheck()
	if err := walkTar(src, open, func(header *tar.Header, _ io.Reader) error {
		return check.validate(header)
	}); err != nil {
		return err
	}

	if err := os.MkdirAll(dst, 0755); err != nil {
		return err
	}
	root, err := os.OpenRoot(dst)
	if err != nil {
		return err
	}
	defer root.Close()

	return walkTar(src, open, func(header *tar.Header, r io.Reader) error {
		return writeTarMember(ctx, root, header, r)
	})
}

func walkTar(src string, open openFunc, fn func(*tar.Header, io.Reader) error) error {
	file, err := os.Open(src)
	if err != nil {
		return err
	}
	defer file.Close()

	r, err := open(file)
	if err != nil {
		return err
	}
	defer r.Close()

	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if errors.Is(err, tar.ErrInsecurePath) {
			return fmt.Errorf("%w: %s", ErrUnsafePath, header.Name)
		}
		if err != nil {
			return err
		}
		if err := fn(header, tr); err != nil {
			return err
		}
	}
}

// memberCheck remembers the symlinks declared so far. A later member may not
// be written through one of them, since its target is only known at
// extraction time.
type memberCheck struct {
	symlinks map[string]bool
}

func newMemberCheck() *memberCheck {
	return &memberCheck{symlinks: make(map[string]bool)}
}

func (c *memberCheck) validate(header *tar.Header) error {
	if !isLocal(header.Name) {
		return fmt.Errorf("%w: %s", ErrUnsafePath, header.Name)
	}
	name := path.Clean(header.Name)

	if link := c.symlinkOn(name, header.Typeflag == tar.TypeReg); link != "" {
		return fmt.Errorf("%w: %s passes through symlink %s", ErrUnsafePath, header.Name, link)
	}

	switch header.Typeflag {
	case tar.TypeSymlink:
		// Relative link targets resolve against the member's own directory.
		if path.IsAbs(header.Linkname) || !isLocal(path.Join(path.Dir(name), header.Linkname)) {
			return fmt.Errorf("%w: %s -> %s", ErrUnsafePath, header.Name, header.Linkname)
		}
		c.symlinks[name] = true
	case tar.TypeLink:
		if !isLocal(header.Linkname) {
			return fmt.Errorf("%w: %s -> %s", ErrUnsafePath, header.Name, header.Linkname)
		}
		if link := c.symlinkOn(path.Clean(header.Linkname), true); link != "" {
			return fmt.Errorf("%w: %s -> %s passes through symlink %s", ErrUnsafePath, header.Name, header.Linkname, link)
		}
	}
	return nil
}

// symlinkOn returns the first declared symlink among the parents of name, or
// name itself when self is set.
func (c *memberCheck) symlinkOn(name string, self bool) string {
	parts := strings.Split(name, "/")
	last := len(parts) - 1
	if self {
		last++
	}
	for i := 1; i <= last; i++ {
		if prefix := strings.Join(parts[:i], "/"); c.symlinks[prefix] {
			return prefix
		}
	}
	return ""
}

func writeTarMember(ctx context.Context, root *os.Root, header *tar.Header, r io.Reader) error {
	name := filepath.FromSlash(path.Clean(header.Name))

	switch header.Typeflag {
	case tar.TypeDir:
		if name == "." {
			return nil
		}
		return root.MkdirAll(name, 0755)
	case tar.TypeReg:
		if err := mkdirParent(root, name); err != nil {
			return err
		}
		return writeFile(ctx, root, name, r, header.FileInfo().Mode())
	case tar.TypeSymlink:
		if err := mkdirParent(root, name); err != nil {
			return err
		}
		root.Remove(name)
		return root.Symlink(header.Linkname, name)
	case tar.TypeLink:
		if err := mkdirParent(root, name); err != nil {
			return err
		}
		root.Remove(name)
		return root.Link(filepath.FromSlash(path.Clean(header.Linkname)), name)
	}
	return nil
}

func mkdirParent(root *os.Root, name string) error {
	if dir := filepath.Dir(name); dir != "." {
		return root.MkdirAll(dir, 0755)
	}
	return nil
}

func writeFile(ctx context.Context, root *os.Root, name string, r io.Reader, mode os.FileMode) error {
	out, err := root.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm()|0200)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, &ctxReader{ctx: ctx, r: r}); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// isLocal reports whether the slash-separated archive name stays inside the
// directory it is joined to.
func isLocal(name string) bool {
	return filepath.IsLocal(filepath.FromSlash(name))
}
