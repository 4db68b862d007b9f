// Package walk enumerates a directory tree depth-first without recursion.
package walk

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"

	"github.com/meigma/pathindex/internal/blobtype"
)

// Entry is a filesystem entry visited by Walk.
type Entry struct {
	// Rel is the slash-separated path relative to the walk root.
	Rel string

	// Path is the filesystem path, the walk root joined with Rel.
	Path string

	// Abs is the canonical absolute path with all symlinks resolved.
	Abs string

	// Type holds the type bits of the entry. When symlinks are followed it
	// describes the link target.
	Type fs.FileMode

	// Symlink reports whether the entry itself is a symbolic link.
	Symlink bool
}

// IsRegular reports whether the entry is (or, when following, resolves to)
// a regular file.
func (e Entry) IsRegular() bool {
	return e.Type.IsRegular()
}

// Options configures a walk.
type Options struct {
	// FollowSymlinks makes symlinks to files and directories behave like
	// their targets. Directory cycles are detected and not descended.
	FollowSymlinks bool

	// OnError, when set, is called with per-entry errors. Returning nil
	// skips the entry; returning an error aborts the walk. When unset, the
	// first error aborts the walk.
	OnError func(rel string, err error) error

	// Logger receives debug messages about skipped entries.
	Logger *slog.Logger
}

// item is a pending entry on the walk stack.
type item struct {
	path string
	rel  string
	up   *ancestor
}

// ancestor records the canonical path of a directory being descended.
type ancestor struct {
	abs    string
	parent *ancestor
}

func (a *ancestor) contains(abs string) bool {
	for ; a != nil; a = a.parent {
		if a.abs == abs {
			return true
		}
	}
	return false
}

// Walk visits every entry below root in depth-first pre-order, calling fn
// for each. Siblings are visited in lexical order. The root itself is not
// visited. Filesystem errors are wrapped with blobtype.ErrIO.
func Walk(ctx context.Context, root string, opts Options, fn func(Entry) error) error {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	rootAbs, err := canonical(root)
	if err != nil {
		return ioError(err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return ioError(err)
	}
	if !info.IsDir() {
		return ioError(&fs.PathError{Op: "walk", Path: root, Err: errors.New("not a directory")})
	}

	w := &walker{opts: opts, log: log}
	top := &ancestor{abs: rootAbs}
	stack, err := w.push(nil, root, "", top)
	if err != nil {
		return err
	}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		e, descend, err := w.resolve(it)
		if err != nil {
			if err := w.handle(it.rel, err); err != nil {
				return err
			}
			continue
		}
		if err := fn(e); err != nil {
			return err
		}
		if descend {
			if stack, err = w.push(stack, e.Path, e.Rel, &ancestor{abs: e.Abs, parent: it.up}); err != nil {
				return err
			}
		}
	}
	return nil
}

type walker struct {
	opts Options
	log  *slog.Logger
}

// push appends dir's children to stack in reverse lexical order so they
// pop in lexical order.
func (w *walker) push(stack []item, dir, rel string, up *ancestor) ([]item, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return stack, w.handle(rel, ioError(err))
	}
	for _, d := range slices.Backward(entries) {
		stack = append(stack, item{
			path: filepath.Join(dir, d.Name()),
			rel:  path.Join(rel, d.Name()),
			up:   up,
		})
	}
	return stack, nil
}

// resolve stats and canonicalizes it, and reports whether it is a
// directory to descend into.
func (w *walker) resolve(it item) (Entry, bool, error) {
	linfo, err := os.Lstat(it.path)
	if err != nil {
		return Entry{}, false, ioError(err)
	}
	abs, err := canonical(it.path)
	if err != nil {
		return Entry{}, false, ioError(err)
	}

	e := Entry{
		Rel:  it.rel,
		Path: it.path,
		Abs:  abs,
		Type: linfo.Mode().Type(),
	}
	if linfo.Mode()&fs.ModeSymlink != 0 {
		e.Symlink = true
		if !w.opts.FollowSymlinks {
			w.log.Debug("not following symlink", "path", it.rel)
			return e, false, nil
		}
		info, err := os.Stat(it.path)
		if err != nil {
			return Entry{}, false, ioError(err)
		}
		e.Type = info.Mode().Type()
	}

	if !e.Type.IsDir() {
		return e, false, nil
	}
	if it.up.contains(abs) {
		w.log.Debug("skipping directory cycle", "path", it.rel, "target", abs)
		return e, false, nil
	}
	return e, true, nil
}

func (w *walker) handle(rel string, err error) error {
	if w.opts.OnError == nil {
		return err
	}
	return w.opts.OnError(rel, err)
}

// canonical returns the absolute path of p with every symlink resolved.
func canonical(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

func ioError(err error) error {
	return fmt.Errorf("%w: %w", blobtype.ErrIO, err)
}
