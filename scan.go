package pathindex

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/meigma/pathindex/internal/fileops"
	"github.com/meigma/pathindex/internal/walk"
	"github.com/meigma/pathindex/radix"
	"github.com/meigma/pathindex/store"
)

// DefaultMaxFiles is the default limit used when no MaxFiles option is set.
const DefaultMaxFiles = 1_000_000

// Result is the outcome of a successful scan.
type Result struct {
	// Records lists every digested file in visitation order.
	Records []ScanRecord

	// Index maps relative paths to canonical absolute paths. It is attached
	// to Store.
	Index *radix.Tree

	// Store holds the attached index.
	Store store.BlobStore

	// Stats compares the flat record list with the store-backed index.
	Stats Stats

	// Errors lists entries skipped under ScanWithSkipErrors.
	Errors []EntryError
}

// ScanPrefix returns the index entries whose relative path starts with prefix.
func (r *Result) ScanPrefix(prefix string) iter.Seq2[radix.Entry, error] {
	return r.Index.ScanPrefix([]byte(prefix))
}

// EntryError records a filesystem error for a single entry.
type EntryError struct {
	// Path is the entry's slash-separated path relative to the scan root.
	Path string
	Err  error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// Scan indexes the regular files below dir.
//
// The scan runs in three phases: the tree is enumerated depth-first, the
// files are digested (concurrently) and inserted into a radix tree in
// visitation order, and the finished tree is attached to the blob store and
// synced. Any filesystem error aborts the scan unless ScanWithSkipErrors is
// set. Nothing is retried.
func Scan(ctx context.Context, dir string, opts ...ScanOption) (*Result, error) {
	cfg := scanConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.concurrency <= 0 {
		cfg.concurrency = runtime.GOMAXPROCS(0)
	}
	if cfg.maxFiles == 0 {
		cfg.maxFiles = DefaultMaxFiles
	}
	if cfg.store == nil {
		cfg.store = store.NewMemStore()
	}

	s := &scanner{cfg: cfg, logger: cfg.logger}
	s.log().Info("scanning directory", "dir", dir, "concurrency", cfg.concurrency, "follow_symlinks", cfg.followSymlinks)

	files, err := s.enumerate(ctx, dir)
	if err != nil {
		return nil, err
	}
	s.log().Debug("enumeration complete", "file_count", len(files))

	records, err := s.digest(ctx, files)
	if err != nil {
		return nil, err
	}

	tree, err := s.insert(records)
	if err != nil {
		return nil, err
	}

	s.reportProgress(StageAttaching, "", 0, len(records))
	base := cfg.store.Len()
	index, err := tree.Attach(cfg.store)
	if err != nil {
		return nil, fmt.Errorf("attach index: %w", err)
	}
	if err := cfg.store.Sync(); err != nil {
		return nil, fmt.Errorf("sync store: %w", err)
	}
	s.reportProgress(StageAttaching, "", len(records), len(records))

	stats, err := ComputeStats(records, cfg.store.Len()-base)
	if err != nil {
		return nil, err
	}
	s.log().Info("scan complete",
		"file_count", stats.Count,
		"store_bytes", stats.StoreBytes,
		"skipped", len(s.errs))

	return &Result{
		Records: records,
		Index:   index,
		Store:   cfg.store,
		Stats:   stats,
		Errors:  s.errs,
	}, nil
}

// scanner holds state for a single scan.
type scanner struct {
	cfg    scanConfig
	logger *slog.Logger

	mu   sync.Mutex
	errs []EntryError
}

// log returns the logger, falling back to a discard logger if nil.
func (s *scanner) log() *slog.Logger {
	if s.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.logger
}

// reportProgress sends a progress event if a callback is configured.
func (s *scanner) reportProgress(stage ProgressStage, path string, filesDone, filesTotal int) {
	if s.cfg.progress == nil {
		return
	}
	s.cfg.progress(ProgressEvent{
		Stage:      stage,
		Path:       path,
		FilesDone:  filesDone,
		FilesTotal: filesTotal,
	})
}

// skip records err for the entry at rel when errors are being collected,
// and otherwise returns it.
func (s *scanner) skip(rel string, err error) error {
	if !s.cfg.skipErrors {
		return err
	}
	s.log().Warn("skipping entry", "path", rel, "error", err)
	s.mu.Lock()
	s.errs = append(s.errs, EntryError{Path: rel, Err: err})
	s.mu.Unlock()
	return nil
}

// enumerate walks dir and returns its regular files in visitation order.
func (s *scanner) enumerate(ctx context.Context, dir string) ([]walk.Entry, error) {
	s.reportProgress(StageEnumerating, "", 0, 0)

	var files []walk.Entry
	opts := walk.Options{
		FollowSymlinks: s.cfg.followSymlinks,
		Logger:         s.cfg.logger,
	}
	if s.cfg.skipErrors {
		opts.OnError = s.skip
	}
	err := walk.Walk(ctx, dir, opts, func(e walk.Entry) error {
		if !e.IsRegular() {
			return nil
		}
		if s.cfg.maxFiles > 0 && len(files) >= s.cfg.maxFiles {
			return ErrTooManyFiles
		}
		files = append(files, e)
		s.reportProgress(StageEnumerating, e.Rel, len(files), 0)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// digest hashes files concurrently and returns their records in input
// order. Files that fail under ScanWithSkipErrors are left out.
func (s *scanner) digest(ctx context.Context, files []walk.Entry) ([]ScanRecord, error) {
	records := make([]ScanRecord, len(files))
	ok := make([]bool, len(files))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.concurrency)
	for i, f := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d, n, err := fileops.DigestFile(f.Path)
			if err != nil {
				return s.skip(f.Rel, fmt.Errorf("%w: %w", ErrIO, err))
			}
			records[i] = ScanRecord{Path: f.Rel, AbsPath: f.Abs, Size: n, Digest: d}
			ok[i] = true
			s.reportProgress(StageDigesting, f.Rel, int(done.Add(1)), len(files))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := records[:0]
	for i, r := range records {
		if ok[i] {
			out = append(out, r)
		}
	}
	return out, nil
}

// insert builds a detached tree from records in order, applying the
// duplicate policy.
func (s *scanner) insert(records []ScanRecord) (*radix.Tree, error) {
	tree := radix.New()
	for i, r := range records {
		if s.cfg.onInsert != nil {
			s.cfg.onInsert(r)
		}
		if s.cfg.duplicates == DuplicateReject {
			if _, exists, err := tree.Get([]byte(r.Path)); err != nil {
				return nil, err
			} else if exists {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, r.Path)
			}
		}
		replaced, err := tree.Insert([]byte(r.Path), []byte(r.AbsPath))
		if err != nil {
			return nil, err
		}
		if replaced {
			s.log().Debug("duplicate path overwritten", "path", r.Path, "value", r.AbsPath)
		}
		s.reportProgress(StageInserting, r.Path, i+1, len(records))
	}
	return tree, nil
}
