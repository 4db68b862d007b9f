package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/meigma/pathindex"
	"github.com/meigma/pathindex/store"
)

const (
	storeMem  = "mem"
	storeFile = "file"
)

type scanFlags struct {
	prefix           string
	storeKind        string
	storePath        string
	concurrency      int
	maxFiles         int
	followSymlinks   bool
	skipErrors       bool
	rejectDuplicates bool
	compressed       bool
	quiet            bool
	verbose          bool
}

func newScanCmd() *cobra.Command {
	var f scanFlags
	cmd := &cobra.Command{
		Use:   "scan <root>",
		Short: "index the files below root and print a size report",
		Long: `Scan walks root depth-first, digests every regular file, inserts the
relative paths into a radix tree and attaches the tree to a blob store.
It prints one line per inserted file, a summary comparing the flat list
with the store, and the index entries under --prefix.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args[0], &f)
		},
	}

	cmd.Flags().StringVarP(
		&f.prefix, "prefix", "p", "", "print index entries whose path starts with this prefix")
	cmd.Flags().StringVar(
		&f.storeKind, "store", storeMem, "blob store: mem or file")
	cmd.Flags().StringVar(
		&f.storePath, "store-path", "", "log file for --store=file")
	cmd.Flags().IntVarP(
		&f.concurrency, "concurrency", "c", 0, "number of files digested at once (0 uses GOMAXPROCS)")
	cmd.Flags().IntVar(
		&f.maxFiles, "max-files", 0, "maximum number of files to index (0 uses the default, <0 no limit)")
	cmd.Flags().BoolVarP(
		&f.followSymlinks, "follow-symlinks", "L", false, "follow symbolic links")
	cmd.Flags().BoolVar(
		&f.skipErrors, "skip-errors", false, "skip unreadable entries instead of failing")
	cmd.Flags().BoolVar(
		&f.rejectDuplicates, "reject-duplicates", false, "fail when two files map to the same path")
	cmd.Flags().BoolVar(
		&f.compressed, "compressed", false, "also report the zstd-compressed flat list size")
	cmd.Flags().BoolVarP(
		&f.quiet, "quiet", "q", false, "do not print a line per inserted file")
	cmd.Flags().BoolVarP(
		&f.verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

func runScan(cmd *cobra.Command, root string, f *scanFlags) error {
	out := cmd.OutOrStdout()

	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	bs, closeStore, err := openStore(f)
	if err != nil {
		return err
	}
	defer closeStore()

	var writeErr error
	opts := []pathindex.ScanOption{
		pathindex.ScanWithStore(bs),
		pathindex.ScanWithLogger(logger),
		pathindex.ScanWithConcurrency(f.concurrency),
		pathindex.ScanWithMaxFiles(f.maxFiles),
		pathindex.ScanWithFollowSymlinks(f.followSymlinks),
		pathindex.ScanWithSkipErrors(f.skipErrors),
	}
	if f.rejectDuplicates {
		opts = append(opts, pathindex.ScanWithDuplicatePolicy(pathindex.DuplicateReject))
	}
	if !f.quiet {
		opts = append(opts, pathindex.ScanWithOnInsert(func(r pathindex.ScanRecord) {
			if writeErr == nil {
				writeErr = pathindex.WriteRecord(out, r)
			}
		}))
	}

	res, err := pathindex.Scan(cmd.Context(), root, opts...)
	if err != nil {
		return err
	}
	if writeErr != nil {
		return writeErr
	}
	for _, e := range res.Errors {
		logger.Warn("skipped entry", "path", e.Path, "error", e.Err)
	}

	if err := pathindex.WriteSummary(out, res.Stats, f.compressed); err != nil {
		return err
	}
	if f.prefix == "" {
		return nil
	}
	_, err = pathindex.WriteEntries(out, res.ScanPrefix(f.prefix))
	return err
}

// openStore returns the blob store selected by the flags and a function
// that releases it.
func openStore(f *scanFlags) (store.BlobStore, func(), error) {
	switch f.storeKind {
	case storeMem:
		return store.NewMemStore(), func() {}, nil
	case storeFile:
		if f.storePath == "" {
			return nil, nil, errors.New("--store-path is required with --store=file")
		}
		fs, err := store.CreateFileStore(f.storePath)
		if err != nil {
			return nil, nil, fmt.Errorf("create store: %w", err)
		}
		return fs, func() { _ = fs.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", f.storeKind)
	}
}
