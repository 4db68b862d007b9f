// Command profiler generates a synthetic tree and profiles scanning it and
// querying the resulting index.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand" //nolint:gosec // intentional use for reproducible benchmarks
	"net/http"
	_ "net/http/pprof" //nolint:gosec // intentional profiling endpoint
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"time"

	"github.com/felixge/fgprof"

	"github.com/meigma/pathindex"
	"github.com/meigma/pathindex/radix"
	"github.com/meigma/pathindex/store"
)

type config struct {
	mode        string
	files       int
	fileSize    int
	dirCount    int
	pattern     string
	store       string
	concurrency int
	prefix      string
	fgProfile   string
	duration    time.Duration
	iterations  int
	pprofAddr   string
	cpuProfile  string
	memProfile  string
	traceFile   string
	readRandom  bool
	tempDir     string
	keepTemp    bool
	randomSeed  int64
}

//nolint:unused // sink variables prevent compiler optimizations in profiling
var (
	sinkBytes []byte
	sinkCount int
)

//nolint:gocognit,gocyclo // main function complexity is acceptable for CLI tool
func main() {
	cfg := parseFlags()

	if cfg.pprofAddr != "" {
		go func() {
			log.Printf("pprof listening on %s", cfg.pprofAddr)
			//nolint:gosec // intentional pprof server without timeouts for profiling
			if err := http.ListenAndServe(cfg.pprofAddr, nil); err != nil {
				log.Printf("pprof server error: %v", err)
			}
		}()
	}

	dir, cleanup, err := setupTempDir(cfg)
	if err != nil {
		log.Fatal(err)
	}
	if cleanup != nil {
		defer cleanup() //nolint:errcheck // cleanup errors are non-fatal in profiler
	}

	paths, err := makeFiles(filepath.Join(dir, "tree"), cfg.files, cfg.fileSize, cfg.dirCount, cfg.pattern, cfg.randomSeed)
	if err != nil {
		log.Fatal(err) //nolint:gocritic // exitAfterDefer is intentional - cleanup is best-effort
	}

	var stopFG func() error
	if cfg.fgProfile != "" {
		fgFile, fgErr := os.Create(cfg.fgProfile)
		if fgErr != nil {
			log.Fatal(fgErr)
		}
		stopFG = fgprof.Start(fgFile, fgprof.FormatPprof)
		defer func() {
			if err := stopFG(); err != nil {
				log.Printf("fgprof stop error: %v", err)
			}
			_ = fgFile.Close()
		}()
	}

	if cfg.cpuProfile != "" {
		cpuFile, cpuErr := os.Create(cfg.cpuProfile)
		if cpuErr != nil {
			log.Fatal(cpuErr)
		}
		if cpuErr = pprof.StartCPUProfile(cpuFile); cpuErr != nil {
			log.Fatal(cpuErr)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = cpuFile.Close()
		}()
	}

	if cfg.traceFile != "" {
		traceFile, traceErr := os.Create(cfg.traceFile)
		if traceErr != nil {
			log.Fatal(traceErr)
		}
		if traceErr = trace.Start(traceFile); traceErr != nil {
			log.Fatal(traceErr)
		}
		defer func() {
			trace.Stop()
			_ = traceFile.Close()
		}()
	}

	stats, err := runProfile(cfg, paths, dir)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.memProfile != "" {
		runtime.GC()
		f, err := os.Create(cfg.memProfile)
		if err != nil {
			log.Fatal(err)
		}
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal(err)
		}
		_ = f.Close()
	}

	fmt.Printf("mode=%s ops=%d bytes=%d elapsed=%s ops/s=%.0f\n",
		cfg.mode,
		stats.ops,
		stats.bytes,
		stats.elapsed,
		float64(stats.ops)/stats.elapsed.Seconds(),
	)
}

type profileStats struct {
	ops     int
	bytes   int64
	elapsed time.Duration
}

//nolint:gocognit,gocyclo,gocritic // complexity is inherent to multi-mode profiler dispatch; hugeParam acceptable for profiler
func runProfile(cfg config, paths []string, rootDir string) (profileStats, error) {
	treeDir := filepath.Join(rootDir, "tree")
	ctx := context.Background()

	var res *pathindex.Result
	if cfg.mode != "scan" {
		var err error
		res, err = scan(ctx, cfg, treeDir, rootDir, 0)
		if err != nil {
			return profileStats{}, err
		}
		defer closeStore(res.Store) //nolint:errcheck // close errors are non-fatal in profiler
	}

	start := time.Now()
	ops := 0
	var byteCount int64

	shouldContinue := func() bool {
		if cfg.iterations > 0 {
			return ops < cfg.iterations
		}
		return time.Since(start) < cfg.duration
	}

	switch cfg.mode {
	case "scan":
		for shouldContinue() {
			r, err := scan(ctx, cfg, treeDir, rootDir, ops)
			if err != nil {
				return profileStats{}, err
			}
			byteCount += int64(r.Stats.StoreBytes) //nolint:gosec // store sizes fit in int64
			sinkCount = r.Stats.Count
			if err := closeStore(r.Store); err != nil {
				return profileStats{}, err
			}
			ops++
		}

	case "get":
		rng := rand.New(rand.NewSource(cfg.randomSeed)) //nolint:gosec // intentional for reproducible benchmarks
		for shouldContinue() {
			path := pickPath(paths, ops, rng, cfg.readRandom)
			value, ok, err := res.Index.Get([]byte(path))
			if err != nil {
				return profileStats{}, err
			}
			if !ok {
				return profileStats{}, fmt.Errorf("missing entry for %q", path)
			}
			sinkBytes = value
			byteCount += int64(len(value))
			ops++
		}

	case "get-cold":
		// Each lookup starts from a freshly opened tree so every node on the
		// path is read back from the store.
		rng := rand.New(rand.NewSource(cfg.randomSeed)) //nolint:gosec // intentional for reproducible benchmarks
		for shouldContinue() {
			tree, err := radix.Open(res.Store, res.Index.Root())
			if err != nil {
				return profileStats{}, err
			}
			path := pickPath(paths, ops, rng, cfg.readRandom)
			value, ok, err := tree.Get([]byte(path))
			if err != nil {
				return profileStats{}, err
			}
			if !ok {
				return profileStats{}, fmt.Errorf("missing entry for %q", path)
			}
			sinkBytes = value
			byteCount += int64(len(value))
			ops++
		}

	case "scan-prefix":
		prefix := scanPrefix(cfg.prefix)
		for shouldContinue() {
			count := 0
			for e, err := range res.ScanPrefix(prefix) {
				if err != nil {
					return profileStats{}, err
				}
				byteCount += int64(len(e.Value))
				count++
			}
			if count == 0 {
				return profileStats{}, fmt.Errorf("expected at least one entry for prefix %q", prefix)
			}
			sinkCount = count
			ops++
		}

	case "attach":
		for shouldContinue() {
			mem := store.NewMemStore()
			tree, err := res.Index.Attach(mem)
			if err != nil {
				return profileStats{}, err
			}
			sinkBytes = tree.Root()
			byteCount += int64(mem.Len()) //nolint:gosec // store sizes fit in int64
			ops++
		}

	default:
		return profileStats{}, fmt.Errorf("unknown mode: %s", cfg.mode)
	}

	return profileStats{
		ops:     ops,
		bytes:   byteCount,
		elapsed: time.Since(start),
	}, nil
}

// scan indexes treeDir into the configured store. File stores are created
// under rootDir, one per iteration.
//
//nolint:gocritic // hugeParam acceptable for config struct in CLI tool
func scan(ctx context.Context, cfg config, treeDir, rootDir string, iter int) (*pathindex.Result, error) {
	opts := []pathindex.ScanOption{
		pathindex.ScanWithConcurrency(cfg.concurrency),
		pathindex.ScanWithMaxFiles(-1),
	}
	var closers []io.Closer
	switch cfg.store {
	case "mem":
	case "file":
		fs, err := store.CreateFileStore(filepath.Join(rootDir, fmt.Sprintf("index-%d.log", iter)))
		if err != nil {
			return nil, err
		}
		opts = append(opts, pathindex.ScanWithStore(fs))
		closers = append(closers, fs)
	default:
		return nil, fmt.Errorf("unknown store: %s", cfg.store)
	}
	res, err := pathindex.Scan(ctx, treeDir, opts...)
	if err != nil {
		for _, c := range closers {
			_ = c.Close()
		}
		return nil, err
	}
	return res, nil
}

// closeStore closes s if it holds a file.
func closeStore(s store.BlobStore) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func parseFlags() config {
	var cfg config
	flag.StringVar(&cfg.mode, "mode", "scan", "mode: scan, get, get-cold, scan-prefix, attach")
	flag.IntVar(&cfg.files, "files", 4096, "number of files")
	flag.IntVar(&cfg.fileSize, "file-size", 4<<10, "file size in bytes")
	flag.IntVar(&cfg.dirCount, "dir-count", 16, "number of directories")
	flag.StringVar(&cfg.pattern, "pattern", "compressible", "pattern: compressible or random")
	flag.StringVar(&cfg.store, "store", "mem", "blob store: mem or file")
	flag.IntVar(&cfg.concurrency, "concurrency", 0, "digest workers (0 uses GOMAXPROCS)")
	flag.StringVar(&cfg.prefix, "prefix", "dir00", "prefix for scan-prefix mode")
	flag.StringVar(&cfg.fgProfile, "fgprofile", "", "write fgprof (wall clock) profile to file")
	flag.DurationVar(&cfg.duration, "duration", 10*time.Second, "duration to run (ignored if iterations > 0)")
	flag.IntVar(&cfg.iterations, "iterations", 0, "number of iterations to run")
	flag.StringVar(&cfg.pprofAddr, "pprof-addr", "", "pprof listen address (e.g. :6060)")
	flag.StringVar(&cfg.cpuProfile, "cpuprofile", "", "write CPU profile to file")
	flag.StringVar(&cfg.memProfile, "memprofile", "", "write heap profile to file")
	flag.StringVar(&cfg.traceFile, "trace", "", "write trace to file")
	flag.BoolVar(&cfg.readRandom, "read-random", true, "randomize lookup path selection")
	flag.StringVar(&cfg.tempDir, "temp-dir", "", "directory to use for dataset")
	flag.BoolVar(&cfg.keepTemp, "keep-temp", false, "keep temp dir after run")
	flag.Int64Var(&cfg.randomSeed, "seed", 1, "random seed")
	flag.Parse()
	return cfg
}

func pickPath(paths []string, idx int, rng *rand.Rand, random bool) string {
	if random {
		return paths[rng.Intn(len(paths))]
	}
	return paths[idx%len(paths)]
}

func scanPrefix(prefix string) string {
	if prefix == "" || prefix == "." {
		return ""
	}
	if prefix[len(prefix)-1] != '/' {
		return prefix + "/"
	}
	return prefix
}

//nolint:gocritic // hugeParam acceptable for config struct in CLI tool
func setupTempDir(cfg config) (string, func() error, error) {
	if cfg.tempDir != "" {
		return cfg.tempDir, nil, os.MkdirAll(cfg.tempDir, 0o755) //nolint:gosec // 0o755 is intentional for profiler temp dirs
	}
	dir, err := os.MkdirTemp("", "pathindex-profiler-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() error {
		if cfg.keepTemp {
			return nil
		}
		return os.RemoveAll(dir)
	}
	return dir, cleanup, nil
}

func makeFiles(dir string, fileCount, fileSize, dirCount int, pattern string, seed int64) ([]string, error) {
	if dirCount <= 0 {
		dirCount = 1
	}
	paths := make([]string, 0, fileCount)
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // intentional use for reproducible benchmarks
	for i := range fileCount {
		relPath := fmt.Sprintf("dir%02d/file%05d.dat", i%dirCount, i)
		fullPath := filepath.Join(dir, filepath.FromSlash(relPath))
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil { //nolint:gosec // 0o755 is intentional for profiler
			return nil, err
		}

		content := make([]byte, fileSize)
		switch pattern {
		case "random":
			if _, err := rng.Read(content); err != nil {
				return nil, err
			}
		default:
			fillByte := byte('a' + (i % 26))
			for j := range content {
				content[j] = fillByte
			}
			if len(content) > 0 {
				content[0] = byte(i)
			}
		}

		if err := os.WriteFile(fullPath, content, 0o644); err != nil { //nolint:gosec // 0o644 is intentional for profiler test files
			return nil, err
		}
		paths = append(paths, relPath)
	}
	return paths, nil
}
