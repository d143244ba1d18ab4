package anisort

import (
	"runtime"
	"sync"

	"github.com/Baughn/anidb-rs/pkg/anidb"
	"github.com/Baughn/anidb-rs/pkg/ed2k"
	"github.com/rs/zerolog"
)

// hashResult pairs a discovered file with its ed2k digest, or the error
// hashing it produced.
type hashResult struct {
	path   string
	digest ed2k.Digest
	err    error
}

// Run walks every root in paths, hashes the files it finds with a worker
// pool, looks each hash up against client, and moves matched files under
// libraryRoot. Lookup and move happen serially on the calling goroutine
// since client.FileFromHash already serializes on its own internal lock;
// only the CPU-bound hashing step is parallelized.
//
// A per-file failure (hash error, lookup error, move error) is logged and
// does not abort the run; it is instead counted and returned as failed so
// the caller can choose an exit code, per the "1 = per-file error, batch
// still completed" exit code policy. Run only returns a non-nil error for
// a failure to walk one of the roots, which aborts the batch entirely.
func Run(client *anidb.Client, libraryRoot string, paths []string, dryRun bool, log zerolog.Logger) (failed int, err error) {
	var files []string
	for _, root := range paths {
		found, err := Walk(root)
		if err != nil {
			return 0, err
		}
		files = append(files, found...)
	}

	queue := make(chan string)
	go func() {
		defer close(queue)
		for _, f := range files {
			queue <- f
		}
	}()

	results := make(chan hashResult)
	var wg sync.WaitGroup
	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range queue {
				d, err := ed2k.HashFile(path)
				results <- hashResult{path: path, digest: d, err: err}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		flog := log.With().Str("file", r.path).Logger()
		if r.err != nil {
			flog.Error().Err(r.err).Msg("hashing failed")
			failed++
			continue
		}

		record, lerr := client.FileFromHash(r.digest)
		if lerr != nil {
			flog.Warn().Err(lerr).Msg("anidb lookup failed")
			failed++
			continue
		}

		dst := TargetPath(libraryRoot, record, r.path)
		if merr := Move(r.path, dst, dryRun, flog); merr != nil {
			flog.Error().Err(merr).Str("dst", dst).Msg("move failed")
			failed++
			continue
		}
	}

	return failed, nil
}
