package shader

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// LoadAll loads every path on a worker pool and returns the sources in input order.
// Each Source is handed to the caller only after all loads finish.
//
// Parameters:
//   - paths: the shader files to load
//   - dialect: the dialect shared by every file
//   - workers: the pool size; values below 1 use one less than the CPU count
//
// Returns:
//   - []*Source: one source per path, possibly in the fallback state
func LoadAll(paths []string, dialect Dialect, workers int) []*Source {
	sources := make([]*Source, len(paths))
	if len(paths) == 0 {
		return sources
	}

	run(len(paths), workers, func(i int) {
		sources[i] = Load(paths[i], dialect)
	})
	return sources
}

// ReloadAll reloads every source on a worker pool. No source may be in use elsewhere until it returns.
//
// Parameters:
//   - sources: the sources to reload in place
//   - workers: the pool size; values below 1 use one less than the CPU count
func ReloadAll(sources []*Source, workers int) {
	if len(sources) == 0 {
		return
	}

	run(len(sources), workers, func(i int) {
		sources[i].Reload()
	})
}

func run(n, workers int, do func(i int)) {
	if workers < 1 {
		workers = max(runtime.NumCPU()-1, 1)
	}
	pool := worker.NewDynamicWorkerPool(min(workers, n), n, 1*time.Second)
	defer pool.Stop()

	var wg sync.WaitGroup
	wg.Add(n)
	for i := range n {
		pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				do(i)
				return nil, nil
			},
		})
	}
	wg.Wait()
}
