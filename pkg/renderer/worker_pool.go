package renderer

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// TileTask represents a tile rendering task for the worker pool
type TileTask struct {
	Tile   *Tile
	TaskID int    // For deterministic ordering
	Frame  *Frame // Shared frame; tiles never overlap
}

// TileResult contains the result from rendering a tile
type TileResult struct {
	TaskID    int
	Samples   int  // Camera rays traced
	Skipped   bool // The render was stopped before this tile started
	Completed int  // Tiles completed so far, including this one
	Error     error
}

// progress counts completed tiles across workers
type progress struct {
	mu        sync.Mutex
	completed int
}

func (p *progress) increment() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed++
	return p.completed
}

// WorkerPool manages parallel tile rendering
type WorkerPool struct {
	taskQueue   chan TileTask
	resultQueue chan TileResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
	stop        *atomic.Bool
	progress    progress
}

// Worker handles individual tile rendering tasks
type Worker struct {
	ID          int
	renderer    *TileRenderer
	taskQueue   chan TileTask
	resultQueue chan TileResult
	pool        *WorkerPool
}

// NewWorkerPool creates a worker pool with buffers for numTiles tasks. Workers
// skip the remaining tasks once stop is set.
func NewWorkerPool(integrator *Integrator, numTiles, numWorkers int, stop *atomic.Bool) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	wp := &WorkerPool{
		taskQueue:   make(chan TileTask, numTiles),
		resultQueue: make(chan TileResult, numTiles),
		numWorkers:  numWorkers,
		stop:        stop,
	}

	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &Worker{
			ID:          i,
			renderer:    NewTileRenderer(integrator),
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
			pool:        wp,
		})
	}

	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop waits for the queued tasks to drain and shuts down all workers
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
}

// SubmitTask submits a tile task to the worker pool
func (wp *WorkerPool) SubmitTask(task TileTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed tile result
func (wp *WorkerPool) GetResult() (TileResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		if w.pool.stop.Load() {
			w.resultQueue <- TileResult{TaskID: task.TaskID, Skipped: true}
			continue
		}

		samples, err := w.render(task)
		result := TileResult{TaskID: task.TaskID, Samples: samples, Error: err}
		if err == nil {
			result.Completed = w.pool.progress.increment()
		}
		w.resultQueue <- result
	}
}

// render traces one tile, turning a panic into an error
func (w *Worker) render(task TileTask) (samples int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker %d: tile %d: %v\n%s", w.ID, task.Tile.ID, r, debug.Stack())
		}
	}()
	return w.renderer.RenderTile(task.Tile, task.Frame), nil
}
