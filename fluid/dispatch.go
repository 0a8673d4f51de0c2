package fluid

import (
	"runtime"
	"sync"
)

// parallelMinRows is the minimum grid height worth dispatching to workers.
// Below this, single-threaded is faster due to channel overhead, and the
// small grids used in tests stay fully sequential.
const parallelMinRows = 64

// rowJob is a contiguous row range handed to one worker.
type rowJob struct {
	y0, y1 int
	fn     func(y0, y1 int)
}

// dispatcher runs per-cell kernel passes over row chunks using a persistent
// worker pool. Every pass reads only the pre-pass generation and writes only
// its own cells, so row partitioning never changes results.
type dispatcher struct {
	numWorkers int

	workChan chan rowJob
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

func newDispatcher() *dispatcher {
	return &dispatcher{numWorkers: runtime.GOMAXPROCS(0)}
}

// start launches the persistent worker goroutines.
func (d *dispatcher) start() {
	if d.running {
		return
	}
	d.workChan = make(chan rowJob, d.numWorkers)
	d.doneChan = make(chan struct{}, d.numWorkers)
	d.stopChan = make(chan struct{})
	d.running = true

	for i := 0; i < d.numWorkers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

// stop signals all workers to exit and waits for them.
func (d *dispatcher) stop() {
	if !d.running {
		return
	}
	close(d.stopChan)
	d.wg.Wait()
	close(d.workChan)
	close(d.doneChan)
	d.running = false
}

func (d *dispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case <-d.stopChan:
			return
		case job, ok := <-d.workChan:
			if !ok {
				return
			}
			job.fn(job.y0, job.y1)
			d.doneChan <- struct{}{}
		}
	}
}

// run executes fn over all rows [0, h). fn must cover every cell of its row
// range; masked-cell handling is the kernel's responsibility.
func (d *dispatcher) run(h int, fn func(y0, y1 int)) {
	if h < parallelMinRows || d.numWorkers < 2 {
		fn(0, h)
		return
	}
	if !d.running {
		d.start()
	}

	chunk := (h + d.numWorkers - 1) / d.numWorkers
	dispatched := 0
	for w := 0; w < d.numWorkers; w++ {
		y0 := w * chunk
		y1 := y0 + chunk
		if y1 > h {
			y1 = h
		}
		if y0 >= y1 {
			continue
		}
		d.workChan <- rowJob{y0: y0, y1: y1, fn: fn}
		dispatched++
	}

	// Synchronous barrier: the next pass reads this pass's output.
	for i := 0; i < dispatched; i++ {
		<-d.doneChan
	}
}
