package sandbox

import (
	"context"
	"errors"
	"runtime/metrics"
	"sync/atomic"
	"time"
)

const (
	heapObjectsMetric    = "/memory/classes/heap/objects:bytes"
	memorySampleInterval = 2 * time.Millisecond
)

var errMemoryLimit = errors.New("script exceeded its memory limit")

func heapBytes() uint64 {
	sample := []metrics.Sample{{Name: heapObjectsMetric}}
	metrics.Read(sample)
	if sample[0].Value.Kind() != metrics.KindUint64 {
		return 0
	}
	return sample[0].Value.Uint64()
}

// memoryWatch samples heap growth while one script runs and cancels the run
// once growth passes limit bytes. Growth is measured process wide.
type memoryWatch struct {
	limit    uint64
	baseline uint64
	exceeded atomic.Bool
	done     chan struct{}
	stopped  chan struct{}
}

func startMemoryWatch(limit uint64, cancel context.CancelCauseFunc) *memoryWatch {
	w := &memoryWatch{
		limit:    limit,
		baseline: heapBytes(),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go func() {
		defer close(w.stopped)
		ticker := time.NewTicker(memorySampleInterval)
		defer ticker.Stop()
		for {
			select {
			case <-w.done:
				return
			case <-ticker.C:
				if w.check() {
					cancel(errMemoryLimit)
					return
				}
			}
		}
	}()
	return w
}

// check compares against the lowest sample seen, so a collection of older
// garbage during the run does not hide the script's own growth.
func (w *memoryWatch) check() bool {
	used := heapBytes()
	if used < w.baseline {
		w.baseline = used
	}
	if used-w.baseline > w.limit {
		w.exceeded.Store(true)
	}
	return w.exceeded.Load()
}

// stop ends sampling and reports whether the run went over the limit. A last
// sample catches a script that finished between two ticks.
func (w *memoryWatch) stop() bool {
	close(w.done)
	<-w.stopped
	return w.check()
}
