package store

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// watcher runs one subscription: change signals are coalesced into a single
// pending slot and each wake-up reloads the collection and delivers it.
type watcher struct {
	path     Path
	load     func() ([]Record, error)
	fn       SnapshotFunc
	signal   chan struct{}
	done     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
	onCancel func()
}

func newWatcher(p Path, load func() ([]Record, error), fn SnapshotFunc) *watcher {
	return &watcher{
		path:   p,
		load:   load,
		fn:     fn,
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// start queues the initial snapshot and launches the delivery loop.
func (w *watcher) start() {
	w.notify()
	w.goTracked(w.run)
}

// goTracked runs f in a goroutine that Cancel waits for.
func (w *watcher) goTracked(f func()) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		f()
	}()
}

func (w *watcher) notify() {
	select {
	case w.signal <- struct{}{}:
	default:
	}
}

func (w *watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case <-w.signal:
		}

		records, err := w.load()
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"path":  w.path.String(),
				"error": err,
			}).Warn("Failed to load snapshot for subscription")
			continue
		}

		select {
		case <-w.done:
			return
		default:
		}
		w.fn(records)
	}
}

// Cancel must not be called from inside the snapshot callback.
func (w *watcher) Cancel() {
	w.once.Do(func() {
		close(w.done)
		if w.onCancel != nil {
			w.onCancel()
		}
	})
	w.wg.Wait()
}
