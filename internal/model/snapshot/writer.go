// Package snapshot schedules durable store snapshots. Writes are
// fire-and-forget: at most one is in flight, bursts collapse to the
// latest state, and failures are logged rather than surfaced.
package snapshot

import (
	"go.uber.org/zap"
	"max.ks1230/expenses-app/internal/logger"
)

type cache interface {
	SaveSnapshot(key string, snapshot []byte) error
}

// Writer owns one cache key. The source callback captures the store's
// current state at write time, so a kick issued during a slow write
// still persists the freshest snapshot.
type Writer struct {
	cache  cache
	key    string
	source func() ([]byte, error)

	kick chan struct{}
	quit chan struct{}
	done chan struct{}
}

func NewWriter(cache cache, key string, source func() ([]byte, error)) *Writer {
	w := &Writer{
		cache:  cache,
		key:    key,
		source: source,
		kick:   make(chan struct{}, 1),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go w.run()
	return w
}

// Schedule marks the store dirty. It never blocks.
func (w *Writer) Schedule() {
	select {
	case w.kick <- struct{}{}:
	default:
	}
}

// Close flushes the pending state once and stops the writer.
func (w *Writer) Close() {
	close(w.quit)
	<-w.done
}

func (w *Writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.quit:
			w.writeOnce()
			return
		case <-w.kick:
			w.writeOnce()
		}
	}
}

func (w *Writer) writeOnce() {
	snap, err := w.source()
	if err != nil {
		logger.Error("snapshot source failed", zap.String("key", w.key), zap.Error(err))
		return
	}
	if err = w.cache.SaveSnapshot(w.key, snap); err != nil {
		logger.Error("snapshot write failed", zap.String("key", w.key), zap.Error(err))
	}
}
