package journal

import (
	"context"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/kode4food/bedrock"
)

type (
	// Appender is the part of a Store the Recorder writes through
	Appender interface {
		Append(context.Context, StreamID, int64, []*bedrock.Event) error
	}

	// RecorderConfig sizes the Recorder's worker pool
	RecorderConfig struct {
		WorkerCount  int
		MaxQueueSize int
		SaveTimeout  time.Duration
	}

	// Recorder copies a session's events into an Appender off the dispatch
	// thread. Events of one aggregate always land on the same worker, so
	// each stream is written in sequence order. Once an event of a stream
	// is lost, the rest of that stream is skipped rather than appended out
	// of sequence
	Recorder struct {
		store   Appender
		session string
		config  RecorderConfig
		logger  *zap.Logger
		queues  []chan *bedrock.Event
		wg      sync.WaitGroup
		mu      sync.RWMutex
		stopped bool
		gapMu   sync.Mutex
		gaps    map[string]int64
		saved   atomic.Int64
		dropped atomic.Int64
		failed  atomic.Int64
		skipped atomic.Int64
	}
)

const (
	DefaultWorkerCount  = 4
	DefaultMaxQueueSize = 1024
	DefaultSaveTimeout  = 5 * time.Second
)

func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{
		WorkerCount:  DefaultWorkerCount,
		MaxQueueSize: DefaultMaxQueueSize,
		SaveTimeout:  DefaultSaveTimeout,
	}
}

// NewRecorder starts the workers for one session
func NewRecorder(
	store Appender, session string, cfg RecorderConfig, logger *zap.Logger,
) *Recorder {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultWorkerCount
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = DefaultMaxQueueSize
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = DefaultSaveTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Recorder{
		store:   store,
		session: session,
		config:  cfg,
		logger:  logger.With(zap.String("session", session)),
		queues:  make([]chan *bedrock.Event, cfg.WorkerCount),
		gaps:    map[string]int64{},
	}
	for i := range r.queues {
		r.queues[i] = make(chan *bedrock.Event, cfg.MaxQueueSize)
		r.wg.Add(1)
		go r.worker(i, r.queues[i])
	}
	return r
}

// Listener returns a Kernel listener that enqueues every event it sees.
// When a worker's queue is full it waits up to SaveTimeout for room before
// dropping the event
func (r *Recorder) Listener() bedrock.Listener {
	return func(ev *bedrock.Event) {
		r.enqueue(ev)
	}
}

// Saved reports how many events have been written
func (r *Recorder) Saved() int64 {
	return r.saved.Load()
}

// Dropped reports how many events were discarded because a queue was full
// or the Recorder had stopped
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Failed reports how many events the Appender rejected
func (r *Recorder) Failed() int64 {
	return r.failed.Load()
}

// Skipped reports how many events were not written because an earlier
// event of the same stream was dropped or rejected
func (r *Recorder) Skipped() int64 {
	return r.skipped.Load()
}

// Gaps returns the aggregates whose streams stopped being written, with
// the sequence of the first event each one lost
func (r *Recorder) Gaps() map[string]int64 {
	r.gapMu.Lock()
	defer r.gapMu.Unlock()
	return maps.Clone(r.gaps)
}

// Stop drains the queues and waits for the workers to finish
func (r *Recorder) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	for _, q := range r.queues {
		close(q)
	}
	r.mu.Unlock()
	r.wg.Wait()
}

func (r *Recorder) enqueue(ev *bedrock.Event) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.stopped {
		r.dropped.Add(1)
		return false
	}
	if r.afterGap(ev) {
		r.skipped.Add(1)
		return false
	}

	q := r.queues[r.shard(ev.Meta.AggregateID)]
	select {
	case q <- ev.Clone():
		return true
	default:
	}

	timer := time.NewTimer(r.config.SaveTimeout)
	defer timer.Stop()
	select {
	case q <- ev.Clone():
		return true
	case <-timer.C:
		r.dropped.Add(1)
		r.logger.Warn("recorder queue full, dropping event",
			zap.String("agg_id", ev.Meta.AggregateID),
			zap.Int64("seq", ev.Meta.Sequence),
			zap.Int("queue_size", len(q)),
		)
		r.markGap(ev.Meta.AggregateID, ev.Meta.Sequence)
		return false
	}
}

// afterGap reports whether an event follows a lost event of its stream
func (r *Recorder) afterGap(ev *bedrock.Event) bool {
	r.gapMu.Lock()
	defer r.gapMu.Unlock()
	seq, ok := r.gaps[ev.Meta.AggregateID]
	return ok && ev.Meta.Sequence > seq
}

func (r *Recorder) markGap(aggID string, seq int64) {
	r.gapMu.Lock()
	defer r.gapMu.Unlock()
	if _, ok := r.gaps[aggID]; ok {
		return
	}
	r.gaps[aggID] = seq
	r.logger.Warn("recorder stream gap, skipping aggregate",
		zap.String("agg_id", aggID),
		zap.Int64("seq", seq),
	)
}

func (r *Recorder) shard(aggID string) int {
	return int(xxhash.Sum64String(aggID) % uint64(len(r.queues)))
}

func (r *Recorder) worker(id int, queue <-chan *bedrock.Event) {
	defer r.wg.Done()
	for ev := range queue {
		r.save(id, ev)
	}
}

func (r *Recorder) save(workerID int, ev *bedrock.Event) {
	ctx, cancel := context.WithTimeout(
		context.Background(), r.config.SaveTimeout,
	)
	defer cancel()

	if r.afterGap(ev) {
		r.skipped.Add(1)
		return
	}

	id := StreamID{Session: r.session, Aggregate: ev.Meta.AggregateID}
	start := time.Now()
	err := r.store.Append(ctx, id, ev.Meta.Sequence-1, []*bedrock.Event{ev})
	duration := time.Since(start)

	if err != nil {
		r.failed.Add(1)
		r.logger.Error("failed to record event",
			zap.Int("worker_id", workerID),
			zap.String("agg_id", ev.Meta.AggregateID),
			zap.Int64("seq", ev.Meta.Sequence),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		r.markGap(ev.Meta.AggregateID, ev.Meta.Sequence)
		return
	}

	r.saved.Add(1)
	r.logger.Debug("event recorded",
		zap.Int("worker_id", workerID),
		zap.String("agg_id", ev.Meta.AggregateID),
		zap.Int64("seq", ev.Meta.Sequence),
		zap.Duration("duration", duration),
	)
}
