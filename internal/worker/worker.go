// Package worker runs comparison persistence off the request path for the
// respond-first deployment mode. Save failures are logged, never surfaced
// to the HTTP caller.
package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/vnmchuo/llm-compare/internal/compare"
	"github.com/vnmchuo/llm-compare/internal/storage"
)

const saveTimeout = 30 * time.Second

// SaveJob is one comparison waiting to be persisted.
type SaveJob struct {
	Prompt  string
	Results []compare.ModelResult
}

type Saver struct {
	store storage.Store
	jobs  chan SaveJob
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewSaver(store storage.Store, queueSize int) *Saver {
	return &Saver{
		store: store,
		jobs:  make(chan SaveJob, queueSize),
	}
}

// Start launches the worker loop. It drains the queue until Close is
// called, using its own background-derived context so an early caller
// disconnect never cancels an in-flight write.
func (s *Saver) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for job := range s.jobs {
			s.save(job)
		}
	}()
}

func (s *Saver) save(job SaveJob) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	start := time.Now()
	id, err := s.store.Save(ctx, job.Prompt, job.Results)
	if err != nil {
		log.Printf("[Saver] failed to save comparison: %v", err)
		return
	}
	log.Printf("[Saver] saved comparison %s in %dms", id, time.Since(start).Milliseconds())
}

// Enqueue hands a comparison to the worker without blocking the request
// path. When the queue is full or the saver is shut down the job is
// dropped with a log line; persistence is best-effort in this mode.
func (s *Saver) Enqueue(job SaveJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		log.Printf("[Saver] shut down, dropping comparison")
		return
	}
	select {
	case s.jobs <- job:
	default:
		log.Printf("[Saver] queue full, dropping comparison")
	}
}

// Close stops intake and waits for queued jobs to finish.
func (s *Saver) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.jobs)
	s.mu.Unlock()

	s.wg.Wait()
}
