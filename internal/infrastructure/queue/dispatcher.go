package queue

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/yatube/yatube/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Dispatcher routes post submissions to a fixed set of workers using
// consistent hashing on the author's username, so one author's posts are
// created in the order they were enqueued.
type Dispatcher struct {
	workers []chan ports.CreatePostInput
	service ports.AuthoringService
	log     zerolog.Logger
	wg      sync.WaitGroup

	created atomic.Int64
	failed  atomic.Int64
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.AuthoringService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.CreatePostInput, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.CreatePostInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled
// or after Close once their queue is drained.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a submission to the worker responsible for its author.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(input ports.CreatePostInput) {
	d.workers[d.shardIndex(authorKey(input))] <- input
}

// EnqueueBatch enqueues multiple submissions preserving per-author ordering.
func (d *Dispatcher) EnqueueBatch(inputs []ports.CreatePostInput) {
	for _, in := range inputs {
		d.Enqueue(in)
	}
}

// Close stops accepting work. Enqueue must not be called afterwards.
func (d *Dispatcher) Close() {
	for _, ch := range d.workers {
		close(ch)
	}
}

// Wait blocks until every worker has exited.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Stats returns how many posts were created and how many failed so far.
func (d *Dispatcher) Stats() (created, failed int64) {
	return d.created.Load(), d.failed.Load()
}

// shardIndex maps an author deterministically to a worker index.
func (d *Dispatcher) shardIndex(author string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(author))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func authorKey(input ports.CreatePostInput) string {
	if input.Author == nil {
		return ""
	}
	return input.Author.Username
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.CreatePostInput) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case input, ok := <-ch:
			if !ok {
				return
			}
			if _, err := d.service.CreatePost(ctx, input); err != nil {
				d.failed.Add(1)
				d.log.Error().Err(err).
					Str("author", authorKey(input)).
					Int("worker_id", id).
					Msg("post creation failed")
				continue
			}
			d.created.Add(1)
		}
	}
}
