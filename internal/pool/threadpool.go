package pool

import (
	"errors"
	"log/slog"
	"runtime"
	"sync"
)

// ErrRejected is returned by Submit once the pool is stopping.
var ErrRejected = errors.New("pool: stopping, unable to accept new tasks")

// Task is a unit of work run by a worker.
type Task interface {
	Run()
}

// TaskFunc adapts a function to Task.
type TaskFunc func()

// Run calls f.
func (f TaskFunc) Run() { f() }

// State is the lifecycle state of a Pool.
type State int32

const (
	// Running accepts and executes tasks.
	Running State = iota
	// Stopping rejects new tasks; queued tasks may still be drained.
	Stopping
	// Stopped has released all workers.
	Stopped
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Option is a configuration option for Pool.
type Option func(*Pool)

// WithQueueLimit bounds the number of queued tasks. 0 means unlimited.
func WithQueueLimit(n int) Option {
	return func(p *Pool) {
		p.queueLimit = max(n, 0)
	}
}

// WithCPUAffinity pins worker i to CPU i modulo the CPU count.
func WithCPUAffinity(enabled bool) Option {
	return func(p *Pool) {
		p.affinity = enabled
	}
}

// WithLogger sets the logger for lifecycle and affinity messages.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// Pool runs tasks on a fixed set of workers.
// All methods are safe for concurrent use.
type Pool struct {
	mu              sync.Mutex
	threadNeeded    *sync.Cond // signalled when a task is queued or the pool stops
	threadAvailable *sync.Cond // signalled when a task is dequeued or finished

	tasks      []Task
	state      State
	queueLimit int
	threads    int
	affinity   bool
	logger     *slog.Logger

	wg sync.WaitGroup
}

// New starts a pool with the given number of workers.
// threads <= 0 uses one worker per CPU.
func New(threads int, opts ...Option) *Pool {
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	p := &Pool{
		threads: threads,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.threadNeeded = sync.NewCond(&p.mu)
	p.threadAvailable = sync.NewCond(&p.mu)

	p.wg.Add(threads)
	for i := 0; i < threads; i++ {
		go p.worker(i)
	}
	p.logger.Debug("worker pool started", "threads", threads, "queue_limit", p.queueLimit, "cpu_affinity", p.affinity)
	return p
}

func (p *Pool) worker(i int) {
	defer p.wg.Done()

	if p.affinity {
		if cpu, err := pin(i); err != nil {
			p.logger.Debug("cpu affinity not applied", "worker", i, "error", err)
		} else {
			p.logger.Debug("cpu affinity applied", "worker", i, "cpu", cpu)
		}
	}

	for {
		p.mu.Lock()
		for len(p.tasks) == 0 && p.state != Stopped {
			p.threadNeeded.Wait()
		}
		if p.state == Stopped {
			p.mu.Unlock()
			return
		}
		task := p.tasks[0]
		p.tasks[0] = nil
		p.tasks = p.tasks[1:]
		p.threadAvailable.Broadcast()
		p.mu.Unlock()

		task.Run()

		p.mu.Lock()
		p.threadAvailable.Broadcast()
		p.mu.Unlock()
	}
}

// Submit queues task. It blocks while the queue is at its limit and returns
// ErrRejected if the pool is stopping, including when it starts stopping
// while Submit is blocked.
func (p *Pool) Submit(task Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != Running {
		return ErrRejected
	}
	for p.queueLimit > 0 && len(p.tasks) >= p.queueLimit {
		p.threadAvailable.Wait()
		if p.state != Running {
			return ErrRejected
		}
	}
	p.tasks = append(p.tasks, task)
	p.threadNeeded.Signal()
	return nil
}

// SubmitFunc queues fn.
func (p *Pool) SubmitFunc(fn func()) error {
	return p.Submit(TaskFunc(fn))
}

// Stop stops accepting tasks. With drain it first waits until every queued
// task has been picked up; otherwise queued tasks are dropped. Stop returns
// after all workers have exited. Calling Stop again has no effect.
func (p *Pool) Stop(drain bool) {
	p.mu.Lock()
	if p.state != Running {
		p.mu.Unlock()
		p.wg.Wait()
		return
	}
	p.state = Stopping
	p.threadAvailable.Broadcast() // release blocked submitters

	if drain {
		for len(p.tasks) > 0 {
			p.threadAvailable.Wait()
		}
	}
	dropped := len(p.tasks)
	clear(p.tasks)
	p.tasks = nil
	p.state = Stopped
	p.threadNeeded.Broadcast()
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Debug("worker pool stopped", "drain", drain, "dropped", dropped)
}

// State returns the lifecycle state.
func (p *Pool) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Pending returns the number of queued tasks not yet picked up by a worker.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tasks)
}

// Threads returns the number of workers.
func (p *Pool) Threads() int { return p.threads }
