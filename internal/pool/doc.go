// Package pool provides a bounded worker pool for per-sentence searches.
//
// A Pool starts a fixed number of workers that take tasks from a FIFO queue.
// The queue can be bounded, in which case Submit blocks until a worker frees
// a slot. The lifecycle is one-way: Running, then Stopping, then Stopped.
//
// On Linux workers can be pinned to CPUs (worker i to CPU i modulo the CPU
// count). Pinning is best effort; a failure is logged and ignored.
package pool
