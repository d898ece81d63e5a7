// Package sched implements the work-stealing executor that distributes
// pattern-invocation tasks across worker threads.
//
// ARCHITECTURE:
//
// One goroutine per worker, each running a cooperative loop:
//
//  1. Check the shutdown flag
//  2. Pop the local deque (LIFO - cache locality for freshly spawned
//     continuations, which fan-out-heavy multiple-instance patterns
//     produce in bursts)
//  3. Drain a batch from the global injector (FIFO - fairness across
//     independently submitted work)
//  4. Steal from a uniformly random peer, bounded attempts (random victim
//     selection avoids the convoy effects of round-robin stealing)
//  5. Park with a timeout and start over
//
// Spawn pushes into the global injector and never wakes a specific parked
// worker; wake-up happens through the timeout-bounded park loop. That costs
// a bounded wake latency and buys an uncontended spawn path.
//
// Local deques are Chase-Lev: the owner pushes and pops the bottom without
// contention, thieves CAS the top. The injector is a mutex FIFO with a
// coalescing signal channel; it is off the per-task hot path (touched once
// per batch, not once per task).
//
// Guard evaluation, dispatch lookup, and tick measurement run synchronously
// inside the worker and never suspend; only the idle loop parks.
// Cancellation is cooperative: the shutdown flag is polled once per loop
// iteration, and an in-flight task is never preempted.
//
// A panicking task is confined to that task: the worker recovers, reports
// the task as failed, and keeps its queue. Worker liveness and completion
// metrics survive any task.
package sched
