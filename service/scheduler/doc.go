// Package scheduler implements the asynchronous loading core: bounded
// concurrency, strict priority ordering with FIFO tie-break, per-request
// timeout, best-effort cancellation and a resolved-class cache check on
// every admission. Requests move from the pending queue into the active
// set as slots free up; every terminal path releases its slot and admits
// the next request so the scheduler can never stall.
package scheduler
