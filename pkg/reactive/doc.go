// Package reactive provides the signal graph that drives histroute's
// route matching pipeline.
//
// The model is fine-grained push/pull reactivity: reading a Signal or Memo
// while a Memo computes or an Effect runs subscribes that reader, writes mark
// subscribers dirty, and Memos recompute lazily on their next read.
//
// # Core Types
//
// Every primitive belongs to a Runtime, which holds the tracking context for
// one graph. Independent Runtimes never observe each other's writes.
//
//	rt := reactive.NewRuntime()
//	count := reactive.NewSignal(rt, 0)
//	doubled := reactive.NewMemo(rt, func() int { return count.Get() * 2 })
//
// Effects are created through an Owner, which disposes them as a group:
//
//	owner := reactive.NewOwner(rt)
//	owner.Effect(func() reactive.Cleanup {
//	    fmt.Println("doubled:", doubled.Get())
//	    return nil
//	})
//	count.Set(2) // prints "doubled: 4"
//	owner.Dispose()
//
// # Consistency
//
// A write first invalidates every dependent Memo and schedules dependent
// Effects; scheduled Effects run only after invalidation has finished, in
// creation order. An Effect therefore never reads a mix of old and new
// derived values.
//
// # Thread Safety
//
// A Runtime and everything created from it must be used from one goroutine
// at a time. Callers that share a graph across goroutines serialize access
// themselves.
package reactive
