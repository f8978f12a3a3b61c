// Package asyncloader provides an asynchronous resource-loading
// scheduler: callers submit requests to resolve a deferred reference
// into a concrete view, with bounded concurrency, priority ordering,
// per-request timeout, cancellation and a resolved-class cache that
// skips repeat loads.
//
// The engine is designed to be embedded in host applications. End-users
// typically interact with it via the high-level Service façade exposed
// by the root package:
//
//	srv, _ := asyncloader.New(
//		asyncloader.WithLoader(myLoader),
//		asyncloader.WithViewFactory(myFactory),
//	)
//	_ = srv.Start(ctx)
//	id := srv.Submit(ctx, "menu/main", view.Placement{ZOrder: 1}, 10, onDone, onFail)
//	...
//	srv.Cancel(ctx, id)
//
// For more details see the README and individual sub-packages.
package asyncloader
