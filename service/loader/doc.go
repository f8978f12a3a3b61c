// Package loader defines the resolution collaborator contract: a Service
// turns an opaque reference into a resolved Class through a cancellable
// asynchronous operation. Implementations live in sub-packages (memory,
// storage); the scheduler only depends on this interface.
package loader
