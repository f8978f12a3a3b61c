package loader

import (
	"context"

	"github.com/viant/x"
)

// Class is a resolved class: the concrete definition a reference points to,
// from which view instances can be made.
type Class struct {
	// Name identifies the class, typically derived from the reference.
	Name string

	// Type optionally carries the registered Go type backing the class so
	// that a factory can instantiate it reflectively.
	Type *x.Type

	// Definition holds the decoded class definition (layout, properties)
	// exactly as the loader resolved it.
	Definition map[string]interface{}
}

// Handle controls an in-flight load operation.
type Handle interface {
	// Cancel aborts the load. It is idempotent and safe to call after the
	// operation has already completed; a cancelled load never invokes its
	// completion function.
	Cancel()
}

// Service resolves references into classes asynchronously.
type Service interface {
	// Load starts resolving reference and returns a cancellable handle.
	// Unless cancelled first, done is invoked exactly once with either a
	// resolved class or an error. Load returns an error only when the
	// operation cannot even begin (e.g. malformed reference).
	Load(ctx context.Context, reference string, done func(*Class, error)) (Handle, error)
}
