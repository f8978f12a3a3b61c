package view

import (
	"context"

	"github.com/viant/asyncloader/service/loader"
)

// Placement carries pass-through options describing how a created view
// replaces or stacks on top of its parent. The scheduler never interprets
// these; they travel untouched from submission to the factory.
type Placement struct {
	RemoveParent  bool `json:"removeParent,omitempty" yaml:"removeParent,omitempty"`
	DestroyParent bool `json:"destroyParent,omitempty" yaml:"destroyParent,omitempty"`
	ZOrder        int  `json:"zOrder,omitempty" yaml:"zOrder,omitempty"`
}

// View is a created instance. Detach releases it without displaying,
// which is all a preload needs once the class has been cached.
type View interface {
	Detach()
}

// Factory instantiates and places a view given a resolved class. A
// failure is returned as an error, never a panic across this boundary.
type Factory interface {
	Create(ctx context.Context, class *loader.Class, placement Placement) (View, error)
}
