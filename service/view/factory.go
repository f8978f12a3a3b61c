package view

import (
	"context"
	"fmt"
	"reflect"

	"github.com/viant/asyncloader/service/loader"
)

// Instance is the view produced by the reflective factory. Value holds a
// pointer to a freshly created instance of the class type.
type Instance struct {
	Class     *loader.Class
	Placement Placement
	Value     interface{}
	detached  bool
}

// Detach releases the instance without displaying it.
func (i *Instance) Detach() {
	i.detached = true
	i.Value = nil
}

// Detached reports whether the instance has been released.
func (i *Instance) Detached() bool {
	return i.detached
}

// ReflectiveFactory instantiates views from the Go type a resolved class
// carries. Classes without a bound type still produce an Instance whose
// Value is the raw definition, so hosts that render from definitions
// alone keep working.
type ReflectiveFactory struct{}

// NewReflectiveFactory creates a reflective view factory.
func NewReflectiveFactory() *ReflectiveFactory {
	return &ReflectiveFactory{}
}

// Create builds a view instance for the supplied class.
func (f *ReflectiveFactory) Create(ctx context.Context, class *loader.Class, placement Placement) (View, error) {
	if class == nil {
		return nil, fmt.Errorf("class was nil")
	}
	instance := &Instance{Class: class, Placement: placement}
	if class.Type != nil && class.Type.Type != nil {
		rType := class.Type.Type
		if rType.Kind() == reflect.Ptr {
			rType = rType.Elem()
		}
		if rType.Kind() != reflect.Struct {
			return nil, fmt.Errorf("unsupported class type %s for %v", rType.Kind(), class.Name)
		}
		instance.Value = reflect.New(rType).Interface()
	} else {
		instance.Value = class.Definition
	}
	return instance, nil
}

var _ Factory = (*ReflectiveFactory)(nil)
