package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/asyncloader/service/loader"
)

func TestLoader_Resolves(t *testing.T) {
	svc := New(DefaultConfig())
	svc.Register("menu", &loader.Class{Name: "menu"})

	var mu sync.Mutex
	var got *loader.Class
	var gotErr error
	handle, err := svc.Load(context.Background(), "menu", func(class *loader.Class, err error) {
		mu.Lock()
		got, gotErr = class, err
		mu.Unlock()
	})
	assert.NoError(t, err)
	assert.NotNil(t, handle)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got != nil
	}, time.Second, 5*time.Millisecond)
	assert.NoError(t, gotErr)
	assert.Equal(t, "menu", got.Name)
}

func TestLoader_NotFound(t *testing.T) {
	svc := New(DefaultConfig())

	var mu sync.Mutex
	var gotErr error
	_, err := svc.Load(context.Background(), "missing", func(class *loader.Class, err error) {
		mu.Lock()
		gotErr = err
		mu.Unlock()
	})
	assert.NoError(t, err)
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return gotErr != nil
	}, time.Second, 5*time.Millisecond)
}

func TestLoader_RegisteredError(t *testing.T) {
	svc := New(DefaultConfig())
	svc.Register("hud", &loader.Class{Name: "hud"})
	svc.RegisterError("hud", fmt.Errorf("corrupted asset"))

	var mu sync.Mutex
	var gotErr error
	_, err := svc.Load(context.Background(), "hud", func(class *loader.Class, err error) {
		mu.Lock()
		gotErr = err
		mu.Unlock()
	})
	assert.NoError(t, err)
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return gotErr != nil
	}, time.Second, 5*time.Millisecond)
	assert.Contains(t, gotErr.Error(), "corrupted asset")
}

func TestLoader_EmptyReference(t *testing.T) {
	svc := New(DefaultConfig())
	_, err := svc.Load(context.Background(), "", func(*loader.Class, error) {})
	assert.Error(t, err)
}

func TestLoader_CancelSuppressesCompletion(t *testing.T) {
	config := DefaultConfig()
	config.Latency = 50 * time.Millisecond
	svc := New(config)
	svc.Register("slow", &loader.Class{Name: "slow"})

	var mu sync.Mutex
	invoked := false
	handle, err := svc.Load(context.Background(), "slow", func(*loader.Class, error) {
		mu.Lock()
		invoked = true
		mu.Unlock()
	})
	assert.NoError(t, err)

	handle.Cancel()
	handle.Cancel() // idempotent

	time.Sleep(120 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.False(t, invoked)
}
