package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusPublishDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus[string]()

	var got []string
	sub1, err := bus.Subscribe(func(s string) { got = append(got, "a:"+s) })
	require.NoError(t, err)
	sub2, err := bus.Subscribe(func(s string) { got = append(got, "b:"+s) })
	require.NoError(t, err)

	assert.NotEqual(t, sub1.ID(), sub2.ID())
	assert.Equal(t, 2, bus.SubscriberCount())

	bus.Publish("hello")
	assert.ElementsMatch(t, []string{"a:hello", "b:hello"}, got)
	assert.Equal(t, uint64(1), bus.Published())
}

func TestBusSubscribeNilHandler(t *testing.T) {
	bus := NewBus[int]()
	_, err := bus.Subscribe(nil)
	assert.ErrorIs(t, err, ErrNilHandler)
}

func TestBusCancel(t *testing.T) {
	bus := NewBus[int]()

	n := 0
	sub, err := bus.Subscribe(func(int) { n++ })
	require.NoError(t, err)
	assert.True(t, sub.IsActive())

	bus.Publish(1)
	sub.Cancel()
	assert.False(t, sub.IsActive())
	assert.Zero(t, bus.SubscriberCount())

	bus.Publish(2)
	assert.Equal(t, 1, n)

	// Double cancel is harmless.
	sub.Cancel()
}

func TestBusPublishWithoutSubscribers(t *testing.T) {
	bus := NewBus[int]()
	bus.Publish(42)
	assert.Equal(t, uint64(1), bus.Published())
}

func TestBusConcurrentPublish(t *testing.T) {
	bus := NewBus[int]()

	var mu sync.Mutex
	total := 0
	_, err := bus.Subscribe(func(v int) {
		mu.Lock()
		total += v
		mu.Unlock()
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				bus.Publish(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 800, total)
	assert.Equal(t, uint64(800), bus.Published())
}
