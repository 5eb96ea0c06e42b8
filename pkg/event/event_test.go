package event_test

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/changyuyeo/fitbody/pkg/event"
)

func TestFireAsync_ReachesEveryListener(t *testing.T) {
	var calls atomic.Int32
	var got atomic.Value

	event.Listen("order.shipped", func(payload interface{}) {
		calls.Add(1)
		got.Store(payload)
	})
	event.Listen("order.shipped", func(_ interface{}) {
		calls.Add(1)
	})

	event.FireAsync("order.shipped", "tracking-42")
	event.Wait()

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "tracking-42", got.Load())
}

func TestFireAsync_UnknownEventIsHarmless(t *testing.T) {
	event.FireAsync("never.registered", nil)
	event.Wait()
}

func TestWait_CoversHandlersStartedBeforeIt(t *testing.T) {
	var done atomic.Bool

	release := make(chan struct{})
	event.Listen("stock.replenished", func(_ interface{}) {
		<-release
		done.Store(true)
	})

	event.FireAsync("stock.replenished", nil)
	close(release)
	event.Wait()

	assert.True(t, done.Load(), "Wait must not return before handlers finish")
}
