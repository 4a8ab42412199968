package bus_test

import (
	"context"
	"testing"
	"time"

	"github.com/lorrc/incident-desk/internal/adapters/secondary/bus"
	"github.com/lorrc/incident-desk/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTopicNames(t *testing.T) {
	t.Run("identity mapping returns the bus unchanged", func(t *testing.T) {
		b := bus.NewMemoryBus(1, discardLogger())
		defer b.Close()

		wrapped := bus.WithTopicNames(b, bus.TopicNames{ports.TopicAlarms: ports.TopicAlarms})
		assert.Same(t, b, wrapped)
	})

	t.Run("renamed topics route to the broker name", func(t *testing.T) {
		b := bus.NewMemoryBus(1, discardLogger())
		defer b.Close()
		wrapped := bus.WithTopicNames(b, bus.TopicNames{ports.TopicAlarms: "prod.alarms"})

		got := make(chan ports.Message, 2)
		record := func(_ context.Context, msg ports.Message) error {
			got <- msg
			return nil
		}
		require.NoError(t, b.Subscribe(context.Background(), "prod.alarms", "raw", record))
		require.NoError(t, wrapped.Subscribe(context.Background(), ports.TopicAlarms, "logical", record))

		require.NoError(t, wrapped.Publish(context.Background(), ports.TopicAlarms, "a1", []byte("x")))

		for i := 0; i < 2; i++ {
			select {
			case msg := <-got:
				assert.Equal(t, "prod.alarms", msg.Topic)
			case <-time.After(time.Second):
				t.Fatal("message not delivered")
			}
		}
	})
}
