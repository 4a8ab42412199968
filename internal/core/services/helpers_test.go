package services_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/lorrc/incident-desk/internal/core/domain"
	"github.com/lorrc/incident-desk/internal/core/mocks"
	"github.com/lorrc/incident-desk/internal/core/ports"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// taggedAs matches a publish context carrying eventType for the event_type header.
func taggedAs(eventType string) any {
	return mock.MatchedBy(func(ctx context.Context) bool {
		return ports.EventTypeFromContext(ctx) == eventType
	})
}

// publishedTicketEvents decodes every tickets-topic payload the mock publisher received.
func publishedTicketEvents(t *testing.T, pub *mocks.MockMessagePublisher) []domain.TicketEvent {
	t.Helper()
	var events []domain.TicketEvent
	for _, call := range pub.Calls {
		if call.Method != "Publish" || call.Arguments.String(1) != "tickets" {
			continue
		}
		var event domain.TicketEvent
		require.NoError(t, json.Unmarshal(call.Arguments.Get(3).([]byte), &event))
		require.Equal(t, event.TicketID, call.Arguments.String(2), "tickets are keyed by ticket id")
		events = append(events, event)
	}
	return events
}

func countStatus(events []domain.TicketEvent, status domain.TicketEventStatus) int {
	n := 0
	for _, e := range events {
		if e.Status == status {
			n++
		}
	}
	return n
}
