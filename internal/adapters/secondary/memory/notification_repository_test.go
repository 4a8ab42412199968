package memory_test

import (
	"context"
	"testing"

	"github.com/lorrc/incident-desk/internal/adapters/secondary/memory"
	"github.com/lorrc/incident-desk/internal/core/domain"
	"github.com/lorrc/incident-desk/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedNotifications(t *testing.T, repo *memory.NotificationRepository) {
	t.Helper()
	ctx := context.Background()
	for _, n := range []*domain.NotificationEvent{
		{ID: "n1", TicketID: "t1", AlarmID: "a1", CustomerID: "c-42", Status: domain.NotificationSent, Timestamp: 100},
		{ID: "n2", TicketID: "t2", AlarmID: "a1", CustomerID: "c-7", Status: domain.NotificationFailed, Timestamp: 200},
		{ID: "n3", AlarmID: "a2", CustomerID: "general", Status: domain.NotificationSent, Timestamp: 300},
	} {
		require.NoError(t, repo.Append(ctx, n))
	}
}

func TestNotificationRepository_Find(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewNotificationRepository()
	seedNotifications(t, repo)

	from, to := int64(150), int64(300)

	tests := []struct {
		name    string
		filter  ports.NotificationFilter
		wantIDs []string
	}{
		{"everything", ports.NotificationFilter{}, []string{"n1", "n2", "n3"}},
		{"by alarm", ports.NotificationFilter{AlarmID: "a1"}, []string{"n1", "n2"}},
		{"by ticket", ports.NotificationFilter{TicketID: "t2"}, []string{"n2"}},
		{"by status", ports.NotificationFilter{Status: domain.NotificationSent}, []string{"n1", "n3"}},
		{"by range inclusive", ports.NotificationFilter{From: &from, To: &to}, []string{"n2", "n3"}},
		{"no match", ports.NotificationFilter{AlarmID: "zzz"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := repo.Find(ctx, tt.filter)
			require.NoError(t, err)

			ids := make([]string, 0, len(found))
			for _, n := range found {
				ids = append(ids, n.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestNotificationRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewNotificationRepository()
	seedNotifications(t, repo)

	deleted, err := repo.DeleteOlderThan(ctx, 200)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	deleted, err = repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	count, _ = repo.Count(ctx)
	assert.Zero(t, count)
}
