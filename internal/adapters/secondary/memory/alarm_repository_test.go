package memory_test

import (
	"context"
	"testing"

	"github.com/lorrc/incident-desk/internal/adapters/secondary/memory"
	"github.com/lorrc/incident-desk/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlarmRepository(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewAlarmRepository()

	for _, e := range []*domain.AlarmEvent{
		{AlarmID: "a1", Service: domain.ServiceBroadband, Impact: domain.ImpactOutage, Timestamp: 1},
		{AlarmID: "a2", Service: domain.ServiceTV, Impact: domain.ImpactSlow, Timestamp: 2},
		{AlarmID: "a1", Service: domain.ServiceBroadband, Impact: domain.ImpactResolved, Timestamp: 3},
	} {
		require.NoError(t, repo.Append(ctx, e))
	}

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	history, err := repo.ListByAlarm(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.ImpactResolved, history[1].Impact)

	tv, err := repo.ListByService(ctx, domain.ServiceTV)
	require.NoError(t, err)
	require.Len(t, tv, 1)
	assert.Equal(t, "a2", tv[0].AlarmID)

	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "a1", latest[0].AlarmID)
	assert.Equal(t, domain.ImpactResolved, latest[0].Impact)
	assert.Equal(t, "a2", latest[1].AlarmID)
}
