package hunts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lead-hunter/internal/models"
)

func TestCache_SaveGet(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := NewCache(client, "test", 24*time.Hour)
	ctx := context.Background()
	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	summary := &models.HuntSummary{
		HuntID:       "h-1",
		Success:      true,
		Query:        "شقة",
		City:         "القاهرة",
		TotalResults: 3,
		FoundLeads:   1,
		Leads:        []string{"01098765432"},
		TruncatedTo:  10,
		StartedAt:    started,
		FinishedAt:   started.Add(2 * time.Second),
	}
	require.NoError(t, cache.Save(ctx, summary))
	assert.Equal(t, 24*time.Hour, mr.TTL("test:hunt:h-1"))

	got, err := cache.Get(ctx, "h-1")
	require.NoError(t, err)
	assert.Equal(t, summary, got)

	_, err = cache.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	mr.FastForward(25 * time.Hour)
	_, err = cache.Get(ctx, "h-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCache_Errors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewCache(client, "hunter", time.Hour)

	mock.ExpectGet("hunter:hunt:h-1").SetErr(errors.New("redis down"))
	_, err := cache.Get(context.Background(), "h-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	mock.ExpectGet("hunter:hunt:h-2").SetVal("{not json")
	_, err = cache.Get(context.Background(), "h-2")
	assert.ErrorContains(t, err, "decode")

	assert.NoError(t, mock.ExpectationsWereMet())
}
