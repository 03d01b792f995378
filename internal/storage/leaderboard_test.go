package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLeaderboard(t *testing.T) *LeaderboardManager {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewLeaderboardManager(client)
}

func TestGetPlayerStats_UnknownPlayer(t *testing.T) {
	lm := newTestLeaderboard(t)

	stats, err := lm.GetPlayerStats(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, stats)
}

func TestRecordGameResult_CreatesAndAccumulates(t *testing.T) {
	lm := newTestLeaderboard(t)
	ctx := context.Background()

	require.NoError(t, lm.RecordGameResult(ctx, "p1", "好学的水獭", 50, 5, 8, true))
	require.NoError(t, lm.RecordGameResult(ctx, "p1", "好学的水獭", 30, 3, 5, false))

	stats, err := lm.GetPlayerStats(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, stats)

	assert.Equal(t, 2, stats.TotalGames)
	assert.Equal(t, 1, stats.Wins)
	assert.Equal(t, 8, stats.WordsCorrect)
	assert.Equal(t, 13, stats.WordsTotal)
	assert.Equal(t, 80, stats.TotalScore)
	assert.Equal(t, 50, stats.BestScore)
	assert.NotZero(t, stats.CreatedAt)
	assert.NotZero(t, stats.LastPlayedAt)
}

func TestRecordGameResult_Streaks(t *testing.T) {
	lm := newTestLeaderboard(t)
	ctx := context.Background()

	for range 3 {
		require.NoError(t, lm.RecordGameResult(ctx, "p1", "玩家", 10, 1, 1, true))
	}
	stats, err := lm.GetPlayerStats(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.CurrentStreak)
	assert.Equal(t, 3, stats.MaxWinStreak)

	// A loss resets the streak but keeps the max
	require.NoError(t, lm.RecordGameResult(ctx, "p1", "玩家", 0, 0, 1, false))
	stats, err = lm.GetPlayerStats(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, -1, stats.CurrentStreak)
	assert.Equal(t, 3, stats.MaxWinStreak)
}

func TestGetLeaderboard_OrderAndRanks(t *testing.T) {
	lm := newTestLeaderboard(t)
	ctx := context.Background()

	require.NoError(t, lm.RecordGameResult(ctx, "p1", "甲", 30, 3, 5, false))
	require.NoError(t, lm.RecordGameResult(ctx, "p2", "乙", 80, 8, 10, true))
	require.NoError(t, lm.RecordGameResult(ctx, "p3", "丙", 50, 5, 5, false))

	entries, err := lm.GetLeaderboard(ctx, "total", 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "p2", entries[0].PlayerID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 80, entries[0].Score)
	assert.Equal(t, "p3", entries[1].PlayerID)
	assert.Equal(t, "p1", entries[2].PlayerID)
	assert.InDelta(t, 100.0, entries[1].Accuracy, 0.01)
}

func TestGetLeaderboard_Pagination(t *testing.T) {
	lm := newTestLeaderboard(t)
	ctx := context.Background()

	require.NoError(t, lm.RecordGameResult(ctx, "p1", "甲", 10, 1, 1, false))
	require.NoError(t, lm.RecordGameResult(ctx, "p2", "乙", 20, 2, 2, false))
	require.NoError(t, lm.RecordGameResult(ctx, "p3", "丙", 30, 3, 3, true))

	entries, err := lm.GetLeaderboard(ctx, "total", 1, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "p2", entries[0].PlayerID)
	assert.Equal(t, 2, entries[0].Rank)
}

func TestGetLeaderboard_DailyAndWeekly(t *testing.T) {
	lm := newTestLeaderboard(t)
	ctx := context.Background()

	require.NoError(t, lm.RecordGameResult(ctx, "p1", "甲", 40, 4, 4, true))

	for _, typ := range []string{"daily", "weekly"} {
		entries, err := lm.GetLeaderboard(ctx, typ, 0, 10)
		require.NoError(t, err)
		require.Len(t, entries, 1, "leaderboard type %s", typ)
		assert.Equal(t, "p1", entries[0].PlayerID)
	}
}

func TestGetPlayerRank(t *testing.T) {
	lm := newTestLeaderboard(t)
	ctx := context.Background()

	require.NoError(t, lm.RecordGameResult(ctx, "p1", "甲", 10, 1, 1, false))
	require.NoError(t, lm.RecordGameResult(ctx, "p2", "乙", 99, 9, 9, true))

	rank, err := lm.GetPlayerRank(ctx, "p2")
	require.NoError(t, err)
	assert.EqualValues(t, 1, rank)

	rank, err = lm.GetPlayerRank(ctx, "p1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, rank)

	rank, err = lm.GetPlayerRank(ctx, "nobody")
	require.NoError(t, err)
	assert.EqualValues(t, -1, rank)
}

func TestStatsHelpers(t *testing.T) {
	stats := &PlayerStats{TotalGames: 4, Wins: 1, WordsCorrect: 3, WordsTotal: 4}
	assert.InDelta(t, 25.0, stats.WinRate(), 0.01)
	assert.InDelta(t, 75.0, stats.Accuracy(), 0.01)

	empty := &PlayerStats{}
	assert.Zero(t, empty.WinRate())
	assert.Zero(t, empty.Accuracy())
}
