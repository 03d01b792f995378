package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key
	playerStatsKey    = "player:stats:"
	leaderboardKey    = "leaderboard:score"
	dailyLeaderboard  = "leaderboard:daily:"
	weeklyLeaderboard = "leaderboard:weekly:"
)

// PlayerStats 玩家统计数据
type PlayerStats struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`

	// 场次
	TotalGames int `json:"total_games"` // 总场次
	Wins       int `json:"wins"`        // 胜场

	// 答题
	WordsCorrect int `json:"words_correct"` // 累计答对
	WordsTotal   int `json:"words_total"`   // 累计作答

	// 积分
	BestScore  int `json:"best_score"`  // 单局最高分
	TotalScore int `json:"total_score"` // 累计得分（排行榜依据）

	// 连胜
	CurrentStreak int `json:"current_streak"` // 正数为连胜，负数为连败
	MaxWinStreak  int `json:"max_win_streak"` // 最大连胜

	// 时间
	LastPlayedAt int64 `json:"last_played_at"` // 最后游戏时间
	CreatedAt    int64 `json:"created_at"`     // 首次游戏时间
}

// WinRate 胜率（百分比）
func (s *PlayerStats) WinRate() float64 {
	if s.TotalGames == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.TotalGames) * 100
}

// Accuracy 答题正确率（百分比）
func (s *PlayerStats) Accuracy() float64 {
	if s.WordsTotal == 0 {
		return 0
	}
	return float64(s.WordsCorrect) / float64(s.WordsTotal) * 100
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank       int     `json:"rank"`
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name"`
	Score      int     `json:"score"`
	Wins       int     `json:"wins"`
	Accuracy   float64 `json:"accuracy"`
}

// LeaderboardManager 排行榜管理器
type LeaderboardManager struct {
	redis *redis.Client
}

// NewLeaderboardManager 创建排行榜管理器
func NewLeaderboardManager(client *redis.Client) *LeaderboardManager {
	return &LeaderboardManager{redis: client}
}

// GetPlayerStats 获取玩家统计，未记录过的玩家返回 nil
func (lm *LeaderboardManager) GetPlayerStats(ctx context.Context, playerID string) (*PlayerStats, error) {
	key := playerStatsKey + playerID
	data, err := lm.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var stats PlayerStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SavePlayerStats 保存玩家统计
func (lm *LeaderboardManager) SavePlayerStats(ctx context.Context, stats *PlayerStats) error {
	key := playerStatsKey + stats.PlayerID
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return lm.redis.Set(ctx, key, data, 0).Err()
}

// RecordGameResult 记录一局游戏结果并更新排行榜
func (lm *LeaderboardManager) RecordGameResult(ctx context.Context, playerID, playerName string, gameScore, correct, total int, isWinner bool) error {
	// 获取或创建玩家统计
	stats, err := lm.GetPlayerStats(ctx, playerID)
	if err != nil {
		return err
	}
	if stats == nil {
		stats = &PlayerStats{
			PlayerID:  playerID,
			CreatedAt: time.Now().Unix(),
		}
	}

	// 更新名称（可能已更改）
	stats.PlayerName = playerName
	stats.TotalGames++
	stats.WordsCorrect += correct
	stats.WordsTotal += total
	stats.TotalScore += gameScore
	stats.LastPlayedAt = time.Now().Unix()

	if gameScore > stats.BestScore {
		stats.BestScore = gameScore
	}

	if isWinner {
		stats.Wins++
		stats.CurrentStreak = max(1, stats.CurrentStreak+1)
	} else {
		stats.CurrentStreak = min(-1, stats.CurrentStreak-1)
	}
	if stats.CurrentStreak > stats.MaxWinStreak {
		stats.MaxWinStreak = stats.CurrentStreak
	}

	if err := lm.SavePlayerStats(ctx, stats); err != nil {
		return err
	}

	return lm.updateLeaderboard(ctx, stats)
}

// updateLeaderboard 把累计得分写入总榜、日榜、周榜
func (lm *LeaderboardManager) updateLeaderboard(ctx context.Context, stats *PlayerStats) error {
	member := redis.Z{
		Score:  float64(stats.TotalScore),
		Member: stats.PlayerID,
	}

	if err := lm.redis.ZAdd(ctx, leaderboardKey, member).Err(); err != nil {
		return err
	}

	// 每日排行榜，过期时间 2 天
	dailyKey := dailyLeaderboard + time.Now().Format("2006-01-02")
	if err := lm.redis.ZAdd(ctx, dailyKey, member).Err(); err != nil {
		return err
	}
	lm.redis.Expire(ctx, dailyKey, 48*time.Hour)

	// 每周排行榜，过期时间 8 天
	year, week := time.Now().ISOWeek()
	weeklyKey := fmt.Sprintf("%s%d-W%02d", weeklyLeaderboard, year, week)
	if err := lm.redis.ZAdd(ctx, weeklyKey, member).Err(); err != nil {
		return err
	}
	lm.redis.Expire(ctx, weeklyKey, 8*24*time.Hour)

	return nil
}

// GetLeaderboard 获取排行榜（total/daily/weekly），从高到低
func (lm *LeaderboardManager) GetLeaderboard(ctx context.Context, leaderboardType string, offset, limit int) ([]LeaderboardEntry, error) {
	key := leaderboardKey
	switch leaderboardType {
	case "daily":
		key = dailyLeaderboard + time.Now().Format("2006-01-02")
	case "weekly":
		year, week := time.Now().ISOWeek()
		key = fmt.Sprintf("%s%d-W%02d", weeklyLeaderboard, year, week)
	}

	results, err := lm.redis.ZRevRangeWithScores(ctx, key, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(results))
	for i, result := range results {
		playerID, ok := result.Member.(string)
		if !ok {
			continue
		}

		stats, err := lm.GetPlayerStats(ctx, playerID)
		if err != nil || stats == nil {
			continue
		}

		entries = append(entries, LeaderboardEntry{
			Rank:       offset + i + 1,
			PlayerID:   playerID,
			PlayerName: stats.PlayerName,
			Score:      int(result.Score),
			Wins:       stats.Wins,
			Accuracy:   stats.Accuracy(),
		})
	}

	return entries, nil
}

// GetPlayerRank 获取玩家总榜排名，未上榜返回 -1
func (lm *LeaderboardManager) GetPlayerRank(ctx context.Context, playerID string) (int64, error) {
	rank, err := lm.redis.ZRevRank(ctx, leaderboardKey, playerID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return -1, nil
		}
		return -1, err
	}
	return rank + 1, nil // Redis 排名从 0 开始
}

// GetTopPlayers 获取总榜前 N 名
func (lm *LeaderboardManager) GetTopPlayers(ctx context.Context, n int) ([]LeaderboardEntry, error) {
	return lm.GetLeaderboard(ctx, "total", 0, n)
}
