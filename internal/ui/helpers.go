package ui

import (
	"fmt"
	"strings"
	"time"
)

// 聊天记录只保留最近几条，避免占满屏幕
const maxChatLines = 5

// countdownBarWidth 倒计时进度条的字符宽度
const countdownBarWidth = 20

// playerNickname 按 ID 查玩家昵称
func (m *Model) playerNickname(playerID string) string {
	for _, p := range m.state.Players {
		if p.ID == playerID {
			return p.Nickname
		}
	}
	return playerID
}

// renderCountdown 渲染倒计时进度条
func (m *Model) renderCountdown() string {
	remaining := time.Until(m.deadline)
	if remaining < 0 {
		remaining = 0
	}
	bar := countdownBar(remaining.Seconds(), float64(m.state.RoundTime), countdownBarWidth)
	line := fmt.Sprintf("⏱ %s %2.0fs", bar, remaining.Seconds())
	if remaining <= 10*time.Second {
		return urgentStyle.Render(line)
	}
	return line
}

// countdownBar 按剩余时间比例渲染进度条
func countdownBar(remaining, total float64, width int) string {
	if total <= 0 {
		return strings.Repeat("░", width)
	}
	ratio := remaining / total
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// rankIcon 排名图标，前三名用奖牌
func rankIcon(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return fmt.Sprintf("%2d.", rank)
	}
}

// truncateName 截断玩家名称
func truncateName(name string, maxLen int) string {
	runes := []rune(name)
	if len(runes) > maxLen {
		return string(runes[:maxLen-1]) + "…"
	}
	return name
}
