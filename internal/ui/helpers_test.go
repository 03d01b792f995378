package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/palemoky/word-wheel/internal/protocol"
)

func TestTruncateName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short name unchanged", "Tom", 10, "Tom"},
		{"exact length unchanged", "abcde", 5, "abcde"},
		{"long name truncated", "abcdefghij", 5, "abcd…"},
		{"cjk counted by runes", "好学的水獭宝宝", 5, "好学的水…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, truncateName(tt.input, tt.maxLen))
		})
	}
}

func TestRankIcon(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "🥇", rankIcon(1))
	assert.Equal(t, "🥈", rankIcon(2))
	assert.Equal(t, "🥉", rankIcon(3))
	assert.Equal(t, " 4.", rankIcon(4))
	assert.Equal(t, "10.", rankIcon(10))
}

func TestCountdownBar(t *testing.T) {
	t.Parallel()

	full := countdownBar(30, 30, 10)
	assert.Equal(t, strings.Repeat("█", 10), full)

	empty := countdownBar(0, 30, 10)
	assert.Equal(t, strings.Repeat("░", 10), empty)

	half := countdownBar(15, 30, 10)
	assert.Equal(t, strings.Repeat("█", 5)+strings.Repeat("░", 5), half)

	// Out-of-range inputs are clamped
	assert.Equal(t, strings.Repeat("█", 10), countdownBar(60, 30, 10))
	assert.Equal(t, strings.Repeat("░", 10), countdownBar(-5, 30, 10))
	assert.Equal(t, strings.Repeat("░", 10), countdownBar(10, 0, 10))
}

func TestPlayerNickname(t *testing.T) {
	t.Parallel()

	m := &Model{
		state: protocol.GameStateDTO{
			Players: []protocol.PlayerInfo{
				{ID: "p1", Nickname: "好学的水獭"},
				{ID: "p2", Nickname: "博学的企鹅"},
			},
		},
	}

	assert.Equal(t, "好学的水獭", m.playerNickname("p1"))
	assert.Equal(t, "博学的企鹅", m.playerNickname("p2"))
	// Unknown players fall back to the raw ID
	assert.Equal(t, "p3", m.playerNickname("p3"))
}

func TestAppendChat_KeepsTail(t *testing.T) {
	t.Parallel()

	m := &Model{}
	for i := 0; i < maxChatLines+3; i++ {
		m.appendChat(string(rune('a' + i)))
	}

	assert.Len(t, m.chatLog, maxChatLines)
	assert.Equal(t, "d", m.chatLog[0])
}
