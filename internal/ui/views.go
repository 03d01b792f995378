package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// --- 视图渲染 ---

func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string

	switch m.phase {
	case PhaseConnecting:
		content = m.connectingView()
	case PhaseLobby:
		content = m.lobbyView()
	case PhaseRoomList:
		content = m.roomListView()
	case PhaseWaiting:
		content = m.waitingView()
	case PhasePlaying:
		content = m.playingView()
	case PhaseGameOver:
		content = m.gameOverView()
	case PhaseLeaderboard:
		content = m.leaderboardView()
	case PhaseStats:
		content = m.statsView()
	}

	return docStyle.Render(content)
}

func (m *Model) connectingView() string {
	if m.error != "" {
		return lipgloss.NewStyle().
			Width(m.width).
			Align(lipgloss.Center).
			Render(errorStyle.Render(m.error))
	}
	return lipgloss.NewStyle().
		Width(m.width).
		Align(lipgloss.Center).
		Render("🔌 正在连接服务器...")
}

func (m *Model) lobbyView() string {
	var sb strings.Builder

	title := titleStyle("🎡 单词转盘")
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, title))
	sb.WriteString("\n\n")

	if m.playerName != "" {
		welcome := fmt.Sprintf("欢迎, %s!", m.playerName)
		if m.onlineCount > 0 {
			welcome += fmt.Sprintf("  🌐 在线 %d 人", m.onlineCount)
		}
		sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, welcome))
		sb.WriteString("\n\n")
	}

	menu := boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		"请选择:",
		"",
		"  1. 创建房间",
		"  2. 加入房间",
		"  3. 排行榜",
		"  4. 我的战绩",
	))
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, menu))
	sb.WriteString("\n\n")

	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.input.View()))
	m.appendError(&sb)

	return sb.String()
}

func (m *Model) roomListView() string {
	var sb strings.Builder

	title := titleStyle("🏠 房间列表")
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, title))
	sb.WriteString("\n\n")

	if len(m.availableRooms) == 0 {
		sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, "暂无等待中的房间"))
	} else {
		var list strings.Builder
		for i, r := range m.availableRooms {
			line := fmt.Sprintf("房间 %s  (%d/%d)", r.RoomCode, r.PlayerCount, r.MaxPlayers)
			if i == m.selectedRoomIdx {
				line = selectedStyle.Render("▶ " + line)
			} else {
				line = "  " + line
			}
			list.WriteString(line + "\n")
		}
		sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, boxStyle.Render(list.String())))
	}

	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.input.View()))
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, dimStyle.Render("↑/↓ 选择, 回车加入, ESC 返回")))
	m.appendError(&sb)

	return sb.String()
}

func (m *Model) waitingView() string {
	var sb strings.Builder

	title := titleStyle(fmt.Sprintf("🏠 房间 %s", m.roomCode))
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, title))
	sb.WriteString("\n\n")

	var players strings.Builder
	players.WriteString("玩家:\n\n")
	for _, p := range m.state.Players {
		icon := "  "
		if p.IsHost {
			icon = HostIcon + " "
		}
		name := p.Nickname
		if p.ID == m.playerID {
			name += " (你)"
		}
		players.WriteString(fmt.Sprintf("  %s%s\n", icon, name))
	}
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, boxStyle.Render(players.String())))
	sb.WriteString("\n\n")

	hint := "等待房主开始游戏..."
	if m.state.HostID == m.playerID {
		hint = "你是房主，输入 s 开始游戏"
	}
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, hint))
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.input.View()))
	m.appendChatTail(&sb)
	m.appendError(&sb)

	return sb.String()
}

func (m *Model) playingView() string {
	var sb strings.Builder

	header := fmt.Sprintf("🎡 第 %d/%d 轮  |  房间 %s", m.state.CurrentRound, m.state.MaxRounds, m.roomCode)
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, titleStyle(header)))
	sb.WriteString("\n\n")

	// 回合归属
	turnLine := fmt.Sprintf("%s %s 的回合", TurnIcon, m.playerNickname(m.state.CurrentTurn))
	if m.state.CurrentTurn == m.playerID {
		turnLine = selectedStyle.Render(TurnIcon + " 轮到你了!")
	}
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, turnLine))
	sb.WriteString("\n\n")

	// 分类与单词
	if m.state.Category != nil {
		cat := categoryStyle.Render(fmt.Sprintf("分类: %s", m.state.Category.Name))
		sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, cat))
		sb.WriteString("\n\n")
	}
	if m.state.CurrentWord != nil {
		word := wordStyle.Render(m.state.CurrentWord.Term)
		sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, word))
		sb.WriteString("\n")
		remaining := fmt.Sprintf("剩余单词: %d", m.state.WordsLeft)
		sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, dimStyle.Render(remaining)))
		sb.WriteString("\n\n")

		// 倒计时
		if !m.deadline.IsZero() {
			sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.renderCountdown()))
			sb.WriteString("\n\n")
		}
	}

	// 最近一次判定
	if m.lastResult != nil {
		var result string
		if m.lastResult.Correct {
			result = correctStyle.Render(fmt.Sprintf("%s %s = %s  (+%d)", CorrectIcon, m.lastResult.Term, m.lastResult.Translation, m.lastResult.Points))
		} else {
			result = wrongStyle.Render(fmt.Sprintf("%s %s ≠ %s，正确答案: %s", WrongIcon, m.lastResult.Term, m.lastResult.Answer, m.lastResult.Translation))
		}
		sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, result))
		sb.WriteString("\n\n")
	}

	// 计分板
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.renderScoreboard()))
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.input.View()))
	m.appendChatTail(&sb)
	m.appendError(&sb)

	return sb.String()
}

// renderScoreboard 渲染计分板
func (m *Model) renderScoreboard() string {
	var sb strings.Builder
	sb.WriteString("📋 计分板\n")
	sb.WriteString(strings.Repeat("─", 36) + "\n")
	for _, p := range m.state.Players {
		marker := "  "
		if p.ID == m.state.CurrentTurn {
			marker = TurnIcon + " "
		}
		wc := m.state.WordsAnswered[p.ID]
		sb.WriteString(fmt.Sprintf("%s%-14s %4d 分  (%d/%d)\n",
			marker, truncateName(p.Nickname, 12), m.state.Scores[p.ID], wc.Correct, wc.Total))
	}
	return boxStyle.Render(sb.String())
}

func (m *Model) gameOverView() string {
	var sb strings.Builder

	title := titleStyle("🏁 游戏结束")
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, title))
	sb.WriteString("\n\n")

	if m.gameOver != nil {
		winner := fmt.Sprintf("🏆 获胜者: %s", m.gameOver.WinnerName)
		if m.gameOver.WinnerID == m.playerID {
			winner = correctStyle.Render("🏆 你赢了!")
		}
		sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, winner))
		sb.WriteString("\n\n")

		var ranking strings.Builder
		ranking.WriteString(fmt.Sprintf("%-4s %-14s %6s %8s\n", "排名", "玩家", "得分", "正确率"))
		ranking.WriteString(strings.Repeat("─", 40) + "\n")
		for i, r := range m.gameOver.Ranking {
			acc := "-"
			if r.Total > 0 {
				acc = fmt.Sprintf("%d/%d", r.Correct, r.Total)
			}
			ranking.WriteString(fmt.Sprintf("%-4s %-14s %6d %8s\n",
				rankIcon(i+1), truncateName(r.PlayerName, 12), r.Score, acc))
		}
		sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, boxStyle.Render(ranking.String())))
		sb.WriteString("\n\n")
	}

	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, "按回车返回大厅"))
	m.appendError(&sb)

	return sb.String()
}

func (m *Model) leaderboardView() string {
	var sb strings.Builder

	title := titleStyle("🏆 排行榜")
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, title))
	sb.WriteString("\n\n")

	if len(m.leaderboard) > 0 {
		var board strings.Builder
		board.WriteString(fmt.Sprintf("%-4s %-14s %8s %6s %8s\n", "排名", "玩家", "积分", "胜场", "正确率"))
		board.WriteString(strings.Repeat("─", 48) + "\n")
		for _, e := range m.leaderboard {
			board.WriteString(fmt.Sprintf("%-4s %-14s %8d %6d %7.1f%%\n",
				rankIcon(e.Rank), truncateName(e.PlayerName, 12), e.Score, e.Wins, e.Accuracy))
		}
		sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, boxStyle.Render(board.String())))
	} else {
		sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, "正在加载排行榜..."))
	}

	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, dimStyle.Render("按 ESC 返回大厅")))

	return sb.String()
}

func (m *Model) statsView() string {
	var sb strings.Builder

	title := titleStyle("📊 我的战绩")
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, title))
	sb.WriteString("\n\n")

	if s := m.myStats; s != nil {
		var stats strings.Builder
		rankStr := "未上榜"
		if s.Rank > 0 {
			rankStr = fmt.Sprintf("#%d", s.Rank)
		}
		stats.WriteString(fmt.Sprintf("排名: %s  |  总积分: %d  |  最高分: %d\n", rankStr, s.TotalScore, s.BestScore))
		stats.WriteString(strings.Repeat("─", 44) + "\n")
		stats.WriteString(fmt.Sprintf("总场次: %d  胜: %d  胜率: %.1f%%\n", s.TotalGames, s.Wins, s.WinRate))
		stats.WriteString(fmt.Sprintf("答题: %d/%d  正确率: %.1f%%\n", s.WordsCorrect, s.WordsTotal, s.Accuracy))

		streakStr := ""
		if s.CurrentStreak > 0 {
			streakStr = fmt.Sprintf("🔥 %d 连胜!", s.CurrentStreak)
		} else if s.CurrentStreak < 0 {
			streakStr = fmt.Sprintf("💔 %d 连败", -s.CurrentStreak)
		}
		if s.MaxWinStreak > 0 {
			streakStr += fmt.Sprintf("  最高连胜: %d", s.MaxWinStreak)
		}
		if streakStr != "" {
			stats.WriteString(streakStr + "\n")
		}
		sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, boxStyle.Render(stats.String())))
	} else {
		sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, "正在加载战绩..."))
	}

	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, dimStyle.Render("按 ESC 返回大厅")))

	return sb.String()
}

// appendError 把当前错误追加到视图末尾
func (m *Model) appendError(sb *strings.Builder) {
	if m.error != "" {
		sb.WriteString("\n\n")
		sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, errorStyle.Render(m.error)))
	}
}

// appendChatTail 把最近的聊天消息追加到视图末尾
func (m *Model) appendChatTail(sb *strings.Builder) {
	if len(m.chatLog) == 0 {
		return
	}
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, dimStyle.Render(strings.Join(m.chatLog, "\n"))))
}
