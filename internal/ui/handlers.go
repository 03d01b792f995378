package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/word-wheel/internal/protocol"
	"github.com/palemoky/word-wheel/internal/sound"
)

// handleServerMessage 处理服务器消息
// 按消息类型分发到具体的处理函数
func (m *Model) handleServerMessage(msg *protocol.Message) tea.Cmd {
	switch msg.Type {
	// 连接相关
	case protocol.MsgConnected:
		return m.handleMsgConnected(msg)
	case protocol.MsgPong:
		return m.handleMsgPong(msg)
	case protocol.MsgError:
		return m.handleMsgError(msg)
	case protocol.MsgOnlineCount:
		return m.handleMsgOnlineCount(msg)

	// 房间相关
	case protocol.MsgRoomCreated:
		return m.handleMsgRoomCreated(msg)
	case protocol.MsgRoomJoined:
		return m.handleMsgRoomJoined(msg)
	case protocol.MsgPlayerJoined:
		return m.handleMsgPlayerJoined(msg)
	case protocol.MsgPlayerLeft:
		return m.handleMsgPlayerLeft(msg)
	case protocol.MsgRoomListResult:
		return m.handleMsgRoomListResult(msg)

	// 游戏相关
	case protocol.MsgGameState:
		return m.handleMsgGameState(msg)
	case protocol.MsgWheelSpun:
		return m.handleMsgWheelSpun(msg)
	case protocol.MsgAnswerResult:
		return m.handleMsgAnswerResult(msg)
	case protocol.MsgGameOver:
		return m.handleMsgGameOver(msg)

	// 统计相关
	case protocol.MsgStatsResult:
		return m.handleMsgStatsResult(msg)
	case protocol.MsgLeaderboardResult:
		return m.handleMsgLeaderboardResult(msg)

	// Chat
	case protocol.MsgChat:
		return m.handleMsgChat(msg)
	}

	return nil
}

// --- 连接相关消息处理 ---

func (m *Model) handleMsgConnected(msg *protocol.Message) tea.Cmd {
	payload, err := protocol.ParsePayload[protocol.ConnectedPayload](msg)
	if err != nil {
		return nil
	}

	m.playerID = payload.PlayerID
	m.playerName = payload.PlayerName

	// 连接成功后请求在线人数
	_ = m.client.SendMessage(protocol.MustNewMessage(protocol.MsgGetOnlineCount, nil))
	return nil
}

func (m *Model) handleMsgPong(msg *protocol.Message) tea.Cmd {
	payload, err := protocol.ParsePayload[protocol.PongPayload](msg)
	if err != nil {
		return nil
	}
	m.latency = time.Now().UnixMilli() - payload.ClientTimestamp
	return nil
}

func (m *Model) handleMsgError(msg *protocol.Message) tea.Cmd {
	payload, err := protocol.ParsePayload[protocol.ErrorPayload](msg)
	if err != nil {
		return nil
	}

	m.error = fmt.Sprintf("⚠️ %s", payload.Message)

	// 3秒后自动消失
	return tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
		return ClearErrorMsg{}
	})
}

func (m *Model) handleMsgOnlineCount(msg *protocol.Message) tea.Cmd {
	payload, err := protocol.ParsePayload[protocol.OnlineCountPayload](msg)
	if err != nil {
		return nil
	}
	m.onlineCount = payload.Count
	return nil
}

// --- 房间相关消息处理 ---

func (m *Model) handleMsgRoomCreated(msg *protocol.Message) tea.Cmd {
	payload, err := protocol.ParsePayload[protocol.RoomCreatedPayload](msg)
	if err != nil {
		return nil
	}

	m.roomCode = payload.RoomCode
	m.phase = PhaseWaiting
	m.input.Reset()
	m.input.Placeholder = "s=开始游戏, /=聊天"
	return nil
}

func (m *Model) handleMsgRoomJoined(msg *protocol.Message) tea.Cmd {
	payload, err := protocol.ParsePayload[protocol.RoomJoinedPayload](msg)
	if err != nil {
		return nil
	}

	m.roomCode = payload.RoomCode
	m.phase = PhaseWaiting
	m.input.Reset()
	m.input.Placeholder = "等待房主开始, /=聊天"
	return nil
}

func (m *Model) handleMsgPlayerJoined(msg *protocol.Message) tea.Cmd {
	payload, err := protocol.ParsePayload[protocol.PlayerJoinedPayload](msg)
	if err != nil {
		return nil
	}
	m.appendChat(fmt.Sprintf("👋 %s 加入了房间", payload.Player.Nickname))
	return nil
}

func (m *Model) handleMsgPlayerLeft(msg *protocol.Message) tea.Cmd {
	payload, err := protocol.ParsePayload[protocol.PlayerLeftPayload](msg)
	if err != nil {
		return nil
	}
	m.appendChat(fmt.Sprintf("🚪 %s 离开了房间", payload.PlayerName))
	if payload.NewHostID == m.playerID {
		m.appendChat("👑 你成为了新房主")
		if m.phase == PhaseWaiting {
			m.input.Placeholder = "s=开始游戏, /=聊天"
		}
	}
	return nil
}

func (m *Model) handleMsgRoomListResult(msg *protocol.Message) tea.Cmd {
	payload, err := protocol.ParsePayload[protocol.RoomListResultPayload](msg)
	if err != nil {
		return nil
	}
	m.availableRooms = payload.Rooms
	if m.selectedRoomIdx >= len(m.availableRooms) {
		m.selectedRoomIdx = 0
	}
	return nil
}

// --- 游戏相关消息处理 ---

func (m *Model) handleMsgGameState(msg *protocol.Message) tea.Cmd {
	payload, err := protocol.ParsePayload[protocol.GameStatePayload](msg)
	if err != nil {
		return nil
	}

	prevTurn := m.state.CurrentTurn
	m.state = payload.State
	m.roomCode = payload.State.RoomCode

	// 用快照里的剩余时间重置本地倒计时锚点
	if payload.State.CurrentWord != nil {
		m.deadline = time.Now().Add(time.Duration(payload.State.TimeRemaining * float64(time.Second)))
	} else {
		m.deadline = time.Time{}
	}

	switch payload.State.Status {
	case "playing":
		m.phase = PhasePlaying
		if m.state.CurrentTurn != prevTurn {
			m.lastResult = nil
		}
		m.updatePlayingPlaceholder()
	case "waiting":
		m.phase = PhaseWaiting
	}
	return nil
}

func (m *Model) handleMsgWheelSpun(msg *protocol.Message) tea.Cmd {
	payload, err := protocol.ParsePayload[protocol.WheelSpunPayload](msg)
	if err != nil {
		return nil
	}
	m.soundManager.Play(sound.CueSpin)
	m.appendChat(fmt.Sprintf("🎡 转盘停在了「%s」", payload.Category.Name))
	return nil
}

func (m *Model) handleMsgAnswerResult(msg *protocol.Message) tea.Cmd {
	payload, err := protocol.ParsePayload[protocol.AnswerResultPayload](msg)
	if err != nil {
		return nil
	}

	m.lastResult = payload
	if payload.Correct {
		m.soundManager.Play(sound.CueCorrect)
	} else {
		m.soundManager.Play(sound.CueWrong)
	}
	return nil
}

func (m *Model) handleMsgGameOver(msg *protocol.Message) tea.Cmd {
	payload, err := protocol.ParsePayload[protocol.GameOverPayload](msg)
	if err != nil {
		return nil
	}

	m.gameOver = payload
	m.phase = PhaseGameOver
	m.deadline = time.Time{}
	m.input.Reset()
	m.input.Placeholder = "按回车返回大厅"

	if payload.WinnerID == m.playerID {
		m.soundManager.Play(sound.CueWin)
	} else {
		m.soundManager.Play(sound.CueGameOver)
	}
	return nil
}

// --- 统计相关消息处理 ---

func (m *Model) handleMsgStatsResult(msg *protocol.Message) tea.Cmd {
	payload, err := protocol.ParsePayload[protocol.StatsResultPayload](msg)
	if err != nil {
		return nil
	}
	m.myStats = payload
	return nil
}

func (m *Model) handleMsgLeaderboardResult(msg *protocol.Message) tea.Cmd {
	payload, err := protocol.ParsePayload[protocol.LeaderboardResultPayload](msg)
	if err != nil {
		return nil
	}
	m.leaderboard = payload.Entries
	return nil
}

// --- Chat ---

func (m *Model) handleMsgChat(msg *protocol.Message) tea.Cmd {
	payload, err := protocol.ParsePayload[protocol.ChatPayload](msg)
	if err != nil {
		return nil
	}
	m.appendChat(fmt.Sprintf("💬 %s: %s", payload.SenderName, payload.Content))
	return nil
}

// appendChat 追加一条房间消息，只保留最近几条
func (m *Model) appendChat(line string) {
	m.chatLog = append(m.chatLog, line)
	if len(m.chatLog) > maxChatLines {
		m.chatLog = m.chatLog[len(m.chatLog)-maxChatLines:]
	}
}

// updatePlayingPlaceholder 根据回合进度更新输入框提示
func (m *Model) updatePlayingPlaceholder() {
	if m.state.CurrentTurn != m.playerID {
		m.input.Placeholder = fmt.Sprintf("等待 %s 答题, /=聊天", m.playerNickname(m.state.CurrentTurn))
		return
	}
	switch {
	case m.state.Category == nil:
		m.input.Placeholder = "按回车转动转盘"
	case m.state.CurrentWord == nil:
		m.input.Placeholder = "按回车开始答题"
	default:
		m.input.Placeholder = "输入译文后回车"
	}
}
