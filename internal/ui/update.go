package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/word-wheel/internal/protocol"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		handled, returnCmd := m.handleKeyPress(msg)
		if handled {
			return m, returnCmd
		}

	case ConnectedMsg:
		m.phase = PhaseLobby
		m.playerID = m.client.PlayerID
		m.playerName = m.client.PlayerName
		// 开始监听消息
		cmds = append(cmds, m.listenForMessages())

	case ConnectionErrorMsg:
		m.error = fmt.Sprintf("无法连接到服务器: %v\n\n按 ESC 退出", msg.Err)
		m.phase = PhaseConnecting

	case ClearErrorMsg:
		m.error = ""

	case ServerMessage:
		cmd = m.handleServerMessage(msg.Msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		// 继续监听
		if m.client.IsConnected() {
			cmds = append(cmds, m.listenForMessages())
		}

	case tickMsg:
		// 重新调度时钟，倒计时随 View 刷新
		cmds = append(cmds, tickCmd())
	}

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKeyPress 处理按键消息，返回是否已处理和命令
func (m *Model) handleKeyPress(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m.handleEscKey()
	case tea.KeyUp:
		if m.phase == PhaseRoomList && m.selectedRoomIdx > 0 {
			m.selectedRoomIdx--
		}
		return true, nil
	case tea.KeyDown:
		if m.phase == PhaseRoomList && m.selectedRoomIdx < len(m.availableRooms)-1 {
			m.selectedRoomIdx++
		}
		return true, nil
	case tea.KeyEnter:
		cmd := m.handleEnter()
		return true, cmd
	}
	return false, nil
}

// handleEscKey 处理 ESC 键
func (m *Model) handleEscKey() (bool, tea.Cmd) {
	// 从列表页面返回大厅
	if m.phase == PhaseRoomList || m.phase == PhaseLeaderboard || m.phase == PhaseStats {
		m.backToLobby()
		return true, nil
	}
	// 等待房间里 ESC 退出房间
	if m.phase == PhaseWaiting {
		_ = m.client.LeaveRoom()
		m.backToLobby()
		return true, nil
	}
	// 对局进行中 ESC 不退出，避免误操作
	if m.phase == PhasePlaying {
		m.error = "游戏进行中，无法退出！"
		return true, tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
			return ClearErrorMsg{}
		})
	}
	// 其他情况（大厅、游戏结束等）可以退出
	m.client.Close()
	m.soundManager.Close()
	return true, tea.Quit
}

// handleEnter 处理回车键
func (m *Model) handleEnter() tea.Cmd {
	input := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	m.error = ""

	// "/" 开头的输入在房间内发送聊天
	if strings.HasPrefix(input, "/") && m.roomCode != "" {
		content := strings.TrimSpace(strings.TrimPrefix(input, "/"))
		if content != "" {
			_ = m.client.Chat(content)
		}
		return nil
	}

	switch m.phase {
	case PhaseLobby:
		// 大厅界面：1=创建房间, 2=加入房间, 3=排行榜, 4=我的战绩
		switch input {
		case "", "1":
			_ = m.client.CreateRoom(m.playerName)
		case "2":
			m.phase = PhaseRoomList
			m.selectedRoomIdx = 0
			m.input.Placeholder = "或直接输入房间号..."
			_ = m.client.GetRoomList()
		case "3":
			m.phase = PhaseLeaderboard
			_ = m.client.GetLeaderboard("total", 0, 10)
		case "4":
			m.phase = PhaseStats
			_ = m.client.GetStats()
		default:
			// 可能是房间号
			_ = m.client.JoinRoom(m.playerName, input)
		}

	case PhaseRoomList:
		if input == "" {
			// 没有输入，加入选中的房间
			if len(m.availableRooms) > 0 && m.selectedRoomIdx < len(m.availableRooms) {
				_ = m.client.JoinRoom(m.playerName, m.availableRooms[m.selectedRoomIdx].RoomCode)
			}
		} else {
			_ = m.client.JoinRoom(m.playerName, input)
		}

	case PhaseWaiting:
		// 房主输入 s 开始游戏
		if strings.EqualFold(input, "s") || strings.EqualFold(input, "start") {
			_ = m.client.StartGame()
		}

	case PhasePlaying:
		return m.handlePlayingEnter(input)

	case PhaseGameOver:
		// 游戏结束：回车返回大厅
		_ = m.client.LeaveRoom()
		m.backToLobby()
	}

	return nil
}

// handlePlayingEnter 对局中的回车：按回合进度决定是转盘、开始答题还是提交答案
func (m *Model) handlePlayingEnter(input string) tea.Cmd {
	if m.state.CurrentTurn != m.playerID {
		return nil
	}

	switch {
	case m.state.Category == nil:
		_ = m.client.SpinWheel()
	case m.state.CurrentWord == nil:
		_ = m.client.StartTurn()
	default:
		if input != "" {
			_ = m.client.Answer(input)
		}
	}
	return nil
}

// backToLobby 返回大厅并重置房间状态
func (m *Model) backToLobby() {
	m.phase = PhaseLobby
	m.error = ""
	m.roomCode = ""
	m.state = protocol.GameStateDTO{}
	m.lastResult = nil
	m.gameOver = nil
	m.chatLog = nil
	m.deadline = time.Time{}
	m.input.Reset()
	m.input.Placeholder = "输入选项 (1-4) 或房间号"
	m.input.Focus()
}
