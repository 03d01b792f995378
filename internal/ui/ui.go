package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/word-wheel/internal/protocol"
	"github.com/palemoky/word-wheel/internal/sound"
	"github.com/palemoky/word-wheel/internal/transport"
)

// 游戏阶段
type GamePhase int

const (
	PhaseConnecting GamePhase = iota
	PhaseLobby
	PhaseRoomList
	PhaseWaiting
	PhasePlaying
	PhaseGameOver
	PhaseLeaderboard
	PhaseStats
)

// ServerMessage 服务器消息（用于 tea.Msg）
type ServerMessage struct {
	Msg *protocol.Message
}

// ConnectedMsg 连接成功消息
type ConnectedMsg struct{}

// ConnectionErrorMsg 连接错误消息
type ConnectionErrorMsg struct {
	Err error
}

// ClearErrorMsg 清除错误消息
type ClearErrorMsg struct{}

// tickMsg 本地时钟，驱动倒计时渲染
type tickMsg time.Time

// Model 联网模式的 model
type Model struct {
	client *transport.Client
	phase  GamePhase
	error  string

	// 玩家信息
	playerID   string
	playerName string

	// 网络状态
	latency     int64 // 延迟（毫秒）
	onlineCount int

	// 房间与游戏状态
	roomCode string
	state    protocol.GameStateDTO
	deadline time.Time // 本地倒计时锚点，由快照的 TimeRemaining 推算

	// 最近一次答题结果
	lastResult *protocol.AnswerResultPayload

	// 结算信息
	gameOver *protocol.GameOverPayload

	// 房间列表
	availableRooms  []protocol.RoomListItem
	selectedRoomIdx int

	// 排行榜与战绩
	leaderboard []protocol.LeaderboardEntry
	myStats     *protocol.StatsResultPayload

	// 聊天记录（房间内）
	chatLog []string

	// Audio
	soundManager *sound.SoundManager

	// UI 组件
	input  textinput.Model
	width  int
	height int
}

// NewModel 创建联网模式 model
func NewModel(serverURL string) *Model {
	ti := textinput.New()
	ti.Placeholder = "输入选项 (1-4) 或房间号"
	ti.CharLimit = 64
	ti.Width = 30
	ti.Focus()

	return &Model{
		client:       transport.NewClient(serverURL),
		phase:        PhaseConnecting,
		input:        ti,
		soundManager: sound.NewSoundManager(),
	}
}

func (m *Model) Init() tea.Cmd {
	// Initialize sound
	go func() {
		_ = m.soundManager.Init()
	}()

	return tea.Batch(
		m.connectToServer(),
		textinput.Blink,
		tickCmd(),
	)
}

// connectToServer 连接服务器
func (m *Model) connectToServer() tea.Cmd {
	return func() tea.Msg {
		if err := m.client.Connect(); err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ConnectedMsg{}
	}
}

// listenForMessages 监听服务器消息
func (m *Model) listenForMessages() tea.Cmd {
	return func() tea.Msg {
		msg, err := m.client.Receive()
		if err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ServerMessage{Msg: msg}
	}
}

// tickCmd 每秒触发一次，刷新倒计时显示
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
