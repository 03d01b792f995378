package server

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"time"

	"github.com/palemoky/word-wheel/internal/apperrors"
	"github.com/palemoky/word-wheel/internal/game/session"
	"github.com/palemoky/word-wheel/internal/game/words"
	"github.com/palemoky/word-wheel/internal/protocol"
)

// 词库查询超时
const providerTimeout = 3 * time.Second

// Handler 消息处理器
type Handler struct {
	server *Server
}

// NewHandler 创建消息处理器
func NewHandler(s *Server) *Handler {
	return &Handler{server: s}
}

// Handle 按消息类型分发处理
func (h *Handler) Handle(client *Client, msg *protocol.Message) {
	switch msg.Type {
	case protocol.MsgPing:
		h.handlePing(client, msg)
	case protocol.MsgJoinRoom:
		h.handleJoinRoom(client, msg)
	case protocol.MsgLeaveRoom:
		h.server.roomManager.LeaveRoom(client)
	case protocol.MsgStartGame:
		h.handleStartGame(client)
	case protocol.MsgUpdateConfig:
		h.handleUpdateConfig(client, msg)
	case protocol.MsgSpinWheel:
		h.handleSpinWheel(client)
	case protocol.MsgStartTurn:
		h.handleStartTurn(client)
	case protocol.MsgAnswer:
		h.handleAnswer(client, msg)
	case protocol.MsgGetRoomList:
		h.handleGetRoomList(client)
	case protocol.MsgGetOnlineCount:
		h.handleGetOnlineCount(client)
	case protocol.MsgGetStats:
		h.handleGetStats(client)
	case protocol.MsgGetLeaderboard:
		h.handleGetLeaderboard(client, msg)
	case protocol.MsgChat:
		h.handleChat(client, msg)
	default:
		log.Printf("未知消息类型: %s (来自 %s)", msg.Type, client.Name)
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
	}
}

// sendGameError 把游戏错误翻译成错误消息，只发给动作发起者
func sendGameError(client *Client, err error) {
	var ge *apperrors.GameError
	if errors.As(err, &ge) {
		client.SendMessage(protocol.NewErrorMessageWithText(ge.Code, ge.Message))
		return
	}
	client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeUnknown))
}

// roomOf 返回客户端所在房间，不在房间时返回 nil 并提示
func (h *Handler) roomOf(client *Client) *Room {
	code := client.GetRoom()
	if code == "" {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeNotInRoom))
		return nil
	}

	room := h.server.roomManager.GetRoom(code)
	if room == nil {
		client.SetRoom("")
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeRoomNotFound))
		return nil
	}
	return room
}

func (h *Handler) handlePing(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.PingPayload](msg)
	if err != nil {
		return
	}
	client.SendMessage(protocol.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: payload.Timestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
}

// handleJoinRoom 房间号为空时创建新房间，否则加入已有房间
func (h *Handler) handleJoinRoom(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.JoinRoomPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if payload.Nickname != "" {
		client.Name = payload.Nickname
	}

	if client.GetRoom() != "" {
		// 先退出旧房间
		h.server.roomManager.LeaveRoom(client)
	}

	if payload.RoomCode == "" {
		if h.server.IsMaintenanceMode() {
			client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeServerMaintenance))
			return
		}

		room, err := h.server.roomManager.CreateRoom(client, session.KindTimeAttack)
		if err != nil {
			sendGameError(client, err)
			return
		}

		client.SendMessage(protocol.MustNewMessage(protocol.MsgRoomCreated, protocol.RoomCreatedPayload{
			RoomCode: room.Code,
			Player:   protocol.PlayerInfo{ID: client.ID, Nickname: client.Name, IsHost: true},
		}))
		room.BroadcastState()
		return
	}

	room, err := h.server.roomManager.JoinRoom(client, payload.RoomCode)
	if err != nil {
		sendGameError(client, err)
		return
	}

	players := make([]protocol.PlayerInfo, 0, room.PlayerCount())
	var self protocol.PlayerInfo
	for _, p := range room.Game().Players() {
		info := protocol.PlayerInfo{ID: p.ID, Nickname: p.Nickname, IsHost: p.IsHost}
		if p.ID == client.ID {
			self = info
		}
		players = append(players, info)
	}

	client.SendMessage(protocol.MustNewMessage(protocol.MsgRoomJoined, protocol.RoomJoinedPayload{
		RoomCode: room.Code,
		Player:   self,
		Players:  players,
	}))

	room.BroadcastExcept(protocol.MustNewMessage(protocol.MsgPlayerJoined, protocol.PlayerJoinedPayload{
		Player: self,
	}), client.ID)

	room.BroadcastState()
}

// handleStartGame 房主开始游戏
func (h *Handler) handleStartGame(client *Client) {
	room := h.roomOf(client)
	if room == nil {
		return
	}

	if room.Game().HostID() != client.ID {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeNotHost))
		return
	}

	if err := room.Game().Start(); err != nil {
		sendGameError(client, err)
		return
	}

	log.Printf("🎮 房间 %s 游戏开始", room.Code)
}

// handleUpdateConfig 房主在等待阶段调整房间配置
func (h *Handler) handleUpdateConfig(client *Client, msg *protocol.Message) {
	room := h.roomOf(client)
	if room == nil {
		return
	}

	if room.Game().HostID() != client.ID {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeNotHost))
		return
	}

	payload, err := protocol.ParsePayload[protocol.UpdateConfigPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	patch := session.ConfigPatch{
		MaxPlayers:   payload.MaxPlayers,
		MaxRounds:    payload.MaxRounds,
		WordsPerTurn: payload.WordsPerTurn,
		InputType:    payload.InputType,
	}
	if payload.RoundTime != nil {
		d := time.Duration(*payload.RoundTime) * time.Second
		patch.RoundTimeLimit = &d
	}

	room.Game().UpdateConfig(patch)
}

// handleSpinWheel 服务端随机选一个分类交给会话
func (h *Handler) handleSpinWheel(client *Client) {
	room := h.roomOf(client)
	if room == nil {
		return
	}

	// 非当前回合玩家的转盘请求直接忽略，不必查询词库
	if room.Game().CurrentTurn() != client.ID {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), providerTimeout)
	defer cancel()

	categories, err := h.server.words.GetAllCategories(ctx)
	if err != nil {
		log.Printf("⚠️ 获取分类失败: %v", err)
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeUnknown))
		return
	}
	if len(categories) == 0 {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeNoWords))
		return
	}

	category := categories[rand.Intn(len(categories))]
	room.Game().Dispatch(session.Action{
		Type:     session.ActionSpinWheel,
		PlayerID: client.ID,
		Category: &category,
	})
}

// handleStartTurn 按已选分类取一批单词，填入队列后开始回合
func (h *Handler) handleStartTurn(client *Client) {
	room := h.roomOf(client)
	if room == nil {
		return
	}

	game := room.Game()
	if game.CurrentTurn() != client.ID {
		return
	}
	if game.WordInPlay() {
		// 回合已在进行，忽略重复的开始请求
		return
	}

	category, ok := game.CurrentCategory()
	if !ok {
		// 还没转盘，忽略
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), providerTimeout)
	defer cancel()

	batch, err := h.server.words.GetRandomWords(ctx,
		category.ID,
		h.server.config.Vocabulary.DefaultLanguage,
		game.Config().WordsPerTurn,
	)
	if err != nil {
		log.Printf("⚠️ 获取单词失败: %v", err)
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeUnknown))
		return
	}
	if len(batch) == 0 {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeNoWords))
		return
	}

	game.SetWordQueue(batch)
	game.Dispatch(session.Action{
		Type:     session.ActionStartTurn,
		PlayerID: client.ID,
	})
}

// handleAnswer 提交答案
func (h *Handler) handleAnswer(client *Client, msg *protocol.Message) {
	room := h.roomOf(client)
	if room == nil {
		return
	}

	payload, err := protocol.ParsePayload[protocol.AnswerPayload](msg)
	if err != nil {
		return
	}

	room.Game().Dispatch(session.Action{
		Type:     session.ActionSubmitAnswer,
		PlayerID: client.ID,
		Answer:   payload.Text,
	})
}

func (h *Handler) handleGetRoomList(client *Client) {
	client.SendMessage(protocol.MustNewMessage(protocol.MsgRoomListResult, protocol.RoomListResultPayload{
		Rooms: h.server.roomManager.GetRoomList(),
	}))
}

func (h *Handler) handleGetOnlineCount(client *Client) {
	client.SendMessage(protocol.MustNewMessage(protocol.MsgOnlineCount, protocol.OnlineCountPayload{
		Count: h.server.GetOnlineCount(),
	}))
}

// handleGetStats 查询自己的累计战绩
func (h *Handler) handleGetStats(client *Client) {
	ctx, cancel := context.WithTimeout(context.Background(), providerTimeout)
	defer cancel()

	stats, err := h.server.leaderboard.GetPlayerStats(ctx, client.ID)
	if err != nil {
		log.Printf("⚠️ 查询玩家 %s 统计失败: %v", client.Name, err)
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeUnknown))
		return
	}

	result := protocol.StatsResultPayload{
		PlayerID:   client.ID,
		PlayerName: client.Name,
	}
	if stats != nil {
		rank, _ := h.server.leaderboard.GetPlayerRank(ctx, client.ID)
		result = protocol.StatsResultPayload{
			PlayerID:      client.ID,
			PlayerName:    stats.PlayerName,
			TotalGames:    stats.TotalGames,
			Wins:          stats.Wins,
			WinRate:       stats.WinRate(),
			WordsCorrect:  stats.WordsCorrect,
			WordsTotal:    stats.WordsTotal,
			Accuracy:      stats.Accuracy(),
			BestScore:     stats.BestScore,
			TotalScore:    stats.TotalScore,
			Rank:          int(rank),
			CurrentStreak: stats.CurrentStreak,
			MaxWinStreak:  stats.MaxWinStreak,
		}
	}

	client.SendMessage(protocol.MustNewMessage(protocol.MsgStatsResult, result))
}

// handleGetLeaderboard 查询排行榜
func (h *Handler) handleGetLeaderboard(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.GetLeaderboardPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if payload.Type == "" {
		payload.Type = "total"
	}
	if payload.Limit <= 0 || payload.Limit > 100 {
		payload.Limit = 10
	}

	ctx, cancel := context.WithTimeout(context.Background(), providerTimeout)
	defer cancel()

	entries, err := h.server.leaderboard.GetLeaderboard(ctx, payload.Type, payload.Offset, payload.Limit)
	if err != nil {
		log.Printf("⚠️ 查询排行榜失败: %v", err)
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeUnknown))
		return
	}

	result := protocol.LeaderboardResultPayload{Type: payload.Type}
	for _, e := range entries {
		result.Entries = append(result.Entries, protocol.LeaderboardEntry{
			Rank:       e.Rank,
			PlayerID:   e.PlayerID,
			PlayerName: e.PlayerName,
			Score:      e.Score,
			Wins:       e.Wins,
			Accuracy:   e.Accuracy,
		})
	}

	client.SendMessage(protocol.MustNewMessage(protocol.MsgLeaderboardResult, result))
}

// handleChat 房间内聊天
func (h *Handler) handleChat(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.ChatPayload](msg)
	if err != nil {
		return
	}

	// 聊天限流检查
	allowed, reason := h.server.chatLimiter.AllowChat(client.ID)
	if !allowed {
		client.SendMessage(protocol.NewErrorMessageWithText(protocol.ErrCodeRateLimit, reason))
		return
	}

	room := h.roomOf(client)
	if room == nil {
		return
	}

	// 填充发送者信息
	payload.SenderID = client.ID
	payload.SenderName = client.Name
	payload.Time = time.Now().Unix()

	room.Broadcast(protocol.MustNewMessage(protocol.MsgChat, *payload))
}

// 确保 Room 满足会话的事件接收接口
var _ session.Sink = (*Room)(nil)

// 确保 RedisStore 满足词库接口
var _ words.Provider = (*words.RedisStore)(nil)
