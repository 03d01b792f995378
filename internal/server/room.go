package server

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/palemoky/word-wheel/internal/apperrors"
	"github.com/palemoky/word-wheel/internal/game/session"
	"github.com/palemoky/word-wheel/internal/protocol"
)

const (
	// 房间号长度
	roomCodeLength = 6
	// 房间号字符集
	roomCodeChars = "0123456789"
)

// Room 游戏房间，持有会话并把会话事件广播给房间内所有客户端。
// 锁的层级固定为 Room.mu → Session 内部锁 → Room.clientsMu，不允许反向。
type Room struct {
	Code      string
	CreatedAt time.Time

	game   *session.Session
	server *Server

	mu sync.Mutex // 串行化房间级操作（加入、离开）

	clientsMu sync.RWMutex
	clients   map[string]*Client
}

// Game 返回房间的游戏会话
func (r *Room) Game() *session.Session {
	return r.game
}

// PlayerCount 返回房间内玩家数
func (r *Room) PlayerCount() int {
	return r.game.PlayerCount()
}

// Emit 实现 session.Sink，把会话事件转成协议消息广播。
// 会话持锁调用，这里只做非阻塞的消息投递，不得回调会话方法。
func (r *Room) Emit(ev session.Event) {
	switch ev.Type {
	case session.EventWheelSpun:
		if ev.Category != nil {
			r.Broadcast(protocol.MustNewMessage(protocol.MsgWheelSpun, protocol.WheelSpunPayload{
				PlayerID: ev.PlayerID,
				Category: protocol.CategoryInfo{ID: ev.Category.ID, Name: ev.Category.Name},
			}))
		}

	case session.EventAnswerJudged:
		r.Broadcast(protocol.MustNewMessage(protocol.MsgAnswerResult, protocol.AnswerResultPayload{
			PlayerID:    ev.PlayerID,
			Term:        ev.Term,
			Answer:      ev.Answer,
			Translation: ev.Translation,
			Correct:     ev.Correct,
			Points:      ev.Points,
		}))

	case session.EventGameOver:
		r.handleGameOver(ev)
	}

	// 每个事件都跟随一次全量状态广播
	r.Broadcast(protocol.MustNewMessage(protocol.MsgGameState, protocol.GameStatePayload{
		State: ev.Snapshot,
	}))
}

// handleGameOver 广播结算并异步记录战绩
func (r *Room) handleGameOver(ev session.Event) {
	var winnerID, winnerName string
	if len(ev.Ranking) > 0 {
		winnerID = ev.Ranking[0].PlayerID
		winnerName = ev.Ranking[0].PlayerName
	}

	r.Broadcast(protocol.MustNewMessage(protocol.MsgGameOver, protocol.GameOverPayload{
		WinnerID:   winnerID,
		WinnerName: winnerName,
		Ranking:    ev.Ranking,
	}))

	log.Printf("🏆 房间 %s 游戏结束，获胜者 %s", r.Code, winnerName)

	if r.server == nil || r.server.leaderboard == nil {
		return
	}

	ranking := ev.Ranking
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, p := range ranking {
			won := p.PlayerID == winnerID
			if err := r.server.leaderboard.RecordGameResult(ctx, p.PlayerID, p.PlayerName, p.Score, p.Correct, p.Total, won); err != nil {
				log.Printf("⚠️ 记录玩家 %s 战绩失败: %v", p.PlayerName, err)
			}
		}
	}()
}

// Broadcast 广播消息给房间内所有客户端
func (r *Room) Broadcast(msg *protocol.Message) {
	r.clientsMu.RLock()
	defer r.clientsMu.RUnlock()

	for _, client := range r.clients {
		client.SendMessage(msg)
	}
}

// BroadcastExcept 广播消息给除指定玩家外的所有客户端
func (r *Room) BroadcastExcept(msg *protocol.Message, exceptID string) {
	r.clientsMu.RLock()
	defer r.clientsMu.RUnlock()

	for id, client := range r.clients {
		if id != exceptID {
			client.SendMessage(msg)
		}
	}
}

// BroadcastState 广播当前全量游戏状态
func (r *Room) BroadcastState() {
	r.Broadcast(protocol.MustNewMessage(protocol.MsgGameState, protocol.GameStatePayload{
		State: r.game.Snapshot(),
	}))
}

// AddClient 把客户端加入房间
func (r *Room) AddClient(c *Client) (*session.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	player, err := r.game.AddPlayer(c.ID, c.Name)
	if err != nil {
		return nil, err
	}

	r.clientsMu.Lock()
	r.clients[c.ID] = c
	r.clientsMu.Unlock()
	c.SetRoom(r.Code)

	return player, nil
}

// removeClient 把客户端移出房间，返回房间是否已空。
// 游戏进行中剩余不足两人时直接结束；回合持有者离开时把回合交给下一位。
func (r *Room) removeClient(c *Client) (empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clientsMu.Lock()
	delete(r.clients, c.ID)
	r.clientsMu.Unlock()

	newHostID := r.game.RemovePlayer(c.ID)

	r.Broadcast(protocol.MustNewMessage(protocol.MsgPlayerLeft, protocol.PlayerLeftPayload{
		PlayerID:   c.ID,
		PlayerName: c.Name,
		NewHostID:  newHostID,
	}))

	if r.game.PlayerCount() == 0 {
		return true
	}

	if r.game.Status() == session.StatusPlaying {
		if r.game.PlayerCount() < r.game.Config().MinPlayers {
			r.game.End()
		} else if r.game.CurrentTurn() == "" {
			r.game.StartRound()
		}
	}

	r.BroadcastState()
	return false
}

// kickAll 清空房间内的客户端并解除其房间归属
func (r *Room) kickAll() {
	r.clientsMu.Lock()
	defer r.clientsMu.Unlock()

	for _, client := range r.clients {
		client.SetRoom("")
	}
	r.clients = make(map[string]*Client)
}

// RoomManager 房间管理器
type RoomManager struct {
	server *Server
	rooms  map[string]*Room
	mu     sync.RWMutex
}

// NewRoomManager 创建房间管理器
func NewRoomManager(s *Server) *RoomManager {
	rm := &RoomManager{
		server: s,
		rooms:  make(map[string]*Room),
	}

	// 启动房间清理协程
	go rm.cleanupLoop()

	return rm
}

// CreateRoom 创建房间并把创建者加入其中
func (rm *RoomManager) CreateRoom(client *Client, kind session.Kind) (*Room, error) {
	rm.mu.Lock()

	code := rm.generateRoomCode()
	room := &Room{
		Code:      code,
		CreatedAt: time.Now(),
		server:    rm.server,
		clients:   make(map[string]*Client),
	}
	room.game = session.New(kind, code, rm.server.sessionConfig(), room)
	rm.rooms[code] = room

	rm.mu.Unlock()

	if _, err := room.AddClient(client); err != nil {
		rm.deleteRoom(code)
		return nil, err
	}

	log.Printf("🏠 房间 %s 已创建，玩家 %s", code, client.Name)
	return room, nil
}

// JoinRoom 加入房间
func (rm *RoomManager) JoinRoom(client *Client, code string) (*Room, error) {
	rm.mu.RLock()
	room, exists := rm.rooms[code]
	rm.mu.RUnlock()

	if !exists {
		return nil, apperrors.ErrRoomNotFound
	}

	if _, err := room.AddClient(client); err != nil {
		return nil, err
	}

	log.Printf("👤 玩家 %s 加入房间 %s", client.Name, code)
	return room, nil
}

// LeaveRoom 离开当前房间，房间空了就解散
func (rm *RoomManager) LeaveRoom(client *Client) {
	code := client.GetRoom()
	if code == "" {
		return
	}
	client.SetRoom("")

	rm.mu.RLock()
	room := rm.rooms[code]
	rm.mu.RUnlock()
	if room == nil {
		return
	}

	log.Printf("👋 玩家 %s 离开房间 %s", client.Name, code)

	if room.removeClient(client) {
		rm.deleteRoom(code)
	}
}

// GetRoom 获取房间
func (rm *RoomManager) GetRoom(code string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.rooms[code]
}

// GetRoomList 获取等待中的房间列表
func (rm *RoomManager) GetRoomList() []protocol.RoomListItem {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	list := make([]protocol.RoomListItem, 0, len(rm.rooms))
	for code, room := range rm.rooms {
		if room.game.Status() != session.StatusWaiting {
			continue
		}
		list = append(list, protocol.RoomListItem{
			RoomCode:    code,
			PlayerCount: room.PlayerCount(),
			MaxPlayers:  room.game.Config().MaxPlayers,
		})
	}
	return list
}

// GetActiveGamesCount 获取进行中的游戏数量
func (rm *RoomManager) GetActiveGamesCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	count := 0
	for _, room := range rm.rooms {
		if room.game.Status() == session.StatusPlaying {
			count++
		}
	}
	return count
}

// deleteRoom 解散房间
func (rm *RoomManager) deleteRoom(code string) {
	rm.mu.Lock()
	room, exists := rm.rooms[code]
	if exists {
		delete(rm.rooms, code)
	}
	rm.mu.Unlock()

	if exists {
		room.game.End()
		log.Printf("🗑️ 房间 %s 已解散", code)
	}
}

// cleanupLoop 定期清理空房间和等待超时的房间
func (rm *RoomManager) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rm.cleanup()
	}
}

func (rm *RoomManager) cleanup() {
	timeout := rm.server.config.Game.RoomTimeoutDuration()
	now := time.Now()

	rm.mu.RLock()
	var stale []*Room
	for _, room := range rm.rooms {
		if room.PlayerCount() == 0 ||
			(room.game.Status() == session.StatusWaiting && now.Sub(room.CreatedAt) > timeout) {
			stale = append(stale, room)
		}
	}
	rm.mu.RUnlock()

	for _, room := range stale {
		if room.PlayerCount() > 0 {
			room.Broadcast(protocol.NewErrorMessageWithText(
				protocol.ErrCodeRoomNotFound, "房间等待超时，已解散"))
			room.kickAll()
			log.Printf("⏰ 房间 %s 等待超时", room.Code)
		}
		rm.deleteRoom(room.Code)
	}
}

// generateRoomCode 生成唯一房间号，必须在持有 rm.mu 时调用
func (rm *RoomManager) generateRoomCode() string {
	for {
		code := make([]byte, roomCodeLength)
		for i := range code {
			code[i] = roomCodeChars[rand.Intn(len(roomCodeChars))]
		}
		if _, exists := rm.rooms[string(code)]; !exists {
			return string(code)
		}
	}
}
