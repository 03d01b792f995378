package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/word-wheel/internal/game/session"
	"github.com/palemoky/word-wheel/internal/protocol"
)

func TestHandler_JoinRoom_CreatesRoomWhenCodeEmpty(t *testing.T) {
	s := newTestServer(t)
	client := newTestClient(s, "")

	s.handler.Handle(client, protocol.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		Nickname: "好学的水獭",
	}))

	msg := lastMessageOfType(t, client, protocol.MsgRoomCreated)
	require.NotNil(t, msg)
	payload, err := protocol.ParsePayload[protocol.RoomCreatedPayload](msg)
	require.NoError(t, err)

	assert.Len(t, payload.RoomCode, roomCodeLength)
	assert.Equal(t, "好学的水獭", payload.Player.Nickname)
	assert.True(t, payload.Player.IsHost)
	assert.Equal(t, payload.RoomCode, client.GetRoom())
}

func TestHandler_JoinRoom_JoinsExistingRoom(t *testing.T) {
	s := newTestServer(t)
	room, clients := createRoomWithPlayers(t, s, "甲")
	drainMessages(t, clients[0])

	joiner := newTestClient(s, "乙")
	s.handler.Handle(joiner, protocol.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		Nickname: "乙",
		RoomCode: room.Code,
	}))

	msg := lastMessageOfType(t, joiner, protocol.MsgRoomJoined)
	require.NotNil(t, msg)
	payload, err := protocol.ParsePayload[protocol.RoomJoinedPayload](msg)
	require.NoError(t, err)
	assert.Len(t, payload.Players, 2)
	assert.False(t, payload.Player.IsHost)

	// The host is notified about the newcomer
	assert.NotNil(t, lastMessageOfType(t, clients[0], protocol.MsgPlayerJoined))
}

func TestHandler_JoinRoom_UnknownCode(t *testing.T) {
	s := newTestServer(t)
	client := newTestClient(s, "甲")

	s.handler.Handle(client, protocol.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		RoomCode: "999999",
	}))

	msg := lastMessageOfType(t, client, protocol.MsgError)
	require.NotNil(t, msg)
	payload, err := protocol.ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeRoomNotFound, payload.Code)
}

func TestHandler_StartGame_OnlyHost(t *testing.T) {
	s := newTestServer(t)
	room, clients := createRoomWithPlayers(t, s, "甲", "乙")

	s.handler.Handle(clients[1], protocol.MustNewMessage(protocol.MsgStartGame, nil))

	msg := lastMessageOfType(t, clients[1], protocol.MsgError)
	require.NotNil(t, msg)
	payload, err := protocol.ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeNotHost, payload.Code)
	assert.Equal(t, session.StatusWaiting, room.Game().Status())

	s.handler.Handle(clients[0], protocol.MustNewMessage(protocol.MsgStartGame, nil))
	assert.Equal(t, session.StatusPlaying, room.Game().Status())
}

func TestHandler_StartGame_InsufficientPlayers(t *testing.T) {
	s := newTestServer(t)
	_, clients := createRoomWithPlayers(t, s, "甲")
	drainMessages(t, clients[0])

	s.handler.Handle(clients[0], protocol.MustNewMessage(protocol.MsgStartGame, nil))

	msg := lastMessageOfType(t, clients[0], protocol.MsgError)
	require.NotNil(t, msg)
	payload, err := protocol.ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeInsufficientPlayers, payload.Code)
}

func TestHandler_FullTurnFlow(t *testing.T) {
	s := newTestServer(t)
	seedTestVocabulary(t, s)

	room, clients := createRoomWithPlayers(t, s, "甲", "乙")
	s.handler.Handle(clients[0], protocol.MustNewMessage(protocol.MsgStartGame, nil))
	require.Equal(t, session.StatusPlaying, room.Game().Status())
	drainMessages(t, clients[0])
	drainMessages(t, clients[1])

	// Spin picks the only category
	s.handler.Handle(clients[0], protocol.MustNewMessage(protocol.MsgSpinWheel, nil))
	spun := lastMessageOfType(t, clients[1], protocol.MsgWheelSpun)
	require.NotNil(t, spun)
	spunPayload, err := protocol.ParsePayload[protocol.WheelSpunPayload](spun)
	require.NoError(t, err)
	assert.Equal(t, "animals", spunPayload.Category.ID)

	// Start the turn: word queue is fetched and the first word presented
	s.handler.Handle(clients[0], protocol.MustNewMessage(protocol.MsgStartTurn, nil))
	snap := room.Game().Snapshot()
	require.NotNil(t, snap.CurrentWord)

	// Answer the presented word correctly
	var answer string
	switch snap.CurrentWord.Term {
	case "dog":
		answer = "狗"
	case "cat":
		answer = "猫"
	case "bird":
		answer = "鸟"
	}
	s.handler.Handle(clients[0], protocol.MustNewMessage(protocol.MsgAnswer, protocol.AnswerPayload{Text: answer}))

	result := lastMessageOfType(t, clients[1], protocol.MsgAnswerResult)
	require.NotNil(t, result)
	resultPayload, err := protocol.ParsePayload[protocol.AnswerResultPayload](result)
	require.NoError(t, err)
	assert.True(t, resultPayload.Correct)
	assert.Equal(t, s.config.Game.BasePoints, resultPayload.Points)
	assert.Equal(t, s.config.Game.BasePoints, room.Game().Snapshot().Scores[clients[0].ID])
}

func TestHandler_StartTurn_ResendDoesNotRefillQueue(t *testing.T) {
	s := newTestServer(t)
	seedTestVocabulary(t, s)

	room, clients := createRoomWithPlayers(t, s, "甲", "乙")
	s.handler.Handle(clients[0], protocol.MustNewMessage(protocol.MsgStartGame, nil))
	s.handler.Handle(clients[0], protocol.MustNewMessage(protocol.MsgSpinWheel, nil))
	s.handler.Handle(clients[0], protocol.MustNewMessage(protocol.MsgStartTurn, nil))

	snap := room.Game().Snapshot()
	require.NotNil(t, snap.CurrentWord)
	require.Equal(t, 2, snap.WordsLeft)

	var answer string
	switch snap.CurrentWord.Term {
	case "dog":
		answer = "狗"
	case "cat":
		answer = "猫"
	case "bird":
		answer = "鸟"
	}
	s.handler.Handle(clients[0], protocol.MustNewMessage(protocol.MsgAnswer, protocol.AnswerPayload{Text: answer}))
	mid := room.Game().Snapshot()
	require.Equal(t, 1, mid.WordsLeft)
	require.NotNil(t, mid.CurrentWord)

	// Resending start_turn mid-turn must not hand the holder a fresh batch
	s.handler.Handle(clients[0], protocol.MustNewMessage(protocol.MsgStartTurn, nil))

	snap = room.Game().Snapshot()
	assert.Equal(t, 1, snap.WordsLeft)
	require.NotNil(t, snap.CurrentWord)
	assert.Equal(t, mid.CurrentWord.Term, snap.CurrentWord.Term)
}

func TestHandler_SpinWheel_OutOfTurnIgnored(t *testing.T) {
	s := newTestServer(t)
	seedTestVocabulary(t, s)

	room, clients := createRoomWithPlayers(t, s, "甲", "乙")
	s.handler.Handle(clients[0], protocol.MustNewMessage(protocol.MsgStartGame, nil))

	s.handler.Handle(clients[1], protocol.MustNewMessage(protocol.MsgSpinWheel, nil))

	snap := room.Game().Snapshot()
	assert.Nil(t, snap.Category)
}

func TestHandler_UpdateConfig(t *testing.T) {
	s := newTestServer(t)
	room, clients := createRoomWithPlayers(t, s, "甲", "乙")

	rounds := 7
	roundTime := 15
	s.handler.Handle(clients[0], protocol.MustNewMessage(protocol.MsgUpdateConfig, protocol.UpdateConfigPayload{
		MaxRounds: &rounds,
		RoundTime: &roundTime,
	}))

	cfg := room.Game().Config()
	assert.Equal(t, 7, cfg.MaxRounds)
	assert.Equal(t, 15, int(cfg.RoundTimeLimit.Seconds()))

	// Non-host updates are rejected
	other := 3
	s.handler.Handle(clients[1], protocol.MustNewMessage(protocol.MsgUpdateConfig, protocol.UpdateConfigPayload{
		MaxRounds: &other,
	}))
	assert.Equal(t, 7, room.Game().Config().MaxRounds)
}

func TestHandler_Ping(t *testing.T) {
	s := newTestServer(t)
	client := newTestClient(s, "甲")

	s.handler.Handle(client, protocol.MustNewMessage(protocol.MsgPing, protocol.PingPayload{Timestamp: 42}))

	msg := lastMessageOfType(t, client, protocol.MsgPong)
	require.NotNil(t, msg)
	payload, err := protocol.ParsePayload[protocol.PongPayload](msg)
	require.NoError(t, err)
	assert.EqualValues(t, 42, payload.ClientTimestamp)
	assert.NotZero(t, payload.ServerTimestamp)
}

func TestHandler_GetRoomListAndOnlineCount(t *testing.T) {
	s := newTestServer(t)
	_, _ = createRoomWithPlayers(t, s, "甲", "乙")
	client := newTestClient(s, "丙")

	s.handler.Handle(client, protocol.MustNewMessage(protocol.MsgGetRoomList, nil))
	msg := lastMessageOfType(t, client, protocol.MsgRoomListResult)
	require.NotNil(t, msg)
	listPayload, err := protocol.ParsePayload[protocol.RoomListResultPayload](msg)
	require.NoError(t, err)
	assert.Len(t, listPayload.Rooms, 1)

	s.handler.Handle(client, protocol.MustNewMessage(protocol.MsgGetOnlineCount, nil))
	msg = lastMessageOfType(t, client, protocol.MsgOnlineCount)
	require.NotNil(t, msg)
	countPayload, err := protocol.ParsePayload[protocol.OnlineCountPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, 3, countPayload.Count)
}

func TestHandler_GetStats_NewPlayer(t *testing.T) {
	s := newTestServer(t)
	client := newTestClient(s, "甲")

	s.handler.Handle(client, protocol.MustNewMessage(protocol.MsgGetStats, nil))

	msg := lastMessageOfType(t, client, protocol.MsgStatsResult)
	require.NotNil(t, msg)
	payload, err := protocol.ParsePayload[protocol.StatsResultPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, client.ID, payload.PlayerID)
	assert.Zero(t, payload.TotalGames)
}

func TestHandler_GetLeaderboard(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.leaderboard.RecordGameResult(t.Context(), "p1", "甲", 50, 5, 5, true))

	client := newTestClient(s, "乙")
	s.handler.Handle(client, protocol.MustNewMessage(protocol.MsgGetLeaderboard, protocol.GetLeaderboardPayload{}))

	msg := lastMessageOfType(t, client, protocol.MsgLeaderboardResult)
	require.NotNil(t, msg)
	payload, err := protocol.ParsePayload[protocol.LeaderboardResultPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, "total", payload.Type)
	require.Len(t, payload.Entries, 1)
	assert.Equal(t, "p1", payload.Entries[0].PlayerID)
}

func TestHandler_Chat_RoomScoped(t *testing.T) {
	s := newTestServer(t)
	_, clients := createRoomWithPlayers(t, s, "甲", "乙")
	drainMessages(t, clients[1])

	s.handler.Handle(clients[0], protocol.MustNewMessage(protocol.MsgChat, protocol.ChatPayload{
		Content: "大家好",
	}))

	msg := lastMessageOfType(t, clients[1], protocol.MsgChat)
	require.NotNil(t, msg)
	payload, err := protocol.ParsePayload[protocol.ChatPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, clients[0].ID, payload.SenderID)
	assert.Equal(t, "大家好", payload.Content)
	assert.NotZero(t, payload.Time)
}

func TestHandler_Chat_RequiresRoom(t *testing.T) {
	s := newTestServer(t)
	client := newTestClient(s, "甲")

	s.handler.Handle(client, protocol.MustNewMessage(protocol.MsgChat, protocol.ChatPayload{
		Content: "有人吗",
	}))

	msg := lastMessageOfType(t, client, protocol.MsgError)
	require.NotNil(t, msg)
	payload, err := protocol.ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeNotInRoom, payload.Code)
}

func TestHandler_UnknownMessageType(t *testing.T) {
	s := newTestServer(t)
	client := newTestClient(s, "甲")

	s.handler.Handle(client, &protocol.Message{Type: "no_such_type"})

	msg := lastMessageOfType(t, client, protocol.MsgError)
	require.NotNil(t, msg)
	payload, err := protocol.ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeInvalidMsg, payload.Code)
}
