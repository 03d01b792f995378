package server

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/word-wheel/internal/config"
	"github.com/palemoky/word-wheel/internal/game/words"
	"github.com/palemoky/word-wheel/internal/protocol"
	"github.com/palemoky/word-wheel/internal/storage"
)

// newTestServer builds a server around miniredis, without listening on a socket
func newTestServer(t *testing.T) *Server {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := config.Default()
	cfg.Redis.Addr = mr.Addr()

	s := &Server{
		config:         cfg,
		redis:          rdb,
		words:          words.NewRedisStore(rdb),
		leaderboard:    storage.NewLeaderboardManager(rdb),
		clients:        make(map[string]*Client),
		rateLimiter:    NewRateLimiter(100, 1000, 0),
		originChecker:  NewOriginChecker([]string{"*"}),
		messageLimiter: NewMessageRateLimiter(100),
		chatLimiter:    NewChatRateLimiter(100, 1000, 0),
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
	}
	s.roomManager = NewRoomManager(s)
	s.handler = NewHandler(s)
	return s
}

// newTestClient builds a connection-less client whose outbound messages
// land in the send channel for inspection
func newTestClient(s *Server, name string) *Client {
	c := &Client{
		ID:     uuid.New().String(),
		Name:   name,
		server: s,
		send:   make(chan []byte, 64),
	}
	s.registerClient(c)
	return c
}

// drainMessages decodes everything currently buffered for the client
func drainMessages(t *testing.T, c *Client) []*protocol.Message {
	t.Helper()

	var msgs []*protocol.Message
	for {
		select {
		case data := <-c.send:
			msg, err := protocol.Decode(data)
			require.NoError(t, err)
			msgs = append(msgs, msg)
		default:
			return msgs
		}
	}
}

// lastMessageOfType returns the most recent buffered message of the given type
func lastMessageOfType(t *testing.T, c *Client, msgType protocol.MessageType) *protocol.Message {
	t.Helper()

	var found *protocol.Message
	for _, msg := range drainMessages(t, c) {
		if msg.Type == msgType {
			found = msg
		}
	}
	return found
}

// seedTestVocabulary loads a tiny word set so spin/start-turn handlers work
func seedTestVocabulary(t *testing.T, s *Server) {
	t.Helper()

	store, ok := s.words.(*words.RedisStore)
	require.True(t, ok)

	mrWords := []words.Word{
		{ID: "w1", Term: "dog", Translation: "狗", Language: "en", CategoryID: "animals"},
		{ID: "w2", Term: "cat", Translation: "猫", Language: "en", CategoryID: "animals"},
		{ID: "w3", Term: "bird", Translation: "鸟", Language: "en", CategoryID: "animals"},
	}
	seedWordsInto(t, store, words.Category{ID: "animals", Name: "动物"}, mrWords)
}

func seedWordsInto(t *testing.T, store *words.RedisStore, category words.Category, ws []words.Word) {
	t.Helper()
	require.NoError(t, store.Import(t.Context(), []words.Category{category}, ws))
}
