package protocol

// --- 客户端请求 Payloads ---

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// JoinRoomPayload 加入房间请求，RoomCode 为空表示创建新房间
type JoinRoomPayload struct {
	Nickname string `json:"nickname"`
	RoomCode string `json:"room_code,omitempty"`
}

// UpdateConfigPayload 修改房间配置请求，nil 字段表示不修改
type UpdateConfigPayload struct {
	MaxPlayers   *int    `json:"max_players,omitempty"`
	RoundTime    *int    `json:"round_time,omitempty"`    // 每回合秒数
	MaxRounds    *int    `json:"max_rounds,omitempty"`
	WordsPerTurn *int    `json:"words_per_turn,omitempty"`
	InputType    *string `json:"input_type,omitempty"` // keyboard / choice
}

// AnswerPayload 提交答案请求
type AnswerPayload struct {
	Text string `json:"text"`
}

// GetLeaderboardPayload 获取排行榜请求
type GetLeaderboardPayload struct {
	Type   string `json:"type"`   // total/daily/weekly
	Offset int    `json:"offset"` // 偏移量
	Limit  int    `json:"limit"`  // 数量
}

// --- 服务端响应 Payloads ---

// ConnectedPayload 连接成功响应
type ConnectedPayload struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"` // 客户端发送的时间戳
	ServerTimestamp int64 `json:"server_timestamp"` // 服务器时间戳（毫秒）
}

// OnlineCountPayload 在线人数更新
type OnlineCountPayload struct {
	Count int `json:"count"`
}

// RoomCreatedPayload 房间创建成功响应
type RoomCreatedPayload struct {
	RoomCode string     `json:"room_code"`
	Player   PlayerInfo `json:"player"`
}

// RoomJoinedPayload 加入房间成功响应
type RoomJoinedPayload struct {
	RoomCode string       `json:"room_code"`
	Player   PlayerInfo   `json:"player"`
	Players  []PlayerInfo `json:"players"` // 房间内所有玩家（按加入顺序）
}

// PlayerJoinedPayload 其他玩家加入通知
type PlayerJoinedPayload struct {
	Player PlayerInfo `json:"player"`
}

// PlayerLeftPayload 玩家离开通知
type PlayerLeftPayload struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	NewHostID  string `json:"new_host_id,omitempty"` // 房主离开时移交给谁
}

// GameStatePayload 全量游戏状态快照
type GameStatePayload struct {
	State GameStateDTO `json:"state"`
}

// WheelSpunPayload 转盘结果通知
type WheelSpunPayload struct {
	PlayerID string       `json:"player_id"`
	Category CategoryInfo `json:"category"`
}

// AnswerResultPayload 答题判定通知
type AnswerResultPayload struct {
	PlayerID    string `json:"player_id"`
	Term        string `json:"term"`        // 被考察的单词
	Answer      string `json:"answer"`      // 玩家提交的答案
	Translation string `json:"translation"` // 正确译文（判定后公开）
	Correct     bool   `json:"correct"`
	Points      int    `json:"points"` // 本次得分
}

// GameOverPayload 游戏结束通知
type GameOverPayload struct {
	WinnerID   string       `json:"winner_id"`
	WinnerName string       `json:"winner_name"`
	Ranking    []PlayerRank `json:"ranking"` // 按得分从高到低
}

// PlayerRank 结算排名条目
type PlayerRank struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Score      int    `json:"score"`
	Correct    int    `json:"correct"`
	Total      int    `json:"total"`
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// StatsResultPayload 个人统计结果
type StatsResultPayload struct {
	PlayerID      string  `json:"player_id"`
	PlayerName    string  `json:"player_name"`
	TotalGames    int     `json:"total_games"`
	Wins          int     `json:"wins"`
	WinRate       float64 `json:"win_rate"`
	WordsCorrect  int     `json:"words_correct"`
	WordsTotal    int     `json:"words_total"`
	Accuracy      float64 `json:"accuracy"`
	BestScore     int     `json:"best_score"`
	TotalScore    int     `json:"total_score"`
	Rank          int     `json:"rank"`
	CurrentStreak int     `json:"current_streak"`
	MaxWinStreak  int     `json:"max_win_streak"`
}

// LeaderboardResultPayload 排行榜结果
type LeaderboardResultPayload struct {
	Type    string             `json:"type"` // total/daily/weekly
	Entries []LeaderboardEntry `json:"entries"`
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank       int     `json:"rank"`
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name"`
	Score      int     `json:"score"`
	Wins       int     `json:"wins"`
	Accuracy   float64 `json:"accuracy"`
}

// RoomListResultPayload 房间列表结果
type RoomListResultPayload struct {
	Rooms []RoomListItem `json:"rooms"`
}

// RoomListItem 房间列表项
type RoomListItem struct {
	RoomCode    string `json:"room_code"`
	PlayerCount int    `json:"player_count"`
	MaxPlayers  int    `json:"max_players"`
}

// ChatPayload 聊天消息（房间内）
type ChatPayload struct {
	SenderID   string `json:"sender_id,omitempty"`   // 服务端填充
	SenderName string `json:"sender_name,omitempty"` // 服务端填充
	Content    string `json:"content"`
	Time       int64  `json:"time,omitempty"` // 服务端填充
}

// --- 通用数据结构 ---

// PlayerInfo 玩家信息
type PlayerInfo struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	IsHost   bool   `json:"is_host"`
}

// CategoryInfo 单词分类
type CategoryInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// WordPrompt 当前考察的单词（不含译文，译文只在判定后公开）
type WordPrompt struct {
	Term     string `json:"term"`
	Language string `json:"language"`
}

// WordCount 答题计数
type WordCount struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// GameStateDTO 游戏状态快照，每次状态变更后全量广播
type GameStateDTO struct {
	RoomCode      string               `json:"room_code"`
	Status        string               `json:"status"` // waiting/playing/finished
	Players       []PlayerInfo         `json:"players"`
	HostID        string               `json:"host_id"`
	CurrentRound  int                  `json:"current_round"`
	MaxRounds     int                  `json:"max_rounds"`
	CurrentTurn   string               `json:"current_turn,omitempty"` // 当前回合玩家 ID
	Category      *CategoryInfo        `json:"category,omitempty"`
	CurrentWord   *WordPrompt          `json:"current_word,omitempty"`
	WordsLeft     int                  `json:"words_left"` // 本回合队列中剩余（不含当前）单词数
	TimeRemaining float64              `json:"time_remaining"` // 秒
	RoundTime     int                  `json:"round_time"`     // 每回合秒数
	Scores        map[string]int       `json:"scores"`
	WordsAnswered map[string]WordCount `json:"words_answered"`
}
