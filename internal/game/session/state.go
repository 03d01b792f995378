package session

// Status 游戏状态，只允许 waiting → playing → finished 单向推进
type Status string

const (
	StatusWaiting  Status = "waiting"  // 等待玩家加入
	StatusPlaying  Status = "playing"  // 游戏进行中
	StatusFinished Status = "finished" // 已结束（终态）
)

// Player 会话中的玩家，加入顺序决定回合轮转顺序
type Player struct {
	ID       string
	Nickname string
	IsHost   bool
}

// WordCount 单个玩家的答题计数，只增不减
type WordCount struct {
	Correct int
	Total   int
}
