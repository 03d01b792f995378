package session

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/palemoky/word-wheel/internal/apperrors"
	"github.com/palemoky/word-wheel/internal/game/words"
	"github.com/palemoky/word-wheel/internal/protocol"
)

// EventType 会话事件类型
type EventType string

const (
	EventStateChanged EventType = "state_changed" // 状态变更，仅携带全量快照
	EventWheelSpun    EventType = "wheel_spun"    // 转盘结果
	EventAnswerJudged EventType = "answer_judged" // 答题判定结果
	EventGameOver     EventType = "game_over"     // 游戏结束
)

// Event 会话向外部发出的事件，Snapshot 始终携带事件发生后的全量状态
type Event struct {
	Type     EventType
	Snapshot protocol.GameStateDTO

	// EventWheelSpun / EventAnswerJudged 附加字段
	PlayerID    string
	Category    *words.Category
	Term        string
	Answer      string
	Translation string
	Correct     bool
	Points      int

	// EventGameOver 附加字段，按得分从高到低
	Ranking []protocol.PlayerRank
}

// Sink 接收会话事件，构造时注入。会话持锁调用 Emit，
// 实现方不得回调会话方法，也不得阻塞。
type Sink interface {
	Emit(ev Event)
}

// Config 会话配置
type Config struct {
	MaxPlayers     int
	MinPlayers     int
	RoundTimeLimit time.Duration // 每回合答题时长
	MaxRounds      int
	WordsPerTurn   int
	BasePoints     int    // 答对一词的得分
	InputType      string // keyboard / choice
}

// ConfigPatch 配置增量更新，nil 字段表示不修改
type ConfigPatch struct {
	MaxPlayers     *int
	RoundTimeLimit *time.Duration
	MaxRounds      *int
	WordsPerTurn   *int
	InputType      *string
}

// Session 一个房间的游戏会话，独占持有并修改本房间的全部游戏状态。
// 所有修改都在互斥锁内完成，外部只通过方法调用驱动。
type Session struct {
	mu sync.Mutex

	kind  Kind
	rules ruleSet
	cfg   Config
	sink  Sink

	roomCode string
	status   Status

	players       []*Player // 按加入顺序，决定回合轮转
	scores        map[string]int
	wordsAnswered map[string]*WordCount

	currentRound int
	turnIdx      int    // 当前回合玩家在 players 中的下标
	turnHolder   string // 当前回合玩家 ID，空表示无人持有

	category    *words.Category
	queue       []words.Word // 本回合待答单词，不跨回合保留
	currentWord *words.Word

	turnDeadline time.Time
	timer        *time.Timer
	timerSeq     int // 递增序号，防止旧定时器在新回合触发
}

// New 创建游戏会话，未知玩法按限时模式处理
func New(kind Kind, roomCode string, cfg Config, sink Sink) *Session {
	rules, ok := ruleSets[kind]
	if !ok {
		kind = KindTimeAttack
		rules = ruleSets[kind]
	}

	return &Session{
		kind:          kind,
		rules:         rules,
		cfg:           cfg,
		sink:          sink,
		roomCode:      roomCode,
		status:        StatusWaiting,
		scores:        make(map[string]int),
		wordsAnswered: make(map[string]*WordCount),
	}
}

// AddPlayer 加入玩家。重复 ID 是无操作并返回已有玩家；
// 第一个加入的玩家自动成为房主。
func (s *Session) AddPlayer(id, nickname string) (*Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusWaiting {
		return nil, apperrors.ErrGameStarted
	}

	for _, p := range s.players {
		if p.ID == id {
			return p, nil
		}
	}

	if len(s.players) >= s.cfg.MaxPlayers {
		return nil, apperrors.ErrRoomFull
	}

	p := &Player{ID: id, Nickname: nickname, IsHost: len(s.players) == 0}
	s.players = append(s.players, p)
	s.scores[id] = 0
	s.wordsAnswered[id] = &WordCount{}

	return p, nil
}

// RemovePlayer 移除玩家并清除其得分和答题计数。
// 被移除者持有回合时只清空回合，不自动轮转，由房间层决定何时调用 StartRound。
// 被移除者是房主时移交给加入顺序最靠前的玩家，返回新房主 ID。
func (s *Session) RemovePlayer(id string) (newHostID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, p := range s.players {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ""
	}

	wasHost := s.players[idx].IsHost
	heldTurn := s.turnHolder == id

	s.players = append(s.players[:idx], s.players[idx+1:]...)
	delete(s.scores, id)
	delete(s.wordsAnswered, id)

	if heldTurn {
		s.stopTimerLocked()
		s.turnHolder = ""
		s.currentWord = nil
		s.queue = nil
		s.category = nil
		// 下标指向被移除者的下一位，待房间层触发 StartRound
		if len(s.players) > 0 {
			s.turnIdx = idx % len(s.players)
		} else {
			s.turnIdx = 0
		}
	} else if idx < s.turnIdx {
		s.turnIdx--
	}

	if wasHost && len(s.players) > 0 {
		s.players[0].IsHost = true
		newHostID = s.players[0].ID
	}

	return newHostID
}

// Start 开始游戏：第一轮由加入顺序第一位的玩家先答题
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusWaiting {
		return apperrors.ErrGameStarted
	}
	if len(s.players) < s.cfg.MinPlayers {
		return apperrors.ErrInsufficientPlayers
	}

	s.status = StatusPlaying
	s.currentRound = 1
	s.turnIdx = 0
	s.turnHolder = s.players[0].ID
	s.turnDeadline = time.Time{}

	s.emitLocked(Event{Type: EventStateChanged})
	return nil
}

// StartRound 推进到下一位玩家的回合。回合持有者掉线后房间层调用本方法
// 把回合交给下一位玩家。
func (s *Session) StartRound() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusPlaying {
		return
	}
	s.startRoundLocked()
}

// startRoundLocked 轮转回合。正常轮转在绕回第一位玩家时递增轮数；
// 回合空缺（持有者掉线）时直接落位到下一位，不算绕圈。
func (s *Session) startRoundLocked() {
	if len(s.players) == 0 {
		return
	}

	if s.turnHolder != "" {
		next := (s.turnIdx + 1) % len(s.players)
		if next == 0 {
			s.currentRound++
		}
		s.turnIdx = next
	} else {
		s.turnIdx = s.turnIdx % len(s.players)
	}

	s.turnHolder = s.players[s.turnIdx].ID
	s.category = nil
	s.currentWord = nil
	s.queue = nil
	s.turnDeadline = time.Time{}

	s.emitLocked(Event{Type: EventStateChanged})
}

// endRoundLocked 结束当前回合：轮数用尽且即将绕回第一位玩家时终局，
// 否则轮转到下一位
func (s *Session) endRoundLocked() {
	if len(s.players) == 0 {
		return
	}

	next := (s.turnIdx + 1) % len(s.players)
	if next == 0 && s.currentRound >= s.cfg.MaxRounds {
		s.finishLocked()
		return
	}
	s.startRoundLocked()
}

// Dispatch 游戏进行中唯一的动作入口。
// 非当前回合玩家的动作、游戏未进行时的动作一律静默丢弃，状态不发生任何变化。
func (s *Session) Dispatch(a Action) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusPlaying {
		return
	}
	if a.PlayerID == "" || a.PlayerID != s.turnHolder {
		return
	}

	switch a.Type {
	case ActionSpinWheel:
		if a.Category == nil {
			return
		}
		s.category = a.Category
		s.emitLocked(Event{
			Type:     EventWheelSpun,
			PlayerID: a.PlayerID,
			Category: a.Category,
		})

	case ActionStartTurn:
		if len(s.queue) == 0 || s.currentWord != nil {
			return
		}
		s.popWordLocked()
		s.startTimerLocked()
		s.emitLocked(Event{Type: EventStateChanged})

	case ActionSubmitAnswer:
		if s.currentWord == nil {
			return
		}
		s.judgeAnswerLocked(a.PlayerID, a.Answer)

	case ActionEndTurn:
		s.endTurnLocked()
	}
}

// judgeAnswerLocked 判定答案并推进单词队列，队列耗尽时自动结束回合
func (s *Session) judgeAnswerLocked(playerID, answer string) {
	word := *s.currentWord

	correct := JudgeAnswer(answer, word.Translation)
	wc := s.wordsAnswered[playerID]
	wc.Total++

	points := 0
	if correct {
		wc.Correct++
		points = s.cfg.BasePoints
		s.scores[playerID] += points
	}

	s.emitLocked(Event{
		Type:        EventAnswerJudged,
		PlayerID:    playerID,
		Term:        word.Term,
		Answer:      answer,
		Translation: word.Translation,
		Correct:     correct,
		Points:      points,
	})

	if len(s.queue) > 0 {
		s.popWordLocked()
		s.emitLocked(Event{Type: EventStateChanged})
		return
	}

	// 单词答完与超时走同一条结束路径
	s.currentWord = nil
	s.endTurnLocked()
}

func (s *Session) popWordLocked() {
	w := s.queue[0]
	s.queue = s.queue[1:]
	s.currentWord = &w
}

// endTurnLocked 结束当前玩家的回合，所有结束路径（主动结束、超时、答完）都汇聚到这里
func (s *Session) endTurnLocked() {
	s.stopTimerLocked()
	s.currentWord = nil
	s.queue = nil
	s.category = nil
	s.endRoundLocked()
}

// finishLocked 终局。幂等：已结束时无操作。
func (s *Session) finishLocked() {
	if s.status == StatusFinished {
		return
	}

	s.status = StatusFinished
	s.stopTimerLocked()
	s.turnHolder = ""
	s.currentWord = nil
	s.queue = nil
	s.category = nil

	s.emitLocked(Event{
		Type:    EventGameOver,
		Ranking: s.rankingLocked(),
	})
}

// rankingLocked 按得分从高到低排名，同分按加入顺序
func (s *Session) rankingLocked() []protocol.PlayerRank {
	ranking := make([]protocol.PlayerRank, 0, len(s.players))
	for _, p := range s.players {
		wc := s.wordsAnswered[p.ID]
		ranking = append(ranking, protocol.PlayerRank{
			PlayerID:   p.ID,
			PlayerName: p.Nickname,
			Score:      s.scores[p.ID],
			Correct:    wc.Correct,
			Total:      wc.Total,
		})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Score > ranking[j].Score
	})
	return ranking
}

// SetWordQueue 设置本回合的单词队列，只对当前回合有效，回合结束即清空。
// 已有单词在答时拒绝覆盖，防止回合中途重新灌入队列。
func (s *Session) SetWordQueue(ws []words.Word) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusPlaying || s.currentWord != nil {
		return
	}
	s.queue = append([]words.Word(nil), ws...)
}

// WordInPlay 返回当前是否有单词正在作答
func (s *Session) WordInPlay() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentWord != nil
}

// UpdateConfig 合并配置增量，仅在等待阶段生效。
// MaxPlayers 不允许调小到低于当前人数。
func (s *Session) UpdateConfig(patch ConfigPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusWaiting {
		return
	}

	if patch.MaxPlayers != nil && *patch.MaxPlayers >= len(s.players) && *patch.MaxPlayers > 0 {
		s.cfg.MaxPlayers = *patch.MaxPlayers
	}
	if patch.RoundTimeLimit != nil && *patch.RoundTimeLimit > 0 {
		s.cfg.RoundTimeLimit = *patch.RoundTimeLimit
	}
	if patch.MaxRounds != nil && *patch.MaxRounds > 0 {
		s.cfg.MaxRounds = *patch.MaxRounds
	}
	if patch.WordsPerTurn != nil && *patch.WordsPerTurn > 0 {
		s.cfg.WordsPerTurn = *patch.WordsPerTurn
	}
	if patch.InputType != nil && *patch.InputType != "" {
		s.cfg.InputType = *patch.InputType
	}

	s.emitLocked(Event{Type: EventStateChanged})
}

// End 强制终局，幂等
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishLocked()
}

// --- 定时器 ---

// startTimerLocked 启动回合倒计时，到期等同玩家自己结束回合。
// 练习模式无倒计时。
func (s *Session) startTimerLocked() {
	if !s.rules.timed {
		return
	}

	s.stopTimerLocked()
	s.turnDeadline = time.Now().Add(s.cfg.RoundTimeLimit)
	s.timerSeq++
	seq := s.timerSeq
	s.timer = time.AfterFunc(s.cfg.RoundTimeLimit, func() {
		s.expireTurn(seq)
	})
}

// stopTimerLocked 取消倒计时。序号递增让已触发但尚未持锁的回调失效。
func (s *Session) stopTimerLocked() {
	s.timerSeq++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.turnDeadline = time.Time{}
}

func (s *Session) expireTurn(seq int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.timerSeq || s.status != StatusPlaying {
		return
	}
	s.endTurnLocked()
}

// --- 快照与只读访问 ---

// Snapshot 返回当前全量状态，供广播序列化，调用方不得修改会话内部状态
func (s *Session) Snapshot() protocol.GameStateDTO {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() protocol.GameStateDTO {
	players := make([]protocol.PlayerInfo, 0, len(s.players))
	hostID := ""
	for _, p := range s.players {
		if p.IsHost {
			hostID = p.ID
		}
		players = append(players, protocol.PlayerInfo{
			ID:       p.ID,
			Nickname: p.Nickname,
			IsHost:   p.IsHost,
		})
	}

	scores := make(map[string]int, len(s.scores))
	for id, score := range s.scores {
		scores[id] = score
	}

	wordsAnswered := make(map[string]protocol.WordCount, len(s.wordsAnswered))
	for id, wc := range s.wordsAnswered {
		wordsAnswered[id] = protocol.WordCount{Correct: wc.Correct, Total: wc.Total}
	}

	var category *protocol.CategoryInfo
	if s.category != nil {
		category = &protocol.CategoryInfo{ID: s.category.ID, Name: s.category.Name}
	}

	// 快照不携带译文，译文只在判定后通过答题结果公开
	var currentWord *protocol.WordPrompt
	if s.currentWord != nil {
		currentWord = &protocol.WordPrompt{
			Term:     s.currentWord.Term,
			Language: s.currentWord.Language,
		}
	}

	return protocol.GameStateDTO{
		RoomCode:      s.roomCode,
		Status:        string(s.status),
		Players:       players,
		HostID:        hostID,
		CurrentRound:  s.currentRound,
		MaxRounds:     s.cfg.MaxRounds,
		CurrentTurn:   s.turnHolder,
		Category:      category,
		CurrentWord:   currentWord,
		WordsLeft:     len(s.queue),
		TimeRemaining: s.timeRemainingLocked(),
		RoundTime:     int(s.cfg.RoundTimeLimit / time.Second),
		Scores:        scores,
		WordsAnswered: wordsAnswered,
	}
}

// timeRemainingLocked 按墙钟锚点计算剩余时间，回合未开始计时时返回完整时长
func (s *Session) timeRemainingLocked() float64 {
	if !s.rules.timed || s.status != StatusPlaying {
		return 0
	}
	if s.turnDeadline.IsZero() {
		return s.cfg.RoundTimeLimit.Seconds()
	}
	remaining := time.Until(s.turnDeadline).Seconds()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Status 返回当前状态
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Kind 返回玩法
func (s *Session) Kind() Kind {
	return s.kind
}

// CurrentTurn 返回当前回合玩家 ID，无人持有时返回空串
func (s *Session) CurrentTurn() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turnHolder
}

// CurrentCategory 返回本回合已选定的分类
func (s *Session) CurrentCategory() (words.Category, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.category == nil {
		return words.Category{}, false
	}
	return *s.category, true
}

// Players 返回玩家副本，按加入顺序
func (s *Session) Players() []Player {
	s.mu.Lock()
	defer s.mu.Unlock()

	players := make([]Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, *p)
	}
	return players
}

// PlayerCount 返回当前人数
func (s *Session) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.players)
}

// HostID 返回房主 ID
func (s *Session) HostID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.players {
		if p.IsHost {
			return p.ID
		}
	}
	return ""
}

// Config 返回配置副本
func (s *Session) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// emitLocked 附上最新快照后发给事件接收方
func (s *Session) emitLocked(ev Event) {
	if s.sink == nil {
		return
	}
	ev.Snapshot = s.snapshotLocked()
	s.sink.Emit(ev)
}

// JudgeAnswer 判定答案：忽略大小写和首尾空白的精确匹配
func JudgeAnswer(answer, translation string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(translation))
}
