package session

import "github.com/palemoky/word-wheel/internal/game/words"

// ActionType 回合内动作类型
type ActionType string

const (
	ActionSpinWheel    ActionType = "spin_wheel"    // 转盘选定分类
	ActionStartTurn    ActionType = "start_turn"    // 开始消费单词队列
	ActionSubmitAnswer ActionType = "submit_answer" // 提交答案
	ActionEndTurn      ActionType = "end_turn"      // 结束本回合
)

// Action 回合内动作。PlayerID 不等于当前回合玩家时动作被静默丢弃，
// 这是预期内的客户端状态滞后，不作为错误上报。
type Action struct {
	Type     ActionType
	PlayerID string
	Category *words.Category // ActionSpinWheel 使用
	Answer   string          // ActionSubmitAnswer 使用
}
