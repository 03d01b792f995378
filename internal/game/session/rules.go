package session

// Kind 游戏玩法
type Kind string

const (
	KindTimeAttack Kind = "time_attack" // 限时模式：回合有倒计时，超时强制结束回合
	KindPractice   Kind = "practice"    // 练习模式：不计时，回合只能主动结束
)

// ruleSet 玩法规则
type ruleSet struct {
	timed bool // 回合是否有倒计时
}

var ruleSets = map[Kind]ruleSet{
	KindTimeAttack: {timed: true},
	KindPractice:   {timed: false},
}
