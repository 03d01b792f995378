package server

import (
	"math/rand"
)

// 昵称词库
var (
	adjectives = []string{
		"好学的", "博学的", "机智的", "勤奋的", "聪明的",
		"专注的", "好奇的", "沉稳的", "活泼的", "认真的",
		"淡定的", "努力的", "敏捷的", "耐心的", "开朗的",
		"细心的", "勇敢的", "灵巧的", "温柔的", "执着的",
	}

	nouns = []string{
		"水獭", "企鹅", "熊猫", "考拉", "松鼠",
		"刺猬", "浣熊", "羊驼", "海豚", "猫头鹰",
		"柯基", "柴犬", "龙猫", "仓鼠", "狐狸",
		"兔子", "鹦鹉", "树懒", "小鹿", "白鲸",
	}
)

// GenerateNickname 生成随机昵称
func GenerateNickname() string {
	adj := adjectives[rand.Intn(len(adjectives))]
	noun := nouns[rand.Intn(len(nouns))]
	return adj + noun
}
