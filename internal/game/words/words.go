package words

import "context"

// Word 词库中的一个单词
type Word struct {
	ID          string `json:"id" yaml:"id"`
	Term        string `json:"term" yaml:"term"`               // 题面
	Translation string `json:"translation" yaml:"translation"` // 正确答案
	Language    string `json:"language" yaml:"language"`       // 语言代码，如 en、ja
	CategoryID  string `json:"category_id" yaml:"category_id"`
}

// Category 单词分类（转盘上的一个扇区）
type Category struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Provider 词库提供者
type Provider interface {
	// GetRandomWords 从指定分类和语言中随机取 n 个单词
	GetRandomWords(ctx context.Context, categoryID, language string, n int) ([]Word, error)
	// GetAllCategories 返回全部分类
	GetAllCategories(ctx context.Context) ([]Category, error)
}
