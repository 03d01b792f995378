package words

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

// Redis 键
const (
	keyCategories = "vocab:categories"  // Hash: categoryID -> name
	keySeeded     = "vocab:seeded"      // String: 种子导入标记
	keyWordsFmt   = "vocab:words:%s:%s" // Set: 分类+语言下的单词 JSON
)

// RedisStore 基于 Redis 的词库，SRANDMEMBER 负责随机抽词
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 词库
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func wordsKey(categoryID, language string) string {
	return fmt.Sprintf(keyWordsFmt, categoryID, language)
}

// GetRandomWords 从指定分类和语言中随机取 n 个不重复的单词
func (s *RedisStore) GetRandomWords(ctx context.Context, categoryID, language string, n int) ([]Word, error) {
	members, err := s.client.SRandMemberN(ctx, wordsKey(categoryID, language), int64(n)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get random words: %w", err)
	}

	words := make([]Word, 0, len(members))
	for _, m := range members {
		var w Word
		if err := json.Unmarshal([]byte(m), &w); err != nil {
			log.Printf("⚠️ 词库中存在损坏的单词数据，已跳过: %v", err)
			continue
		}
		words = append(words, w)
	}
	return words, nil
}

// GetAllCategories 返回全部分类
func (s *RedisStore) GetAllCategories(ctx context.Context) ([]Category, error) {
	entries, err := s.client.HGetAll(ctx, keyCategories).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	categories := make([]Category, 0, len(entries))
	for id, name := range entries {
		categories = append(categories, Category{ID: id, Name: name})
	}
	return categories, nil
}

// CountWords 返回指定分类和语言下的单词数量
func (s *RedisStore) CountWords(ctx context.Context, categoryID, language string) (int64, error) {
	return s.client.SCard(ctx, wordsKey(categoryID, language)).Result()
}

// seedFile 词库种子文件结构
type seedFile struct {
	Categories []Category `yaml:"categories"`
	Words      []Word     `yaml:"words"`
}

// SeedFromFile 从 YAML 种子文件导入词库，已导入过则跳过
func (s *RedisStore) SeedFromFile(ctx context.Context, path string) error {
	ok, err := s.client.SetNX(ctx, keySeeded, "1", 0).Result()
	if err != nil {
		return fmt.Errorf("failed to check seed flag: %w", err)
	}
	if !ok {
		log.Println("📚 词库已存在，跳过导入")
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	return s.importSeed(ctx, &seed)
}

// Import 直接导入分类和单词，不检查种子标记，供管理工具和测试使用
func (s *RedisStore) Import(ctx context.Context, categories []Category, ws []Word) error {
	return s.importSeed(ctx, &seedFile{Categories: categories, Words: ws})
}

func (s *RedisStore) importSeed(ctx context.Context, seed *seedFile) error {
	pipe := s.client.Pipeline()
	for _, c := range seed.Categories {
		pipe.HSet(ctx, keyCategories, c.ID, c.Name)
	}

	for _, w := range seed.Words {
		if w.ID == "" {
			w.ID = uuid.New().String()
		}
		data, err := json.Marshal(w)
		if err != nil {
			return fmt.Errorf("failed to marshal word %q: %w", w.Term, err)
		}
		pipe.SAdd(ctx, wordsKey(w.CategoryID, w.Language), data)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to import seed: %w", err)
	}

	log.Printf("📚 词库导入完成: %d 个分类, %d 个单词", len(seed.Categories), len(seed.Words))
	return nil
}
