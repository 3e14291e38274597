// Package snapshot 读写书签快照文件
//
// 快照是一个JSON数组, 两空格缩进, 每个元素对应一个 models.Record.
// 每次成功收集后整体覆盖写入.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/RecoveryAshes/bookmarkscope/internal/models"
	"github.com/RecoveryAshes/bookmarkscope/internal/utils"
)

// DefaultPath 默认快照文件名
const DefaultPath = "bookmarked_tweets.json"

// Marshal 序列化条目 (两空格缩进)
func Marshal(records []models.Record) ([]byte, error) {
	if records == nil {
		records = []models.Record{}
	}
	return json.MarshalIndent(records, "", "  ")
}

// Write 覆盖写入快照
func Write(path string, records []models.Record) error {
	data, err := Marshal(records)
	if err != nil {
		return models.NewPersistenceError(path, err)
	}

	if err := utils.EnsureParentDir(path); err != nil {
		return models.NewPersistenceError(path, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return models.NewPersistenceError(path, err)
	}

	utils.Infof("💾 快照已保存: %s (%d 条)", path, len(records))
	return nil
}

// Read 加载快照
// 文件缺失或格式错误返回 CorpusLoadError
func Read(path string) (*models.Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, models.NewCorpusLoadError(path, err)
	}

	var records []models.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, models.NewCorpusLoadError(path, fmt.Errorf("快照格式错误: %w", err))
	}
	// "[]" 解出的是空切片, 只有 null 会得到 nil
	if records == nil {
		return nil, models.NewCorpusLoadError(path, fmt.Errorf("快照格式错误: 顶层不是数组"))
	}

	utils.Debugf("已加载快照: %s (%d 条)", path, len(records))
	return models.NewCorpus(records), nil
}

// WriteJSON 以相同格式写入任意结果 (如语义描述结果)
func WriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return models.NewPersistenceError(path, err)
	}
	if err := utils.EnsureParentDir(path); err != nil {
		return models.NewPersistenceError(path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return models.NewPersistenceError(path, err)
	}
	return nil
}
