package woe

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rushteam/scorekit/core"
)

// DefaultKeyPrefix 是 WoE 表在 Store 中的 key 前缀。
const DefaultKeyPrefix = "woe"

// TableStore 把 WoE 表以 JSON 形式保存在 core.Store 中，key 为 prefix:target:variable。
type TableStore struct {
	Store  core.Store
	Prefix string
	// TTL 秒，<=0 表示不过期
	TTL int
}

// NewTableStore 创建表存储。
func NewTableStore(store core.Store) *TableStore {
	return &TableStore{Store: store, Prefix: DefaultKeyPrefix}
}

// Key 返回表的存储 key。
func (s *TableStore) Key(target, variable string) string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return prefix + ":" + target + ":" + variable
}

// Save 写入一张表。
func (s *TableStore) Save(ctx context.Context, t *Table) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal woe table %s: %w", t.Variable, err)
	}
	if err := s.Store.Set(ctx, s.Key(t.Target, t.Variable), data, s.TTL); err != nil {
		return fmt.Errorf("save woe table %s to %s: %w", t.Variable, s.Store.Name(), err)
	}
	return nil
}

// Load 读取一张表，不存在时返回 core.ErrStoreNotFound。
func (s *TableStore) Load(ctx context.Context, target, variable string) (*Table, error) {
	data, err := s.Store.Get(ctx, s.Key(target, variable))
	if err != nil {
		return nil, err
	}
	return decodeTable(data)
}

// LoadAll 批量读取，不存在的变量不出现在结果中。
func (s *TableStore) LoadAll(ctx context.Context, target string, variables []string) (map[string]*Table, error) {
	keys := make([]string, len(variables))
	byKey := make(map[string]string, len(variables))
	for i, v := range variables {
		keys[i] = s.Key(target, v)
		byKey[keys[i]] = v
	}
	raw, err := s.Store.BatchGet(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load woe tables from %s: %w", s.Store.Name(), err)
	}
	out := make(map[string]*Table, len(raw))
	for key, data := range raw {
		t, err := decodeTable(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out[byKey[key]] = t
	}
	return out, nil
}

// Delete 删除一张表。
func (s *TableStore) Delete(ctx context.Context, target, variable string) error {
	return s.Store.Delete(ctx, s.Key(target, variable))
}

func decodeTable(data []byte) (*Table, error) {
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, core.ErrInvalidInput(core.ModuleStore, "decode woe table: %v", err)
	}
	t.buildIndex()
	return &t, nil
}
