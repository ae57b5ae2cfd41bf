package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/rushteam/catalogkit/core"
)

// StoreLoader 从 HashStore 读取目录快照：Key 是 Hash 名，field 是行号，value 是记录 JSON。
// 行号决定目录顺序。
type StoreLoader struct {
	Store core.HashStore
	Key   string
}

func (l *StoreLoader) Load(ctx context.Context) (core.Collection, error) {
	if l.Store == nil || l.Key == "" {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, "catalog: store loader needs a store and a key")
	}
	fields, err := l.Store.HGetAll(ctx, l.Key)
	if err != nil {
		return nil, fmt.Errorf("%s hgetall %s: %w", l.Store.Name(), l.Key, err)
	}

	type row struct {
		seq  int
		data []byte
	}
	rows := make([]row, 0, len(fields))
	for f, v := range fields {
		seq, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("field %q: not a row number", f)
		}
		rows = append(rows, row{seq: seq, data: v})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	out := make(core.Collection, 0, len(rows))
	for _, r := range rows {
		var rec core.Record
		if err := json.Unmarshal(r.data, &rec); err != nil {
			return nil, fmt.Errorf("row %d: %w", r.seq, err)
		}
		valid, err := core.NewRecord(rec.Name, rec.Category, rec.Price, rec.Rating)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", r.seq, err)
		}
		out = append(out, valid)
	}
	return out, nil
}

// SaveToStore 用 records 覆盖 key 下的目录快照。
func SaveToStore(ctx context.Context, s core.HashStore, key string, records core.Collection) error {
	if err := s.Delete(ctx, key); err != nil {
		return fmt.Errorf("%s delete %s: %w", s.Name(), key, err)
	}
	seq := 0
	for _, r := range records {
		if r == nil {
			continue
		}
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}
		if err := s.HSet(ctx, key, strconv.Itoa(seq), data); err != nil {
			return fmt.Errorf("%s hset %s: %w", s.Name(), key, err)
		}
		seq++
	}
	return nil
}
