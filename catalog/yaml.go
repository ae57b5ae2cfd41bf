package catalog

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/catalogkit/core"
)

// catalogFile 是 YAML 目录文件的顶层结构。
type catalogFile struct {
	Records []core.Record `yaml:"records"`
}

// YAMLLoader 从 YAML 读取目录：
//
//	records:
//	  - {name: Widget, category: Tools, price: 10, rating: 4.5}
//
// Data 非空时优先使用 Data，否则读取 Path。
type YAMLLoader struct {
	Path string
	Data []byte
}

func (l *YAMLLoader) Load(_ context.Context) (core.Collection, error) {
	data := l.Data
	if data == nil {
		raw, err := os.ReadFile(l.Path)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		data = raw
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	out := make(core.Collection, 0, len(f.Records))
	for i, r := range f.Records {
		rec, err := core.NewRecord(r.Name, r.Category, r.Price, r.Rating)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
