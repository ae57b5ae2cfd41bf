package core

import (
	"fmt"
	"math"
)

// Record 是目录中的一条商品记录：名称、类别、价格、评分。
// 构造后不可变；多个查询之间共享同一批 *Record，各阶段只做引用选择，不拷贝、不修改。
type Record struct {
	Name     string  `json:"name" yaml:"name"`
	Category string  `json:"category" yaml:"category"`
	Price    float64 `json:"price" yaml:"price"`
	Rating   float64 `json:"rating" yaml:"rating"`
}

// NewRecord 在加载边界校验并构造 Record。
// 价格必须为非负有限数；评分必须为有限数（不强制 [0,5]，由展示层约束）。
func NewRecord(name, category string, price, rating float64) (*Record, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return nil, NewDomainError(ModuleCore, ErrorCodeInvalidInput, fmt.Sprintf("record %q: price is not a finite number", name))
	}
	if price < 0 {
		return nil, NewDomainError(ModuleCore, ErrorCodeInvalidInput, fmt.Sprintf("record %q: negative price %v", name, price))
	}
	if math.IsNaN(rating) || math.IsInf(rating, 0) {
		return nil, NewDomainError(ModuleCore, ErrorCodeInvalidInput, fmt.Sprintf("record %q: rating is not a finite number", name))
	}
	return &Record{
		Name:     name,
		Category: category,
		Price:    price,
		Rating:   rating,
	}, nil
}

// String 输出单条记录的展示块。
func (r *Record) String() string {
	return fmt.Sprintf("-----------------------\nName: %s\nPrice: $%v\nRating: %v stars\nCategory: %s",
		r.Name, r.Price, r.Rating, r.Category)
}

// Fields 以 map 形式暴露字段，供表达式过滤（CEL）与条件匹配（connor）使用。
func (r *Record) Fields() map[string]any {
	return map[string]any{
		"name":     r.Name,
		"category": r.Category,
		"price":    r.Price,
		"rating":   r.Rating,
	}
}
