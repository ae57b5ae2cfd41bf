// Package catalog 负责一次性加载目录，并以只读方式提供给每次查询。
//
// 目录在启动时构造一次，之后显式传给查询驱动层；查询核心不访问任何全局状态。
package catalog

import (
	"math"

	"github.com/google/btree"

	"github.com/rushteam/catalogkit/core"
)

// priceEntry 是价格索引中的一项；seq 是记录在目录中的位置，用于区分同价记录。
type priceEntry struct {
	price float64
	seq   int
}

func lessPriceEntry(a, b priceEntry) bool {
	if a.price != b.price {
		return a.price < b.price
	}
	return a.seq < b.seq
}

// Catalog 是加载后不可变的记录集合，附带按价格排序的 B 树索引。
// 可以被多个并发查询共享而无需加锁：所有导出方法都是只读的，
// Records 返回私有副本，调用方可以放心交给原地排序阶段。
type Catalog struct {
	records core.Collection
	byPrice *btree.BTreeG[priceEntry]
}

// New 用给定记录构造目录，nil 记录会被丢弃。
func New(records core.Collection) *Catalog {
	kept := make(core.Collection, 0, len(records))
	for _, r := range records {
		if r != nil {
			kept = append(kept, r)
		}
	}

	index := btree.NewG(32, lessPriceEntry)
	for i, r := range kept {
		index.ReplaceOrInsert(priceEntry{price: r.Price, seq: i})
	}
	return &Catalog{records: kept, byPrice: index}
}

// Len 返回记录数
func (c *Catalog) Len() int { return len(c.records) }

// Records 返回目录的私有副本（新的底层数组，记录本身共享）。
func (c *Catalog) Records() core.Collection {
	return c.records.Clone()
}

// PriceBounds 从索引读取全目录的最低价与最高价；空目录返回 INVALID_RANGE。
func (c *Catalog) PriceBounds() (lo, hi float64, err error) {
	minEntry, ok := c.byPrice.Min()
	if !ok {
		return 0, 0, core.NewInvalidRangeError(core.ModuleCatalog, "catalog: cannot derive price bounds of an empty catalog")
	}
	maxEntry, _ := c.byPrice.Max()
	return minEntry.price, maxEntry.price, nil
}

// CountInPriceRange 统计价格位于 [lo, hi] 的记录数（两端闭区间），用于展示层提示。
func (c *Catalog) CountInPriceRange(lo, hi float64) (int, error) {
	if math.IsNaN(lo) || math.IsNaN(hi) || lo > hi {
		return 0, core.NewInvalidRangeError(core.ModuleCatalog, "catalog: invalid price range")
	}
	count := 0
	c.byPrice.AscendGreaterOrEqual(priceEntry{price: lo, seq: -1}, func(e priceEntry) bool {
		if e.price > hi {
			return false
		}
		count++
		return true
	})
	return count, nil
}
