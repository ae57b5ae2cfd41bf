// Package rank 实现目录记录的原地堆排序（降序）。
package rank

import (
	"fmt"
	"strings"

	"github.com/rushteam/catalogkit/core"
)

// Key 是排序字段，闭合枚举（两种取值）。
type Key int

const (
	KeyPrice Key = iota
	KeyRating
)

func (k Key) String() string {
	switch k {
	case KeyPrice:
		return "price"
	case KeyRating:
		return "rating"
	default:
		return fmt.Sprintf("Key(%d)", int(k))
	}
}

// ParseKey 解析 "price" / "rating"（不区分大小写）。
func ParseKey(s string) (Key, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "price":
		return KeyPrice, nil
	case "rating":
		return KeyRating, nil
	default:
		return 0, core.NewDomainError(core.ModuleRank, core.ErrorCodeInvalidInput, fmt.Sprintf("rank: unknown sort key %q", s))
	}
}

// Comparator 报告 a 在当前字段上是否严格大于 b。
type Comparator func(a, b *core.Record) bool

func byPrice(a, b *core.Record) bool  { return a.Price > b.Price }
func byRating(a, b *core.Record) bool { return a.Rating > b.Rating }

// ComparatorFor 按 Key 选择比较策略，每次排序只选一次。
func ComparatorFor(key Key) Comparator {
	if key == KeyRating {
		return byRating
	}
	return byPrice
}

// HeapSort 用经典二叉大顶堆对 records 原地降序排序，并返回同一个切片便于链式调用。
//
// 调用期间 HeapSort 独占 records；源集合被共享时请先 Clone，或使用 Sorted。
// 相等键的相对顺序由堆结构决定，不保证稳定。
func HeapSort(records core.Collection, key Key) core.Collection {
	n := len(records)
	if n < 2 {
		return records
	}
	cmp := ComparatorFor(key)

	// 建堆
	for i := n/2 - 1; i >= 0; i-- {
		heapify(records, n, i, cmp)
	}

	// 逐个取出堆顶放到未排序区间末尾
	for i := n - 1; i > 0; i-- {
		records[0], records[i] = records[i], records[0]
		heapify(records, i, 0, cmp)
	}

	// 大顶堆得到升序，翻转为降序
	reverse(records)
	return records
}

// heapify 在大小为 n 的堆中从 i 开始下沉。
// 先比较左孩子再比较右孩子，且都用严格大于，因此相等时偏向左孩子。
func heapify(records core.Collection, n, i int, cmp Comparator) {
	for {
		largest := i
		left := 2*i + 1
		right := 2*i + 2

		if left < n && cmp(records[left], records[largest]) {
			largest = left
		}
		if right < n && cmp(records[right], records[largest]) {
			largest = right
		}
		if largest == i {
			return
		}
		records[i], records[largest] = records[largest], records[i]
		i = largest
	}
}

func reverse(records core.Collection) {
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
}

// Sorted 对 records 的私有副本排序，不修改调用方的切片。
func Sorted(records core.Collection, key Key) core.Collection {
	return HeapSort(records.Clone(), key)
}
