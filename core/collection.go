package core

// Collection 是在 Pipeline 各阶段之间流转的有序记录序列。
// 允许重复；顺序只对排序阶段有意义（它就是堆排序原地置换的数组）。
type Collection []*Record

func (c Collection) Len() int { return len(c) }

// Clone 返回一个新的底层数组，元素仍指向同一批 Record。
// 源集合被多个查询共享时，交给排序阶段之前必须先 Clone。
func (c Collection) Clone() Collection {
	if c == nil {
		return nil
	}
	out := make(Collection, len(c))
	copy(out, c)
	return out
}

// Names 返回按当前顺序排列的名称列表，便于日志与断言。
func (c Collection) Names() []string {
	names := make([]string, 0, len(c))
	for _, r := range c {
		if r == nil {
			continue
		}
		names = append(names, r.Name)
	}
	return names
}
