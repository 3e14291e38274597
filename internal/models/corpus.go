package models

// Corpus 从快照加载的只读条目集合
type Corpus struct {
	records []Record
}

// NewCorpus 创建语料, 拷贝传入的切片
func NewCorpus(records []Record) *Corpus {
	cp := make([]Record, len(records))
	copy(cp, records)
	return &Corpus{records: cp}
}

// Records 返回条目副本, 保持快照中的顺序
func (c *Corpus) Records() []Record {
	if c == nil {
		return nil
	}
	cp := make([]Record, len(c.records))
	copy(cp, c.records)
	return cp
}

// Len 条目数量
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

// Each 按顺序遍历条目, fn返回false时停止
func (c *Corpus) Each(fn func(i int, r Record) bool) {
	if c == nil {
		return
	}
	for i, r := range c.records {
		if !fn(i, r) {
			return
		}
	}
}
