package service

import (
	"cmp"
	"slices"

	"github.com/sensive/internal/db"
)

// TagIndex 是单次请求内共享的热门标签查找表。
// 同一个标签在所有文章上都指向同一个 *db.Tag，PostsCount 只计算一次。
type TagIndex struct {
	byID map[uint]*db.Tag
	rank map[uint]int
}

// NewTagIndex 以热门顺序构建索引，tags 必须已按热度降序排列。
func NewTagIndex(tags []*db.Tag) *TagIndex {
	index := &TagIndex{
		byID: make(map[uint]*db.Tag, len(tags)),
		rank: make(map[uint]int, len(tags)),
	}
	for i, tag := range tags {
		index.byID[tag.ID] = tag
		index.rank[tag.ID] = i
	}
	return index
}

// Lookup 返回共享的标签对象。
func (idx *TagIndex) Lookup(id uint) (*db.Tag, bool) {
	if idx == nil {
		return nil, false
	}
	tag, ok := idx.byID[id]
	return tag, ok
}

// Len 返回索引中的标签数量。
func (idx *TagIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.byID)
}

func (idx *TagIndex) sortByRank(tags []*db.Tag) {
	if idx == nil || len(tags) < 2 {
		return
	}
	slices.SortStableFunc(tags, func(a, b *db.Tag) int {
		return cmp.Compare(idx.rank[a.ID], idx.rank[b.ID])
	})
}
