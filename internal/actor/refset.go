package actor

import (
	"sort"
)

// RefSet 以 URL 去重的引用集合
type RefSet struct {
	refs map[string]*ActorRef
}

func NewRefSet(refs ...IReferable) *RefSet {
	s := &RefSet{refs: make(map[string]*ActorRef, len(refs))}
	for _, r := range refs {
		s.Add(r)
	}
	return s
}

// Add 已存在相同 URL 时返回 false，保留先加入的引用
func (s *RefSet) Add(r IReferable) bool {
	if r == nil || r.Ref() == nil {
		return false
	}
	ref := r.Ref()
	if _, ok := s.refs[ref.Key()]; ok {
		return false
	}
	s.refs[ref.Key()] = ref
	return true
}

func (s *RefSet) Contains(r IReferable) bool {
	if r == nil || r.Ref() == nil {
		return false
	}
	_, ok := s.refs[r.Ref().Key()]
	return ok
}

func (s *RefSet) Remove(r IReferable) {
	if r == nil || r.Ref() == nil {
		return
	}
	delete(s.refs, r.Ref().Key())
}

func (s *RefSet) Len() int {
	return len(s.refs)
}

// Refs 按 URL 排序
func (s *RefSet) Refs() []*ActorRef {
	out := make([]*ActorRef, 0, len(s.refs))
	for _, r := range s.refs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].url < out[j].url })
	return out
}
