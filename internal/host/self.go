package host

import (
	"github.com/dzm2020/gactor/internal/actor"
)

// HostClass 主机自身 actor 的能力：远端可以 ask 它查找引用
var HostClass = &actor.Class{
	Name: "Host",
	Ask:  []string{"Lookup", "Spawned"},
	Ref:  []string{"Lookup"},
}

type hostActor struct {
	h *Host
}

// Lookup 返回本主机 id 对应的 actor，结果会被规范化为引用
func (s *hostActor) Lookup(id string) (*actor.Actor, error) {
	return s.h.Lookup(id)
}

func (s *hostActor) Spawned() []string {
	return s.h.Spawned()
}
