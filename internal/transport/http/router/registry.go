package router

import (
	"fmt"
	"sort"
	"strings"

	"gin-todo-rpc/internal/transport/http/rpc"
)

// Module 一个命名空间（auth / todo / user）一个模块，过程名必须是 "<namespace>.<name>"
type Module interface {
	Namespace() string
	Mount(*rpc.Router)
}

// 可选：控制挂载顺序（数值越小越先挂），不实现则为 100
type prioritizer interface{ Priority() int }

// MountAll 按优先级挂载；命名空间重复或过程越界属于编程错误，直接 panic
func MountAll(r *rpc.Router, mods ...Module) {
	mods = append([]Module(nil), mods...)
	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	seen := make(map[string]bool, len(mods))
	for _, m := range mods {
		ns := m.Namespace()
		if ns == "" || strings.Contains(ns, ".") {
			panic(fmt.Sprintf("rpc: invalid namespace %q", ns))
		}
		if seen[ns] {
			panic(fmt.Sprintf("rpc: namespace %q mounted twice", ns))
		}
		seen[ns] = true

		before := len(r.Procedures())
		m.Mount(r)
		for _, p := range r.Procedures()[before:] {
			if !strings.HasPrefix(p.Path, ns+".") {
				panic(fmt.Sprintf("rpc: procedure %q registered by namespace %q", p.Path, ns))
			}
		}
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
