package actor

import (
	"github.com/dzm2020/gactor/pkg/lib/reflectx"
)

// IClass 能力声明：可 tell 的方法、可 ask 的方法、返回引用的方法。
// 任何实现这四个方法的类型都可以作为声明，不要求继承关系
type IClass interface {
	ClassName() string
	TellMethods() []string
	AskMethods() []string
	RefMethods() []string
}

var _ IClass = (*Class)(nil)

// Class 静态能力声明
type Class struct {
	Name string
	Tell []string
	Ask  []string
	Ref  []string
}

func (c *Class) ClassName() string     { return c.Name }
func (c *Class) TellMethods() []string { return c.Tell }
func (c *Class) AskMethods() []string  { return c.Ask }
func (c *Class) RefMethods() []string  { return c.Ref }

// ClassOf obj 自身实现了 IClass 时直接使用，否则返回只有类型名、没有能力的声明
func ClassOf(obj any) IClass {
	if c, ok := obj.(IClass); ok {
		return c
	}
	return &Class{Name: reflectx.TypeName(obj)}
}
