package actor

import (
	"github.com/dzm2020/gactor/pkg/lib/grs"
)

type Option func(*Options)

type Options struct {
	Middlewares []InvokeMiddleware
	Mailbox     *Mailbox
	Group       *grs.Group
}

func loadOptions(options ...Option) *Options {
	opts := &Options{}
	for _, option := range options {
		option(opts)
	}
	if opts.Mailbox == nil {
		opts.Mailbox = NewMailbox()
	}
	if opts.Group == nil {
		opts.Group = grs.Default
	}
	return opts
}

func WithMiddlewares(middlewares ...InvokeMiddleware) Option {
	return func(o *Options) {
		o.Middlewares = append(o.Middlewares, middlewares...)
	}
}

// WithMailbox 使用外部创建的邮箱，spawn 之前已投递的消息会被依次处理
func WithMailbox(mailbox *Mailbox) Option {
	return func(o *Options) {
		o.Mailbox = mailbox
	}
}

// WithGroup actor 协程归属的 Group，关闭时可统一等待
func WithGroup(group *grs.Group) Option {
	return func(o *Options) {
		o.Group = group
	}
}
