package iface

import (
	"context"
)

// IMessageQue 主机之间的消息通道。主题即目标主机 URL，
// 同一发布者向同一主题发布的消息按发布顺序投递
type IMessageQue interface {
	// Run 启动消息队列
	Run(ctx context.Context) error
	// Publish 向指定主题发布消息（无回复）
	Publish(subject string, data []byte) error
	// Subscribe 订阅主题，接收消息（非阻塞，通过回调处理）
	Subscribe(subject string, subscriber ISubscriber) (ISubscription, error)
	// Shutdown 关闭连接
	Shutdown(ctx context.Context) error
}

// ISubscription 订阅关系接口，用于取消订阅
type ISubscription interface {
	Unsubscribe() error
}

// ISubscriber 消息回调，同一订阅的回调串行执行且不应阻塞
type ISubscriber interface {
	OnMessage(subject string, data []byte)
}

// SubscriberFunc 函数形式的 ISubscriber
type SubscriberFunc func(subject string, data []byte)

func (f SubscriberFunc) OnMessage(subject string, data []byte) {
	f(subject, data)
}
