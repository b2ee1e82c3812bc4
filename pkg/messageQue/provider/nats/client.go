// Package nats 基于 NATS 的主机间传输，主题由前缀加处理过的主机 URL 组成
package nats

import (
	"context"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"

	"github.com/dzm2020/gactor/internal/errs"
	"github.com/dzm2020/gactor/pkg/messageQue"
	"github.com/dzm2020/gactor/pkg/messageQue/iface"
)

const Name = "nats"

func init() {
	_ = messageQue.Register(Name, func(raw map[string]any) (iface.IMessageQue, error) {
		natsCfg := defaultConfig()
		if err := messageQue.DecodeConfig(raw, natsCfg); err != nil {
			return nil, err
		}
		if err := natsCfg.Validate(); err != nil {
			return nil, err
		}
		return New(natsCfg), nil
	})
}

var _ iface.IMessageQue = (*Client)(nil)

func New(cfg *Config) *Client {
	if cfg == nil {
		cfg = defaultConfig()
	}
	return &Client{
		cfg: cfg,
	}
}

type Client struct {
	cfg  *Config
	conn *nats.Conn
}

func (n *Client) Run(ctx context.Context) (err error) {
	n.conn, err = nats.Connect(strings.Join(n.cfg.Servers, ","), toOptions(n.cfg)...)
	if err != nil {
		return errors.Wrapf(err, "nats connect %v", n.cfg.Servers)
	}
	return nil
}

// Subject 主机 URL 对应的 NATS 主题
func (n *Client) Subject(subject string) string {
	return n.cfg.Prefix + sanitize(subject)
}

func (n *Client) Publish(subject string, data []byte) error {
	if n.conn == nil || n.conn.IsClosed() {
		return errs.ErrTransportNotRunning
	}
	if err := n.conn.Publish(n.Subject(subject), data); err != nil {
		return errs.ErrPublishFailed(subject, err)
	}
	return nil
}

// Subscribe 同一订阅的回调由 nats 串行调用，保持发布顺序
func (n *Client) Subscribe(subject string, subscriber iface.ISubscriber) (iface.ISubscription, error) {
	if n.conn == nil || n.conn.IsClosed() {
		return nil, errs.ErrTransportNotRunning
	}
	sub, err := n.conn.Subscribe(n.Subject(subject), func(m *nats.Msg) {
		subscriber.OnMessage(subject, m.Data)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "nats subscribe %s", subject)
	}
	return sub, nil
}

func (n *Client) Shutdown(ctx context.Context) error {
	if n.conn == nil || n.conn.IsClosed() {
		return nil
	}
	if err := n.conn.Drain(); err != nil {
		n.conn.Close()
		return err
	}
	return nil
}

var subjectReplacer = strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_", "\t", "_", "\n", "_", "\r", "_")

// sanitize NATS 主题里 . * > 和空白有特殊含义
func sanitize(subject string) string {
	return subjectReplacer.Replace(subject)
}
