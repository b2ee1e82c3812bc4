// Package local 进程内消息总线，同名总线上的实例互相可见
package local

import (
	"context"
	"sync"

	"github.com/dzm2020/gactor/internal/errs"
	"github.com/dzm2020/gactor/pkg/lib/stopper"
	"github.com/dzm2020/gactor/pkg/messageQue"
	"github.com/dzm2020/gactor/pkg/messageQue/iface"
)

const Name = "local"

func init() {
	_ = messageQue.Register(Name, func(raw map[string]any) (iface.IMessageQue, error) {
		cfg := defaultConfig()
		if err := messageQue.DecodeConfig(raw, cfg); err != nil {
			return nil, err
		}
		return New(cfg), nil
	})
}

// Config 本地总线配置
type Config struct {
	Bus string `json:"bus" yaml:"bus" mapstructure:"bus"` // 总线名，默认 default
}

func defaultConfig() *Config {
	return &Config{Bus: "default"}
}

var (
	busMu sync.Mutex
	buses = map[string]*bus{}
)

func getBus(name string) *bus {
	busMu.Lock()
	defer busMu.Unlock()
	b, ok := buses[name]
	if !ok {
		b = &bus{subs: map[string][]*subscription{}}
		buses[name] = b
	}
	return b
}

type bus struct {
	mu   sync.RWMutex
	subs map[string][]*subscription
}

func (b *bus) add(s *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[s.subject] = append(b.subs[s.subject], s)
}

func (b *bus) remove(s *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[s.subject]
	for i, item := range list {
		if item == s {
			b.subs[s.subject] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(b.subs[s.subject]) == 0 {
		delete(b.subs, s.subject)
	}
}

func (b *bus) get(subject string) []*subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.subs[subject]
}

type subscription struct {
	bus        *bus
	subject    string
	subscriber iface.ISubscriber
	once       sync.Once
}

func (s *subscription) Unsubscribe() error {
	s.once.Do(func() { s.bus.remove(s) })
	return nil
}

var _ iface.IMessageQue = (*Client)(nil)

func New(cfg *Config) *Client {
	if cfg == nil {
		cfg = defaultConfig()
	}
	return &Client{cfg: cfg}
}

// Client 在发布者的协程里同步回调订阅者，发布顺序即投递顺序
type Client struct {
	stopper.Stopper
	cfg     *Config
	bus     *bus
	mu      sync.Mutex
	running bool
	subs    []*subscription
}

func (c *Client) Run(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bus = getBus(c.cfg.Bus)
	c.running = true
	return nil
}

func (c *Client) ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running && !c.IsStop()
}

func (c *Client) Publish(subject string, data []byte) error {
	if !c.ready() {
		return errs.ErrTransportNotRunning
	}
	for _, s := range c.bus.get(subject) {
		buf := make([]byte, len(data))
		copy(buf, data)
		s.subscriber.OnMessage(subject, buf)
	}
	return nil
}

func (c *Client) Subscribe(subject string, subscriber iface.ISubscriber) (iface.ISubscription, error) {
	if !c.ready() {
		return nil, errs.ErrTransportNotRunning
	}
	s := &subscription{bus: c.bus, subject: subject, subscriber: subscriber}
	c.bus.add(s)
	c.mu.Lock()
	c.subs = append(c.subs, s)
	c.mu.Unlock()
	return s, nil
}

func (c *Client) Shutdown(ctx context.Context) error {
	if !c.Stop() {
		return nil
	}
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()
	for _, s := range subs {
		_ = s.Unsubscribe()
	}
	return nil
}
