// Package tcp 基于 gnet 监听、标准库拨号的点对点传输。
// 主题必须是 tcp://host:port[/...] 形式，发布时按主机地址复用一条出站连接
package tcp

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/duke-git/lancet/v2/maputil"
	"github.com/panjf2000/gnet/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dzm2020/gactor/internal/errs"
	"github.com/dzm2020/gactor/pkg/glog"
	"github.com/dzm2020/gactor/pkg/lib/grs"
	"github.com/dzm2020/gactor/pkg/lib/stopper"
	"github.com/dzm2020/gactor/pkg/messageQue"
	"github.com/dzm2020/gactor/pkg/messageQue/iface"
)

const Name = "tcp"

func init() {
	_ = messageQue.Register(Name, func(raw map[string]any) (iface.IMessageQue, error) {
		cfg := defaultConfig()
		if err := messageQue.DecodeConfig(raw, cfg); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return New(cfg), nil
	})
}

var _ iface.IMessageQue = (*Client)(nil)

func New(cfg *Config) *Client {
	return &Client{
		cfg:   cfg,
		subs:  maputil.NewConcurrentMap[string, iface.ISubscriber](8),
		conns: maputil.NewConcurrentMap[string, *outConn](8),
		group: grs.NewGroup(nil),
	}
}

type Client struct {
	gnet.BuiltinEventEngine
	stopper.Stopper
	cfg     *Config
	eng     gnet.Engine
	booted  chan struct{}
	running atomic.Bool
	subs    *maputil.ConcurrentMap[string, iface.ISubscriber]
	conns   *maputil.ConcurrentMap[string, *outConn]
	dialMu  sync.Mutex
	group   *grs.Group
}

// Addr 监听地址
func (c *Client) Addr() string {
	return c.cfg.Listen
}

// Run 启动监听，监听就绪或失败后返回
func (c *Client) Run(ctx context.Context) error {
	c.booted = make(chan struct{})
	errCh := make(chan error, 1)
	opts := []gnet.Option{
		gnet.WithMulticore(c.cfg.Multicore),
		gnet.WithReusePort(false),
	}
	if c.cfg.KeepAlive > 0 {
		opts = append(opts, gnet.WithTCPKeepAlive(c.cfg.KeepAlive))
	}
	protoAddr := "tcp://" + c.cfg.Listen
	c.group.Go(func() {
		errCh <- gnet.Run(c, protoAddr, opts...)
	})
	select {
	case <-c.booted:
		c.running.Store(true)
		glog.Info("tcp transport listening", zap.String("addr", protoAddr))
		return nil
	case err := <-errCh:
		return errors.Wrapf(err, "tcp listen %s", protoAddr)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) OnBoot(eng gnet.Engine) (action gnet.Action) {
	c.eng = eng
	close(c.booted)
	return gnet.None
}

func (c *Client) OnTraffic(conn gnet.Conn) (action gnet.Action) {
	frames, err := decode(conn, c.cfg.MaxFrame)
	for _, f := range frames {
		if sub, ok := c.subs.Get(f.subject); ok {
			sub.OnMessage(f.subject, f.data)
		} else {
			glog.Debug("tcp transport no subscriber", zap.String("subject", f.subject))
		}
	}
	if err != nil {
		glog.Error("tcp transport bad frame", zap.String("remote", conn.RemoteAddr().String()), zap.Error(err))
		return gnet.Close
	}
	return gnet.None
}

func (c *Client) Subscribe(subject string, subscriber iface.ISubscriber) (iface.ISubscription, error) {
	if !c.running.Load() || c.IsStop() {
		return nil, errs.ErrTransportNotRunning
	}
	c.subs.Set(subject, subscriber)
	return &subscription{c: c, subject: subject}, nil
}

func (c *Client) Publish(subject string, data []byte) error {
	if c.IsStop() {
		return errs.ErrTransportNotRunning
	}
	addr, err := addrOf(subject)
	if err != nil {
		return err
	}
	if err = checkFrame(subject, data, c.cfg.MaxFrame); err != nil {
		return errs.ErrPublishFailed(subject, err)
	}
	conn, err := c.dial(addr)
	if err != nil {
		return errs.ErrPublishFailed(subject, err)
	}
	if err = conn.write(encode(subject, data)); err != nil {
		c.conns.Delete(addr)
		conn.close()
		return errs.ErrPublishFailed(subject, err)
	}
	return nil
}

func (c *Client) dial(addr string) (*outConn, error) {
	if conn, ok := c.conns.Get(addr); ok {
		return conn, nil
	}
	c.dialMu.Lock()
	defer c.dialMu.Unlock()
	if conn, ok := c.conns.Get(addr); ok {
		return conn, nil
	}
	raw, err := net.DialTimeout("tcp", addr, c.cfg.DialTimeout)
	if err != nil {
		return nil, err
	}
	conn := &outConn{conn: raw}
	c.conns.Set(addr, conn)
	// 对端不会回写，读协程只用来感知断开
	c.group.Go(func() {
		conn.drain()
		if cur, ok := c.conns.Get(addr); ok && cur == conn {
			c.conns.Delete(addr)
		}
	})
	return conn, nil
}

func (c *Client) Shutdown(ctx context.Context) error {
	if !c.Stop() {
		return nil
	}
	c.conns.Range(func(addr string, conn *outConn) bool {
		conn.close()
		return true
	})
	var err error
	if c.running.Load() {
		err = c.eng.Stop(ctx)
	}
	if wErr := c.group.Wait(ctx); wErr != nil && err == nil {
		err = wErr
	}
	return err
}

type subscription struct {
	c       *Client
	subject string
}

func (s *subscription) Unsubscribe() error {
	s.c.subs.Delete(s.subject)
	return nil
}

type outConn struct {
	mu   sync.Mutex
	conn net.Conn
}

func (o *outConn) write(b []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	_ = o.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	_, err := o.conn.Write(b)
	return err
}

func (o *outConn) drain() {
	buf := make([]byte, 512)
	for {
		if _, err := o.conn.Read(buf); err != nil {
			return
		}
	}
}

func (o *outConn) close() {
	_ = o.conn.Close()
}

// addrOf 从 tcp://host:port/... 中取出拨号地址
func addrOf(subject string) (string, error) {
	u, err := url.Parse(subject)
	if err != nil {
		return "", errs.ErrInvalidURLReason(subject, err.Error())
	}
	if u.Scheme != Name || u.Host == "" {
		return "", errs.ErrInvalidURLReason(subject, fmt.Sprintf("want %s://host:port", Name))
	}
	return u.Host, nil
}
