// Package host URL 注册表与跨进程投递：本地 actor 的创建与查找、远端代理引用、入站消息路由
package host

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/duke-git/lancet/v2/maputil"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/dzm2020/gactor/internal/actor"
	"github.com/dzm2020/gactor/internal/config"
	"github.com/dzm2020/gactor/internal/errs"
	"github.com/dzm2020/gactor/pkg/glog"
	"github.com/dzm2020/gactor/pkg/lib/grs"
	"github.com/dzm2020/gactor/pkg/lib/stopper"
	"github.com/dzm2020/gactor/pkg/messageQue"
	"github.com/dzm2020/gactor/pkg/messageQue/iface"
	"github.com/dzm2020/gactor/pkg/serializer"

	_ "github.com/dzm2020/gactor/pkg/messageQue/provider/local"
	_ "github.com/dzm2020/gactor/pkg/messageQue/provider/nats"
	_ "github.com/dzm2020/gactor/pkg/messageQue/provider/tcp"
)

var _ iface.ISubscriber = (*Host)(nil)

// Host 管理本进程内 URL 前缀相同的一组 actor，并通过传输与其他主机互通
type Host struct {
	stopper.Stopper
	cfg     *config.Config
	url     string
	mq      iface.IMessageQue
	codec   serializer.ISerializer
	sub     iface.ISubscription
	actors  *maputil.ConcurrentMap[string, *actor.Actor]
	pending *pendingTable
	group   *grs.Group
	self    *actor.Actor
	started atomic.Bool
	spawnMu sync.Mutex
}

func New(cfg *config.Config) (*Host, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	codec, err := envelopeCodec(cfg.Host.Codec)
	if err != nil {
		return nil, err
	}
	mq, err := messageQue.NewFromConfig(cfg.Transport)
	if err != nil {
		return nil, err
	}
	h := &Host{
		cfg:     cfg,
		url:     strings.TrimRight(cfg.Host.URL, "/"),
		mq:      mq,
		codec:   codec,
		actors:  maputil.NewConcurrentMap[string, *actor.Actor](16),
		pending: newPendingTable(cfg.Actor.PendingTTL),
	}
	h.group = grs.NewGroup(func(r any) {
		glog.Error("host actor loop panic", zap.String("host", h.url), zap.Any("err", r))
	})
	return h, nil
}

// URL 主机地址，也是主机自身 actor 的 URL
func (h *Host) URL() string {
	return h.url
}

func (h *Host) Transport() iface.IMessageQue {
	return h.mq
}

// Start 启动传输、订阅本主机主题并注册主机 actor
func (h *Host) Start(ctx context.Context) error {
	if h.IsStop() {
		return errs.ErrHostShuttingDown
	}
	if !h.started.CompareAndSwap(false, true) {
		return nil
	}
	actor.SetDefaultAskTimeout(h.cfg.Actor.AskTimeout)
	self, err := actor.Spawn(h.url, HostClass, &hostActor{h: h}, h.actorOptions(h.url)...)
	if err != nil {
		h.started.Store(false)
		return err
	}
	h.self = self
	fail := func(err error) error {
		_ = self.Stop()
		h.started.Store(false)
		return err
	}
	if err = h.mq.Run(ctx); err != nil {
		return fail(err)
	}
	if h.sub, err = h.mq.Subscribe(h.url, h); err != nil {
		_ = h.mq.Shutdown(ctx)
		return fail(err)
	}
	glog.Info("host started", zap.String("url", h.url), zap.String("transport", h.cfg.Transport.Type),
		zap.String("codec", h.codec.Name()))
	return nil
}

// Shutdown 停止全部本地 actor 并等待处理协程退出，然后关闭传输。重复调用无副作用
func (h *Host) Shutdown(ctx context.Context) error {
	if !h.Stop() {
		return nil
	}
	if !h.started.Load() {
		return nil
	}
	if h.sub != nil {
		_ = h.sub.Unsubscribe()
	}
	h.actors.Range(func(_ string, a *actor.Actor) bool {
		_ = a.Stop()
		return true
	})
	if h.self != nil {
		_ = h.self.Stop()
	}
	err := h.group.Wait(ctx)
	h.pending.clear()
	if mqErr := h.mq.Shutdown(ctx); mqErr != nil && err == nil {
		err = mqErr
	}
	glog.Info("host shutdown", zap.String("url", h.url), zap.Error(err))
	return err
}

func (h *Host) ready() error {
	if h.IsStop() {
		return errs.ErrHostShuttingDown
	}
	if !h.started.Load() {
		return errs.ErrHostNotStarted
	}
	return nil
}

func (h *Host) actorOptions(url string) []actor.Option {
	return []actor.Option{
		actor.WithGroup(h.group),
		actor.WithMiddlewares(actor.LogMiddleware(url, h.cfg.Actor.SlowInvoke)),
	}
}

// Spawn 以 <URL>/<id> 创建本地 actor。class 为空时使用 actor.ClassOf(obj)。
// 同名 actor 仍在运行时返回 errs.ErrActorAlreadyExists
func (h *Host) Spawn(id string, class actor.IClass, obj any) (*actor.Actor, error) {
	if err := h.ready(); err != nil {
		return nil, err
	}
	id = strings.Trim(id, "/")
	if id == "" || strings.ContainsAny(id, "/?#") {
		return nil, errs.ErrInvalidURLReason(id, "bad actor id")
	}
	if class == nil {
		class = actor.ClassOf(obj)
	}
	url := h.url + "/" + id

	h.spawnMu.Lock()
	defer h.spawnMu.Unlock()
	if old, ok := h.actors.Get(url); ok && old.IsAlive() {
		return nil, errs.ErrActorExists(url)
	}
	a, err := actor.Spawn(url, class, obj, h.actorOptions(url)...)
	if err != nil {
		return nil, err
	}
	h.actors.Set(url, a)
	return a, nil
}

// Lookup 按 id 取本地 actor，空 id 为主机自身
func (h *Host) Lookup(id string) (*actor.Actor, error) {
	url := h.url
	if id = strings.Trim(id, "/"); id != "" {
		url += "/" + id
	}
	if a := h.resolve(url); a != nil {
		return a, nil
	}
	return nil, errs.ErrActorNotFoundURL(url)
}

// LookupURL 按 URL 取引用。本主机的 URL 返回本地 actor 的引用，
// 其他主机的 URL 按 class 构造代理引用，不校验远端是否存在
func (h *Host) LookupURL(rawURL string, class actor.IClass) (*actor.ActorRef, error) {
	hostURL, _, err := SplitURL(rawURL)
	if err != nil {
		return nil, err
	}
	if hostURL == h.url {
		if a := h.resolve(strings.TrimRight(rawURL, "/")); a != nil {
			return a.Ref(), nil
		}
		return nil, errs.ErrActorNotFoundURL(rawURL)
	}
	if class == nil {
		return nil, errs.ErrClassIsNil
	}
	return actor.NewRef(strings.TrimRight(rawURL, "/"), class, h.proxy(hostURL, rawURL)), nil
}

// Remote 远端主机自身的引用，可 ask Lookup/Spawned
func (h *Host) Remote(hostURL string) (*actor.ActorRef, error) {
	return h.LookupURL(hostURL, HostClass)
}

// Spawned 本地 actor 的 URL，按字典序
func (h *Host) Spawned() []string {
	var urls []string
	h.actors.Range(func(url string, _ *actor.Actor) bool {
		urls = append(urls, url)
		return true
	})
	slices.Sort(urls)
	return urls
}

func (h *Host) resolve(url string) *actor.Actor {
	if url == h.url {
		return h.self
	}
	if a, ok := h.actors.Get(url); ok {
		return a
	}
	return nil
}

// SplitURL 拆分 actor URL 为主机部分和 id，主机自身的 id 为空
func SplitURL(rawURL string) (hostURL, id string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", errs.ErrInvalidURLReason(rawURL, err.Error())
	}
	if u.Scheme == "" || u.Host == "" {
		return "", "", errs.ErrInvalidURLReason(rawURL, "want scheme://host/id")
	}
	return u.Scheme + "://" + u.Host, strings.Trim(u.Path, "/"), nil
}
