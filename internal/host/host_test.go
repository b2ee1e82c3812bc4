package host

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dzm2020/gactor/internal/actor"
	"github.com/dzm2020/gactor/internal/config"
	"github.com/dzm2020/gactor/internal/errs"
)

var counterClass = &actor.Class{
	Name: "Counter",
	Tell: []string{"Record"},
	Ask:  []string{"Items", "Add", "Fail", "Sleep", "Peers", "Echo"},
	Ref:  []string{"Peers"},
}

type counter struct {
	mu    sync.Mutex
	items []int
	peers map[string]*actor.Actor
}

func (c *counter) Record(v int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, v)
}

func (c *counter) Items() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.items...)
}

func (c *counter) Add(a, b int) int {
	return a + b
}

func (c *counter) Fail() error {
	return errors.New("boom")
}

func (c *counter) Sleep(d time.Duration) string {
	time.Sleep(d)
	return "awake"
}

func (c *counter) Peers() map[string]*actor.Actor {
	return c.peers
}

// Echo 原样返回引用参数，验证入站参数中的引用被重新绑定
func (c *counter) Echo(ref *actor.ActorRef) (int, error) {
	r, err := ref.Ask(time.Second, "Add", 20, 22)
	if err != nil {
		return 0, err
	}
	v, err := r.Get()
	if err != nil {
		return 0, err
	}
	return toInt(v), nil
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int8:
		return int(n)
	case int16:
		return int(n)
	case int32:
		return int(n)
	case int64:
		return int(n)
	case uint8:
		return int(n)
	case uint16:
		return int(n)
	case uint32:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	}
	panic(fmt.Sprintf("not an int: %T", v))
}

func newLocalHost(t *testing.T, name string, mutate ...func(*config.Config)) *Host {
	t.Helper()
	cfg := config.Default()
	cfg.Host.URL = "local://" + name
	cfg.Transport.Config = map[string]any{"bus": t.Name()}
	cfg.Glog.PrintConsole = false
	for _, m := range mutate {
		m(cfg)
	}
	return startHost(t, cfg)
}

func startHost(t *testing.T, cfg *config.Config) *Host {
	t.Helper()
	h, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, h.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = h.Shutdown(ctx)
	})
	return h
}

func TestSpawnAndLookup(t *testing.T) {
	h := newLocalHost(t, "a")
	a, err := h.Spawn("1", counterClass, &counter{})
	require.NoError(t, err)
	assert.Equal(t, "local://a/1", a.URL())

	_, err = h.Spawn("1", counterClass, &counter{})
	assert.ErrorIs(t, err, errs.ErrActorAlreadyExists)
	_, err = h.Spawn("x/y", counterClass, &counter{})
	assert.ErrorIs(t, err, errs.ErrInvalidURL)

	got, err := h.Lookup("1")
	require.NoError(t, err)
	assert.Same(t, a, got)
	_, err = h.Lookup("2")
	assert.ErrorIs(t, err, errs.ErrActorNotFound)

	ref, err := h.LookupURL("local://a/1", nil)
	require.NoError(t, err)
	assert.True(t, ref.Equal(a))
	_, err = h.LookupURL("local://a/2", counterClass)
	assert.ErrorIs(t, err, errs.ErrActorNotFound)
	_, err = h.LookupURL("not a url", counterClass)
	assert.ErrorIs(t, err, errs.ErrInvalidURL)

	self, err := h.Lookup("")
	require.NoError(t, err)
	assert.Equal(t, "local://a", self.URL())
	assert.Equal(t, []string{"local://a/1"}, h.Spawned())

	// 停止后可以复用 id
	require.NoError(t, a.Stop())
	<-a.Done()
	again, err := h.Spawn("1", counterClass, &counter{})
	require.NoError(t, err)
	assert.True(t, again.Equal(a))
	assert.NotSame(t, a, again)
}

func TestHostNotStarted(t *testing.T) {
	cfg := config.Default()
	cfg.Transport.Config = map[string]any{"bus": t.Name()}
	h, err := New(cfg)
	require.NoError(t, err)
	_, err = h.Spawn("1", counterClass, &counter{})
	assert.ErrorIs(t, err, errs.ErrHostNotStarted)
	require.NoError(t, h.Shutdown(context.Background()))
	assert.ErrorIs(t, h.Start(context.Background()), errs.ErrHostShuttingDown)

	cfg.Transport.Type = "pigeon"
	_, err = New(cfg)
	assert.ErrorIs(t, err, errs.ErrUnknownTransport)
}

func TestRemoteLookupReferenceEquality(t *testing.T) {
	ha := newLocalHost(t, "a")
	hb := newLocalHost(t, "b")

	local, err := ha.Spawn("1", counterClass, &counter{})
	require.NoError(t, err)

	remote, err := hb.Remote(ha.URL())
	require.NoError(t, err)
	result, err := remote.Ask(time.Second, "Lookup", "1")
	require.NoError(t, err)
	require.NoError(t, result.Err)

	found, ok := result.Value.(*actor.ActorRef)
	require.True(t, ok, "got %T", result.Value)
	assert.True(t, found.Equal(local))
	assert.True(t, local.Equal(found))
	assert.Equal(t, local.Hash(), found.Hash())
	assert.Equal(t, local.String(), found.String())
	assert.NotSame(t, local.Ref(), found)
	assert.Equal(t, 1, actor.NewRefSet(local, found).Len())

	direct, err := hb.LookupURL("local://a/1", counterClass)
	require.NoError(t, err)
	assert.True(t, direct.Equal(found))
	assert.Equal(t, 1, actor.NewRefSet(local, found, direct).Len())

	// 重建的引用可以直接使用
	sum, err := found.Ask(time.Second, "Add", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, toInt(sum.Value))

	result, err = remote.Ask(time.Second, "Lookup", "missing")
	require.NoError(t, err)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), errs.ErrActorNotFound.Error())

	result, err = remote.Ask(time.Second, "Spawned")
	require.NoError(t, err)
	assert.Equal(t, []any{"local://a/1"}, result.Value)
}

func TestRemoteProtocols(t *testing.T) {
	ha := newLocalHost(t, "a")
	hb := newLocalHost(t, "b")
	c := &counter{}
	_, err := ha.Spawn("1", counterClass, c)
	require.NoError(t, err)

	ref, err := hb.LookupURL("local://a/1", counterClass)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		require.NoError(t, ref.Tell("Record", i))
	}
	result, err := ref.Ask(time.Second, "Items")
	require.NoError(t, err)
	items := result.Value.([]any)
	require.Len(t, items, 50)
	for i, v := range items {
		assert.Equal(t, i, toInt(v))
	}

	result, err = ref.Ask(time.Second, "Fail")
	require.NoError(t, err)
	var remoteErr *errs.RemoteError
	require.ErrorAs(t, result.Err, &remoteErr)
	assert.Equal(t, "boom", remoteErr.Msg)

	f, err := ref.Future("Add", 2, 3)
	require.NoError(t, err)
	result, err = f.Result(time.Second)
	require.NoError(t, err)
	assert.Equal(t, 5, toInt(result.Value))

	require.NoError(t, ref.Stop())
	_, err = ref.Ask(100*time.Millisecond, "Items")
	assert.ErrorIs(t, err, errs.ErrTimeout)
}

func TestRemoteUnknownActor(t *testing.T) {
	ha := newLocalHost(t, "a")
	hb := newLocalHost(t, "b")
	_ = ha

	ref, err := hb.LookupURL("local://a/ghost", counterClass)
	require.NoError(t, err)
	result, err := ref.Ask(time.Second, "Items")
	require.NoError(t, err)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "local://a/ghost")

	f, err := ref.Future("Items")
	require.NoError(t, err)
	result, err = f.Result(time.Second)
	require.NoError(t, err)
	assert.Error(t, result.Err)
	assert.NoError(t, ref.Tell("Record", 1))
}

func TestRemoteReferenceResults(t *testing.T) {
	ha := newLocalHost(t, "a")
	hb := newLocalHost(t, "b")

	p1, err := ha.Spawn("p1", counterClass, &counter{})
	require.NoError(t, err)
	p2, err := hb.Spawn("p2", counterClass, &counter{})
	require.NoError(t, err)
	_, err = ha.Spawn("owner", counterClass, &counter{peers: map[string]*actor.Actor{"x": p1, "y": p2}})
	require.NoError(t, err)

	owner, err := hb.LookupURL("local://a/owner", counterClass)
	require.NoError(t, err)
	result, err := owner.Ask(time.Second, "Peers")
	require.NoError(t, err)
	require.NoError(t, result.Err)
	peers, ok := result.Value.(map[string]any)
	require.True(t, ok, "got %T", result.Value)

	x := peers["x"].(*actor.ActorRef)
	y := peers["y"].(*actor.ActorRef)
	assert.True(t, x.Equal(actor.NewRef("local://a/p1", nil, nil)))
	assert.True(t, y.Equal(p2))

	// y 属于 b 本地，直接投递到邮箱；x 走代理
	sum, err := y.Ask(time.Second, "Add", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, toInt(sum.Value))
	sum, err = x.Ask(time.Second, "Add", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, toInt(sum.Value))
}

func TestRemoteReferenceParams(t *testing.T) {
	ha := newLocalHost(t, "a")
	hb := newLocalHost(t, "b")

	_, err := ha.Spawn("caller", counterClass, &counter{})
	require.NoError(t, err)
	target, err := hb.Spawn("target", counterClass, &counter{})
	require.NoError(t, err)

	caller, err := hb.LookupURL("local://a/caller", counterClass)
	require.NoError(t, err)
	// a 上的 caller 收到指向 b 的引用，再反向 ask
	result, err := caller.Ask(2*time.Second, "Echo", target)
	require.NoError(t, err)
	require.NoError(t, result.Err)
	assert.Equal(t, 42, toInt(result.Value))
}

func TestRemoteCodecs(t *testing.T) {
	for _, name := range []string{"msgpack", "json", "pbstruct"} {
		t.Run(name, func(t *testing.T) {
			withCodec := func(cfg *config.Config) { cfg.Host.Codec = name }
			ha := newLocalHost(t, "a", withCodec)
			hb := newLocalHost(t, "b", withCodec)

			p1, err := ha.Spawn("p1", counterClass, &counter{})
			require.NoError(t, err)
			target, err := hb.Spawn("target", counterClass, &counter{})
			require.NoError(t, err)
			_, err = ha.Spawn("owner", counterClass, &counter{peers: map[string]*actor.Actor{"x": p1, "y": target}})
			require.NoError(t, err)

			remote, err := hb.Remote(ha.URL())
			require.NoError(t, err)
			result, err := remote.Ask(time.Second, "Lookup", "p1")
			require.NoError(t, err)
			require.NoError(t, result.Err)
			found, ok := result.Value.(*actor.ActorRef)
			require.True(t, ok, "got %T", result.Value)
			assert.True(t, found.Equal(p1))
			assert.Equal(t, p1.String(), found.String())
			assert.Equal(t, p1.AskMethods(), found.AskMethods())

			sum, err := found.Ask(time.Second, "Add", 1, 2)
			require.NoError(t, err)
			assert.Equal(t, 3, toInt(sum.Value))

			owner, err := hb.LookupURL("local://a/owner", counterClass)
			require.NoError(t, err)
			result, err = owner.Ask(time.Second, "Peers")
			require.NoError(t, err)
			peers := result.Value.(map[string]any)
			assert.True(t, peers["x"].(*actor.ActorRef).Equal(p1))
			assert.True(t, peers["y"].(*actor.ActorRef).Equal(target))

			result, err = owner.Ask(2*time.Second, "Echo", target)
			require.NoError(t, err)
			require.NoError(t, result.Err)
			assert.Equal(t, 42, toInt(result.Value))

			result, err = owner.Ask(time.Second, "Fail")
			require.NoError(t, err)
			assert.EqualError(t, result.Err, "boom")
		})
	}
}

func TestEnvelopeCodecConfig(t *testing.T) {
	for _, name := range []string{"proto", "gob"} {
		cfg := config.Default()
		cfg.Host.Codec = name
		_, err := New(cfg)
		assert.Error(t, err, name)
	}
	cfg := config.Default()
	cfg.Host.Codec = ""
	h, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "msgpack", h.codec.Name())
}

func TestPendingExpires(t *testing.T) {
	ha := newLocalHost(t, "a")
	hb := newLocalHost(t, "b", func(cfg *config.Config) {
		cfg.Actor.PendingTTL = 50 * time.Millisecond
	})
	_, err := ha.Spawn("1", counterClass, &counter{})
	require.NoError(t, err)

	ref, err := hb.LookupURL("local://a/1", counterClass)
	require.NoError(t, err)
	_, err = ref.Ask(400*time.Millisecond, "Sleep", 200*time.Millisecond)
	assert.ErrorIs(t, err, errs.ErrTimeout)
	assert.Zero(t, hb.pending.len())

	result, err := ref.Ask(time.Second, "Add", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, toInt(result.Value))
	assert.Zero(t, hb.pending.len())
}

func TestShutdownStopsActors(t *testing.T) {
	cfg := config.Default()
	cfg.Host.URL = "local://s"
	cfg.Transport.Config = map[string]any{"bus": t.Name()}
	h, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, h.Start(context.Background()))

	a, err := h.Spawn("1", counterClass, &counter{})
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, h.Shutdown(ctx))
	assert.False(t, a.IsAlive())
	require.NoError(t, h.Shutdown(ctx))

	_, err = h.Spawn("2", counterClass, &counter{})
	assert.ErrorIs(t, err, errs.ErrHostShuttingDown)
	ref, err := h.LookupURL("local://elsewhere/1", counterClass)
	require.NoError(t, err)
	result, err := ref.Ask(time.Second, "Items")
	require.NoError(t, err)
	assert.ErrorIs(t, result.Err, errs.ErrHostShuttingDown)
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func newTCPHost(t *testing.T) *Host {
	t.Helper()
	addr := freeAddr(t)
	cfg := config.Default()
	cfg.Host.URL = "tcp://" + addr
	cfg.Transport.Type = "tcp"
	cfg.Transport.Config = map[string]any{"listen": addr}
	cfg.Glog.PrintConsole = false
	return startHost(t, cfg)
}

func TestTCPHosts(t *testing.T) {
	ha := newTCPHost(t)
	hb := newTCPHost(t)

	local, err := ha.Spawn("1", counterClass, &counter{})
	require.NoError(t, err)

	remote, err := hb.Remote(ha.URL())
	require.NoError(t, err)
	result, err := remote.Ask(3*time.Second, "Lookup", "1")
	require.NoError(t, err)
	require.NoError(t, result.Err)
	found := result.Value.(*actor.ActorRef)
	assert.True(t, found.Equal(local))
	assert.Equal(t, local.Hash(), found.Hash())

	for i := 0; i < 20; i++ {
		require.NoError(t, found.Tell("Record", i))
	}
	result, err = found.Ask(3*time.Second, "Items")
	require.NoError(t, err)
	items := result.Value.([]any)
	require.Len(t, items, 20)
	for i, v := range items {
		assert.Equal(t, i, toInt(v))
	}
}
