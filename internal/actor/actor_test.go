package actor

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dzm2020/gactor/internal/errs"
)

var counterClass = &Class{
	Name: "Counter",
	Tell: []string{"Record", "Block"},
	Ask:  []string{"Items", "Add", "Fail", "Sleep", "Panic", "Missing", "Join"},
}

type counter struct {
	items []int
}

func (c *counter) Record(v int) {
	c.items = append(c.items, v)
}

func (c *counter) Items() []int {
	return append([]int(nil), c.items...)
}

func (c *counter) Add(a, b int) int {
	return a + b
}

func (c *counter) Fail() (int, error) {
	return 0, errors.New("boom")
}

func (c *counter) Sleep(d time.Duration, tag string) string {
	time.Sleep(d)
	return tag
}

func (c *counter) Block(ch chan struct{}) {
	<-ch
}

func (c *counter) Panic() {
	panic("bad state")
}

func (c *counter) Join(sep string, parts ...string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return out
}

func spawnCounter(t *testing.T, url string) *Actor {
	t.Helper()
	a, err := Spawn(url, counterClass, &counter{})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = a.Stop()
	})
	return a
}

func TestSpawnValidation(t *testing.T) {
	_, err := Spawn("", counterClass, &counter{})
	assert.ErrorIs(t, err, errs.ErrInvalidURL)
	_, err = Spawn("local://h/1", counterClass, nil)
	assert.ErrorIs(t, err, errs.ErrObjectIsNil)
	var nilCounter *counter
	_, err = Spawn("local://h/1", counterClass, nilCounter)
	assert.ErrorIs(t, err, errs.ErrObjectIsNil)
	_, err = Spawn("local://h/1", nil, &counter{})
	assert.ErrorIs(t, err, errs.ErrClassIsNil)
}

func TestFIFOWithinActor(t *testing.T) {
	a := spawnCounter(t, "local://h/fifo")
	want := make([]int, 0, 200)
	for i := 0; i < 200; i++ {
		require.NoError(t, a.Tell("Record", i))
		want = append(want, i)
	}
	result, err := a.Ask(time.Second, "Items")
	require.NoError(t, err)
	require.NoError(t, result.Err)
	assert.Equal(t, want, result.Value)
}

func TestTellIsNonBlocking(t *testing.T) {
	a := spawnCounter(t, "local://h/tell")
	release := make(chan struct{})
	defer close(release)

	returned := make(chan struct{})
	go func() {
		_ = a.Tell("Block", release)
		_ = a.Tell("Record", 1)
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("tell blocked on a busy actor")
	}
	assert.True(t, a.IsAlive())
}

func TestAskRoundTrip(t *testing.T) {
	a := spawnCounter(t, "local://h/ask")

	result, err := a.Ask(time.Second, "Add", 1, 2)
	require.NoError(t, err)
	assert.NoError(t, result.Err)
	assert.Equal(t, 3, result.Value)

	// 解码得到的数值类型按参数类型转换
	result, err = a.Ask(time.Second, "Add", int64(4), uint8(5))
	require.NoError(t, err)
	assert.Equal(t, 9, result.Value)

	result, err = a.Ask(time.Second, "Fail")
	require.NoError(t, err, "invocation error must not surface at the call site")
	assert.True(t, result.Failed())
	assert.EqualError(t, result.Err, "boom")

	result, err = a.Ask(time.Second, "Join", "-", "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, "a-b-c", result.Value)

	result, err = a.Ask(time.Second, "Join", "-", []any{"x", "y"})
	require.NoError(t, err)
	assert.ErrorIs(t, result.Err, errs.ErrBadParams)
}

func TestAskCapturesFailures(t *testing.T) {
	a := spawnCounter(t, "local://h/failures")

	result, err := a.Ask(time.Second, "Panic")
	require.NoError(t, err)
	assert.ErrorIs(t, result.Err, errs.ErrInvocationPanic)

	result, err = a.Ask(time.Second, "Missing")
	require.NoError(t, err)
	assert.ErrorIs(t, result.Err, errs.ErrMethodNotFound)

	result, err = a.Ask(time.Second, "Add", 1)
	require.NoError(t, err)
	assert.ErrorIs(t, result.Err, errs.ErrBadParams)

	result, err = a.Ask(time.Second, "Add", "1", 2)
	require.NoError(t, err)
	assert.ErrorIs(t, result.Err, errs.ErrBadParams)

	// 失败之后循环仍在运行
	result, err = a.Ask(time.Second, "Add", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Value)
	assert.True(t, a.IsAlive())
}

func TestAskUndeclared(t *testing.T) {
	a := spawnCounter(t, "local://h/undeclared")
	_, err := a.Ask(time.Second, "Record", 1)
	assert.ErrorIs(t, err, errs.ErrMethodNotDeclared)
	assert.ErrorIs(t, a.Tell("Add", 1, 2), errs.ErrMethodNotDeclared)
	_, err = a.Future("Record", 1)
	assert.ErrorIs(t, err, errs.ErrMethodNotDeclared)
}

func TestAskTimeout(t *testing.T) {
	a := spawnCounter(t, "local://h/timeout")
	_, err := a.Ask(20*time.Millisecond, "Sleep", 200*time.Millisecond, "late")
	assert.ErrorIs(t, err, errs.ErrTimeout)

	// 被放弃的请求仍会被处理，不影响后续调用
	result, err := a.Ask(time.Second, "Add", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Value)
}

func TestAskCorrelationIDPassThrough(t *testing.T) {
	a := spawnCounter(t, "local://h/cid")
	reply := NewMailbox()
	require.NoError(t, a.Send(NewAsk("Add", []any{1, 2}, reply, "")))
	require.NoError(t, a.Send(NewAsk("Add", []any{3, 4}, reply, "abc")))

	first, err := reply.Receive(time.Second)
	require.NoError(t, err)
	assert.Equal(t, MsgAskResponse, first.Type)
	assert.Empty(t, first.CorrelationID)
	assert.Equal(t, 3, first.Result.Value)

	second, err := reply.Receive(time.Second)
	require.NoError(t, err)
	assert.Equal(t, "abc", second.CorrelationID)
	assert.Equal(t, 7, second.Result.Value)
}

func TestFutureIndependence(t *testing.T) {
	slow := spawnCounter(t, "local://h/slow")
	fast := spawnCounter(t, "local://h/fast")

	slowF, err := slow.Future("Sleep", 300*time.Millisecond, "slow")
	require.NoError(t, err)
	fastF, err := fast.Future("Sleep", time.Millisecond, "fast")
	require.NoError(t, err)
	assert.NotEqual(t, slowF.CorrelationID(), fastF.CorrelationID())

	result, err := fastF.Result(time.Second)
	require.NoError(t, err)
	assert.Equal(t, "fast", result.Value)
	assert.False(t, slowF.Done(), "later future resolved first")

	result, err = slowF.Result(time.Second)
	require.NoError(t, err)
	assert.Equal(t, "slow", result.Value)
	assert.True(t, slowF.Done())
}

func TestFutureResponsesMatchedByCorrelationID(t *testing.T) {
	slow := spawnCounter(t, "local://h/slow-raw")
	fast := spawnCounter(t, "local://h/fast-raw")

	reply := NewMailbox()
	require.NoError(t, slow.Send(NewFuture("Sleep", []any{200 * time.Millisecond, "slow"}, reply, "c-slow")))
	require.NoError(t, fast.Send(NewFuture("Sleep", []any{time.Millisecond, "fast"}, reply, "c-fast")))

	first, err := reply.Receive(time.Second)
	require.NoError(t, err)
	second, err := reply.Receive(time.Second)
	require.NoError(t, err)

	assert.Equal(t, MsgFutureResponse, first.Type)
	assert.Equal(t, "c-fast", first.CorrelationID)
	assert.Equal(t, "fast", first.Result.Value)
	assert.Equal(t, "c-slow", second.CorrelationID)
	assert.Equal(t, "slow", second.Result.Value)
}

func TestFutureTimeoutAndCallbacks(t *testing.T) {
	a := spawnCounter(t, "local://h/future")
	f, err := a.Future("Sleep", 100*time.Millisecond, "done")
	require.NoError(t, err)

	_, err = f.Result(10 * time.Millisecond)
	assert.ErrorIs(t, err, errs.ErrTimeout)

	var wg sync.WaitGroup
	wg.Add(2)
	got := make(chan any, 2)
	f.OnComplete(func(r Result) {
		got <- r.Value
		wg.Done()
	})
	result, err := f.Result(0)
	require.NoError(t, err)
	assert.Equal(t, "done", result.Value)

	// 完成后注册的回调立即执行
	f.OnComplete(func(r Result) {
		got <- r.Value
		wg.Done()
	})
	wg.Wait()
	assert.Equal(t, "done", <-got)
	assert.Equal(t, "done", <-got)
}

func TestFutureWatcherExits(t *testing.T) {
	a := spawnCounter(t, "local://h/watcher")
	// 等之前测试的 watcher 退出，计数稳定后再取基线
	before := int64(-1)
	require.Eventually(t, func() bool {
		n := Watching()
		stable := n == before
		before = n
		return stable
	}, time.Second, 20*time.Millisecond)
	f, err := a.Future("Sleep", 50*time.Millisecond, "w")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, Watching(), before+1)

	result, err := f.Result(time.Second)
	require.NoError(t, err)
	assert.Equal(t, "w", result.Value)
	assert.Eventually(t, func() bool { return Watching() <= before }, time.Second, 5*time.Millisecond)
}

func TestFutureError(t *testing.T) {
	a := spawnCounter(t, "local://h/future-err")
	f, err := a.Future("Fail")
	require.NoError(t, err)
	result, err := f.Result(time.Second)
	require.NoError(t, err)
	assert.EqualError(t, result.Err, "boom")
}

func TestStopTerminality(t *testing.T) {
	a, err := Spawn("local://h/stop", counterClass, &counter{})
	require.NoError(t, err)
	assert.True(t, a.IsAlive())
	assert.Equal(t, StateRunning, a.State())

	require.NoError(t, a.Stop())
	select {
	case <-a.Done():
	case <-time.After(time.Second):
		t.Fatal("actor loop did not exit")
	}
	assert.False(t, a.IsAlive())
	assert.Equal(t, StateStopped, a.State())

	// 停止后仍可投递，但不会被处理
	assert.NoError(t, a.Tell("Record", 1))
	assert.NoError(t, a.Stop())
	_, err = a.Ask(50*time.Millisecond, "Items")
	assert.ErrorIs(t, err, errs.ErrTimeout)
	f, err := a.Future("Items")
	require.NoError(t, err)
	_, err = f.Result(50 * time.Millisecond)
	assert.ErrorIs(t, err, errs.ErrTimeout)
	assert.Equal(t, 4, a.Mailbox().Len())
}

func TestMessagesBeforeStopAreProcessed(t *testing.T) {
	c := &counter{}
	a, err := Spawn("local://h/drain", counterClass, c)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		require.NoError(t, a.Tell("Record", i))
	}
	require.NoError(t, a.Stop())
	<-a.Done()
	assert.Len(t, c.items, 10)
}

func TestMiddlewares(t *testing.T) {
	var mu sync.Mutex
	var trace []string
	mark := func(name string) InvokeMiddleware {
		return func(next InvokeFunc) InvokeFunc {
			return func(method string, params []any) Result {
				mu.Lock()
				trace = append(trace, fmt.Sprintf("%s:%s", name, method))
				mu.Unlock()
				return next(method, params)
			}
		}
	}
	a, err := Spawn("local://h/mw", counterClass, &counter{},
		WithMiddlewares(mark("outer"), mark("inner"), LogMiddleware("local://h/mw", time.Second)))
	require.NoError(t, err)
	defer a.Stop()

	result, err := a.Ask(time.Second, "Add", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Value)
	mu.Lock()
	assert.Equal(t, []string{"outer:Add", "inner:Add"}, trace)
	mu.Unlock()
}

func TestWithMailboxKeepsEarlyMessages(t *testing.T) {
	mb := NewMailbox()
	reply := NewMailbox()
	mb.Send(NewTell("Record", []any{7}))
	mb.Send(NewAsk("Items", nil, reply, "early"))

	a, err := Spawn("local://h/early", counterClass, &counter{}, WithMailbox(mb))
	require.NoError(t, err)
	defer a.Stop()

	msg, err := reply.Receive(time.Second)
	require.NoError(t, err)
	assert.Equal(t, "early", msg.CorrelationID)
	assert.Equal(t, []int{7}, msg.Result.Value)
}
