package actions

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/rileyhilliard/sysdeck/internal/errors"
	"github.com/rileyhilliard/sysdeck/internal/gateway"
	"github.com/rileyhilliard/sysdeck/internal/gateway/gatewaytest"
	"github.com/rileyhilliard/sysdeck/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	mu sync.Mutex
	n  int
}

func (c *counter) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
}

func (c *counter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func fixedClock(t time.Time) (func() time.Time, func(time.Duration)) {
	now := t
	var mu sync.Mutex
	return func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return now
		}, func(d time.Duration) {
			mu.Lock()
			defer mu.Unlock()
			now = now.Add(d)
		}
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	var cats []Category
	for _, g := range c.Groups() {
		cats = append(cats, g.Category)
	}
	assert.Equal(t, []Category{
		CategorySystem, CategorySettings, CategoryStorage, CategoryNetwork,
		CategoryDeveloper, CategoryCommands, CategoryDiagnostics,
	}, cats)

	reg, ok := c.Get("registry-editor")
	require.True(t, ok)
	assert.True(t, reg.Dangerous)

	explorer, ok := c.Get("restart-explorer")
	require.True(t, ok)
	assert.True(t, explorer.Dangerous)
	assert.Equal(t, CategorySystem, explorer.Category)

	temp, ok := c.Get("temp-files")
	require.True(t, ok)
	assert.False(t, temp.Dangerous)
	assert.Equal(t, CategoryStorage, temp.Category)

	ipconfig, ok := c.Get("ipconfig")
	require.True(t, ok)
	assert.Equal(t, KindResult, ipconfig.Kind)
	assert.Equal(t, "ipconfig /all", ipconfig.Description)

	for _, a := range c.All() {
		assert.NotNil(t, a.Run, a.Key)
		assert.False(t, a.Mutates, "catalog entries don't change host state: %s", a.Key)
	}
	assert.Equal(t, c.Len(), len(c.Keys()))
}

func TestNewCatalog_Rejects(t *testing.T) {
	a := OpenApp("x", "X", "x.exe", CategorySystem)

	_, err := NewCatalog(a, a)
	assert.True(t, errors.IsCode(err, errors.ErrAction))

	_, err = NewCatalog(Action{Key: "nil-run"})
	assert.True(t, errors.IsCode(err, errors.ErrAction))
}

func TestDispatch_Success(t *testing.T) {
	gw := gatewaytest.New().On(gateway.CmdOpenTaskManager, nil)
	now, _ := fixedClock(time.Unix(0, 0))
	q := NewQueue(now)
	d := NewDispatcher(gw, nil, q, WithLogger(logger.Noop()))

	o := d.Dispatch(context.Background(), "task-manager")

	assert.True(t, o.OK())
	assert.Equal(t, 1, gw.Count(gateway.CmdOpenTaskManager))
	notes := q.Active()
	require.Len(t, notes, 1)
	assert.Equal(t, NotifySuccess, notes[0].Kind)
	assert.Equal(t, 3000*time.Millisecond, notes[0].Duration)
	assert.False(t, d.IsBusy("task-manager"))
}

func TestDispatch_Failure(t *testing.T) {
	gw := gatewaytest.New().OnError(gateway.CmdOpenGUIApp, stderrors.New("access denied"))
	now, _ := fixedClock(time.Unix(0, 0))
	q := NewQueue(now)
	log := logger.NewBufferLogger()
	d := NewDispatcher(gw, nil, q, WithLogger(log))

	o := d.Dispatch(context.Background(), "services")

	require.Error(t, o.Err)
	assert.True(t, errors.IsCode(o.Err, errors.ErrRejected))
	notes := q.Active()
	require.Len(t, notes, 1)
	assert.Equal(t, NotifyError, notes[0].Kind)
	assert.Contains(t, notes[0].Message, "access denied")
	assert.Equal(t, 5000*time.Millisecond, notes[0].Duration)
	assert.True(t, log.Contains("warn", "services"))
	assert.Equal(t, "services.msc", gw.LastArgs(gateway.CmdOpenGUIApp).String("appName"))
}

func TestDispatch_CatalogShellActions(t *testing.T) {
	gw := gatewaytest.New().
		On(gateway.CmdRestartExplorer, nil).
		On(gateway.CmdCleanTempFiles, nil)
	d := NewDispatcher(gw, nil, NewQueue(nil),
		WithConfirmer(ConfirmFunc(func(context.Context, Action) bool { return true })),
		WithLogger(logger.Noop()))

	require.NoError(t, d.Dispatch(context.Background(), "restart-explorer").Err)
	require.NoError(t, d.Dispatch(context.Background(), "temp-files").Err)
	assert.Equal(t, 1, gw.Count(gateway.CmdRestartExplorer))
	assert.Equal(t, 1, gw.Count(gateway.CmdCleanTempFiles))
}

func TestDispatch_Unknown(t *testing.T) {
	q := NewQueue(nil)
	d := NewDispatcher(gatewaytest.New(), nil, q, WithLogger(logger.Noop()))

	o := d.Dispatch(context.Background(), "nope")
	assert.True(t, errors.IsCode(o.Err, errors.ErrAction))
	assert.Len(t, q.Active(), 1)
}

func TestDispatchResult(t *testing.T) {
	gw := gatewaytest.New().OnFunc(gateway.CmdRunCommand, func(ctx context.Context, args gateway.Args) (any, error) {
		return args.String("command") + " " + args.Strings("args")[0], nil
	})
	d := NewDispatcher(gw, nil, nil, WithLogger(logger.Noop()))

	out, err := d.DispatchResult(context.Background(), "ipconfig")
	require.NoError(t, err)
	assert.Equal(t, "ipconfig /all", out)
}

func TestRun_BusyIsNoOp(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	gw := gatewaytest.New().OnFunc(gateway.CmdKillProcess, func(ctx context.Context, args gateway.Args) (any, error) {
		close(started)
		<-release
		return nil, nil
	})
	inv := &counter{}
	q := NewQueue(nil)
	d := NewDispatcher(gw, nil, q, WithInvalidator(inv), WithLogger(logger.Noop()))
	kill := KillProcess(42, "node", false)

	done := make(chan Outcome)
	go func() { done <- d.Run(context.Background(), kill) }()
	<-started

	assert.True(t, d.IsBusy("kill:42"))
	second := d.Run(context.Background(), kill)
	assert.True(t, second.Skipped)
	assert.Equal(t, 1, gw.Count(gateway.CmdKillProcess), "busy dispatch must not invoke the operation")

	close(release)
	first := <-done
	assert.True(t, first.OK())
	assert.False(t, d.IsBusy("kill:42"))
	assert.Equal(t, 1, inv.count(), "mutating success invalidates once")
	assert.Equal(t, 42, gw.LastArgs(gateway.CmdKillProcess).Int("pid"))
}

func TestRun_PanicReleasesBusy(t *testing.T) {
	q := NewQueue(nil)
	d := NewDispatcher(gatewaytest.New(), nil, q, WithLogger(logger.Noop()))
	boom := Action{Key: "boom", Label: "Boom", Run: func(context.Context, gateway.Gateway) (string, error) {
		panic("kaboom")
	}}

	o := d.Run(context.Background(), boom)
	require.Error(t, o.Err)
	assert.Contains(t, o.Err.Error(), "kaboom")
	assert.False(t, d.IsBusy("boom"))
	assert.Empty(t, d.Busy())
}

func TestRun_FailureDoesNotInvalidate(t *testing.T) {
	gw := gatewaytest.New().OnError(gateway.CmdStopContainer, stderrors.New("no such container"))
	inv := &counter{}
	d := NewDispatcher(gw, nil, nil, WithInvalidator(inv), WithLogger(logger.Noop()))

	o := d.Run(context.Background(), StopContainer("abc", "web"))
	require.Error(t, o.Err)
	assert.Equal(t, 0, inv.count())
}

func TestRun_Confirmation(t *testing.T) {
	tests := []struct {
		name        string
		setting     bool
		confirmer   Confirmer
		wantCalls   int
		wantDecline bool
		wantAsked   bool
	}{
		{"declined", true, ConfirmFunc(func(context.Context, Action) bool { return false }), 0, true, true},
		{"accepted", true, ConfirmFunc(func(context.Context, Action) bool { return true }), 1, false, true},
		{"setting off skips prompt", false, ConfirmFunc(func(context.Context, Action) bool { return false }), 1, false, false},
		{"no confirmer declines", true, nil, 0, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := gatewaytest.New().On(gateway.CmdKillProcess, nil)
			asked := false
			var c Confirmer
			if tt.confirmer != nil {
				c = ConfirmFunc(func(ctx context.Context, a Action) bool {
					asked = true
					return tt.confirmer.Confirm(ctx, a)
				})
			}
			q := NewQueue(nil)
			d := NewDispatcher(gw, nil, q,
				WithConfirmer(c),
				WithConfirmSetting(func() bool { return tt.setting }),
				WithLogger(logger.Noop()))

			o := d.Run(context.Background(), KillProcess(4, "lsass.exe", true))

			assert.Equal(t, tt.wantDecline, o.Declined)
			assert.Equal(t, tt.wantCalls, gw.Count(gateway.CmdKillProcess))
			assert.Equal(t, tt.wantAsked, asked)
			if tt.wantDecline {
				notes := q.Active()
				require.Len(t, notes, 1)
				assert.Equal(t, NotifyInfo, notes[0].Kind)
			}
		})
	}
}

func TestRunConfirmed_SkipsPrompt(t *testing.T) {
	gw := gatewaytest.New().On(gateway.CmdKillProcess, nil)
	d := NewDispatcher(gw, nil, nil, WithLogger(logger.Noop()))
	kill := KillProcess(4, "lsass.exe", true)

	assert.True(t, d.NeedsConfirmation(kill))
	assert.True(t, d.RunConfirmed(context.Background(), kill).OK())
	assert.Equal(t, 1, gw.Count(gateway.CmdKillProcess))
}

func TestQueue_Expiry(t *testing.T) {
	now, advance := fixedClock(time.Unix(100, 0))
	q := NewQueue(now)

	ok := q.Notify(NotifySuccess, "saved")
	bad := q.Notify(NotifyError, "failed")
	info := q.Post(NotifyInfo, "sticky", 0)
	assert.Len(t, q.Active(), 3)

	advance(3 * time.Second)
	active := q.Active()
	require.Len(t, active, 2)
	assert.Equal(t, bad.ID, active[0].ID)

	advance(2 * time.Second)
	assert.Equal(t, 2, q.Prune())
	active = q.Active()
	require.Len(t, active, 1)
	assert.Equal(t, info.ID, active[0].ID)

	q.Dismiss(info.ID)
	q.Dismiss(ok.ID)
	assert.Empty(t, q.Active())
}

func TestParameterizedActions(t *testing.T) {
	kill := KillProcess(1234, "node", false)
	assert.Equal(t, "kill:1234", kill.Key)
	assert.True(t, kill.Mutates)
	assert.False(t, kill.Dangerous)
	assert.True(t, KillProcess(4, "System", true).Dangerous)

	assert.True(t, RestartContainer("abc", "web").Mutates)
	logs := ContainerLogs("abc", "web", 100)
	assert.Equal(t, KindResult, logs.Kind)
	assert.False(t, logs.Mutates)

	gw := gatewaytest.New().On(gateway.CmdContainerLogs, "line1\nline2")
	out, err := logs.Run(context.Background(), gw)
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2", out)
	assert.Equal(t, 100, gw.LastArgs(gateway.CmdContainerLogs).Int("tail"))
}
