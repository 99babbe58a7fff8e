package gateway

import (
	"context"
	"fmt"
	"testing"

	"github.com/rileyhilliard/sysdeck/internal/errors"
	"github.com/rileyhilliard/sysdeck/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgs(t *testing.T) {
	args := Args{
		"pid":     float64(4242),
		"id":      "abc123",
		"args":    []any{"-an"},
		"tail":    "200",
		"missing": nil,
	}

	assert.Equal(t, 4242, args.Int("pid"))
	assert.Equal(t, 200, args.Int("tail"))
	assert.Equal(t, 0, args.Int("nope"))
	assert.Equal(t, "abc123", args.String("id"))
	assert.Equal(t, []string{"-an"}, args.Strings("args"))
	assert.True(t, args.Has("missing"))
	assert.False(t, args.Has("nope"))

	v, err := args.RequireString("id")
	require.NoError(t, err)
	assert.Equal(t, "abc123", v)

	_, err = args.RequireString("command")
	assert.True(t, errors.IsCode(err, errors.ErrRejected))
}

func TestResultAccessors(t *testing.T) {
	m, err := Result{Value: map[string]any{"a": 1.0}}.Map()
	require.NoError(t, err)
	assert.Equal(t, 1.0, m["a"])

	m, err = Result{}.Map()
	require.NoError(t, err)
	assert.Empty(t, m)

	_, err = Result{Value: "text"}.Map()
	assert.True(t, errors.IsCode(err, errors.ErrMalformed))

	l, err := Result{}.List()
	require.NoError(t, err)
	assert.Empty(t, l)

	_, err = Result{Value: map[string]any{}}.List()
	assert.True(t, errors.IsCode(err, errors.ErrMalformed))

	s, err := Result{Value: "route table"}.Text()
	require.NoError(t, err)
	assert.Equal(t, "route table", s)

	_, err = Result{Value: 3.0}.Text()
	assert.True(t, errors.IsCode(err, errors.ErrMalformed))

	b, err := Result{Value: true}.Bool()
	require.NoError(t, err)
	assert.True(t, b)

	_, err = Result{}.Bool()
	assert.True(t, errors.IsCode(err, errors.ErrMalformed))
}

func TestRegistry_Invoke(t *testing.T) {
	type port struct {
		Port     int    `json:"port"`
		Protocol string `json:"protocol"`
	}

	reg := NewRegistry(logger.Noop())
	reg.Register(CmdPorts, func(ctx context.Context, args Args) (any, error) {
		return []port{{Port: 8080, Protocol: "TCP"}}, nil
	})
	reg.Register(CmdKillProcess, func(ctx context.Context, args Args) (any, error) {
		return nil, fmt.Errorf("access denied")
	})
	reg.Register(CmdStopContainer, func(ctx context.Context, args Args) (any, error) {
		panic("engine crashed")
	})
	reg.Register(CmdContainerLogs, func(ctx context.Context, args Args) (any, error) {
		return nil, errors.New(errors.ErrExec, "docker logs failed", "is docker running?")
	})

	t.Run("struct results become generic values", func(t *testing.T) {
		res, err := reg.Invoke(context.Background(), CmdPorts, nil)
		require.NoError(t, err)
		list, err := res.List()
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, map[string]any{"port": 8080.0, "protocol": "TCP"}, list[0])
	})

	t.Run("unknown command", func(t *testing.T) {
		_, err := reg.Invoke(context.Background(), "format_disk", nil)
		assert.True(t, errors.IsCode(err, errors.ErrUnknownCommand))
	})

	t.Run("handler error is rejected", func(t *testing.T) {
		_, err := reg.Invoke(context.Background(), CmdKillProcess, Args{"pid": 4})
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrRejected))
		assert.Contains(t, errors.Summary(err), "access denied")
	})

	t.Run("structured handler error keeps message", func(t *testing.T) {
		_, err := reg.Invoke(context.Background(), CmdContainerLogs, nil)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrRejected))
		assert.Contains(t, err.Error(), "docker logs failed")
		assert.Contains(t, err.Error(), "is docker running?")
	})

	t.Run("panic is rejected", func(t *testing.T) {
		_, err := reg.Invoke(context.Background(), CmdStopContainer, nil)
		assert.True(t, errors.IsCode(err, errors.ErrRejected))
		assert.Contains(t, errors.Summary(err), "engine crashed")
	})

	assert.Equal(t, []string{CmdPorts, CmdContainerLogs, CmdKillProcess, CmdStopContainer}, reg.Commands())
}

func TestGo_DeliversOneReply(t *testing.T) {
	reg := NewRegistry(logger.Noop())
	reg.Register(CmdDockerAvailable, func(ctx context.Context, args Args) (any, error) {
		return true, nil
	})

	reply, ok := <-Go(context.Background(), reg, CmdDockerAvailable, nil)
	require.True(t, ok)
	require.NoError(t, reply.Err)
	available, err := reply.Result.Bool()
	require.NoError(t, err)
	assert.True(t, available)
}

func TestCodecByName(t *testing.T) {
	c, err := CodecByName("")
	require.NoError(t, err)
	assert.Equal(t, CodecJSON, c.Name())

	c, err = CodecByName("CBOR")
	require.NoError(t, err)
	assert.Equal(t, CodecCBOR, c.Name())

	_, err = CodecByName("xml")
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestCBORCodec_GenericMaps(t *testing.T) {
	c, err := NewCBORCodec()
	require.NoError(t, err)

	data, err := c.Marshal(map[string]any{"hostname": "box", "gpu_info": []any{map[string]any{"Name": "RTX"}}})
	require.NoError(t, err)

	var out any
	require.NoError(t, c.Unmarshal(data, &out))
	m, ok := out.(map[string]any)
	require.True(t, ok, "expected map[string]any, got %T", out)
	assert.Equal(t, "box", m["hostname"])

	gpus, ok := m["gpu_info"].([]any)
	require.True(t, ok)
	_, ok = gpus[0].(map[string]any)
	assert.True(t, ok)
}
