package logsink_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/steplog-go/steplog/logsink"
	. "github.com/AntonStoeckl/steplog-go/testutil/observability/testdoubles" //nolint:revive
)

func Test_Configure_InstallsLevels(t *testing.T) {
	// setup
	previous := logsink.Default()
	t.Cleanup(func() { logsink.SetDefault(previous) })

	// act
	closeFn, err := logsink.Configure(logsink.Options{
		Level:  "warn",
		Levels: map[string]string{"github.com/acme/steps": "debug"},
		JSON:   true,
	})
	defer closeFn()

	// assert
	require.NoError(t, err)
	assert.NotSame(t, previous, logsink.Default())
	assert.Equal(t, slog.LevelWarn, logsink.Default().Level("main"))
	assert.Equal(t, slog.LevelDebug, logsink.Default().Level("github.com/acme/steps/inner"))
}

func Test_Configure_UnknownLevel_KeepsDefault(t *testing.T) {
	// setup
	previous := logsink.Default()
	t.Cleanup(func() { logsink.SetDefault(previous) })

	// act
	_, rootErr := logsink.Configure(logsink.Options{Level: "loud"})
	_, nameErr := logsink.Configure(logsink.Options{Levels: map[string]string{"x": "loud"}})

	// assert
	assert.Error(t, rootErr)
	assert.ErrorContains(t, nameErr, `sink "x"`)
	assert.Same(t, previous, logsink.Default())
}

func Test_InitFromEnv(t *testing.T) {
	// setup
	previous := logsink.Default()
	t.Cleanup(func() { logsink.SetDefault(previous) })
	t.Setenv("STEPLOG_LOG_LEVEL", "error")
	t.Setenv("STEPLOG_LOG_JSON", "true")
	t.Setenv("STEPLOG_SEQ_URL", "")

	// act
	closeFn, err := logsink.InitFromEnv()
	defer closeFn()

	// assert
	require.NoError(t, err)
	assert.Equal(t, slog.LevelError, logsink.Default().Level(""))
}

var testTime = time.Unix(0, 0).UTC()

type failingHandler struct {
	err error
}

func (h failingHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h failingHandler) Handle(context.Context, slog.Record) error { return h.err }
func (h failingHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h failingHandler) WithGroup(string) slog.Handler             { return h }

func Test_MultiHandler_FansOutAndJoinsErrors(t *testing.T) {
	// setup
	errSink := errors.New("sink down")
	first := NewLogHandlerSpy(false)
	second := NewLogHandlerSpy(false)
	multi := logsink.NewMultiHandler(first, failingHandler{err: errSink}, second)

	// act
	err := multi.WithAttrs([]slog.Attr{slog.String("k", "v")}).
		Handle(context.Background(), slog.NewRecord(testTime, slog.LevelInfo, "msg", 0))

	// assert
	assert.ErrorIs(t, err, errSink)
	assert.True(t, first.HasLogWithMessagePrefix(slog.LevelInfo, "msg").WithAttr("k", "v").Assert())
	assert.True(t, second.HasLogWithMessagePrefix(slog.LevelInfo, "msg").WithAttr("k", "v").Assert())
	assert.True(t, multi.Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, logsink.NewMultiHandler().Enabled(context.Background(), slog.LevelError))
}
