package logsink_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/steplog-go/steplog/logsink"
	. "github.com/AntonStoeckl/steplog-go/testutil/observability/testdoubles" //nolint:revive
)

func Test_Registry_Level_ResolvesHierarchically(t *testing.T) {
	// arrange
	r := logsink.NewRegistry(nil)
	r.SetLevel("github.com/acme", slog.LevelWarn)
	r.SetLevel("github.com/acme/pipeline/steps", slog.LevelDebug)

	// act + assert
	assert.Equal(t, slog.LevelInfo, r.Level(""))
	assert.Equal(t, slog.LevelInfo, r.Level("main"))
	assert.Equal(t, slog.LevelWarn, r.Level("github.com/acme/pipeline"))
	assert.Equal(t, slog.LevelDebug, r.Level("github.com/acme/pipeline/steps"))
	assert.Equal(t, slog.LevelDebug, r.Level("/github.com/acme/pipeline/steps/inner/"))

	r.ResetLevel("github.com/acme/pipeline/steps")
	assert.Equal(t, slog.LevelWarn, r.Level("github.com/acme/pipeline/steps"))

	r.ResetLevel("")
	assert.Equal(t, slog.LevelInfo, r.Level(""), "the root level cannot be removed")
}

func Test_Registry_Logger_FiltersAndNames(t *testing.T) {
	// setup
	handler := NewLogHandlerSpy(false)
	r := logsink.NewRegistry(handler)
	r.SetLevel("noisy", slog.LevelError)

	// act
	r.Logger("quiet/child").Info("kept")
	r.Logger("noisy/child").Warn("dropped")
	r.Logger("noisy").Error("kept too")

	// assert
	assert.Equal(t, []string{"kept", "kept too"}, handler.GetMessages())
	assert.True(t, handler.HasLogWithMessagePrefix(slog.LevelInfo, "kept").WithAttr(logsink.LogAttrLogger, "quiet/child").Assert())
	assert.False(t, r.Logger("noisy").Enabled(context.Background(), slog.LevelWarn))
}

func Test_Registry_Logger_FollowsHandlerChanges(t *testing.T) {
	// setup
	first := NewLogHandlerSpy(false)
	second := NewLogHandlerSpy(false)
	r := logsink.NewRegistry(first)
	logger := r.Logger("steps").With("run", 7)

	// act
	logger.Info("one")
	r.SetHandler(second)
	logger.Info("two")

	// assert
	assert.Equal(t, []string{"one"}, first.GetMessages())
	assert.Equal(t, []string{"two"}, second.GetMessages())
	assert.True(t, second.HasLogWithMessagePrefix(slog.LevelInfo, "two").
		WithAttr("run", "7").
		WithAttr(logsink.LogAttrLogger, "steps").
		Assert())
}

func Test_Registry_NilHandler_Discards(t *testing.T) {
	r := logsink.NewRegistry(nil)

	assert.False(t, r.Logger("x").Enabled(context.Background(), slog.LevelError))
}

func Test_Named_UsesDefaultRegistry(t *testing.T) {
	// setup
	handler := NewLogHandlerSpy(false)
	previous := logsink.Default()
	t.Cleanup(func() { logsink.SetDefault(previous) })

	// act
	logsink.SetDefault(logsink.NewRegistry(handler))
	logsink.SetDefault(nil)
	logsink.Named("pkg").Info("hello")

	// assert
	require.Equal(t, 1, handler.GetRecordCount())
	assert.True(t, handler.HasLogWithMessagePrefix(slog.LevelInfo, "hello").WithAttr(logsink.LogAttrLogger, "pkg").Assert())
}
