package stepconfig_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/steplog-go/frame"
	"github.com/AntonStoeckl/steplog-go/steplog"
	"github.com/AntonStoeckl/steplog-go/steplog/logsink"
	"github.com/AntonStoeckl/steplog-go/steplog/stepconfig"
	. "github.com/AntonStoeckl/steplog-go/testutil/observability/testdoubles" //nolint:revive
)

const testYAML = `
logging:
  level: warn
  json: true
  levels:
    github.com/acme/pipeline/steps: debug
defaults:
  shape_delta: true
steps:
  removeOutliers:
    time_taken: false
    names: true
    log_level: debug
  broken:
    log_level: loud
`

func givenConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "steplog.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func givenFrame() *frame.Frame {
	return frame.MustNew(
		frame.Series{Name: "x", DType: frame.Float64, Values: []any{1.0, 2.0, 3.0}},
		frame.Series{Name: "y", DType: frame.Float64, Values: []any{1.0, 2.0, 3.0}},
	)
}

func dropFirst(in *frame.Frame) *frame.Frame {
	return in.Filter(func(row int) bool { return row > 0 })
}

func Test_Load_File(t *testing.T) {
	// act
	cfg, err := stepconfig.Load(givenConfigFile(t, testYAML))

	// assert
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.True(t, cfg.Logging.JSON)
	assert.Equal(t, map[string]string{"github.com/acme/pipeline/steps": "debug"}, cfg.Logging.Levels)
	require.NotNil(t, cfg.Defaults.ShapeDelta)
	assert.True(t, *cfg.Defaults.ShapeDelta)
	require.Contains(t, cfg.Steps, "removeOutliers")
	assert.Equal(t, "debug", cfg.Steps["removeOutliers"].LogLevel)
	assert.Nil(t, cfg.Steps["removeOutliers"].Shape)
}

func Test_Load_EnvOverridesFile(t *testing.T) {
	// arrange
	t.Setenv("STEPLOG__LOGGING__LEVEL", "error")
	t.Setenv("STEPLOG__STEPS__CLEAN__DTYPES", "true")

	// act
	cfg, err := stepconfig.Load(givenConfigFile(t, testYAML))

	// assert
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Logging.Level)

	opts, err := cfg.StepOptions("Clean")
	require.NoError(t, err)
	assert.Len(t, opts, 2, "shape_delta from defaults, dtypes from the environment")
}

func Test_Load_EnvOverridesMixedCaseFileStep(t *testing.T) {
	// arrange
	t.Setenv("STEPLOG__STEPS__REMOVEOUTLIERS__LOG_LEVEL", "error")
	t.Setenv("STEPLOG__STEPS__REMOVEOUTLIERS__SHAPE", "true")

	// act
	cfg, err := stepconfig.Load(givenConfigFile(t, testYAML))

	// assert
	require.NoError(t, err)
	assert.NotContains(t, cfg.Steps, "removeoutliers")
	require.Contains(t, cfg.Steps, "removeOutliers")

	step := cfg.Steps["removeOutliers"]
	assert.Equal(t, "error", step.LogLevel)
	require.NotNil(t, step.Shape)
	assert.True(t, *step.Shape)
	require.NotNil(t, step.Names, "file fields survive the override")
	assert.True(t, *step.Names)

	opts, err := cfg.StepOptions("removeOutliers")
	require.NoError(t, err)
	assert.Len(t, opts, 5, "shape_delta, time_taken, shape, names and the level")
}

func Test_Load_MissingFile_ReadsEnvOnly(t *testing.T) {
	// arrange
	t.Setenv("STEPLOG__DEFAULTS__NAMES", "true")

	// act
	cfg, err := stepconfig.Load(filepath.Join(t.TempDir(), "absent.yml"))

	// assert
	require.NoError(t, err)
	require.NotNil(t, cfg.Defaults.Names)
	assert.True(t, *cfg.Defaults.Names)
}

func Test_Load_InvalidYAML(t *testing.T) {
	_, err := stepconfig.Load(givenConfigFile(t, "steps: [unclosed"))

	assert.Error(t, err)
}

func Test_Config_StepOptions_AppliedToWrapper(t *testing.T) {
	// setup
	handler := NewLogHandlerSpy(false)
	cfg, err := stepconfig.Load(givenConfigFile(t, testYAML))
	require.NoError(t, err)

	// arrange
	opts, err := cfg.StepOptions("removeOutliers")
	require.NoError(t, err)
	step := steplog.MustLogFunc(dropFirst,
		append(opts, steplog.WithName("removeOutliers"), steplog.WithLogger(slog.New(handler)))...,
	)

	// act
	_, err = step(context.Background(), givenFrame())

	// assert
	require.NoError(t, err)
	assert.True(t, handler.HasLogWithMessagePrefix(slog.LevelDebug, "[removeOutliers").Assert())
	assert.Equal(t,
		`[removeOutliers(*frame.Frame)] n_obs=2, n_col=2 delta=(-1, 0) names=["x","y"]`,
		handler.GetMessages()[0],
	)
}

func Test_Config_StepOptions_UnknownStepUsesDefaults(t *testing.T) {
	cfg, err := stepconfig.Load(givenConfigFile(t, testYAML))
	require.NoError(t, err)

	opts, err := cfg.StepOptions("somethingElse")

	require.NoError(t, err)
	assert.Len(t, opts, 1)
}

func Test_Config_StepOptions_InvalidLevel(t *testing.T) {
	cfg, err := stepconfig.Load(givenConfigFile(t, testYAML))
	require.NoError(t, err)

	_, err = cfg.StepOptions("broken")

	assert.ErrorIs(t, err, steplog.ErrInvalidConfiguration)
}

func Test_Config_ConfigureSinks(t *testing.T) {
	// setup
	previous := logsink.Default()
	t.Cleanup(func() { logsink.SetDefault(previous) })
	cfg, err := stepconfig.Load(givenConfigFile(t, testYAML))
	require.NoError(t, err)

	// act
	closeFn, err := cfg.ConfigureSinks()
	defer closeFn()

	// assert
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, logsink.Default().Level("main"))
	assert.Equal(t, slog.LevelDebug, logsink.Default().Level("github.com/acme/pipeline/steps"))
}
