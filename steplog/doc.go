// Package steplog wraps the steps of a tabular transformation pipeline and logs
// diagnostic information about every successful call.
//
// A step takes one tabular value and returns another. The wrapper returned by
// LogStep calls the step, measures how long it took, inspects the shape, the
// column names and the column types of the result, and emits one log record per
// call to a sink named after the step's package. The step's result and error are
// returned unchanged.
//
// Logged fields, in message order:
//   - time: elapsed wall time (TimeTaken, on by default)
//   - n_obs, n_col: rows and columns of the output (Shape, on by default)
//   - delta: output shape minus input shape (ShapeDelta)
//   - names: ordered column names of the output (Names)
//   - dtypes: column name to type of the output (DTypes)
//
// LogStepExtra replaces these fields with the text produced by caller supplied
// extractors.
//
// Common usage pattern:
//
//	removeOutliers := steplog.MustLogFunc(
//		dropOutliers,
//		steplog.WithShapeDelta(true),
//		steplog.WithShape(false),
//	)
//
//	out, err := removeOutliers(ctx, df)
//	// [dropOutliers(*frame.Frame)] time=1.2ms delta=(-59, 0)
//
// Use LogFunc for plain func(T) T transformations and LogStep for steps that take
// a context and can fail. Both take the step name from the wrapped function.
//
// Sinks are resolved through package logsink unless a logger is injected with
// WithLogger, WithContextualLogger or WithLoggerFactory. Configuring sink handlers
// and levels is left to the application.
package steplog
