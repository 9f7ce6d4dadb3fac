package settings

import "context"

// runKey carries the *Run of the current invocation.
type runKey struct{}

// IntoContext attaches run to ctx. A nil run leaves ctx unchanged.
func IntoContext(ctx context.Context, run *Run) context.Context {
	if run == nil {
		return ctx
	}
	return context.WithValue(ctx, runKey{}, run)
}

// FromContext returns the run attached to ctx.
func FromContext(ctx context.Context) (*Run, bool) {
	run, ok := ctx.Value(runKey{}).(*Run)
	return run, ok
}

// RunOrDefault returns the run attached to ctx, or the command line
// defaults when there is none.
func RunOrDefault(ctx context.Context) *Run {
	if run, ok := FromContext(ctx); ok {
		return run
	}
	return NewCliParams()
}
