package settings

import (
	"context"
	"testing"
)

func TestFromContext(t *testing.T) {
	stored := &Run{NoColor: true, Input: Input{Path: "a.json"}}

	tests := []struct {
		name string
		ctx  context.Context
		want *Run
	}{
		{"attached", IntoContext(context.Background(), stored), stored},
		{"missing", context.Background(), nil},
		{"nil run is not attached", IntoContext(context.Background(), nil), nil},
		{"same key name from elsewhere", context.WithValue(context.Background(), "settings", stored), nil}, //nolint:staticcheck // a string key must not collide
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromContext(tt.ctx)
			if ok != (tt.want != nil) {
				t.Fatalf("FromContext() ok = %v, want %v", ok, tt.want != nil)
			}
			if got != tt.want {
				t.Fatalf("FromContext() = %p, want %p", got, tt.want)
			}
		})
	}
}

func TestRunOrDefault(t *testing.T) {
	stored := &Run{Expression: "_.items"}
	if got := RunOrDefault(IntoContext(context.Background(), stored)); got != stored {
		t.Fatalf("RunOrDefault() = %+v, want the attached run", got)
	}

	got := RunOrDefault(context.Background())
	if !got.ExitOnError || !got.Input.FromStdin() {
		t.Fatalf("RunOrDefault() = %+v, want command line defaults", got)
	}
}
