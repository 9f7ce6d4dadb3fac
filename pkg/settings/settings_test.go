package settings

import (
	"testing"
)

func TestNewCliParams(t *testing.T) {
	got := NewCliParams()
	want := &Run{ExitOnError: true}
	if *got != *want {
		t.Errorf("NewCliParams() = %+v, want %+v", got, want)
	}
	if !got.Input.FromStdin() {
		t.Error("default input should be standard input")
	}
}

func TestInputFromStdin(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{path: "", want: true},
		{path: "-", want: true},
		{path: "data.json", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := (Input{Path: tt.path}).FromStdin(); got != tt.want {
				t.Errorf("FromStdin() = %v, want %v", got, tt.want)
			}
		})
	}
}
