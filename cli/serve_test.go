package cli

import (
	"testing"
	"time"
)

func TestWriteTimeoutCoversAnalysis(t *testing.T) {
	tests := []struct {
		analysis time.Duration
		want     time.Duration
	}{
		{0, 30 * time.Second},
		{5 * time.Second, 30 * time.Second},
		{30 * time.Second, 40 * time.Second},
		{2 * time.Minute, 2*time.Minute + 10*time.Second},
	}
	for _, tt := range tests {
		got := writeTimeout(tt.analysis)
		if got != tt.want {
			t.Fatalf("writeTimeout(%s) = %s, want %s", tt.analysis, got, tt.want)
		}
		if got <= tt.analysis {
			t.Fatalf("writeTimeout(%s) = %s does not outlast the analysis call", tt.analysis, got)
		}
	}
}
