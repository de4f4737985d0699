package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/san-kum/headscroll/internal/session"
)

func TestPrintResult_SortsMetrics(t *testing.T) {
	result := &session.Result{
		Frames:      10,
		Skipped:     2,
		FinalOffset: 75,
		Metrics: map[string]float64{
			"travel":         75,
			"detection_rate": 0.8,
			"flicker":        0.25,
			"scroll_rate":    0.5,
		},
	}

	var buf bytes.Buffer
	printResult(&buf, result)
	out := buf.String()

	if !strings.Contains(out, "frames: 10 (skipped 2)") || !strings.Contains(out, "page offset: 75px") {
		t.Errorf("missing summary lines:\n%s", out)
	}

	want := []string{"detection_rate", "flicker", "scroll_rate", "travel"}
	prev := -1
	for _, name := range want {
		i := strings.Index(out, "  "+name+":")
		if i < 0 {
			t.Fatalf("metric %s missing:\n%s", name, out)
		}
		if i < prev {
			t.Errorf("metric %s out of order:\n%s", name, out)
		}
		prev = i
	}
}
