package registry

import "testing"

func TestScoreZeroInputsYieldZeroComponents(t *testing.T) {
	if s := networkScore(0); s != 0 {
		t.Fatalf("networkScore(0) = %v, want 0", s)
	}
	if s := cpuScore(0, 0.5, 4); s != 0 {
		t.Fatalf("cpuScore with zero frequency = %v, want 0", s)
	}
	if s := cpuScore(2.4, 0, 4); s != 0 {
		t.Fatalf("cpuScore with zero usage = %v, want 0", s)
	}
	if s := cpuScore(2.4, 0.5, 0); s != 0 {
		t.Fatalf("cpuScore with zero cores = %v, want 0", s)
	}
	if s := renderingScore(0); s != 0 {
		t.Fatalf("renderingScore(0) = %v, want 0", s)
	}
	if s := renderingScore(-1); s != 0 {
		t.Fatalf("renderingScore(-1) = %v, want 0", s)
	}
}

func TestScoreFavorsLowerBandwidthFrequencyAndHigherUsage(t *testing.T) {
	a := score(1e6, 2.4, 0.3, 8, 5)
	b := score(1e5, 1.5, 0.8, 4, 25)

	if !(b < a) {
		t.Fatalf("expected B's score (%v) to be lower than A's (%v)", b, a)
	}
}
