package trend

import (
	"testing"

	"github.com/open-acs/acsd/pkg/logx"
)

func TestFitChannelDetectsIncreasingTrend(t *testing.T) {
	samples := []Sample{
		{X: 0, Y: -3.0},
		{X: 1, Y: -2.0},
		{X: 2, Y: -1.0},
		{X: 3, Y: 0.0},
	}

	fit, err := FitChannel(logx.Discard(), 6, samples)
	if err != nil {
		t.Fatalf("FitChannel() error = %v", err)
	}
	if fit.Slope <= 0 {
		t.Fatalf("slope = %v, want positive for an increasing trend", fit.Slope)
	}
	if fit.Channel != 6 {
		t.Fatalf("Channel = %d, want 6", fit.Channel)
	}
}

func TestFitChannelRequiresAtLeastTwoSamples(t *testing.T) {
	if _, err := FitChannel(logx.Discard(), 1, []Sample{{X: 0, Y: 1}}); err == nil {
		t.Fatal("expected an error with fewer than 2 samples")
	}
}
