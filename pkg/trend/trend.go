// Package trend fits an advisory-only linear trend over a channel's
// interference factor across completed ACS invocations. Nothing here feeds
// back into a decision; it exists purely so an operator can see whether a
// channel is drifting noisier or quieter over time.
package trend

import (
	"fmt"

	"github.com/sajari/regression"
	"gonum.org/v1/gonum/stat"

	"github.com/open-acs/acsd/pkg/logx"
)

// Sample is one observed (invocation index, interference factor) pair for a
// single channel.
type Sample struct {
	X float64 // invocation sequence number
	Y float64 // mean interference factor
}

// Fit is the result of fitting a line through a channel's history.
type Fit struct {
	Channel   int     `json:"channel"`
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
	Mean      float64 `json:"mean"`
	StdDev    float64 `json:"std_dev"`
}

// FitChannel regresses samples for channel and logs the result; it never
// returns an error the caller must act on, since a bad fit simply means
// "not enough history yet."
func FitChannel(logger *logx.Logger, channel int, samples []Sample) (Fit, error) {
	if len(samples) < 2 {
		return Fit{}, fmt.Errorf("trend: need at least 2 samples, got %d", len(samples))
	}

	r := new(regression.Regression)
	r.SetObserved("interference_factor")
	r.SetVar(0, "invocation")
	for _, s := range samples {
		r.AddPoint(regression.DataPoint(s.Y, []float64{s.X}))
	}
	if err := r.Run(); err != nil {
		return Fit{}, fmt.Errorf("trend: regression fit failed: %w", err)
	}

	ys := make([]float64, len(samples))
	for i, s := range samples {
		ys[i] = s.Y
	}
	mean, stdDev := stat.MeanStdDev(ys, nil)

	fit := Fit{
		Channel:   channel,
		Slope:     r.Coeff(1),
		Intercept: r.Coeff(0),
		RSquared:  r.R2,
		Mean:      mean,
		StdDev:    stdDev,
	}

	logger.Info("channel interference trend",
		"channel", channel, "slope", fit.Slope, "r_squared", fit.RSquared, "mean", fit.Mean)

	return fit, nil
}
