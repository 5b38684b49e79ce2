package acs

import "testing"

// Property 5: Select returns a channel argmin-equivalent to a linear scan.
func TestSelectLinearScanEquivalence(t *testing.T) {
	channels := []*Channel{
		{Num: 1, FreqM: 2412, SurveyList: []Survey{{}}, SurveyInterferenceFactor: 2.0},
		{Num: 6, FreqM: 2437, SurveyList: []Survey{{}}, SurveyInterferenceFactor: -1.0},
		{Num: 11, FreqM: 2462, SurveyList: []Survey{{}}, SurveyInterferenceFactor: 0.5},
	}

	got, ok := Select(channels)
	if !ok {
		t.Fatal("expected a selection")
	}
	if got.Num != 6 {
		t.Fatalf("Select() = channel %d, want 6", got.Num)
	}

	for _, c := range channels {
		if !c.Usable() {
			continue
		}
		if c.SurveyInterferenceFactor < got.SurveyInterferenceFactor {
			t.Fatalf("channel %d has a strictly smaller score than selected channel %d", c.Num, got.Num)
		}
	}
}

func TestSelectTieBreakFirstSeen(t *testing.T) {
	channels := []*Channel{
		{Num: 1, FreqM: 2412, SurveyList: []Survey{{}}, SurveyInterferenceFactor: 1.0},
		{Num: 6, FreqM: 2437, SurveyList: []Survey{{}}, SurveyInterferenceFactor: 1.0},
	}
	got, ok := Select(channels)
	if !ok || got.Num != 1 {
		t.Fatalf("Select() = %v, ok=%v, want channel 1", got, ok)
	}
}

func TestSelectSkipsDisabledAndEmpty(t *testing.T) {
	channels := []*Channel{
		{Num: 1, FreqM: 2412, Flags: FlagDisabled, SurveyList: []Survey{{}}, SurveyInterferenceFactor: -10},
		{Num: 6, FreqM: 2437}, // no surveys
		{Num: 11, FreqM: 2462, SurveyList: []Survey{{}}, SurveyInterferenceFactor: 3.0},
	}
	got, ok := Select(channels)
	if !ok || got.Num != 11 {
		t.Fatalf("Select() = %v, ok=%v, want channel 11", got, ok)
	}
}

func TestSelectNoUsableChannelFails(t *testing.T) {
	channels := []*Channel{
		{Num: 1, FreqM: 2412, Flags: FlagDisabled},
		{Num: 6, FreqM: 2437},
	}
	if _, ok := Select(channels); ok {
		t.Fatal("expected selection to fail with no usable channels")
	}
}

func TestLowestNF(t *testing.T) {
	channels := []*Channel{
		{Num: 1, SurveyList: []Survey{{}}, MinNF: -90},
		{Num: 6, SurveyList: []Survey{{}}, MinNF: -95},
		{Num: 11}, // no surveys, excluded
	}
	nf, ok := LowestNF(channels)
	if !ok || nf != -95 {
		t.Fatalf("LowestNF() = %v, %v, want -95, true", nf, ok)
	}
}
