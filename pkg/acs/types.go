// Package acs implements the Automatic Channel Selection decision engine:
// a survey-driven state machine that walks an access point's channel list,
// collects per-channel radio measurements through an off-channel (ROC) dwell,
// scores each channel's interference, and selects the channel with the
// lowest score.
package acs

import "fmt"

// ChannelFlag is a bit set of per-channel properties reported by the driver.
type ChannelFlag uint32

const (
	// FlagDisabled marks a channel that must never be surveyed or selected.
	FlagDisabled ChannelFlag = 1 << iota
	// FlagRadar marks a DFS channel under radar watch. ACS does not treat
	// this specially today; it is carried for future bring-up use.
	FlagRadar
)

// Has reports whether flags contains bit.
func (f ChannelFlag) Has(bit ChannelFlag) bool { return f&bit != 0 }

// Survey is one radio observation on one frequency.
//
// Invariants: ChannelTimeTx <= ChannelTimeBusy <= ChannelTime, and
// ChannelTime > ChannelTimeTx (required for the scoring denominator).
type Survey struct {
	ChannelTime     uint64 // microseconds the radio spent observing
	ChannelTimeBusy uint64 // microseconds the medium was sensed busy
	ChannelTimeTx   uint64 // microseconds spent transmitting during observation
	NF              int8   // observed noise floor, dBm
}

// Validate checks the data-model invariants from spec §3.
func (s Survey) Validate() error {
	if s.ChannelTimeTx > s.ChannelTimeBusy {
		return fmt.Errorf("acs: survey invariant violated: channel_time_tx (%d) > channel_time_busy (%d)", s.ChannelTimeTx, s.ChannelTimeBusy)
	}
	if s.ChannelTimeBusy > s.ChannelTime {
		return fmt.Errorf("acs: survey invariant violated: channel_time_busy (%d) > channel_time (%d)", s.ChannelTimeBusy, s.ChannelTime)
	}
	if s.ChannelTime <= s.ChannelTimeTx {
		return fmt.Errorf("acs: survey invariant violated: channel_time (%d) <= channel_time_tx (%d)", s.ChannelTime, s.ChannelTimeTx)
	}
	return nil
}

// Channel is one entry in the AP's mode description: a candidate frequency
// plus the survey accumulator ACS fills in while walking the channel list.
type Channel struct {
	Num   int // channel number, e.g. 6
	FreqM int // center frequency, MHz

	Flags ChannelFlag

	SurveyList []Survey // append-only within a pass, cleared between invocations

	MinNF                    int8    // minimum NF seen across SurveyList, 0 when unknown
	SurveyInterferenceFactor float64 // mean of the factors over SurveyList, set by ApplyScoring
}

// SurveyCount mirrors spec's survey_count field: it is always len(SurveyList).
func (c *Channel) SurveyCount() int { return len(c.SurveyList) }

// Disabled reports whether the channel must be skipped by both the ROC
// iterator and the selector.
func (c *Channel) Disabled() bool { return c.Flags.Has(FlagDisabled) }

// Usable implements the §4.2 usability predicate: at least one survey and
// not disabled.
func (c *Channel) Usable() bool {
	return !c.Disabled() && len(c.SurveyList) > 0
}

// AddSurvey appends a measurement and maintains MinNF, per the channel's
// ownership of its survey list (spec §3 lifecycle).
func (c *Channel) AddSurvey(s Survey) {
	c.SurveyList = append(c.SurveyList, s)
	if len(c.SurveyList) == 1 || s.NF < c.MinNF {
		c.MinNF = s.NF
	}
}

// Reset clears all per-invocation survey state, per §4.7 cleanup. It is
// idempotent.
func (c *Channel) Reset() {
	c.SurveyList = nil
	c.MinNF = 0
	c.SurveyInterferenceFactor = 0
}

// Config carries the two ACS-relevant knobs from iface.conf (spec §3, §6).
type Config struct {
	NumReqSurveys  int // acs_num_req_surveys: required full passes, >= 1
	ROCDurationMS int // acs_roc_duration_ms: dwell time per channel
}
