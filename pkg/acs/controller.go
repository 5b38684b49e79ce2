package acs

import (
	"context"
	"fmt"

	"github.com/open-acs/acsd/pkg/logx"
)

// State is the ACS controller's explicit state enum (spec §4.5, §9: "model
// as an explicit state enum plus cursor; event hooks are pure transitions").
type State int

const (
	StateIdle State = iota
	StateSanity
	StateInitialScan
	StateSurveying
	StatePassComplete
	StateDeciding
	StateHandoff
	StateTerminatedOK
	StateTerminatedFail
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSanity:
		return "sanity"
	case StateInitialScan:
		return "initial_scan"
	case StateSurveying:
		return "surveying"
	case StatePassComplete:
		return "pass_complete"
	case StateDeciding:
		return "deciding"
	case StateHandoff:
		return "handoff"
	case StateTerminatedOK:
		return "terminated_ok"
	case StateTerminatedFail:
		return "terminated_fail"
	default:
		return "unknown"
	}
}

// Controller is the top-level ACS state machine (spec §4.5). It is driven
// entirely by its Init/Notify* methods, which the embedding event loop
// calls in response to driver callbacks; the controller itself never
// blocks, spawns a goroutine, or retries. The only persisted continuation
// between calls is the state field plus the iterator's cursor.
type Controller struct {
	logger  *logx.Logger
	driver  Driver
	bringUp BringUp
	perf    *logx.PerformanceLogger

	conf     Config
	channels []*Channel
	iter     *Iterator

	state            State
	completedSurveys int
	lowestNF         int8

	chosenChannel int
	chosenSet     bool

	lastFactors map[int]float64 // channel num -> mean interference factor, most recent scoring pass
}

// NewController wires a controller over channels using driver for radio
// operations and bringUp for the final handoff.
func NewController(logger *logx.Logger, driver Driver, bringUp BringUp, channels []*Channel, conf Config) *Controller {
	if conf.NumReqSurveys < 1 {
		conf.NumReqSurveys = 1
	}
	return &Controller{
		logger:   logger,
		driver:   driver,
		bringUp:  bringUp,
		perf:     logx.NewPerformanceLogger(logger),
		conf:     conf,
		channels: channels,
		iter:     NewIterator(channels, driver, conf.ROCDurationMS),
	}
}

// State returns the controller's current state, for introspection (spec
// §9: "must remain introspectable").
func (c *Controller) State() State { return c.state }

// ChosenChannel returns the channel number written on the most recent
// successful completion, and whether a channel has ever been chosen.
func (c *Controller) ChosenChannel() (int, bool) { return c.chosenChannel, c.chosenSet }

// LowestNF returns the reference noise floor used for the most recently
// completed scoring pass, for telemetry; zero before any decision.
func (c *Controller) LowestNF() int8 { return c.lowestNF }

// ChannelFactors returns each scored channel's mean interference factor
// from the most recently completed scoring pass, for telemetry. It
// survives cleanup the same way ChosenChannel and LowestNF do, and is nil
// if no pass has reached scoring yet in the current invocation.
func (c *Controller) ChannelFactors() map[int]float64 { return c.lastFactors }

// Channels exposes the underlying channel records for introspection and
// testing; callers must not mutate survey data directly.
func (c *Controller) Channels() []*Channel { return c.channels }

// CompletedSurveys returns the number of full passes finished so far in
// the current invocation.
func (c *Controller) CompletedSurveys() int { return c.completedSurveys }

// Cursor returns the ROC iterator's current cursor position.
func (c *Controller) Cursor() int { return c.iter.Cursor() }

// Init runs the sanity check and, if it passes, requests the initial scan.
// It corresponds to spec's acs_init entry point: returns ACS when a
// decision is now in progress, Invalid on immediate failure. Valid is
// never returned here (spec §6: "not expected at this entry").
func (c *Controller) Init(ctx context.Context) (Status, error) {
	c.resetForInit()
	c.state = StateSanity

	if err := c.sanity(); err != nil {
		return c.fail(PhaseSanity, KindCapability, err)
	}

	c.state = StateInitialScan
	if err := c.driver.Scan(ctx, ScanParams{}); err != nil {
		return c.fail(PhaseScan, KindDriverRequest, err)
	}
	return ACS, nil
}

// sanity implements §4.6: the driver must advertise off-channel TX
// capability. The original engine's second check ("no usable channels
// found", gated on chans_surveyed being non-zero at the start of a fresh
// invocation) is dropped here: resetForInit always clears per-invocation
// state before sanity runs, which is spec §9 open-question 1's resolution
// (b), so that branch could never fire and is simply not carried forward.
func (c *Controller) sanity() error {
	if !c.driver.Flags().Has(FlagOffChannelTX) {
		return fmt.Errorf("driver does not advertise off-channel TX capability")
	}
	return nil
}

// NotifyScanComplete is the driver's initial-scan completion callback. It
// resets per-channel survey data and the pass counter, then starts the
// first dwell (spec §4.5, InitialScan -> Surveying).
func (c *Controller) NotifyScanComplete(ctx context.Context) (Status, error) {
	if c.state != StateInitialScan {
		return Invalid, fmt.Errorf("acs: unexpected scan-complete event in state %s", c.state)
	}

	c.state = StateSurveying
	for _, ch := range c.channels {
		ch.Reset()
	}
	c.completedSurveys = 0
	c.iter.Reset()

	return c.issueNextDwell(ctx)
}

// NotifyROCStarted is the informational ROC-started hook: it only fails
// the engine if the driver reports a non-zero status (spec §4.5).
func (c *Controller) NotifyROCStarted(ctx context.Context, freqMHz, durationMS, status int) (Status, error) {
	if c.state != StateSurveying {
		return Invalid, fmt.Errorf("acs: unexpected roc-started event in state %s", c.state)
	}
	if status != 0 {
		return c.fail(PhaseROC, KindDriverEvent, fmt.Errorf("roc start failed: freq=%d status=%d", freqMHz, status))
	}
	return ACS, nil
}

// NotifyROCCancelled is the ROC-cancelled/ended hook: it pulls the survey
// dump for the channel we just dwelled on, advances the cursor, and either
// keeps surveying, starts the next pass, or moves on to selection (spec
// §4.5).
func (c *Controller) NotifyROCCancelled(ctx context.Context, freqMHz, durationMS, status int) (Status, error) {
	if c.state != StateSurveying {
		return Invalid, fmt.Errorf("acs: unexpected roc-cancelled event in state %s", c.state)
	}
	if status != 0 {
		return c.fail(PhaseROC, KindDriverEvent, fmt.Errorf("roc cancel failed: freq=%d status=%d", freqMHz, status))
	}

	op := c.perf.StartOperation(ctx, "survey_dwell")
	cur, _ := c.iter.Current()
	surveys, err := c.driver.SurveyFreq(ctx, freqMHz)
	op.Complete(err)
	if err != nil {
		return c.fail(PhaseSurvey, KindDriverEvent, err)
	}

	if cur != nil {
		for _, s := range surveys {
			if verr := s.Validate(); verr != nil {
				c.logger.Warn("dropping malformed survey sample", "channel", cur.Num, "error", verr)
				continue
			}
			cur.AddSurvey(s)
		}
	}

	c.iter.AdvancePastCurrent()
	return c.issueNextDwell(ctx)
}

// issueNextDwell calls the iterator forward and interprets its result: ACS
// means another dwell is in flight, Valid means the current pass is done,
// Invalid means the sweep ran out of channels with nothing surveyed.
func (c *Controller) issueNextDwell(ctx context.Context) (Status, error) {
	st, err := c.iter.Advance(ctx, c.countSurveyed())
	if err != nil {
		return c.fail(PhaseROC, KindDriverRequest, err)
	}
	switch st {
	case ACS:
		return ACS, nil
	case Valid:
		return c.onPassComplete(ctx)
	default:
		return c.fail(PhaseSurvey, KindEmptySurvey, fmt.Errorf("sweep ended with no usable channel surveyed"))
	}
}

// onPassComplete implements the PassComplete state: bump the completed-pass
// counter, and either rewind for another pass or move to Deciding.
func (c *Controller) onPassComplete(ctx context.Context) (Status, error) {
	c.state = StatePassComplete
	c.completedSurveys++

	if c.completedSurveys < c.conf.NumReqSurveys {
		c.state = StateSurveying
		c.iter.Reset()
		st, err := c.iter.Advance(ctx, c.countSurveyed())
		if err != nil {
			return c.fail(PhaseROC, KindDriverRequest, err)
		}
		if st != ACS {
			// spec §9 open question 2: a non-initial pass finding no
			// channel to dwell on ("every channel disabled mid-sweep") is
			// a hard failure, not a silent fallthrough.
			return c.fail(PhaseSurvey, KindEmptySurvey, fmt.Errorf("no channel available to start next pass"))
		}
		return ACS, nil
	}

	return c.decide(ctx)
}

// decide implements the Deciding and Handoff states: score every channel,
// select the ideal one, and hand it off to the bring-up collaborator.
func (c *Controller) decide(ctx context.Context) (Status, error) {
	c.state = StateDeciding

	if c.countSurveyed() == 0 {
		return c.fail(PhaseSelection, KindEmptySurvey, fmt.Errorf("no channel produced survey data"))
	}

	nfRef, ok := LowestNF(c.channels)
	if !ok {
		return c.fail(PhaseSelection, KindEmptySurvey, fmt.Errorf("no reference noise floor available"))
	}
	c.lowestNF = nfRef
	ApplyScoring(c.channels, nfRef)

	c.lastFactors = make(map[int]float64, len(c.channels))
	for _, ch := range c.channels {
		if ch.SurveyCount() > 0 {
			c.lastFactors[ch.Num] = ch.SurveyInterferenceFactor
		}
	}

	ideal, ok := Select(c.channels)
	if !ok {
		return c.fail(PhaseSelection, KindSelection, fmt.Errorf("no usable channel after scoring"))
	}

	c.state = StateHandoff
	c.logger.Info("acs selected channel",
		"channel", ideal.Num, "freq", ideal.FreqM,
		"factor", ideal.SurveyInterferenceFactor, "lowest_nf", c.lowestNF)

	st, err := c.bringUp.Apply(ctx, ideal.Num)
	if err != nil {
		return c.fail(PhaseHandoff, KindHandoff, err)
	}
	if st != Valid {
		return c.fail(PhaseHandoff, KindHandoff, fmt.Errorf("bring-up returned %s", st))
	}

	c.chosenChannel = ideal.Num
	c.chosenSet = true
	c.state = StateTerminatedOK
	c.cleanup()
	return Valid, nil
}

// countSurveyed recomputes chans_surveyed as the number of channels that
// currently hold at least one survey, rather than maintaining a separate
// incremented counter that could drift from the channel list itself.
func (c *Controller) countSurveyed() int {
	n := 0
	for _, ch := range c.channels {
		if ch.SurveyCount() > 0 {
			n++
		}
	}
	return n
}

// fail transitions to Terminated-Fail, logs the single required error
// line, cleans up, and returns Invalid wrapping an *Error (spec §7).
func (c *Controller) fail(phase Phase, kind Kind, cause error) (Status, error) {
	c.state = StateTerminatedFail
	acsErr := newError(kind, phase, cause)
	c.logger.Error("acs invocation failed", "phase", phase, "kind", kind, "error", cause)
	c.cleanup()
	return Invalid, acsErr
}

// cleanup implements §4.7: free every channel's survey data and reset the
// counters and cursor. It never touches the previously chosen channel,
// which is write-only output that survives until the next Init call.
// Idempotent.
func (c *Controller) cleanup() {
	for _, ch := range c.channels {
		ch.Reset()
	}
	c.iter.Reset()
	c.completedSurveys = 0
}

// resetForInit clears everything cleanup clears, plus the previously
// chosen channel, so that a fresh invocation starts with no memory of the
// last one (spec §3: "no persisted state ... no history across AP
// restarts" applies equally across back-to-back invocations within one
// restart).
func (c *Controller) resetForInit() {
	c.cleanup()
	c.chosenChannel = 0
	c.chosenSet = false
	c.lastFactors = nil
}
