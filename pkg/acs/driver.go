package acs

import "context"

// DriverFlag is the driver capability bitfield (spec §3, §6). ACS only
// consults the off-channel TX bit.
type DriverFlag uint32

const (
	// FlagOffChannelTX must be set for ACS to run at all (spec §4.6).
	FlagOffChannelTX DriverFlag = 1 << iota
)

// Has reports whether flags contains bit.
func (f DriverFlag) Has(bit DriverFlag) bool { return f&bit != 0 }

// ScanParams carries whatever the driver needs to run its initial scan.
// ACS treats it as opaque.
type ScanParams struct {
	FreqList []int // MHz; empty means "scan everything the driver knows about"
}

// Driver is the capability set §6 consumes from the radio driver
// collaborator. A real implementation talks to nl80211/cfg80211; tests
// implement it with an in-memory fake. Both satisfy the same interface
// (spec §9's "capability polymorphism over the driver").
type Driver interface {
	// Scan requests an initial scan. Completion is reported later via
	// Controller.NotifyScanComplete; Scan itself only reports request
	// failure.
	Scan(ctx context.Context, params ScanParams) error

	// RemainOnChannel requests a dwell of durationMS on freqMHz. Two
	// asynchronous events follow: Controller.NotifyROCStarted and
	// Controller.NotifyROCCancelled.
	RemainOnChannel(ctx context.Context, freqMHz, durationMS int) error

	// SurveyFreq synchronously returns zero or more measurements for
	// freqMHz, gathered during the most recent dwell there.
	SurveyFreq(ctx context.Context, freqMHz int) ([]Survey, error)

	// Flags reports driver capability bits.
	Flags() DriverFlag
}

// BringUp is the AP bring-up collaborator invoked once ACS has picked a
// channel (spec §6). Apply must return Valid on success; any other status
// is treated as handoff failure.
type BringUp interface {
	Apply(ctx context.Context, channel int) (Status, error)
}
