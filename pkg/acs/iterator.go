package acs

import "context"

// Iterator is the ROC driver iterator of spec §4.4: it holds a cursor into
// the channel list and issues successive remain-on-channel requests,
// skipping disabled channels. It is stateful but does not itself know how
// many channels have produced survey data — the controller passes that in
// so Advance can decide between Valid and Invalid once the sweep runs out
// of channels.
type Iterator struct {
	channels   []*Channel
	driver     Driver
	durationMS int
	cursor     int
}

// NewIterator builds an iterator over channels, dwelling durationMS per
// channel via driver.
func NewIterator(channels []*Channel, driver Driver, durationMS int) *Iterator {
	return &Iterator{channels: channels, driver: driver, durationMS: durationMS}
}

// Reset rewinds the cursor to the start of the channel list, for the start
// of a new pass.
func (it *Iterator) Reset() { it.cursor = 0 }

// Cursor returns the current cursor position (spec's off_channel_freq_idx).
func (it *Iterator) Cursor() int { return it.cursor }

// Current returns the channel the cursor currently points at, if any.
func (it *Iterator) Current() (*Channel, bool) {
	if it.cursor < 0 || it.cursor >= len(it.channels) {
		return nil, false
	}
	return it.channels[it.cursor], true
}

// Advance implements §4.4: find the first non-disabled channel at or after
// the cursor, issue a dwell request there, and return ACS. If the cursor
// already runs off the end of the list, Advance returns Invalid — that
// state is unreachable through normal controller use and signals a bug if
// seen. If no channel remains to dwell on, it returns Valid when
// chansSurveyed is positive, else Invalid. chansSurveyed counts channels
// holding samples from any pass so far, so it does not tell one pass from
// another; the controller handles a pass that has no channel to start on.
func (it *Iterator) Advance(ctx context.Context, chansSurveyed int) (Status, error) {
	if it.cursor > len(it.channels) {
		return Invalid, nil
	}

	for idx := it.cursor; idx < len(it.channels); idx++ {
		if it.channels[idx].Disabled() {
			continue
		}
		it.cursor = idx
		if err := it.driver.RemainOnChannel(ctx, it.channels[idx].FreqM, it.durationMS); err != nil {
			return Invalid, err
		}
		return ACS, nil
	}

	it.cursor = len(it.channels)
	if chansSurveyed > 0 {
		return Valid, nil
	}
	return Invalid, nil
}

// AdvancePastCurrent moves the cursor one step beyond the channel the
// controller just finished surveying. The controller calls this after
// pulling the survey dump, before calling Advance again (spec §4.5).
func (it *Iterator) AdvancePastCurrent() { it.cursor++ }
