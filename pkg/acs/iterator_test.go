package acs

import (
	"context"
	"errors"
	"testing"
)

type stubDriver struct {
	flags   DriverFlag
	rocErr  error
	rocFreq []int
}

func (d *stubDriver) Scan(ctx context.Context, p ScanParams) error { return nil }
func (d *stubDriver) RemainOnChannel(ctx context.Context, freq, dur int) error {
	d.rocFreq = append(d.rocFreq, freq)
	return d.rocErr
}
func (d *stubDriver) SurveyFreq(ctx context.Context, freq int) ([]Survey, error) { return nil, nil }
func (d *stubDriver) Flags() DriverFlag                                         { return d.flags }

func TestIteratorSkipsDisabledChannels(t *testing.T) {
	channels := []*Channel{
		{Num: 1, FreqM: 2412, Flags: FlagDisabled},
		{Num: 6, FreqM: 2437},
	}
	drv := &stubDriver{flags: FlagOffChannelTX}
	it := NewIterator(channels, drv, 100)

	st, err := it.Advance(context.Background(), 0)
	if err != nil || st != ACS {
		t.Fatalf("Advance() = %v, %v, want ACS, nil", st, err)
	}
	if len(drv.rocFreq) != 1 || drv.rocFreq[0] != 2437 {
		t.Fatalf("expected a single dwell on 2437, got %v", drv.rocFreq)
	}
	cur, ok := it.Current()
	if !ok || cur.Num != 6 {
		t.Fatalf("Current() = %v, %v, want channel 6", cur, ok)
	}
}

func TestIteratorExhaustedWithSurveysIsValid(t *testing.T) {
	channels := []*Channel{{Num: 1, FreqM: 2412}}
	drv := &stubDriver{flags: FlagOffChannelTX}
	it := NewIterator(channels, drv, 100)

	if _, err := it.Advance(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	it.AdvancePastCurrent()

	st, err := it.Advance(context.Background(), 1) // one channel already surveyed
	if err != nil || st != Valid {
		t.Fatalf("Advance() = %v, %v, want Valid, nil", st, err)
	}
}

func TestIteratorExhaustedWithoutSurveysIsInvalid(t *testing.T) {
	channels := []*Channel{{Num: 1, FreqM: 2412, Flags: FlagDisabled}}
	drv := &stubDriver{flags: FlagOffChannelTX}
	it := NewIterator(channels, drv, 100)

	st, err := it.Advance(context.Background(), 0)
	if err != nil || st != Invalid {
		t.Fatalf("Advance() = %v, %v, want Invalid, nil", st, err)
	}
}

func TestIteratorCursorNeverExceedsChannelCount(t *testing.T) {
	channels := []*Channel{{Num: 1, FreqM: 2412}, {Num: 6, FreqM: 2437}}
	drv := &stubDriver{flags: FlagOffChannelTX}
	it := NewIterator(channels, drv, 100)

	it.Advance(context.Background(), 0)
	it.AdvancePastCurrent()
	it.Advance(context.Background(), 1)
	it.AdvancePastCurrent()
	it.Advance(context.Background(), 2) // exhausted

	if it.Cursor() > len(channels) {
		t.Fatalf("cursor = %d, exceeds channel count %d", it.Cursor(), len(channels))
	}
}

func TestIteratorPropagatesDriverRequestError(t *testing.T) {
	channels := []*Channel{{Num: 1, FreqM: 2412}}
	drv := &stubDriver{flags: FlagOffChannelTX, rocErr: errors.New("busy")}
	it := NewIterator(channels, drv, 100)

	st, err := it.Advance(context.Background(), 0)
	if err == nil || st != Invalid {
		t.Fatalf("Advance() = %v, %v, want Invalid, error", st, err)
	}
}
