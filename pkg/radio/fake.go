package radio

import (
	"context"

	"github.com/open-acs/acsd/pkg/acs"
)

// Fake is an in-memory acs.Driver backed by a scripted table of survey
// samples, one queue per frequency. It satisfies the same interface as
// Driver so acsd's dry-run mode can exercise the full controller without a
// wireless interface present.
type Fake struct {
	Surveys map[int][][]acs.Survey
	flags   acs.DriverFlag
}

// NewFake builds a Fake advertising off-channel TX capability by default.
func NewFake(surveys map[int][][]acs.Survey) *Fake {
	return &Fake{Surveys: surveys, flags: acs.FlagOffChannelTX}
}

func (f *Fake) Scan(ctx context.Context, params acs.ScanParams) error { return nil }

func (f *Fake) RemainOnChannel(ctx context.Context, freqMHz, durationMS int) error { return nil }

func (f *Fake) SurveyFreq(ctx context.Context, freqMHz int) ([]acs.Survey, error) {
	q := f.Surveys[freqMHz]
	if len(q) == 0 {
		return nil, nil
	}
	batch := q[0]
	f.Surveys[freqMHz] = q[1:]
	return batch, nil
}

func (f *Fake) Flags() acs.DriverFlag { return f.flags }
