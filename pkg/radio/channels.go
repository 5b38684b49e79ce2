package radio

import "github.com/open-acs/acsd/pkg/acs"

// ChannelToFreq converts an 802.11 channel number to its center frequency
// in MHz, covering the 2.4 GHz band (channels 1-14) and the 5 GHz U-NII
// band (channels 36-165). Returns 0, false for anything else.
func ChannelToFreq(channel int) (int, bool) {
	switch {
	case channel == 14:
		return 2484, true
	case channel >= 1 && channel <= 13:
		return 2407 + channel*5, true
	case channel >= 36 && channel <= 165:
		return 5000 + channel*5, true
	default:
		return 0, false
	}
}

// BuildChannels constructs the ordered channel list ACS walks, given the
// enabled channel numbers and the subset that must be treated as disabled.
// Channel numbers that don't map to a known frequency are silently
// skipped, matching the driver's own role as the source of truth for what
// a given radio can actually use.
func BuildChannels(enabled []int, disabled map[int]bool) []*acs.Channel {
	channels := make([]*acs.Channel, 0, len(enabled))
	for _, num := range enabled {
		freq, ok := ChannelToFreq(num)
		if !ok {
			continue
		}
		ch := &acs.Channel{Num: num, FreqM: freq}
		if disabled[num] {
			ch.Flags |= acs.FlagDisabled
		}
		channels = append(channels, ch)
	}
	return channels
}
