package radio

import "testing"

func TestChannelToFreqKnownBands(t *testing.T) {
	cases := []struct {
		channel  int
		wantFreq int
		wantOK   bool
	}{
		{1, 2412, true},
		{6, 2437, true},
		{11, 2462, true},
		{14, 2484, true},
		{36, 5180, true},
		{149, 5745, true},
		{15, 0, false},
		{200, 0, false},
	}
	for _, tc := range cases {
		freq, ok := ChannelToFreq(tc.channel)
		if ok != tc.wantOK || freq != tc.wantFreq {
			t.Errorf("ChannelToFreq(%d) = (%d, %v), want (%d, %v)", tc.channel, freq, ok, tc.wantFreq, tc.wantOK)
		}
	}
}

func TestBuildChannelsMarksDisabled(t *testing.T) {
	channels := BuildChannels([]int{1, 6, 11}, map[int]bool{6: true})
	if len(channels) != 3 {
		t.Fatalf("len(channels) = %d, want 3", len(channels))
	}
	if channels[1].Num != 6 || !channels[1].Disabled() {
		t.Fatalf("channel 6 = %+v, want disabled", channels[1])
	}
	if channels[0].Disabled() || channels[2].Disabled() {
		t.Fatal("channels 1 and 11 should not be disabled")
	}
}

func TestBuildChannelsSkipsUnknownChannelNumbers(t *testing.T) {
	channels := BuildChannels([]int{1, 999}, nil)
	if len(channels) != 1 || channels[0].Num != 1 {
		t.Fatalf("channels = %+v, want only channel 1", channels)
	}
}
