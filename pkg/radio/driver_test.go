package radio

import "testing"

const sampleSurveyDump = `Survey data from wlan0
	frequency:			2412 MHz
	noise:				-92 dBm
	channel active time:		20512 ms
	channel busy time:		1203 ms
	channel receive time:		900 ms
	channel transmit time:		120 ms

Survey data from wlan0
	frequency:			2437 MHz [in use]
	noise:				-89 dBm
	channel active time:		20512 ms
	channel busy time:		5000 ms
	channel receive time:		4000 ms
	channel transmit time:		300 ms

Survey data from wlan0
	frequency:			2462 MHz
	noise:				-93 dBm
`

func TestParseSurveyDumpExtractsMatchingFrequency(t *testing.T) {
	s, ok := parseSurveyDump(sampleSurveyDump, 2437)
	if !ok {
		t.Fatal("expected a survey for 2437 MHz")
	}
	if s.NF != -89 {
		t.Fatalf("NF = %d, want -89", s.NF)
	}
	if s.ChannelTime != 20512000 || s.ChannelTimeBusy != 5000000 || s.ChannelTimeTx != 300000 {
		t.Fatalf("unexpected survey %+v", s)
	}
}

func TestParseSurveyDumpSkipsBlockWithNoActiveTime(t *testing.T) {
	_, ok := parseSurveyDump(sampleSurveyDump, 2462)
	if ok {
		t.Fatal("expected no usable survey for a block lacking active time")
	}
}

func TestParseSurveyDumpMissingFrequencyNotFound(t *testing.T) {
	_, ok := parseSurveyDump(sampleSurveyDump, 5180)
	if ok {
		t.Fatal("expected no survey for a frequency absent from the dump")
	}
}
