package acs

import "math"

// InterferenceFactor implements the §4.1 scoring contract: given one survey
// and a reference noise floor (the interface's lowest observed MinNF), it
// returns a scalar that increases with higher busy fraction and with higher
// local noise floor relative to the quietest channel.
//
//	factor = log2( (busy - tx) / (time - tx) * 2^(nf - nfRef) )
//
// The denominator is non-zero by Survey's invariant (time > tx). Go's
// float64 is used for the running sum and mean; only the sign of pairwise
// factor differences needs to be stable, which float64 preserves for every
// scenario in spec §8.
func InterferenceFactor(s Survey, nfRef int8) float64 {
	busyFraction := float64(s.ChannelTimeBusy-s.ChannelTimeTx) / float64(s.ChannelTime-s.ChannelTimeTx)
	nfTerm := math.Exp2(float64(s.NF) - float64(nfRef))
	return math.Log2(busyFraction * nfTerm)
}

// ApplyScoring recomputes SurveyInterferenceFactor for every channel as the
// arithmetic mean of InterferenceFactor over its SurveyList, against nfRef.
// Channels with no surveys are left at zero; Select's usability predicate
// skips them regardless.
func ApplyScoring(channels []*Channel, nfRef int8) {
	for _, c := range channels {
		if len(c.SurveyList) == 0 {
			continue
		}
		var sum float64
		for _, s := range c.SurveyList {
			sum += InterferenceFactor(s, nfRef)
		}
		c.SurveyInterferenceFactor = sum / float64(len(c.SurveyList))
	}
}
