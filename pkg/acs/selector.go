package acs

// Select implements §4.3: scan every usable channel and return the one with
// the lowest SurveyInterferenceFactor, ties broken by first-seen order (the
// order of channels). ApplyScoring must have been run first. Select fails
// if no channel is usable.
func Select(channels []*Channel) (*Channel, bool) {
	var best *Channel
	for _, c := range channels {
		if !c.Usable() {
			continue
		}
		if best == nil || c.SurveyInterferenceFactor < best.SurveyInterferenceFactor {
			best = c
		}
	}
	return best, best != nil
}

// LowestNF returns the minimum MinNF across every channel that has at least
// one survey, and whether any such channel exists. This is the lowest_nf
// reference the scoring function is evaluated against.
func LowestNF(channels []*Channel) (int8, bool) {
	var (
		lowest int8
		found  bool
	)
	for _, c := range channels {
		if len(c.SurveyList) == 0 {
			continue
		}
		if !found || c.MinNF < lowest {
			lowest = c.MinNF
			found = true
		}
	}
	return lowest, found
}
