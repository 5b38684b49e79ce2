package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/open-acs/acsd/pkg/logx"
)

func TestCollectorExposesObservedMetrics(t *testing.T) {
	c := NewCollector(logx.Discard())
	c.ObserveSweep("valid", 1.5)
	c.ObserveROCRequest()
	c.SetDecision(6, -92)
	c.SetChannelInterference(6, -1.25)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	for _, want := range []string{
		`acs_sweeps_total{status="valid"} 1`,
		"acs_roc_requests_total 1",
		"acs_last_chosen_channel 6",
		`acs_channel_interference_factor{channel="6"} -1.25`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q; got:\n%s", want, body)
		}
	}
}
