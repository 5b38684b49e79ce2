package audit

import (
	"testing"
	"time"

	"github.com/open-acs/acsd/pkg/logx"
)

func TestLogDecisionAndRecentDecisions(t *testing.T) {
	dl, err := NewDecisionLogger(logx.Discard(), ":memory:")
	if err != nil {
		t.Fatalf("NewDecisionLogger() error = %v", err)
	}
	defer dl.Close()

	now := time.Now()
	if err := dl.LogDecision(DecisionRecord{Timestamp: now, Status: "valid", Channel: 6, LowestNF: -95, ExecutionTime: 2 * time.Second}); err != nil {
		t.Fatalf("LogDecision() error = %v", err)
	}
	if err := dl.LogDecision(DecisionRecord{Timestamp: now.Add(time.Second), Status: "invalid", Error: "sweep failed"}); err != nil {
		t.Fatalf("LogDecision() error = %v", err)
	}

	records, err := dl.RecentDecisions(now.Add(-time.Minute), 10)
	if err != nil {
		t.Fatalf("RecentDecisions() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0].Status != "invalid" {
		t.Fatalf("records[0].Status = %q, want invalid (most recent first)", records[0].Status)
	}
}

func TestStatsSince(t *testing.T) {
	dl, err := NewDecisionLogger(logx.Discard(), ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer dl.Close()

	base := time.Now()
	dl.LogDecision(DecisionRecord{Timestamp: base, Status: "valid", ExecutionTime: time.Second})
	dl.LogDecision(DecisionRecord{Timestamp: base, Status: "valid", ExecutionTime: 3 * time.Second})
	dl.LogDecision(DecisionRecord{Timestamp: base, Status: "invalid", ExecutionTime: 2 * time.Second})

	stats, err := dl.StatsSince(base.Add(-time.Minute))
	if err != nil {
		t.Fatalf("StatsSince() error = %v", err)
	}
	if stats.Total != 3 || stats.Valid != 2 || stats.Invalid != 1 {
		t.Fatalf("stats = %+v, want total=3 valid=2 invalid=1", stats)
	}
	if stats.AverageTime != 2*time.Second {
		t.Fatalf("AverageTime = %v, want 2s", stats.AverageTime)
	}
}

func TestDisableSuppressesLogging(t *testing.T) {
	dl, err := NewDecisionLogger(logx.Discard(), ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer dl.Close()

	dl.Disable()
	if err := dl.LogDecision(DecisionRecord{Timestamp: time.Now(), Status: "valid"}); err != nil {
		t.Fatalf("LogDecision() error = %v", err)
	}
	records, err := dl.RecentDecisions(time.Now().Add(-time.Minute), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Fatalf("len(records) = %d, want 0 while disabled", len(records))
	}
}
