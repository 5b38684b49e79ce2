package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/open-acs/acsd/pkg/acs"
	"github.com/open-acs/acsd/pkg/audit"
	"github.com/open-acs/acsd/pkg/logx"
)

func testServer(t *testing.T, authHash string) *Server {
	t.Helper()
	ctrl := acs.NewController(logx.Discard(), nil, nil, nil, acs.Config{NumReqSurveys: 1, ROCDurationMS: 10})
	db, err := audit.NewDecisionLogger(logx.Discard(), ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	trigger := func(ctx context.Context) (acs.Status, error) { return acs.Valid, nil }
	return NewServer(ctrl, db, trigger, &Config{Enabled: true, AuthHash: authHash}, logx.Discard())
}

func TestAuthMiddlewareRejectsMissingKey(t *testing.T) {
	hash, err := HashSecret("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	s := testServer(t, hash)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	s.authMiddleware(s.handleStatus)(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuthMiddlewareAcceptsValidKey(t *testing.T) {
	hash, err := HashSecret("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	s := testServer(t, hash)

	req := httptest.NewRequest(http.MethodGet, "/api/status?auth=s3cret", nil)
	rec := httptest.NewRecorder()
	s.authMiddleware(s.handleStatus)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestAuthMiddlewareAllowsAnonymousWhenUnconfigured(t *testing.T) {
	s := testServer(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	s.authMiddleware(s.handleStatus)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestHandleRunRejectsNonPost(t *testing.T) {
	s := testServer(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/run", nil)
	rec := httptest.NewRecorder()
	s.handleRun(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
