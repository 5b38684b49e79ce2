package fallback

import (
	"path/filepath"
	"testing"

	"github.com/open-acs/acsd/pkg/logx"
)

func TestRecordAndLookupRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fallback.db")
	store, err := Open(path, logx.Discard())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	if err := store.Record("wlan0", 6); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	entry, found, err := store.Lookup("wlan0")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if !found || entry.Channel != 6 || entry.Interface != "wlan0" {
		t.Fatalf("Lookup() = %+v, found=%v, want channel 6 found=true", entry, found)
	}
}

func TestLookupMissingInterface(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fallback.db")
	store, err := Open(path, logx.Discard())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	_, found, err := store.Lookup("wlan1")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if found {
		t.Fatal("expected no entry for an interface that was never recorded")
	}
}
