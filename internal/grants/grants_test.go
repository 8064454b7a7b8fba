package grants

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "grants.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndBySubject(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	id, err := s.Record(ctx, Grant{
		Subject:   "C.1234",
		Approver:  "admin",
		Reason:    "ransomware triage",
		Keepalive: true,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if id == 0 {
		t.Error("id = 0")
	}
	if _, err := s.Record(ctx, Grant{Subject: "C.5678", Approver: "admin", Reason: "other"}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := s.BySubject(ctx, "C.1234")
	if err != nil {
		t.Fatalf("BySubject: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	g := got[0]
	if g.Subject != "C.1234" || g.Approver != "admin" || g.Reason != "ransomware triage" || !g.Keepalive {
		t.Errorf("grant = %+v", g)
	}
	if g.CreatedAt.IsZero() {
		t.Error("created_at not recorded")
	}
}

func TestRecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for i := 0; i < 5; i++ {
		if _, err := s.Record(ctx, Grant{
			Subject:  fmt.Sprintf("C.%d", i),
			Approver: "admin",
			Reason:   "audit",
		}); err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
	}

	got, err := s.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Subject != "C.4" || got[2].Subject != "C.2" {
		t.Errorf("order = %q..%q, want newest first", got[0].Subject, got[2].Subject)
	}
}

func TestBySubjectEmpty(t *testing.T) {
	s := openTestStore(t)
	got, err := s.BySubject(context.Background(), "C.none")
	if err != nil {
		t.Fatalf("BySubject: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}
