package query

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/hamed0406/statusmonitor/internal/domain"
	"github.com/hamed0406/statusmonitor/internal/repo/memory"
)

func newState(t *testing.T) *memory.Store {
	t.Helper()
	st := memory.New([]domain.Target{
		{Name: "Canvas", URL: "https://canvas.illinois.edu"},
		{Name: "Mail", URL: "https://mail.illinois.edu"},
	}, 3)
	at := time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)
	up := domain.ProbeResult{Status: domain.StatusUp, LatencyMS: 80, Code: domain.IntPtr(200), Timestamp: at}
	down := domain.ProbeResult{Status: domain.StatusDown, Error: "timeout", Timestamp: at}
	st.CommitCycle(map[string]domain.ProbeResult{"Canvas": up}, at)
	st.CommitCycle(map[string]domain.ProbeResult{"Canvas": up}, at)
	st.CommitCycle(map[string]domain.ProbeResult{"Canvas": down}, at)
	return st
}

func TestService_StatusCoversEveryTarget(t *testing.T) {
	resp := NewService(newState(t)).Status(context.Background())

	if resp.LastCheck == nil {
		t.Fatalf("want last check set")
	}
	if len(resp.Sites) != 2 {
		t.Fatalf("want 2 sites, got %d", len(resp.Sites))
	}
	canvas := resp.Sites["Canvas"]
	if canvas.Uptime != 67 || len(canvas.History) != 3 {
		t.Fatalf("canvas mismatch: uptime=%d history=%d", canvas.Uptime, len(canvas.History))
	}
	if canvas.Current == nil || canvas.Current.Up() {
		t.Fatalf("canvas current should be the latest down result, got %+v", canvas.Current)
	}
	if canvas.URL != "https://canvas.illinois.edu" {
		t.Fatalf("url mismatch: %q", canvas.URL)
	}

	mail := resp.Sites["Mail"]
	if mail.Current != nil || mail.Uptime != 0 || mail.History == nil || len(mail.History) != 0 {
		t.Fatalf("never-probed site should be empty, got %+v", mail)
	}
}

func TestService_StatusJSONShape(t *testing.T) {
	st := memory.New([]domain.Target{{Name: "Mail", URL: "https://mail.illinois.edu"}}, 3)
	b, err := json.Marshal(NewService(st).Status(context.Background()))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"last_check":null,"sites":{"Mail":{"current":null,"history":[],"url":"https://mail.illinois.edu","uptime":0}}}`
	if string(b) != want {
		t.Fatalf("json mismatch:\n got %s\nwant %s", b, want)
	}
}

func TestService_Site(t *testing.T) {
	svc := NewService(newState(t))
	s, ok := svc.Site(context.Background(), "Canvas")
	if !ok || s.Uptime != 67 {
		t.Fatalf("want Canvas with uptime 67, got %+v ok=%v", s, ok)
	}
	if _, ok := svc.Site(context.Background(), "Nope"); ok {
		t.Fatalf("unknown site must not be found")
	}
}

func TestService_SiteMatchesStatus(t *testing.T) {
	svc := NewService(newState(t))
	all := svc.Status(context.Background())
	for _, name := range []string{"Canvas", "Mail"} {
		one, ok := svc.Site(context.Background(), name)
		if !ok {
			t.Fatalf("site %s not found", name)
		}
		want := all.Sites[name]
		if one.URL != want.URL || one.Uptime != want.Uptime || len(one.History) != len(want.History) {
			t.Fatalf("site %s differs from status view: %+v vs %+v", name, one, want)
		}
		if (one.Current == nil) != (want.Current == nil) {
			t.Fatalf("site %s current mismatch: %+v vs %+v", name, one.Current, want.Current)
		}
	}
	mail, _ := svc.Site(context.Background(), "Mail")
	if mail.History == nil {
		t.Fatalf("never-checked site must have an empty, non-nil history")
	}
}

func TestService_ResponseDoesNotAliasState(t *testing.T) {
	st := newState(t)
	svc := NewService(st)
	resp := svc.Status(context.Background())
	resp.Sites["Canvas"].History[0].Error = "tampered"

	again := svc.Status(context.Background())
	if strings.Contains(again.Sites["Canvas"].History[0].Error, "tampered") {
		t.Fatalf("response aliases internal state")
	}
}
