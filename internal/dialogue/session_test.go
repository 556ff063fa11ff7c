package dialogue

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSessionStore_GetUnknown(t *testing.T) {
	st := NewSessionStore()
	if _, err := st.get(uuid.New()); err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionStore_PruneIdle(t *testing.T) {
	st := NewSessionStore()

	stale := &Session{Token: uuid.New(), lastActive: time.Now().Add(-2 * time.Hour)}
	fresh := &Session{Token: uuid.New(), lastActive: time.Now()}
	st.put(stale)
	st.put(fresh)

	pruned := st.PruneIdle(time.Hour)
	if pruned != 1 {
		t.Errorf("expected 1 pruned session, got %d", pruned)
	}
	if _, err := st.get(stale.Token); err != ErrSessionNotFound {
		t.Error("stale session should be gone")
	}
	if _, err := st.get(fresh.Token); err != nil {
		t.Errorf("fresh session should survive: %v", err)
	}
	if st.Len() != 1 {
		t.Errorf("expected 1 live session, got %d", st.Len())
	}
}

func TestSessionStore_PruneIdleSkipsBusySession(t *testing.T) {
	st := NewSessionStore()

	busy := &Session{Token: uuid.New(), lastActive: time.Now().Add(-2 * time.Hour)}
	other := &Session{Token: uuid.New(), lastActive: time.Now()}
	st.put(busy)
	st.put(other)

	// Hold the session lock as a mid-advance round would.
	busy.mu.Lock()
	defer busy.mu.Unlock()

	done := make(chan int, 1)
	go func() { done <- st.PruneIdle(time.Hour) }()

	var pruned int
	select {
	case pruned = <-done:
	case <-time.After(time.Second):
		t.Fatal("PruneIdle blocked on a busy session")
	}
	if pruned != 0 {
		t.Errorf("expected 0 pruned sessions, got %d", pruned)
	}

	// The store stays responsive for unrelated sessions.
	lookup := make(chan error, 1)
	go func() {
		_, err := st.get(other.Token)
		lookup <- err
	}()
	select {
	case err := <-lookup:
		if err != nil {
			t.Errorf("unrelated lookup failed: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("unrelated session lookup blocked")
	}
}

func TestSession_PartnerName(t *testing.T) {
	withPartner := &Session{Partner: &Participant{Name: "Ken"}}
	if withPartner.PartnerName() != "Ken" {
		t.Errorf("expected Ken, got %q", withPartner.PartnerName())
	}

	alone := &Session{}
	if alone.PartnerName() != NoInformation {
		t.Errorf("expected sentinel, got %q", alone.PartnerName())
	}
}
