package simulator

import (
	"fmt"
	"testing"
	"time"

	"github.com/willfong/atmsim/internal/config"
)

func TestTransactionLog_DefaultCapacity(t *testing.T) {
	for _, capacity := range []int{0, -3} {
		l := NewTransactionLog(capacity)
		if l.Cap() != config.HistorySize {
			t.Errorf("capacity %d: expected fallback %d, got %d", capacity, config.HistorySize, l.Cap())
		}
	}
}

func TestTransactionLog_NewestFirst(t *testing.T) {
	l := NewTransactionLog(5)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	l.Append("first", base)
	l.Append("second", base.Add(time.Second))
	l.Append("third", base.Add(2*time.Second))

	entries := l.Entries()
	if len(entries) != 3 || l.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	want := []string{"third", "second", "first"}
	for i, e := range entries {
		if e.Description != want[i] {
			t.Errorf("entry %d: expected %q, got %q", i, want[i], e.Description)
		}
	}
	if !entries[0].Timestamp.Equal(base.Add(2 * time.Second)) {
		t.Errorf("unexpected timestamp on newest entry: %v", entries[0].Timestamp)
	}
}

func TestTransactionLog_Wraps(t *testing.T) {
	l := NewTransactionLog(5)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	for i := 1; i <= 12; i++ {
		l.Append(fmt.Sprintf("op %d", i), base.Add(time.Duration(i)*time.Second))
		if l.Len() > l.Cap() {
			t.Fatalf("after %d appends: len %d exceeds capacity %d", i, l.Len(), l.Cap())
		}
	}

	entries := l.Entries()
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(entries))
	}
	for i, e := range entries {
		want := fmt.Sprintf("op %d", 12-i)
		if e.Description != want {
			t.Errorf("entry %d: expected %q, got %q", i, want, e.Description)
		}
	}
}

func TestTransactionLog_Clear(t *testing.T) {
	l := NewTransactionLog(3)
	now := time.Now()
	l.Append("a", now)
	l.Append("b", now)
	l.Append("c", now)
	l.Append("d", now)

	l.Clear()
	if l.Len() != 0 || len(l.Entries()) != 0 {
		t.Fatalf("expected empty log after Clear, got %d entries", l.Len())
	}

	l.Append("e", now)
	entries := l.Entries()
	if len(entries) != 1 || entries[0].Description != "e" {
		t.Errorf("expected only the new entry after Clear, got %+v", entries)
	}
}

func TestTransactionLog_EntriesIsCopy(t *testing.T) {
	l := NewTransactionLog(2)
	l.Append("a", time.Now())

	entries := l.Entries()
	entries[0].Description = "changed"
	if l.Entries()[0].Description != "a" {
		t.Error("mutating Entries result changed the log")
	}
}
