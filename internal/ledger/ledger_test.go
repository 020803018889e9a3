package ledger

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLedger(t *testing.T) {
	t.Run("save and load entries", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tasks.json")

		l := New(path)
		l.Record(Entry{TaskID: 12345, Type: "recaptcha-v2", Cost: "0.00299", SolvedAt: time.Now()})
		if err := l.Save(); err != nil {
			t.Fatalf("save error: %v", err)
		}

		l2 := New(path)
		if err := l2.Load(); err != nil {
			t.Fatalf("load error: %v", err)
		}
		e, ok := l2.Find(12345)
		if !ok {
			t.Fatal("expected entry 12345")
		}
		if e.Type != "recaptcha-v2" || e.Cost != "0.00299" {
			t.Fatalf("unexpected entry: %+v", e)
		}
	})

	t.Run("expired entries are not loaded", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tasks.json")

		l := New(path)
		l.Record(Entry{TaskID: 1, SolvedAt: time.Now().Add(-Retention - time.Hour)})
		l.Record(Entry{TaskID: 2, SolvedAt: time.Now()})
		// Save drops expired entries too; keep the old one on disk by
		// moving the clock back while saving.
		l.now = func() time.Time { return time.Now().Add(-2 * Retention) }
		if err := l.Save(); err != nil {
			t.Fatalf("save error: %v", err)
		}

		l2 := New(path)
		if err := l2.Load(); err != nil {
			t.Fatalf("load error: %v", err)
		}
		if _, ok := l2.Find(1); ok {
			t.Fatal("expired entry was loaded")
		}
		if _, ok := l2.Find(2); !ok {
			t.Fatal("fresh entry was not loaded")
		}
	})

	t.Run("load from nonexistent file is not an error", func(t *testing.T) {
		l := New("/nonexistent/path/tasks.json")
		if err := l.Load(); err != nil {
			t.Fatalf("expected no error for missing file, got: %v", err)
		}
	})

	t.Run("file is private to the user", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sub", "tasks.json")
		l := New(path)
		l.Record(Entry{TaskID: 3, SolvedAt: time.Now()})
		if err := l.Save(); err != nil {
			t.Fatalf("save error: %v", err)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Fatalf("expected mode 0600, got %o", perm)
		}
	})

	t.Run("recording an id again replaces it and makes it last", func(t *testing.T) {
		l := New(filepath.Join(t.TempDir(), "tasks.json"))
		l.Record(Entry{TaskID: 1, Cost: "a"})
		l.Record(Entry{TaskID: 2})
		l.Record(Entry{TaskID: 1, Cost: "b"})

		if n := len(l.Entries()); n != 2 {
			t.Fatalf("expected 2 entries, got %d", n)
		}
		last, ok := l.Last()
		if !ok || last.TaskID != 1 || last.Cost != "b" {
			t.Fatalf("unexpected last entry: %+v", last)
		}
	})

	t.Run("mark reported", func(t *testing.T) {
		l := New(filepath.Join(t.TempDir(), "tasks.json"))
		l.Record(Entry{TaskID: 5})

		if !l.MarkReported(5, false) {
			t.Fatal("expected entry 5 to be found")
		}
		if e, _ := l.Find(5); e.Reported != "bad" {
			t.Fatalf("expected bad, got %q", e.Reported)
		}
		if l.MarkReported(6, true) {
			t.Fatal("unknown entry reported as found")
		}
	})

	t.Run("empty ledger has no last entry", func(t *testing.T) {
		if _, ok := New("unused").Last(); ok {
			t.Fatal("expected no last entry")
		}
	})
}
