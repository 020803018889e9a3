package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Retention is how long solved tasks are kept. Reports on older tasks
// are not accepted by the service anyway.
const Retention = 72 * time.Hour

// Entry is one solved task.
type Entry struct {
	TaskID   uint64    `json:"taskId"`
	Type     string    `json:"type"`
	Cost     string    `json:"cost"`
	SolvedAt time.Time `json:"solvedAt"`
	// Reported is "good" or "bad" once a report was sent.
	Reported string `json:"reported,omitempty"`
}

// Ledger is a JSON file of recently solved tasks, so that a later
// "report" can refer to them without the caller keeping ids around.
type Ledger struct {
	path    string
	mu      sync.Mutex
	entries []Entry
	now     func() time.Time
}

func New(path string) *Ledger {
	return &Ledger{path: path, now: time.Now}
}

// Record adds e, replacing any entry with the same task id.
func (l *Ledger) Record(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, cur := range l.entries {
		if cur.TaskID == e.TaskID {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			break
		}
	}
	l.entries = append(l.entries, e)
}

// Last returns the most recently recorded entry.
func (l *Ledger) Last() (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

func (l *Ledger) Find(id uint64) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.TaskID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// MarkReported records the outcome of a report. It returns false when
// the task is not in the ledger.
func (l *Ledger) MarkReported(id uint64, correct bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.entries {
		if l.entries[i].TaskID == id {
			l.entries[i].Reported = "bad"
			if correct {
				l.entries[i].Reported = "good"
			}
			return true
		}
	}
	return false
}

// Entries returns a copy of all entries, oldest first.
func (l *Ledger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Save writes all entries younger than Retention to disk.
func (l *Ledger) Save() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(l.path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(l.active(l.entries), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(l.path, data, 0600)
}

// Load reads entries from disk, skipping expired ones. If the file does
// not exist, Load returns nil.
func (l *Ledger) Load() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	var saved []Entry
	if err := json.Unmarshal(data, &saved); err != nil {
		return err
	}
	l.entries = append(l.entries, l.active(saved)...)
	return nil
}

func (l *Ledger) active(entries []Entry) []Entry {
	cutoff := l.now().Add(-Retention)
	out := []Entry{}
	for _, e := range entries {
		if e.SolvedAt.Before(cutoff) {
			continue
		}
		out = append(out, e)
	}
	return out
}
