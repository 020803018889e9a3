package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/x/twocaptcha"
	"github.com/x/twocaptcha/internal/ledger"
)

// solveEntry is one solved (or failed) task in a form the formatters
// can print without knowing the variant's solution type.
type solveEntry struct {
	Label      string    `json:"label"`
	TaskID     uint64    `json:"taskId,omitempty"`
	Solution   any       `json:"solution,omitempty"`
	Cost       string    `json:"cost,omitempty"`
	CreateTime time.Time `json:"createTime,omitzero"`
	EndTime    time.Time `json:"endTime,omitzero"`
	SolveCount int       `json:"solveCount,omitempty"`
	IP         string    `json:"ip,omitempty"`
	Error      string    `json:"error,omitempty"`

	plain string
}

func newSolveEntry[S any](label string, r twocaptcha.Result[S], plain func(S) string) solveEntry {
	e := solveEntry{Label: label}
	if r.Err != nil {
		e.Error = r.Err.Error()
		return e
	}
	sol := r.Solution
	e.TaskID = sol.TaskID()
	e.Solution = sol.Solution
	e.Cost = sol.Cost
	e.CreateTime = sol.CreateTime
	e.EndTime = sol.EndTime
	e.SolveCount = sol.SolveCount
	if sol.IP.IsValid() {
		e.IP = sol.IP.String()
	}
	e.plain = plain(sol.Solution)
	return e
}

// formatSolutions prints a single solution as its bare answer, several
// as sections separated by --- headers, or any number as JSON.
func formatSolutions(w io.Writer, entries []solveEntry, asJSON bool) {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(entries) == 1 {
			enc.Encode(entries[0])
			return
		}
		enc.Encode(entries)
		return
	}

	if len(entries) == 1 {
		e := entries[0]
		if e.Error != "" {
			fmt.Fprintln(w, e.Error)
			return
		}
		fmt.Fprintln(w, e.plain)
		return
	}

	for i, e := range entries {
		if e.Error != "" {
			fmt.Fprintf(w, "---\n# Error: %s\n---\n\n%s\n", e.Label, e.Error)
		} else {
			fmt.Fprintf(w, "---\n# Task: %s\nid: %d\ncost: %s\n---\n\n%s\n", e.Label, e.TaskID, e.Cost, e.plain)
		}
		if i < len(entries)-1 {
			fmt.Fprintln(w)
		}
	}
}

func formatWidgets(w io.Writer, widgets []twocaptcha.Widget, asJSON bool) {
	if asJSON {
		if widgets == nil {
			widgets = []twocaptcha.Widget{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.Encode(widgets)
		return
	}
	for _, wd := range widgets {
		if wd.SiteKey == "" {
			fmt.Fprintln(w, wd.Kind)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", wd.Kind, wd.SiteKey)
	}
}

func formatHistory(w io.Writer, entries []ledger.Entry, asJSON bool) {
	if asJSON {
		if entries == nil {
			entries = []ledger.Entry{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.Encode(entries)
		return
	}
	for _, e := range entries {
		reported := e.Reported
		if reported == "" {
			reported = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", e.TaskID, e.SolvedAt.Format(time.RFC3339), e.Type, e.Cost, reported)
	}
}
