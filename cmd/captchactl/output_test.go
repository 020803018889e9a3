package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/x/twocaptcha"
	"github.com/x/twocaptcha/internal/ledger"
)

func textEntry(label string, r twocaptcha.Result[twocaptcha.TextSolution]) solveEntry {
	return newSolveEntry(label, r, func(s twocaptcha.TextSolution) string { return s.Text })
}

func TestFormatSolutions(t *testing.T) {
	ok := twocaptcha.Result[twocaptcha.TextSolution]{
		Solution: &twocaptcha.Solution[twocaptcha.TextSolution]{
			Solution: twocaptcha.TextSolution{Text: "W9H5K"},
			Cost:     "0.0005",
		},
	}
	failed := twocaptcha.Result[twocaptcha.TextSolution]{Err: errors.New("poll: task failed on service: ERROR_CAPTCHA_UNSOLVABLE")}

	t.Run("single solution prints the bare answer", func(t *testing.T) {
		var buf bytes.Buffer
		formatSolutions(&buf, []solveEntry{textEntry("a.png", ok)}, false)
		if buf.String() != "W9H5K\n" {
			t.Fatalf("unexpected output: %q", buf.String())
		}
	})

	t.Run("several results are separated with --- headers", func(t *testing.T) {
		var buf bytes.Buffer
		formatSolutions(&buf, []solveEntry{textEntry("a.png", ok), textEntry("b.png", failed)}, false)
		output := buf.String()

		if !strings.Contains(output, "# Task: a.png") || !strings.Contains(output, "W9H5K") {
			t.Fatalf("missing solved section:\n%s", output)
		}
		if !strings.Contains(output, "# Error: b.png") || !strings.Contains(output, "ERROR_CAPTCHA_UNSOLVABLE") {
			t.Fatalf("missing error section:\n%s", output)
		}
		if strings.Count(output, "---") < 4 {
			t.Fatalf("expected at least 4 --- separators in output:\n%s", output)
		}
	})

	t.Run("json output includes metadata", func(t *testing.T) {
		var buf bytes.Buffer
		formatSolutions(&buf, []solveEntry{textEntry("a.png", ok)}, true)

		var result map[string]interface{}
		if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if result["cost"].(string) != "0.0005" {
			t.Fatalf("unexpected cost: %v", result["cost"])
		}
		sol := result["solution"].(map[string]interface{})
		if sol["text"].(string) != "W9H5K" {
			t.Fatalf("unexpected solution: %v", sol)
		}
		if _, ok := result["createTime"]; ok {
			t.Fatalf("zero time should be omitted: %v", result)
		}
	})

	t.Run("json output of several results is an array", func(t *testing.T) {
		var buf bytes.Buffer
		formatSolutions(&buf, []solveEntry{textEntry("a.png", ok), textEntry("b.png", failed)}, true)

		var results []map[string]interface{}
		if err := json.Unmarshal(buf.Bytes(), &results); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}
		if results[1]["error"] == nil || results[1]["solution"] != nil {
			t.Fatalf("unexpected failed entry: %v", results[1])
		}
	})
}

func TestFormatWidgets(t *testing.T) {
	t.Run("plain output is one widget per line", func(t *testing.T) {
		var buf bytes.Buffer
		formatWidgets(&buf, []twocaptcha.Widget{{Kind: "hcaptcha", SiteKey: "k1"}, {Kind: "arkose"}}, false)
		if buf.String() != "hcaptcha\tk1\narkose\n" {
			t.Fatalf("unexpected output: %q", buf.String())
		}
	})

	t.Run("no widgets as json is an empty array", func(t *testing.T) {
		var buf bytes.Buffer
		formatWidgets(&buf, nil, true)
		if strings.TrimSpace(buf.String()) != "[]" {
			t.Fatalf("unexpected output: %q", buf.String())
		}
	})
}

func TestFormatHistory(t *testing.T) {
	t.Run("unreported entries show a dash", func(t *testing.T) {
		at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		var buf bytes.Buffer
		formatHistory(&buf, []ledger.Entry{
			{TaskID: 1, Type: "image", Cost: "0.0005", SolvedAt: at},
			{TaskID: 2, Type: "hcaptcha", Cost: "0.002", SolvedAt: at, Reported: "good"},
		}, false)
		want := "1\t2026-01-02T03:04:05Z\timage\t0.0005\t-\n" +
			"2\t2026-01-02T03:04:05Z\thcaptcha\t0.002\tgood\n"
		if buf.String() != want {
			t.Fatalf("expected %q, got %q", want, buf.String())
		}
	})
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&twocaptcha.Error{Kind: twocaptcha.ErrTimeout}, 3},
		{&twocaptcha.Error{Kind: twocaptcha.ErrRemoteRejected}, 4},
		{&twocaptcha.Error{Kind: twocaptcha.ErrRemoteFailed}, 4},
		{&twocaptcha.Error{Kind: twocaptcha.ErrInvalidInput}, 2},
		{errors.New("other"), 1},
	}
	for _, c := range cases {
		if got := exitCode(c.err); got != c.want {
			t.Fatalf("%v: expected %d, got %d", c.err, c.want, got)
		}
	}
}
