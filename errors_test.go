package twocaptcha

import (
	"errors"
	"io"
	"testing"
)

func TestError(t *testing.T) {
	t.Run("message carries op, kind, code and task", func(t *testing.T) {
		err := &Error{Kind: ErrRemoteFailed, Op: "poll", Code: "ERROR_CAPTCHA_UNSOLVABLE", Message: "workers gave up", TaskID: 42}
		want := "poll: task failed on service: ERROR_CAPTCHA_UNSOLVABLE (workers gave up) [task 42]"
		if err.Error() != want {
			t.Fatalf("expected %q, got %q", want, err.Error())
		}
	})

	t.Run("kind and cause are both reachable", func(t *testing.T) {
		err := transportError("submit", io.ErrUnexpectedEOF)
		if !errors.Is(err, ErrTransport) {
			t.Fatalf("expected ErrTransport in %v", err)
		}
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Fatalf("expected io.ErrUnexpectedEOF in %v", err)
		}
		if errors.Is(err, ErrTimeout) {
			t.Fatalf("unexpected ErrTimeout in %v", err)
		}
	})

	t.Run("task id is filled in once", func(t *testing.T) {
		err := withTaskID(schemaError("decode", "bad"), 7)
		var e *Error
		if !errors.As(err, &e) || e.TaskID != 7 {
			t.Fatalf("expected task 7, got %v", err)
		}
		withTaskID(err, 8)
		if e.TaskID != 7 {
			t.Fatalf("task id overwritten: %d", e.TaskID)
		}
	})
}
