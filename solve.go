package twocaptcha

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Task is implemented by every captcha variant. S is the solution type
// the variant decodes into.
type Task[S any] interface {
	// Method is the service's method tag, e.g. "userrecaptcha".
	Method() string
	// TaskType is the variant's type tag, e.g. "RecaptchaV2TaskProxyless".
	TaskType() string
	// Fields returns the variant-specific submission fields. Empty
	// values are dropped, so unset optional fields are never sent.
	Fields() url.Values
	// InitialDelay is how long the variant usually takes to solve. No
	// poll is sent before it elapses. Zero means the client default.
	InitialDelay() time.Duration
	// Validate reports a malformed task before anything is sent.
	Validate() error
	// DecodeSolution turns the ready content into S.
	DecodeSolution(Content) (S, error)
}

// Solution is a solved task: the variant payload plus the metadata the
// service reports for every task.
type Solution[S any] struct {
	taskID uint64

	Solution   S
	Cost       string
	CreateTime time.Time
	EndTime    time.Time
	SolveCount int
	IP         netip.Addr
}

// TaskID returns the identifier the service assigned at submission. It
// is what Report sends back.
func (s *Solution[S]) TaskID() uint64 {
	return s.taskID
}

// Solve submits task, waits for the remote workers and returns the
// decoded solution. It performs exactly one submission; a failed or
// timed-out task is never resubmitted.
func Solve[S any](ctx context.Context, c *Client, task Task[S]) (*Solution[S], error) {
	if task == nil {
		return nil, &Error{Kind: ErrInvalidInput, Op: "solve", Message: "nil task"}
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}

	log := c.log.With("flow", uuid.NewString(), "type", task.TaskType())

	flowCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	id, err := c.submit(flowCtx, task)
	if err != nil {
		return nil, c.interrupted(ctx, flowCtx, "submit", 0, err)
	}

	t := newTracker(id, log)
	sol, err := pollTask(ctx, flowCtx, c, t, task)
	if err != nil {
		log.Debug("task ended without solution", "task_id", id, "state", t.state, "err", err)
		return nil, err
	}
	return sol, nil
}

func (c *Client) submit(ctx context.Context, task interface {
	Method() string
	TaskType() string
	Fields() url.Values
}) (uint64, error) {
	form := url.Values{}
	form.Set("key", c.cfg.APIKey)
	form.Set("json", "1")
	form.Set("soft_id", c.cfg.SoftID)
	form.Set("method", task.Method())
	form.Set("type", task.TaskType())
	if c.cfg.CallbackURL != "" {
		form.Set("pingback", c.cfg.CallbackURL)
	}
	for k, vs := range task.Fields() {
		for _, v := range vs {
			if v != "" {
				form.Add(k, v)
			}
		}
	}

	env, err := c.do(ctx, "submit", http.MethodPost, "/in.php", form)
	if err != nil {
		return 0, err
	}
	if env.Status != 1 {
		return 0, &Error{Kind: ErrRemoteRejected, Op: "submit", Code: env.code(), Message: env.ErrorText}
	}
	return env.taskID("submit")
}

func (c *Client) poll(ctx context.Context, id uint64) (*envelope, error) {
	q := url.Values{}
	q.Set("key", c.cfg.APIKey)
	q.Set("action", "get")
	q.Set("id", strconv.FormatUint(id, 10))
	q.Set("json", "1")
	return c.do(ctx, "poll", http.MethodGet, "/res.php", q)
}

// maxAttempts is the poll budget of a task whose first poll happens
// after initial.
func (c *Client) maxAttempts(initial time.Duration) int {
	if c.cfg.MaxAttempts > 0 {
		return c.cfg.MaxAttempts
	}
	n := int((c.cfg.Timeout-initial)/c.cfg.PollInterval) + 1
	if n < 1 {
		n = 1
	}
	return n
}

func pollTask[S any](ctx, flowCtx context.Context, c *Client, t *tracker, task Task[S]) (*Solution[S], error) {
	wait := task.InitialDelay()
	if wait <= 0 {
		wait = c.cfg.DefaultInitialDelay
	}
	budget := c.maxAttempts(wait)

	for attempt := 1; ; attempt++ {
		if err := c.wait(flowCtx, wait); err != nil {
			return nil, c.timeout(ctx, flowCtx, t, attempt-1, err)
		}

		env, err := c.poll(flowCtx, t.taskID)
		if err != nil {
			if flowCtx.Err() != nil {
				return nil, c.timeout(ctx, flowCtx, t, attempt, err)
			}
			t.finish(stateFailed)
			return nil, withTaskID(err, t.taskID)
		}

		if env.Status == 1 {
			sol, err := buildSolution(t.taskID, env, task)
			if err != nil {
				t.finish(stateFailed)
				return nil, withTaskID(err, t.taskID)
			}
			t.finish(stateReady)
			return sol, nil
		}

		code := env.code()
		if code != notReady {
			t.finish(stateFailed)
			return nil, &Error{Kind: ErrRemoteFailed, Op: "poll", Code: code, Message: env.ErrorText, TaskID: t.taskID}
		}

		if err := t.transition(statePending); err != nil {
			return nil, err
		}
		if attempt >= budget {
			t.finish(stateTimedOut)
			return nil, &Error{
				Kind:    ErrTimeout,
				Op:      "poll",
				Message: fmt.Sprintf("not ready after %d polls", attempt),
				TaskID:  t.taskID,
			}
		}
		wait = c.cfg.PollInterval
	}
}

func buildSolution[S any](id uint64, env *envelope, task Task[S]) (*Solution[S], error) {
	content, err := decodeContent(env.Request)
	if err != nil {
		return nil, err
	}
	payload, err := task.DecodeSolution(content)
	if err != nil {
		return nil, err
	}
	md, err := env.metadata("poll")
	if err != nil {
		return nil, err
	}
	return &Solution[S]{
		taskID:     id,
		Solution:   payload,
		Cost:       md.cost,
		CreateTime: md.createTime,
		EndTime:    md.endTime,
		SolveCount: md.solveCount,
		IP:         md.ip,
	}, nil
}

// timeout ends a flow whose wait or request was cut short by a context.
// The caller's own cancellation is returned as is; expiry of the flow
// deadline becomes ErrTimeout.
func (c *Client) timeout(ctx, flowCtx context.Context, t *tracker, polls int, cause error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("task %d abandoned after %d polls: %w", t.taskID, polls, ctx.Err())
	}
	t.finish(stateTimedOut)
	if errors.Is(flowCtx.Err(), context.DeadlineExceeded) {
		return &Error{
			Kind:    ErrTimeout,
			Op:      "poll",
			Message: fmt.Sprintf("deadline of %s exceeded after %d polls", c.cfg.Timeout, polls),
			TaskID:  t.taskID,
		}
	}
	return withTaskID(cause, t.taskID)
}

// interrupted classifies a submission error the same way.
func (c *Client) interrupted(ctx, flowCtx context.Context, op string, id uint64, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%s abandoned: %w", op, ctx.Err())
	}
	if errors.Is(flowCtx.Err(), context.DeadlineExceeded) {
		return &Error{Kind: ErrTimeout, Op: op, Message: fmt.Sprintf("deadline of %s exceeded", c.cfg.Timeout), TaskID: id, Err: err}
	}
	return err
}

func withTaskID(err error, id uint64) error {
	var e *Error
	if errors.As(err, &e) && e.TaskID == 0 {
		e.TaskID = id
	}
	return err
}
