package twocaptcha

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
)

// Reportable is anything carrying a task id, in practice *Solution[S].
type Reportable interface {
	TaskID() uint64
}

// ReportOption adds variant-specific flags to a report.
type ReportOption func(url.Values)

// WithInvisible marks the report as concerning an invisible challenge,
// so the service can retry it as such.
func WithInvisible() ReportOption {
	return func(v url.Values) { v.Set("invisible", "1") }
}

// WithReportParam sets an arbitrary extra report parameter.
func WithReportParam(key, value string) ReportOption {
	return func(v url.Values) { v.Set(key, value) }
}

// Report tells the service whether the solution was accepted by the
// target site. It never touches the solution itself.
func (c *Client) Report(ctx context.Context, r Reportable, correct bool, opts ...ReportOption) error {
	if r == nil {
		return &Error{Kind: ErrReportFailed, Op: "report", Message: "nothing to report"}
	}
	return c.ReportTask(ctx, r.TaskID(), correct, opts...)
}

// ReportTask is Report for a bare task id, e.g. one read back from a
// ledger.
func (c *Client) ReportTask(ctx context.Context, id uint64, correct bool, opts ...ReportOption) error {
	if id == 0 {
		return &Error{Kind: ErrReportFailed, Op: "report", Message: "task id is zero"}
	}

	action := "reportbad"
	if correct {
		action = "reportgood"
	}
	q := url.Values{}
	q.Set("key", c.cfg.APIKey)
	q.Set("action", action)
	q.Set("id", strconv.FormatUint(id, 10))
	q.Set("json", "1")
	for _, opt := range opts {
		opt(q)
	}

	env, err := c.do(ctx, "report", http.MethodGet, "/res.php", q)
	if err != nil {
		return reportError(id, err)
	}
	if env.Status != 1 {
		return &Error{Kind: ErrReportFailed, Op: "report", Code: env.code(), Message: env.ErrorText, TaskID: id}
	}
	c.log.Debug("task reported", "task_id", id, "correct", correct)
	return nil
}

// reportError keeps transport and schema failures of the side channel
// under their own kind, with the original error still reachable.
func reportError(id uint64, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return &Error{Kind: ErrReportFailed, Op: "report", Code: e.Code, Message: e.Message, TaskID: id, Err: err}
	}
	return &Error{Kind: ErrReportFailed, Op: "report", TaskID: id, Err: err}
}

// Balance returns the account balance as the decimal text the service
// sends.
func (c *Client) Balance(ctx context.Context) (string, error) {
	q := url.Values{}
	q.Set("key", c.cfg.APIKey)
	q.Set("action", "getbalance")
	q.Set("json", "1")

	env, err := c.do(ctx, "balance", http.MethodGet, "/res.php", q)
	if err != nil {
		return "", err
	}
	if env.Status != 1 {
		return "", &Error{Kind: ErrRemoteRejected, Op: "balance", Code: env.code(), Message: env.ErrorText}
	}
	balance, err := decodeCost(env.Request)
	if err != nil {
		return "", schemaError("balance", "request %s: %v", env.Request, err)
	}
	return balance, nil
}
