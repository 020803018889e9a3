package twocaptcha

import (
	"bytes"
	"encoding/json"
	"net/netip"
	"sort"
	"strconv"
	"strings"
	"time"
)

// notReady is the request value the service sends while a task is
// still being worked on. The misspelling is part of the wire format.
const notReady = "CAPCHA_NOT_READY"

// envelope is the reply shape shared by in.php and res.php. Request is
// kept raw because its type depends on the endpoint and the variant.
type envelope struct {
	Status     int             `json:"status"`
	Request    json.RawMessage `json:"request"`
	ErrorText  string          `json:"error_text"`
	Cost       json.RawMessage `json:"cost"`
	CreateTime *int64          `json:"createTime"`
	EndTime    *int64          `json:"endTime"`
	SolveCount *int            `json:"solveCount"`
	IP         *string         `json:"ip"`
}

func decodeEnvelope(op string, body []byte) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &Error{Kind: ErrSchemaMismatch, Op: op, Message: "envelope is not valid JSON", Err: err}
	}
	if len(bytes.TrimSpace(env.Request)) == 0 {
		return nil, schemaError(op, "envelope has no request field")
	}
	return &env, nil
}

// requestString returns the request field when it is a JSON string.
func (e *envelope) requestString() (string, bool) {
	var s string
	if err := json.Unmarshal(e.Request, &s); err != nil {
		return "", false
	}
	return s, true
}

// code returns the error code carried in request on a status 0 reply.
func (e *envelope) code() string {
	if s, ok := e.requestString(); ok {
		return s
	}
	return strings.TrimSpace(string(e.Request))
}

// taskID interprets request as a task identifier. The service sends it
// as a string of digits, some mirrors send a bare number.
func (e *envelope) taskID(op string) (uint64, error) {
	raw := strings.TrimSpace(string(e.Request))
	if s, ok := e.requestString(); ok {
		raw = s
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, schemaError(op, "request %q is not a task id", raw)
	}
	return id, nil
}

// metadata is attached by the engine to every solution.
type metadata struct {
	cost       string
	createTime time.Time
	endTime    time.Time
	solveCount int
	ip         netip.Addr
}

func (e *envelope) metadata(op string) (metadata, error) {
	var md metadata
	cost, err := decodeCost(e.Cost)
	if err != nil {
		return md, schemaError(op, "cost: %v", err)
	}
	if e.CreateTime == nil || e.EndTime == nil || e.SolveCount == nil || e.IP == nil {
		return md, schemaError(op, "ready reply is missing solution metadata")
	}
	ip, err := netip.ParseAddr(*e.IP)
	if err != nil {
		return md, schemaError(op, "ip %q: %v", *e.IP, err)
	}
	md.cost = cost
	md.createTime = time.Unix(*e.CreateTime, 0).UTC()
	md.endTime = time.Unix(*e.EndTime, 0).UTC()
	md.solveCount = *e.SolveCount
	md.ip = ip
	return md, nil
}

// decodeCost accepts the cost as a string or a bare number and returns
// its decimal text unchanged.
func decodeCost(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", errString("missing")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return "", errString("not a decimal")
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", errString("not a decimal")
	}
	return n.String(), nil
}

type errString string

func (e errString) Error() string { return string(e) }

// ContentKind identifies which shape the ready content matched.
type ContentKind int

const (
	ContentString ContentKind = iota
	ContentGeeTest
	ContentCapy
	ContentRecaptcha
	ContentLemin
	ContentToken
)

func (k ContentKind) String() string {
	switch k {
	case ContentString:
		return "string"
	case ContentGeeTest:
		return "geetest"
	case ContentCapy:
		return "capy"
	case ContentRecaptcha:
		return "recaptcha"
	case ContentLemin:
		return "lemin"
	case ContentToken:
		return "token"
	default:
		return "unknown"
	}
}

// Content is the decoded request field of a ready poll reply. Text is
// set for ContentString; Fields holds the matched keys otherwise.
type Content struct {
	Kind   ContentKind
	Text   string
	Fields map[string]string
}

// Field returns a structured field, or "" when absent.
func (c Content) Field(name string) string {
	return c.Fields[name]
}

type contentShape struct {
	kind     ContentKind
	required []string
	optional []string
}

// contentShapes is tried in order after the bare string. The order is
// part of the decoding contract: Capy and Lemin share "answer", and the
// reCAPTCHA shape is a superset of the token shape.
var contentShapes = []contentShape{
	{kind: ContentGeeTest, required: []string{"geetest_challenge", "geetest_validate", "geetest_seccode"}},
	{kind: ContentCapy, required: []string{"captchakey", "challengekey", "answer"}, optional: []string{"respKey"}},
	{kind: ContentRecaptcha, required: []string{"gRecaptchaResponse", "token"}, optional: []string{"respKey", "userAgent"}},
	{kind: ContentLemin, required: []string{"answer", "challenge_id"}},
	{kind: ContentToken, required: []string{"token"}, optional: []string{"respKey", "userAgent"}},
}

// decodeContent interprets the request field of a ready reply: first as
// a bare string, then as each structured shape in contentShapes order.
func decodeContent(raw json.RawMessage) (Content, error) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return Content{}, schemaError("decode", "content is null")
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return Content{Kind: ContentString, Text: text}, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return Content{}, schemaError("decode", "content is neither a string nor an object")
	}

	for _, shape := range contentShapes {
		fields, ok := matchShape(obj, shape)
		if ok {
			return Content{Kind: shape.kind, Fields: fields}, nil
		}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return Content{}, schemaError("decode", "no known content shape has keys %v", keys)
}

func matchShape(obj map[string]json.RawMessage, shape contentShape) (map[string]string, bool) {
	fields := make(map[string]string, len(shape.required)+len(shape.optional))
	for _, key := range shape.required {
		v, ok := stringField(obj, key)
		if !ok {
			return nil, false
		}
		fields[key] = v
	}
	for _, key := range shape.optional {
		if v, ok := stringField(obj, key); ok {
			fields[key] = v
		}
	}
	return fields, true
}

func stringField(obj map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := obj[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
