package twocaptcha

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestDecodeContent(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		kind   ContentKind
		text   string
		fields map[string]string
	}{
		{
			name: "bare string is tried first",
			raw:  `"03AGdBq24PBCbwiDRaS_MJ7Z"`,
			kind: ContentString,
			text: "03AGdBq24PBCbwiDRaS_MJ7Z",
		},
		{
			name: "geetest triple",
			raw:  `{"geetest_challenge":"c","geetest_validate":"v","geetest_seccode":"s"}`,
			kind: ContentGeeTest,
			fields: map[string]string{
				"geetest_challenge": "c", "geetest_validate": "v", "geetest_seccode": "s",
			},
		},
		{
			name:   "capy keys with optional respKey",
			raw:    `{"captchakey":"PUZZLE_x","challengekey":"ch","answer":"a","respKey":"r"}`,
			kind:   ContentCapy,
			fields: map[string]string{"captchakey": "PUZZLE_x", "challengekey": "ch", "answer": "a", "respKey": "r"},
		},
		{
			name:   "capy wins over lemin when both match",
			raw:    `{"captchakey":"k","challengekey":"ch","answer":"a","challenge_id":"id"}`,
			kind:   ContentCapy,
			fields: map[string]string{"captchakey": "k", "challengekey": "ch", "answer": "a"},
		},
		{
			name:   "recaptcha pair wins over the bare token shape",
			raw:    `{"gRecaptchaResponse":"xyz","token":"xyz"}`,
			kind:   ContentRecaptcha,
			fields: map[string]string{"gRecaptchaResponse": "xyz", "token": "xyz"},
		},
		{
			name:   "recaptcha shape keeps the optional hcaptcha keys",
			raw:    `{"token":"P1_tok","respKey":"E0_rk","userAgent":"UA","gRecaptchaResponse":"P1_tok"}`,
			kind:   ContentRecaptcha,
			fields: map[string]string{"gRecaptchaResponse": "P1_tok", "token": "P1_tok", "respKey": "E0_rk", "userAgent": "UA"},
		},
		{
			name:   "lemin answer and challenge id",
			raw:    `{"answer":"0xaxakx0xaxaxkxax","challenge_id":"e0348984-92ec-23af-1488-446e3a58946c"}`,
			kind:   ContentLemin,
			fields: map[string]string{"answer": "0xaxakx0xaxaxkxax", "challenge_id": "e0348984-92ec-23af-1488-446e3a58946c"},
		},
		{
			name:   "token with optional fields",
			raw:    `{"token":"P1_eyJ0","respKey":"E0_eyJ0","userAgent":"Mozilla/5.0"}`,
			kind:   ContentToken,
			fields: map[string]string{"token": "P1_eyJ0", "respKey": "E0_eyJ0", "userAgent": "Mozilla/5.0"},
		},
		{
			name:   "extra keys do not prevent a match",
			raw:    `{"token":"t","extra":42}`,
			kind:   ContentToken,
			fields: map[string]string{"token": "t"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := decodeContent(json.RawMessage(tt.raw))
			if err != nil {
				t.Fatalf("decodeContent: %v", err)
			}
			if c.Kind != tt.kind {
				t.Fatalf("expected kind %s, got %s", tt.kind, c.Kind)
			}
			if c.Text != tt.text {
				t.Fatalf("expected text %q, got %q", tt.text, c.Text)
			}
			if tt.fields != nil && !reflect.DeepEqual(c.Fields, tt.fields) {
				t.Fatalf("expected fields %v, got %v", tt.fields, c.Fields)
			}
		})
	}

	mismatches := []struct {
		name string
		raw  string
	}{
		{"unknown object", `{"foo":"bar"}`},
		{"null", `null`},
		{"number", `42`},
		{"array", `["a","b"]`},
		{"non-string token", `{"token":5}`},
		{"partial geetest", `{"geetest_challenge":"c","geetest_validate":"v"}`},
	}
	for _, tt := range mismatches {
		t.Run(tt.name+" is a schema mismatch", func(t *testing.T) {
			_, err := decodeContent(json.RawMessage(tt.raw))
			if !errors.Is(err, ErrSchemaMismatch) {
				t.Fatalf("expected ErrSchemaMismatch, got %v", err)
			}
		})
	}
}

func TestEnvelope(t *testing.T) {
	t.Run("task id accepts digits as string or number", func(t *testing.T) {
		for _, body := range []string{`{"status":1,"request":"12345"}`, `{"status":1,"request":12345}`} {
			env, err := decodeEnvelope("submit", []byte(body))
			if err != nil {
				t.Fatalf("decodeEnvelope(%s): %v", body, err)
			}
			id, err := env.taskID("submit")
			if err != nil || id != 12345 {
				t.Fatalf("taskID(%s) = %d, %v", body, id, err)
			}
		}
	})

	t.Run("non numeric or zero task id is a schema mismatch", func(t *testing.T) {
		for _, body := range []string{`{"status":1,"request":"abc"}`, `{"status":1,"request":"0"}`} {
			env, err := decodeEnvelope("submit", []byte(body))
			if err != nil {
				t.Fatalf("decodeEnvelope: %v", err)
			}
			if _, err := env.taskID("submit"); !errors.Is(err, ErrSchemaMismatch) {
				t.Fatalf("expected ErrSchemaMismatch for %s, got %v", body, err)
			}
		}
	})

	t.Run("missing request field is a schema mismatch", func(t *testing.T) {
		_, err := decodeEnvelope("poll", []byte(`{"status":1}`))
		if !errors.Is(err, ErrSchemaMismatch) {
			t.Fatalf("expected ErrSchemaMismatch, got %v", err)
		}
	})

	t.Run("invalid JSON keeps the decode error", func(t *testing.T) {
		_, err := decodeEnvelope("poll", []byte(`<html>`))
		if !errors.Is(err, ErrSchemaMismatch) {
			t.Fatalf("expected ErrSchemaMismatch, got %v", err)
		}
		var syntax *json.SyntaxError
		if !errors.As(err, &syntax) {
			t.Fatalf("expected wrapped *json.SyntaxError, got %v", err)
		}
	})

	t.Run("code reads string and bare values", func(t *testing.T) {
		env, _ := decodeEnvelope("poll", []byte(`{"status":0,"request":"ERROR_WRONG_USER_KEY"}`))
		if env.code() != "ERROR_WRONG_USER_KEY" {
			t.Fatalf("unexpected code %q", env.code())
		}
	})

	t.Run("numeric cost keeps its decimal text", func(t *testing.T) {
		env, err := decodeEnvelope("poll", []byte(`{"status":1,"request":"x","cost":0.00145,"createTime":1,"endTime":2,"solveCount":3,"ip":"2001:db8::1"}`))
		if err != nil {
			t.Fatalf("decodeEnvelope: %v", err)
		}
		md, err := env.metadata("poll")
		if err != nil {
			t.Fatalf("metadata: %v", err)
		}
		if md.cost != "0.00145" || md.solveCount != 3 || md.ip.String() != "2001:db8::1" {
			t.Fatalf("unexpected metadata: %+v", md)
		}
	})

	t.Run("bad ip or cost is a schema mismatch", func(t *testing.T) {
		bodies := []string{
			`{"status":1,"request":"x","cost":"0.001","createTime":1,"endTime":2,"solveCount":1,"ip":"not-an-ip"}`,
			`{"status":1,"request":"x","cost":"cheap","createTime":1,"endTime":2,"solveCount":1,"ip":"192.0.2.1"}`,
			`{"status":1,"request":"x","cost":"0.001","endTime":2,"solveCount":1,"ip":"192.0.2.1"}`,
		}
		for _, body := range bodies {
			env, err := decodeEnvelope("poll", []byte(body))
			if err != nil {
				t.Fatalf("decodeEnvelope: %v", err)
			}
			if _, err := env.metadata("poll"); !errors.Is(err, ErrSchemaMismatch) {
				t.Fatalf("expected ErrSchemaMismatch for %s, got %v", body, err)
			}
		}
	})
}
