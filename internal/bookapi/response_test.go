package bookapi

import (
	"testing"
)

func TestDecodeError(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		ok         bool
		code       string
		message    string
		fieldCount int
	}{
		{
			name:    "string message",
			body:    `{"error":"not_found","message":"book not found"}`,
			ok:      true,
			code:    "not_found",
			message: "book not found",
		},
		{
			name:       "field issues",
			body:       `{"error":"bad_request","message":[{"field":"title","rule":"min"},{"field":"isbn","rule":"len"}]}`,
			ok:         true,
			code:       "bad_request",
			message:    "title: min, isbn: len",
			fieldCount: 2,
		},
		{
			name:    "string list",
			body:    `{"message":["title is required","isbn is invalid"]}`,
			ok:      true,
			message: "title is required; isbn is invalid",
		},
		{
			name: "object without message",
			body: `{"error":"internal_server_error"}`,
			ok:   true,
			code: "internal_server_error",
		},
		{
			name: "plain text",
			body: "failure injected\n",
		},
		{
			name: "empty",
			body: "",
		},
		{
			name: "array",
			body: `[1,2]`,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			env, ok := DecodeError([]byte(tc.body))
			if ok != tc.ok {
				t.Fatalf("ok mismatch: expected %v, got %v", tc.ok, ok)
			}
			if env.Code != tc.code {
				t.Fatalf("code mismatch: expected %q, got %q", tc.code, env.Code)
			}
			if env.Message != tc.message {
				t.Fatalf("message mismatch: expected %q, got %q", tc.message, env.Message)
			}
			if len(env.Fields) != tc.fieldCount {
				t.Fatalf("expected %d fields, got %d", tc.fieldCount, len(env.Fields))
			}
		})
	}
}

func TestDecode(t *testing.T) {
	var payload struct {
		Message string `json:"message"`
	}
	if err := Decode([]byte(`{"message":"book created successfully"}`), &payload); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if payload.Message != "book created successfully" {
		t.Fatalf("unexpected message %q", payload.Message)
	}

	var list []int
	if err := Decode(nil, &list); err != nil {
		t.Fatalf("Decode empty body: %v", err)
	}
	if list != nil {
		t.Fatalf("expected nil slice, got %#v", list)
	}
}
