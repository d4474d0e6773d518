package rpcserver

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func testServer() *Server {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), Options{})
}

func TestHandleQuery(t *testing.T) {
	t.Parallel()

	srv := testServer()

	resp := srv.Handle([]byte(`{"root":{"a":{"b":42}},"expr":"$.a.b"}`))

	if resp.Error != "" {
		t.Fatalf("unexpected error: %s", resp.Error)
	}

	if got, want := string(resp.Result), `{"type":"one","data":42}`; got != want {
		t.Errorf("result = %s, want %s", got, want)
	}
}

func TestHandleMany(t *testing.T) {
	t.Parallel()

	srv := testServer()

	resp := srv.Handle([]byte(`{"root":{"xs":[1,2,3]},"expr":"$.xs.*"}`))

	if resp.Error != "" {
		t.Fatalf("unexpected error: %s", resp.Error)
	}

	if got, want := string(resp.Result), `{"type":"many","data":[1,2,3]}`; got != want {
		t.Errorf("result = %s, want %s", got, want)
	}
}

func TestHandleBadExpression(t *testing.T) {
	t.Parallel()

	srv := testServer()

	resp := srv.Handle([]byte(`{"root":{},"expr":"$.((("}`))

	if resp.Error == "" {
		t.Fatalf("expected an error for a malformed expression")
	}
}

func TestHandleMissingFields(t *testing.T) {
	t.Parallel()

	srv := testServer()

	if resp := srv.Handle([]byte(`{"expr":"$"}`)); resp.Error == "" {
		t.Errorf("expected an error for missing root")
	}

	if resp := srv.Handle([]byte(`{"root":{}}`)); resp.Error == "" {
		t.Errorf("expected an error for missing expr")
	}
}

func TestServeStdioLineProtocol(t *testing.T) {
	t.Parallel()

	srv := testServer()

	in := strings.NewReader(
		`{"root":{"a":1},"expr":"$.a"}` + "\n" +
			`{"root":{"a":1},"expr":"$.missing"}` + "\n",
	)

	var out bytes.Buffer

	if err := srv.ServeStdio(in, &out); err != nil {
		t.Fatalf("ServeStdio: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d response lines, want 2", len(lines))
	}

	var first Response
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	if got, want := string(first.Result), `{"type":"one","data":1}`; got != want {
		t.Errorf("first result = %s, want %s", got, want)
	}

	var second Response
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	if got, want := string(second.Result), `{"type":"empty"}`; got != want {
		t.Errorf("second result = %s, want %s", got, want)
	}
}
