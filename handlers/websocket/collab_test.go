package websocket

import "testing"

func TestStringArg(t *testing.T) {
	if s, ok := stringArg([]any{"abc123"}); !ok || s != "abc123" {
		t.Errorf("stringArg = %q, %v", s, ok)
	}
	if _, ok := stringArg(nil); ok {
		t.Errorf("empty args should not parse")
	}
	if _, ok := stringArg([]any{42}); ok {
		t.Errorf("non-string arg should not parse")
	}
}

func TestParseCodeChangeObjectForm(t *testing.T) {
	roomID, code := parseCodeChange([]any{map[string]any{
		"roomId": "abc123",
		"code":   "let x = 1",
	}})
	if roomID != "abc123" || code != "let x = 1" {
		t.Errorf("parsed roomID=%q code=%q", roomID, code)
	}
}

func TestParseCodeChangeBareString(t *testing.T) {
	roomID, code := parseCodeChange([]any{"let x = 1"})
	if roomID != "" {
		t.Errorf("bare string should carry no room, got %q", roomID)
	}
	if code != "let x = 1" {
		t.Errorf("code = %q", code)
	}
}

func TestParseCodeChangeGarbage(t *testing.T) {
	if roomID, code := parseCodeChange([]any{42}); roomID != "" || code != "" {
		t.Errorf("garbage payload should parse empty, got %q %q", roomID, code)
	}
	if roomID, code := parseCodeChange(nil); roomID != "" || code != "" {
		t.Errorf("no payload should parse empty, got %q %q", roomID, code)
	}
}

func TestParseSyncCode(t *testing.T) {
	code, target, ok := parseSyncCode([]any{map[string]any{
		"code":       "shared text",
		"toSocketId": "sock-9",
	}})
	if !ok || code != "shared text" || target != "sock-9" {
		t.Errorf("parsed code=%q target=%q ok=%v", code, target, ok)
	}
}

func TestParseSyncCodeMissingTarget(t *testing.T) {
	if _, _, ok := parseSyncCode([]any{map[string]any{"code": "x"}}); ok {
		t.Errorf("payload without target should not parse")
	}
	if _, _, ok := parseSyncCode([]any{"just a string"}); ok {
		t.Errorf("non-object payload should not parse")
	}
}
