package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNewFromRegistry(t *testing.T) {
	err := New("U001")
	if err.Category != CategoryHook {
		t.Errorf("expected hook category, got %s", err.Category)
	}
	if !strings.HasPrefix(err.Error(), "U001: ") {
		t.Errorf("unexpected message %q", err.Error())
	}
	if err.Suggestion == "" {
		t.Error("expected registered suggestion")
	}
}

func TestUnknownCode(t *testing.T) {
	if New("U999").Message != "Unknown error" {
		t.Error("unknown codes should produce a placeholder message")
	}
}

func TestIsMatchesCode(t *testing.T) {
	sentinel := New("U002")
	err := fmt.Errorf("revalidate users: %w", New("U002").WithDetail("after 5s"))

	if !stderrors.Is(err, sentinel) {
		t.Error("errors with the same code should match")
	}
	if stderrors.Is(err, New("U005")) {
		t.Error("different codes should not match")
	}
	if Code(err) != "U002" {
		t.Errorf("expected U002, got %q", Code(err))
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := stderrors.New("EOF")
	err := New("U003").Wrap(cause)
	if !stderrors.Is(err, cause) {
		t.Error("wrapped cause should be reachable")
	}
	if !strings.Contains(err.Error(), "EOF") {
		t.Errorf("message should include cause: %q", err.Error())
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "U005") != nil {
		t.Error("nil stays nil")
	}
	he := New("U004")
	if FromError(fmt.Errorf("ctx: %w", he), "U005") != he {
		t.Error("existing HookError should be returned as is")
	}
	if got := FromError(stderrors.New("boom"), "U005"); got.Code != "U005" {
		t.Errorf("expected U005, got %s", got.Code)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	out := New("U003").WithDetail(`key "k" holds "abc"`).Wrap(stderrors.New("invalid character")).Format()
	for _, want := range []string{"ERROR U003: Stored value could not be decoded", `key "k" holds "abc"`, "Caused by: invalid character", "Hint: "} {
		if !strings.Contains(out, want) {
			t.Errorf("Format output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatJSON(t *testing.T) {
	out := New("U012").WithDetail("redis").FormatJSON()
	if !strings.Contains(out, `"code":"U012"`) || !strings.Contains(out, `"detail":"redis"`) {
		t.Errorf("unexpected JSON %s", out)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four", 9)
	if len(lines) != 3 || lines[0] != "one two" || lines[1] != "three" || lines[2] != "four" {
		t.Errorf("unexpected wrap %q", lines)
	}
}

func TestGetAllCodesSorted(t *testing.T) {
	codes := GetAllCodes()
	for i := 1; i < len(codes); i++ {
		if codes[i-1] > codes[i] {
			t.Fatalf("codes not sorted: %v", codes)
		}
	}
}
