package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "model not found",
			code:    CodeModelNotFound,
			wantMsg: "Model file not found",
			wantCat: CategoryLifecycle,
		},
		{
			name:    "unknown asset type",
			code:    CodeUnknownAssetType,
			wantMsg: "Unknown asset type",
			wantCat: CategoryAsset,
		},
		{
			name:    "request fault",
			code:    CodeRequestHandlingFault,
			wantMsg: "Request handling failed",
			wantCat: CategoryRequest,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestError_Error(t *testing.T) {
	err := New(CodeModelNotFound)
	if got, want := err.Error(), "E100: Model file not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err2 := &Error{Message: "test error"}
	if err2.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", err2.Error(), "test error")
	}

	err3 := New(CodeBindFailure).Wrap(fmt.Errorf("address already in use"))
	if got, want := err3.Error(), "E101: Cannot bind server address: address already in use"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestError_Is(t *testing.T) {
	err := fmt.Errorf("serve: %w", New(CodeModelNotFound).WithDetail("model.onnx"))

	if !stderrors.Is(err, ErrModelNotFound) {
		t.Error("errors.Is(err, ErrModelNotFound) = false, want true")
	}
	if stderrors.Is(err, ErrBindFailure) {
		t.Error("errors.Is(err, ErrBindFailure) = true, want false")
	}
	if stderrors.Is(err, &Error{}) {
		t.Error("errors.Is against an uncoded error should be false")
	}
}

func TestError_Wrap(t *testing.T) {
	cause := fmt.Errorf("permission denied")
	err := New(CodeBindFailure).Wrap(cause)

	if err.Unwrap() != cause {
		t.Error("Unwrap() should return the wrapped error")
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(fmt.Errorf("outer: %w", New(CodeInvalidPort))); got != CodeInvalidPort {
		t.Errorf("CodeOf() = %q, want %q", got, CodeInvalidPort)
	}
	if got := CodeOf(fmt.Errorf("plain")); got != "" {
		t.Errorf("CodeOf(plain) = %q, want empty", got)
	}
	if got := CodeOf(nil); got != "" {
		t.Errorf("CodeOf(nil) = %q, want empty", got)
	}
}

func TestFormat(t *testing.T) {
	SetColors(false)
	defer SetColors(true)

	err := New(CodeBindFailure).
		Wrap(fmt.Errorf("bind: address already in use")).
		WithSuggestion("Pass a different --port")

	formatted := err.Format()

	for _, want := range []string{"E101", "Cannot bind server address", "address already in use", "Hint: Pass a different --port"} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format() missing %q in:\n%s", want, formatted)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	if got, want := New(CodeModelNotFound).FormatCompact(), "E100: Model file not found"; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFprint(t *testing.T) {
	SetColors(false)
	defer SetColors(true)

	var buf bytes.Buffer
	Fprint(&buf, fmt.Errorf("serve: %w", New(CodeModelNotFound)))
	if !strings.Contains(buf.String(), "ERROR E100: Model file not found") {
		t.Errorf("Fprint(coded) = %q", buf.String())
	}

	buf.Reset()
	Fprint(&buf, fmt.Errorf("plain failure"))
	if !strings.Contains(buf.String(), "ERROR: plain failure") {
		t.Errorf("Fprint(plain) = %q", buf.String())
	}
}

func TestGetAllCodes(t *testing.T) {
	codes := GetAllCodes()
	found := false
	for _, code := range codes {
		if code == CodeBindFailure {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("%s should be in the codes list", CodeBindFailure)
	}
}

func TestGetTemplate(t *testing.T) {
	template, ok := GetTemplate(CodeUnknownAssetType)
	if !ok {
		t.Fatalf("%s should exist", CodeUnknownAssetType)
	}
	if template.Category != CategoryAsset {
		t.Errorf("Category = %q, want %q", template.Category, CategoryAsset)
	}

	if _, ok := GetTemplate("E999"); ok {
		t.Error("E999 should not exist")
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("short text", 100)
	if len(got) != 1 || got[0] != "short text" {
		t.Errorf("wrapText short text: got %v", got)
	}

	got = wrapText("this is a longer text that should be wrapped", 20)
	if len(got) != 3 {
		t.Errorf("wrapText long text: expected 3 lines, got %d: %v", len(got), got)
	}

	got = wrapText("", 10)
	if len(got) != 0 {
		t.Errorf("wrapText empty: expected empty, got %v", got)
	}
}

func TestColorFunctions(t *testing.T) {
	SetColors(true)
	if !strings.Contains(red("test"), "\033[31m") {
		t.Error("red should contain ANSI code when colors enabled")
	}

	SetColors(false)
	if strings.Contains(red("test"), "\033[") {
		t.Error("red should not contain ANSI code when colors disabled")
	}
	SetColors(true)
}

func TestError_LogValue(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := New(CodeBindFailure).WithDetail("127.0.0.1:8080").Wrap(fmt.Errorf("address already in use"))
	logger.Error("start failed", "error", err)

	var entry struct {
		Error struct {
			Msg    string `json:"msg"`
			Detail string `json:"detail"`
			Cause  string `json:"cause"`
		} `json:"error"`
	}
	if jerr := json.Unmarshal(buf.Bytes(), &entry); jerr != nil {
		t.Fatalf("log line %q is not JSON: %v", buf.String(), jerr)
	}
	if entry.Error.Msg != "E101: Cannot bind server address" {
		t.Errorf("msg = %q", entry.Error.Msg)
	}
	if entry.Error.Detail != "127.0.0.1:8080" || entry.Error.Cause != "address already in use" {
		t.Errorf("detail = %q, cause = %q", entry.Error.Detail, entry.Error.Cause)
	}
}
