package errors

import (
	stderr "errors"
	"io/fs"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrCodeDiskWrite, "writing buffer back to disk failed").
		WithPath("/tmp/a.txt").
		WithOperation("flush").
		WithCause(fs.ErrPermission)

	msg := err.Error()
	if !strings.Contains(msg, "DISK_WRITE") {
		t.Errorf("expected code in message, got %q", msg)
	}
	if !strings.Contains(msg, "/tmp/a.txt") {
		t.Errorf("expected path in message, got %q", msg)
	}
	if !strings.Contains(msg, "flush") {
		t.Errorf("expected operation in message, got %q", msg)
	}
}

func TestCategories(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want ErrorCategory
	}{
		{ErrCodeInvalidConfig, CategoryConfiguration},
		{ErrCodeFileNotFound, CategoryAdmission},
		{ErrCodeEmptyFile, CategoryAdmission},
		{ErrCodeDiskRead, CategoryDisk},
		{ErrCodeDiskWrite, CategoryDisk},
		{ErrCodeInvalidMode, CategoryHandle},
		{ErrCodeInvalidSeek, CategoryHandle},
		{ErrCodeHandleClosed, CategoryHandle},
		{ErrCodeInternalError, CategoryInternal},
	}

	for _, tt := range tests {
		if got := GetCategory(tt.code); got != tt.want {
			t.Errorf("GetCategory(%s) = %s, want %s", tt.code, got, tt.want)
		}
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := NotFound("/tmp/missing.cfg")
	if !stderr.Is(err, New(ErrCodeFileNotFound, "")) {
		t.Error("expected errors.Is to match by code")
	}
	if stderr.Is(err, New(ErrCodeDiskRead, "")) {
		t.Error("expected errors.Is not to match a different code")
	}
}

func TestUnwrap(t *testing.T) {
	cause := fs.ErrNotExist
	err := ReadFailed("/tmp/x.bin", cause)
	if !stderr.Is(err, fs.ErrNotExist) {
		t.Error("expected unwrap chain to reach the cause")
	}
}

func TestRetryableDefaults(t *testing.T) {
	if !IsRetryableByDefault(ErrCodeDiskWrite) {
		t.Error("disk writes should be retryable by default")
	}
	if IsRetryableByDefault(ErrCodeFileNotFound) {
		t.Error("not-found should not be retryable")
	}
	if IsRetryableByDefault(ErrCodeInvalidSeek) {
		t.Error("invalid seek should not be retryable")
	}
}

func TestWithRetryableOverride(t *testing.T) {
	err := WriteFailed("/tmp/a", fs.ErrPermission).WithRetryable(false)
	if err.Retryable {
		t.Error("expected retryable override to stick")
	}
}
