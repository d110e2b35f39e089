package cli

import (
	"bytes"
	"errors"
	"testing"

	"envelope/internal/budget"
)

func TestPersistNotice(t *testing.T) {
	var buf bytes.Buffer
	notify := PersistNotice(&buf)

	notify(&budget.PersistenceError{Key: "categories", Attempts: 3, Err: errors.New("disk full")})

	want := "warning: categories not saved after 3 attempt(s), retrying before exit: disk full\n"
	if buf.String() != want {
		t.Fatalf("PersistNotice() wrote %q, want %q", buf.String(), want)
	}
}

func TestPersistNoticeNilWriter(t *testing.T) {
	notify := PersistNotice(nil)
	notify(&budget.PersistenceError{Key: "accounts", Attempts: 1, Err: errors.New("x")})
}
