package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad input"), 400},
		{NotFound("chat not found"), 404},
		{Forbidden("admin only"), 403},
		{Conflict("already a member"), 409},
		{errors.New("mongo blew up"), 500},
		{fmt.Errorf("wrapped: %w", ErrForbidden), 403},
	}
	for _, c := range cases {
		if got := Status(c.err); got != c.want {
			t.Errorf("Status(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestMessageHidesInternalErrors(t *testing.T) {
	if msg := Message(errors.New("dial tcp: connection refused")); msg != "Server error" {
		t.Errorf("internal error leaked: %q", msg)
	}
	if msg := Message(Forbidden("only group admin can remove members")); msg != "only group admin can remove members" {
		t.Errorf("msg = %q", msg)
	}
}

func TestErrorMessageIsBare(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{Validation("group name is required"), "group name is required"},
		{NotFound("chat %s not found", "abc"), "chat abc not found"},
		{Conflict("user already in group"), "user already in group"},
	}
	for _, c := range cases {
		if c.err.Error() != c.want {
			t.Errorf("Error() = %q, want %q", c.err.Error(), c.want)
		}
	}
}
