package commands

import "time"

// SetNow pins the clock used by listings and session checks.
func SetNow(f func() time.Time) (restore func()) {
	prev := now
	now = f
	return func() { now = prev }
}

// NewVerifyCmd returns the approve or reject command.
func NewVerifyCmd(approved bool) *VerifyCmd {
	if approved {
		return &VerifyCmd{name: "approve", approved: true}
	}
	return &VerifyCmd{name: "reject"}
}
