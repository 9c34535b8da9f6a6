package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"questctl/internal/config"
	"questctl/internal/exitcode"
	"questctl/internal/service"
)

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Quest reference errors.
var (
	ErrRefRequired   = errors.New("quest reference required")
	ErrRefOutOfRange = errors.New("quest number out of range")
	ErrQuestNotFound = errors.New("quest not found")
)

// ResolveTask finds a quest by its 1-based position in the quest list or
// by ID. Positions count every quest, active or not, when all is true,
// and only active quests otherwise.
func ResolveTask(ctx context.Context, svc service.Service, ref string, all bool) (int, service.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, service.Task{}, ErrRefRequired
	}
	tasks, err := svc.ListTasks(ctx, !all)
	if err != nil {
		return 0, service.Task{}, err
	}
	if isAllDigits(ref) {
		n, err := strconv.Atoi(ref)
		if err != nil || n < 1 || n > len(tasks) {
			return 0, service.Task{}, fmt.Errorf("%w: %s", ErrRefOutOfRange, ref)
		}
		return n, tasks[n-1], nil
	}
	for i, t := range tasks {
		if t.ID == ref {
			return i + 1, t, nil
		}
	}
	t, err := svc.GetTask(ctx, ref)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return 0, service.Task{}, fmt.Errorf("%w: %s", ErrQuestNotFound, ref)
		}
		return 0, service.Task{}, err
	}
	return 0, t, nil
}

// resolveTaskArg runs ResolveTask on args[0] and reports failures.
func resolveTaskArg(ctx context.Context, cfg *config.Config, svc service.Service, args []string, all bool, errOut io.Writer) (int, service.Task, int, bool) {
	if len(args) == 0 {
		return 0, service.Task{}, usageError(errOut, "%v", ErrRefRequired), false
	}
	pos, t, err := ResolveTask(ctx, svc, args[0], all)
	if err != nil {
		if isRefError(err) {
			return 0, service.Task{}, usageError(errOut, "%v", err), false
		}
		return 0, service.Task{}, fail(cfg, errOut, err), false
	}
	return pos, t, exitcode.Success, true
}

func isRefError(err error) bool {
	return errors.Is(err, ErrRefRequired) ||
		errors.Is(err, ErrRefOutOfRange) ||
		errors.Is(err, ErrQuestNotFound)
}
