package quest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"questctl/internal/service"
)

var (
	// ErrNoTaskSelected is returned by Complete when nothing is selected.
	ErrNoTaskSelected = errors.New("no task selected")

	// ErrCodeRequired is returned by Complete for a code quest with no code.
	ErrCodeRequired = errors.New("verification code required")
)

// DefaultJoinDelay is how long Complete waits after opening a Telegram invite.
const DefaultJoinDelay = 3 * time.Second

// Level is the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notifier shows a message to the operator.
type Notifier interface {
	Notify(level Level, msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(level Level, msg string)

func (f NotifierFunc) Notify(level Level, msg string) { f(level, msg) }

// Opener opens a URL in an external browser.
type Opener interface {
	Open(ctx context.Context, url string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, url string) error

func (f OpenerFunc) Open(ctx context.Context, url string) error { return f(ctx, url) }

// Console holds the quest the operator has selected and completes it.
// It replaces page-global state; one Console belongs to one invocation.
type Console struct {
	opener    Opener
	notifier  Notifier
	log       *zap.Logger
	joinDelay time.Duration

	mu       sync.Mutex
	selected *service.Task
	desc     Descriptor
}

// Option configures a Console.
type Option func(*Console)

// WithJoinDelay sets the Telegram join wait.
func WithJoinDelay(d time.Duration) Option {
	return func(c *Console) {
		if d >= 0 {
			c.joinDelay = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Console) {
		if log != nil {
			c.log = log
		}
	}
}

// NewConsole creates a Console with nothing selected.
func NewConsole(opener Opener, notifier Notifier, opts ...Option) *Console {
	c := &Console{
		opener:    opener,
		notifier:  notifier,
		log:       zap.NewNop(),
		joinDelay: DefaultJoinDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Select makes t the current quest and returns its detail view.
func (c *Console) Select(position int, t service.Task) Detail {
	d := Classify(t)

	c.mu.Lock()
	c.selected = &t
	c.desc = d
	c.mu.Unlock()

	c.log.Info("quest selected",
		zap.String("title", t.Title),
		zap.String("type", string(d.Kind)),
		zap.String("handler", d.Handler),
		zap.Bool("instant", d.Instant),
		zap.Bool("needs_code", d.NeedsCode))
	return NewDetail(position, t)
}

// Close clears the selection.
func (c *Console) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = nil
	c.desc = Descriptor{}
}

// Selected returns the current quest and its descriptor.
func (c *Console) Selected() (service.Task, Descriptor, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return service.Task{}, Descriptor{}, false
	}
	return *c.selected, c.desc, true
}

// Complete runs the completion flow of the selected quest. It opens the
// quest link and tells the operator where verification happens; it never
// verifies anything itself. The selection is cleared on success.
func (c *Console) Complete(ctx context.Context, code string) error {
	t, d, ok := c.Selected()
	if !ok {
		c.log.Error("no task selected")
		return ErrNoTaskSelected
	}

	c.log.Info("starting quest completion",
		zap.String("type", string(d.Kind)),
		zap.String("handler", d.Handler),
		zap.String("task_id", t.ID))

	var err error
	switch d.Kind {
	case KindTelegram:
		err = c.completeTelegram(ctx, t)
	case KindTwitter:
		err = c.completeTwitter(ctx, t, d)
	case KindYouTube:
		err = c.completeYouTube(ctx, t, code)
	case KindSocialMedia:
		err = c.completeSocialMedia(ctx, t, d)
	case KindWebsite:
		err = c.completeWebsite(ctx, t, d)
	default:
		err = c.completeGeneral(ctx, t)
	}

	switch {
	case err == nil:
		c.Close()
		return nil
	case errors.Is(err, ErrCodeRequired), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	c.log.Error("quest completion failed", zap.Error(err))
	c.notifier.Notify(LevelError, "❌ Error completing quest. Please try again.")
	return err
}

// open opens the quest link when there is one.
func (c *Console) open(ctx context.Context, t service.Task) error {
	if t.URL == "" {
		return nil
	}
	if err := c.opener.Open(ctx, t.URL); err != nil {
		return fmt.Errorf("open %s: %w", t.URL, err)
	}
	return nil
}

func (c *Console) completeTelegram(ctx context.Context, t service.Task) error {
	if err := c.open(ctx, t); err != nil {
		return err
	}
	c.notifier.Notify(LevelInfo, "⏳ Please join the channel, then come back to verify...")

	if c.joinDelay > 0 {
		timer := time.NewTimer(c.joinDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	c.notifier.Notify(LevelSuccess, `✅ Please verify in the Telegram bot by clicking the "Verify Membership" button!`)
	return nil
}

func (c *Console) completeTwitter(ctx context.Context, t service.Task, d Descriptor) error {
	if err := c.open(ctx, t); err != nil {
		return err
	}
	c.notifier.Notify(LevelInfo, fmt.Sprintf("⏳ Complete the %s action on Twitter, then submit for verification in the bot!", d.ActionType))
	return nil
}

func (c *Console) completeYouTube(ctx context.Context, t service.Task, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		c.notifier.Notify(LevelWarning, "⚠️ Please enter the verification code from the video!")
		return ErrCodeRequired
	}
	if err := c.open(ctx, t); err != nil {
		return err
	}
	c.notifier.Notify(LevelInfo, `🔑 Code "`+code+`" submitted! Please verify in the Telegram bot.`)
	return nil
}

func (c *Console) completeSocialMedia(ctx context.Context, t service.Task, d Descriptor) error {
	if err := c.open(ctx, t); err != nil {
		return err
	}
	c.notifier.Notify(LevelInfo, fmt.Sprintf("⏳ Complete the action on %s, then submit for verification in the bot!", strings.ToUpper(d.Platform)))
	return nil
}

func (c *Console) completeWebsite(ctx context.Context, t service.Task, d Descriptor) error {
	if err := c.open(ctx, t); err != nil {
		return err
	}
	switch d.SubType {
	case SubTypeAuto:
		c.notifier.Notify(LevelSuccess, "✅ Website opened! Please claim your XP in the Telegram bot.")
	case SubTypeTimer:
		c.notifier.Notify(LevelInfo, fmt.Sprintf("⏱️ Website opened! Please wait %d seconds before claiming in the bot.", d.TimerSeconds))
	default:
		c.notifier.Notify(LevelInfo, "⏳ Complete the action on the website, then submit for verification in the bot!")
	}
	return nil
}

func (c *Console) completeGeneral(ctx context.Context, t service.Task) error {
	if err := c.open(ctx, t); err != nil {
		return err
	}
	c.notifier.Notify(LevelInfo, "✅ Link opened! Please complete in the Telegram bot.")
	return nil
}
