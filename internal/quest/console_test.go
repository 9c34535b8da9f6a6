package quest_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questctl/internal/quest"
	"questctl/internal/service"
)

type note struct {
	level quest.Level
	msg   string
}

type recorder struct {
	mu     sync.Mutex
	opened []string
	notes  []note
	err    error
}

func (r *recorder) Open(ctx context.Context, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.opened = append(r.opened, url)
	return nil
}

func (r *recorder) Notify(level quest.Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, note{level, msg})
}

func newConsole(r *recorder) *quest.Console {
	return quest.NewConsole(r, r, quest.WithJoinDelay(0))
}

func TestComplete_NoSelection(t *testing.T) {
	r := &recorder{}
	c := newConsole(r)

	err := c.Complete(context.Background(), "")
	assert.ErrorIs(t, err, quest.ErrNoTaskSelected)
	assert.Empty(t, r.opened)
	assert.Empty(t, r.notes)
}

func TestComplete_AfterClose(t *testing.T) {
	r := &recorder{}
	c := newConsole(r)
	c.Select(1, task("discord", ""))
	c.Close()

	assert.ErrorIs(t, c.Complete(context.Background(), ""), quest.ErrNoTaskSelected)
	assert.Empty(t, r.opened)
}

func TestComplete_Variants(t *testing.T) {
	tests := []struct {
		name  string
		task  service.Task
		code  string
		level quest.Level
		msg   string
	}{
		{
			name:  "telegram",
			task:  task("telegram", quest.MethodTelegramMembership),
			level: quest.LevelSuccess,
			msg:   `✅ Please verify in the Telegram bot by clicking the "Verify Membership" button!`,
		},
		{
			name:  "twitter",
			task:  task("twitter", quest.MethodTwitterAction),
			level: quest.LevelInfo,
			msg:   "⏳ Complete the follow action on Twitter, then submit for verification in the bot!",
		},
		{
			name:  "youtube",
			task:  task("youtube", quest.MethodYouTubeCode),
			code:  "  QUEST42 ",
			level: quest.LevelInfo,
			msg:   `🔑 Code "QUEST42" submitted! Please verify in the Telegram bot.`,
		},
		{
			name:  "social",
			task:  task("reddit", ""),
			level: quest.LevelInfo,
			msg:   "⏳ Complete the action on REDDIT, then submit for verification in the bot!",
		},
		{
			name:  "website auto",
			task:  task("website", ""),
			level: quest.LevelSuccess,
			msg:   "✅ Website opened! Please claim your XP in the Telegram bot.",
		},
		{
			name:  "website timer",
			task:  task("website", quest.MethodTimerBased),
			level: quest.LevelInfo,
			msg:   "⏱️ Website opened! Please wait 30 seconds before claiming in the bot.",
		},
		{
			name:  "website manual",
			task:  task("website", quest.MethodManual),
			level: quest.LevelInfo,
			msg:   "⏳ Complete the action on the website, then submit for verification in the bot!",
		},
		{
			name:  "general",
			task:  task("", ""),
			level: quest.LevelInfo,
			msg:   "✅ Link opened! Please complete in the Telegram bot.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{}
			c := newConsole(r)
			tt.task.URL = "https://example.com/" + tt.name
			c.Select(1, tt.task)

			require.NoError(t, c.Complete(context.Background(), tt.code))
			assert.Equal(t, []string{tt.task.URL}, r.opened)
			require.NotEmpty(t, r.notes)
			last := r.notes[len(r.notes)-1]
			assert.Equal(t, tt.level, last.level)
			assert.Equal(t, tt.msg, last.msg)

			_, _, ok := c.Selected()
			assert.False(t, ok, "selection cleared")
		})
	}
}

func TestComplete_TelegramWaitsForJoin(t *testing.T) {
	r := &recorder{}
	c := quest.NewConsole(r, r, quest.WithJoinDelay(30*time.Millisecond))
	c.Select(1, task("telegram", quest.MethodTelegramMembership))

	start := time.Now()
	require.NoError(t, c.Complete(context.Background(), ""))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	require.Len(t, r.notes, 2)
	assert.Equal(t, "⏳ Please join the channel, then come back to verify...", r.notes[0].msg)
}

func TestComplete_TelegramCancelledDuringWait(t *testing.T) {
	r := &recorder{}
	c := quest.NewConsole(r, r, quest.WithJoinDelay(time.Hour))
	c.Select(1, task("telegram", quest.MethodTelegramMembership))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := c.Complete(ctx, "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, r.notes, 1)

	_, _, ok := c.Selected()
	assert.True(t, ok)
}

func TestComplete_YouTubeRequiresCode(t *testing.T) {
	r := &recorder{}
	c := newConsole(r)
	tk := task("youtube", quest.MethodYouTubeCode)
	tk.URL = "https://youtu.be/x"
	c.Select(1, tk)

	err := c.Complete(context.Background(), "   ")
	assert.ErrorIs(t, err, quest.ErrCodeRequired)
	assert.Empty(t, r.opened)
	assert.Equal(t, []note{{quest.LevelWarning, "⚠️ Please enter the verification code from the video!"}}, r.notes)

	got, _, ok := c.Selected()
	assert.True(t, ok, "selection kept")
	assert.Equal(t, tk.URL, got.URL)
}

func TestComplete_EmptyURLOpensNothing(t *testing.T) {
	r := &recorder{}
	c := newConsole(r)
	c.Select(1, task("discord", ""))

	require.NoError(t, c.Complete(context.Background(), ""))
	assert.Empty(t, r.opened)
	assert.Len(t, r.notes, 1)
}

func TestComplete_OpenerFailure(t *testing.T) {
	r := &recorder{err: errors.New("no display")}
	c := newConsole(r)
	tk := task("twitter", quest.MethodTwitterAction)
	tk.URL = "https://x.com/quest"
	c.Select(1, tk)

	err := c.Complete(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no display")
	assert.Equal(t, []note{{quest.LevelError, "❌ Error completing quest. Please try again."}}, r.notes)

	_, _, ok := c.Selected()
	assert.True(t, ok)
}

func TestSelect_ReturnsDetail(t *testing.T) {
	r := &recorder{}
	c := newConsole(r)
	tk := task("twitter", quest.MethodTwitterAction)
	tk.ID = "abc"

	d := c.Select(4, tk)
	assert.Equal(t, 4, d.Position)
	assert.Equal(t, "Follow & Submit", d.ButtonText)

	got, desc, ok := c.Selected()
	require.True(t, ok)
	assert.Equal(t, "abc", got.ID)
	assert.Equal(t, quest.KindTwitter, desc.Kind)
}
