package quest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questctl/internal/quest"
	"questctl/internal/service"
)

func labels(badges []quest.Badge) []string {
	var out []string
	for _, b := range badges {
		out = append(out, b.Label)
	}
	return out
}

func TestNewCard(t *testing.T) {
	tk := task("website", quest.MethodTimerBased)
	tk.ID = "t1"
	tk.Title = "Read the blog"
	tk.PointsReward = 25
	tk.IsBonus = true

	c := quest.NewCard(2, tk)
	assert.Equal(t, 2, c.Position)
	assert.Equal(t, "🌐", c.Emoji)
	assert.Equal(t, "WEBSITE", c.Platform)
	assert.Equal(t, "+25 XP", c.Points)
	assert.Equal(t, quest.DefaultDescription, c.Description)
	assert.Equal(t, []string{"⏳ Review", "🌟 Bonus", "⏱️ 30s"}, labels(c.Badges))
	assert.Equal(t, "Start →", c.Footer)
	assert.Equal(t, "green", c.Color)
}

func TestNewCard_CompletedCodeQuest(t *testing.T) {
	tk := task("youtube", quest.MethodYouTubeCode)
	tk.Description = "Watch the trailer"
	tk.Completed = true

	c := quest.NewCard(1, tk)
	assert.Equal(t, []string{"⚡ Instant", "🔑 Code"}, labels(c.Badges))
	assert.Equal(t, "✅ Done", c.Footer)
	assert.Equal(t, "Watch the trailer", c.Description)
}

func TestNewDetail_CodePrompt(t *testing.T) {
	tk := task("youtube", quest.MethodYouTubeCode)
	tk.VerificationData.CaseSensitive = boolPtr(false)
	tk.VerificationData.Hint = "Look at the end"

	d := quest.NewDetail(1, tk)
	require.NotNil(t, d.Code)
	assert.Equal(t, "Enter code (not case-sensitive)", d.Code.Placeholder)
	assert.Equal(t, "💡 Hint: Look at the end", d.Code.Hint)
	assert.Equal(t, "⚡ Instant Verification", d.VerificationBadge.Label)
	assert.Equal(t, "YouTubeQuestHandler", d.Handler)
	assert.Empty(t, d.ActionLines)

	tk.VerificationData.CaseSensitive = nil
	assert.Equal(t, "Enter code (case-sensitive)", quest.NewDetail(1, tk).Code.Placeholder)
}

func TestNewDetail_ActionLines(t *testing.T) {
	tw := task("twitter", quest.MethodTwitterAction)
	tw.VerificationData.ActionType = "like"
	d := quest.NewDetail(1, tw)
	assert.Nil(t, d.Code)
	assert.Equal(t, "⏳ Manual Verification", d.VerificationBadge.Label)
	assert.Equal(t, []string{"❤️ Action: LIKE"}, d.ActionLines)

	d = quest.NewDetail(1, task("github", ""))
	assert.Equal(t, []string{"💻 Platform: GITHUB", "Action: Complete the action"}, d.ActionLines)

	d = quest.NewDetail(1, task("website", quest.MethodTimerBased))
	assert.Equal(t, []string{"⏱️ Timer Quest: You must wait 30 seconds after visiting the website before claiming XP."}, d.ActionLines)

	assert.Empty(t, quest.NewDetail(1, task("website", "")).ActionLines)
	assert.Empty(t, quest.NewDetail(1, service.Task{}).ActionLines)
}
