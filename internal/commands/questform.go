package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"go.uber.org/zap"

	"questctl/internal/backend/youtube"
	"questctl/internal/config"
	"questctl/internal/quest"
	"questctl/internal/service"
)

// Quest types accepted by --type.
const (
	TypeTwitter  = "twitter"
	TypeTelegram = "telegram"
	TypeYouTube  = "youtube"
	TypeSocial   = "social"
	TypeWebsite  = "website"
	TypeDaily    = "daily"
	TypeManual   = "manual"
)

// QuestTypes lists the --type values in help order.
var QuestTypes = []string{TypeTwitter, TypeTelegram, TypeYouTube, TypeSocial, TypeWebsite, TypeDaily, TypeManual}

const (
	methodDailyCheckin = "daily_checkin"
	methodManualReview = "manual_review"
)

var (
	twitterActions  = []string{"follow", "like", "retweet", "reply"}
	telegramActions = []string{"join_group", "join_channel"}
	websiteMethods  = map[string]string{
		"auto":   quest.MethodAutoComplete,
		"timer":  quest.MethodTimerBased,
		"manual": quest.MethodManual,
	}
	tweetIDPattern = regexp.MustCompile(`status/(\d+)`)
)

// NewVideoResolver builds the YouTube lookup used to title video quests.
// Tests replace it.
var NewVideoResolver = func(ctx context.Context, cfg *config.Config) (service.VideoResolver, error) {
	return youtube.New(ctx, cfg)
}

// questForm holds the flags shared by addtask and edittask.
type questForm struct {
	fs *flag.FlagSet

	kind        string
	title       string
	description string
	platform    string
	url         string
	points      int
	bonus       bool
	inactive    bool

	action   string
	username string
	tweetURL string

	chatID   string
	chatName string

	code            string
	hint            string
	caseInsensitive bool
	minWatch        int
	codeTimestamp   string
	maxAttempts     int

	actionDescription string
	method            string
	timer             int

	instructions string

	streakBonus int
	resetTime   string
	consecutive int
}

func (f *questForm) register(fs *flag.FlagSet) {
	f.fs = fs
	fs.StringVar(&f.kind, "type", "", "")
	fs.StringVar(&f.title, "title", "", "")
	fs.StringVar(&f.description, "description", "", "")
	fs.StringVar(&f.platform, "platform", "", "")
	fs.StringVar(&f.url, "url", "", "")
	fs.IntVar(&f.points, "points", 10, "")
	fs.BoolVar(&f.bonus, "bonus", false, "")
	fs.BoolVar(&f.inactive, "inactive", false, "")

	fs.StringVar(&f.action, "action", "", "")
	fs.StringVar(&f.username, "username", "", "")
	fs.StringVar(&f.tweetURL, "tweet-url", "", "")

	fs.StringVar(&f.chatID, "chat-id", "", "")
	fs.StringVar(&f.chatName, "chat-name", "", "")

	fs.StringVar(&f.code, "code", "", "")
	fs.StringVar(&f.hint, "hint", "", "")
	fs.BoolVar(&f.caseInsensitive, "case-insensitive", false, "")
	fs.IntVar(&f.minWatch, "min-watch", 120, "")
	fs.StringVar(&f.codeTimestamp, "code-timestamp", "during the video", "")
	fs.IntVar(&f.maxAttempts, "max-attempts", 3, "")

	fs.StringVar(&f.actionDescription, "action-description", "", "")
	fs.StringVar(&f.method, "method", "auto", "")
	fs.IntVar(&f.timer, "timer", quest.DefaultTimerSeconds, "")

	fs.StringVar(&f.instructions, "instructions", "", "")

	fs.IntVar(&f.streakBonus, "streak-bonus", 0, "")
	fs.StringVar(&f.resetTime, "reset-time", "00:00", "")
	fs.IntVar(&f.consecutive, "consecutive", 0, "")
}

// isSet reports whether the named flag was given on the command line.
func (f *questForm) isSet(name string) bool {
	if f.fs == nil {
		return false
	}
	set := false
	f.fs.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			set = true
		}
	})
	return set
}

// build validates the form and returns the create payload.
// Validation failures are user errors.
func (f *questForm) build() (service.TaskInput, error) {
	if f.kind == "" {
		return service.TaskInput{}, fmt.Errorf("quest type required (%s)", strings.Join(QuestTypes, ", "))
	}
	if strings.TrimSpace(f.title) == "" {
		return service.TaskInput{}, errors.New("quest title required")
	}
	if f.points < 0 {
		return service.TaskInput{}, fmt.Errorf("invalid points: %d", f.points)
	}

	in := service.TaskInput{
		Title:                strings.TrimSpace(f.title),
		Description:          f.description,
		Platform:             strings.ToLower(f.platform),
		URL:                  f.url,
		PointsReward:         f.points,
		IsBonus:              f.bonus,
		IsActive:             !f.inactive,
		VerificationRequired: true,
	}
	if err := f.applyType(&in); err != nil {
		return service.TaskInput{}, err
	}
	return in, nil
}

// applyType fills the type-specific fields of in.
func (f *questForm) applyType(in *service.TaskInput) error {
	switch f.kind {
	case TypeTwitter:
		action := orDefault(f.action, "follow")
		if !slices.Contains(twitterActions, action) {
			return fmt.Errorf("invalid twitter action: %s (%s)", action, strings.Join(twitterActions, ", "))
		}
		username := strings.TrimPrefix(strings.TrimSpace(f.username), "@")
		if username == "" {
			return errors.New("twitter username required (--username)")
		}
		vd := &service.VerificationData{
			Method:     quest.MethodTwitterAction,
			ActionType: action,
			Type:       action,
			Username:   username,
		}
		in.URL = "https://twitter.com/" + username
		if action != "follow" {
			if f.tweetURL == "" {
				return fmt.Errorf("tweet URL required for %s (--tweet-url)", action)
			}
			in.URL = f.tweetURL
			if m := tweetIDPattern.FindStringSubmatch(f.tweetURL); m != nil {
				vd.TweetID = m[1]
			}
		}
		in.TaskType = "twitter_" + action
		in.Platform = "twitter"
		in.VerificationData = vd

	case TypeTelegram:
		action := orDefault(f.action, "join_group")
		if !slices.Contains(telegramActions, action) {
			return fmt.Errorf("invalid telegram action: %s (%s)", action, strings.Join(telegramActions, ", "))
		}
		switch {
		case f.url == "":
			return errors.New("telegram invite link required (--url)")
		case f.chatID == "":
			return errors.New("telegram chat ID required (--chat-id)")
		case f.chatName == "":
			return errors.New("telegram chat name required (--chat-name)")
		}
		in.TaskType = "telegram_" + action
		in.Platform = "telegram"
		in.VerificationData = &service.VerificationData{
			Method:     quest.MethodTelegramMembership,
			Type:       action,
			ChatID:     f.chatID,
			ChatName:   f.chatName,
			InviteLink: f.url,
		}

	case TypeYouTube:
		switch {
		case f.url == "":
			return errors.New("YouTube video URL required (--url)")
		case f.code == "":
			return errors.New("secret code required (--code)")
		}
		if _, err := youtube.VideoID(f.url); err != nil {
			return fmt.Errorf("invalid YouTube URL: %s", f.url)
		}
		vd := &service.VerificationData{
			Method:              quest.MethodYouTubeCode,
			Code:                f.code,
			Hint:                f.hint,
			MinWatchTimeSeconds: f.minWatch,
			CodeTimestamp:       f.codeTimestamp,
			MaxAttempts:         f.maxAttempts,
		}
		if f.caseInsensitive {
			sensitive := false
			vd.CaseSensitive = &sensitive
		}
		in.TaskType = "youtube_watch"
		in.Platform = "youtube"
		in.VerificationData = vd

	case TypeSocial:
		if !slices.Contains(quest.SocialPlatforms, in.Platform) {
			return fmt.Errorf("social platform required (--platform %s)", strings.Join(quest.SocialPlatforms, "|"))
		}
		if f.url == "" {
			return errors.New("social quest URL required (--url)")
		}
		in.TaskType = "social_media"
		in.VerificationData = &service.VerificationData{
			Method:            quest.MethodSocialMediaAction,
			ActionDescription: f.actionDescription,
		}

	case TypeWebsite:
		method, found := websiteMethods[f.method]
		if !found {
			return fmt.Errorf("invalid website method: %s (auto, timer, manual)", f.method)
		}
		if f.url == "" {
			return errors.New("website URL required (--url)")
		}
		if f.timer < 1 {
			return fmt.Errorf("invalid timer: %d", f.timer)
		}
		vd := &service.VerificationData{Method: method, ActionDescription: f.actionDescription}
		if method == quest.MethodTimerBased {
			vd.TimerSeconds = f.timer
		}
		in.TaskType = "website_visit"
		in.Platform = "website"
		in.VerificationData = vd

	case TypeDaily:
		in.TaskType = "daily_checkin"
		in.VerificationRequired = false
		in.VerificationData = &service.VerificationData{
			Method:              methodDailyCheckin,
			StreakBonus:         f.streakBonus,
			ResetTimeUTC:        f.resetTime,
			ConsecutiveRequired: f.consecutive,
			Frequency:           "daily",
		}

	case TypeManual:
		approval := true
		in.TaskType = "manual_review"
		in.VerificationData = &service.VerificationData{
			Method:           methodManualReview,
			SubmissionType:   "text",
			Instructions:     strings.TrimSpace(f.instructions),
			RequiresApproval: &approval,
		}

	default:
		return fmt.Errorf("unknown quest type: %s (%s)", f.kind, strings.Join(QuestTypes, ", "))
	}
	return nil
}

// lookupVideo fills in the video title of a YouTube quest when a key is
// configured. Lookup failures never block quest creation.
func lookupVideo(ctx context.Context, cfg *config.Config, in *service.TaskInput) {
	if in.VerificationData == nil || in.VerificationData.Method != quest.MethodYouTubeCode {
		return
	}
	resolver, err := NewVideoResolver(ctx, cfg)
	if err != nil {
		cfg.Log().Debug("video lookup skipped", zap.Error(err))
		return
	}
	v, err := resolver.ResolveVideo(ctx, in.URL)
	if err != nil {
		cfg.Log().Warn("video lookup failed", zap.String("url", in.URL), zap.Error(err))
		return
	}
	in.VerificationData.VideoTitle = v.Title
	if in.Description == "" && v.Title != "" {
		in.Description = fmt.Sprintf("Watch \"%s\" by %s and find the secret code.", v.Title, v.ChannelTitle)
	}
}

// inputOf copies the editable fields of t.
func inputOf(t service.Task) service.TaskInput {
	return service.TaskInput{
		Title:                t.Title,
		Description:          t.Description,
		TaskType:             t.TaskType,
		Platform:             t.Platform,
		URL:                  t.URL,
		PointsReward:         t.PointsReward,
		IsBonus:              t.IsBonus,
		IsActive:             t.IsActive,
		VerificationRequired: t.VerificationRequired,
		VerificationData:     t.VerificationData,
	}
}

// overlay applies the generic flags that were given to in.
func (f *questForm) overlay(in *service.TaskInput) error {
	if f.isSet("title") {
		if strings.TrimSpace(f.title) == "" {
			return errors.New("quest title required")
		}
		in.Title = strings.TrimSpace(f.title)
	}
	if f.isSet("description") {
		in.Description = f.description
	}
	if f.isSet("platform") {
		in.Platform = strings.ToLower(f.platform)
	}
	if f.isSet("url") {
		in.URL = f.url
	}
	if f.isSet("points") {
		if f.points < 0 {
			return fmt.Errorf("invalid points: %d", f.points)
		}
		in.PointsReward = f.points
	}
	if f.isSet("bonus") {
		in.IsBonus = f.bonus
	}
	if f.isSet("inactive") {
		in.IsActive = !f.inactive
	}
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
