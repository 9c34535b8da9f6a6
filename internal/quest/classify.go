// Package quest classifies quests by platform and verification method and
// routes their completion.
package quest

import (
	"strconv"
	"strings"

	"questctl/internal/service"
)

// Kind is a quest variant.
type Kind string

const (
	KindTelegram    Kind = "telegram"
	KindTwitter     Kind = "twitter"
	KindYouTube     Kind = "youtube"
	KindSocialMedia Kind = "social_media"
	KindWebsite     Kind = "website"
	KindGeneral     Kind = "general"
)

// Verification methods stored in verification_data.method.
const (
	MethodTelegramMembership = "telegram_membership"
	MethodTwitterAction      = "twitter_action"
	MethodYouTubeCode        = "youtube_code"
	MethodSocialMediaAction  = "social_media_action"
	MethodAutoComplete       = "auto_complete"
	MethodTimerBased         = "timer_based"
	MethodManual             = "manual"
)

// Website sub-types.
const (
	SubTypeAuto   = "auto"
	SubTypeTimer  = "timer"
	SubTypeManual = "manual"
)

// DefaultTimerSeconds applies to timer quests with no timer_seconds.
const DefaultTimerSeconds = 30

// Descriptor is the display and behavior metadata derived from a quest.
// It is recomputed on demand and never stored.
type Descriptor struct {
	Kind               Kind
	Handler            string
	Emoji              string
	Color              string
	ColorHex           string
	ButtonText         string
	NeedsCode          bool
	Instant            bool
	VerificationMethod string

	// twitter
	ActionType  string
	ActionEmoji string

	// youtube
	Hint          string
	CaseSensitive bool

	// social_media
	Platform          string
	ActionDescription string

	// website
	Method       string
	SubType      string
	TimerSeconds int
}

// SocialPlatforms are the platforms classified as social_media regardless of
// method. None of them may be a platform another rule matches on.
var SocialPlatforms = []string{
	"discord", "instagram", "tiktok", "facebook", "linkedin", "reddit",
	"twitch", "medium", "github", "gitlab", "steam", "spotify",
}

var platformEmoji = map[string]string{
	"discord":   "💬",
	"instagram": "📸",
	"tiktok":    "🎵",
	"facebook":  "👥",
	"linkedin":  "💼",
	"reddit":    "🤖",
	"twitch":    "🎮",
	"medium":    "✍️",
	"github":    "💻",
	"gitlab":    "🦊",
	"steam":     "🎮",
	"spotify":   "🎧",
}

var twitterActionEmoji = map[string]string{
	"follow":  "👤",
	"like":    "❤️",
	"retweet": "🔄",
	"tweet":   "✍️",
}

// input is what the rules look at.
type input struct {
	platform string
	method   string
	vd       service.VerificationData
}

type rule struct {
	kind  Kind
	match func(in input) bool
	build func(in input) Descriptor
}

// rules are evaluated in order and the first match wins. The order is part
// of the contract: social_media must stay ahead of website.
var rules = []rule{
	{
		kind: KindTelegram,
		match: func(in input) bool {
			return in.platform == "telegram" && in.method == MethodTelegramMembership
		},
		build: func(input) Descriptor {
			return Descriptor{
				Kind:               KindTelegram,
				Handler:            "TelegramQuestHandler",
				Emoji:              "📱",
				Color:              "blue",
				ColorHex:           "#3b82f6",
				ButtonText:         "Join & Verify",
				Instant:            true,
				VerificationMethod: "Automatic membership check",
			}
		},
	},
	{
		kind: KindTwitter,
		match: func(in input) bool {
			return in.platform == "twitter" && in.method == MethodTwitterAction
		},
		build: func(in input) Descriptor {
			action := in.vd.ActionType
			if action == "" {
				action = "follow"
			}
			emoji, ok := twitterActionEmoji[action]
			if !ok {
				emoji = "🐦"
			}
			return Descriptor{
				Kind:               KindTwitter,
				Handler:            "TwitterQuestHandler",
				Emoji:              "🐦",
				Color:              "sky",
				ColorHex:           "#0ea5e9",
				ButtonText:         capitalize(action) + " & Submit",
				ActionType:         action,
				ActionEmoji:        emoji,
				VerificationMethod: "Manual admin review",
			}
		},
	},
	{
		kind: KindYouTube,
		match: func(in input) bool {
			return in.platform == "youtube" && in.method == MethodYouTubeCode
		},
		build: func(in input) Descriptor {
			hint := in.vd.Hint
			if hint == "" {
				hint = "Find the code in the video"
			}
			return Descriptor{
				Kind:               KindYouTube,
				Handler:            "YouTubeQuestHandler",
				Emoji:              "🎥",
				Color:              "red",
				ColorHex:           "#ef4444",
				ButtonText:         "Watch & Enter Code",
				NeedsCode:          true,
				Instant:            true,
				Hint:               hint,
				CaseSensitive:      in.vd.CaseSensitive == nil || *in.vd.CaseSensitive,
				VerificationMethod: "Instant code verification",
			}
		},
	},
	{
		kind: KindSocialMedia,
		match: func(in input) bool {
			return in.method == MethodSocialMediaAction || isSocialPlatform(in.platform)
		},
		build: func(in input) Descriptor {
			emoji, ok := platformEmoji[in.platform]
			if !ok {
				emoji = "🌐"
			}
			action := in.vd.ActionDescription
			if action == "" {
				action = "Complete the action"
			}
			return Descriptor{
				Kind:               KindSocialMedia,
				Handler:            "SocialMediaQuestHandler",
				Emoji:              emoji,
				Color:              "purple",
				ColorHex:           "#a855f7",
				ButtonText:         "Complete & Submit",
				Platform:           in.platform,
				ActionDescription:  action,
				VerificationMethod: "Manual admin review",
			}
		},
	},
	{
		kind: KindWebsite,
		match: func(in input) bool {
			switch in.method {
			case MethodAutoComplete, MethodTimerBased, MethodManual:
				return true
			}
			return in.platform == "website"
		},
		build: func(in input) Descriptor {
			timer := in.vd.TimerSeconds
			if timer <= 0 {
				timer = DefaultTimerSeconds
			}
			method := in.method
			if method == "" {
				method = MethodAutoComplete
			}
			d := Descriptor{
				Kind:               KindWebsite,
				Handler:            "WebsiteLinkQuestHandler",
				Emoji:              "🌐",
				Color:              "green",
				ColorHex:           "#22c55e",
				ButtonText:         "Visit & Claim",
				Instant:            true,
				Method:             method,
				SubType:            SubTypeAuto,
				TimerSeconds:       timer,
				VerificationMethod: "Instant auto-complete",
			}
			switch in.method {
			case MethodTimerBased:
				d.ButtonText = "Visit (" + strconv.Itoa(timer) + "s timer)"
				d.Instant = false
				d.SubType = SubTypeTimer
				d.VerificationMethod = "Timer-based"
			case MethodManual:
				d.ButtonText = "Complete & Submit"
				d.Instant = false
				d.SubType = SubTypeManual
				d.VerificationMethod = "Manual review"
			}
			return d
		},
	},
}

var general = Descriptor{
	Kind:               KindGeneral,
	Handler:            "UnknownHandler",
	Emoji:              "🎯",
	Color:              "gray",
	ColorHex:           "#6b7280",
	ButtonText:         "Complete Quest",
	VerificationMethod: "Unknown",
}

// Classify maps a quest to exactly one Descriptor. It has no side effects.
func Classify(t service.Task) Descriptor {
	in := input{platform: strings.ToLower(t.Platform)}
	if t.VerificationData != nil {
		in.vd = *t.VerificationData
		in.method = in.vd.Method
	}
	for _, r := range rules {
		if r.match(in) {
			return r.build(in)
		}
	}
	return general
}

// Order returns the rule kinds in evaluation order, ending with the fallback.
func Order() []Kind {
	kinds := make([]Kind, 0, len(rules)+1)
	for _, r := range rules {
		kinds = append(kinds, r.kind)
	}
	return append(kinds, KindGeneral)
}

func isSocialPlatform(p string) bool {
	for _, s := range SocialPlatforms {
		if s == p {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
