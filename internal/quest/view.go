package quest

import (
	"fmt"
	"strings"

	"questctl/internal/service"
)

// DefaultDescription is shown for quests without a description.
const DefaultDescription = "Complete this quest to earn points!"

// Tone is the colour family of a badge.
type Tone string

const (
	ToneGreen  Tone = "green"
	ToneYellow Tone = "yellow"
	ToneBlue   Tone = "blue"
	TonePurple Tone = "purple"
	ToneGold   Tone = "gold"
)

// Badge is a short label on a card.
type Badge struct {
	Label string
	Tone  Tone
}

// Card is the list view of a quest.
type Card struct {
	Position    int
	ID          string
	Emoji       string
	Title       string
	Platform    string
	Bonus       bool
	Points      string
	Description string
	Badges      []Badge
	Footer      string
	Completed   bool
	Color       string
	ColorHex    string
}

// NewCard builds the card for the quest at a 1-based position.
func NewCard(position int, t service.Task) Card {
	d := Classify(t)

	c := Card{
		Position:    position,
		ID:          t.ID,
		Emoji:       d.Emoji,
		Title:       t.Title,
		Platform:    strings.ToUpper(t.Platform),
		Bonus:       t.IsBonus,
		Points:      fmt.Sprintf("+%d XP", t.PointsReward),
		Description: describe(t),
		Completed:   t.Completed,
		Color:       d.Color,
		ColorHex:    d.ColorHex,
		Footer:      "Start →",
	}
	if t.Completed {
		c.Footer = "✅ Done"
	}

	if d.Instant {
		c.Badges = append(c.Badges, Badge{"⚡ Instant", ToneGreen})
	} else {
		c.Badges = append(c.Badges, Badge{"⏳ Review", ToneYellow})
	}
	if d.NeedsCode {
		c.Badges = append(c.Badges, Badge{"🔑 Code", ToneBlue})
	}
	if t.IsBonus {
		c.Badges = append(c.Badges, Badge{"🌟 Bonus", ToneGold})
	}
	if d.SubType == SubTypeTimer {
		c.Badges = append(c.Badges, Badge{fmt.Sprintf("⏱️ %ds", d.TimerSeconds), TonePurple})
	}
	return c
}

// CodePrompt describes the code input of a code quest.
type CodePrompt struct {
	Placeholder string
	Hint        string
}

// Detail is the full view of a selected quest.
type Detail struct {
	Card

	Handler            string
	VerificationMethod string
	ButtonText         string
	// Code is nil unless the quest needs a code.
	Code *CodePrompt
	// VerificationBadge is "⚡ Instant Verification" or "⏳ Manual Verification".
	VerificationBadge Badge
	// ActionLines are the variant-specific instructions, possibly empty.
	ActionLines []string
	Kind        Kind
	URL         string
}

// NewDetail builds the detail view of a quest.
func NewDetail(position int, t service.Task) Detail {
	d := Classify(t)
	v := Detail{
		Card:               NewCard(position, t),
		Handler:            d.Handler,
		VerificationMethod: d.VerificationMethod,
		ButtonText:         d.ButtonText,
		Kind:               d.Kind,
		URL:                t.URL,
	}

	if d.NeedsCode {
		p := &CodePrompt{Placeholder: "Enter code (not case-sensitive)"}
		if d.CaseSensitive {
			p.Placeholder = "Enter code (case-sensitive)"
		}
		if d.Hint != "" {
			p.Hint = "💡 Hint: " + d.Hint
		}
		v.Code = p
	}

	if d.Instant {
		v.VerificationBadge = Badge{"⚡ Instant Verification", ToneGreen}
	} else {
		v.VerificationBadge = Badge{"⏳ Manual Verification", ToneYellow}
	}

	switch {
	case d.Kind == KindTwitter:
		v.ActionLines = []string{fmt.Sprintf("%s Action: %s", d.ActionEmoji, strings.ToUpper(d.ActionType))}
	case d.Kind == KindSocialMedia:
		v.ActionLines = []string{
			fmt.Sprintf("%s Platform: %s", d.Emoji, strings.ToUpper(d.Platform)),
			"Action: " + d.ActionDescription,
		}
	case d.Kind == KindWebsite && d.SubType == SubTypeTimer:
		v.ActionLines = []string{fmt.Sprintf("⏱️ Timer Quest: You must wait %d seconds after visiting the website before claiming XP.", d.TimerSeconds)}
	}
	return v
}

func describe(t service.Task) string {
	if strings.TrimSpace(t.Description) == "" {
		return DefaultDescription
	}
	return t.Description
}
