package models

import (
	"strings"
	"time"
)

type Format string

type PostType string

const (
	FormatFeed  Format = "feed"
	FormatStory Format = "story"
	FormatReel  Format = "reel"

	PostTypeOrganic PostType = "organic"
	PostTypeCTA     PostType = "cta"
)

// ParseFormat accepts any casing and surrounding whitespace.
func ParseFormat(s string) (Format, bool) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatFeed, FormatStory, FormatReel:
		return f, true
	}
	return "", false
}

func ParsePostType(s string) (PostType, bool) {
	switch p := PostType(strings.ToLower(strings.TrimSpace(s))); p {
	case PostTypeOrganic, PostTypeCTA:
		return p, true
	}
	return "", false
}

type PostIdea struct {
	ID          string    `json:"id"`
	Topic       string    `json:"topic"`
	Audience    string    `json:"audience"`
	PostType    PostType  `json:"postType"`
	Format      Format    `json:"format"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Layout      string    `json:"layout,omitempty"`
	Prompt      string    `json:"prompt,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
