package extract

import (
	"fmt"
	"strings"

	"github.com/maheshrc27/postcraft/internal/models"
)

// IdeaText finds the newline-delimited idea text in a webhook response. An
// unrecognised shape yields an empty Result with RuleNone; zero ideas is a
// valid outcome, not an error.
func IdeaText(v any) Result {
	switch t := v.(type) {
	case string:
		return Result{Value: t, Rule: RuleString}
	case []any:
		if len(t) == 0 {
			return Result{Rule: RuleNone}
		}
		r := IdeaText(t[0])
		r.FromArray = true
		return r
	case map[string]any:
		if s, ok := t["output"].(string); ok {
			return Result{Value: s, Rule: RuleOutput}
		}
		if data, ok := asObject(t["data"]); ok {
			if s, ok := data["output"].(string); ok {
				return Result{Value: s, Rule: RuleDataOutput}
			}
		}
		if s, ok := t["data"].(string); ok {
			return Result{Value: s, Rule: RuleData}
		}
	}
	return Result{Rule: RuleNone}
}

// IdeaLine is one parsed "Title | Format | PostType | Layout" line.
type IdeaLine struct {
	Title    string
	Format   models.Format
	PostType models.PostType
	Layout   string
	Segments int
}

// ParseIdeaLine never fails. Lines with fewer than three segments keep only a
// title, and segments that are not a known format or post type fall back to
// the request defaults.
func ParseIdeaLine(line string, index int, defFormat models.Format, defPostType models.PostType) IdeaLine {
	parts := strings.Split(line, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	idea := IdeaLine{
		Title:    parts[0],
		Format:   defFormat,
		PostType: defPostType,
		Segments: len(parts),
	}

	if len(parts) >= 3 {
		if f, ok := models.ParseFormat(parts[1]); ok {
			idea.Format = f
		}
		if p, ok := models.ParsePostType(parts[2]); ok {
			idea.PostType = p
		}
	}
	if len(parts) >= 4 {
		idea.Layout = parts[3]
	}

	if idea.Title == "" {
		idea.Title = fmt.Sprintf("Idea %d", index+1)
	}
	return idea
}

// ParseIdeaLines splits text on newlines, drops blank lines and parses the
// rest.
func ParseIdeaLines(text string, defFormat models.Format, defPostType models.PostType) []IdeaLine {
	lines := SplitLines(text)
	ideas := make([]IdeaLine, 0, len(lines))
	for i, line := range lines {
		ideas = append(ideas, ParseIdeaLine(line, i, defFormat, defPostType))
	}
	return ideas
}

func SplitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, strings.TrimRight(line, "\r"))
	}
	return lines
}
