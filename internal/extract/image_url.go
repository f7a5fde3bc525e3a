package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/maheshrc27/postcraft/internal/apperr"
)

const driveDirectURL = "https://lh3.googleusercontent.com/d/%s=w1080-rj"

var driveFileID = regexp.MustCompile(`[-\w]{25,}`)

// ImageURL finds a displayable image URL in an image-generation response.
func ImageURL(v any) (Result, error) {
	if arr, ok := v.([]any); ok {
		if len(arr) == 0 {
			return Result{}, &apperr.NoImageURLError{Snippet: "[]"}
		}
		r, err := ImageURL(arr[0])
		r.FromArray = true
		return r, err
	}

	if s, ok := v.(string); ok {
		if isLinkLike(s) {
			return Result{Value: s, Rule: RuleString}, nil
		}
		return Result{}, &apperr.NoImageURLError{Snippet: snippet(v)}
	}

	m, ok := asObject(v)
	if !ok {
		return Result{}, &apperr.NoImageURLError{Snippet: snippet(v)}
	}

	if s, ok := stringAt(m, "url"); ok {
		return Result{Value: s, Rule: RuleURL}, nil
	}
	if s, ok := stringAt(m, "data.link"); ok {
		return Result{Value: s, Rule: RuleDataLink}, nil
	}
	if s, ok := stringAt(m, "data.webContentLink"); ok {
		if id := driveFileID.FindString(s); id != "" {
			return Result{Value: DriveDirectURL(id), Rule: RuleDriveLink}, nil
		}
	}
	if s, ok := stringAt(m, "imageUrl"); ok {
		return Result{Value: s, Rule: RuleImageURL}, nil
	}
	if s, ok := stringAt(m, "data.url"); ok {
		return Result{Value: s, Rule: RuleDataURL}, nil
	}

	return Result{}, &apperr.NoImageURLError{Snippet: snippet(v)}
}

// DriveDirectURL turns a Google Drive file id into a directly embeddable
// image URL.
func DriveDirectURL(fileID string) string {
	return fmt.Sprintf(driveDirectURL, fileID)
}

func isLinkLike(s string) bool {
	return strings.HasPrefix(s, "http") || strings.HasPrefix(s, "data:")
}
