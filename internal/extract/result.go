// Package extract recovers typed values (idea text, image URLs, processed
// images) from untyped n8n webhook responses. Each extractor applies an
// ordered rule list and reports which rule matched, so a drifting upstream
// format shows up in logs and tests as a different rule rather than as a
// silently different value.
package extract

import (
	"encoding/json"
	"strings"

	"github.com/maheshrc27/postcraft/internal/apperr"
)

// Rule names the extraction rule that produced a Result. Field rules are the
// dotted path of the field that was read, e.g. "data.link".
type Rule string

const (
	RuleNone   Rule = "none"
	RuleString Rule = "string"

	RuleOutput     Rule = "output"
	RuleDataOutput Rule = "data.output"
	RuleData       Rule = "data"

	RuleURL          Rule = "url"
	RuleDataLink     Rule = "data.link"
	RuleDriveLink    Rule = "data.webContentLink"
	RuleImageURL     Rule = "imageUrl"
	RuleDataURL      Rule = "data.url"
	RuleHostedLink   Rule = "success+data.link"
	RuleLink         Rule = "link"
	RuleBase         Rule = "base"
	RuleNestedPrefix Rule = "data."
)

// Form describes how a string candidate was interpreted by the binary-aware
// extractor.
type Form string

const (
	FormURL          Form = "url"
	FormPNGBytes     Form = "png-bytes"
	FormBase64       Form = "base64"
	FormDoubleBase64 Form = "double-base64"
	FormRaw          Form = "raw"
)

type Result struct {
	Value string
	Rule  Rule
	// FromArray is set when the value came from element 0 of an array envelope.
	FromArray bool
	// Form is only set by ProcessedImage.
	Form Form
}

func (r Result) Matched() bool {
	return r.Rule != RuleNone && r.Rule != ""
}

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// stringAt follows a dotted path through nested objects and returns the
// string found there, if it is non-empty.
func stringAt(m map[string]any, path string) (string, bool) {
	var cur any = m
	for _, key := range strings.Split(path, ".") {
		obj, ok := asObject(cur)
		if !ok {
			return "", false
		}
		cur = obj[key]
	}
	s, ok := cur.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	default:
		return true
	}
}

// blank reports whether v carries no data at all: nil, "", {} or an object
// whose values are all blank.
func blank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case map[string]any:
		for _, value := range t {
			if !blank(value) {
				return false
			}
		}
		return true
	case []any:
		return len(t) == 0
	default:
		return false
	}
}

func snippet(v any) string {
	if s, ok := v.(string); ok {
		return apperr.Truncate(s, 200)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return apperr.Truncate(string(b), 200)
}
