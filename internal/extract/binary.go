package extract

import (
	"encoding/base64"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/maheshrc27/postcraft/internal/apperr"
)

const defaultImageMIME = "image/jpeg"

var (
	base64Text = regexp.MustCompile(`^[A-Za-z0-9+/=]{20,}$`)

	ErrNotImage = errors.New("data is not a recognisable image")
)

// Encoding reports how many base64 layers NormalizeImageBytes removed.
type Encoding string

const (
	EncodingRaw          Encoding = "raw"
	EncodingBase64       Encoding = "base64"
	EncodingDoubleBase64 Encoding = "double-base64"
)

// processedImageFields is searched top-level first and then under "data".
var processedImageFields = []string{"url", "image_url", "file_url", "download_url"}

// ProcessedImage finds the modified image in an upload/modify response. The
// value is an http(s) URL or a data URI; a bare string that is neither PNG
// bytes, a link nor base64 is returned as-is with FormRaw.
func ProcessedImage(v any) (Result, error) {
	switch t := v.(type) {
	case []any:
		if len(t) == 0 {
			return Result{}, &apperr.NoProcessedImageError{Empty: true}
		}
		r, err := ProcessedImage(t[0])
		r.FromArray = true
		return r, err
	case string:
		if strings.TrimSpace(t) == "" {
			return Result{}, &apperr.NoProcessedImageError{Empty: true}
		}
		return classify(t, RuleString), nil
	case map[string]any:
		if blank(t) {
			return Result{}, &apperr.NoProcessedImageError{Empty: true}
		}
		return processedFromObject(t)
	case nil:
		return Result{}, &apperr.NoProcessedImageError{Empty: true}
	}
	return Result{}, &apperr.NoProcessedImageError{Snippet: snippet(v)}
}

func processedFromObject(m map[string]any) (Result, error) {
	if truthy(m["success"]) {
		if s, ok := stringAt(m, "data.link"); ok {
			return classify(s, RuleHostedLink), nil
		}
	}
	if s, ok := stringAt(m, "link"); ok {
		return classify(s, RuleLink), nil
	}
	if s, ok := stringAt(m, "data.link"); ok {
		return classify(s, RuleDataLink), nil
	}
	for _, field := range processedImageFields {
		if s, ok := stringAt(m, field); ok {
			return classify(s, Rule(field)), nil
		}
	}
	for _, field := range processedImageFields {
		if s, ok := stringAt(m, "data."+field); ok {
			return classify(s, RuleNestedPrefix+Rule(field)), nil
		}
	}
	if s, ok := stringAt(m, "data"); ok {
		return classify(s, RuleData), nil
	}
	if s, ok := stringAt(m, "output"); ok {
		return classify(s, RuleOutput), nil
	}
	if s, ok := stringAt(m, "base"); ok {
		return classify(s, RuleBase), nil
	}
	return Result{}, &apperr.NoProcessedImageError{Snippet: snippet(m)}
}

func classify(s string, rule Rule) Result {
	switch {
	case hasPNGSignature(s):
		return Result{Value: DataURI(pngBytes(s), "image/png"), Rule: rule, Form: FormPNGBytes}
	case isLinkLike(s):
		return Result{Value: s, Rule: rule, Form: FormURL}
	case base64Text.MatchString(s):
		value, form := wrapBase64(s)
		return Result{Value: value, Rule: rule, Form: form}
	default:
		return Result{Value: s, Rule: rule, Form: FormRaw}
	}
}

func wrapBase64(s string) (string, Form) {
	mime := defaultImageMIME
	if raw, enc, err := NormalizeImageBytes([]byte(s)); err == nil {
		if enc == EncodingDoubleBase64 {
			return DataURI(raw, defaultImageMIME), FormDoubleBase64
		}
		mime = SniffMIME(raw, defaultImageMIME)
	}
	return "data:" + mime + ";base64," + s, FormBase64
}

// hasPNGSignature accepts the PNG magic as raw bytes, as the U+0089 rune a
// JSON decoder produces, or as U+FFFD when the first byte was lost to lossy
// text decoding upstream.
func hasPNGSignature(s string) bool {
	return strings.HasPrefix(s, "\x89PNG") ||
		strings.HasPrefix(s, "\u0089PNG") ||
		strings.HasPrefix(s, "\uFFFDPNG")
}

// pngBytes recovers the binary payload from a string holding PNG data.
// Strings that arrived as text carry one byte per rune.
func pngBytes(s string) []byte {
	if strings.HasPrefix(s, "\x89PNG") {
		return []byte(s)
	}
	out := make([]byte, 0, utf8.RuneCountInString(s))
	first := true
	for _, r := range s {
		if first && r == utf8.RuneError {
			out = append(out, 0x89)
		} else {
			out = append(out, byte(r))
		}
		first = false
	}
	return out
}

// NormalizeImageBytes peels up to two layers of base64 off b until the result
// is a recognisable image.
func NormalizeImageBytes(b []byte) ([]byte, Encoding, error) {
	if filetype.IsImage(b) {
		return b, EncodingRaw, nil
	}
	once, err := decodeBase64(b)
	if err != nil {
		return nil, "", ErrNotImage
	}
	if filetype.IsImage(once) {
		return once, EncodingBase64, nil
	}
	twice, err := decodeBase64(once)
	if err == nil && filetype.IsImage(twice) {
		return twice, EncodingDoubleBase64, nil
	}
	return nil, "", ErrNotImage
}

func decodeBase64(b []byte) ([]byte, error) {
	s := strings.TrimSpace(string(b))
	if s == "" {
		return nil, errors.New("empty input")
	}
	if out, err := base64.StdEncoding.DecodeString(s); err == nil {
		return out, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}

// SniffMIME reports the MIME type of b from its magic bytes.
func SniffMIME(b []byte, fallback string) string {
	kind, err := filetype.Match(b)
	if err != nil || kind == types.Unknown {
		return fallback
	}
	return kind.MIME.Value
}
