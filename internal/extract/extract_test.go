package extract

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"testing"
	"unicode/utf8"

	"github.com/maheshrc27/postcraft/internal/apperr"
	"github.com/maheshrc27/postcraft/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))))
	return buf.Bytes()
}

// asRunes renders binary data the way a JSON decoder hands back a string that
// carried one byte per code point.
func asRunes(b []byte) string {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}

func TestIdeaText(t *testing.T) {
	tests := []struct {
		name      string
		in        any
		want      string
		rule      Rule
		fromArray bool
	}{
		{"plain string", "A|feed|organic", "A|feed|organic", RuleString, false},
		{"array of output", []any{map[string]any{"output": "X"}}, "X", RuleOutput, true},
		{"output", map[string]any{"output": "Y"}, "Y", RuleOutput, false},
		{"data.output", map[string]any{"data": map[string]any{"output": "Z"}}, "Z", RuleDataOutput, false},
		{"data string", map[string]any{"data": "W"}, "W", RuleData, false},
		{"output wins over data", map[string]any{"output": "first", "data": "second"}, "first", RuleOutput, false},
		{"unknown shape", map[string]any{"foo": "bar"}, "", RuleNone, false},
		{"empty array", []any{}, "", RuleNone, false},
		{"number", 42.0, "", RuleNone, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IdeaText(tt.in)
			assert.Equal(t, tt.want, got.Value)
			assert.Equal(t, tt.rule, got.Rule)
			assert.Equal(t, tt.fromArray, got.FromArray)
		})
	}
}

func TestParseIdeaLine(t *testing.T) {
	tests := []struct {
		line     string
		index    int
		title    string
		format   models.Format
		postType models.PostType
		layout   string
	}{
		{"A|feed|organic|Hero+Badge", 0, "A", models.FormatFeed, models.PostTypeOrganic, "Hero+Badge"},
		{"B|story|cta", 1, "B", models.FormatStory, models.PostTypeCTA, ""},
		{"justtitle", 0, "justtitle", models.FormatReel, models.PostTypeCTA, ""},
		{" Spaced | REEL | Organic | Split ", 0, "Spaced", models.FormatReel, models.PostTypeOrganic, "Split"},
		{"C|banner|promo", 0, "C", models.FormatReel, models.PostTypeCTA, ""},
		{"two|parts", 0, "two", models.FormatReel, models.PostTypeCTA, ""},
		{"|feed|organic", 2, "Idea 3", models.FormatFeed, models.PostTypeOrganic, ""},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := ParseIdeaLine(tt.line, tt.index, models.FormatReel, models.PostTypeCTA)
			assert.Equal(t, tt.title, got.Title)
			assert.Equal(t, tt.format, got.Format)
			assert.Equal(t, tt.postType, got.PostType)
			assert.Equal(t, tt.layout, got.Layout)
		})
	}
}

func TestParseIdeaLinesSkipsBlankLines(t *testing.T) {
	text := "A|feed|organic|Hero+Badge\r\n\n   \nB|story|cta\njusttitle\n"

	ideas := ParseIdeaLines(text, models.FormatFeed, models.PostTypeOrganic)

	require.Len(t, ideas, 3)
	assert.Equal(t, "A", ideas[0].Title)
	assert.Equal(t, "Hero+Badge", ideas[0].Layout)
	assert.Equal(t, models.FormatStory, ideas[1].Format)
	assert.Equal(t, "justtitle", ideas[2].Title)
	assert.Equal(t, 1, ideas[2].Segments)
}

func TestImageURL(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
		rule Rule
	}{
		{"url", map[string]any{"url": "https://x/1.png"}, "https://x/1.png", RuleURL},
		{"url beats data.link", map[string]any{"url": "https://a", "data": map[string]any{"link": "https://b"}}, "https://a", RuleURL},
		{"data.link", map[string]any{"data": map[string]any{"link": "https://b"}}, "https://b", RuleDataLink},
		{
			"drive link rewritten",
			map[string]any{"data": map[string]any{"webContentLink": "https://drive.google.com/uc?id=1AbCdEfGhIjKlMnOpQrStUvWxYz012&export=download"}},
			"https://lh3.googleusercontent.com/d/1AbCdEfGhIjKlMnOpQrStUvWxYz012=w1080-rj",
			RuleDriveLink,
		},
		{
			"drive share link",
			map[string]any{"data": map[string]any{"webContentLink": "https://host/file/d/ABCDEFGHIJKLMNOPQRSTUVWXY/view"}},
			"https://lh3.googleusercontent.com/d/ABCDEFGHIJKLMNOPQRSTUVWXY=w1080-rj",
			RuleDriveLink,
		},
		{
			"drive link without file id falls through",
			map[string]any{"data": map[string]any{"webContentLink": "https://drive/short", "url": "https://real/img.png"}},
			"https://real/img.png",
			RuleDataURL,
		},
		{"imageUrl", map[string]any{"imageUrl": "https://c"}, "https://c", RuleImageURL},
		{"data.url", map[string]any{"data": map[string]any{"url": "https://d"}}, "https://d", RuleDataURL},
		{"string", "https://e", "https://e", RuleString},
		{"data uri string", "data:image/png;base64,AAAA", "data:image/png;base64,AAAA", RuleString},
		{"array", []any{map[string]any{"url": "https://f"}}, "https://f", RuleURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ImageURL(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Value)
			assert.Equal(t, tt.rule, got.Rule)
		})
	}
}

func TestImageURLNoMatch(t *testing.T) {
	for _, in := range []any{
		map[string]any{"foo": "bar"},
		"ftp://nope",
		[]any{},
		map[string]any{"url": ""},
		map[string]any{"data": map[string]any{"webContentLink": "https://drive/short"}},
	} {
		_, err := ImageURL(in)
		var target *apperr.NoImageURLError
		assert.True(t, errors.As(err, &target), "input %v", in)
	}
}

func TestProcessedImageFieldOrder(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
		rule Rule
	}{
		{
			"hosted link",
			map[string]any{"success": true, "data": map[string]any{"link": "https://i.host/a.png"}},
			"https://i.host/a.png", RuleHostedLink,
		},
		{"link", map[string]any{"link": "https://l", "url": "https://u"}, "https://l", RuleLink},
		{"data.link without success", map[string]any{"data": map[string]any{"link": "https://dl"}}, "https://dl", RuleDataLink},
		{"image_url", map[string]any{"image_url": "https://iu", "download_url": "https://du"}, "https://iu", Rule("image_url")},
		{"nested file_url", map[string]any{"data": map[string]any{"file_url": "https://fu"}}, "https://fu", Rule("data.file_url")},
		{"top level beats nested", map[string]any{"download_url": "https://top", "data": map[string]any{"url": "https://nested"}}, "https://top", Rule("download_url")},
		{"output string", map[string]any{"output": "https://out"}, "https://out", RuleOutput},
		{"array envelope", []any{map[string]any{"url": "https://arr"}}, "https://arr", RuleURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProcessedImage(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Value)
			assert.Equal(t, tt.rule, got.Rule)
			assert.Equal(t, FormURL, got.Form)
		})
	}
}

func TestProcessedImageEmptyVersusMalformed(t *testing.T) {
	for _, in := range []any{[]any{}, []any{map[string]any{}}, map[string]any{}, map[string]any{"data": ""}, nil} {
		_, err := ProcessedImage(in)
		var target *apperr.NoProcessedImageError
		require.True(t, errors.As(err, &target), "input %v", in)
		assert.True(t, target.Empty, "input %v", in)
	}

	_, err := ProcessedImage(map[string]any{"foo": 1.0})
	var target *apperr.NoProcessedImageError
	require.True(t, errors.As(err, &target))
	assert.False(t, target.Empty)
	assert.Contains(t, target.Snippet, `"foo"`)
}

func TestProcessedImagePNGForms(t *testing.T) {
	img := tinyPNG(t)
	want := "data:image/png;base64," + base64.StdEncoding.EncodeToString(img)

	replaced := []rune(asRunes(img))
	replaced[0] = utf8.RuneError

	for name, in := range map[string]string{
		"raw bytes":        string(img),
		"latin1 runes":     asRunes(img),
		"replacement char": string(replaced),
	} {
		t.Run(name, func(t *testing.T) {
			got, err := ProcessedImage(map[string]any{"data": in})
			require.NoError(t, err)
			assert.Equal(t, FormPNGBytes, got.Form)
			assert.Equal(t, want, got.Value)
		})
	}
}

func TestProcessedImageBase64(t *testing.T) {
	img := tinyPNG(t)
	once := base64.StdEncoding.EncodeToString(img)
	twice := base64.StdEncoding.EncodeToString([]byte(once))

	got, err := ProcessedImage(map[string]any{"base": once})
	require.NoError(t, err)
	assert.Equal(t, FormBase64, got.Form)
	assert.Equal(t, "data:image/png;base64,"+once, got.Value)

	got, err = ProcessedImage(twice)
	require.NoError(t, err)
	assert.Equal(t, FormDoubleBase64, got.Form)
	assert.Equal(t, "data:image/png;base64,"+once, got.Value)
}

func TestProcessedImageUnknownBase64DefaultsToJPEG(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("this is not an image at all"))

	got, err := ProcessedImage(payload)

	require.NoError(t, err)
	assert.Equal(t, "data:image/jpeg;base64,"+payload, got.Value)
}

func TestProcessedImageIsIdempotent(t *testing.T) {
	img := tinyPNG(t)
	twice := base64.StdEncoding.EncodeToString([]byte(base64.StdEncoding.EncodeToString(img)))

	for _, in := range []any{
		map[string]any{"data": string(img)},
		twice,
		map[string]any{"url": "https://example.com/x.png"},
	} {
		first, err := ProcessedImage(in)
		require.NoError(t, err)
		second, err := ProcessedImage(first.Value)
		require.NoError(t, err)
		assert.Equal(t, first.Value, second.Value)
	}
}

func TestNormalizeImageBytes(t *testing.T) {
	img := tinyPNG(t)
	once := []byte(base64.StdEncoding.EncodeToString(img))
	twice := []byte(base64.StdEncoding.EncodeToString(once))

	for in, wantEnc := range map[string]Encoding{
		string(img):   EncodingRaw,
		string(once):  EncodingBase64,
		string(twice): EncodingDoubleBase64,
	} {
		out, enc, err := NormalizeImageBytes([]byte(in))
		require.NoError(t, err)
		assert.Equal(t, wantEnc, enc)
		assert.Equal(t, img, out)
	}

	_, _, err := NormalizeImageBytes([]byte("plain text"))
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestDataURIRoundTrip(t *testing.T) {
	img := tinyPNG(t)

	uri := DataURI(img, "application/octet-stream")
	data, mime, err := DecodeDataURI(uri)

	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, img, data)

	_, _, err = DecodeDataURI("https://example.com/a.png")
	assert.Error(t, err)
}
