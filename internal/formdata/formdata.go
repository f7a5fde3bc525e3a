// Package formdata models a multipart/form-data body as an ordered list of
// parts. Parse reads an inbound body into a Message; Build writes an outbound
// body from a list of parts. Neither touches the network.
package formdata

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"
)

var ErrNotMultipart = errors.New("content type is not multipart/form-data")

// Part is either a text field (Value) or a file (Filename, ContentType, Data).
type Part struct {
	FieldName   string
	Value       string
	Filename    string
	ContentType string
	Data        []byte
}

func (p Part) IsFile() bool {
	return p.Filename != ""
}

func TextField(name, value string) Part {
	return Part{FieldName: name, Value: value}
}

func FileField(name, filename, contentType string, data []byte) Part {
	return Part{FieldName: name, Filename: filename, ContentType: contentType, Data: data}
}

// Message is a parsed multipart body in stream order.
type Message struct {
	Parts []Part
}

// File returns the first file part.
func (m *Message) File() (Part, bool) {
	for _, p := range m.Parts {
		if p.IsFile() {
			return p, true
		}
	}
	return Part{}, false
}

// Fields returns the text parts in stream order.
func (m *Message) Fields() []Part {
	var fields []Part
	for _, p := range m.Parts {
		if !p.IsFile() {
			fields = append(fields, p)
		}
	}
	return fields
}

func (m *Message) Has(field string) bool {
	for _, p := range m.Parts {
		if p.FieldName == field {
			return true
		}
	}
	return false
}

// Boundary extracts the multipart boundary from a Content-Type header value.
func Boundary(contentType string) (string, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("failed to parse content type: %w", err)
	}
	if !strings.HasPrefix(mediaType, "multipart/") {
		return "", ErrNotMultipart
	}
	boundary := params["boundary"]
	if boundary == "" {
		return "", errors.New("multipart content type has no boundary")
	}
	return boundary, nil
}

// Parse reads every part of r. File bytes are kept exactly as received,
// except parts declaring Content-Transfer-Encoding: base64, which are decoded
// once.
func Parse(r io.Reader, boundary string) (*Message, error) {
	reader := multipart.NewReader(r, boundary)
	msg := &Message{}

	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read multipart part: %w", err)
		}

		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read part %q: %w", part.FormName(), err)
		}

		if strings.EqualFold(part.Header.Get("Content-Transfer-Encoding"), "base64") {
			decoded, err := base64.StdEncoding.DecodeString(string(bytes.TrimSpace(data)))
			if err != nil {
				return nil, fmt.Errorf("failed to decode base64 part %q: %w", part.FormName(), err)
			}
			data = decoded
		}

		if filename := part.FileName(); filename != "" {
			msg.Parts = append(msg.Parts, FileField(part.FormName(), filename, part.Header.Get("Content-Type"), data))
			continue
		}
		msg.Parts = append(msg.Parts, TextField(part.FormName(), string(data)))
	}

	return msg, nil
}

// Encoded is a built multipart body and the Content-Type header carrying its
// boundary.
type Encoded struct {
	Body        []byte
	ContentType string
}

func Build(parts []Part) (Encoded, error) {
	return BuildWithBoundary(parts, "")
}

// BuildWithBoundary is Build with a fixed boundary; an empty boundary lets
// mime/multipart pick a random one.
func BuildWithBoundary(parts []Part, boundary string) (Encoded, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if boundary != "" {
		if err := w.SetBoundary(boundary); err != nil {
			return Encoded{}, fmt.Errorf("invalid boundary: %w", err)
		}
	}

	for _, p := range parts {
		if !p.IsFile() {
			if err := w.WriteField(p.FieldName, p.Value); err != nil {
				return Encoded{}, fmt.Errorf("failed to write field %q: %w", p.FieldName, err)
			}
			continue
		}

		contentType := p.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(p.FieldName), escapeQuotes(p.Filename)))
		h.Set("Content-Type", contentType)

		fw, err := w.CreatePart(h)
		if err != nil {
			return Encoded{}, fmt.Errorf("failed to create file part %q: %w", p.FieldName, err)
		}
		if _, err := fw.Write(p.Data); err != nil {
			return Encoded{}, fmt.Errorf("failed to write file part %q: %w", p.FieldName, err)
		}
	}

	if err := w.Close(); err != nil {
		return Encoded{}, fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return Encoded{Body: buf.Bytes(), ContentType: w.FormDataContentType()}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
