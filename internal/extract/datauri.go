package extract

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// DataURI encodes b as a base64 data URI using its sniffed MIME type.
func DataURI(b []byte, fallbackMIME string) string {
	return "data:" + SniffMIME(b, fallbackMIME) + ";base64," + base64.StdEncoding.EncodeToString(b)
}

// DecodeDataURI splits a base64 data URI into its bytes and MIME type.
func DecodeDataURI(uri string) ([]byte, string, error) {
	if !strings.HasPrefix(uri, "data:") {
		return nil, "", errors.New("not a data URI")
	}
	header, payload, ok := strings.Cut(uri[len("data:"):], ",")
	if !ok {
		return nil, "", errors.New("data URI has no payload")
	}
	if !strings.HasSuffix(header, ";base64") {
		return nil, "", errors.New("data URI is not base64 encoded")
	}
	mime := strings.TrimSuffix(header, ";base64")
	if mime == "" {
		mime = "text/plain"
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode data URI: %w", err)
	}
	return data, mime, nil
}
