package transfer

// WebhookMessage is the JSON envelope the n8n chat trigger expects.
type WebhookMessage struct {
	Message WebhookText `json:"message"`
}

type WebhookText struct {
	Text string `json:"text"`
}

// PhotoMessage mimics a chat-bot photo attachment; it is sent as the
// "message" field of an upload.
type PhotoMessage struct {
	Photo   []PhotoSize `json:"photo"`
	Caption string      `json:"caption"`
}

type PhotoSize struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	FileSize     int    `json:"file_size"`
}

// UpstreamError covers the error body shapes n8n and most providers use.
type UpstreamError struct {
	Message string `json:"message"`
	Error   any    `json:"error"`
}
