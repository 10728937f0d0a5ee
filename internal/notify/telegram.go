package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

// TextNotifier is the minimal outbound surface other packages depend
// on, so nothing imports the Telegram implementation directly.
type TextNotifier interface {
	SendText(text string) error
}

// Telegram pushes report summaries (and optional chart images) to a
// group or channel via the Bot API.
type Telegram struct {
	BotToken string
	ChatID   string
	BaseURL  string // defaults to the public Bot API endpoint
	Client   *http.Client
}

func NewTelegram(botToken, chatID string) *Telegram {
	return &Telegram{
		BotToken: botToken,
		ChatID:   chatID,
		BaseURL:  "https://api.telegram.org",
		Client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// SendText sends an HTML-formatted message, with up to 3 retries.
func (t *Telegram) SendText(text string) error {
	if t.BotToken == "" || t.ChatID == "" {
		return fmt.Errorf("telegram bot token or chat id not configured")
	}
	payload := map[string]any{
		"chat_id":    t.ChatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	body, _ := json.Marshal(payload)
	return t.post("sendMessage", "application/json", bytes.NewReader(body), int64(len(body)))
}

// SendPhoto uploads a PNG with an optional caption.
func (t *Telegram) SendPhoto(caption string, png []byte) error {
	if t.BotToken == "" || t.ChatID == "" {
		return fmt.Errorf("telegram bot token or chat id not configured")
	}
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("chat_id", t.ChatID)
	if caption != "" {
		_ = w.WriteField("caption", caption)
	}
	part, err := w.CreateFormFile("photo", "chart.png")
	if err != nil {
		return err
	}
	if _, err := part.Write(png); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return t.post("sendPhoto", w.FormDataContentType(), bytes.NewReader(buf.Bytes()), int64(buf.Len()))
}

func (t *Telegram) post(method, contentType string, body *bytes.Reader, size int64) error {
	base := t.BaseURL
	if base == "" {
		base = "https://api.telegram.org"
	}
	url := fmt.Sprintf("%s/bot%s/%s", base, t.BotToken, method)

	var lastErr error
	for i := 0; i < 3; i++ {
		if _, err := body.Seek(0, io.SeekStart); err != nil {
			return err
		}
		req, err := http.NewRequest(http.MethodPost, url, body)
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", contentType)
		req.ContentLength = size
		resp, err := t.Client.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(i+1) * time.Second)
			continue
		}
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if apiOK(respBody) && resp.StatusCode/100 == 2 {
			return nil
		}
		lastErr = fmt.Errorf("telegram %s status=%d: %s", method, resp.StatusCode, apiError(respBody))
		time.Sleep(time.Duration(i+1) * time.Second)
	}
	return lastErr
}

// The Bot API wraps every reply in {"ok":bool,...}; a 200 with
// ok=false still means failure.
func apiOK(body []byte) bool {
	if !gjson.ValidBytes(body) {
		return false
	}
	return gjson.GetBytes(body, "ok").Bool()
}

func apiError(body []byte) string {
	if !gjson.ValidBytes(body) {
		return "unparseable response"
	}
	if desc := gjson.GetBytes(body, "description").String(); desc != "" {
		return desc
	}
	return "unknown error"
}
