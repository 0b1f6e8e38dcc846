package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"lessonplan-bot-be/pkg/errs"
)

const (
	DefaultAPIURL   = "https://api.telegram.org"
	apiTimeout      = 30 * time.Second
	downloadTimeout = 60 * time.Second
	maxDownload     = 20 << 20
)

// Telegram talks to the Bot API over plain HTTPS.
type Telegram struct {
	apiURL     string
	token      string
	api        *http.Client
	downloader *http.Client
}

func NewTelegram(apiURL, token string) *Telegram {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Telegram{
		apiURL:     strings.TrimRight(apiURL, "/"),
		token:      token,
		api:        &http.Client{Timeout: apiTimeout},
		downloader: &http.Client{Timeout: downloadTimeout},
	}
}

type apiResponse struct {
	Ok          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

type replyKeyboard struct {
	Keyboard        [][]keyboardButton `json:"keyboard"`
	ResizeKeyboard  bool               `json:"resize_keyboard"`
	OneTimeKeyboard bool               `json:"one_time_keyboard"`
}

type keyboardButton struct {
	Text string `json:"text"`
}

func (t *Telegram) SendMessage(ctx context.Context, chatID, text string, keyboard *Keyboard) error {
	payload := map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	}
	if keyboard != nil {
		markup := replyKeyboard{ResizeKeyboard: true, OneTimeKeyboard: keyboard.OneUse}
		for _, row := range keyboard.Rows {
			buttons := make([]keyboardButton, 0, len(row))
			for _, label := range row {
				buttons = append(buttons, keyboardButton{Text: label})
			}
			markup.Keyboard = append(markup.Keyboard, buttons)
		}
		payload["reply_markup"] = markup
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding sendMessage: %w", err)
	}
	_, err = t.call(ctx, "sendMessage", "application/json", bytes.NewReader(body))
	return err
}

func (t *Telegram) SendDocument(ctx context.Context, chatID, fileName string, data []byte, caption string) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("chat_id", chatID)
	if caption != "" {
		_ = mw.WriteField("caption", caption)
	}
	part, err := mw.CreateFormFile("document", fileName)
	if err != nil {
		return fmt.Errorf("encoding sendDocument: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("encoding sendDocument: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("encoding sendDocument: %w", err)
	}

	_, err = t.call(ctx, "sendDocument", mw.FormDataContentType(), &body)
	return err
}

func (t *Telegram) FileURL(ctx context.Context, fileID string) (string, error) {
	body, err := json.Marshal(map[string]string{"file_id": fileID})
	if err != nil {
		return "", fmt.Errorf("encoding getFile: %w", err)
	}
	result, err := t.call(ctx, "getFile", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	var file struct {
		FilePath string `json:"file_path"`
	}
	if err := json.Unmarshal(result, &file); err != nil || file.FilePath == "" {
		return "", fmt.Errorf("getFile %s returned no path: %w", fileID, errs.ErrNetworkFailure)
	}
	return fmt.Sprintf("%s/file/bot%s/%s", t.apiURL, t.token, file.FilePath), nil
}

func (t *Telegram) Download(ctx context.Context, fileID string) ([]byte, error) {
	url, err := t.FileURL(ctx, fileID)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating download request: %s", t.redact(err))
	}
	resp, err := t.downloader.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %s: %w", fileID, t.redact(err), errs.ErrNetworkFailure)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("downloading %s: status %d: %w", fileID, resp.StatusCode, errs.ErrNetworkFailure)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownload))
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %s: %w", fileID, t.redact(err), errs.ErrNetworkFailure)
	}
	return data, nil
}

func (t *Telegram) call(ctx context.Context, method, contentType string, body io.Reader) (json.RawMessage, error) {
	url := fmt.Sprintf("%s/bot%s/%s", t.apiURL, t.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %s", method, t.redact(err))
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := t.api.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", method, t.redact(err), errs.ErrNetworkFailure)
	}
	defer resp.Body.Close()

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%s: status %d, undecodable body: %w", method, resp.StatusCode, errs.ErrNetworkFailure)
	}
	if !parsed.Ok {
		return nil, fmt.Errorf("%s: %s: %w", method, parsed.Description, errs.ErrNetworkFailure)
	}
	return parsed.Result, nil
}

// redact strips the bot token from transport errors, which embed the request URL.
func (t *Telegram) redact(err error) string {
	msg := err.Error()
	if t.token == "" {
		return msg
	}
	return strings.ReplaceAll(msg, t.token, "<token>")
}
