package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultAPIBase = "https://api.telegram.org"

// Client talks to the Telegram Bot API.
type Client struct {
	apiBase    string
	token      string
	httpClient *http.Client
	pollClient *http.Client
	log        *zap.Logger
}

func NewClient(token string, log *zap.Logger) *Client {
	return &Client{
		apiBase: defaultAPIBase,
		token:   token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		// Long polling holds the connection open for up to pollTimeout,
		// so this client needs headroom beyond it.
		pollClient: &http.Client{
			Timeout: (pollTimeout + 10) * time.Second,
		},
		log: log,
	}
}

// NewClientWithBase is used by tests to point the client at a fake server.
func NewClientWithBase(token, apiBase string, log *zap.Logger) *Client {
	c := NewClient(token, log)
	c.apiBase = strings.TrimRight(apiBase, "/")
	return c
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description,omitempty"`
}

func (c *Client) call(ctx context.Context, client *http.Client, method string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.apiBase, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(body)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram unavailable: %w", err)
	}
	defer resp.Body.Close()

	var api apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return fmt.Errorf("telegram %s: decode response: %w", method, err)
	}
	if !api.OK {
		return fmt.Errorf("telegram %s returned %d: %s", method, resp.StatusCode, api.Description)
	}
	if out != nil {
		if err := json.Unmarshal(api.Result, out); err != nil {
			return fmt.Errorf("telegram %s: decode result: %w", method, err)
		}
	}
	return nil
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	return c.call(ctx, c.httpClient, "sendMessage", map[string]any{
		"chat_id": chatID,
		"text":    text,
	}, nil)
}

func (c *Client) SendKeyboard(ctx context.Context, chatID int64, text string, kb InlineKeyboardMarkup) error {
	return c.call(ctx, c.httpClient, "sendMessage", map[string]any{
		"chat_id":      chatID,
		"text":         text,
		"reply_markup": kb,
	}, nil)
}

func (c *Client) EditReplyMarkup(ctx context.Context, chatID, messageID int64, kb InlineKeyboardMarkup) error {
	return c.call(ctx, c.httpClient, "editMessageReplyMarkup", map[string]any{
		"chat_id":      chatID,
		"message_id":   messageID,
		"reply_markup": kb,
	}, nil)
}

func (c *Client) AnswerCallback(ctx context.Context, callbackID string) error {
	return c.call(ctx, c.httpClient, "answerCallbackQuery", map[string]any{
		"callback_query_id": callbackID,
	}, nil)
}

func (c *Client) SetWebhook(ctx context.Context, url string) error {
	return c.call(ctx, c.httpClient, "setWebhook", map[string]any{"url": url}, nil)
}

func (c *Client) DeleteWebhook(ctx context.Context) error {
	return c.call(ctx, c.httpClient, "deleteWebhook", map[string]any{}, nil)
}

const pollTimeout = 50 // seconds

func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	var updates []Update
	err := c.call(ctx, c.pollClient, "getUpdates", map[string]any{
		"offset":          offset,
		"timeout":         pollTimeout,
		"allowed_updates": []string{"message", "callback_query"},
	}, &updates)
	if err != nil {
		return nil, err
	}
	return updates, nil
}

// DownloadPhoto fetches a Telegram file and stages it under dir with a
// fresh name, returning the local path.
func (c *Client) DownloadPhoto(ctx context.Context, fileID, dir string) (string, error) {
	var f File
	if err := c.call(ctx, c.httpClient, "getFile", map[string]any{"file_id": fileID}, &f); err != nil {
		return "", err
	}
	if f.FilePath == "" {
		return "", fmt.Errorf("telegram getFile: empty file_path for %s", fileID)
	}

	url := fmt.Sprintf("%s/file/bot%s/%s", c.apiBase, c.token, f.FilePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("telegram file download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("telegram file download returned %d", resp.StatusCode)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	ext := filepath.Ext(f.FilePath)
	if ext == "" {
		ext = ".jpg"
	}
	dest := filepath.Join(dir, uuid.New().String()+ext)
	out, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(dest)
		return "", err
	}
	return dest, nil
}
