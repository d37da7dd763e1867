// Package telegram is a minimal Bot API client over net/http covering the
// calls this bot performs.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

func NewClient(httpClient *http.Client, baseURL, token string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

// RequestError is a Bot API level failure (non-2xx or ok=false).
type RequestError struct {
	StatusCode  int
	ErrorCode   int
	Description string
}

func (e *RequestError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("telegram http %d: %s", e.StatusCode, e.Description)
	}
	return fmt.Sprintf("telegram http %d", e.StatusCode)
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
}

func (c *Client) call(ctx context.Context, method string, params any, out any) error {
	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)

	var body io.Reader
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("telegram %s: encode: %w", method, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return err
	}
	if params != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	raw, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	var wrapped apiResponse
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &RequestError{StatusCode: resp.StatusCode, Description: strings.TrimSpace(string(raw))}
		}
		return fmt.Errorf("telegram %s: decode: %w", method, err)
	}
	if !wrapped.OK {
		return &RequestError{
			StatusCode:  resp.StatusCode,
			ErrorCode:   wrapped.ErrorCode,
			Description: wrapped.Description,
		}
	}
	if out != nil && len(wrapped.Result) > 0 {
		if err := json.Unmarshal(wrapped.Result, out); err != nil {
			return fmt.Errorf("telegram %s: decode result: %w", method, err)
		}
	}
	return nil
}

func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var me User
	if err := c.call(ctx, "getMe", nil, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// GetUpdates long-polls for updates and returns them with the next offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, int64, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	secs := int(timeout.Seconds())
	if secs < 1 {
		secs = 1
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout+5*time.Second)
	defer cancel()

	params := map[string]any{"timeout": secs}
	if offset > 0 {
		params["offset"] = offset
	}
	var updates []Update
	if err := c.call(reqCtx, "getUpdates", params, &updates); err != nil {
		return nil, offset, err
	}

	next := offset
	for _, u := range updates {
		if u.UpdateID >= next {
			next = u.UpdateID + 1
		}
	}
	return updates, next, nil
}

// IsPollTimeout reports whether err is an expected long-poll timeout.
func IsPollTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "context deadline exceeded") ||
		strings.Contains(msg, "client.timeout exceeded")
}

type SendOptions struct {
	ReplyToMessageID int64
	ReplyMarkup      *InlineKeyboardMarkup
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, opts *SendOptions) error {
	text = strings.TrimSpace(text)
	if text == "" {
		text = "(empty)"
	}
	params := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if opts != nil {
		if opts.ReplyToMessageID > 0 {
			params["reply_to_message_id"] = opts.ReplyToMessageID
		}
		if opts.ReplyMarkup != nil {
			params["reply_markup"] = opts.ReplyMarkup
		}
	}
	return c.call(ctx, "sendMessage", params, nil)
}

func (c *Client) BanChatMember(ctx context.Context, chatID, userID int64) error {
	return c.call(ctx, "banChatMember", map[string]any{"chat_id": chatID, "user_id": userID}, nil)
}

func (c *Client) UnbanChatMember(ctx context.Context, chatID, userID int64) error {
	return c.call(ctx, "unbanChatMember", map[string]any{"chat_id": chatID, "user_id": userID}, nil)
}

func (c *Client) PinChatMessage(ctx context.Context, chatID, messageID int64) error {
	return c.call(ctx, "pinChatMessage", map[string]any{"chat_id": chatID, "message_id": messageID}, nil)
}

func (c *Client) UnpinChatMessage(ctx context.Context, chatID int64) error {
	return c.call(ctx, "unpinChatMessage", map[string]any{"chat_id": chatID}, nil)
}

func (c *Client) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	return c.call(ctx, "deleteMessage", map[string]any{"chat_id": chatID, "message_id": messageID}, nil)
}

func (c *Client) GetChatMember(ctx context.Context, chatID, userID int64) (*ChatMember, error) {
	var m ChatMember
	err := c.call(ctx, "getChatMember", map[string]any{"chat_id": chatID, "user_id": userID}, &m)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackQueryID string) error {
	return c.call(ctx, "answerCallbackQuery", map[string]any{"callback_query_id": callbackQueryID}, nil)
}
