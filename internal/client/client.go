// Package client is the practice program's WordRush API client.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"wordrush/internal/game"
	"wordrush/shared/models"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx API response.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API error: %d", e.Status)
	}
	return fmt.Sprintf("API error: %d: %s", e.Status, e.Message)
}

// Unwrap maps auth statuses onto the shared sentinels.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case fasthttp.StatusUnauthorized:
		return models.ErrUnauthorized
	case fasthttp.StatusForbidden:
		return models.ErrForbidden
	case fasthttp.StatusNotFound:
		return models.ErrNotFound
	}
	return nil
}

// Client talks to the WordRush API. It implements game.WordSupply and game.BestStore.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	timeout time.Duration
	logger  *zap.Logger

	mu    sync.RWMutex
	token string
	user  *models.PublicUser
}

var (
	_ game.WordSupply = (*Client)(nil)
	_ game.BestStore  = (*Client)(nil)
)

// New creates a Client for baseURL, e.g. "http://localhost:4000".
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &fasthttp.Client{
			MaxConnsPerHost:     16,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
		timeout: timeout,
		logger:  logger.Named("APIClient"),
	}
}

// Login exchanges credentials for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	var res models.AuthResult
	if err := c.do(ctx, fasthttp.MethodPost, "/api/auth/login", body, &res); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	c.SetToken(res.Token, &res.User)
	c.logger.Info("Logged in", zap.String("userID", res.User.ID.String()))
	return &res, nil
}

// SetToken installs a token obtained elsewhere.
func (c *Client) SetToken(token string, user *models.PublicUser) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.user = user
}

// User returns the logged-in user, or nil.
func (c *Client) User() *models.PublicUser {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

type wordDTO struct {
	Term string `json:"term"`
	Hint string `json:"hint"`
}

// Phrases lists the words of level. Both a bare array and {"data": [...]} are accepted.
// The result is trimmed, stripped of empty items and shuffled.
func (c *Client) Phrases(ctx context.Context, level models.Level) ([]game.Phrase, error) {
	var raw json.RawMessage
	if err := c.do(ctx, fasthttp.MethodGet, "/api/words?level="+url.QueryEscape(level.String()), nil, &raw); err != nil {
		return nil, fmt.Errorf("list words: %w", err)
	}

	items, err := decodeWords(raw)
	if err != nil {
		return nil, err
	}
	phrases := make([]game.Phrase, 0, len(items))
	for _, w := range items {
		phrases = append(phrases, game.Phrase{Text: w.Term, Hint: w.Hint})
	}
	phrases = game.CleanPhrases(phrases)
	game.Shuffle(phrases)
	return phrases, nil
}

func decodeWords(raw json.RawMessage) ([]wordDTO, error) {
	var list []wordDTO
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		Data []wordDTO `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode words: %w", err)
	}
	return wrapped.Data, nil
}

// Best returns the stored best of level.
func (c *Client) Best(ctx context.Context, level models.Level) (int, error) {
	var res models.LevelBest
	if err := c.do(ctx, fasthttp.MethodGet, "/api/typing/best?level="+url.QueryEscape(level.String()), nil, &res); err != nil {
		return 0, fmt.Errorf("get best: %w", err)
	}
	if res.Level != "" && res.Level != level {
		return 0, fmt.Errorf("get best: server answered for level %q", res.Level)
	}
	return res.Best, nil
}

// SubmitBest posts score under take-maximum semantics and returns the stored best.
func (c *Client) SubmitBest(ctx context.Context, level models.Level, score int) (int, error) {
	body := map[string]any{"level": level, "score": score}
	var res models.LevelBest
	if err := c.do(ctx, fasthttp.MethodPost, "/api/typing/best", body, &res); err != nil {
		return 0, fmt.Errorf("submit best: %w", err)
	}
	return res.Best, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return err
		}
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return err
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		apiErr := &APIError{Status: status}
		var er models.ErrorResponse
		if json.Unmarshal(resp.Body(), &er) == nil {
			apiErr.Code, apiErr.Message = er.Code, er.Message
		}
		c.logger.Debug("API request failed", zap.String("method", method), zap.String("path", path), zap.Int("status", status))
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// IsUnauthorized reports whether err is an authentication failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, models.ErrUnauthorized)
}
