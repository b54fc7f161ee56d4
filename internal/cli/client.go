package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/thenoetrevino/tablero/internal/api"
	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/models"
)

// APIError is a non-2xx reply from the daemon's REST surface
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server replied %d %s", e.Status, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Client talks to a running daemon over REST
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a REST client for the daemon at baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// BaseURL returns the daemon address this client targets
func (c *Client) BaseURL() string {
	return c.baseURL
}

// WebsocketURL returns the daemon's websocket endpoint
func (c *Client) WebsocketURL() string {
	u := c.baseURL
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/ws"
}

// ListBoards returns a summary of every board
func (c *Client) ListBoards(ctx context.Context) ([]models.BoardSummary, error) {
	var sums []models.BoardSummary
	if err := c.do(ctx, http.MethodGet, "/api/boards", nil, &sums); err != nil {
		return nil, err
	}
	return sums, nil
}

// GetBoard fetches a full board document
func (c *Client) GetBoard(ctx context.Context, id string) (*models.Board, error) {
	var b models.Board
	if err := c.do(ctx, http.MethodGet, boardPath(id), nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBoard creates a board with optional initial lists
func (c *Client) CreateBoard(ctx context.Context, name string, lists []string) (*models.Board, error) {
	var b models.Board
	body := api.CreateBoardBody{Name: name, Lists: lists}
	if err := c.do(ctx, http.MethodPost, "/api/boards", body, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// ReplaceBoard overwrites an existing board with doc
func (c *Client) ReplaceBoard(ctx context.Context, id string, doc *models.Board) (*models.Board, error) {
	var b models.Board
	if err := c.do(ctx, http.MethodPut, boardPath(id), doc, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// DeleteBoard removes a board
func (c *Client) DeleteBoard(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, boardPath(id), nil, nil)
}

func boardPath(id string) string {
	return "/api/boards/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := sonic.ConfigStd.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		de := events.ClassifyDaemonError(err)
		de.Message = fmt.Sprintf("%s at %s", de.Message, c.baseURL)
		return de
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Code: http.StatusText(resp.StatusCode)}
		var eb api.ErrorBody
		if err := sonic.ConfigStd.Unmarshal(data, &eb); err == nil && eb.Error.Code != "" {
			apiErr.Code = eb.Error.Code
			apiErr.Message = eb.Error.Message
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := sonic.ConfigStd.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
