// Package api implements the Content API client: underline and idea
// persistence behind a bearer credential.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/logan676/bookpost/internal/anchor"
	"github.com/logan676/bookpost/internal/underline"
)

// ErrUnavailable wraps transport failures and non-auth server errors. Callers
// surface it as a transient message and leave local state untouched.
var ErrUnavailable = errors.New("api: content service unavailable")

const defaultHTTPTimeout = 15 * time.Second

// Config describes how to reach the Content API.
type Config struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// Client talks to the Content API. It satisfies underline.Backend.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient builds a client. An empty token is valid and yields an
// unauthenticated client: annotation features are disabled, not broken.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		client:  httpClient,
	}
}

// Authenticated reports whether a bearer credential is configured.
func (c *Client) Authenticated() bool {
	return c.token != ""
}

// ListUnderlines fetches every underline the current user holds on a document.
func (c *Client) ListUnderlines(ctx context.Context, documentID string) ([]underline.Underline, error) {
	var out []underline.Underline
	path := fmt.Sprintf("/documents/%s/underlines", documentID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type createUnderlineRequest struct {
	Text    string         `json:"text"`
	Address anchor.Address `json:"address"`
}

// CreateUnderline persists a new underline record.
func (c *Client) CreateUnderline(ctx context.Context, documentID, text string, addr anchor.Address) (underline.Underline, error) {
	var out underline.Underline
	path := fmt.Sprintf("/documents/%s/underlines", documentID)
	if err := c.do(ctx, http.MethodPost, path, createUnderlineRequest{Text: text, Address: addr}, &out); err != nil {
		return underline.Underline{}, err
	}
	return out, nil
}

// DeleteUnderline removes an underline; the server cascades to its ideas.
func (c *Client) DeleteUnderline(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/underlines/%s", id), nil, nil)
}

// ListIdeas fetches the note thread attached to an underline.
func (c *Client) ListIdeas(ctx context.Context, underlineID string) ([]underline.Idea, error) {
	var out []underline.Idea
	path := fmt.Sprintf("/underlines/%s/ideas", underlineID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type ideaContentRequest struct {
	Content string `json:"content"`
}

// CreateIdea appends a note to an underline's thread.
func (c *Client) CreateIdea(ctx context.Context, underlineID, content string) (underline.Idea, error) {
	var out underline.Idea
	path := fmt.Sprintf("/underlines/%s/ideas", underlineID)
	if err := c.do(ctx, http.MethodPost, path, ideaContentRequest{Content: content}, &out); err != nil {
		return underline.Idea{}, err
	}
	return out, nil
}

// UpdateIdea rewrites a note's content.
func (c *Client) UpdateIdea(ctx context.Context, id, content string) (underline.Idea, error) {
	var out underline.Idea
	path := fmt.Sprintf("/ideas/%s", id)
	if err := c.do(ctx, http.MethodPatch, path, ideaContentRequest{Content: content}, &out); err != nil {
		return underline.Idea{}, err
	}
	return out, nil
}

// DeleteIdea removes one note from its thread.
func (c *Client) DeleteIdea(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/ideas/%s", id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return underline.ErrUnauthenticated
	}
	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s (%s)", ErrUnavailable, resp.Status, strings.TrimSpace(string(snippet)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return nil
}
