package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/vmsclient/internal/client/models"
)

const maxErrorBody = 4 << 10

type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
}

// NewHTTPClient returns a client for the API rooted at baseURL
// (e.g. "http://localhost:8080/api"). rt is the round tripper every request
// goes through; pass the auth transport so requests carry the bearer token.
// A nil rt means http.DefaultTransport.
func NewHTTPClient(baseURL string, rt http.RoundTripper, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}
	if rt == nil {
		rt = http.DefaultTransport
	}
	return &HTTPClient{
		baseURL: u,
		http:    &http.Client{Transport: rt, Timeout: timeout},
	}, nil
}

func (c *HTTPClient) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	if err := c.do(ctx, http.MethodPost, &resp, req, "auth", "login"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account. The server answers with a plain-text
// confirmation message, which is returned as is.
func (c *HTTPClient) Register(ctx context.Context, req models.RegisterRequest) (string, error) {
	var msg string
	if err := c.do(ctx, http.MethodPost, &msg, req, "auth", "register"); err != nil {
		return "", err
	}
	return msg, nil
}

func (c *HTTPClient) ListEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := c.do(ctx, http.MethodGet, &events, nil, "events"); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *HTTPClient) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	var event models.Event
	if err := c.do(ctx, http.MethodGet, &event, nil, "events", strconv.FormatInt(id, 10)); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *HTTPClient) MyOrganizedEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := c.do(ctx, http.MethodGet, &events, nil, "events", "my-organized"); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *HTTPClient) RegisterForEvent(ctx context.Context, eventID int64) error {
	return c.do(ctx, http.MethodPost, nil, models.RegistrationRequest{EventID: eventID}, "registrations")
}

func (c *HTTPClient) RegisteredEventIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := c.do(ctx, http.MethodGet, &ids, nil, "registrations", "myevents", "ids"); err != nil {
		return nil, err
	}
	return ids, nil
}

func (c *HTTPClient) CurrentUser(ctx context.Context) (*models.Account, error) {
	var acc models.Account
	if err := c.do(ctx, http.MethodGet, &acc, nil, "users", "me"); err != nil {
		return nil, err
	}
	return &acc, nil
}

// do sends one request. in, when non-nil, is sent as JSON. out may be nil
// (body discarded), a *string (body read as text) or any JSON target.
func (c *HTTPClient) do(ctx context.Context, method string, out any, in any, path ...string) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path...).String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	switch target := out.(type) {
	case nil:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	case *string:
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		*target = string(b)
		return nil
	default:
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
}
