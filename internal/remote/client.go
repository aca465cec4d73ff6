package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/mattjoyce/voicegw/internal/config"
	"github.com/mattjoyce/voicegw/internal/log"
)

// StatusError carries the remote service's status classification for a
// failed call. Callers use the code to decide whether a failure is
// retryable or an expected business outcome.
type StatusError struct {
	Code    int    `json:"code"`
	Message string `json:"err"`
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote: %s (status %d)", e.Message, e.Code)
}

// HTTPClient talks to the audio-intelligence API over HTTPS with bearer auth.
type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

// NewHTTPClient builds a client from the remote section of the config.
func NewHTTPClient(cfg config.RemoteConfig) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  log.WithComponent("remote"),
	}
}

var _ Client = (*HTTPClient)(nil)

// CreateMedia registers a new audio entity with its channel-to-role mapping.
func (c *HTTPClient) CreateMedia(ctx context.Context, roles []SpeakerRole) (string, error) {
	body := struct {
		SpeakerRoles []SpeakerRole `json:"speaker_roles"`
	}{SpeakerRoles: roles}

	var resp struct {
		ID string `json:"_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/media", body, &resp); err != nil {
		return "", fmt.Errorf("create media: %w", err)
	}
	return resp.ID, nil
}

// Transload submits an upload-from-URL operation for existing media.
func (c *HTTPClient) Transload(ctx context.Context, req TransloadRequest) (string, error) {
	path := "/media/" + url.PathEscape(req.AudioID) + "/transload"

	var resp struct {
		ID string `json:"_id"`
	}
	if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return "", fmt.Errorf("transload %s: %w", req.AudioID, err)
	}
	return resp.ID, nil
}

// Classify submits a transcript classification operation.
func (c *HTTPClient) Classify(ctx context.Context, req ClassifyRequest) (string, error) {
	path := "/media/" + url.PathEscape(req.AudioID) + "/classify"

	var resp struct {
		ID string `json:"_id"`
	}
	if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return "", fmt.Errorf("classify %s: %w", req.AudioID, err)
	}
	return resp.ID, nil
}

// DocumentLink resolves a stored document reference to a transient URL.
// The link is short-lived; callers should fetch it promptly.
func (c *HTTPClient) DocumentLink(ctx context.Context, documentID string) (string, error) {
	path := "/documents/" + url.PathEscape(documentID) + "/link"

	var resp struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", fmt.Errorf("document link %s: %w", documentID, err)
	}
	return resp.URL, nil
}

// ListWebhooks returns enabled subscriptions for an event type.
func (c *HTTPClient) ListWebhooks(ctx context.Context, event string) ([]Subscription, error) {
	path := "/webhooks?enabled=true&event=" + url.QueryEscape(event)

	var resp struct {
		Webhooks []Subscription `json:"webhooks"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("list webhooks: %w", err)
	}
	return resp.Webhooks, nil
}

// CreateWebhook registers a new subscription.
func (c *HTTPClient) CreateWebhook(ctx context.Context, sub Subscription) (Subscription, error) {
	var created Subscription
	if err := c.do(ctx, http.MethodPost, "/webhooks", sub, &created); err != nil {
		return Subscription{}, fmt.Errorf("create webhook: %w", err)
	}
	return created, nil
}

// do performs one authenticated JSON round trip. Non-2xx responses decode
// into a StatusError so callers can classify the failure.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("remote call", "method", method, "path", path,
		"request_id", req.Header.Get("X-Request-ID"))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &StatusError{Code: resp.StatusCode}
		if decodeErr := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(serr); decodeErr != nil || serr.Message == "" {
			serr.Message = http.StatusText(resp.StatusCode)
		}
		serr.Code = resp.StatusCode
		return serr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
