// Package hub is the HTTP client for the shared Core Hub, the remote store
// that seeds tenant content and receives approved publications.
//
// The hub is authenticated with a service-to-service bearer token distinct
// from user API keys; the token never reaches the browser-facing surface.
package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/iQube-Protocol/aigentjmo-sub000/internal/domain"
)

const defaultTimeout = 30 * time.Second

// Doc is the hub's wire representation of a knowledge document.
type Doc struct {
	ID          string                   `json:"id,omitempty"` // hub-assigned document id
	Slug        string                   `json:"slug"`         // stable content-derived identifier
	TenantScope string                   `json:"tenant_scope"`
	Domain      domain.Domain            `json:"domain"`
	Data        domain.KnowledgeSnapshot `json:"data"`
	Version     int64                    `json:"version,omitempty"`
	IsActive    bool                     `json:"is_active"`
	UpdatedAt   time.Time                `json:"updated_at,omitempty"`
}

// UpsertResult is the hub's acknowledgement of an upsert.
type UpsertResult struct {
	ID      string `json:"id"`
	Version int64  `json:"version"`
}

// Client talks to the Core Hub.
type Client struct {
	baseURL      string
	serviceToken string
	httpClient   *http.Client
}

// NewClient creates a hub client for the given base URL and service token.
func NewClient(baseURL, serviceToken string) *Client {
	return &Client{
		baseURL:      baseURL,
		serviceToken: serviceToken,
		httpClient:   &http.Client{Timeout: defaultTimeout},
	}
}

// Upsert inserts the document when it has no hub id yet, otherwise updates
// it by id. A slug conflict on insert is surfaced as ErrHubSlugConflict and
// requires manual resolution; the hub never silently overwrites.
func (c *Client) Upsert(ctx context.Context, doc Doc) (*UpsertResult, error) {
	var result UpsertResult
	if err := c.do(ctx, http.MethodPut, "/v1/docs", doc, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FetchActive returns every active hub document within the tenant scope.
func (c *Client) FetchActive(ctx context.Context, tenantScope string) ([]Doc, error) {
	path := "/v1/docs?active=true&tenant_scope=" + url.QueryEscape(tenantScope)
	var docs []Doc
	if err := c.do(ctx, http.MethodGet, path, nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return domain.NewDomainErrorWithCause(domain.ErrCodeRemoteSync, "failed to encode hub request", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeRemoteSync, "failed to build hub request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeRemoteSync, "hub request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domain.ErrHubUnauthorized
	case resp.StatusCode == http.StatusConflict:
		return domain.ErrHubSlugConflict
	case resp.StatusCode >= 400:
		msg := readErrorMessage(resp.Body)
		return domain.NewDomainError(domain.ErrCodeRemoteSync,
			fmt.Sprintf("hub returned status %d: %s", resp.StatusCode, msg))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeRemoteSync, "failed to decode hub response", err)
	}
	return nil
}

func readErrorMessage(body io.Reader) string {
	var payload struct {
		Error string `json:"error"`
	}
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return string(raw)
}
