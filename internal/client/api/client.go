// Package api is the CLI side of the memoria HTTP boundary: upload
// negotiation, remote deletion and the memory row store.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/memoria/internal/common"
	"github.com/dmitrijs2005/memoria/internal/logging"
	"github.com/dmitrijs2005/memoria/internal/media"
	"github.com/dmitrijs2005/memoria/internal/netx"
	"github.com/dmitrijs2005/memoria/internal/wire"
)

type Client struct {
	baseURL string
	http    *http.Client
	token   string
	policy  netx.Policy
	msgs    media.Messages
	logger  logging.Logger
}

// New returns a client for the API rooted at baseURL. policy applies to
// negotiation only; row store calls are made once.
func New(baseURL string, httpClient *http.Client, policy netx.Policy, msgs media.Messages, logger logging.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		policy:  policy,
		msgs:    msgs,
		logger:  logger.With("module", "api"),
	}
}

// SetToken sets the bearer token sent with every authenticated call.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// decodeError maps a failed response onto the shared sentinels, keeping the
// server's {error} text.
func decodeError(resp *http.Response) error {
	var er wire.ErrorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if json.Unmarshal(raw, &er) != nil || er.Error == "" {
		er.Error = strings.TrimSpace(string(raw))
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", common.ErrorUnauthorized, er.Error)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", common.ErrorForbidden, er.Error)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", common.ErrorNotFound, er.Error)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", common.ErrSlugTaken, er.Error)
	}
	return &netx.StatusError{Code: resp.StatusCode, Body: er.Error}
}

// Negotiate asks the server for a presigned PUT grant. The storage key is
// always chosen by the server.
func (c *Client) Negotiate(ctx context.Context, fileName, fileType, folder string) (media.Grant, error) {
	var grant wire.PresignResponse
	err := c.policy.Do(ctx, func(ctx context.Context) error {
		return c.do(ctx, http.MethodPost, "/api/upload/presigned-url",
			wire.PresignRequest{FileName: fileName, FileType: fileType, Folder: folder}, &grant)
	})
	if err == nil && (grant.UploadURL == "" || grant.PublicURL == "") {
		err = errors.New("incomplete grant")
	}
	if err != nil {
		c.logger.Warn(ctx, "negotiation failed", "file", fileName, "error", err)
		return media.Grant{}, media.NewError(media.ErrNegotiation, c.msgs.UploadFailed(), err)
	}
	return grant, nil
}

// DeleteByPublicURL asks the server to remove the object behind rawURL.
func (c *Client) DeleteByPublicURL(ctx context.Context, rawURL string) error {
	var resp wire.DeleteResponse
	if err := c.do(ctx, http.MethodDelete, "/api/upload/delete", wire.DeleteRequest{URL: rawURL}, &resp); err != nil {
		return media.NewError(media.ErrDeletion, c.msgs.DeleteFailed(), err)
	}
	if !resp.Success {
		return media.NewError(media.ErrDeletion, c.msgs.DeleteFailed(), errors.New("server did not confirm deletion"))
	}
	return nil
}

func (c *Client) CreateMemory(ctx context.Context, req wire.CreateMemoryRequest) (wire.Memory, error) {
	var m wire.Memory
	err := c.do(ctx, http.MethodPost, "/api/memories", req, &m)
	return m, err
}

func (c *Client) UpdateMemory(ctx context.Context, id string, req wire.UpdateMemoryRequest) (wire.Memory, error) {
	var m wire.Memory
	err := c.do(ctx, http.MethodPatch, "/api/memories/"+url.PathEscape(id), req, &m)
	return m, err
}

func (c *Client) GetMemory(ctx context.Context, id string) (wire.Memory, error) {
	var m wire.Memory
	err := c.do(ctx, http.MethodGet, "/api/memories/"+url.PathEscape(id), nil, &m)
	return m, err
}

// ListMemories returns the caller's memories, optionally filtered by status.
func (c *Client) ListMemories(ctx context.Context, status string) ([]wire.Memory, error) {
	path := "/api/memories"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var list wire.MemoryList
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list.Memories, nil
}

func (c *Client) DeleteMemory(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/memories/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Stats(ctx context.Context) (wire.Stats, error) {
	var s wire.Stats
	err := c.do(ctx, http.MethodGet, "/api/stats", nil, &s)
	return s, err
}
