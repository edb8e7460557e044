// Package client is a Go client of the file-storage HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"file-storage-service/internal/model/fileInfo"

	"github.com/google/uuid"
)

var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx answer of the server.
type APIError struct {
	StatusCode  int
	Message     string `json:"error"`
	OldKey      string `json:"old_key"`
	NewKey      string `json:"new_key"`
	NewKeyInUse bool   `json:"new_key_in_use"`
}

func (e *APIError) Error() string {
	if e.NewKeyInUse {
		return fmt.Sprintf("server returned %d: %s (old key %q, new key %q belongs to another file)", e.StatusCode, e.Message, e.OldKey, e.NewKey)
	}
	if e.OldKey != "" || e.NewKey != "" {
		return fmt.Sprintf("server returned %d: %s (old key %q, new key %q)", e.StatusCode, e.Message, e.OldKey, e.NewKey)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), token: token, httpClient: httpClient}
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("failed to build url: %w", err)
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	return req, nil
}

func (c *Client) do(req *http.Request, want int, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return readError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func readError(resp *http.Response) error {
	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	apiErr := &APIError{StatusCode: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	return apiErr
}

func filePath(id uuid.UUID, suffix string) string {
	return "/api/v1/files/" + id.String() + suffix
}

func (c *Client) List(ctx context.Context, owner string) ([]fileInfo.File, error) {
	query := url.Values{}
	if owner != "" {
		query.Set("owner", owner)
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/files", query, nil)
	if err != nil {
		return nil, err
	}
	var files []fileInfo.File
	return files, c.do(req, http.StatusOK, &files)
}

func (c *Client) Get(ctx context.Context, id uuid.UUID) (*fileInfo.File, error) {
	req, err := c.newRequest(ctx, http.MethodGet, filePath(id, ""), nil, nil)
	if err != nil {
		return nil, err
	}
	var file fileInfo.File
	return &file, c.do(req, http.StatusOK, &file)
}

func (c *Client) History(ctx context.Context, id uuid.UUID) ([]fileInfo.Revision, error) {
	req, err := c.newRequest(ctx, http.MethodGet, filePath(id, "/history"), nil, nil)
	if err != nil {
		return nil, err
	}
	var revisions []fileInfo.Revision
	return revisions, c.do(req, http.StatusOK, &revisions)
}

// Upload sends content as a multipart form. The body is buffered in memory.
func (c *Client) Upload(ctx context.Context, name, filename, contentType string, content io.Reader) (*fileInfo.File, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if name != "" {
		if err := mw.WriteField("name", name); err != nil {
			return nil, err
		}
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/files", nil, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	var file fileInfo.File
	return &file, c.do(req, http.StatusCreated, &file)
}

func (c *Client) Rename(ctx context.Context, id uuid.UUID, newName string) (*fileInfo.File, error) {
	payload, err := json.Marshal(map[string]string{"name": newName})
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPut, filePath(id, ""), nil, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	var file fileInfo.File
	return &file, c.do(req, http.StatusOK, &file)
}

func (c *Client) Delete(ctx context.Context, id uuid.UUID) error {
	req, err := c.newRequest(ctx, http.MethodDelete, filePath(id, ""), nil, nil)
	if err != nil {
		return err
	}
	return c.do(req, http.StatusNoContent, nil)
}

// Download streams the content of id into w.
func (c *Client) Download(ctx context.Context, id uuid.UUID, w io.Writer) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, filePath(id, "/download"), nil, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, readError(resp)
	}
	return io.Copy(w, resp.Body)
}

// Revoke invalidates the client's own token.
func (c *Client) Revoke(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/tokens/revoke", nil, nil)
	if err != nil {
		return err
	}
	return c.do(req, http.StatusNoContent, nil)
}
