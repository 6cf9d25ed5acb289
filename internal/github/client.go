package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a thin adapter over the GitHub REST API. It supports both
// token-authenticated access and public listing by username.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 20 * time.Second},
	}
}

type RemoteRepo struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	Language    string `json:"language"`
	HTMLURL     string `json:"html_url"`
	Stars       int    `json:"stargazers_count"`
}

func (c *Client) get(ctx context.Context, path, token string, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if accept == "" {
		accept = "application/vnd.github+json"
	}
	req.Header.Set("Accept", accept)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.HTTP.Do(req)
}

// ListUserRepos lists repos for the authenticated token owner.
func (c *Client) ListUserRepos(ctx context.Context, token string) ([]RemoteRepo, error) {
	return c.listRepos(ctx, "/user/repos?per_page=100&sort=updated", token)
}

// ListPublicRepos lists public repos of any username, no credential needed.
func (c *Client) ListPublicRepos(ctx context.Context, username string) ([]RemoteRepo, error) {
	path := fmt.Sprintf("/users/%s/repos?per_page=100&sort=updated", url.PathEscape(username))
	return c.listRepos(ctx, path, "")
}

func (c *Client) listRepos(ctx context.Context, path, token string) ([]RemoteRepo, error) {
	resp, err := c.get(ctx, path, token, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2*1024))
		return nil, fmt.Errorf("github: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out []RemoteRepo
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetReadme fetches the raw readme text; missing readmes are not an error.
func (c *Client) GetReadme(ctx context.Context, fullName, token string) (string, error) {
	path := fmt.Sprintf("/repos/%s/readme", fullName)
	resp, err := c.get(ctx, path, token, "application/vnd.github.raw+json")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("github: readme status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
