package delivery

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	appconfig "github.com/brightops/adpulse/internal/config"
)

const githubAPIBase = "https://api.github.com"

// Publisher pushes the HTML dashboard to a GitHub Pages repository via
// the contents API.
type Publisher struct {
	apiBase    string
	owner      string
	repo       string
	branch     string
	path       string
	token      string
	httpClient *http.Client
}

// NewPublisher returns nil when the publish channel is not configured.
func NewPublisher(cfg appconfig.PagesConfig) *Publisher {
	if !cfg.Configured() {
		return nil
	}
	return &Publisher{
		apiBase:    githubAPIBase,
		owner:      cfg.Owner,
		repo:       cfg.Repo,
		branch:     cfg.Branch,
		path:       cfg.Path,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}
}

type contentsResponse struct {
	SHA string `json:"sha"`
}

type putContentsRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch,omitempty"`
	SHA     string `json:"sha,omitempty"`
}

// Publish uploads the dashboard and returns its public Pages URL. An
// existing file is updated in place: the contents API requires the
// current blob SHA on update, so Publish reads it first.
func (p *Publisher) Publish(ctx context.Context, html string) (string, error) {
	sha, err := p.currentSHA(ctx)
	if err != nil {
		return "", err
	}

	body := putContentsRequest{
		Message: fmt.Sprintf("Update marketing report %s", time.Now().UTC().Format("2006-01-02")),
		Content: base64.StdEncoding.EncodeToString([]byte(html)),
		Branch:  p.branch,
		SHA:     sha,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling contents request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, p.contentsURL(), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating contents request: %w", err)
	}
	p.setHeaders(req)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("publishing dashboard: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("contents API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	io.Copy(io.Discard, resp.Body)

	return p.PublicURL(), nil
}

// PublicURL is the GitHub Pages address the published file serves from.
func (p *Publisher) PublicURL() string {
	return fmt.Sprintf("https://%s.github.io/%s/%s", p.owner, p.repo, p.path)
}

// currentSHA fetches the blob SHA of the existing file. A 404 means
// first publish and returns an empty SHA.
func (p *Publisher) currentSHA(ctx context.Context) (string, error) {
	url := p.contentsURL()
	if p.branch != "" {
		url += "?ref=" + p.branch
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating contents lookup: %w", err)
	}
	p.setHeaders(req)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("looking up existing dashboard: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("contents lookup returned status %d", resp.StatusCode)
	}

	var existing contentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&existing); err != nil {
		return "", fmt.Errorf("decoding contents lookup: %w", err)
	}
	return existing.SHA, nil
}

func (p *Publisher) contentsURL() string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", p.apiBase, p.owner, p.repo, p.path)
}

func (p *Publisher) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
}
