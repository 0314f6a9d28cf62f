package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"LiquiMind/internal/model"

	"golang.org/x/time/rate"
)

// CourseLister is the external course-listing collaborator.
type CourseLister interface {
	ListCourses(ctx context.Context) ([]model.Course, error)
}

// ChainGPTClient lists courses from the ChainGPT REST API.
// The API is rate sensitive, calls are paced by a token bucket.
type ChainGPTClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	limiter *rate.Limiter
}

// NewChainGPTClient creates a client allowing one call per minInterval.
func NewChainGPTClient(baseURL, apiKey, proxyURL string, minInterval time.Duration) *ChainGPTClient {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = "https://api.chaingpt.org"
	}
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &ChainGPTClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// chainGPTCourse is the expected JSON shape from the courses endpoint.
type chainGPTCourse struct {
	ID          any    `json:"id"`
	Title       string `json:"title"`
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

func (c *ChainGPTClient) ListCourses(ctx context.Context) ([]model.Course, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: course api rate limit: %w", model.ErrCollaboratorUnavailable, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/courses", nil)
	if err != nil {
		return nil, err
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch courses: %w", model.ErrCollaboratorUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: fetch courses: status %d, body: %s", model.ErrCollaboratorUnavailable, resp.StatusCode, string(body))
	}

	var result struct {
		Courses []chainGPTCourse `json:"courses"`
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&result); err != nil {
		return nil, fmt.Errorf("decode courses: %w", err)
	}
	courses := make([]model.Course, 0, len(result.Courses))
	for _, rc := range result.Courses {
		title := rc.Title
		if title == "" {
			title = rc.Name
		}
		courses = append(courses, model.Course{
			ID:          courseID(rc.ID),
			Title:       title,
			Description: rc.Description,
			URL:         rc.URL,
		})
	}
	return courses, nil
}

// courseID accepts numeric or string ids.
func courseID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case json.Number:
		return id.String()
	default:
		return fmt.Sprint(id)
	}
}
