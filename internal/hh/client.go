// Package hh implements the outbound client for the hh.ru vacancy search API.
package hh

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"hhpulse/analyzer-service/internal/model"
)

const (
	perPage           = 100
	httpTimeout       = 15 * time.Second
	responseCacheSize = 100
	responseCacheTTL  = time.Hour
)

// Client fetches vacancies from the hh.ru search endpoint.
//
// Successful responses are cached for up to an hour, keyed by the exact
// parameter tuple, with LRU eviction past responseCacheSize entries. The
// cache is independent from the analyzer's result cache: it survives
// aggregation-logic changes. A failed call is a failure — no retries.
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
	cache     *expirable.LRU[string, []model.Vacancy]
}

// NewClient constructs a client with a shared HTTP client and response cache.
func NewClient(baseURL, userAgent string) *Client {
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: httpTimeout},
		cache:     expirable.NewLRU[string, []model.Vacancy](responseCacheSize, nil, responseCacheTTL),
	}
}

// searchResponse mirrors the top-level hh.ru JSON response.
type searchResponse struct {
	Items []searchItem `json:"items"`
	Found int          `json:"found"`
}

// searchItem mirrors a single hh.ru vacancy listing.
type searchItem struct {
	Name         string     `json:"name"`
	Employer     hhEmployer `json:"employer"`
	Salary       *hhSalary  `json:"salary"`
	Area         hhNamed    `json:"area"`
	Experience   hhNamed    `json:"experience"`
	Employment   hhNamed    `json:"employment"`
	AlternateURL string     `json:"alternate_url"`
	Snippet      hhSnippet  `json:"snippet"`
}

type hhEmployer struct {
	Name string `json:"name"`
}

type hhSalary struct {
	From     *int   `json:"from"`
	To       *int   `json:"to"`
	Currency string `json:"currency"`
}

type hhNamed struct {
	Name string `json:"name"`
}

type hhSnippet struct {
	Requirement string `json:"requirement"`
}

// Search issues a single GET against the search endpoint and returns the
// normalised vacancy list. Transport errors and non-2xx statuses are logged
// here and returned as errors — callers see "no data", never a panic.
func (c *Client) Search(ctx context.Context, params model.SearchParams) ([]model.Vacancy, error) {
	key := params.CacheKey()
	if cached, ok := c.cache.Get(key); ok {
		return cached, nil
	}

	reqURL, err := c.buildURL(params)
	if err != nil {
		return nil, fmt.Errorf("build URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("[hh] search request failed: %v", err)
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("[hh] search returned %d", resp.StatusCode)
		return nil, fmt.Errorf("hh.ru returned %d: %s", resp.StatusCode, string(body))
	}

	var apiResp searchResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	vacancies := make([]model.Vacancy, 0, len(apiResp.Items))
	for _, item := range apiResp.Items {
		v := model.Vacancy{
			Title:       item.Name,
			Employer:    item.Employer.Name,
			Area:        item.Area.Name,
			Experience:  item.Experience.Name,
			Employment:  item.Employment.Name,
			Requirement: item.Snippet.Requirement,
			URL:         item.AlternateURL,
		}
		if item.Salary != nil {
			v.SalaryFrom = item.Salary.From
			v.SalaryTo = item.Salary.To
		}
		vacancies = append(vacancies, v)
	}

	c.cache.Add(key, vacancies)
	return vacancies, nil
}

// buildURL assembles the search URL from the five query fields plus the
// fixed page-size cap.
func (c *Client) buildURL(params model.SearchParams) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}

	query := u.Query()
	query.Set("text", params.Text)
	query.Set("area", params.Area)
	query.Set("experience", params.Experience)
	query.Set("employment", params.Employment)
	query.Set("salary", params.Salary)
	query.Set("per_page", strconv.Itoa(perPage))

	u.RawQuery = query.Encode()
	return u.String(), nil
}
