// Package analyzer contains the aggregation core of the service.
// It is transport-agnostic: used by the web handlers and the background
// refresher alike.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"

	"hhpulse/analyzer-service/internal/model"
)

const (
	resultCacheSize = 100
	resultCacheTTL  = time.Hour
	topN            = 10

	// EventAnalysisDone is the Redis channel analysis events are published on.
	EventAnalysisDone = "EVENT_ANALYSIS_DONE"
)

// Fetcher returns the vacancy list for a parameter tuple, or an error on any
// transport failure.
type Fetcher interface {
	Search(ctx context.Context, params model.SearchParams) ([]model.Vacancy, error)
}

// Store persists fetched vacancies and the search history.
type Store interface {
	SaveVacancies(ctx context.Context, vacancies []model.Vacancy, tokens [][]string) error
	RecordSearch(ctx context.Context, params model.SearchParams) error
}

// Analyzer computes vacancy statistics for a query tuple.
//
// Results are memoized per exact parameter tuple for up to an hour, bounded
// to resultCacheSize entries with LRU eviction. Both caches are internally
// synchronized, so a single Analyzer is safe for concurrent handlers.
type Analyzer struct {
	fetcher   Fetcher
	store     Store
	rdb       *redis.Client
	cache     *expirable.LRU[string, *model.Analysis]
	tokenizer *tokenizer
	exportDir string
}

// New returns a configured Analyzer. store and rdb may be nil (persistence
// and event publishing are side effects, never gating the returned result).
func New(fetcher Fetcher, store Store, rdb *redis.Client, exportDir string) *Analyzer {
	return &Analyzer{
		fetcher:   fetcher,
		store:     store,
		rdb:       rdb,
		cache:     expirable.NewLRU[string, *model.Analysis](resultCacheSize, nil, resultCacheTTL),
		tokenizer: newTokenizer(),
		exportDir: exportDir,
	}
}

// Analyze returns the aggregated statistics for the given parameter tuple.
//
// A cache hit returns the previously computed result as-is, without a second
// outbound fetch. A fetch failure returns a nil result and an error; nothing
// is written to either cache in that case.
func (a *Analyzer) Analyze(ctx context.Context, params model.SearchParams) (*model.Analysis, error) {
	key := params.CacheKey()
	if result, ok := a.cache.Get(key); ok {
		return result, nil
	}

	vacancies, err := a.fetcher.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("fetch vacancies: %w", err)
	}

	result, tokens := a.aggregate(params.Text, vacancies)
	a.cache.Add(key, result)

	a.publish(ctx, params, result)
	a.persist(ctx, params, vacancies, tokens)

	return result, nil
}

// aggregate runs the single linear pass over the vacancy list. It returns
// the derived statistics plus the distinct tokens per vacancy, which the
// caller hands to the store.
func (a *Analyzer) aggregate(query string, vacancies []model.Vacancy) (*model.Analysis, [][]string) {
	total := len(vacancies)

	var salaries []int
	requirements := newCounter()
	employers := newCounter()
	experience := newCounter()
	employment := newCounter()

	distinctTokens := make([][]string, len(vacancies))
	for i, v := range vacancies {
		if v.SalaryFrom != nil {
			salaries = append(salaries, *v.SalaryFrom)
		}
		if v.Requirement != "" {
			seen := make(map[string]bool)
			for _, token := range a.tokenizer.Tokens(v.Requirement) {
				requirements.Add(token)
				if !seen[token] {
					seen[token] = true
					distinctTokens[i] = append(distinctTokens[i], token)
				}
			}
		}
		if v.Employer != "" {
			employers.Add(v.Employer)
		}
		if v.Experience != "" {
			experience.Add(v.Experience)
		}
		if v.Employment != "" {
			employment.Add(v.Employment)
		}
	}

	ranked := requirements.Ranked()
	reqCounts := make([]model.RequirementCount, len(ranked))
	for i, entry := range ranked {
		reqCounts[i] = model.RequirementCount{
			Name:       entry.label,
			Count:      entry.count,
			Percentage: round2(float64(entry.count) / float64(total) * 100),
		}
	}

	topEmployers := employers.Ranked()
	if len(topEmployers) > topN {
		topEmployers = topEmployers[:topN]
	}
	employerCounts := make([]model.EmployerCount, len(topEmployers))
	for i, entry := range topEmployers {
		employerCounts[i] = model.EmployerCount{Name: entry.label, Count: entry.count}
	}

	topSkills := reqCounts
	if len(topSkills) > topN {
		topSkills = topSkills[:topN]
	}

	result := &model.Analysis{
		Query:              query,
		TotalVacancies:     total,
		AverageSalary:      round2(mean(salaries)),
		MedianSalary:       round2(median(salaries)),
		Requirements:       reqCounts,
		TopSkills:          topSkills,
		TopEmployers:       employerCounts,
		UniqueRequirements: len(ranked),
		ByExperience:       experience.counts,
		ByEmployment:       employment.counts,
		ByEmployer:         employers.counts,
	}
	return result, distinctTokens
}

// publish emits an analysis-completed event for downstream consumers.
// Non-fatal: a publish failure is logged and otherwise ignored.
func (a *Analyzer) publish(ctx context.Context, params model.SearchParams, result *model.Analysis) {
	if a.rdb == nil {
		return
	}
	event, _ := json.Marshal(map[string]any{
		"type":           EventAnalysisDone,
		"query":          params.Text,
		"area":           params.Area,
		"totalVacancies": result.TotalVacancies,
	})
	if err := a.rdb.Publish(ctx, EventAnalysisDone, event).Err(); err != nil {
		slog.Warn("publish EVENT_ANALYSIS_DONE failed", "err", err)
	}
}

// persist writes the fetched vacancies, their distinct tokens, and the query
// tuple to durable storage. Failures are logged and never roll back the
// in-memory result.
func (a *Analyzer) persist(ctx context.Context, params model.SearchParams, vacancies []model.Vacancy, tokens [][]string) {
	if a.store == nil {
		return
	}
	if err := a.store.SaveVacancies(ctx, vacancies, tokens); err != nil {
		slog.Warn("persist vacancies failed", "query", params.Text, "err", err)
	}
	if err := a.store.RecordSearch(ctx, params); err != nil {
		slog.Warn("record search failed", "query", params.Text, "err", err)
	}
}
