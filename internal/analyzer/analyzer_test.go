package analyzer_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"hhpulse/analyzer-service/internal/analyzer"
	"hhpulse/analyzer-service/internal/model"
)

// ── Test doubles ───────────────────────────────────────────────────────────

type fakeFetcher struct {
	calls     int
	vacancies []model.Vacancy
	err       error
}

func (f *fakeFetcher) Search(_ context.Context, _ model.SearchParams) ([]model.Vacancy, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vacancies, nil
}

type fakeStore struct {
	savedVacancies []model.Vacancy
	savedTokens    [][]string
	searches       []model.SearchParams
}

func (s *fakeStore) SaveVacancies(_ context.Context, vacancies []model.Vacancy, tokens [][]string) error {
	s.savedVacancies = vacancies
	s.savedTokens = tokens
	return nil
}

func (s *fakeStore) RecordSearch(_ context.Context, p model.SearchParams) error {
	s.searches = append(s.searches, p)
	return nil
}

func intPtr(n int) *int { return &n }

func newAnalyzer(t *testing.T, fetcher *fakeFetcher) (*analyzer.Analyzer, *fakeStore) {
	t.Helper()
	store := &fakeStore{}
	return analyzer.New(fetcher, store, nil, t.TempDir()), store
}

// ── Salary statistics ──────────────────────────────────────────────────────

func TestAnalyze_SalaryStatistics(t *testing.T) {
	fetcher := &fakeFetcher{vacancies: []model.Vacancy{
		{Title: "a", SalaryFrom: intPtr(100)},
		{Title: "b", SalaryFrom: intPtr(200)},
		{Title: "c"}, // no salary — excluded from the sample, counted in total
	}}
	a, _ := newAnalyzer(t, fetcher)

	result, err := a.Analyze(context.Background(), model.SearchParams{Text: "go"})
	if err != nil {
		t.Fatalf("Analyze returned unexpected error: %v", err)
	}

	if result.TotalVacancies != 3 {
		t.Errorf("TotalVacancies = %d, want 3", result.TotalVacancies)
	}
	if result.AverageSalary != 150 {
		t.Errorf("AverageSalary = %v, want 150", result.AverageSalary)
	}
	if result.MedianSalary != 150 {
		t.Errorf("MedianSalary = %v, want 150", result.MedianSalary)
	}
}

func TestAnalyze_MedianEvenLength(t *testing.T) {
	fetcher := &fakeFetcher{vacancies: []model.Vacancy{
		{SalaryFrom: intPtr(100)},
		{SalaryFrom: intPtr(400)},
		{SalaryFrom: intPtr(200)},
		{SalaryFrom: intPtr(300)},
	}}
	a, _ := newAnalyzer(t, fetcher)

	result, err := a.Analyze(context.Background(), model.SearchParams{Text: "go"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	// Even-length sample averages the two middle values: (200+300)/2.
	if result.MedianSalary != 250 {
		t.Errorf("MedianSalary = %v, want 250", result.MedianSalary)
	}
}

func TestAnalyze_NoSalariedVacancies(t *testing.T) {
	fetcher := &fakeFetcher{vacancies: []model.Vacancy{
		{Title: "a"}, {Title: "b"},
	}}
	a, _ := newAnalyzer(t, fetcher)

	result, err := a.Analyze(context.Background(), model.SearchParams{Text: "go"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if result.AverageSalary != 0 {
		t.Errorf("AverageSalary = %v, want 0", result.AverageSalary)
	}
	if result.MedianSalary != 0 {
		t.Errorf("MedianSalary = %v, want 0", result.MedianSalary)
	}
}

// ── Requirement aggregation ────────────────────────────────────────────────

func TestAnalyze_TokenCounts(t *testing.T) {
	fetcher := &fakeFetcher{vacancies: []model.Vacancy{
		{Requirement: "Python SQL Python"},
		{Requirement: "sql"},
	}}
	a, _ := newAnalyzer(t, fetcher)

	result, err := a.Analyze(context.Background(), model.SearchParams{Text: "python"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	counts := map[string]model.RequirementCount{}
	for _, rc := range result.Requirements {
		counts[rc.Name] = rc
	}

	if got := counts["python"].Count; got != 2 {
		t.Errorf("count(python) = %d, want 2", got)
	}
	if got := counts["sql"].Count; got != 2 {
		t.Errorf("count(sql) = %d, want 2", got)
	}
	// 2 occurrences over 2 vacancies → 100%.
	if got := counts["python"].Percentage; got != 100 {
		t.Errorf("percentage(python) = %v, want 100", got)
	}
	if result.UniqueRequirements != 2 {
		t.Errorf("UniqueRequirements = %d, want 2", result.UniqueRequirements)
	}
}

func TestAnalyze_RankingIsStableOnTies(t *testing.T) {
	fetcher := &fakeFetcher{vacancies: []model.Vacancy{
		{Requirement: "zebra apple mango"},
		{Requirement: "mango"},
	}}
	a, _ := newAnalyzer(t, fetcher)

	result, err := a.Analyze(context.Background(), model.SearchParams{Text: "go"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	got := make([]string, len(result.Requirements))
	for i, rc := range result.Requirements {
		got[i] = rc.Name
	}

	// mango leads on count; zebra and apple tie and keep encounter order.
	want := []string{"mango", "zebra", "apple"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ranking = %v, want %v", got, want)
		}
	}
}

func TestAnalyze_TopListsArePrefixes(t *testing.T) {
	fetcher := &fakeFetcher{vacancies: []model.Vacancy{
		{Requirement: "alpha bravo charlie delta echo foxtrot golf hotel india juliett kilo lima", Employer: "Acme"},
	}}
	a, _ := newAnalyzer(t, fetcher)

	result, err := a.Analyze(context.Background(), model.SearchParams{Text: "go"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(result.Requirements) != 12 {
		t.Fatalf("len(Requirements) = %d, want 12", len(result.Requirements))
	}
	if len(result.TopSkills) != 10 {
		t.Fatalf("len(TopSkills) = %d, want 10", len(result.TopSkills))
	}
	for i, rc := range result.TopSkills {
		if rc != result.Requirements[i] {
			t.Errorf("TopSkills[%d] = %+v, not a prefix of Requirements", i, rc)
		}
	}
	if len(result.TopEmployers) != 1 || result.TopEmployers[0].Name != "Acme" {
		t.Errorf("TopEmployers = %+v, want [Acme]", result.TopEmployers)
	}
}

func TestAnalyze_Distributions(t *testing.T) {
	fetcher := &fakeFetcher{vacancies: []model.Vacancy{
		{Employer: "Acme", Experience: "1–3 years", Employment: "Full time"},
		{Employer: "Acme", Experience: "1–3 years", Employment: "Part time"},
		{Employer: "Globex", Experience: "No experience", Employment: "Full time"},
	}}
	a, _ := newAnalyzer(t, fetcher)

	result, err := a.Analyze(context.Background(), model.SearchParams{Text: "go"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if result.ByEmployer["Acme"] != 2 || result.ByEmployer["Globex"] != 1 {
		t.Errorf("ByEmployer = %v", result.ByEmployer)
	}
	if result.ByExperience["1–3 years"] != 2 {
		t.Errorf("ByExperience = %v", result.ByExperience)
	}
	if result.ByEmployment["Full time"] != 2 {
		t.Errorf("ByEmployment = %v", result.ByEmployment)
	}
}

// ── Caching ────────────────────────────────────────────────────────────────

func TestAnalyze_CacheHitSkipsSecondFetch(t *testing.T) {
	fetcher := &fakeFetcher{vacancies: []model.Vacancy{
		{Title: "a", Requirement: "golang", SalaryFrom: intPtr(100)},
	}}
	a, _ := newAnalyzer(t, fetcher)

	params := model.SearchParams{Text: "go", Area: "1"}
	first, err := a.Analyze(context.Background(), params)
	if err != nil {
		t.Fatalf("first Analyze: %v", err)
	}
	second, err := a.Analyze(context.Background(), params)
	if err != nil {
		t.Fatalf("second Analyze: %v", err)
	}

	if fetcher.calls != 1 {
		t.Errorf("fetcher called %d times, want 1", fetcher.calls)
	}
	if first != second {
		t.Error("cached call returned a different result object")
	}
}

func TestAnalyze_DistinctParamsFetchSeparately(t *testing.T) {
	fetcher := &fakeFetcher{}
	a, _ := newAnalyzer(t, fetcher)

	_, _ = a.Analyze(context.Background(), model.SearchParams{Text: "go", Area: "1"})
	_, _ = a.Analyze(context.Background(), model.SearchParams{Text: "go", Area: "2"})

	if fetcher.calls != 2 {
		t.Errorf("fetcher called %d times, want 2", fetcher.calls)
	}
}

func TestAnalyze_FetchFailureNotCached(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("connection refused")}
	a, store := newAnalyzer(t, fetcher)

	params := model.SearchParams{Text: "go"}
	result, err := a.Analyze(context.Background(), params)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if result != nil {
		t.Errorf("result = %+v, want nil", result)
	}
	if store.savedVacancies != nil {
		t.Error("failed fetch must not persist vacancies")
	}

	// A second call must hit the fetcher again: failures are never cached.
	_, _ = a.Analyze(context.Background(), params)
	if fetcher.calls != 2 {
		t.Errorf("fetcher called %d times, want 2", fetcher.calls)
	}
}

// ── Persistence side effect ────────────────────────────────────────────────

func TestAnalyze_PersistsDistinctTokensPerVacancy(t *testing.T) {
	fetcher := &fakeFetcher{vacancies: []model.Vacancy{
		{Title: "a", Requirement: "Python SQL Python"},
	}}
	a, store := newAnalyzer(t, fetcher)

	if _, err := a.Analyze(context.Background(), model.SearchParams{Text: "python"}); err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(store.savedVacancies) != 1 {
		t.Fatalf("saved %d vacancies, want 1", len(store.savedVacancies))
	}
	if len(store.savedTokens) != 1 {
		t.Fatalf("saved tokens for %d vacancies, want 1", len(store.savedTokens))
	}
	// "python" appears twice in the snippet but is persisted once.
	want := []string{"python", "sql"}
	got := store.savedTokens[0]
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("distinct tokens = %v, want %v", got, want)
	}
	if len(store.searches) != 1 || store.searches[0].Text != "python" {
		t.Errorf("recorded searches = %+v", store.searches)
	}
}

// ── Export ─────────────────────────────────────────────────────────────────

func TestExport_WritesTimestampedJSON(t *testing.T) {
	fetcher := &fakeFetcher{vacancies: []model.Vacancy{
		{Title: "a", Requirement: "golang", SalaryFrom: intPtr(100)},
	}}
	dir := t.TempDir()
	a := analyzer.New(fetcher, &fakeStore{}, nil, dir)

	result, err := a.Analyze(context.Background(), model.SearchParams{Text: "go developer"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	path, err := a.Export(result)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	if !strings.Contains(path, "go_developer_analysis_") || !strings.HasSuffix(path, ".json") {
		t.Errorf("unexpected export filename: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	var decoded model.Analysis
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if decoded.Query != "go developer" || decoded.TotalVacancies != 1 {
		t.Errorf("decoded export = %+v", decoded)
	}
}
