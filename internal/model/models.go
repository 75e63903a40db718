// Package model defines shared data structures for the analyzer service.
package model

import (
	"strings"
	"time"
)

// SearchParams carries the five query fields accepted by the analyze form
// and forwarded to the hh.ru search API.
type SearchParams struct {
	Text       string
	Area       string
	Experience string
	Employment string
	Salary     string
}

// CacheKey returns the order-sensitive tuple key shared by the response
// cache and the result cache.
func (p SearchParams) CacheKey() string {
	return strings.Join([]string{p.Text, p.Area, p.Experience, p.Employment, p.Salary}, "_")
}

// Vacancy is a normalised job posting fetched from hh.ru.
// Immutable once fetched; salary bounds are nil when the posting carries none.
type Vacancy struct {
	Title       string `json:"title"`
	Employer    string `json:"employer"`
	SalaryFrom  *int   `json:"salaryFrom,omitempty"`
	SalaryTo    *int   `json:"salaryTo,omitempty"`
	Area        string `json:"area"`
	Experience  string `json:"experience"`
	Employment  string `json:"employment"`
	Requirement string `json:"requirement"`
	URL         string `json:"url"`
}

// VacancyRecord mirrors a persisted vacancies table row.
type VacancyRecord struct {
	ID         int64     `db:"id" json:"id"`
	Title      string    `db:"title" json:"title"`
	Company    string    `db:"company" json:"company"`
	SalaryFrom *int      `db:"salary_from" json:"salaryFrom"`
	SalaryTo   *int      `db:"salary_to" json:"salaryTo"`
	Area       string    `db:"area" json:"area"`
	Experience string    `db:"experience" json:"experience"`
	Employment string    `db:"employment" json:"employment"`
	URL        string    `db:"url" json:"url"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// RequirementCount is one row of the requirement frequency ranking.
// Percentage is count / total vacancies × 100, rounded to two decimals.
type RequirementCount struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// EmployerCount is one row of the employer frequency ranking.
type EmployerCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Analysis is the derived result of one vacancy search.
//
// Requirements holds the full ranking (descending count, ties in encounter
// order); TopSkills and TopEmployers are ≤10-element prefixes of their
// rankings. Salary statistics use the lower bound only and default to 0 when
// no vacancy in the set carries one.
type Analysis struct {
	Query              string             `json:"query"`
	TotalVacancies     int                `json:"totalVacancies"`
	AverageSalary      float64            `json:"averageSalary"`
	MedianSalary       float64            `json:"medianSalary"`
	Requirements       []RequirementCount `json:"requirements"`
	TopSkills          []RequirementCount `json:"topSkills"`
	TopEmployers       []EmployerCount    `json:"topEmployers"`
	UniqueRequirements int                `json:"uniqueRequirements"`
	ByExperience       map[string]int     `json:"byExperience"`
	ByEmployment       map[string]int     `json:"byEmployment"`
	ByEmployer         map[string]int     `json:"byEmployer"`
}
