// Package store implements PostgreSQL persistence for fetched vacancies,
// their requirement tokens, and the search history.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	"hhpulse/analyzer-service/internal/model"
)

// Store wraps the connection pool. Connections are scoped per call and
// released unconditionally; no transaction spans a full analysis request.
type Store struct {
	pool *pgxpool.Pool
}

// New returns a Store backed by pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// InitSchema creates the tables if they do not exist yet.
func (s *Store) InitSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS vacancies (
			id          BIGSERIAL PRIMARY KEY,
			title       TEXT NOT NULL,
			company     TEXT,
			salary_from INTEGER,
			salary_to   INTEGER,
			area        TEXT,
			experience  TEXT,
			employment  TEXT,
			url         TEXT,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS requirements (
			id   BIGSERIAL PRIMARY KEY,
			name TEXT UNIQUE NOT NULL
		);

		CREATE TABLE IF NOT EXISTS vacancy_requirements (
			vacancy_id     BIGINT NOT NULL REFERENCES vacancies (id),
			requirement_id BIGINT NOT NULL REFERENCES requirements (id),
			PRIMARY KEY (vacancy_id, requirement_id)
		);

		CREATE TABLE IF NOT EXISTS search_history (
			id         BIGSERIAL PRIMARY KEY,
			query      TEXT NOT NULL,
			area       TEXT,
			experience TEXT,
			employment TEXT,
			salary     TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// SaveVacancies inserts one row per vacancy, one row per previously unseen
// requirement token, and one join row per (vacancy, token) pair. tokens[i]
// holds the distinct tokens of vacancies[i]. Token inserts are idempotent.
// The whole batch runs in a single transaction.
func (s *Store) SaveVacancies(ctx context.Context, vacancies []model.Vacancy, tokens [][]string) error {
	if len(vacancies) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, v := range vacancies {
		var vacancyID int64
		err := tx.QueryRow(ctx,
			`INSERT INTO vacancies (title, company, salary_from, salary_to, area, experience, employment, url)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING id`,
			v.Title, v.Employer, v.SalaryFrom, v.SalaryTo, v.Area, v.Experience, v.Employment, v.URL,
		).Scan(&vacancyID)
		if err != nil {
			return fmt.Errorf("insert vacancy: %w", err)
		}

		for _, name := range tokens[i] {
			// DO UPDATE instead of DO NOTHING so RETURNING also yields
			// the id of an already-existing token.
			var requirementID int64
			err := tx.QueryRow(ctx,
				`INSERT INTO requirements (name) VALUES ($1)
				 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
				 RETURNING id`,
				name,
			).Scan(&requirementID)
			if err != nil {
				return fmt.Errorf("upsert requirement %q: %w", name, err)
			}

			if _, err := tx.Exec(ctx,
				`INSERT INTO vacancy_requirements (vacancy_id, requirement_id)
				 VALUES ($1, $2)
				 ON CONFLICT DO NOTHING`,
				vacancyID, requirementID,
			); err != nil {
				return fmt.Errorf("insert vacancy_requirement: %w", err)
			}
		}
	}

	return tx.Commit(ctx)
}

// RecentVacancies returns the limit most recently persisted vacancies,
// newest first.
func (s *Store) RecentVacancies(ctx context.Context, limit int) ([]model.VacancyRecord, error) {
	var records []model.VacancyRecord
	err := pgxscan.Select(ctx, s.pool, &records,
		`SELECT id, title, COALESCE(company, '') AS company, salary_from, salary_to,
		        COALESCE(area, '') AS area, COALESCE(experience, '') AS experience,
		        COALESCE(employment, '') AS employment, COALESCE(url, '') AS url, created_at
		 FROM vacancies
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent vacancies: %w", err)
	}
	return records, nil
}

// RecordSearch appends the query tuple to the search history.
func (s *Store) RecordSearch(ctx context.Context, p model.SearchParams) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO search_history (query, area, experience, employment, salary)
		 VALUES ($1, $2, $3, $4, $5)`,
		p.Text, p.Area, p.Experience, p.Employment, p.Salary,
	)
	if err != nil {
		return fmt.Errorf("record search: %w", err)
	}
	return nil
}

// RecentSearches returns up to limit distinct query tuples, most recently
// used first. The background refresher re-runs these to keep the vacancy
// table warm.
func (s *Store) RecentSearches(ctx context.Context, limit int) ([]model.SearchParams, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT query, COALESCE(area, ''), COALESCE(experience, ''),
		        COALESCE(employment, ''), COALESCE(salary, ''),
		        MAX(created_at) AS last_seen
		 FROM search_history
		 GROUP BY 1, 2, 3, 4, 5
		 ORDER BY last_seen DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent searches: %w", err)
	}
	defer rows.Close()

	var searches []model.SearchParams
	for rows.Next() {
		var p model.SearchParams
		var lastSeen time.Time
		if err := rows.Scan(&p.Text, &p.Area, &p.Experience, &p.Employment, &p.Salary, &lastSeen); err != nil {
			return nil, fmt.Errorf("scan search: %w", err)
		}
		searches = append(searches, p)
	}
	return searches, rows.Err()
}
