package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CacheIssueSummary upserts the summary for an issue key.
func (s *Store) CacheIssueSummary(issueKey, summary string) error {
	if issueKey == "" {
		return fmt.Errorf("issue key required")
	}
	_, err := s.db.Exec(
		`INSERT INTO issue_summaries (issue_key, summary, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(issue_key) DO UPDATE SET summary = excluded.summary, fetched_at = excluded.fetched_at`,
		issueKey, summary, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("cache summary for %q: %w", issueKey, err)
	}
	return nil
}

// IssueSummary returns the cached summary for a key, or "" when unknown.
func (s *Store) IssueSummary(issueKey string) (string, error) {
	var summary string
	err := s.db.QueryRow(
		`SELECT summary FROM issue_summaries WHERE issue_key = ?`, issueKey,
	).Scan(&summary)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read summary for %q: %w", issueKey, err)
	}
	return summary, nil
}

// IssueSummaries returns the whole cache as a key to summary map.
func (s *Store) IssueSummaries() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT issue_key, summary FROM issue_summaries`)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	defer rows.Close()

	summaries := make(map[string]string)
	for rows.Next() {
		var key, summary string
		if err := rows.Scan(&key, &summary); err != nil {
			return nil, err
		}
		summaries[key] = summary
	}
	return summaries, rows.Err()
}
