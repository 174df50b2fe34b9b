package store

import (
	"fmt"
	"time"
)

// PostedWorklog is one worklog that reached Jira.
type PostedWorklog struct {
	ID        int64
	IssueKey  string
	Seconds   int
	Comment   string
	WorklogID string
	PostedAt  time.Time
}

// DailyTotal aggregates posted time per issue per day.
type DailyTotal struct {
	Date         string
	IssueKey     string
	TotalSeconds int64
	EntryCount   int
}

// RecordPosted appends a successful post to the history.
func (s *Store) RecordPosted(issueKey string, seconds int, comment, worklogID string, postedAt time.Time) error {
	if issueKey == "" || seconds <= 0 {
		return fmt.Errorf("posted worklog needs an issue key and positive seconds")
	}
	_, err := s.db.Exec(
		`INSERT INTO posted_worklogs (issue_key, seconds, comment, worklog_id, posted_at) VALUES (?, ?, ?, ?, ?)`,
		issueKey, seconds, comment, worklogID, postedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("record posted worklog: %w", err)
	}
	return nil
}

// RecentPosted lists the newest history entries, newest first.
func (s *Store) RecentPosted(limit int) ([]PostedWorklog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, issue_key, seconds, comment, worklog_id, posted_at
		 FROM posted_worklogs ORDER BY posted_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list posted worklogs: %w", err)
	}
	defer rows.Close()

	var out []PostedWorklog
	for rows.Next() {
		var p PostedWorklog
		var postedAt string
		if err := rows.Scan(&p.ID, &p.IssueKey, &p.Seconds, &p.Comment, &p.WorklogID, &postedAt); err != nil {
			return nil, err
		}
		p.PostedAt, _ = time.Parse(time.RFC3339, postedAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

// DailyTotals aggregates posted time per issue per day inside [from, to).
func (s *Store) DailyTotals(from, to time.Time) ([]DailyTotal, error) {
	rows, err := s.db.Query(
		`SELECT date(posted_at) AS day, issue_key, SUM(seconds), COUNT(*)
		 FROM posted_worklogs
		 WHERE posted_at >= ? AND posted_at < ?
		 GROUP BY day, issue_key
		 ORDER BY day, issue_key`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}
	defer rows.Close()

	var out []DailyTotal
	for rows.Next() {
		var d DailyTotal
		if err := rows.Scan(&d.Date, &d.IssueKey, &d.TotalSeconds, &d.EntryCount); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
