package metrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	metricsdb "meal-survey/internal/metrics/metrics_db"
	"meal-survey/internal/submission"
)

// Timestamps are stored as fixed-width UTC text so SQLite's date functions
// and string comparison both work on them.
const tsLayout = "2006-01-02 15:04:05"

// SubmissionMetric is a stored submission attempt.
type SubmissionMetric struct {
	SurveyID  string
	UserID    string
	Plan      string
	Status    string
	Answers   submission.Answers
	Error     string
	LatencyMS int64
	Timestamp time.Time
}

// Store handles persistence of submission attempts to SQLite.
type Store struct {
	queries *metricsdb.Queries
}

var _ submission.Recorder = (*Store)(nil)

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{queries: metricsdb.New(db)}
}

// Record saves a metric to the database.
func (s *Store) Record(ctx context.Context, m SubmissionMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	answers, err := json.Marshal(m.Answers)
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}

	err = s.queries.InsertSubmissionAttempt(ctx, metricsdb.InsertSubmissionAttemptParams{
		SurveyID:  m.SurveyID,
		UserID:    m.UserID,
		Plan:      nullString(m.Plan),
		Status:    m.Status,
		Answers:   string(answers),
		Error:     nullString(m.Error),
		LatencyMs: m.LatencyMS,
		Timestamp: ts.UTC().Format(tsLayout),
	})
	if err != nil {
		return fmt.Errorf("failed to insert submission attempt: %w", err)
	}
	return nil
}

// RecordAttempt records a submission attempt.
func (s *Store) RecordAttempt(ctx context.Context, a submission.Attempt) error {
	return s.Record(ctx, MapAttempt(a))
}

// ListByUser returns the most recent attempts of a user, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string, limit int) ([]SubmissionMetric, error) {
	rows, err := s.queries.ListSubmissionAttemptsByUser(ctx, metricsdb.ListSubmissionAttemptsByUserParams{
		UserID: userID,
		Limit:  int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list submission attempts for user %s: %w", userID, err)
	}

	results := make([]SubmissionMetric, 0, len(rows))
	for _, row := range rows {
		m := SubmissionMetric{
			SurveyID:  row.SurveyID,
			UserID:    row.UserID,
			Plan:      row.Plan.String,
			Status:    row.Status,
			Error:     row.Error.String,
			LatencyMS: row.LatencyMs,
		}
		if err := json.Unmarshal([]byte(row.Answers), &m.Answers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal answers of %s: %w", m.SurveyID, err)
		}
		m.Timestamp, _ = time.Parse(tsLayout, row.Timestamp)
		results = append(results, m)
	}
	return results, nil
}

// DailySubmissions represents attempt totals for a single day.
type DailySubmissions struct {
	Date      string
	Submitted int
	Failed    int
	AvgMS     int64
}

// GetDailySubmissions retrieves totals for the last N days, newest first.
func (s *Store) GetDailySubmissions(ctx context.Context, days int) ([]DailySubmissions, error) {
	since := time.Now().UTC().AddDate(0, 0, -days).Format(tsLayout)
	rows, err := s.queries.GetDailySubmissions(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily submissions: %w", err)
	}

	results := make([]DailySubmissions, 0, len(rows))
	for _, row := range rows {
		results = append(results, DailySubmissions{
			Date:      row.Day,
			Submitted: int(row.Submitted),
			Failed:    int(row.Failed),
			AvgMS:     row.AvgLatencyMs,
		})
	}
	return results, nil
}

// Cleanup removes records older than the specified number of days.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays).Format(tsLayout)
	n, err := s.queries.DeleteSubmissionAttemptsBefore(ctx, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up submission attempts: %w", err)
	}
	return n, nil
}

// MapAttempt converts a submission.Attempt to a SubmissionMetric.
func MapAttempt(a submission.Attempt) SubmissionMetric {
	m := SubmissionMetric{
		SurveyID:  a.Payload.SurveyID,
		UserID:    a.Payload.UserID,
		Plan:      a.Payload.PlanName(),
		Status:    a.Status.String(),
		Answers:   a.Payload.Answers,
		LatencyMS: a.Latency.Milliseconds(),
		Timestamp: a.At,
	}
	if a.Err != nil {
		m.Error = a.Err.Error()
	}
	return m
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
