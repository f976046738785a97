package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/nkov/comment-triage/internal/models"
	"github.com/nkov/comment-triage/internal/taxonomy"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
}

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config DatabaseConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %v", err)
	}

	storage := &PostgresStorage{db: db}

	// Initialize database schema
	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %v", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %v", err)
	}

	_, err = s.db.Exec(string(migrationSQL))
	if err != nil {
		return fmt.Errorf("error executing migrations: %v", err)
	}

	return nil
}

func (s *PostgresStorage) SaveOutcome(ctx context.Context, outcome *models.TriageOutcome) error {
	query := `
		INSERT INTO triage_outcomes (id, comment, category, score, reply, contact_ref, crm_status, warning, processed_at, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	contactRef := ""
	if outcome.CRMAction != nil {
		contactRef = outcome.CRMAction.ContactRef
	}

	_, err := s.db.ExecContext(ctx, query,
		outcome.ID,
		outcome.Comment,
		string(outcome.Result.Label),
		outcome.Result.Score,
		outcome.Reply,
		contactRef,
		string(outcome.CRMStatus),
		outcome.Warning,
		outcome.ProcessedAt,
		outcome.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("error saving outcome: %v", err)
	}

	return nil
}

func (s *PostgresStorage) ListOutcomes(ctx context.Context, limit, offset int) ([]*models.TriageOutcome, error) {
	query := `
		SELECT id, comment, category, score, reply, crm_status, warning, processed_at, duration_ms
		FROM triage_outcomes
		ORDER BY processed_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error querying outcomes: %v", err)
	}
	defer rows.Close()

	var outcomes []*models.TriageOutcome
	for rows.Next() {
		outcome := &models.TriageOutcome{}
		var category, crmStatus string
		var durationMs int64
		err := rows.Scan(
			&outcome.ID,
			&outcome.Comment,
			&category,
			&outcome.Result.Score,
			&outcome.Reply,
			&crmStatus,
			&outcome.Warning,
			&outcome.ProcessedAt,
			&durationMs,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning outcome: %v", err)
		}
		outcome.Result.Label = taxonomy.Category(category)
		outcome.CRMStatus = models.NotifyStatus(crmStatus)
		outcome.Duration = time.Duration(durationMs) * time.Millisecond
		// Engagement is derived from the taxonomy, not stored.
		if meta, err := taxonomy.Meta(outcome.Result.Label); err == nil {
			outcome.Engagement = meta.EngagementScore
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes, rows.Err()
}

func (s *PostgresStorage) ClearOutcomes(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM triage_outcomes`); err != nil {
		return fmt.Errorf("error clearing outcomes: %v", err)
	}
	return nil
}

func (s *PostgresStorage) CategoryCounts(ctx context.Context) (map[taxonomy.Category]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category, COUNT(*) FROM triage_outcomes GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("error querying category counts: %v", err)
	}
	defer rows.Close()

	counts := make(map[taxonomy.Category]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("error scanning category count: %v", err)
		}
		counts[taxonomy.Category(category)] = count
	}

	return counts, rows.Err()
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
