package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/proqure/backend/internal/storage/models"
	"github.com/proqure/backend/pkg/logger"
	"github.com/proqure/backend/pkg/retry"
)

var ErrNotFound = errors.New("report not found")

type Client struct {
	db          *sql.DB
	retryConfig retry.Config
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	retryConfig := retry.DefaultConfig()
	retryConfig.ShouldRetry = isBusy
	retryConfig.Logger = logger.GetLogger()

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db, retryConfig: retryConfig}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) Ping() error {
	return c.db.Ping()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		supplier_name TEXT NOT NULL,
		industry TEXT NOT NULL,
		responses TEXT NOT NULL,
		ai_output TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reports_owner ON reports(owner_id);
	CREATE INDEX IF NOT EXISTS idx_reports_created ON reports(created_at);
	CREATE INDEX IF NOT EXISTS idx_reports_supplier ON reports(owner_id, supplier_name);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

// InsertReport persists a completed evaluation as a single row. There is
// deliberately no update path: reports are immutable once written.
func (c *Client) InsertReport(ctx context.Context, report *models.Report) error {
	responsesJSON, err := json.Marshal(report.Responses)
	if err != nil {
		return fmt.Errorf("failed to marshal responses: %w", err)
	}

	aiOutputJSON, err := json.Marshal(report.AIOutput)
	if err != nil {
		return fmt.Errorf("failed to marshal AI output: %w", err)
	}

	query := `
		INSERT INTO reports (id, owner_id, supplier_name, industry, responses, ai_output, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	err = retry.Do(ctx, c.retryConfig, func() error {
		_, execErr := c.db.ExecContext(
			ctx,
			query,
			report.ID,
			report.OwnerID,
			report.SupplierName,
			report.Industry,
			string(responsesJSON),
			string(aiOutputJSON),
			report.CreatedAt.Unix(),
		)
		return execErr
	})

	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}

	logger.Info("Report persisted",
		zap.String("report_id", report.ID),
		zap.String("supplier", report.SupplierName),
	)

	return nil
}

func (c *Client) GetReport(ctx context.Context, id string) (*models.Report, error) {
	query := `
		SELECT id, owner_id, supplier_name, industry, responses, ai_output, created_at
		FROM reports
		WHERE id = ?
	`

	report, err := scanReport(c.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	return report, nil
}

func (c *Client) GetReportsByOwner(ctx context.Context, ownerID string) ([]models.Report, error) {
	query := `
		SELECT id, owner_id, supplier_name, industry, responses, ai_output, created_at
		FROM reports
		WHERE owner_id = ?
		ORDER BY created_at DESC
	`

	rows, err := c.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reports: %w", err)
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		reports = append(reports, *report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate report rows: %w", err)
	}

	return reports, nil
}

func (c *Client) ListSupplierNames(ctx context.Context, ownerID string) ([]string, error) {
	query := `
		SELECT DISTINCT supplier_name
		FROM reports
		WHERE owner_id = ?
		ORDER BY supplier_name
	`

	rows, err := c.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list supplier names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan supplier name: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate supplier names: %w", err)
	}

	return names, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReport(row rowScanner) (*models.Report, error) {
	var report models.Report
	var responsesJSON, aiOutputJSON string
	var createdAt int64

	err := row.Scan(
		&report.ID,
		&report.OwnerID,
		&report.SupplierName,
		&report.Industry,
		&responsesJSON,
		&aiOutputJSON,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(responsesJSON), &report.Responses); err != nil {
		return nil, fmt.Errorf("failed to unmarshal responses: %w", err)
	}
	if err := json.Unmarshal([]byte(aiOutputJSON), &report.AIOutput); err != nil {
		return nil, fmt.Errorf("failed to unmarshal AI output: %w", err)
	}

	report.CreatedAt = time.Unix(createdAt, 0)
	return &report, nil
}

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked")
}
