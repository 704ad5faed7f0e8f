package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WebApp is one launchable web application created by this tool.
type WebApp struct {
	ID          string
	Name        string
	URL         string
	Icon        string // path to the normalized icon file
	Browser     string // browser catalog id
	IconMissing bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const webappColumns = `id, name, url, icon, browser, icon_missing, created_at, updated_at`

// Service provides web app registry operations.
type Service struct {
	db *sql.DB
}

// NewService creates a registry service.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Create inserts a new web app record.
func (s *Service) Create(ctx context.Context, w *WebApp) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	w.CreatedAt = now
	w.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO webapps (id, name, url, icon, browser, icon_missing, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		w.ID, w.Name, w.URL, w.Icon, w.Browser, boolToInt(w.IconMissing),
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("creating web app: %w", err)
	}
	return nil
}

// GetByName retrieves a web app by its display name. Returns nil, nil when
// no such app exists.
func (s *Service) GetByName(ctx context.Context, name string) (*WebApp, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+webappColumns+` FROM webapps WHERE name = ?`, name)
	w, err := scanWebApp(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting web app by name: %w", err)
	}
	return w, nil
}

// List returns all web apps ordered by name.
func (s *Service) List(ctx context.Context) ([]*WebApp, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+webappColumns+` FROM webapps ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing web apps: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var apps []*WebApp
	for rows.Next() {
		w, err := scanWebApp(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning web app: %w", err)
		}
		apps = append(apps, w)
	}
	return apps, rows.Err()
}

// Delete removes a web app record by name.
func (s *Service) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM webapps WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting web app: %w", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("web app not found: %s", name)
	}
	return nil
}

// MarkIconMissing flags every web app whose icon is the given path, so the
// launcher list can surface broken entries.
func (s *Service) MarkIconMissing(ctx context.Context, iconPath string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE webapps SET icon_missing = 1, updated_at = ?
		WHERE icon = ?
	`, time.Now().UTC().Format(time.RFC3339), iconPath)
	if err != nil {
		return fmt.Errorf("marking icon missing: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWebApp(row rowScanner) (*WebApp, error) {
	var (
		w           WebApp
		iconMissing int
		created     string
		updated     string
	)
	err := row.Scan(&w.ID, &w.Name, &w.URL, &w.Icon, &w.Browser, &iconMissing, &created, &updated)
	if err != nil {
		return nil, err
	}
	w.IconMissing = iconMissing != 0
	w.CreatedAt, _ = time.Parse(time.RFC3339, created)
	w.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return &w, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
