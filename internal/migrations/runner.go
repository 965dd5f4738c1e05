package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-cms-community/internal/logging"
	"github.com/goliatone/go-cms-community/pkg/interfaces"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

//go:embed sql/postgres/*.sql sql/sqlite/*.sql
var migrationFiles embed.FS

const splitMarker = "---bun:split"

// FS exposes the embedded migration files.
func FS() fs.FS {
	return migrationFiles
}

// Applied records one migration file run against the database.
type Applied struct {
	bun.BaseModel `bun:"table:cms_schema_migrations,alias:m"`

	Name      string    `bun:"name,pk"`
	AppliedAt time.Time `bun:"applied_at,notnull"`
}

// Runner applies the embedded schema in file name order, once per file.
type Runner struct {
	db     *bun.DB
	logger interfaces.Logger
	now    func() time.Time
}

func NewRunner(db *bun.DB, logger interfaces.Logger) *Runner {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Runner{db: db, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Up applies pending migrations and returns the names it ran.
func (r *Runner) Up(ctx context.Context) ([]string, error) {
	dir, err := dialectDir(r.db)
	if err != nil {
		return nil, err
	}
	if _, err := r.db.NewCreateTable().Model((*Applied)(nil)).IfNotExists().Exec(ctx); err != nil {
		return nil, fmt.Errorf("migrations: create tracking table: %w", err)
	}

	var done []Applied
	if err := r.db.NewSelect().Model(&done).Scan(ctx); err != nil {
		return nil, fmt.Errorf("migrations: load applied: %w", err)
	}
	applied := make(map[string]struct{}, len(done))
	for _, item := range done {
		applied[item.Name] = struct{}{}
	}

	names, err := fs.Glob(migrationFiles, path.Join("sql", dir, "*.up.sql"))
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	ran := make([]string, 0)
	for _, name := range names {
		base := path.Base(name)
		if _, ok := applied[base]; ok {
			continue
		}
		raw, err := fs.ReadFile(migrationFiles, name)
		if err != nil {
			return ran, fmt.Errorf("migrations: read %s: %w", base, err)
		}
		err = r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			for _, statement := range Statements(string(raw)) {
				if _, err := tx.ExecContext(ctx, statement); err != nil {
					return err
				}
			}
			_, err := tx.NewInsert().Model(&Applied{Name: base, AppliedAt: r.now()}).Exec(ctx)
			return err
		})
		if err != nil {
			return ran, fmt.Errorf("migrations: apply %s: %w", base, err)
		}
		r.logger.WithContext(ctx).Info("migration applied", "name", base, "dialect", dir)
		ran = append(ran, base)
	}
	return ran, nil
}

// Statements splits a migration file on the bun split marker.
func Statements(content string) []string {
	out := make([]string, 0)
	for _, chunk := range strings.Split(content, splitMarker) {
		if statement := strings.TrimSpace(chunk); statement != "" {
			out = append(out, statement)
		}
	}
	return out
}

func dialectDir(db *bun.DB) (string, error) {
	switch db.Dialect().Name() {
	case dialect.PG:
		return "postgres", nil
	case dialect.SQLite:
		return "sqlite", nil
	default:
		return "", fmt.Errorf("migrations: unsupported dialect %s", db.Dialect().Name())
	}
}
