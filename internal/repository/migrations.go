package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/questx-lab/noloss/pkg/xcontext"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type dbLogger struct {
	ctx context.Context
}

func (l *dbLogger) Printf(format string, v ...any) {
	xcontext.Logger(l.ctx).Infof("%s", strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *dbLogger) Verbose() bool {
	return false
}

// DoSqlMigration applies the versioned schema to a MySQL database. The
// migrations are embedded in the binary.
func DoSqlMigration(ctx context.Context, db *sql.DB) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}

	driver, err := mysql.WithInstance(db, &mysql.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", source, "mysql", driver)
	if err != nil {
		return err
	}

	m.Log = &dbLogger{ctx: ctx}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}
