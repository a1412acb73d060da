// Package history is identedit's opt-in apply-history ledger: every apply
// outcome, successful or failed, is persisted as a row so a caller can list
// past applies and their per-file outcomes. Enabled via IDENTEDIT_HISTORY_DSN; when
// unset, callers should skip this package entirely (apply runs with no
// history sink). Grounded on db/sqlite.go's gorm+sqlite/libsql dual-mode
// dialector and core/transaction.go, the flat-file predecessor this
// generalizes onto the teacher's own DB stack.
package history

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"time"

	libsql "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ApplyRecord is one persisted apply transaction.
type ApplyRecord struct {
	ID                uint `gorm:"primaryKey"`
	CreatedAt         time.Time
	FilesModified     int
	OperationsApplied int
	Succeeded         bool
	ErrorType         string `gorm:"size:64"`
	ErrorMessage      string
	Files             string // newline-joined list of touched paths
}

// Ledger wraps the gorm connection identedit persists apply history to.
type Ledger struct {
	db *gorm.DB
}

// Open connects to dsn (a sqlite file path, or a libsql/Turso URL) and
// migrates the ledger schema.
func Open(dsn string) (*Ledger, error) {
	dialector, conn, err := dialectorFor(dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		return nil, fmt.Errorf("history: connect: %w", err)
	}
	if err := db.AutoMigrate(&ApplyRecord{}); err != nil {
		return nil, fmt.Errorf("history: migrate: %w", err)
	}
	return &Ledger{db: db}, nil
}

func dialectorFor(dsn string) (gorm.Dialector, *sql.DB, error) {
	if !isRemoteURL(dsn) {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("history: creating database directory: %w", err)
			}
		}
		return sqlite.Open(dsn), nil, nil
	}

	var (
		connector driver.Connector
		err       error
	)
	if token := os.Getenv("IDENTEDIT_LIBSQL_AUTH_TOKEN"); token != "" {
		connector, err = libsql.NewConnector(dsn, libsql.WithAuthToken(token))
	} else {
		connector, err = libsql.NewConnector(dsn)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("history: libsql connector: %w", err)
	}
	conn := sql.OpenDB(connector)
	return sqlite.New(sqlite.Config{DriverName: "libsql", Conn: conn, DSN: dsn}), conn, nil
}

func isRemoteURL(dsn string) bool {
	return len(dsn) > 7 && (dsn[:7] == "http://" || (len(dsn) > 8 && dsn[:8] == "https://") || (len(dsn) > 6 && dsn[:6] == "libsql"))
}

// Record appends one apply outcome to the ledger.
func (l *Ledger) Record(rec ApplyRecord) error {
	rec.CreatedAt = time.Time{} // left to gorm's autoCreateTime
	return l.db.Create(&rec).Error
}

// List returns the most recent limit records, newest first.
func (l *Ledger) List(limit int) ([]ApplyRecord, error) {
	var out []ApplyRecord
	q := l.db.Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return out, q.Find(&out).Error
}

// Close releases the underlying connection.
func (l *Ledger) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
