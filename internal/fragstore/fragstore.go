// Package fragstore persists incremental-compilation fragments through
// GORM, backing internal/session's fragment cache with a durable store
// when one is configured.
package fragstore

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gsqlite "github.com/glebarez/sqlite"
	libsql "github.com/tursodatabase/libsql-client-go/libsql"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oxhq/autolang/models"
)

// Store wraps one GORM connection dedicated to fragment rows.
type Store struct {
	db *gorm.DB
}

// Open establishes a connection and migrates the fragment table. dsn is
// either a local file path (pure-Go sqlite via glebarez/sqlite) or a
// libsql://, http://, https:// URL for a shared remote cache.
func Open(dsn string, debug bool) (*Store, error) {
	if !isURL(dsn) {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("fragstore: create directory: %w", err)
			}
		}
	}

	cfg := &gorm.Config{}
	if debug {
		cfg.Logger = logger.Default.LogMode(logger.Info)
	}

	var dialector gorm.Dialector
	if isURL(dsn) {
		token := os.Getenv("AUTOLANG_LIBSQL_AUTH_TOKEN")
		var (
			connector driver.Connector
			err       error
		)
		if token != "" {
			connector, err = libsql.NewConnector(dsn, libsql.WithAuthToken(token))
		} else {
			connector, err = libsql.NewConnector(dsn)
		}
		if err != nil {
			return nil, fmt.Errorf("fragstore: libsql connector: %w", err)
		}
		conn := sql.OpenDB(connector)
		dialector = gormsqlite.New(gormsqlite.Config{DriverName: "libsql", Conn: conn, DSN: dsn})
	} else {
		dialector = gsqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("fragstore: connect: %w", err)
	}
	if err := db.AutoMigrate(&models.FragmentRow{}); err != nil {
		return nil, fmt.Errorf("fragstore: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func isURL(dsn string) bool {
	return strings.HasPrefix(dsn, "http://") || strings.HasPrefix(dsn, "https://") || strings.HasPrefix(dsn, "libsql:")
}

// Row is the in-process shape internal/session works with; Dependencies
// is a plain slice rather than the JSON column models.FragmentRow stores.
type Row struct {
	ID           string
	FileID       string
	DeclPath     string
	TokenHash    string
	Target       string
	Artifact     string
	Dependencies []string
	Dirty        bool
}

// Get returns the stored row for id, or (Row{}, false) if absent.
func (s *Store) Get(id string) (Row, bool) {
	var m models.FragmentRow
	if err := s.db.First(&m, "id = ?", id).Error; err != nil {
		return Row{}, false
	}
	return rowFromModel(m), true
}

// ByFile returns every row recorded for fileID, across all declarations
// and targets.
func (s *Store) ByFile(fileID string) ([]Row, error) {
	var ms []models.FragmentRow
	if err := s.db.Where("file_id = ?", fileID).Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("fragstore: query by file: %w", err)
	}
	out := make([]Row, len(ms))
	for i, m := range ms {
		out[i] = rowFromModel(m)
	}
	return out, nil
}

// All returns every row in the store, across every file and target.
func (s *Store) All() ([]Row, error) {
	var ms []models.FragmentRow
	if err := s.db.Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("fragstore: query all: %w", err)
	}
	out := make([]Row, len(ms))
	for i, m := range ms {
		out[i] = rowFromModel(m)
	}
	return out, nil
}

// Put inserts or overwrites the row keyed by its id.
func (s *Store) Put(r Row) error {
	deps, err := json.Marshal(r.Dependencies)
	if err != nil {
		return fmt.Errorf("fragstore: marshal dependencies: %w", err)
	}
	m := models.FragmentRow{
		ID:           r.ID,
		FileID:       r.FileID,
		DeclPath:     r.DeclPath,
		TokenHash:    r.TokenHash,
		Target:       r.Target,
		Artifact:     r.Artifact,
		Dependencies: datatypes.JSON(deps),
		Dirty:        r.Dirty,
	}
	if err := s.db.Save(&m).Error; err != nil {
		return fmt.Errorf("fragstore: save: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func rowFromModel(m models.FragmentRow) Row {
	var deps []string
	_ = json.Unmarshal(m.Dependencies, &deps)
	return Row{
		ID:           m.ID,
		FileID:       m.FileID,
		DeclPath:     m.DeclPath,
		TokenHash:    m.TokenHash,
		Target:       m.Target,
		Artifact:     m.Artifact,
		Dependencies: deps,
		Dirty:        m.Dirty,
	}
}
