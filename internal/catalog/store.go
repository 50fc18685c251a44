package catalog

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store keeps the catalog in SQLite.
type Store struct {
	db *gorm.DB
}

func NewStore(dbFilePath string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dbFilePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open catalog database: %w", err)
	}

	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (store *Store) Close() error {
	sqlDB, err := store.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Replace swaps the stored entries for names in a single transaction.
func (store *Store) Replace(names []string) error {
	entries := entriesFor(names)
	return store.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Entry{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		return tx.CreateInBatches(entries, 100).Error
	})
}

func (store *Store) Len() int {
	var count int64
	if err := store.db.Model(&Entry{}).Count(&count).Error; err != nil {
		return 0
	}
	return int(count)
}

// Match relies on SQLite's LIKE being case-insensitive for ASCII.
func (store *Store) Match(query string, limit int) ([]Entry, error) {
	entries := []Entry{}
	db := store.db.Where("name LIKE ? ESCAPE '\\'", escapeLike(query)+"%").Order("name")
	if limit > 0 {
		db = db.Limit(limit)
	}
	if err := db.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
