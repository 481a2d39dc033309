package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"sonagg/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStorage struct {
	db    *sql.DB
	mutex sync.RWMutex
}

func NewSQLiteStorage(dataDir string) (*SQLiteStorage, error) {
	// Ensure data directory exists with secure permissions (0750)
	if err := os.MkdirAll(dataDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dataDir, "sonagg.db")
	log.Printf("Initializing database at: %s", dbPath)

	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_synchronous=NORMAL&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %v", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %v", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sources (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		display_url TEXT NOT NULL DEFAULT '',
		feed_endpoint TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		is_video_source BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS articles (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		link TEXT NOT NULL,
		pub_date TEXT NOT NULL DEFAULT '',
		content_snippet TEXT NOT NULL DEFAULT '',
		thumbnail TEXT NOT NULL DEFAULT '',
		source_id TEXT NOT NULL,
		source_title TEXT NOT NULL DEFAULT '',
		source_icon TEXT NOT NULL DEFAULT '',
		categories TEXT NOT NULL DEFAULT '[]',
		is_video BOOLEAN NOT NULL DEFAULT 0,
		language TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_articles_position ON articles(position);
	CREATE INDEX IF NOT EXISTS idx_articles_source ON articles(source_id);

	CREATE TABLE IF NOT EXISTS pool_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return err
	}
	return nil
}

func (s *SQLiteStorage) ListSources() ([]models.FeedSource, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	rows, err := s.db.Query(`SELECT id, name, display_url, feed_endpoint, is_active, is_video_source
		FROM sources ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %v", err)
	}
	defer rows.Close()

	var sources []models.FeedSource
	for rows.Next() {
		var src models.FeedSource
		if err := rows.Scan(&src.ID, &src.Name, &src.DisplayURL, &src.FeedEndpoint, &src.IsActive, &src.IsVideoSource); err != nil {
			return nil, fmt.Errorf("failed to scan source: %v", err)
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

func (s *SQLiteStorage) GetSource(id string) (*models.FeedSource, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var src models.FeedSource
	err := s.db.QueryRow(`SELECT id, name, display_url, feed_endpoint, is_active, is_video_source
		FROM sources WHERE id = ?`, id).
		Scan(&src.ID, &src.Name, &src.DisplayURL, &src.FeedEndpoint, &src.IsActive, &src.IsVideoSource)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source %s: %v", id, err)
	}
	return &src, nil
}

func (s *SQLiteStorage) SaveSource(source *models.FeedSource) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	_, err := s.db.Exec(`INSERT INTO sources (id, name, display_url, feed_endpoint, is_active, is_video_source)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			display_url = excluded.display_url,
			feed_endpoint = excluded.feed_endpoint,
			is_active = excluded.is_active,
			is_video_source = excluded.is_video_source,
			updated_at = CURRENT_TIMESTAMP`,
		source.ID, source.Name, source.DisplayURL, source.FeedEndpoint, source.IsActive, source.IsVideoSource)
	if err != nil {
		return fmt.Errorf("failed to save source %s: %v", source.ID, err)
	}
	return nil
}

func (s *SQLiteStorage) DeleteSource(id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	result, err := s.db.Exec("DELETE FROM sources WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete source %s: %v", id, err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("source %s not found", id)
	}
	return nil
}

// SeedSources inserts the given sources only if the registry is empty, so
// user edits survive restarts.
func (s *SQLiteStorage) SeedSources(sources []models.FeedSource) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM sources").Scan(&count); err != nil {
		return fmt.Errorf("failed to count sources: %v", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	for _, src := range sources {
		if _, err := tx.Exec(`INSERT INTO sources (id, name, display_url, feed_endpoint, is_active, is_video_source)
			VALUES (?, ?, ?, ?, ?, ?)`,
			src.ID, src.Name, src.DisplayURL, src.FeedEndpoint, src.IsActive, src.IsVideoSource); err != nil {
			return fmt.Errorf("failed to seed source %s: %v", src.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %v", err)
	}
	log.Printf("Seeded %d default sources", len(sources))
	return nil
}

// SavePool replaces the stored snapshot with the given pool. Article order
// is preserved via the position column.
func (s *SQLiteStorage) SavePool(pool *models.StoryPool) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM articles"); err != nil {
		return fmt.Errorf("failed to clear articles: %v", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO articles
		(id, title, link, pub_date, content_snippet, thumbnail, source_id, source_title, source_icon, categories, is_video, language, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %v", err)
	}
	defer stmt.Close()

	for i, a := range pool.Articles {
		categories, err := json.Marshal(a.Categories)
		if err != nil {
			return fmt.Errorf("failed to marshal categories for %s: %v", a.ID, err)
		}
		if _, err := stmt.Exec(a.ID, a.Title, a.Link, a.PubDate, a.ContentSnippet, a.Thumbnail,
			a.SourceID, a.SourceTitle, a.SourceIcon, string(categories), a.IsVideo, a.Language, i); err != nil {
			return fmt.Errorf("failed to insert article %s: %v", a.ID, err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO pool_meta (key, value) VALUES ('updated', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		pool.Updated.Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("failed to record pool update time: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pool: %v", err)
	}
	return nil
}

// LoadPool returns the stored snapshot, or nil when none has been saved.
func (s *SQLiteStorage) LoadPool() (*models.StoryPool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	updated, ok, err := s.poolUpdated()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	rows, err := s.db.Query(`SELECT id, title, link, pub_date, content_snippet, thumbnail, source_id, source_title, source_icon, categories, is_video, language
		FROM articles ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %v", err)
	}
	defer rows.Close()

	pool := &models.StoryPool{Articles: []models.Article{}, Updated: updated}
	for rows.Next() {
		var a models.Article
		var categories string
		if err := rows.Scan(&a.ID, &a.Title, &a.Link, &a.PubDate, &a.ContentSnippet, &a.Thumbnail,
			&a.SourceID, &a.SourceTitle, &a.SourceIcon, &categories, &a.IsVideo, &a.Language); err != nil {
			return nil, fmt.Errorf("failed to scan article: %v", err)
		}
		if err := json.Unmarshal([]byte(categories), &a.Categories); err != nil {
			a.Categories = []string{}
		}
		pool.Articles = append(pool.Articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	pool.Count = len(pool.Articles)
	return pool, nil
}

func (s *SQLiteStorage) GetPoolInfo() (*models.PoolInfo, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	updated, ok, err := s.poolUpdated()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	info := &models.PoolInfo{Updated: updated}
	if err := s.db.QueryRow("SELECT COUNT(*), COUNT(CASE WHEN thumbnail != '' THEN 1 END) FROM articles").
		Scan(&info.ArticleCount, &info.WithImage); err != nil {
		return nil, fmt.Errorf("failed to count articles: %v", err)
	}
	return info, nil
}

func (s *SQLiteStorage) poolUpdated() (time.Time, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM pool_meta WHERE key = 'updated'").Scan(&value)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read pool metadata: %v", err)
	}
	updated, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to parse pool update time: %v", err)
	}
	return updated, true, nil
}

// UpdateThumbnail fills in a resolved image for an article that has none.
// Articles that already carry an image are left untouched.
func (s *SQLiteStorage) UpdateThumbnail(articleID, thumbnail string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if thumbnail == "" {
		return nil
	}
	_, err := s.db.Exec("UPDATE articles SET thumbnail = ? WHERE id = ? AND thumbnail = ''", thumbnail, articleID)
	if err != nil {
		return fmt.Errorf("failed to update thumbnail for %s: %v", articleID, err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
