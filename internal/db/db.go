package db

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

var errNotInitialized = errors.New("database not initialized")

// Record is one saved download in the history table.
type Record struct {
	ID        int64
	Title     string
	VideoID   string
	SourceURL string
	Format    string
	Quality   int
	Mode      string
	MediaType string
	FilePath  string
	FileSize  int64
	Renamed   bool
	Tagged    bool
	TagError  string
	CreatedAt time.Time
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS downloads (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    title       TEXT NOT NULL DEFAULT '',
    video_id    TEXT NOT NULL DEFAULT '',
    source_url  TEXT NOT NULL DEFAULT '',
    format      TEXT NOT NULL DEFAULT '',
    quality     INTEGER NOT NULL DEFAULT 0,
    mode        TEXT NOT NULL DEFAULT '',
    media_type  TEXT NOT NULL DEFAULT 'video',
    file_path   TEXT NOT NULL UNIQUE,
    file_size   INTEGER NOT NULL DEFAULT 0,
    renamed     INTEGER NOT NULL DEFAULT 0,
    tagged      INTEGER NOT NULL DEFAULT 0,
    tag_error   TEXT NOT NULL DEFAULT '',
    created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_downloads_video_id ON downloads(video_id);
CREATE INDEX IF NOT EXISTS idx_downloads_created_at ON downloads(created_at);
`

// DB wraps an SQLite connection for the download history.
type DB struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens or creates the SQLite database at the given path.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", pragma, err)
		}
	}

	if _, err := sqlDB.Exec(createTableSQL); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: sqlDB}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Save inserts a record, replacing any earlier row for the same file path.
func (d *DB) Save(record Record) (int64, error) {
	if d == nil || d.db == nil {
		return 0, errNotInitialized
	}
	if record.MediaType == "" {
		record.MediaType = ClassifyMediaType(record.Format)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	_, err := d.db.Exec(`
		INSERT INTO downloads (
			title, video_id, source_url, format, quality, mode,
			media_type, file_path, file_size, renamed, tagged, tag_error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_path) DO UPDATE SET
			title=excluded.title, video_id=excluded.video_id,
			source_url=excluded.source_url, format=excluded.format,
			quality=excluded.quality, mode=excluded.mode,
			media_type=excluded.media_type, file_size=excluded.file_size,
			renamed=excluded.renamed, tagged=excluded.tagged,
			tag_error=excluded.tag_error, created_at=datetime('now')
	`,
		record.Title, record.VideoID, record.SourceURL, record.Format, record.Quality, record.Mode,
		record.MediaType, record.FilePath, record.FileSize, boolInt(record.Renamed), boolInt(record.Tagged), record.TagError,
	)
	if err != nil {
		return 0, fmt.Errorf("saving download record: %w", err)
	}

	// LastInsertId is unreliable for ON CONFLICT DO UPDATE; query the actual row ID.
	var id int64
	if err := d.db.QueryRow("SELECT id FROM downloads WHERE file_path = ?", record.FilePath).Scan(&id); err != nil {
		return 0, fmt.Errorf("querying saved download id: %w", err)
	}
	return id, nil
}

const selectColumns = `
	SELECT id, title, video_id, source_url, format, quality, mode,
		media_type, file_path, file_size, renamed, tagged, tag_error, created_at
	FROM downloads`

// List returns history rows, newest first.
func (d *DB) List(limit, offset int) ([]Record, error) {
	if d == nil || d.db == nil {
		return nil, errNotInitialized
	}
	if limit <= 0 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := d.db.Query(selectColumns+`
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying downloads: %w", err)
	}
	return scanRecords(rows)
}

// ByVideo returns every saved file for one video id, newest first.
func (d *DB) ByVideo(videoID string) ([]Record, error) {
	if d == nil || d.db == nil {
		return nil, errNotInitialized
	}
	rows, err := d.db.Query(selectColumns+`
		WHERE video_id = ?
		ORDER BY created_at DESC, id DESC`, videoID)
	if err != nil {
		return nil, fmt.Errorf("querying downloads for %s: %w", videoID, err)
	}
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	defer rows.Close()
	var records []Record
	for rows.Next() {
		var r Record
		var renamed, tagged int
		if err := rows.Scan(
			&r.ID, &r.Title, &r.VideoID, &r.SourceURL, &r.Format, &r.Quality, &r.Mode,
			&r.MediaType, &r.FilePath, &r.FileSize, &renamed, &tagged, &r.TagError, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning download row: %w", err)
		}
		r.Renamed = renamed != 0
		r.Tagged = tagged != 0
		records = append(records, r)
	}
	return records, rows.Err()
}

// Count returns the total number of history rows.
func (d *DB) Count() (int, error) {
	if d == nil || d.db == nil {
		return 0, errNotInitialized
	}
	var count int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM downloads").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting downloads: %w", err)
	}
	return count, nil
}
