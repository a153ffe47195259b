package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously

	"vibecheck/internal/models"
)

// SQLiteRoomRepository implements RoomRepository on a local SQLite file
type SQLiteRoomRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRoomRepository opens storagePath and runs the schema migration
func NewSQLiteRoomRepository(storagePath string) (*SQLiteRoomRepository, error) {
	db, err := sql.Open("sqlite3", storagePath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	// SQLite serializes writers anyway; one connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	repo := &SQLiteRoomRepository{db: db, now: time.Now}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return repo, nil
}

// Close closes the DB connection
func (r *SQLiteRoomRepository) Close() error {
	return r.db.Close()
}

// CreateRoom inserts the room unless it already exists
func (r *SQLiteRoomRepository) CreateRoom(ctx context.Context, roomID, roomName string) (*models.Room, error) {
	if err := validateRoomID(roomID); err != nil {
		return nil, err
	}

	if err := r.ensureRoom(ctx, r.db, roomID, roomName); err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx, "SELECT room_id, room_name, created_at FROM rooms WHERE room_id = ?", roomID)
	var room models.Room
	var createdAt int64
	if err := row.Scan(&room.RoomID, &room.RoomName, &createdAt); err != nil {
		return nil, fmt.Errorf("failed to load room: %w", err)
	}
	room.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &room, nil
}

// GetRoom loads the room and its entries newest first
func (r *SQLiteRoomRepository) GetRoom(ctx context.Context, roomID string) (*models.RoomData, error) {
	if err := validateRoomID(roomID); err != nil {
		return nil, err
	}

	data := &models.RoomData{
		RoomID:  roomID,
		Entries: []models.SongEntry{},
	}

	row := r.db.QueryRowContext(ctx, "SELECT room_name FROM rooms WHERE room_id = ?", roomID)
	if err := row.Scan(&data.RoomName); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to load room: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT current_title, current_artist, current_url,
			favorite_title, favorite_artist, favorite_url,
			underrated_title, underrated_artist, underrated_url,
			timestamp
		FROM entries
		WHERE room_id = ?
		ORDER BY timestamp DESC, id DESC
	`, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load room entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry models.SongEntry
		if err := rows.Scan(
			&entry.Current.Title, &entry.Current.Artist, &entry.Current.ExternalURL,
			&entry.Favorite.Title, &entry.Favorite.Artist, &entry.Favorite.ExternalURL,
			&entry.Underrated.Title, &entry.Underrated.Artist, &entry.Underrated.ExternalURL,
			&entry.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan room entry: %w", err)
		}
		data.Entries = append(data.Entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate room entries: %w", err)
	}

	return data, nil
}

// AppendEntry creates the room if needed and inserts the entry in one transaction
func (r *SQLiteRoomRepository) AppendEntry(ctx context.Context, roomID string, entry models.SongEntry) error {
	if err := validateRoomID(roomID); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := r.ensureRoom(ctx, tx, roomID, ""); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO entries (
			room_id,
			current_title, current_artist, current_url,
			favorite_title, favorite_artist, favorite_url,
			underrated_title, underrated_artist, underrated_url,
			timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		roomID,
		entry.Current.Title, entry.Current.Artist, entry.Current.ExternalURL,
		entry.Favorite.Title, entry.Favorite.Artist, entry.Favorite.ExternalURL,
		entry.Underrated.Title, entry.Underrated.Artist, entry.Underrated.ExternalURL,
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit entry: %w", err)
	}
	return nil
}

// Health pings the database
func (r *SQLiteRoomRepository) Health(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *SQLiteRoomRepository) ensureRoom(ctx context.Context, db execer, roomID, roomName string) error {
	_, err := db.ExecContext(ctx,
		"INSERT OR IGNORE INTO rooms (room_id, room_name, created_at) VALUES (?, ?, ?)",
		roomID, roomName, r.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

func (r *SQLiteRoomRepository) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS rooms (
		room_id TEXT PRIMARY KEY,
		room_name TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		room_id TEXT NOT NULL,
		current_title TEXT NOT NULL,
		current_artist TEXT NOT NULL,
		current_url TEXT NOT NULL DEFAULT '',
		favorite_title TEXT NOT NULL,
		favorite_artist TEXT NOT NULL,
		favorite_url TEXT NOT NULL DEFAULT '',
		underrated_title TEXT NOT NULL,
		underrated_artist TEXT NOT NULL,
		underrated_url TEXT NOT NULL DEFAULT '',
		timestamp INTEGER NOT NULL,
		FOREIGN KEY(room_id) REFERENCES rooms(room_id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_entries_room_timestamp ON entries (room_id, timestamp DESC);
	`
	_, err := r.db.Exec(query)
	return err
}
