// Package cache keeps the last fetched course list and notification
// snapshot in a local SQLite database, so the dashboard and the bell badge
// render instantly on startup before the first network round-trip. The
// cache is never authoritative: every successful fetch replaces it
// wholesale.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/teamup-platform/teamup-cli/internal/model"
)

// Cache is a per-user snapshot store backed by SQLite.
type Cache struct {
	db *sqlx.DB
}

// New opens (or creates) the cache database at dbPath, enables WAL mode,
// and runs any pending schema migrations.
func New(dbPath string) (*Cache, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	c := &Cache{db: db}
	if err := c.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return c, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (c *Cache) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := c.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = c.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := c.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// SaveCourses replaces the cached course list for a user.
func (c *Cache) SaveCourses(ctx context.Context, userID string, courses []model.Course) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM courses WHERE user_id = ?", userID,
	); err != nil {
		return fmt.Errorf("clearing course snapshot: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx,
		"INSERT INTO courses (id, user_id, position, data) VALUES (?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("preparing course insert: %w", err)
	}
	defer stmt.Close()

	for i, course := range courses {
		data, err := json.Marshal(course)
		if err != nil {
			return fmt.Errorf("marshaling course %s: %w", course.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, course.ID, userID, i, string(data)); err != nil {
			return fmt.Errorf("caching course %s: %w", course.ID, err)
		}
	}

	if err := recordSnapshot(ctx, tx, userID, "courses"); err != nil {
		return err
	}

	return tx.Commit()
}

// Courses returns the cached course list for a user in fetch order.
// An empty slice means no snapshot exists.
func (c *Cache) Courses(ctx context.Context, userID string) ([]model.Course, error) {
	rows, err := c.db.QueryxContext(ctx,
		"SELECT data FROM courses WHERE user_id = ? ORDER BY position", userID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying cached courses: %w", err)
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning course row: %w", err)
		}
		var course model.Course
		if err := json.Unmarshal([]byte(data), &course); err != nil {
			return nil, fmt.Errorf("unmarshaling cached course: %w", err)
		}
		courses = append(courses, course)
	}

	return courses, rows.Err()
}

// SaveNotifications replaces the cached notification snapshot and unread
// count for a user.
func (c *Cache) SaveNotifications(
	ctx context.Context,
	userID string,
	items []model.Notification,
	unreadCount int,
) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM notifications WHERE user_id = ?", userID,
	); err != nil {
		return fmt.Errorf("clearing notification snapshot: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx,
		"INSERT INTO notifications (id, user_id, position, data) VALUES (?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("preparing notification insert: %w", err)
	}
	defer stmt.Close()

	for i, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("marshaling notification %s: %w", item.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, item.ID, userID, i, string(data)); err != nil {
			return fmt.Errorf("caching notification %s: %w", item.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO unread_counts (user_id, count) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET count = excluded.count`,
		userID, unreadCount,
	); err != nil {
		return fmt.Errorf("caching unread count: %w", err)
	}

	if err := recordSnapshot(ctx, tx, userID, "notifications"); err != nil {
		return err
	}

	return tx.Commit()
}

// Notifications returns the cached notification snapshot and unread count
// for a user in fetch order.
func (c *Cache) Notifications(ctx context.Context, userID string) ([]model.Notification, int, error) {
	rows, err := c.db.QueryxContext(ctx,
		"SELECT data FROM notifications WHERE user_id = ? ORDER BY position", userID,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("querying cached notifications: %w", err)
	}
	defer rows.Close()

	var items []model.Notification
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, 0, fmt.Errorf("scanning notification row: %w", err)
		}
		var item model.Notification
		if err := json.Unmarshal([]byte(data), &item); err != nil {
			return nil, 0, fmt.Errorf("unmarshaling cached notification: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var count int
	err = c.db.GetContext(ctx, &count,
		"SELECT count FROM unread_counts WHERE user_id = ?", userID,
	)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, 0, fmt.Errorf("querying cached unread count: %w", err)
	}

	return items, count, nil
}

// LastSync returns when a user's snapshot of the given kind was taken.
// The zero time means no snapshot exists.
func (c *Cache) LastSync(ctx context.Context, userID, kind string) (time.Time, error) {
	var fetchedAt time.Time
	err := c.db.GetContext(ctx, &fetchedAt,
		"SELECT fetched_at FROM snapshots WHERE user_id = ? AND kind = ?",
		userID, kind,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("querying snapshot time: %w", err)
	}
	return fetchedAt, nil
}

// Purge drops every snapshot belonging to a user, used on logout.
func (c *Cache) Purge(ctx context.Context, userID string) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"courses", "notifications", "unread_counts", "snapshots"} {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM "+table+" WHERE user_id = ?", userID,
		); err != nil {
			return fmt.Errorf("purging %s: %w", table, err)
		}
	}

	return tx.Commit()
}

// recordSnapshot stamps a snapshot row with a fresh id and fetch time.
func recordSnapshot(ctx context.Context, tx *sqlx.Tx, userID, kind string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, user_id, kind, fetched_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, kind) DO UPDATE
			SET id = excluded.id, fetched_at = excluded.fetched_at`,
		uuid.New().String(), userID, kind, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording %s snapshot: %w", kind, err)
	}
	return nil
}
