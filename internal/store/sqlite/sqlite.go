package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/MrSnakeDoc/icebreaker/internal/domain"
	"github.com/MrSnakeDoc/icebreaker/internal/logger"
	"github.com/MrSnakeDoc/icebreaker/internal/store"
	"github.com/MrSnakeDoc/icebreaker/internal/utils"
)

// errVersionConflict means another writer committed between read and write.
var errVersionConflict = errors.New("document version changed")

// Store keeps one row per user with the document body as JSON.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open creates the data directory, opens the database and runs migrations.
// Write transactions start with BEGIN IMMEDIATE so the read-check-write of a mutation
// holds the database write lock from its first statement.
func Open(ctx context.Context, path string, log logger.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		utils.Close(db)
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	if err := migrate(db, log); err != nil {
		utils.Close(db)
		return nil, err
	}

	log.Info("sqlite store ready", logger.String("path", path))
	return &Store{db: db, path: path, now: time.Now}, nil
}

func (s *Store) Backend() string { return "sqlite" }

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return store.Unavailable("ping sqlite", err)
	}
	return nil
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_content`).Scan(&n); err != nil {
		return 0, store.Unavailable("count users", err)
	}
	return n, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// GetByUser retrieves a user's document
func (s *Store) GetByUser(ctx context.Context, userID string) (*domain.UserContent, error) {
	doc, err := readContent(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: no content for user %q", domain.ErrNotFound, userID)
	}
	return doc, nil
}

// Upsert replaces the whole document, keeping its id and advancing its version
func (s *Store) Upsert(ctx context.Context, doc *domain.UserContent) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	var next *domain.UserContent
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		prev, err := readContent(ctx, tx, doc.UserID)
		if err != nil {
			return err
		}
		next = doc.Clone()
		next.Supersede(prev, s.now())
		return writeContent(ctx, tx, prev, next)
	})
	if err != nil {
		return err
	}
	*doc = *next
	return nil
}

// Apply runs the mutation inside one immediate transaction
func (s *Store) Apply(ctx context.Context, userID string, m domain.ListMutation) (domain.MutationResult, error) {
	if err := m.Validate(); err != nil {
		return domain.MutationResult{}, err
	}

	var res domain.MutationResult
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		prev, err := readContent(ctx, tx, userID)
		if err != nil {
			return err
		}
		res, err = domain.ApplyMutation(prev, userID, m, s.now())
		if err != nil {
			return err
		}
		if !res.NeedsWrite() {
			return nil
		}
		return writeContent(ctx, tx, prev, res.Content)
	})
	if err != nil {
		return domain.MutationResult{}, err
	}
	return res, nil
}

// withTx commits when fn succeeds and rolls back otherwise.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.Unavailable("begin transaction", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		if store.IsDomainError(err) || errors.Is(err, domain.ErrStoreUnavailable) {
			return err
		}
		return store.Unavailable("update content", err)
	}

	if err := tx.Commit(); err != nil {
		return store.Unavailable("commit transaction", err)
	}
	return nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func readContent(ctx context.Context, q queryRower, userID string) (*domain.UserContent, error) {
	var (
		documentID string
		version    int64
		body       string
		createdAt  string
		updatedAt  string
	)
	err := q.QueryRowContext(ctx,
		`SELECT document_id, version, body, created_at, updated_at FROM user_content WHERE user_id = ?`,
		userID,
	).Scan(&documentID, &version, &body, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, store.Unavailable("get content", err)
	}

	var doc domain.UserContent
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, store.Unavailable("unmarshal content", err)
	}
	doc.UserID = userID
	doc.DocumentID = documentID
	doc.Version = version
	if doc.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, store.Unavailable("parse created_at", err)
	}
	if doc.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, store.Unavailable("parse updated_at", err)
	}
	doc.Normalize()
	return &doc, nil
}

// writeContent inserts a new row or updates the existing one guarded by prev's version.
func writeContent(ctx context.Context, tx *sql.Tx, prev, next *domain.UserContent) error {
	body, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to marshal content: %w", err)
	}
	created := next.CreatedAt.UTC().Format(time.RFC3339Nano)
	updated := next.UpdatedAt.UTC().Format(time.RFC3339Nano)

	if prev == nil {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO user_content (user_id, document_id, version, body, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			next.UserID, next.DocumentID, next.Version, string(body), created, updated,
		)
		if err != nil {
			return fmt.Errorf("failed to insert content: %w", err)
		}
		return nil
	}

	r, err := tx.ExecContext(ctx,
		`UPDATE user_content SET version = ?, body = ?, updated_at = ?
		 WHERE user_id = ? AND version = ?`,
		next.Version, string(body), updated, next.UserID, prev.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update content: %w", err)
	}
	n, err := r.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n != 1 {
		return errVersionConflict
	}
	return nil
}
