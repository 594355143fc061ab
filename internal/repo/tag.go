package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/tagstore/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, *pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test; Begin on a
// pgx.Tx opens a savepoint, so the repo's own transactions nest cleanly.
type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// pgUniqueViolation is the SQLSTATE Postgres reports for a duplicate key.
const pgUniqueViolation = "23505"

const tagColumns = `id, texts, touched, created_at, created_by, modified_at, modified_by, valid_to`

// pgTagRepo is the Postgres implementation of TagRepo.
type pgTagRepo struct {
	db  db
	log *slog.Logger
}

// NewTagRepo constructs a TagRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTagRepo(db db, log *slog.Logger) TagRepo {
	if log == nil {
		log = slog.Default()
	}
	return &pgTagRepo{db: db, log: log}
}

// EnsureContainer looks the container up by name and creates it on a miss.
// The DO UPDATE SET trick forces RETURNING to fire on conflict, so a caller
// that loses the insert race gets the row the winner committed.
func (r *pgTagRepo) EnsureContainer(ctx context.Context, name string) (string, error) {
	const find = `SELECT id FROM tag_containers WHERE name = @name`

	var id string
	err := r.db.QueryRow(ctx, find, pgx.NamedArgs{"name": name}).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("repo.TagRepo.EnsureContainer: find: %w", err)
	}

	const upsert = `
		INSERT INTO tag_containers (id, name)
		VALUES (@id, @name)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`

	err = r.inTx(ctx, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, upsert, pgx.NamedArgs{"id": uuid.NewString(), "name": name}).Scan(&id)
	})
	if err != nil {
		return "", fmt.Errorf("repo.TagRepo.EnsureContainer: %w", err)
	}
	return id, nil
}

// Get retrieves a record by id within the container.
func (r *pgTagRepo) Get(ctx context.Context, containerID, id string) (domain.TagRecord, error) {
	const q = `
		SELECT ` + tagColumns + `
		FROM tag_entries
		WHERE container_id = @container_id AND id = @id`

	rec, err := scanTagRecord(r.db.QueryRow(ctx, q, pgx.NamedArgs{"container_id": containerID, "id": id}))
	if err != nil {
		return domain.TagRecord{}, fmt.Errorf("repo.TagRepo.Get: %w", err)
	}
	return rec, nil
}

// Insert writes a new record row and returns it as persisted.
func (r *pgTagRepo) Insert(ctx context.Context, containerID string, rec domain.TagRecord) (domain.TagRecord, error) {
	const q = `
		INSERT INTO tag_entries (id, container_id, texts, touched, created_at, created_by, modified_at, modified_by, valid_to)
		VALUES (@id, @container_id, @texts, @touched, @created_at, @created_by, @modified_at, @modified_by, @valid_to)
		RETURNING ` + tagColumns

	args := recordArgs(containerID, rec)

	var out domain.TagRecord
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		out, err = scanTagRecord(tx.QueryRow(ctx, q, args))
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.TagRecord{}, fmt.Errorf("repo.TagRepo.Insert: %w", domain.ErrDuplicate)
		}
		return domain.TagRecord{}, fmt.Errorf("repo.TagRepo.Insert: %w", err)
	}
	return out, nil
}

// Mutate locks the row with SELECT ... FOR UPDATE, applies fn, and writes the
// mutable columns back before committing.
func (r *pgTagRepo) Mutate(ctx context.Context, containerID, id string, fn func(*domain.TagRecord) error) (domain.TagRecord, error) {
	const lock = `
		SELECT ` + tagColumns + `
		FROM tag_entries
		WHERE container_id = @container_id AND id = @id
		FOR UPDATE`

	const update = `
		UPDATE tag_entries
		SET texts       = @texts,
		    touched     = @touched,
		    modified_at = @modified_at,
		    modified_by = @modified_by,
		    valid_to    = @valid_to
		WHERE container_id = @container_id AND id = @id
		RETURNING ` + tagColumns

	var out domain.TagRecord
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		rec, err := scanTagRecord(tx.QueryRow(ctx, lock, pgx.NamedArgs{"container_id": containerID, "id": id}))
		if err != nil {
			return err
		}
		if err := fn(&rec); err != nil {
			return err
		}
		rec.ID = id
		out, err = scanTagRecord(tx.QueryRow(ctx, update, recordArgs(containerID, rec)))
		return err
	})
	if err != nil {
		return domain.TagRecord{}, fmt.Errorf("repo.TagRepo.Mutate: %w", err)
	}
	return out, nil
}

// Each streams visible records ordered by creation time. seq breaks ties
// between records created within the same microsecond.
func (r *pgTagRepo) Each(ctx context.Context, containerID string, at time.Time, offset int, fn func(domain.TagRecord) (bool, error)) error {
	const q = `
		SELECT ` + tagColumns + `
		FROM tag_entries
		WHERE container_id = @container_id
		  AND (valid_to IS NULL OR valid_to >= @at)
		ORDER BY created_at, seq
		OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"container_id": containerID, "at": at, "offset": offset})
	if err != nil {
		return fmt.Errorf("repo.TagRepo.Each: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanTagRecord(rows)
		if err != nil {
			return fmt.Errorf("repo.TagRepo.Each: scan: %w", err)
		}
		more, err := fn(rec)
		if err != nil {
			return fmt.Errorf("repo.TagRepo.Each: %w", err)
		}
		if !more {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("repo.TagRepo.Each: rows: %w", err)
	}
	return nil
}

// inTx runs fn inside a transaction: begin, fn, commit.
// On any failure the transaction is rolled back on a best-effort basis; a
// failed rollback is logged and never replaces the original error.
func (r *pgTagRepo) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		r.rollback(ctx, tx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		r.rollback(ctx, tx)
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *pgTagRepo) rollback(ctx context.Context, tx pgx.Tx) {
	// The caller's context may already be cancelled; the rollback still has to go out.
	if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		r.log.WarnContext(ctx, "rollback failed", "error", err)
	}
}

// recordArgs builds the named arguments shared by Insert and Mutate.
func recordArgs(containerID string, rec domain.TagRecord) pgx.NamedArgs {
	texts := []string(rec.Texts)
	if texts == nil {
		texts = []string{} // texts is NOT NULL
	}
	return pgx.NamedArgs{
		"id":           rec.ID,
		"container_id": containerID,
		"texts":        texts,
		"touched":      rec.Touched,
		"created_at":   rec.CreatedAt,
		"created_by":   rec.CreatedBy,
		"modified_at":  rec.ModifiedAt,
		"modified_by":  rec.ModifiedBy,
		"valid_to":     rec.ValidTo, // nil becomes NULL
	}
}

// scanTagRecord maps a single database row into a domain.TagRecord.
func scanTagRecord(s scanner) (domain.TagRecord, error) {
	var (
		rec     domain.TagRecord
		texts   []string
		validTo pgtype.Timestamptz
	)
	err := s.Scan(&rec.ID, &texts, &rec.Touched,
		&rec.CreatedAt, &rec.CreatedBy, &rec.ModifiedAt, &rec.ModifiedBy, &validTo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TagRecord{}, domain.ErrNotFound
		}
		return domain.TagRecord{}, err
	}
	rec.Texts = domain.Slots(texts)
	if validTo.Valid {
		vt := validTo.Time
		rec.ValidTo = &vt
	}
	return rec, nil
}
