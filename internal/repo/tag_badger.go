package repo

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/pkordes/tagstore/internal/domain"
)

// Key layout:
//
//	c/<name>                      -> container id
//	r/<container>/<id>            -> JSON record
//	o/<container>/<nanos><id>     -> id (creation order index)
const (
	containerPrefix = "c/"
	recordPrefix    = "r/"
	orderPrefix     = "o/"
)

// badgerRecord is the stored JSON form of a domain.TagRecord.
type badgerRecord struct {
	ID         string     `json:"id"`
	Texts      []string   `json:"texts"`
	Touched    string     `json:"touched,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	CreatedBy  string     `json:"createdBy"`
	ModifiedAt time.Time  `json:"modifiedAt"`
	ModifiedBy string     `json:"modifiedBy"`
	ValidTo    *time.Time `json:"validTo,omitempty"`
}

// badgerTagRepo is the BadgerDB implementation of TagRepo.
type badgerTagRepo struct {
	db *BadgerDB
}

// NewBadgerTagRepo constructs a TagRepo backed by an embedded BadgerDB.
func NewBadgerTagRepo(db *BadgerDB) TagRepo {
	return &badgerTagRepo{db: db}
}

// EnsureContainer reads the container key and writes it on a miss. Badger's
// optimistic concurrency rejects the losing commit with ErrConflict; the loser
// then reads back the id the winner wrote.
func (r *badgerTagRepo) EnsureContainer(ctx context.Context, name string) (string, error) {
	key := []byte(containerPrefix + name)

	var id string
	err := r.db.update(ctx, func(txn *badger.Txn) error {
		v, err := getValue(txn, key)
		if err == nil {
			id = string(v)
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		id = uuid.NewString()
		return txn.Set(key, []byte(id))
	})
	if errors.Is(err, badger.ErrConflict) {
		err = r.db.view(ctx, func(txn *badger.Txn) error {
			v, err := getValue(txn, key)
			id = string(v)
			return err
		})
	}
	if err != nil {
		return "", fmt.Errorf("repo.BadgerTagRepo.EnsureContainer: %w", err)
	}
	return id, nil
}

// Get retrieves a record by id within the container.
func (r *badgerTagRepo) Get(ctx context.Context, containerID, id string) (domain.TagRecord, error) {
	var rec domain.TagRecord
	err := r.db.view(ctx, func(txn *badger.Txn) error {
		var err error
		rec, err = loadRecord(txn, containerID, id)
		return err
	})
	if err != nil {
		return domain.TagRecord{}, fmt.Errorf("repo.BadgerTagRepo.Get: %w", err)
	}
	return rec, nil
}

// Insert stores the record and its order index entry in one transaction.
func (r *badgerTagRepo) Insert(ctx context.Context, containerID string, rec domain.TagRecord) (domain.TagRecord, error) {
	err := r.db.update(ctx, func(txn *badger.Txn) error {
		_, err := txn.Get(recordKey(containerID, rec.ID))
		if err == nil {
			return domain.ErrDuplicate
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := storeRecord(txn, containerID, rec); err != nil {
			return err
		}
		return txn.Set(orderKey(containerID, rec.CreatedAt, rec.ID), []byte(rec.ID))
	})
	if err != nil {
		return domain.TagRecord{}, fmt.Errorf("repo.BadgerTagRepo.Insert: %w", err)
	}
	return rec, nil
}

// Mutate applies fn to the stored record inside a read-write transaction.
// A concurrent commit to the same record makes this one fail with
// badger.ErrConflict; it is not retried.
func (r *badgerTagRepo) Mutate(ctx context.Context, containerID, id string, fn func(*domain.TagRecord) error) (domain.TagRecord, error) {
	var out domain.TagRecord
	err := r.db.update(ctx, func(txn *badger.Txn) error {
		rec, err := loadRecord(txn, containerID, id)
		if err != nil {
			return err
		}
		created := rec.CreatedAt
		if err := fn(&rec); err != nil {
			return err
		}
		// Identity and creation time drive the keys; keep them fixed.
		rec.ID, rec.CreatedAt = id, created
		out = rec
		return storeRecord(txn, containerID, rec)
	})
	if err != nil {
		return domain.TagRecord{}, fmt.Errorf("repo.BadgerTagRepo.Mutate: %w", err)
	}
	return out, nil
}

// Each walks the order index and visits visible records.
func (r *badgerTagRepo) Each(ctx context.Context, containerID string, at time.Time, offset int, fn func(domain.TagRecord) (bool, error)) error {
	err := r.db.view(ctx, func(txn *badger.Txn) error {
		prefix := []byte(orderPrefix + containerID + "/")
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		skipped := 0
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			id, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			rec, err := loadRecord(txn, containerID, string(id))
			if err != nil {
				return err
			}
			if !rec.VisibleAt(at) {
				continue
			}
			if skipped < offset {
				skipped++
				continue
			}
			more, err := fn(rec)
			if err != nil || !more {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("repo.BadgerTagRepo.Each: %w", err)
	}
	return nil
}

func recordKey(containerID, id string) []byte {
	return []byte(recordPrefix + containerID + "/" + id)
}

// orderKey sorts by creation time; the big-endian nanosecond prefix keeps
// lexicographic key order equal to chronological order.
func orderKey(containerID string, createdAt time.Time, id string) []byte {
	key := []byte(orderPrefix + containerID + "/")
	key = binary.BigEndian.AppendUint64(key, uint64(createdAt.UnixNano()))
	return append(key, id...)
}

func getValue(txn *badger.Txn, key []byte) ([]byte, error) {
	item, err := txn.Get(key)
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func loadRecord(txn *badger.Txn, containerID, id string) (domain.TagRecord, error) {
	v, err := getValue(txn, recordKey(containerID, id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.TagRecord{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.TagRecord{}, err
	}
	var br badgerRecord
	if err := json.Unmarshal(v, &br); err != nil {
		return domain.TagRecord{}, fmt.Errorf("decode record %s: %w", id, err)
	}
	return domain.TagRecord{
		ID: br.ID,
		Provenance: domain.Provenance{
			CreatedAt:  br.CreatedAt,
			CreatedBy:  br.CreatedBy,
			ModifiedAt: br.ModifiedAt,
			ModifiedBy: br.ModifiedBy,
		},
		ValidTo: br.ValidTo,
		Touched: br.Touched,
		Texts:   domain.Slots(br.Texts),
	}, nil
}

func storeRecord(txn *badger.Txn, containerID string, rec domain.TagRecord) error {
	v, err := json.Marshal(badgerRecord{
		ID:         rec.ID,
		Texts:      rec.Texts,
		Touched:    rec.Touched,
		CreatedAt:  rec.CreatedAt,
		CreatedBy:  rec.CreatedBy,
		ModifiedAt: rec.ModifiedAt,
		ModifiedBy: rec.ModifiedBy,
		ValidTo:    rec.ValidTo,
	})
	if err != nil {
		return fmt.Errorf("encode record %s: %w", rec.ID, err)
	}
	return txn.Set(recordKey(containerID, rec.ID), v)
}
