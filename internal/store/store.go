// Package store owns the lifecycle rules of tag records: visibility, soft
// delete, duplicate and not-found checks, and the per-language text slots.
// Persistence is reached only through repo.TagRepo, one transaction per
// mutating call.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/tagstore/internal/domain"
	"github.com/pkordes/tagstore/internal/mapper"
	"github.com/pkordes/tagstore/internal/repo"
)

// DefaultContainer is the name of the collection holding all tags.
const DefaultContainer = "Tags"

// TagStore implements the tag and localized-text operations on top of a
// TagRepo. It holds no locks; mutual exclusion is left to the repo.
type TagStore struct {
	repo          repo.TagRepo
	containerName string
	defaultActor  string
	now           func() time.Time
	newID         func() string
	log           *slog.Logger
}

// Option configures a TagStore.
type Option func(*TagStore)

// WithContainer sets the name of the collection the store works in.
func WithContainer(name string) Option {
	return func(s *TagStore) { s.containerName = name }
}

// WithDefaultActor sets the principal recorded when ctx carries none.
func WithDefaultActor(name string) Option {
	return func(s *TagStore) { s.defaultActor = name }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *TagStore) { s.now = now }
}

// WithIDGenerator replaces the UUIDv7 id generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *TagStore) { s.newID = newID }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(s *TagStore) { s.log = log }
}

// New constructs a TagStore backed by r.
func New(r repo.TagRepo, opts ...Option) *TagStore {
	s := &TagStore{
		repo:          r,
		containerName: DefaultContainer,
		defaultActor:  "system",
		now:           time.Now,
		newID:         newUUIDv7,
		log:           slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newUUIDv7 returns a time-ordered id; it falls back to a random one if the
// v7 generator fails.
func newUUIDv7() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// container locates the tag collection, creating it on first use.
func (s *TagStore) container(ctx context.Context) (string, error) {
	cid, err := s.repo.EnsureContainer(ctx, s.containerName)
	if err != nil {
		return "", s.fail(ctx, "store.TagStore.container", err)
	}
	return cid, nil
}

// List returns listing rows for active records in creation order. offset
// counts records, limit counts rows. A record's rows are never split, so the
// last record of a page may push the row count past limit.
func (s *TagStore) List(ctx context.Context, lang *domain.LanguageCode, offset, limit int) ([]domain.TagText, error) {
	rows := []domain.TagText{}
	if limit <= 0 {
		return rows, nil
	}
	cid, err := s.container(ctx)
	if err != nil {
		return nil, err
	}
	err = s.repo.Each(ctx, cid, s.now(), offset, func(rec domain.TagRecord) (bool, error) {
		rows = append(rows, mapper.TagTexts(rec, lang)...)
		return len(rows) < limit, nil
	})
	if err != nil {
		return nil, s.fail(ctx, "store.TagStore.List", err)
	}
	return rows, nil
}

// Create inserts an empty record with a store-generated id and returns it as
// read back after commit. A non-empty clientID is always rejected:
// ErrDuplicate if a record with that id exists, ErrValidation otherwise.
func (s *TagStore) Create(ctx context.Context, clientID string) (domain.TagRecord, error) {
	cid, err := s.container(ctx)
	if err != nil {
		return domain.TagRecord{}, err
	}

	if clientID != "" {
		_, err := s.repo.Get(ctx, cid, clientID)
		switch {
		case err == nil:
			return domain.TagRecord{}, fmt.Errorf("store.TagStore.Create: tag %q: %w", clientID, domain.ErrDuplicate)
		case errors.Is(err, domain.ErrNotFound):
			return domain.TagRecord{}, fmt.Errorf("store.TagStore.Create: client-generated id %q: %w", clientID, domain.ErrValidation)
		default:
			return domain.TagRecord{}, s.fail(ctx, "store.TagStore.Create", err)
		}
	}

	now := s.now()
	actor := domain.ActorFrom(ctx, s.defaultActor)
	rec := domain.TagRecord{
		ID: s.newID(),
		Provenance: domain.Provenance{
			CreatedAt:  now,
			CreatedBy:  actor,
			ModifiedAt: now,
			ModifiedBy: actor,
		},
		Texts: domain.Slots{},
	}
	if _, err := s.repo.Insert(ctx, cid, rec); err != nil {
		return domain.TagRecord{}, s.fail(ctx, "store.TagStore.Create", err)
	}
	return s.Read(ctx, rec.ID)
}

// Read returns the record if it exists and is not soft-deleted.
func (s *TagStore) Read(ctx context.Context, id string) (domain.TagRecord, error) {
	cid, err := s.container(ctx)
	if err != nil {
		return domain.TagRecord{}, err
	}
	rec, err := s.visible(ctx, cid, id)
	if err != nil {
		return domain.TagRecord{}, fmt.Errorf("store.TagStore.Read: %w", err)
	}
	return rec, nil
}

// Update stamps the record as touched by the acting principal and returns it.
// Only existence is checked before the write: a soft-deleted record is
// stamped and then reported as ErrNotFound by the read-back.
func (s *TagStore) Update(ctx context.Context, id string) (domain.TagRecord, error) {
	cid, err := s.container(ctx)
	if err != nil {
		return domain.TagRecord{}, err
	}
	now := s.now()
	actor := domain.ActorFrom(ctx, s.defaultActor)
	_, err = s.repo.Mutate(ctx, cid, id, func(rec *domain.TagRecord) error {
		rec.Touched = now.UTC().Format(time.RFC3339Nano)
		rec.ModifiedAt = now
		rec.ModifiedBy = actor
		return nil
	})
	if err != nil {
		return domain.TagRecord{}, s.fail(ctx, "store.TagStore.Update", err)
	}
	return s.Read(ctx, id)
}

// Delete soft-deletes the record by setting ValidTo to now.
// Deleting an already deleted record returns ErrNotFound.
func (s *TagStore) Delete(ctx context.Context, id string) error {
	cid, err := s.container(ctx)
	if err != nil {
		return err
	}
	if _, err := s.visible(ctx, cid, id); err != nil {
		return fmt.Errorf("store.TagStore.Delete: %w", err)
	}
	now := s.now()
	actor := domain.ActorFrom(ctx, s.defaultActor)
	_, err = s.repo.Mutate(ctx, cid, id, func(rec *domain.TagRecord) error {
		if !rec.VisibleAt(now) {
			return fmt.Errorf("tag %q: %w", id, domain.ErrNotFound)
		}
		rec.ValidTo = &now
		rec.ModifiedAt = now
		rec.ModifiedBy = actor
		return nil
	})
	if err != nil {
		return s.fail(ctx, "store.TagStore.Delete", err)
	}
	return nil
}

// ListTexts returns every populated text of the record in language order.
func (s *TagStore) ListTexts(ctx context.Context, id string) ([]domain.LocalizedText, error) {
	rec, err := s.Read(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("store.TagStore.ListTexts: %w", err)
	}
	return mapper.LocalizedTexts(rec, nil), nil
}

// CreateText writes in.Text into the empty slot of in.LanguageCode.
//
// Checks run in this order: the record is visible, the text is a single
// non-empty word, a language is given, no client text id is given, and the
// slot is empty.
func (s *TagStore) CreateText(ctx context.Context, id string, in domain.LocalizedText) (domain.LocalizedText, error) {
	const op = "store.TagStore.CreateText"

	rec, err := s.Read(ctx, id)
	if err != nil {
		return domain.LocalizedText{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := validateText(in.Text); err != nil {
		return domain.LocalizedText{}, fmt.Errorf("%s: %w", op, err)
	}
	if in.LanguageCode == "" {
		return domain.LocalizedText{}, fmt.Errorf("%s: language code is required: %w", op, domain.ErrValidation)
	}
	lang, err := domain.ParseLanguage(string(in.LanguageCode))
	if err != nil {
		return domain.LocalizedText{}, fmt.Errorf("%s: %w", op, err)
	}
	if in.ID != "" {
		if existing, err := domain.ParseLanguage(in.ID); err == nil {
			if _, ok := mapper.LocalizedText(rec, existing); ok {
				return domain.LocalizedText{}, fmt.Errorf("%s: text %q: %w", op, in.ID, domain.ErrDuplicate)
			}
		}
		return domain.LocalizedText{}, fmt.Errorf("%s: client-generated text id %q: %w", op, in.ID, domain.ErrValidation)
	}
	if _, ok := rec.Texts.Get(lang); ok {
		return domain.LocalizedText{}, fmt.Errorf("%s: tag %q already has %s text: %w", op, id, lang, domain.ErrDuplicate)
	}

	err = s.mutateVisible(ctx, id, func(rec *domain.TagRecord) error {
		if _, ok := rec.Texts.Get(lang); ok {
			return fmt.Errorf("tag %q already has %s text: %w", id, lang, domain.ErrDuplicate)
		}
		rec.Texts.Set(lang, in.Text)
		return nil
	})
	if err != nil {
		return domain.LocalizedText{}, s.fail(ctx, op, err)
	}
	return s.ReadText(ctx, id, string(lang))
}

// ReadText returns the record's text in the language named by textID.
// An unknown language or an empty slot is ErrNotFound.
func (s *TagStore) ReadText(ctx context.Context, id, textID string) (domain.LocalizedText, error) {
	const op = "store.TagStore.ReadText"

	rec, err := s.Read(ctx, id)
	if err != nil {
		return domain.LocalizedText{}, fmt.Errorf("%s: %w", op, err)
	}
	lang, err := textLanguage(textID)
	if err != nil {
		return domain.LocalizedText{}, fmt.Errorf("%s: %w", op, err)
	}
	lt, ok := mapper.LocalizedText(rec, lang)
	if !ok {
		return domain.LocalizedText{}, fmt.Errorf("%s: tag %q has no %s text: %w", op, id, lang, domain.ErrNotFound)
	}
	return lt, nil
}

// UpdateText overwrites an existing text. The language may not change.
func (s *TagStore) UpdateText(ctx context.Context, id, textID string, in domain.LocalizedText) (domain.LocalizedText, error) {
	const op = "store.TagStore.UpdateText"

	rec, err := s.Read(ctx, id)
	if err != nil {
		return domain.LocalizedText{}, fmt.Errorf("%s: %w", op, err)
	}
	lang, err := textLanguage(textID)
	if err != nil {
		return domain.LocalizedText{}, fmt.Errorf("%s: %w", op, err)
	}
	if _, ok := rec.Texts.Get(lang); !ok {
		return domain.LocalizedText{}, fmt.Errorf("%s: tag %q has no %s text: %w", op, id, lang, domain.ErrNotFound)
	}
	if given, err := domain.ParseLanguage(string(in.LanguageCode)); err != nil || given != lang {
		return domain.LocalizedText{}, fmt.Errorf("%s: language of %s text cannot change to %q: %w", op, lang, in.LanguageCode, domain.ErrValidation)
	}
	if err := validateText(in.Text); err != nil {
		return domain.LocalizedText{}, fmt.Errorf("%s: %w", op, err)
	}

	err = s.mutateVisible(ctx, id, func(rec *domain.TagRecord) error {
		if _, ok := rec.Texts.Get(lang); !ok {
			return fmt.Errorf("tag %q has no %s text: %w", id, lang, domain.ErrNotFound)
		}
		rec.Texts.Set(lang, in.Text)
		return nil
	})
	if err != nil {
		return domain.LocalizedText{}, s.fail(ctx, op, err)
	}
	return s.ReadText(ctx, id, string(lang))
}

// DeleteText blanks the slot of the language named by textID. The slot array
// keeps its length.
func (s *TagStore) DeleteText(ctx context.Context, id, textID string) error {
	const op = "store.TagStore.DeleteText"

	if _, err := s.ReadText(ctx, id, textID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	lang, _ := textLanguage(textID)

	err := s.mutateVisible(ctx, id, func(rec *domain.TagRecord) error {
		if _, ok := rec.Texts.Get(lang); !ok {
			return fmt.Errorf("tag %q has no %s text: %w", id, lang, domain.ErrNotFound)
		}
		rec.Texts.Clear(lang)
		return nil
	})
	if err != nil {
		return s.fail(ctx, op, err)
	}
	return nil
}

// visible loads a record and hides it if it is soft-deleted.
func (s *TagStore) visible(ctx context.Context, cid, id string) (domain.TagRecord, error) {
	rec, err := s.repo.Get(ctx, cid, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.TagRecord{}, fmt.Errorf("tag %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.TagRecord{}, s.fail(ctx, "store.TagStore.visible", err)
	}
	if !rec.VisibleAt(s.now()) {
		return domain.TagRecord{}, fmt.Errorf("tag %q: %w", id, domain.ErrNotFound)
	}
	return rec, nil
}

// mutateVisible runs fn in one repo transaction after re-checking that the
// record is still visible and stamps the modification provenance.
func (s *TagStore) mutateVisible(ctx context.Context, id string, fn func(*domain.TagRecord) error) error {
	cid, err := s.container(ctx)
	if err != nil {
		return err
	}
	now := s.now()
	actor := domain.ActorFrom(ctx, s.defaultActor)
	_, err = s.repo.Mutate(ctx, cid, id, func(rec *domain.TagRecord) error {
		if !rec.VisibleAt(now) {
			return fmt.Errorf("tag %q: %w", id, domain.ErrNotFound)
		}
		if err := fn(rec); err != nil {
			return err
		}
		rec.ModifiedAt = now
		rec.ModifiedBy = actor
		return nil
	})
	return err
}

// fail wraps err for op. Domain errors keep their kind; anything else is a
// backing store failure and is marked ErrInternal.
func (s *TagStore) fail(ctx context.Context, op string, err error) error {
	if errors.Is(err, domain.ErrInternal) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrDuplicate) ||
		errors.Is(err, domain.ErrValidation) {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.ErrorContext(ctx, "store operation failed", "op", op, "error", err)
	return fmt.Errorf("%s: %w: %w", op, domain.ErrInternal, err)
}

// validateText requires a single non-empty whitespace-delimited word.
func validateText(text string) error {
	if text == "" {
		return fmt.Errorf("text is required: %w", domain.ErrValidation)
	}
	if n := len(strings.Fields(text)); n != 1 {
		return fmt.Errorf("text %q must be exactly one word (has %d): %w", text, n, domain.ErrValidation)
	}
	return nil
}

// textLanguage resolves a text id, which is a language code name. An id that
// names no supported language cannot exist, so it is ErrNotFound.
func textLanguage(textID string) (domain.LanguageCode, error) {
	lang, err := domain.ParseLanguage(textID)
	if err != nil {
		return "", fmt.Errorf("text %q: %w", textID, domain.ErrNotFound)
	}
	return lang, nil
}
