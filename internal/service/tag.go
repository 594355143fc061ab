// Package service contains the business logic for the tags API.
// Services parse request intents, delegate to the store, and map records to
// their externally visible shapes. No storage code lives here.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkordes/tagstore/internal/domain"
	"github.com/pkordes/tagstore/internal/mapper"
)

// TagStorer is the subset of *store.TagStore the service depends on.
type TagStorer interface {
	List(ctx context.Context, lang *domain.LanguageCode, offset, limit int) ([]domain.TagText, error)
	Create(ctx context.Context, clientID string) (domain.TagRecord, error)
	Read(ctx context.Context, id string) (domain.TagRecord, error)
	Update(ctx context.Context, id string) (domain.TagRecord, error)
	Delete(ctx context.Context, id string) error
	ListTexts(ctx context.Context, id string) ([]domain.LocalizedText, error)
	CreateText(ctx context.Context, id string, in domain.LocalizedText) (domain.LocalizedText, error)
	ReadText(ctx context.Context, id, textID string) (domain.LocalizedText, error)
	UpdateText(ctx context.Context, id, textID string, in domain.LocalizedText) (domain.LocalizedText, error)
	DeleteText(ctx context.Context, id, textID string) error
}

// TagService implements the tag and localized-text operations.
type TagService struct {
	store TagStorer
	log   *slog.Logger
}

// NewTagService constructs a TagService backed by the provided store.
func NewTagService(store TagStorer, log *slog.Logger) *TagService {
	if log == nil {
		log = slog.Default()
	}
	return &TagService{store: store, log: log}
}

// ParseQuery extracts the language filter from a list query.
// An empty query means no filter. The only other accepted shape is
// "lang=XX" with XX a supported language code in any case.
func ParseQuery(query string) (*domain.LanguageCode, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, nil
	}
	code, ok := strings.CutPrefix(q, "lang=")
	if !ok {
		return nil, fmt.Errorf("invalid query %q: %w", query, domain.ErrValidation)
	}
	lang, err := domain.ParseLanguage(code)
	if err != nil || len(code) != 2 {
		return nil, fmt.Errorf("invalid query %q: %w", query, domain.ErrValidation)
	}
	return &lang, nil
}

// List returns one row per tag text. queryType is accepted for wire
// compatibility and has no effect.
func (s *TagService) List(ctx context.Context, query, queryType string, offset, limit int) ([]domain.TagText, error) {
	lang, err := ParseQuery(query)
	if err != nil {
		return nil, fmt.Errorf("service.TagService.List: %w", err)
	}
	rows, err := s.store.List(ctx, lang, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("service.TagService.List: %w", err)
	}
	return rows, nil
}

// Create adds a new, empty tag. tag.ID must be empty; ids are assigned by
// the store.
func (s *TagService) Create(ctx context.Context, tag domain.Tag) (domain.Tag, error) {
	rec, err := s.store.Create(ctx, tag.ID)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Create: %w", err)
	}
	s.log.InfoContext(ctx, "tag created", "tag_id", rec.ID, "actor", rec.CreatedBy)
	return mapper.Tag(rec), nil
}

// Read returns a single active tag.
func (s *TagService) Read(ctx context.Context, id string) (domain.Tag, error) {
	rec, err := s.store.Read(ctx, id)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Read: %w", err)
	}
	return mapper.Tag(rec), nil
}

// Update marks the tag as modified. A Tag carries no writable fields, so the
// body is not applied.
func (s *TagService) Update(ctx context.Context, id string, _ domain.Tag) (domain.Tag, error) {
	rec, err := s.store.Update(ctx, id)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Update: %w", err)
	}
	s.log.InfoContext(ctx, "tag updated", "tag_id", id, "actor", rec.ModifiedBy)
	return mapper.Tag(rec), nil
}

// Delete soft-deletes a tag.
func (s *TagService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TagService.Delete: %w", err)
	}
	s.log.InfoContext(ctx, "tag deleted", "tag_id", id)
	return nil
}

func (s *TagService) ListTexts(ctx context.Context, id string) ([]domain.LocalizedText, error) {
	texts, err := s.store.ListTexts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.TagService.ListTexts: %w", err)
	}
	return texts, nil
}

func (s *TagService) CreateText(ctx context.Context, id string, in domain.LocalizedText) (domain.LocalizedText, error) {
	lt, err := s.store.CreateText(ctx, id, in)
	if err != nil {
		return domain.LocalizedText{}, fmt.Errorf("service.TagService.CreateText: %w", err)
	}
	s.log.InfoContext(ctx, "tag text created", "tag_id", id, "lang", lt.LanguageCode)
	return lt, nil
}

func (s *TagService) ReadText(ctx context.Context, id, textID string) (domain.LocalizedText, error) {
	lt, err := s.store.ReadText(ctx, id, textID)
	if err != nil {
		return domain.LocalizedText{}, fmt.Errorf("service.TagService.ReadText: %w", err)
	}
	return lt, nil
}

func (s *TagService) UpdateText(ctx context.Context, id, textID string, in domain.LocalizedText) (domain.LocalizedText, error) {
	lt, err := s.store.UpdateText(ctx, id, textID, in)
	if err != nil {
		return domain.LocalizedText{}, fmt.Errorf("service.TagService.UpdateText: %w", err)
	}
	s.log.InfoContext(ctx, "tag text updated", "tag_id", id, "lang", lt.LanguageCode)
	return lt, nil
}

func (s *TagService) DeleteText(ctx context.Context, id, textID string) error {
	if err := s.store.DeleteText(ctx, id, textID); err != nil {
		return fmt.Errorf("service.TagService.DeleteText: %w", err)
	}
	s.log.InfoContext(ctx, "tag text deleted", "tag_id", id, "text_id", textID)
	return nil
}
