// Package domain contains the core data types for the tags service.
// This package has zero external dependencies and is imported by every other
// internal package (repo, store, service, handler).
package domain

import "time"

// Provenance records who created and last modified a tag, and when.
type Provenance struct {
	CreatedAt  time.Time `json:"createdAt"`
	CreatedBy  string    `json:"createdBy"`
	ModifiedAt time.Time `json:"modifiedAt"`
	ModifiedBy string    `json:"modifiedBy"`
}

// TagRecord is the persisted form of a tag.
// ValidTo is nil while the record is active; once it lies in the past the
// record is soft-deleted and invisible to every read path.
type TagRecord struct {
	ID string
	Provenance
	ValidTo *time.Time
	// Touched is the marker stamped by an update. It has no other meaning.
	Touched string
	Texts   Slots
}

// VisibleAt reports whether the record is active at t.
// A ValidTo in the future still counts as active.
func (r TagRecord) VisibleAt(t time.Time) bool {
	return r.ValidTo == nil || !r.ValidTo.Before(t)
}

// Tag is the externally visible shape of a tag: identity and provenance only.
// Texts are exposed through LocalizedText.
type Tag struct {
	ID string `json:"id,omitempty"`
	Provenance
}

// LocalizedText is one language's text attached to a tag.
// ID equals the language code name; a tag holds at most one text per language.
type LocalizedText struct {
	ID           string       `json:"id,omitempty"`
	LanguageCode LanguageCode `json:"languageCode,omitempty"`
	Text         string       `json:"text"`
	Provenance
}

// TagText is one row of the tag listing: a single language's text of a tag.
type TagText struct {
	TagID           string       `json:"tagId"`
	LocalizedTextID string       `json:"localizedTextId"`
	LanguageCode    LanguageCode `json:"languageCode"`
	Text            string       `json:"text"`
}
