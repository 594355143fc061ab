// Package mapper converts stored tag records into the shapes the API exposes.
// Every function is pure: no I/O, no clock, no failure modes.
package mapper

import "github.com/pkordes/tagstore/internal/domain"

// Tag returns the externally visible Tag for rec. Texts are not part of it.
func Tag(rec domain.TagRecord) domain.Tag {
	return domain.Tag{ID: rec.ID, Provenance: rec.Provenance}
}

// LocalizedText returns rec's text in lang, or false if that slot is empty.
// Codes outside domain.Languages never match, even though LocaleIndex would
// alias them to the EN slot.
func LocalizedText(rec domain.TagRecord, lang domain.LanguageCode) (domain.LocalizedText, bool) {
	if !lang.Valid() {
		return domain.LocalizedText{}, false
	}
	text, ok := rec.Texts.Get(lang)
	if !ok {
		return domain.LocalizedText{}, false
	}
	return domain.LocalizedText{
		ID:           string(lang),
		LanguageCode: lang,
		Text:         text,
		Provenance:   rec.Provenance,
	}, true
}

// LocalizedTexts returns every populated text of rec in domain.Languages
// order. A non-nil filter restricts the result to that language.
func LocalizedTexts(rec domain.TagRecord, filter *domain.LanguageCode) []domain.LocalizedText {
	out := []domain.LocalizedText{}
	for _, lang := range languages(filter) {
		if lt, ok := LocalizedText(rec, lang); ok {
			out = append(out, lt)
		}
	}
	return out
}

// TagTexts expands rec into listing rows, one per populated language.
func TagTexts(rec domain.TagRecord, filter *domain.LanguageCode) []domain.TagText {
	texts := LocalizedTexts(rec, filter)
	out := make([]domain.TagText, 0, len(texts))
	for _, lt := range texts {
		out = append(out, domain.TagText{
			TagID:           rec.ID,
			LocalizedTextID: lt.ID,
			LanguageCode:    lt.LanguageCode,
			Text:            lt.Text,
		})
	}
	return out
}

func languages(filter *domain.LanguageCode) []domain.LanguageCode {
	if filter == nil {
		return domain.Languages
	}
	return []domain.LanguageCode{*filter}
}
