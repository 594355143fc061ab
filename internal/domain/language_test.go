package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tagstore/internal/domain"
)

func TestLocaleIndex_SupportedLanguages(t *testing.T) {
	want := map[domain.LanguageCode]int{
		domain.EN: 0,
		domain.DE: 1,
		domain.ES: 2,
		domain.FR: 7,
		domain.IT: 8,
		domain.RM: 28,
	}
	for lang, slot := range want {
		assert.Equal(t, slot, domain.LocaleIndex(lang), "slot for %s", lang)
		// Pure: a second call yields the same slot.
		assert.Equal(t, domain.LocaleIndex(lang), domain.LocaleIndex(lang))
	}
}

func TestLocaleIndex_DistinctSlots(t *testing.T) {
	seen := map[int]domain.LanguageCode{}
	for _, lang := range domain.Languages {
		slot := domain.LocaleIndex(lang)
		prev, dup := seen[slot]
		assert.False(t, dup, "%s and %s share slot %d", lang, prev, slot)
		seen[slot] = lang
	}
}

// Unmapped codes alias the English slot. ParseLanguage keeps them away from
// the store; this test pins the alias so a change to it is deliberate.
func TestLocaleIndex_UnmappedAliasesEnglish(t *testing.T) {
	assert.Equal(t, domain.LocaleIndex(domain.EN), domain.LocaleIndex("XX"))
	assert.Equal(t, domain.LocaleIndex(domain.EN), domain.LocaleIndex(""))
	assert.False(t, domain.LanguageCode("XX").Valid())
}

func TestParseLanguage(t *testing.T) {
	got, err := domain.ParseLanguage("de")
	require.NoError(t, err)
	assert.Equal(t, domain.DE, got)

	got, err = domain.ParseLanguage(" RM ")
	require.NoError(t, err)
	assert.Equal(t, domain.RM, got)
}

func TestParseLanguage_Unsupported(t *testing.T) {
	for _, in := range []string{"", "XX", "english", "E"} {
		_, err := domain.ParseLanguage(in)
		assert.ErrorIs(t, err, domain.ErrValidation, "input %q", in)
	}
}
