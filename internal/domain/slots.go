package domain

// Slots is the positional text array of a tag record, indexed by LocaleIndex.
// Slots below the highest populated index may hold "" as filler.
// The array only grows: clearing a language writes "" instead of shrinking.
type Slots []string

// Get returns the text stored for lang and whether it is present.
// A slot that is out of range or holds "" is absent.
func (s Slots) Get(lang LanguageCode) (string, bool) {
	i := LocaleIndex(lang)
	if i >= len(s) || s[i] == "" {
		return "", false
	}
	return s[i], true
}

// Set writes text into the slot for lang, padding with "" as needed.
func (s *Slots) Set(lang LanguageCode, text string) {
	i := LocaleIndex(lang)
	for len(*s) <= i {
		*s = append(*s, "")
	}
	(*s)[i] = text
}

// Clear blanks the slot for lang. The array length is never reduced.
func (s *Slots) Clear(lang LanguageCode) {
	s.Set(lang, "")
}

// Clone returns an independent copy of s.
func (s Slots) Clone() Slots {
	if s == nil {
		return nil
	}
	out := make(Slots, len(s))
	copy(out, s)
	return out
}
