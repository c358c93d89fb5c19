// Package symptoms turns free text into canonical symptom tokens.
package symptoms

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultSynonyms maps lower-case phrases to canonical symptom tokens.
var DefaultSynonyms = map[string]string{
	// general
	"fever":   "high_fever",
	"hot":     "high_fever",
	"chill":   "chills",
	"shiver":  "chills",
	"fatigue": "fatigue",
	"tired":   "fatigue",
	// head and neuro
	"headache": "headache",
	"dizzy":    "dizziness",
	"confused": "altered_sensorium",
	// respiratory
	"cough":       "cough",
	"sneeze":      "continuous_sneezing",
	"breath":      "breathlessness",
	"runny nose":  "runny_nose",
	"sore throat": "throat_irritation",
	// digestive
	"stomach":      "stomach_pain",
	"vomit":        "vomiting",
	"nausea":       "nausea",
	"diarrhea":     "diarrhea",
	"constipation": "constipation",
	"acid":         "acidity",
	// skin
	"rash":        "skin_rash",
	"itch":        "itching",
	"yellow skin": "yellowish_skin",
	"pimple":      "pus_filled_pimples",
	// pain
	"chest pain": "chest_pain",
	"joint pain": "joint_pain",
	"muscle":     "muscle_pain",
	"back pain":  "back_pain",
	"neck pain":  "neck_pain",
}

type phrase struct {
	text    string
	symptom string
}

// Extractor matches synonym phrases and vocabulary terms as plain substrings
// of the lower-cased input. It is immutable and safe for concurrent use.
type Extractor struct {
	synonyms   []phrase
	vocabulary []phrase
}

// NewExtractor builds an extractor over a synonym dictionary and the known
// vocabulary. Vocabulary terms match in their readable form, with
// underscores replaced by spaces.
func NewExtractor(synonyms map[string]string, vocabulary []string) *Extractor {
	e := &Extractor{}
	for p, sym := range synonyms {
		p = fold(strings.TrimSpace(p))
		sym = strings.TrimSpace(sym)
		if p == "" || sym == "" {
			continue
		}
		e.synonyms = append(e.synonyms, phrase{text: p, symptom: sym})
	}
	sort.Slice(e.synonyms, func(i, j int) bool { return e.synonyms[i].text < e.synonyms[j].text })

	for _, sym := range vocabulary {
		readable := fold(strings.ReplaceAll(sym, "_", " "))
		if strings.TrimSpace(readable) == "" {
			continue
		}
		e.vocabulary = append(e.vocabulary, phrase{text: readable, symptom: sym})
	}
	return e
}

// Extract returns the sorted, deduplicated canonical symptoms found in text.
// Substrings match anywhere, including inside longer words.
func (e *Extractor) Extract(text string) []string {
	text = fold(text)
	if strings.TrimSpace(text) == "" {
		return nil
	}

	found := make(map[string]struct{})
	for _, p := range e.synonyms {
		if strings.Contains(text, p.text) {
			found[p.symptom] = struct{}{}
		}
	}
	for _, p := range e.vocabulary {
		if strings.Contains(text, p.text) {
			found[p.symptom] = struct{}{}
		}
	}
	if len(found) == 0 {
		return nil
	}

	out := make([]string, 0, len(found))
	for sym := range found {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// fold lower-cases s. A Caser is stateful and must not be shared between
// goroutines, so each call builds its own.
func fold(s string) string {
	return cases.Lower(language.Und).String(s)
}
