package symptoms

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// synonymFile is the YAML layout of SYNONYMS_FILE:
//
//	synonyms:
//	  fever: high_fever
//	  stomach ache: stomach_pain
type synonymFile struct {
	Synonyms map[string]string `yaml:"synonyms"`
}

// LoadSynonyms reads extra synonym phrases from a YAML file and merges them
// over DefaultSynonyms. An empty path returns a copy of the defaults.
func LoadSynonyms(path string) (map[string]string, error) {
	out := make(map[string]string, len(DefaultSynonyms))
	for k, v := range DefaultSynonyms {
		out[k] = v
	}
	if strings.TrimSpace(path) == "" {
		return out, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read synonyms: %w", err)
	}
	var f synonymFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse synonyms: %w", err)
	}
	for phrase, sym := range f.Synonyms {
		phrase = strings.ToLower(strings.TrimSpace(phrase))
		sym = strings.TrimSpace(sym)
		if phrase == "" || sym == "" {
			return nil, fmt.Errorf("parse synonyms: empty phrase or symptom in %q", path)
		}
		out[phrase] = sym
	}
	return out, nil
}
