package fetcher

import (
	"github.com/pemistahl/lingua-go"
)

// languageTagger detects the language of article text so consumers can
// filter mixed French/English pools. Detection is best effort: anything
// ambiguous or outside the configured set tags as "".
type languageTagger struct {
	detector lingua.LanguageDetector
}

func newLanguageTagger() *languageTagger {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English, lingua.French, lingua.German, lingua.Spanish,
			lingua.Italian, lingua.Portuguese, lingua.Dutch,
		).
		Build()
	return &languageTagger{detector: detector}
}

func (t *languageTagger) tag(text string) string {
	if t == nil || len(text) < 10 {
		return ""
	}
	language, ok := t.detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	switch language {
	case lingua.English:
		return "en"
	case lingua.French:
		return "fr"
	case lingua.German:
		return "de"
	case lingua.Spanish:
		return "es"
	case lingua.Italian:
		return "it"
	case lingua.Portuguese:
		return "pt"
	case lingua.Dutch:
		return "nl"
	default:
		return ""
	}
}
