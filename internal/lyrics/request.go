package lyrics

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNoDescription is returned when none of genre, theme or mood is set.
	ErrNoDescription = errors.New("at least one of genre, theme or mood is required")
	// ErrInvalidRequest is returned when a request has an unknown enum value or
	// an over-long field.
	ErrInvalidRequest = errors.New("invalid request")
)

// MaxFieldLength is the maximum number of characters of a descriptive field.
const MaxFieldLength = 200

// Language is the language of the generated lyrics.
type Language string

const (
	// LanguageKorean is the primary language.
	LanguageKorean Language = "korean"
	// LanguageEnglish is the secondary language.
	LanguageEnglish Language = "english"
)

// Languages lists all supported languages, primary first.
var Languages = []Language{LanguageKorean, LanguageEnglish}

// ParseLanguage parses a language as entered in a form. Empty input yields the
// primary language.
func ParseLanguage(value string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "korean", "ko", "한국어":
		return LanguageKorean, nil
	case "english", "en":
		return LanguageEnglish, nil
	}

	return "", fmt.Errorf("%w: unknown language %q", ErrInvalidRequest, value)
}

// OrDefault returns the language, or the primary language if unset.
func (l Language) OrDefault() Language {
	if l == "" {
		return LanguageKorean
	}
	return l
}

// Label returns the human-readable name of the language, written in the
// language itself.
func (l Language) Label() string {
	if l.OrDefault() == LanguageKorean {
		return "한국어"
	}
	return "English"
}

// Structure is a song-structure template.
type Structure string

const (
	StructureStandard     Structure = "standard"
	StructureHipHop       Structure = "hiphop"
	StructureBallad       Structure = "ballad"
	StructureExperimental Structure = "experimental"
)

// Structures lists all supported structures in display order.
var Structures = []Structure{StructureStandard, StructureHipHop, StructureBallad, StructureExperimental}

var structureLabels = map[Structure]string{
	StructureStandard:     "Standard (Verse-Chorus)",
	StructureHipHop:       "Hip-Hop (Intro-Verse-Hook)",
	StructureBallad:       "Ballad (Slow Build-up)",
	StructureExperimental: "Experimental (complex arrangement)",
}

// ParseStructure parses a structure by its identifier or by its label, or the
// first word of its label ("Standard"). Empty input yields no structure.
func ParseStructure(value string) (Structure, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}

	for _, structure := range Structures {
		label := structureLabels[structure]
		first, _, _ := strings.Cut(label, " ")
		if strings.EqualFold(value, string(structure)) || strings.EqualFold(value, label) || strings.EqualFold(value, first) {
			return structure, nil
		}
	}

	return "", fmt.Errorf("%w: unknown structure %q", ErrInvalidRequest, value)
}

// Label returns the human-readable name of the structure.
func (s Structure) Label() string {
	return structureLabels[s]
}

// GenerationRequest holds the descriptive fields of a single generation.
type GenerationRequest struct {
	Genre     string    `json:"genre" validate:"max=200"`
	Theme     string    `json:"theme" validate:"max=200"`
	Mood      string    `json:"mood" validate:"max=200"`
	Language  Language  `json:"language" validate:"omitempty,oneof=korean english"`
	Structure Structure `json:"structure,omitempty" validate:"omitempty,oneof=standard hiphop ballad experimental"`
}

// NewRequest creates a request from raw form values.
func NewRequest(genre, theme, mood, language, structure string) (GenerationRequest, error) {
	lang, err := ParseLanguage(language)
	if err != nil {
		return GenerationRequest{}, err
	}

	s, err := ParseStructure(structure)
	if err != nil {
		return GenerationRequest{}, err
	}

	return GenerationRequest{
		Genre:     strings.TrimSpace(genre),
		Theme:     strings.TrimSpace(theme),
		Mood:      strings.TrimSpace(mood),
		Language:  lang,
		Structure: s,
	}, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate returns ErrNoDescription if the request has no descriptive field,
// or an error wrapping ErrInvalidRequest if any field is invalid.
func (r GenerationRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			field := validationErrors[0]
			return fmt.Errorf("%w: field %s failed %s", ErrInvalidRequest, field.Field(), field.Tag())
		}
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	if !r.HasDescription() {
		return ErrNoDescription
	}

	return nil
}

// HasDescription returns whether at least one of genre, theme or mood is set.
func (r GenerationRequest) HasDescription() bool {
	return strings.TrimSpace(r.Genre) != "" || strings.TrimSpace(r.Theme) != "" || strings.TrimSpace(r.Mood) != ""
}

// GenerationResult is the outcome of a single successful generation.
type GenerationResult struct {
	// ID identifies the generation in logs.
	ID string
	// RawText is the unprocessed model output.
	RawText string
	// DisplayText is RawText after rendering.
	DisplayText string
	// Demo is true if the result is the demo fixture.
	Demo     bool
	Provider string
	Model    string
	Duration time.Duration
}
