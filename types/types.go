package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Highlight is a user-annotated span of transcript text. Records written by
// older clients may lack fullSentence/translatedWord; fallbacks are applied
// when reading, never stored back.
type Highlight struct {
	Russian        string    `json:"russian" validate:"required"`
	Translation    string    `json:"translation"`
	FullSentence   string    `json:"fullSentence"`
	TranslatedWord *string   `json:"translatedWord"`
	Date           time.Time `json:"date"`
}

// Normalized returns the highlight with read-time fallbacks applied:
// an empty fullSentence falls back to the highlighted span itself.
// A nil translatedWord stays nil and serializes as JSON null.
func (h Highlight) Normalized() Highlight {
	if h.FullSentence == "" {
		h.FullSentence = h.Russian
	}
	return h
}

func NormalizedHighlights(hs []Highlight) []Highlight {
	out := make([]Highlight, len(hs))
	for i, h := range hs {
		out[i] = h.Normalized()
	}
	return out
}

// Dialogue is one language-learning unit: an audio file and a transcript in
// the storage folder plus user highlights, keyed by the number embedded in
// the file names (audio<N>.<ext>, transcript<N>.txt).
type Dialogue struct {
	ID             uuid.UUID
	Number         int
	Title          string
	AudioDriveID   string
	TranscriptText string
	Highlights     []Highlight
}

// DisplayTitle returns the stored title, or a synthesized label when none
// was ever set.
func (d *Dialogue) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return fmt.Sprintf("Dialogue %d", d.Number)
}

func (d *Dialogue) HasHighlights() bool {
	return len(d.Highlights) > 0
}

// DialogueListItem is one row of the dialogue listing: storage-derived ids
// merged with whatever the store knows about the number.
type DialogueListItem struct {
	Number        int    `json:"number"`
	Label         string `json:"label"`
	AudioID       string `json:"audioId,omitempty"`
	HasHighlights bool   `json:"hasHighlights"`
}

// TranscriptResponse is the payload of the single-dialogue endpoint. Both
// fields stay empty when nothing is known for the number (soft miss).
type TranscriptResponse struct {
	Transcript string      `json:"transcript"`
	Highlights []Highlight `json:"highlights"`
}

// FlatHighlight is one entry of the flattened training dataset: a highlight
// tagged with the number of the dialogue it came from.
type FlatHighlight struct {
	Russian        string  `json:"russian"`
	Translation    string  `json:"translation"`
	FullSentence   string  `json:"fullSentence"`
	TranslatedWord *string `json:"translatedWord"`
	DialogueNumber int     `json:"dialogueNumber"`
}
