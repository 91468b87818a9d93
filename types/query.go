package types

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// HighlightList is the request body of the save-highlights endpoint: the
// full replacement set for a dialogue, in client order.
type HighlightList []Highlight

// Validate checks each entry and returns a field->message map keyed by
// element index, empty on success. Only russian is required; everything
// else is stored as given.
func (list HighlightList) Validate() map[string]string {
	validate := validator.New()
	errors := make(map[string]string)
	for i, h := range list {
		err := validate.Struct(h)
		if err == nil {
			continue
		}
		errs := err.(validator.ValidationErrors)
		for _, e := range errs {
			errors[fmt.Sprintf("[%d].%s", i, e.Field())] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
	}
	if len(errors) == 0 {
		return nil
	}
	return errors
}

// ToHighlights copies the list, stamping now as the creation date on entries
// the client submitted without one.
func (list HighlightList) ToHighlights(now time.Time) []Highlight {
	out := make([]Highlight, len(list))
	for i, h := range list {
		if h.Date.IsZero() {
			h.Date = now
		}
		out[i] = h
	}
	return out
}
