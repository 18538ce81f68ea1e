package openai

import "errors"

var (
	// ErrNoChoices indicates the model returned an empty choice list.
	ErrNoChoices = errors.New("model returned no choices")
)
