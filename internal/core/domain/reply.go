package domain

// Reply is the outcome of one chat turn.
type Reply struct {
	// Text is what facades show the user.
	Text string

	// Intent is the dispatched cart intent, or IntentNone for a plain answer.
	Intent Intent

	// Argument is the book fragment passed to add or remove.
	Argument string
}

// IsCommand reports whether the reply came from a cart operation.
func (r Reply) IsCommand() bool {
	return r.Intent.IsCart()
}
