package domain

// Intent is a cart command the language model emits instead of prose.
type Intent string

// Known cart intents. The string values are what the model is told to emit.
const (
	IntentAddBook    Intent = "kitap_ekle"
	IntentShowCart   Intent = "sepet_goster"
	IntentClearCart  Intent = "sepet_temizle"
	IntentCartTotal  Intent = "sepet_toplam"
	IntentRemoveBook Intent = "kitap_cikar"

	// IntentNone marks a plain answer with no cart command.
	IntentNone Intent = "none"
)

// IntentSeparator splits an intent from its book argument.
const IntentSeparator = "-"

// CartIntents returns the five cart intents in prompt order.
func CartIntents() []Intent {
	return []Intent{
		IntentAddBook,
		IntentShowCart,
		IntentClearCart,
		IntentCartTotal,
		IntentRemoveBook,
	}
}

// IsCart reports whether i is one of the five cart intents.
func (i Intent) IsCart() bool {
	switch i {
	case IntentAddBook, IntentShowCart, IntentClearCart, IntentCartTotal, IntentRemoveBook:
		return true
	default:
		return false
	}
}

// TakesArgument reports whether the intent needs a book title.
func (i Intent) TakesArgument() bool {
	return i == IntentAddBook || i == IntentRemoveBook
}

// String returns the string representation.
func (i Intent) String() string {
	return string(i)
}
