package services

import (
	"encoding/json"
	"strings"

	"github.com/custodia-labs/bookbot/internal/core/domain"
	"github.com/custodia-labs/bookbot/internal/core/ports/driven"
	"github.com/custodia-labs/bookbot/internal/logger"
)

// Route is the decision an IntentRouter makes about one completion.
type Route struct {
	// Intent is a cart intent, or domain.IntentNone for a plain answer.
	Intent domain.Intent

	// Argument is the book fragment for add and remove.
	Argument string

	// Answer is the text returned when no cart intent is dispatched.
	Answer string
}

// IntentRouter decides whether a completion is a cart command.
type IntentRouter interface {
	// Route classifies a completion.
	Route(completion string) Route

	// Schema returns the response schema to request from the model,
	// or nil when the router reads free text.
	Schema() *driven.ResponseSchema
}

// Ensure routers implement the interface.
var (
	_ IntentRouter = KeywordRouter{}
	_ IntentRouter = StructuredRouter{}
)

// KeywordRouter detects intents by keyword substring in free text.
//
// The substring check runs over the whole completion, so prose that
// happens to mention an intent keyword is treated as a command.
type KeywordRouter struct{}

// Schema returns nil: the keyword router reads free text.
func (KeywordRouter) Schema() *driven.ResponseSchema {
	return nil
}

// Route classifies a free-text completion.
//
// A completion containing no keyword is returned unchanged. Otherwise it
// is split on "-": exactly two parts give intent and argument, anything
// else makes the whole completion the intent. An intent that is not one
// of the five cart intents falls back to the raw completion.
func (KeywordRouter) Route(completion string) Route {
	passThrough := Route{Intent: domain.IntentNone, Answer: completion}

	if !containsIntentKeyword(completion) {
		return passThrough
	}

	var intent, arg string
	parts := strings.Split(completion, domain.IntentSeparator)
	if len(parts) == 2 {
		intent, arg = parts[0], parts[1]
	} else {
		intent = completion
	}

	route := Route{
		Intent:   domain.Intent(strings.ToLower(strings.TrimSpace(intent))),
		Argument: strings.TrimSpace(arg),
		Answer:   completion,
	}
	if !route.Intent.IsCart() {
		logger.Debug("Unrecognised intent %q, returning raw completion", route.Intent)
		return passThrough
	}
	return route
}

func containsIntentKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, intent := range domain.CartIntents() {
		if strings.Contains(lower, string(intent)) {
			return true
		}
	}
	return false
}

// structuredReply is the JSON object requested in structured mode.
type structuredReply struct {
	Intent string `json:"intent"`
	Book   string `json:"book"`
	Answer string `json:"answer"`
}

// StructuredRouter reads a JSON object with an explicit intent tag.
// Completions that do not decode are routed by Fallback.
type StructuredRouter struct {
	Fallback KeywordRouter
}

// IntentSchema is the response schema requested in structured mode.
func IntentSchema() *driven.ResponseSchema {
	intents := make([]string, 0, len(domain.CartIntents())+1)
	intents = append(intents, string(domain.IntentNone))
	for _, i := range domain.CartIntents() {
		intents = append(intents, string(i))
	}

	return &driven.ResponseSchema{
		Name:        "bookstore_reply",
		Description: "Either a cart command or a plain answer.",
		Properties: map[string]driven.SchemaProperty{
			"intent": {
				Description: "Cart command, or none for a plain answer.",
				Enum:        intents,
			},
			"book": {
				Description: "Book title for kitap_ekle and kitap_cikar, otherwise empty.",
			},
			"answer": {
				Description: "Answer to the user when intent is none, otherwise empty.",
			},
		},
		Required: []string{"intent", "book", "answer"},
	}
}

// Schema returns IntentSchema.
func (StructuredRouter) Schema() *driven.ResponseSchema {
	return IntentSchema()
}

// Route decodes a structured completion.
func (r StructuredRouter) Route(completion string) Route {
	var reply structuredReply
	if err := json.Unmarshal([]byte(stripCodeFence(completion)), &reply); err != nil {
		logger.Debug("Structured reply did not decode (%v), using keyword router", err)
		return r.Fallback.Route(completion)
	}

	intent := domain.Intent(strings.ToLower(strings.TrimSpace(reply.Intent)))
	if !intent.IsCart() {
		answer := reply.Answer
		if strings.TrimSpace(answer) == "" {
			answer = completion
		}
		return Route{Intent: domain.IntentNone, Answer: answer}
	}

	return Route{
		Intent:   intent,
		Argument: strings.TrimSpace(reply.Book),
		Answer:   reply.Answer,
	}
}

// stripCodeFence removes a surrounding ``` or ```json fence.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// NewIntentRouter returns the router for mode.
func NewIntentRouter(mode domain.IntentMode) IntentRouter {
	if mode == domain.IntentModeStructured {
		return StructuredRouter{}
	}
	return KeywordRouter{}
}
