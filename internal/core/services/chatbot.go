package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/bookbot/internal/core/domain"
	"github.com/custodia-labs/bookbot/internal/core/ports/driven"
	"github.com/custodia-labs/bookbot/internal/core/ports/driving"
	"github.com/custodia-labs/bookbot/internal/logger"
)

// Ensure ChatbotService implements the interface.
var _ driving.ChatService = (*ChatbotService)(nil)

// Generation defaults.
const (
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 500
)

// ChatbotConfig configures the chatbot pipeline.
type ChatbotConfig struct {
	// K is the number of chunks retrieved as context. Zero uses the retriever's default.
	K int

	Temperature float64
	MaxTokens   int
}

// ChatbotService runs retrieve, generate and route for every query.
type ChatbotService struct {
	retriever *Retriever
	prompts   *PromptBuilder
	llm       driven.LLMService
	router    IntentRouter
	cart      driving.CartService
	cfg       ChatbotConfig
}

// NewChatbotService creates the chatbot. A nil router uses KeywordRouter.
func NewChatbotService(
	retriever *Retriever,
	prompts *PromptBuilder,
	llm driven.LLMService,
	router IntentRouter,
	cart driving.CartService,
	cfg ChatbotConfig,
) *ChatbotService {
	if router == nil {
		router = KeywordRouter{}
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	return &ChatbotService{
		retriever: retriever,
		prompts:   prompts,
		llm:       llm,
		router:    router,
		cart:      cart,
		cfg:       cfg,
	}
}

// Ask answers one message for the session.
func (s *ChatbotService) Ask(ctx context.Context, session, query string) (domain.Reply, error) {
	session = domain.NormaliseSession(session)
	logger.Section("Chat")
	logger.Debug("Session: %s, query: %q", session, query)

	chunks, err := s.retriever.retrieveOrEmpty(ctx, query, s.cfg.K)
	if err != nil {
		return domain.Reply{}, fmt.Errorf("retrieve context: %w", err)
	}
	logger.Debug("Retrieved %d chunks", len(chunks))

	schema := s.router.Schema()
	messages, err := s.prompts.Build(chunks, query, schema != nil)
	if err != nil {
		return domain.Reply{}, fmt.Errorf("build prompt: %w", err)
	}

	completion, err := s.llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
		Schema:      schema,
	})
	if err != nil {
		logger.Warn("Completion failed: %v", err)
		return domain.Reply{}, providerError("generate answer", err)
	}
	completion = strings.TrimSpace(completion)
	logger.Debug("Completion (%s): %q", s.llm.ModelName(), completion)

	return s.Dispatch(ctx, session, s.router.Route(completion))
}

// Dispatch executes a routed completion.
func (s *ChatbotService) Dispatch(ctx context.Context, session string, route Route) (domain.Reply, error) {
	reply := domain.Reply{Intent: route.Intent, Argument: route.Argument}

	var (
		text string
		err  error
	)
	switch route.Intent {
	case domain.IntentAddBook:
		text, err = s.cart.Add(ctx, session, route.Argument)
	case domain.IntentRemoveBook:
		text, err = s.cart.Remove(ctx, session, route.Argument)
	case domain.IntentShowCart:
		text, err = s.cart.Show(ctx, session)
	case domain.IntentClearCart:
		text, err = s.cart.Clear(ctx, session)
	case domain.IntentCartTotal:
		text, err = s.cart.Total(ctx, session)
	default:
		reply.Intent = domain.IntentNone
		reply.Argument = ""
		text = route.Answer
	}
	if err != nil {
		return domain.Reply{}, err
	}

	logger.Debug("Intent: %s", reply.Intent)
	reply.Text = text
	return reply, nil
}
