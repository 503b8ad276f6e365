package cli

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/bookbot/internal/adapters/driven/ai"
	"github.com/custodia-labs/bookbot/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, the catalog, the index and other options.

Settings live in config.toml under the config directory. The provider API
key is never stored there: it is read from the environment variable named
by provider.api_key_env (GOOGLE_API_KEY by default) or from a .env file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set one setting",
	Long: `Set one setting and save the config file.

Run 'bookbot settings keys' to list the recognised keys.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List recognised setting keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the configured providers respond",
	RunE:  runSettingsCheck,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to choose providers, models and the intent mode.`,
	RunE:  runSettingsWizard,
}

// checkTimeout bounds each provider ping of 'settings check'.
const checkTimeout = 5 * time.Second

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsCheckCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	svc, err := requireSettings()
	if err != nil {
		return err
	}

	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	cmd.Printf("  Base URL: %s\n", baseURLOrDefault(settings.LLM.BaseURL, settings.LLM.Provider))
	cmd.Printf("  Temperature: %g\n", settings.LLM.Temperature)
	cmd.Printf("  Max tokens: %d\n", settings.LLM.MaxTokens)
	cmd.Printf("  Status: %s\n", configuredStatus(settings.LLM.IsConfigured()))
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	cmd.Printf("  Base URL: %s\n", baseURLOrDefault(settings.Embedding.BaseURL, settings.Embedding.Provider))
	cmd.Printf("  Status: %s\n", configuredStatus(settings.Embedding.IsConfigured()))
	cmd.Println()

	cmd.Println("[Credentials]")
	cmd.Printf("  Variable: %s\n", settings.APIKeyEnv)
	if key := firstNonEmpty(settings.LLM.APIKey, settings.Embedding.APIKey); key != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(key))
	} else {
		cmd.Println("  API Key: (not set)")
	}
	cmd.Println()

	cmd.Println("[Catalog]")
	cmd.Printf("  Path: %s\n", settings.CatalogPath)
	cmd.Printf("  Chunk size: %d (overlap %d)\n", settings.Chunk.Size, settings.Chunk.Overlap)
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Backend: %s\n", settings.Index.Backend)
	if settings.Index.Backend == domain.VectorBackendChromem {
		cmd.Printf("  Directory: %s\n", settings.Index.Dir)
	}
	cmd.Printf("  Collection: %s\n", settings.Index.Collection)
	cmd.Printf("  Retrieval k: %d\n", settings.RetrievalK)
	cmd.Println()

	cmd.Println("[Chat]")
	cmd.Printf("  Intent mode: %s\n", settings.IntentMode)
	cmd.Printf("  Cart backend: %s\n", settings.CartBackend)
	if settings.RateLimitRPS > 0 {
		cmd.Printf("  Rate limit: %g requests/s\n", settings.RateLimitRPS)
	} else {
		cmd.Println("  Rate limit: off")
	}
	cmd.Printf("  Server address: %s\n", settings.ServerAddr)
	cmd.Println()

	if err := settings.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'bookbot settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	svc, err := requireSettings()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	if err := svc.Set(key, value); err != nil {
		return err
	}
	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	svc, err := requireSettings()
	if err != nil {
		return err
	}
	for _, key := range svc.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsCheck(cmd *cobra.Command, _ []string) error {
	svc, err := requireSettings()
	if err != nil {
		return err
	}
	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()

	cmd.Print("Checking LLM... ")
	if err := pingLLM(ctx, settings.LLM); err != nil {
		cmd.Println("FAILED")
		return err
	}
	cmd.Println("OK")

	cmd.Print("Checking embeddings... ")
	if err := pingEmbedding(ctx, settings.Embedding); err != nil {
		cmd.Println("FAILED")
		return err
	}
	cmd.Println("OK")

	return nil
}

// Provider pings, replaceable by tests.
var (
	pingLLM = func(ctx context.Context, s domain.LLMSettings) error {
		ctx, cancel := context.WithTimeout(ctx, checkTimeout)
		defer cancel()
		_, err := ai.CreateAndValidateLLMService(ctx, s)
		return err
	}
	pingEmbedding = func(ctx context.Context, s domain.EmbeddingSettings) error {
		ctx, cancel := context.WithTimeout(ctx, checkTimeout)
		defer cancel()
		_, err := ai.CreateAndValidateEmbeddingService(ctx, s)
		return err
	}
)

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	svc, err := requireSettings()
	if err != nil {
		return err
	}

	cmd.Println("bookbot Settings Wizard")
	cmd.Println("=======================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Step 1: LLM Provider")
	cmd.Println("--------------------")
	llm, err := chooseProvider(cmd, reader, "provider.llm", "llm.model", domain.DefaultLLMModels())
	if err != nil {
		return err
	}
	cmd.Println()

	cmd.Println("Step 2: Embedding Provider")
	cmd.Println("--------------------------")
	embed, err := chooseProvider(cmd, reader, "provider.embedding", "embedding.model", domain.DefaultEmbeddingModels())
	if err != nil {
		return err
	}
	cmd.Println()

	cmd.Println("Step 3: Intent Mode")
	cmd.Println("-------------------")
	modes := []domain.IntentMode{domain.IntentModeKeyword, domain.IntentModeStructured}
	cmd.Println("  1. keyword     scan the reply for cart keywords")
	cmd.Println("  2. structured  ask the model for a JSON intent")
	cmd.Print("\nEnter choice [1]: ")
	mode := modes[parseChoice(readLine(reader), len(modes), 1)-1]
	if err := svc.Set("intent.mode", string(mode)); err != nil {
		return err
	}
	cmd.Printf("Intent mode set to: %s\n\n", mode)

	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if llm.RequiresAPIKey() || embed.RequiresAPIKey() {
		cmd.Printf("Export %s with your API key, or add it to a .env file.\n", settings.APIKeyEnv)
	}
	if err := settings.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

// chooseProvider prompts for a provider and model and stores both.
func chooseProvider(
	cmd *cobra.Command,
	reader *bufio.Reader,
	providerKey, modelKey string,
	defaults map[domain.AIProvider]string,
) (domain.AIProvider, error) {
	providers := domain.AllAIProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	provider := providers[parseChoice(readLine(reader), len(providers), 1)-1]

	defaultModel := defaults[provider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	if err := settingsService.Set(providerKey, provider.String()); err != nil {
		return "", fmt.Errorf("failed to set %s: %w", providerKey, err)
	}
	if err := settingsService.Set(modelKey, model); err != nil {
		return "", fmt.Errorf("failed to set %s: %w", modelKey, err)
	}

	cmd.Printf("Configured: %s (%s)\n", provider.Description(), model)
	return provider, nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func baseURLOrDefault(url string, provider domain.AIProvider) string {
	if url != "" {
		return url
	}
	if def := provider.DefaultBaseURL(); def != "" {
		return def + " (default)"
	}
	return "(none)"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
