package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/bookbot/internal/core/domain"
)

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Send one message to the assistant",
	Long: `Send one message through the retrieval pipeline and print the reply.

Cart commands the assistant infers (add, remove, show, clear, total) are
applied to the session's cart. Carts outlive the process only with the
sqlite cart backend.

Examples:
  bookbot ask "Dune kitabının fiyatı nedir?"
  bookbot ask --session alice "Dune kitabını sepete ekle"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringP("session", "s", domain.DefaultSession, "Session whose cart is used")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	session, err := cmd.Flags().GetString("session")
	if err != nil {
		return fmt.Errorf("getting session flag: %w", err)
	}

	ctx := cmd.Context()
	if err := ensureIndexed(ctx); err != nil {
		return err
	}

	reply, err := chatService.Ask(ctx, session, args[0])
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	cmd.Println(reply.Text)
	return nil
}
