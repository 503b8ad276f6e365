package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/bookbot/internal/core/domain"
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Inspect and edit a session's cart",
	Long: `Run cart commands directly, without going through the assistant.

Titles are matched the same way the assistant matches them: add searches
the index for the first book whose title contains the text, remove drops
the first cart item whose title contains it.`,
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List the books in the cart",
	Args:  cobra.NoArgs,
	RunE: cartAction(func(ctx context.Context, session string, _ []string) (string, error) {
		return cartService.Show(ctx, session)
	}),
}

var cartTotalCmd = &cobra.Command{
	Use:   "total",
	Short: "Print the cart total",
	Args:  cobra.NoArgs,
	RunE: cartAction(func(ctx context.Context, session string, _ []string) (string, error) {
		return cartService.Total(ctx, session)
	}),
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	Args:  cobra.NoArgs,
	RunE: cartAction(func(ctx context.Context, session string, _ []string) (string, error) {
		return cartService.Clear(ctx, session)
	}),
}

var cartAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a book to the cart",
	Args:  cobra.ExactArgs(1),
	RunE: cartAction(func(ctx context.Context, session string, args []string) (string, error) {
		if err := ensureIndexed(ctx); err != nil {
			return "", err
		}
		return cartService.Add(ctx, session, args[0])
	}),
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove [title]",
	Short: "Remove a book from the cart",
	Args:  cobra.ExactArgs(1),
	RunE: cartAction(func(ctx context.Context, session string, args []string) (string, error) {
		return cartService.Remove(ctx, session, args[0])
	}),
}

var cartSessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List sessions with a stored cart",
	Args:  cobra.NoArgs,
	RunE:  runCartSessions,
}

func init() {
	cartCmd.PersistentFlags().StringP("session", "s", domain.DefaultSession, "Session whose cart is used")
	cartCmd.AddCommand(cartShowCmd)
	cartCmd.AddCommand(cartTotalCmd)
	cartCmd.AddCommand(cartClearCmd)
	cartCmd.AddCommand(cartAddCmd)
	cartCmd.AddCommand(cartRemoveCmd)
	cartCmd.AddCommand(cartSessionsCmd)
	rootCmd.AddCommand(cartCmd)
}

// cartAction adapts a cart operation to a cobra RunE.
func cartAction(op func(ctx context.Context, session string, args []string) (string, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		session, err := cmd.Flags().GetString("session")
		if err != nil {
			return fmt.Errorf("getting session flag: %w", err)
		}

		ctx := cmd.Context()
		if err := requireServices(ctx); err != nil {
			return err
		}

		text, err := op(ctx, domain.NormaliseSession(session), args)
		if err != nil {
			return fmt.Errorf("cart %s: %w", cmd.Name(), err)
		}
		cmd.Println(text)
		return nil
	}
}

func runCartSessions(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if err := requireServices(ctx); err != nil {
		return err
	}

	sessions, err := cartService.Sessions(ctx)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		cmd.Println("No stored carts.")
		return nil
	}
	for _, s := range sessions {
		cmd.Println(s)
	}
	return nil
}
