package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/bookbot/internal/adapters/driving/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant interactively",
	Long: `Open an interactive chat with the bookstore assistant.

On a terminal this starts the chat window with a cart side panel. When
input is piped, every line is sent as one message and the reply printed.

Each chat gets a fresh session unless --session is given.

Controls:
  enter    - Send message
  ctrl+t   - Show or hide the cart
  pgup/dn  - Scroll the conversation
  esc      - Quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

// isTerminal reports whether stdin is interactive; replaced by tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func init() {
	chatCmd.Flags().StringP("session", "s", "", "Session to chat in (default: a new one)")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	session, err := cmd.Flags().GetString("session")
	if err != nil {
		return fmt.Errorf("getting session flag: %w", err)
	}
	if session == "" {
		session = uuid.NewString()
	}

	ctx := cmd.Context()
	if err := ensureIndexed(ctx); err != nil {
		return err
	}

	if !isTerminal() {
		return chatLines(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), session)
	}
	return runChatWindow(ctx, session)
}

func runChatWindow(ctx context.Context, session string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	app, err := tui.NewApp(&tui.Ports{Chat: chatService, Cart: cartService}, session)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	if err := app.WithContext(ctx).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// chatLines answers one message per input line until EOF.
// A failed message is reported and the loop continues.
func chatLines(ctx context.Context, in io.Reader, out io.Writer, session string) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		reply, err := chatService.Ask(ctx, session, line)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		fmt.Fprintln(out, reply.Text)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}
