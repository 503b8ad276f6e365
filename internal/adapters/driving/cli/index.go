package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the vector index from the catalog",
	Long: `Read the catalog, split every book into chunks, embed them and store
them in the vector index. A populated index is reused unless --rebuild is
given.`,
	RunE: runIndex,
}

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the number of indexed chunks",
	RunE:  runIndexStatus,
}

func init() {
	indexCmd.Flags().Bool("rebuild", false, "Drop the index and build it again")
	indexCmd.AddCommand(indexStatusCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	rebuild, err := cmd.Flags().GetBool("rebuild")
	if err != nil {
		return fmt.Errorf("getting rebuild flag: %w", err)
	}

	ctx := cmd.Context()
	if err := requireServices(ctx); err != nil {
		return err
	}

	report, err := indexService.Build(ctx, rebuild)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	if report.Skipped {
		cmd.Printf("Index already holds %d chunks (use --rebuild to re-index)\n", report.Existing)
		return nil
	}
	cmd.Printf("Indexed %d chunks from %d books\n", report.Chunks, report.Books)
	return nil
}

func runIndexStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if err := requireServices(ctx); err != nil {
		return err
	}

	n, err := indexService.Count(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		cmd.Println("Index is empty. Run 'bookbot index' to build it.")
		return nil
	}
	cmd.Printf("Index holds %d chunks\n", n)
	return nil
}
