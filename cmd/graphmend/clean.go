package graphmend

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soundprediction/graphmend"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete every entity listed in an extract file",
	Long: `Delete the entities listed in a JSON file written by 'graphmend extract'.
Deletions are retried with exponential backoff on transient failures;
entities that are already gone are counted separately and never treated as
failures.`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	cleanCmd.Flags().String("file", "", "Path to the entity list JSON file (required)")
	cleanCmd.Flags().String("api-url", "", "Graph API base URL")
	cleanCmd.Flags().Int("max-retries", -1, "Max retries per entity on transient failures")
	cleanCmd.Flags().Bool("dry-run", false, "Show what would be deleted without executing")
	cleanCmd.MarkFlagRequired("file")
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	client, err := graphmend.NewClient(cfg, log)
	if err != nil {
		return err
	}
	defer client.Close(cmd.Context())

	file, _ := cmd.Flags().GetString("file")
	maxRetries, _ := cmd.Flags().GetInt("max-retries")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	stats, err := client.DeleteEntities(cmd.Context(), file, maxRetries, dryRun)
	if err != nil {
		return err
	}

	if dryRun {
		cmd.Printf("DRY RUN: %d entities would be deleted\n", stats.Total)
		return nil
	}

	cmd.Println("Cleanup complete:")
	cmd.Printf("  total:     %d\n", stats.Total)
	cmd.Printf("  deleted:   %d\n", stats.Deleted)
	cmd.Printf("  not found: %d\n", stats.NotFound)
	cmd.Printf("  failed:    %d (client: %d, server: %d, network: %d)\n",
		stats.Failed, stats.ClientErrors, stats.ServerErrors, stats.NetworkErrors)

	if stats.Failed > 0 {
		return fmt.Errorf("%d of %d deletions failed", stats.Failed, stats.Total)
	}
	return nil
}
