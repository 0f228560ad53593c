package graphmend

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soundprediction/graphmend"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Execute a reviewed merge plan",
	Long: `Execute the merge operations in a plan file written by 'graphmend identify'.
Operations run sequentially with bounded retry; a single failed operation
never aborts the run. The command exits non-zero when any operation failed.`,
	RunE: runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().String("file", "", "Path to the merge plan JSON file (required)")
	mergeCmd.Flags().String("api-url", "", "Graph API base URL")
	mergeCmd.Flags().Int("batch-size", 0, "Operations per progress batch")
	mergeCmd.Flags().Int("retry-attempts", 0, "Max attempts per operation")
	mergeCmd.Flags().Bool("resume", false, "Skip operations already applied in a previous run")
	mergeCmd.Flags().String("subject", "", "Filename prefix for the report")
	mergeCmd.Flags().String("output-dir", "", "Output directory for the report")
	mergeCmd.Flags().Bool("dry-run", false, "Show what would be merged without executing")
	mergeCmd.MarkFlagRequired("file")
}

func runMerge(cmd *cobra.Command, args []string) error {
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
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	retryAttempts, _ := cmd.Flags().GetInt("retry-attempts")
	resume, _ := cmd.Flags().GetBool("resume")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	report, reportPath, err := client.ExecutePlan(cmd.Context(), file, graphmend.ExecuteOptions{
		BatchSize:     batchSize,
		RetryAttempts: retryAttempts,
		DryRun:        dryRun,
		Resume:        resume,
	})
	if err != nil {
		return err
	}

	if dryRun {
		cmd.Printf("DRY RUN: %d operations would be executed\n", report.Total)
		return nil
	}

	cmd.Println("Merge run complete:")
	cmd.Printf("  total:      %d\n", report.Total)
	cmd.Printf("  successful: %d\n", report.Successful)
	cmd.Printf("  failed:     %d\n", report.Failed)
	cmd.Printf("  skipped:    %d\n", report.Skipped)
	cmd.Printf("  renamed:    %d\n", report.EntitiesRenamed())
	cmd.Printf("Report written to %s\n", reportPath)

	if report.Failed > 0 {
		return fmt.Errorf("%d of %d operations failed, see %s", report.Failed, report.Total, reportPath)
	}
	return nil
}
