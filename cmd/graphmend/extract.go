package graphmend

import (
	"github.com/spf13/cobra"

	"github.com/soundprediction/graphmend"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract entities matching a pattern to a file",
	Long: `Extract entities whose names or types match the given regular expressions
and write them to a JSON file. The file can be reviewed and then fed to
'graphmend clean' to delete every listed entity.`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().String("name", "", "Regex on entity names")
	extractCmd.Flags().String("type", "", "Regex on entity types")
	extractCmd.Flags().String("subject", "", "Filename prefix for the extract file")
	extractCmd.Flags().String("output-dir", "", "Output directory for the extract file")
	extractCmd.Flags().Bool("dry-run", false, "List matching entities without writing a file")
}

func runExtract(cmd *cobra.Command, args []string) error {
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

	namePattern, _ := cmd.Flags().GetString("name")
	typePattern, _ := cmd.Flags().GetString("type")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	entities, path, err := client.ExtractEntities(cmd.Context(), namePattern, typePattern, dryRun)
	if err != nil {
		return err
	}

	if dryRun {
		cmd.Printf("DRY RUN: %d entities match\n", len(entities))
		for i, e := range entities {
			if i == dryRunPreviewLimit {
				cmd.Printf("... and %d more entities\n", len(entities)-dryRunPreviewLimit)
				break
			}
			cmd.Printf("  [%s] %s (%d relationships)\n", e.Type, e.Name, e.RelationshipCount)
		}
		return nil
	}

	cmd.Printf("Wrote %d entities to %s\n", len(entities), path)
	cmd.Println("Review the list, then delete them with: graphmend clean --file", path)
	return nil
}
