package graphmend

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soundprediction/graphmend"
	"github.com/soundprediction/graphmend/pkg/types"
)

// dryRunPreviewLimit caps how many operations a dry run prints in full.
const dryRunPreviewLimit = 10

var identifyCmd = &cobra.Command{
	Use:   "identify",
	Short: "Identify duplicate entities and write a merge plan",
	Long: `Identify groups of entities whose names normalize identically and write a
merge plan JSON file for review. Nothing is changed in the graph; the plan is
executed later with 'graphmend merge'.

By default entities are grouped per (name, type) within the configured entity
types. With --merge-across-types, entities of different types merge into one
group. With --taxonomy, only entities named in the taxonomy file are
considered and the taxonomy decides canonical names and types.`,
	RunE: runIdentify,
}

func init() {
	rootCmd.AddCommand(identifyCmd)

	identifyCmd.Flags().String("entity-types", "DOMAIN_PROFILE,PROFILE", "Comma-separated entity types to process")
	identifyCmd.Flags().Bool("all-types", false, "Search all entity types")
	identifyCmd.Flags().Bool("merge-across-types", false, "Merge entities with the same normalized name across entity types")
	identifyCmd.Flags().String("prefer-types", "", "Comma-separated entity types to prefer when merging across types")
	identifyCmd.Flags().String("taxonomy", "", "Path to a canonical taxonomy file (JSON or YAML)")
	identifyCmd.Flags().String("name", "", "Regex on entity names")
	identifyCmd.Flags().String("type", "", "Regex on entity types")
	identifyCmd.Flags().String("subject", "", "Filename prefix for output artifacts")
	identifyCmd.Flags().String("output-dir", "", "Output directory for the plan file")
	identifyCmd.Flags().Bool("dry-run", false, "Report what would be planned without writing a file")
}

func runIdentify(cmd *cobra.Command, args []string) error {
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

	allTypes, _ := cmd.Flags().GetBool("all-types")
	crossTypes, _ := cmd.Flags().GetBool("merge-across-types")
	taxonomy, _ := cmd.Flags().GetString("taxonomy")
	namePattern, _ := cmd.Flags().GetString("name")
	typePattern, _ := cmd.Flags().GetString("type")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	entityTypes := splitList(cmd, "entity-types")
	if len(entityTypes) == 1 && strings.EqualFold(entityTypes[0], "ALL") {
		allTypes = true
		entityTypes = nil
	}

	preferred := splitList(cmd, "prefer-types")
	if len(preferred) == 0 && crossTypes && !allTypes {
		// When merging across types, the processed type list doubles as the
		// preference order unless told otherwise.
		preferred = entityTypes
	}

	ops, path, err := client.IdentifyDuplicates(cmd.Context(), graphmend.IdentifyOptions{
		NamePattern:    namePattern,
		TypePattern:    typePattern,
		EntityTypes:    entityTypes,
		AllTypes:       allTypes,
		CrossTypes:     crossTypes,
		PreferredTypes: preferred,
		TaxonomyPath:   taxonomy,
		DryRun:         dryRun,
	})
	if err != nil {
		return err
	}

	if dryRun {
		printPlanPreview(cmd, ops)
		return nil
	}

	if len(ops) == 0 {
		cmd.Println("No duplicate entities found.")
	}
	cmd.Printf("Wrote merge plan with %d operations to %s\n", len(ops), path)
	cmd.Println("Review the plan, then execute it with: graphmend merge --file", path)
	return nil
}

func printPlanPreview(cmd *cobra.Command, ops []types.MergeOperation) {
	cmd.Printf("DRY RUN: %d merge operations identified\n", len(ops))
	for i, op := range ops {
		if i == dryRunPreviewLimit {
			cmd.Printf("... and %d more operations\n", len(ops)-dryRunPreviewLimit)
			break
		}
		line := fmt.Sprintf("  [%s] %v -> %q", op.EntityType, op.EntitiesToChange, op.EntityToChangeInto)
		if op.NormalizedName != "" && op.NormalizedName != op.EntityToChangeInto {
			line += fmt.Sprintf(" (rename to %q)", op.NormalizedName)
		}
		cmd.Println(line)
	}
}

func splitList(cmd *cobra.Command, flag string) []string {
	raw, _ := cmd.Flags().GetString(flag)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
