// Package graphmend maintains knowledge graphs built from ingested CV and
// job-profile documents by finding and merging duplicate entities whose names
// differ only in casing or separators.
//
// The pipeline has two deliberate halves with an operator in the middle:
// identification reads the entity catalog from the graph store and writes a
// reviewable merge plan; execution replays a reviewed plan against the graph
// service's mutation API and writes a report. Nothing is merged without a
// plan file.
//
// # Basic Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	client, err := graphmend.NewClient(cfg, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Identify duplicates and write a plan for review.
//	ops, planPath, err := client.IdentifyDuplicates(ctx, graphmend.IdentifyOptions{
//		EntityTypes: []string{"DOMAIN_PROFILE", "PROFILE"},
//	})
//
//	// After review, execute the plan.
//	report, reportPath, err := client.ExecutePlan(ctx, planPath, graphmend.ExecuteOptions{})
//
// A sibling extract/clean flow removes entity families wholesale: extract
// writes the matching entities to a file, clean deletes every entity listed
// in it.
package graphmend
