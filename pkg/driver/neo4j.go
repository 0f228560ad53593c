package driver

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/soundprediction/graphmend/pkg/types"
)

// Neo4jDriver implements the GraphDriver interface for Neo4j databases.
type Neo4jDriver struct {
	client   neo4j.DriverWithContext
	database string
}

// NewNeo4jDriver creates a new Neo4j driver instance.
func NewNeo4jDriver(uri, username, password, database string) (*Neo4jDriver, error) {
	client, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if database == "" {
		database = "neo4j"
	}

	return &Neo4jDriver{
		client:   client,
		database: database,
	}, nil
}

// VerifyConnectivity checks that the store is reachable. Failures wrap
// types.ErrStoreUnavailable so callers can abort before doing any work.
func (n *Neo4jDriver) VerifyConnectivity(ctx context.Context) error {
	if err := n.client.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("%w: %v", types.ErrStoreUnavailable, err)
	}
	return nil
}

// FetchEntities returns every entity matching the filter together with its
// relationship degree. count(DISTINCT r) deduplicates by edge identity, so
// an edge is counted once even when the entity is both of its endpoints.
func (n *Neo4jDriver) FetchEntities(ctx context.Context, filter EntityFilter) ([]types.Entity, error) {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	query, params := entityQuery(filter)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrStoreUnavailable, err)
	}

	records, ok := result.([]*neo4j.Record)
	if !ok {
		return nil, fmt.Errorf("unexpected result type: %T", result)
	}

	entities := make([]types.Entity, 0, len(records))
	for _, record := range records {
		name, _ := record.Get("entity_name")
		entityType, _ := record.Get("entity_type")
		count, _ := record.Get("relationship_count")

		nameStr, ok := name.(string)
		if !ok {
			continue
		}
		typeStr, _ := entityType.(string)

		var degree int
		if c, ok := count.(int64); ok {
			degree = int(c)
		}

		entities = append(entities, types.Entity{
			Name:              nameStr,
			Type:              typeStr,
			RelationshipCount: degree,
		})
	}

	return entities, nil
}

// Close releases the underlying connection.
func (n *Neo4jDriver) Close(ctx context.Context) error {
	return n.client.Close(ctx)
}
