package driver

// entityQuery builds the Cypher query and parameter map for an entity fetch.
// The query text is constant; the filter values travel exclusively as bound
// parameters so a pattern containing quotes or Cypher syntax cannot alter
// the query.
func entityQuery(filter EntityFilter) (string, map[string]any) {
	query := `
		MATCH (n:Entity)
		WHERE ($name_pattern = '' OR n.name =~ $name_pattern)
		  AND ($type_pattern = '' OR coalesce(n.entity_type, '') =~ $type_pattern)
		  AND (size($types) = 0 OR n.entity_type IN $types)
		OPTIONAL MATCH (n)-[r]-()
		WITH n.name AS entity_name,
		     coalesce(n.entity_type, '') AS entity_type,
		     count(DISTINCT r) AS relationship_count
		RETURN entity_name, entity_type, relationship_count
		ORDER BY entity_type, entity_name
	`

	types := filter.Types
	if types == nil {
		types = []string{}
	}

	params := map[string]any{
		"name_pattern": filter.NamePattern,
		"type_pattern": filter.TypePattern,
		"types":        types,
	}

	return query, params
}
