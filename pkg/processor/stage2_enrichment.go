package processor

import "strings"

var environmentTokens = map[string][]string{
	"production":  {"prod", "prd", "live", "main"},
	"staging":     {"stage", "staging", "stg", "uat"},
	"development": {"dev", "develop", "local", "test"},
}

// detectEnvironment substring-matches hostname/connectionString against the
// fixed token sets of stage 2.
func detectEnvironment(hostname, connectionString string) string {
	haystack := strings.ToLower(hostname + " " + connectionString)
	for _, env := range []string{"production", "staging", "development"} {
		for _, tok := range environmentTokens[env] {
			if strings.Contains(haystack, tok) {
				return env
			}
		}
	}
	return "unknown"
}

var dbCategoryByType = map[string]string{
	"mysql":      "relational",
	"postgresql": "relational",
	"mssql":      "relational",
	"oracle":     "relational",
	"mongodb":    "document",
	"couchdb":    "document",
	"redis":      "key-value",
	"cassandra":  "key-value",
	"elastic":    "search",
}

// applyEnrichment runs stage 2 over one event's data, attaching an
// "enrichment" object.
func applyEnrichment(entityKind string, data map[string]interface{}) {
	metadata := ensureMetadata(data)
	hostname, _ := data["hostname"].(string)
	connStr, _ := data["connection_string"].(string)

	enrichment, ok := data["enrichment"].(map[string]interface{})
	if !ok {
		enrichment = map[string]interface{}{}
	}

	enrichment["entity_label"] = entityLabel(entityKind, data)
	enrichment["entity_category"] = entityCategory(entityKind)
	enrichment["environment"] = detectEnvironment(hostname, connStr)

	switch entityCategory(entityKind) {
	case "database":
		candidateType, _ := metadata["candidate_type"].(string)
		if candidateType == "" {
			candidateType, _ = data["db_type"].(string)
		}
		enrichment["technology"] = candidateType
		if cat, ok := dbCategoryByType[candidateType]; ok {
			enrichment["db_category"] = cat
		} else {
			enrichment["db_category"] = "unknown"
		}
	case "codebase":
		if tech, ok := data["language"].(string); ok {
			enrichment["technology"] = tech
		}
		enrichment["frameworks"] = stringList(data["frameworks"])
	case "infrastructure":
		if os, ok := data["os_family"].(string); ok {
			enrichment["os_family"] = os
		}
		if tech, ok := data["technology"].(string); ok {
			enrichment["technology"] = tech
		}
	}

	data["enrichment"] = enrichment
}

func entityLabel(entityKind string, data map[string]interface{}) string {
	if name, ok := data["name"].(string); ok && name != "" {
		return name
	}
	if host, ok := data["hostname"].(string); ok && host != "" {
		return host
	}
	return entityKind
}

func stringList(v interface{}) []string {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
