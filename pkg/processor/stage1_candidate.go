package processor

import "regexp"

type dbSignature struct {
	dbType  string
	pattern *regexp.Regexp
}

// portSignatures maps a well-known database port to its type and banner
// regex stage 1.
var portSignatures = map[int]dbSignature{
	3306:  {"mysql", regexp.MustCompile(`(?i)mysql|mariadb`)},
	5432:  {"postgresql", regexp.MustCompile(`(?i)postgresql|postgres|pg_`)},
	27017: {"mongodb", regexp.MustCompile(`(?i)mongodb|ismaster`)},
	6379:  {"redis", regexp.MustCompile(`(?i)redis|\+pong`)},
	1433:  {"mssql", regexp.MustCompile(`(?i)microsoft sql server|tds`)},
	1521:  {"oracle", regexp.MustCompile(`(?i)oracle|tns|ora-\d+`)},
	5984:  {"couchdb", regexp.MustCompile(`(?i)couchdb`)},
	9042:  {"cassandra", regexp.MustCompile(`(?i)cassandra|datastax`)},
	9200:  {"elastic", regexp.MustCompile(`(?i)elasticsearch|"cluster_name"`)},
}

// signatureFor returns the regex associated with dbType, if known.
func signatureFor(dbType string) *regexp.Regexp {
	for _, sig := range portSignatures {
		if sig.dbType == dbType {
			return sig.pattern
		}
	}
	return nil
}

func bannerMatches(dbType, banner string) bool {
	if banner == "" {
		return false
	}
	pattern := signatureFor(dbType)
	if pattern == nil {
		return false
	}
	return pattern.MatchString(banner)
}

// applyCandidateIdentification runs stage 1 over one event's data, in place.
// port and banner are read from data["port"]/data["banner"] if present;
// metadata is data["metadata"], created if absent.
func applyCandidateIdentification(data map[string]interface{}) {
	metadata := ensureMetadata(data)

	port, hasPort := intField(data, "port")
	banner, _ := data["banner"].(string)

	already, _ := metadata["database_candidate"].(bool)

	if already {
		candidateType, _ := metadata["candidate_type"].(string)
		if candidateType == "" && hasPort {
			if sig, ok := portSignatures[port]; ok {
				candidateType = sig.dbType
			}
		}
		if candidateType != "" && bannerMatches(candidateType, banner) {
			metadata["candidate_confidence"] = 0.85
			metadata["validation_method"] = "port_and_banner"
		} else if banner != "" {
			metadata["banner_mismatch"] = true
			metadata["validation_method"] = "port_only"
		}
		return
	}

	if !hasPort {
		return
	}
	sig, known := portSignatures[port]
	if !known {
		return
	}

	metadata["database_candidate"] = true
	metadata["candidate_type"] = sig.dbType
	if sig.pattern.MatchString(banner) {
		metadata["candidate_confidence"] = 0.85
		metadata["validation_method"] = "port_and_banner"
	} else {
		metadata["candidate_confidence"] = 0.5
		metadata["validation_method"] = "port_only"
	}
}

func ensureMetadata(data map[string]interface{}) map[string]interface{} {
	m, ok := data["metadata"].(map[string]interface{})
	if !ok {
		m = map[string]interface{}{}
		data["metadata"] = m
	}
	return m
}

func intField(data map[string]interface{}, key string) (int, bool) {
	switch v := data[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
