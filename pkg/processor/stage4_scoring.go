package processor

import "math"

var technologyComplexity = map[string]int{
	"kubernetes": 8,
	"docker":     5,
	"java":       5,
	"node":       4,
	"python":     4,
	"go":         4,
	"cobol":      9,
	"mainframe":  9,
	"unknown":    3,
}

var dbCategoryComplexity = map[string]int{
	"relational": 5,
	"document":   4,
	"key-value":  3,
	"search":     6,
	"unknown":    2,
}

var categoryRisk = map[string]int{
	"database":       7,
	"infrastructure": 5,
	"codebase":       4,
	"unknown":        3,
}

var environmentRisk = map[string]int{
	"production":  8,
	"staging":     5,
	"development": 2,
	"unknown":     4,
}

var legacyTechnologies = map[string]bool{
	"cobol": true, "mainframe": true, "perl": true, "vb6": true,
}

func clampScore(v float64) int {
	n := int(math.Round(v))
	if n < 1 {
		return 1
	}
	if n > 10 {
		return 10
	}
	return n
}

func frameworkComplexityBucket(count int) int {
	switch {
	case count == 0:
		return 1
	case count == 1:
		return 3
	case count <= 3:
		return 5
	default:
		return 7
	}
}

func dependencyCountBucket(count int) int {
	switch {
	case count <= 5:
		return 2
	case count <= 20:
		return 4
	case count <= 50:
		return 6
	default:
		return 8
	}
}

// applyScoring runs stage 4 over one event's data, computing the four
// clamped 1-10 scores of stage 4.
func applyScoring(entityKind string, data map[string]interface{}) {
	enrichment, _ := data["enrichment"].(map[string]interface{})
	if enrichment == nil {
		enrichment = map[string]interface{}{}
	}

	technology, _ := enrichment["technology"].(string)
	dbCategory, _ := enrichment["db_category"].(string)
	environment, _ := enrichment["environment"].(string)
	frameworks := stringList(enrichment["frameworks"])
	dependencyCount := len(stringList(data["dependencies"]))

	techScore, ok := technologyComplexity[technology]
	if !ok {
		techScore = technologyComplexity["unknown"]
	}
	dbScore, ok := dbCategoryComplexity[dbCategory]
	if !ok {
		dbScore = dbCategoryComplexity["unknown"]
	}
	frameworkScore := frameworkComplexityBucket(len(frameworks))
	depBucket := dependencyCountBucket(dependencyCount)

	complexity := clampScore(float64(techScore+frameworkScore+dbScore+depBucket) / 4.0)

	envRisk, ok := environmentRisk[environment]
	if !ok {
		envRisk = environmentRisk["unknown"]
	}
	catRisk, ok := categoryRisk[entityCategory(entityKind)]
	if !ok {
		catRisk = categoryRisk["unknown"]
	}
	riskBase := 0.4*float64(envRisk) + 0.6*float64(catRisk)
	if redaction, ok := data["redaction"].(map[string]interface{}); ok {
		if applied, _ := redaction["applied"].(bool); applied {
			riskBase += 6
		}
	}
	risk := clampScore(riskBase)

	effortRaw := float64(complexity)
	if legacyTechnologies[technology] {
		effortRaw += 3
	}
	if len(frameworks) >= 3 {
		effortRaw += 2
	}
	effortRaw += float64(depBucket) / 2
	effort := clampScore(effortRaw)

	overall := clampScore(0.2*float64(complexity) + 0.5*float64(risk) + 0.3*float64(effort))

	scoring := map[string]interface{}{
		"complexity_score": complexity,
		"risk_score":       risk,
		"effort_score":     effort,
		"overall_score":    overall,
		"factors":          scoringFactors(technology, dbCategory, environment, len(frameworks), dependencyCount),
	}
	data["scoring"] = scoring
}

func scoringFactors(technology, dbCategory, environment string, frameworkCount, dependencyCount int) []string {
	factors := make([]string, 0, 4)
	if technology != "" {
		factors = append(factors, "technology="+technology)
	}
	if dbCategory != "" {
		factors = append(factors, "db_category="+dbCategory)
	}
	factors = append(factors, "environment="+environment)
	if frameworkCount > 0 {
		factors = append(factors, "framework_count_high")
	}
	if dependencyCount > 50 {
		factors = append(factors, "dependency_count_high")
	}
	return factors
}
