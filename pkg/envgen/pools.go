// Package envgen implements the seeded test-environment generator: a
// deterministic docker-compose document plus manifest synthesised from fixed
// service pools.
package envgen

// servicePool describes one candidate service the generator may place.
type servicePool struct {
	Department string
	Technology string
	Image      string
	Port       int
	MinCount   int
	MaxCount   int
}

// pools groups servicePool entries by category. Counts per category are
// chosen within [MinCount, MaxCount] independently.
var pools = map[string][]servicePool{
	"web": {
		{Department: "web", Technology: "nginx", Image: "nginx:1.27-alpine", Port: 80, MinCount: 1, MaxCount: 3},
		{Department: "web", Technology: "apache", Image: "httpd:2.4-alpine", Port: 80, MinCount: 0, MaxCount: 2},
	},
	"app": {
		{Department: "app", Technology: "node", Image: "node:20-slim", Port: 3000, MinCount: 1, MaxCount: 3},
		{Department: "app", Technology: "python", Image: "python:3.12-slim", Port: 8000, MinCount: 0, MaxCount: 2},
		{Department: "app", Technology: "golang", Image: "golang:1.23-alpine", Port: 8080, MinCount: 0, MaxCount: 2},
	},
	"database": {
		{Department: "db", Technology: "postgresql", Image: "postgres:16-alpine", Port: 5432, MinCount: 1, MaxCount: 2},
		{Department: "db", Technology: "mysql", Image: "mysql:8.4", Port: 3306, MinCount: 0, MaxCount: 2},
		{Department: "db", Technology: "mongodb", Image: "mongo:7", Port: 27017, MinCount: 0, MaxCount: 1},
		{Department: "db", Technology: "redis", Image: "redis:7-alpine", Port: 6379, MinCount: 0, MaxCount: 2},
	},
	"messaging": {
		{Department: "msg", Technology: "rabbitmq", Image: "rabbitmq:3.13-management-alpine", Port: 5672, MinCount: 0, MaxCount: 1},
		{Department: "msg", Technology: "kafka", Image: "bitnami/kafka:3.7", Port: 9092, MinCount: 0, MaxCount: 1},
	},
	"infrastructure": {
		{Department: "infra", Technology: "consul", Image: "hashicorp/consul:1.19", Port: 8500, MinCount: 0, MaxCount: 1},
		{Department: "infra", Technology: "vault", Image: "hashicorp/vault:1.17", Port: 8200, MinCount: 0, MaxCount: 1},
	},
}

// poolOrder fixes iteration order across pool categories so generation is
// deterministic for a given seed (map iteration order is not).
var poolOrder = []string{"web", "app", "database", "messaging", "infrastructure"}
