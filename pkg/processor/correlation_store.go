package processor

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/go-redis/redis/v8"
)

// Snapshot is the minimal fact the correlation stage remembers about one
// previously-seen entity.
type Snapshot struct {
	EntityID  string `json:"entity_id"`
	Kind      string `json:"kind"`
	Hostname  string `json:"hostname,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`
}

// CorrelationStore is the process-local index of recently-seen entities
// (stage 5). Cross-process correlation is backed by an external key-value
// index; the in-memory map is a cache seeded from it.
type CorrelationStore interface {
	Upsert(ctx context.Context, s Snapshot)
	ByHost(ctx context.Context, hostname, ip string) []Snapshot
}

// memoryStore is the in-memory, single-process implementation.
type memoryStore struct {
	mu     sync.RWMutex
	byID   map[string]Snapshot
	byHost map[string][]string
}

func NewMemoryStore() CorrelationStore {
	return &memoryStore{byID: map[string]Snapshot{}, byHost: map[string][]string{}}
}

func (m *memoryStore) Upsert(ctx context.Context, s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[s.EntityID] = s
	for _, key := range hostKeys(s.Hostname, s.IPAddress) {
		m.byHost[key] = appendUnique(m.byHost[key], s.EntityID)
	}
}

func (m *memoryStore) ByHost(ctx context.Context, hostname, ip string) []Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Snapshot
	seen := map[string]bool{}
	for _, key := range hostKeys(hostname, ip) {
		for _, id := range m.byHost[key] {
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, m.byID[id])
		}
	}
	return out
}

func hostKeys(hostname, ip string) []string {
	var keys []string
	if hostname != "" {
		keys = append(keys, "host:"+hostname)
	}
	if ip != "" {
		keys = append(keys, "ip:"+ip)
	}
	return keys
}

func appendUnique(list []string, v string) []string {
	for _, e := range list {
		if e == v {
			return list
		}
	}
	return append(list, v)
}

// redisSeededStore wraps an in-memory cache that is seeded from (and
// persists to) a Redis index, giving correlation facts a lifetime beyond one
// process.
type redisSeededStore struct {
	cache *memoryStore
	rdb   *redis.Client
}

func NewRedisSeededStore(rdb *redis.Client) CorrelationStore {
	return &redisSeededStore{cache: &memoryStore{byID: map[string]Snapshot{}, byHost: map[string][]string{}}, rdb: rdb}
}

func (r *redisSeededStore) Upsert(ctx context.Context, s Snapshot) {
	r.cache.Upsert(ctx, s)
	if r.rdb == nil {
		return
	}
	body, err := json.Marshal(s)
	if err != nil {
		return
	}
	r.rdb.Set(ctx, "correlation:entity:"+s.EntityID, body, 0)
	for _, key := range hostKeys(s.Hostname, s.IPAddress) {
		r.rdb.SAdd(ctx, "correlation:"+key, s.EntityID)
	}
}

func (r *redisSeededStore) ByHost(ctx context.Context, hostname, ip string) []Snapshot {
	local := r.cache.ByHost(ctx, hostname, ip)
	if r.rdb == nil {
		return local
	}
	seen := map[string]bool{}
	for _, s := range local {
		seen[s.EntityID] = true
	}
	for _, key := range hostKeys(hostname, ip) {
		ids, err := r.rdb.SMembers(ctx, "correlation:"+key).Result()
		if err != nil {
			continue
		}
		for _, id := range ids {
			if seen[id] {
				continue
			}
			body, err := r.rdb.Get(ctx, "correlation:entity:"+id).Result()
			if err != nil {
				continue
			}
			var s Snapshot
			if json.Unmarshal([]byte(body), &s) == nil {
				seen[id] = true
				local = append(local, s)
				r.cache.Upsert(ctx, s)
			}
		}
	}
	return local
}
