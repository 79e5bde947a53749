package service

import (
	"strings"
	"sync"

	"github.com/buraksezer/consistent"
	"github.com/spaolacci/murmur3"
	"golang.org/x/exp/slices"
)

type hasher struct{}

func (hasher) Sum64(data []byte) uint64 {
	return murmur3.Sum64(data)
}

type member string

func (m member) String() string {
	return string(m)
}

// WorkerDistributor spreads borrows over the library workers of a book. The
// same key always lands on the same worker while the worker list is stable.
type WorkerDistributor struct {
	mu    sync.Mutex
	rings map[string]*consistent.Consistent
}

func NewWorkerDistributor() *WorkerDistributor {
	return &WorkerDistributor{rings: make(map[string]*consistent.Consistent)}
}

func (d *WorkerDistributor) ring(workers []string) *consistent.Consistent {
	sorted := slices.Clone(workers)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	id := strings.Join(sorted, ",")

	d.mu.Lock()
	defer d.mu.Unlock()
	if r, ok := d.rings[id]; ok {
		return r
	}
	members := make([]consistent.Member, 0, len(sorted))
	for _, w := range sorted {
		members = append(members, member(w))
	}
	r := consistent.New(members, consistent.Config{
		PartitionCount:    71,
		ReplicationFactor: 20,
		Load:              1.25,
		Hasher:            hasher{},
	})
	d.rings[id] = r
	return r
}

// Pick returns the worker responsible for key, or "" when there is none.
func (d *WorkerDistributor) Pick(workers []string, key string) string {
	switch len(workers) {
	case 0:
		return ""
	case 1:
		return workers[0]
	}
	return d.ring(workers).LocateKey([]byte(key)).String()
}
