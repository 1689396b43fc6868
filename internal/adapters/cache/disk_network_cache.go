package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"trip-route-service/internal/domain"
)

// DiskNetworkCache persists serialized road networks as JSON files under a
// dedicated directory, one file per city key. Entry age is taken from file
// modification time; stale entries are treated as misses and removed by Sweep.
type DiskNetworkCache struct {
	Dir string
}

func NewDiskNetworkCache(dir string) (*DiskNetworkCache, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("network cache: dir must be non-empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("network cache: create dir %q: %w", dir, err)
	}
	return &DiskNetworkCache{Dir: dir}, nil
}

// networkFile is the on-disk shape: maps flattened to slices so the file
// stays stable and diffable across serializations.
type networkFile struct {
	Nodes []domain.Node `json:"nodes"`
	Edges []domain.Edge `json:"edges"`
}

func (c *DiskNetworkCache) path(key string) string {
	return filepath.Join(c.Dir, key+".json")
}

// Load returns the cached network for key when present and younger than maxAge.
func (c *DiskNetworkCache) Load(ctx context.Context, key string, maxAge time.Duration) (*domain.RoadNetwork, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	path := c.path(key)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("network cache: stat %q: %w", path, err)
	}

	if time.Since(info.ModTime()) >= maxAge {
		return nil, false, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("network cache: read %q: %w", path, err)
	}

	var file networkFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, false, fmt.Errorf("network cache: parse %q: %w", path, err)
	}

	network := domain.NewRoadNetwork()
	for _, n := range file.Nodes {
		network.AddNode(n)
	}
	for _, e := range file.Edges {
		network.AddEdge(e)
	}
	return network, true, nil
}

// Store writes the network for key, replacing any previous entry atomically.
func (c *DiskNetworkCache) Store(ctx context.Context, key string, network *domain.RoadNetwork) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if network == nil {
		return errors.New("network cache: network is nil")
	}

	file := networkFile{
		Nodes: make([]domain.Node, 0, len(network.Nodes)),
		Edges: make([]domain.Edge, 0, network.EdgeCount()),
	}
	for _, n := range network.Nodes {
		file.Nodes = append(file.Nodes, n)
	}
	for _, edges := range network.Outgoing {
		file.Edges = append(file.Edges, edges...)
	}

	raw, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("network cache: marshal %q: %w", key, err)
	}

	path := c.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("network cache: write %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("network cache: rename %q: %w", tmp, err)
	}
	return nil
}

// Sweep deletes cached networks older than maxAge and reports the count.
func (c *DiskNetworkCache) Sweep(ctx context.Context, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		return 0, fmt.Errorf("network cache: read dir %q: %w", c.Dir, err)
	}

	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return removed, fmt.Errorf("network cache: stat %q: %w", entry.Name(), err)
		}
		if time.Since(info.ModTime()) <= maxAge {
			continue
		}

		if err := os.Remove(filepath.Join(c.Dir, entry.Name())); err != nil {
			return removed, fmt.Errorf("network cache: remove %q: %w", entry.Name(), err)
		}
		removed++
	}
	return removed, nil
}
