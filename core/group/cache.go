package group

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ministerio-jovenes/asistencia/core"
)

// fetchTimeout bounds a shared fetch, which outlives the caller that started it.
var fetchTimeout = 15 * time.Second

// Fetcher loads the full group list, ordered by name.
type Fetcher interface {
	QueryAll(ctx context.Context) ([]Group, error)
}

// Cache holds the group list for the whole process.
// It is loaded once, shared by concurrent callers, and only refreshed through Reload.
type Cache struct {
	fetcher Fetcher
	logger  core.Logger
	flight  singleflight.Group

	mu      sync.RWMutex
	groups  []Group
	byID    map[int]Group
	loaded  bool
	loading int
	gen     uint64 // bumped by Reload; results of older generations are dropped
}

func NewCache(fetcher Fetcher, logger core.Logger) *Cache {
	return &Cache{
		fetcher: fetcher,
		logger:  logger,
		byID:    make(map[int]Group),
	}
}

// Load returns the cached groups, fetching them on first use.
// Concurrent calls made before the first fetch completes share that fetch.
func (c *Cache) Load(ctx context.Context) ([]Group, error) {
	c.mu.RLock()
	if c.loaded {
		groups := c.copyGroups()
		c.mu.RUnlock()
		return groups, nil
	}
	gen := c.gen
	c.mu.RUnlock()
	return c.fetch(ctx, gen, false)
}

// Reload forces a fresh fetch and replaces the cache once it succeeds.
// On failure the previous groups stay in place.
func (c *Cache) Reload(ctx context.Context) ([]Group, error) {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.mu.Unlock()
	return c.fetch(ctx, gen, true)
}

func (c *Cache) fetch(ctx context.Context, gen uint64, force bool) ([]Group, error) {
	ch := c.flight.DoChan(strconv.FormatUint(gen, 10), func() (interface{}, error) {
		c.mu.Lock()
		if !force && c.loaded && c.gen == gen { // a previous flight already filled the cache
			groups := c.copyGroups()
			c.mu.Unlock()
			return groups, nil
		}
		c.loading++
		c.mu.Unlock()

		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		groups, err := c.fetcher.QueryAll(fctx)
		cancel()

		c.mu.Lock()
		defer c.mu.Unlock()
		c.loading--
		if err != nil {
			return nil, err
		}
		if c.gen != gen {
			c.logger.Debug("group cache: dropping stale load", map[string]interface{}{"gen": gen, "current": c.gen})
			return groups, nil
		}
		c.groups = groups
		c.byID = make(map[int]Group, len(groups))
		for _, g := range groups {
			c.byID[g.ID] = g
		}
		c.loaded = true
		return c.copyGroups(), nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]Group), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// must be called with c.mu held
func (c *Cache) copyGroups() []Group {
	groups := make([]Group, len(c.groups))
	copy(groups, c.groups)
	return groups
}

// Groups returns the cached groups, empty until loaded.
func (c *Cache) Groups() []Group {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.copyGroups()
}

func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

func (c *Cache) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading > 0
}

// GetByID looks the group up in memory only. Callers must not assume freshness.
func (c *Cache) GetByID(id int) (Group, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return Group{}, false
	}
	g, ok := c.byID[id]
	return g, ok
}

// Name returns the cached group name, or "" when unknown.
func (c *Cache) Name(id int) string {
	g, _ := c.GetByID(id)
	return g.Name
}

// Color returns the cached group color, or DefaultColor when unknown.
func (c *Cache) Color(id int) string {
	g, _ := c.GetByID(id)
	return g.DisplayColor()
}
