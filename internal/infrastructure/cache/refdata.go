// Package cache provides a read-through cache of reference data with
// PostgreSQL LISTEN/NOTIFY invalidation.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"salesledger/internal/core/id"
	"salesledger/internal/domain/refdata"
	"salesledger/pkg/logger"
)

// Channel is the NOTIFY channel the catalog triggers publish on. The payload
// is the organization id whose reference data changed.
const Channel = "refdata_changed"

// orgEntry holds everything cached for one organization.
type orgEntry struct {
	org            *refdata.Organization
	counterparties map[id.ID]*refdata.Counterparty
	items          map[id.ID]*refdata.Item
	accounts       map[id.ID]*refdata.Account
}

func newOrgEntry() *orgEntry {
	return &orgEntry{
		counterparties: make(map[id.ID]*refdata.Counterparty),
		items:          make(map[id.ID]*refdata.Item),
		accounts:       make(map[id.ID]*refdata.Account),
	}
}

// Stats are cumulative lookup counters.
type Stats struct {
	Organizations int
	Hits          int64
	Misses        int64
}

// RefData wraps a refdata.Gateway and keeps what it returned per organization
// until a notification for that organization arrives. Unknown ids are never
// cached.
type RefData struct {
	inner refdata.Gateway
	pool  *pgxpool.Pool

	mu     sync.RWMutex
	orgs   map[id.ID]*orgEntry
	hits   int64
	misses int64

	lifecycleMu sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	started     bool
}

var _ refdata.Gateway = (*RefData)(nil)

// NewRefData creates the cache. pool is used only by Start; nil means the
// cache is invalidated by explicit calls alone.
func NewRefData(inner refdata.Gateway, pool *pgxpool.Pool) *RefData {
	return &RefData{
		inner: inner,
		pool:  pool,
		orgs:  make(map[id.ID]*orgEntry),
	}
}

// GetOrganization implements refdata.Gateway.
func (c *RefData) GetOrganization(ctx context.Context, organizationID id.ID) (*refdata.Organization, error) {
	c.mu.RLock()
	if e, ok := c.orgs[organizationID]; ok && e.org != nil {
		c.mu.RUnlock()
		c.count(1, 0)
		return e.org, nil
	}
	c.mu.RUnlock()
	c.count(0, 1)

	org, err := c.inner.GetOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.entry(organizationID).org = org
	c.mu.Unlock()
	return org, nil
}

// GetCounterparty implements refdata.Gateway.
func (c *RefData) GetCounterparty(ctx context.Context, organizationID, counterpartyID id.ID) (*refdata.Counterparty, error) {
	c.mu.RLock()
	if e, ok := c.orgs[organizationID]; ok {
		if cp, ok := e.counterparties[counterpartyID]; ok {
			c.mu.RUnlock()
			c.count(1, 0)
			return cp, nil
		}
	}
	c.mu.RUnlock()
	c.count(0, 1)

	cp, err := c.inner.GetCounterparty(ctx, organizationID, counterpartyID)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.entry(organizationID).counterparties[counterpartyID] = cp
	c.mu.Unlock()
	return cp, nil
}

// GetItems implements refdata.Gateway. Only the ids missing from the cache
// reach the wrapped gateway.
func (c *RefData) GetItems(ctx context.Context, organizationID id.ID, itemIDs []id.ID) (map[id.ID]*refdata.Item, error) {
	return batch(ctx, c, organizationID, itemIDs,
		func(e *orgEntry) map[id.ID]*refdata.Item { return e.items },
		c.inner.GetItems)
}

// GetAccounts implements refdata.Gateway.
func (c *RefData) GetAccounts(ctx context.Context, organizationID id.ID, accountIDs []id.ID) (map[id.ID]*refdata.Account, error) {
	return batch(ctx, c, organizationID, accountIDs,
		func(e *orgEntry) map[id.ID]*refdata.Account { return e.accounts },
		c.inner.GetAccounts)
}

func batch[T any](
	ctx context.Context,
	c *RefData,
	organizationID id.ID,
	ids []id.ID,
	bucket func(*orgEntry) map[id.ID]*T,
	load func(context.Context, id.ID, []id.ID) (map[id.ID]*T, error),
) (map[id.ID]*T, error) {
	out := make(map[id.ID]*T, len(ids))
	var missing []id.ID

	c.mu.RLock()
	e := c.orgs[organizationID]
	for _, key := range id.Unique(ids) {
		if e != nil {
			if v, ok := bucket(e)[key]; ok {
				out[key] = v
				continue
			}
		}
		missing = append(missing, key)
	}
	c.mu.RUnlock()
	c.count(int64(len(out)), int64(len(missing)))

	if len(missing) == 0 {
		return out, nil
	}
	loaded, err := load(ctx, organizationID, missing)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	b := bucket(c.entry(organizationID))
	for key, v := range loaded {
		b[key] = v
		out[key] = v
	}
	c.mu.Unlock()
	return out, nil
}

// entry returns the organization's entry, creating it. Caller holds mu.
func (c *RefData) entry(organizationID id.ID) *orgEntry {
	e, ok := c.orgs[organizationID]
	if !ok {
		e = newOrgEntry()
		c.orgs[organizationID] = e
	}
	return e
}

func (c *RefData) count(hits, misses int64) {
	c.mu.Lock()
	c.hits += hits
	c.misses += misses
	c.mu.Unlock()
}

// Invalidate drops everything cached for one organization.
func (c *RefData) Invalidate(organizationID id.ID) {
	c.mu.Lock()
	delete(c.orgs, organizationID)
	c.mu.Unlock()
}

// InvalidateAll empties the cache.
func (c *RefData) InvalidateAll() {
	c.mu.Lock()
	c.orgs = make(map[id.ID]*orgEntry)
	c.mu.Unlock()
}

// Stats returns current cache statistics.
func (c *RefData) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{Organizations: len(c.orgs), Hits: c.hits, Misses: c.misses}
}

// Start begins listening for invalidation notifications.
func (c *RefData) Start(ctx context.Context) error {
	if c.pool == nil {
		return fmt.Errorf("refdata cache: no pool to listen on")
	}

	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()
	if c.started {
		return nil
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.started = true

	c.wg.Add(1)
	go c.listenLoop()
	logger.Info(c.ctx, "refdata cache started", "channel", Channel)
	return nil
}

// Stop ends the listener and waits for it to exit.
func (c *RefData) Stop() {
	c.lifecycleMu.Lock()
	if !c.started {
		c.lifecycleMu.Unlock()
		return
	}
	cancel := c.cancel
	c.started = false
	c.cancel = nil
	c.lifecycleMu.Unlock()

	cancel()
	c.wg.Wait()
	logger.Info(context.Background(), "refdata cache stopped")
}

// listenLoop holds a dedicated connection on LISTEN, reconnecting on failure.
// Everything cached is dropped on reconnect since notifications may have been
// missed in between.
func (c *RefData) listenLoop() {
	defer c.wg.Done()

	for c.ctx.Err() == nil {
		conn, err := c.pool.Acquire(c.ctx)
		if err != nil {
			logger.Error(c.ctx, "failed to acquire connection for LISTEN", "error", err)
			c.sleep(time.Second)
			continue
		}

		if _, err := conn.Exec(c.ctx, "LISTEN "+Channel); err != nil {
			logger.Error(c.ctx, "failed to LISTEN", "error", err)
			conn.Release()
			c.sleep(time.Second)
			continue
		}
		c.InvalidateAll()

		c.waitForNotifications(conn)
		conn.Release()
	}
}

func (c *RefData) waitForNotifications(conn *pgxpool.Conn) {
	for {
		ctx, cancel := context.WithTimeout(c.ctx, 30*time.Second)
		n, err := conn.Conn().WaitForNotification(ctx)
		cancel()

		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			if ctx.Err() != nil {
				continue
			}
			logger.Warn(c.ctx, "listen connection lost", "error", err)
			return
		}
		c.handleNotification(c.ctx, n.Payload)
	}
}

func (c *RefData) handleNotification(ctx context.Context, payload string) {
	orgID, err := id.Parse(strings.TrimSpace(payload))
	if err != nil {
		logger.Warn(ctx, "unparseable refdata notification, dropping cache", "payload", payload)
		c.InvalidateAll()
		return
	}
	logger.Debug(ctx, "refdata changed", "organization_id", orgID.String())
	c.Invalidate(orgID)
}

func (c *RefData) sleep(d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-c.ctx.Done():
	case <-t.C:
	}
}
