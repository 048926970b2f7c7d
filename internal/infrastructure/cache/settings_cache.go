// Package cache keeps read-mostly master data in memory with invalidation
// driven by PostgreSQL LISTEN/NOTIFY.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"snackexport/internal/domain/masterdata"
	"snackexport/pkg/logger"
)

// SettingsChannel is the NOTIFY channel raised when system_configs changes.
const SettingsChannel = "system_configs_changed"

// SettingsCache implements masterdata.SettingsReader over another reader.
// The snapshot is loaded lazily and dropped when a notification arrives.
type SettingsCache struct {
	source masterdata.SettingsReader
	pool   *pgxpool.Pool

	mu       sync.RWMutex
	snapshot *masterdata.Settings

	// Lifecycle
	lifecycleMu sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	started     bool
}

var _ masterdata.SettingsReader = (*SettingsCache)(nil)

// NewSettingsCache creates a cache over source. pool may be nil, in which
// case the cache only invalidates through Invalidate.
func NewSettingsCache(source masterdata.SettingsReader, pool *pgxpool.Pool) *SettingsCache {
	return &SettingsCache{source: source, pool: pool}
}

// Snapshot returns the cached snapshot, loading it on first use.
func (c *SettingsCache) Snapshot(ctx context.Context) (masterdata.Settings, error) {
	c.mu.RLock()
	if c.snapshot != nil {
		s := *c.snapshot
		c.mu.RUnlock()
		return s, nil
	}
	c.mu.RUnlock()

	s, err := c.source.Snapshot(ctx)
	if err != nil {
		return masterdata.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	c.mu.Lock()
	c.snapshot = &s
	c.mu.Unlock()
	return s, nil
}

// Invalidate drops the cached snapshot.
func (c *SettingsCache) Invalidate() {
	c.mu.Lock()
	c.snapshot = nil
	c.mu.Unlock()
}

// Start begins listening for NOTIFY events.
func (c *SettingsCache) Start(ctx context.Context) error {
	if c.pool == nil {
		return nil
	}

	c.lifecycleMu.Lock()
	if c.started {
		c.lifecycleMu.Unlock()
		return nil
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.started = true
	c.lifecycleMu.Unlock()

	if _, err := c.Snapshot(c.ctx); err != nil {
		c.Stop()
		return err
	}

	c.wg.Add(1)
	go c.listenLoop()
	logger.Info(c.ctx, "settings cache started", "channel", SettingsChannel)
	return nil
}

// Stop stops the listener and waits for it to exit.
func (c *SettingsCache) Stop() {
	c.lifecycleMu.Lock()
	if !c.started {
		c.lifecycleMu.Unlock()
		return
	}
	cancel := c.cancel
	c.started = false
	c.cancel = nil
	c.lifecycleMu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
	logger.Info(context.Background(), "settings cache stopped")
}

func (c *SettingsCache) listenLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		conn, err := c.pool.Acquire(c.ctx)
		if err != nil {
			logger.Error(c.ctx, "failed to acquire connection for LISTEN", "error", err)
			c.sleep(time.Second)
			continue
		}

		if _, err := conn.Exec(c.ctx, "LISTEN "+SettingsChannel); err != nil {
			logger.Error(c.ctx, "failed to LISTEN", "error", err)
			conn.Release()
			c.sleep(time.Second)
			continue
		}

		// Changes made while the listener was down are not replayed.
		c.Invalidate()
		c.waitForNotifications(conn)
		conn.Release()
	}
}

func (c *SettingsCache) waitForNotifications(conn *pgxpool.Conn) {
	for {
		ctx, cancel := context.WithTimeout(c.ctx, 30*time.Second)
		notification, err := conn.Conn().WaitForNotification(ctx)
		cancel()

		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			if conn.Conn().IsClosed() {
				return
			}
			if errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			logger.Warn(c.ctx, "notification wait failed", "error", err)
			return
		}

		c.handleNotification(notification.Channel, notification.Payload)
	}
}

func (c *SettingsCache) handleNotification(channel, payload string) {
	if channel != SettingsChannel {
		return
	}
	logger.Debug(c.ctx, "settings changed", "key", payload)
	c.Invalidate()
}

func (c *SettingsCache) sleep(d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-c.ctx.Done():
	case <-t.C:
	}
}
