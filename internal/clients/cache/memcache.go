package cache

import (
	"github.com/pkg/errors"

	"go.uber.org/zap"
	"max.ks1230/expenses-app/internal/logger"

	"github.com/bradfitz/gomemcache/memcache"
)

// MemcacheClient keeps serialized store snapshots in memcached so the
// app rehydrates its last known state across restarts.
type MemcacheClient struct {
	client *memcache.Client
}

type config interface {
	Hosts() []string
}

func NewMemcache(config config) (*MemcacheClient, error) {
	logger.Info("memcached hosts", zap.Strings("hosts", config.Hosts()))
	mc := memcache.New(config.Hosts()...)
	return &MemcacheClient{mc}, mc.Ping()
}

func (mc *MemcacheClient) SaveSnapshot(key string, snapshot []byte) error {
	return mc.client.Set(&memcache.Item{
		Key:   key,
		Value: snapshot,
	})
}

// LoadSnapshot returns nil with no error when the key has never been
// written.
func (mc *MemcacheClient) LoadSnapshot(key string) ([]byte, error) {
	item, err := mc.client.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item.Value, nil
}

func (mc *MemcacheClient) DropSnapshot(key string) error {
	err := mc.client.Delete(key)
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return err
	}
	return nil
}
