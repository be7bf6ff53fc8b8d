package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/coocood/freecache"
	"github.com/sirupsen/logrus"
)

// TieredCache is a cache implementation combining a local & remote cache
type TieredCache struct {
	localGoCache *freecache.Cache
	remoteCache  RemoteCache
}

type cachedValue struct {
	Version uint64          `json:"i"`
	Timeout uint64          `json:"t"`
	Value   json.RawMessage `json:"v"`
}

var ErrCacheMiss error = errors.New("cache miss")

type RemoteCache interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	SetBytes(ctx context.Context, key string, value []byte, expiration time.Duration) error

	Get(ctx context.Context, key string, returnValue any) (any, error)
	GetBytes(ctx context.Context, key string) ([]byte, error)
}

func NewTieredCache(cacheSize int, redisAddress string, redisPrefix string) (*TieredCache, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	var remoteCache RemoteCache
	if redisAddress != "" {
		var err error
		remoteCache, err = InitRedisCache(ctx, redisAddress, redisPrefix)
		if err != nil {
			logrus.WithError(err).Errorf("error initializing remote redis cache. address: %v", redisAddress)
			return nil, err
		}
	}

	return &TieredCache{
		remoteCache:  remoteCache,
		localGoCache: freecache.NewCache(cacheSize * 1024 * 1024),
	}, nil
}

func (cache *TieredCache) Set(key string, value interface{}, expiration time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	valueData, err := json.Marshal(value)
	if err != nil {
		return err
	}

	cacheValue := cachedValue{
		Version: 1,
		Value:   valueData,
	}
	if expiration > 0 {
		cacheValue.Timeout = uint64(time.Now().Add(expiration).Unix())
	}

	valueMarshal, err := json.Marshal(cacheValue)
	if err != nil {
		return err
	}
	cache.localGoCache.Set([]byte(key), valueMarshal, int(expiration.Seconds()))
	if cache.remoteCache != nil {
		return cache.remoteCache.SetBytes(ctx, key, valueMarshal, expiration)
	}

	return nil
}

func (cache *TieredCache) Get(key string, returnValue interface{}) error {
	valueMarshal, err := cache.localGoCache.Get([]byte(key))
	if err == nil {
		if cacheValue, decodeErr := decodeCachedValue(valueMarshal); decodeErr == nil {
			return json.Unmarshal(cacheValue.Value, returnValue)
		}
	}

	if cache.remoteCache == nil {
		return ErrCacheMiss
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	valueMarshal, err = cache.remoteCache.GetBytes(ctx, key)
	if err != nil {
		return ErrCacheMiss
	}

	cacheValue, err := decodeCachedValue(valueMarshal)
	if err != nil {
		return ErrCacheMiss
	}

	// repopulate local tier
	localTtl := 0
	if cacheValue.Timeout > 0 {
		localTtl = int(time.Until(time.Unix(int64(cacheValue.Timeout), 0)).Seconds())
		if localTtl <= 0 {
			return ErrCacheMiss
		}
	}
	cache.localGoCache.Set([]byte(key), valueMarshal, localTtl)

	return json.Unmarshal(cacheValue.Value, returnValue)
}

func decodeCachedValue(valueMarshal []byte) (*cachedValue, error) {
	cacheValue := &cachedValue{}
	err := json.Unmarshal(valueMarshal, cacheValue)
	if err != nil {
		return nil, err
	}
	if cacheValue.Timeout > 0 && time.Now().Unix() > int64(cacheValue.Timeout) {
		return nil, ErrCacheMiss
	}

	return cacheValue, nil
}
