package game

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

const redisOpenTablesKey = "tables:open"

type RedisTableStore struct {
	rdclient *redis.Client
}

func NewRedisTableStore(redisURL string, redisPW string, redisDB int) *RedisTableStore {
	rdclient := redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: redisPW,
		DB:       redisDB,
	})
	return &RedisTableStore{
		rdclient: rdclient,
	}
}

func redisTableKey(tableID string) string {
	return fmt.Sprintf("table:%s", tableID)
}

func (r *RedisTableStore) Load(ctx context.Context, tableID string) (*Table, error) {
	tableBytes, err := r.rdclient.Get(ctx, redisTableKey(tableID)).Bytes()
	if err == redis.Nil {
		return nil, TableNotFoundError{TableID: tableID}
	} else if err != nil {
		return nil, errors.Wrapf(err, "Unable to load table %s from redis", tableID)
	}
	return decodeTable(tableBytes)
}

func (r *RedisTableStore) Save(ctx context.Context, t *Table) error {
	tableBytes, err := encodeTable(t)
	if err != nil {
		return err
	}
	_, err = r.rdclient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisTableKey(t.ID), tableBytes, 0)
		if t.Joinable() {
			pipe.ZAdd(ctx, redisOpenTablesKey, &redis.Z{
				Score:  float64(t.CreatedAt.UnixNano()),
				Member: t.ID,
			})
		} else {
			pipe.ZRem(ctx, redisOpenTablesKey, t.ID)
		}
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "Unable to save table %s to redis", t.ID)
	}
	return nil
}

func (r *RedisTableStore) OpenTables(ctx context.Context) ([]string, error) {
	ids, err := r.rdclient.ZRange(ctx, redisOpenTablesKey, 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "Unable to list open tables from redis")
	}
	return ids, nil
}

func (r *RedisTableStore) Close() error {
	return r.rdclient.Close()
}
