package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/micheleparry/GovIdea/app/display/internal/conf"
	"github.com/micheleparry/GovIdea/app/radar/pkg/storage"
)

const defaultStatsTTL = 30 * time.Second

type Data struct {
	db       *sql.DB
	store    *storage.Storage
	rdb      *redis.Client
	statsTTL time.Duration
	log      *log.Helper
}

func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	helper := log.NewHelper(logger)
	ctx := context.Background()

	driver := c.Database.Driver
	if driver == "" {
		driver = "postgres"
	}
	db, err := sql.Open(driver, c.Database.Source)
	if err != nil {
		return nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	store := storage.New(db)
	if err := store.InitSchema(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to init schema: %w", err)
	}

	var rdb *redis.Client
	ttl := defaultStatsTTL
	if c.Redis != nil && c.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       int(c.Redis.Db),
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			// 缓存不可用时降级为直连数据库
			helper.Warnf("redis unavailable, stats cache disabled: %v", err)
			rdb.Close()
			rdb = nil
		}
		if c.Redis.StatsTtl != "" {
			if d, err := time.ParseDuration(c.Redis.StatsTtl); err == nil {
				ttl = d
			}
		}
	}

	d := newData(db, rdb, ttl, logger)
	cleanup := func() {
		helper.Info("closing the data resources")
		if rdb != nil {
			rdb.Close()
		}
		db.Close()
	}
	return d, cleanup, nil
}

func newData(db *sql.DB, rdb *redis.Client, ttl time.Duration, logger log.Logger) *Data {
	return &Data{
		db:       db,
		store:    storage.New(db),
		rdb:      rdb,
		statsTTL: ttl,
		log:      log.NewHelper(logger),
	}
}

// dbError 记录底层错误，对外只返回通用的 DB_ERROR
func (d *Data) dbError(op string, err error) error {
	d.log.Errorf("%s: %v", op, err)
	return errors.InternalServer("DB_ERROR", "database operation failed")
}
