package data

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/micheleparry/GovIdea/app/display/internal/biz"
	"github.com/micheleparry/GovIdea/app/radar/pkg/model"
)

const statsCacheKey = "govidea:stats"

type statsRepo struct {
	data *Data
	log  *log.Helper
}

func NewStatsRepo(data *Data, logger log.Logger) biz.StatsRepo {
	return &statsRepo{data: data, log: log.NewHelper(logger)}
}

// Stats 优先读缓存；缓存出错时直接查库
func (r *statsRepo) Stats(ctx context.Context) (*model.Stats, error) {
	rdb := r.data.rdb
	if rdb != nil {
		raw, err := rdb.Get(ctx, statsCacheKey).Bytes()
		switch {
		case err == nil:
			var st model.Stats
			if err := json.Unmarshal(raw, &st); err == nil {
				return &st, nil
			}
			r.log.Warnf("discarding malformed stats cache entry")
		case !stderrors.Is(err, redis.Nil):
			r.log.Warnf("read stats cache: %v", err)
		}
	}

	st, err := r.data.store.Stats(ctx)
	if err != nil {
		return nil, r.data.dbError("stats", err)
	}

	if rdb != nil {
		if raw, err := json.Marshal(st); err == nil {
			if err := rdb.Set(ctx, statsCacheKey, raw, r.data.statsTTL).Err(); err != nil {
				r.log.Warnf("write stats cache: %v", err)
			}
		}
	}
	return st, nil
}

// invalidateStats 写操作后清除统计缓存
func (d *Data) invalidateStats(ctx context.Context) {
	if d.rdb == nil {
		return
	}
	if err := d.rdb.Del(ctx, statsCacheKey).Err(); err != nil {
		d.log.Warnf("invalidate stats cache: %v", err)
	}
}
