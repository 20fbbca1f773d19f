package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"shelter-finder-service/internal/domain"
	"shelter-finder-service/internal/platform/obs"
	"slices"

	"github.com/redis/go-redis/v9"
)

// Redis refuses positions closer to the poles than this (EPSG:3857 limit).
const redisMaxLatitude = 85.05112878

// Redis measures on a slightly larger sphere than the ranker; the query radius
// is widened so the result stays a superset of the exact-radius answer.
const (
	redisRadiusFactor = 1.001
	redisRadiusPadM   = 1.0
)

type redisRecord struct {
	Seq     int            `json:"seq"`
	Shelter domain.Shelter `json:"shelter"`
}

// RedisGeoCatalog stores shelters in a Redis GEO set (member = shelter ID) plus
// a hash holding each shelter's JSON record.
//
// Keys: "<prefix>:geo" and "<prefix>:data".
type RedisGeoCatalog struct {
	client  *redis.Client
	geoKey  string
	dataKey string
}

func NewRedisGeoCatalog(client *redis.Client, prefix string) *RedisGeoCatalog {
	if prefix == "" {
		prefix = "shelters"
	}
	return &RedisGeoCatalog{
		client:  client,
		geoKey:  prefix + ":geo",
		dataKey: prefix + ":data",
	}
}

// ReplaceAll atomically swaps the stored dataset for shelters.
func (r *RedisGeoCatalog) ReplaceAll(ctx context.Context, shelters []domain.Shelter) (err error) {
	defer obs.Time(ctx, "catalog.redis.ReplaceAll")(&err)

	if r.client == nil {
		return errors.New("redis geo catalog: client is nil")
	}
	if err := Validate(shelters); err != nil {
		return fmt.Errorf("replace redis shelters: %w", err)
	}

	locations := make([]*redis.GeoLocation, 0, len(shelters))
	records := make(map[string]any, len(shelters))
	for i, s := range shelters {
		if math.Abs(s.Coordinate.Latitude) > redisMaxLatitude {
			return fmt.Errorf("replace redis shelters: shelter %q: latitude %v outside redis range", s.ID, s.Coordinate.Latitude)
		}

		payload, err := json.Marshal(redisRecord{Seq: i, Shelter: s})
		if err != nil {
			return fmt.Errorf("replace redis shelters: encode %q: %w", s.ID, err)
		}
		records[s.ID] = payload
		locations = append(locations, &redis.GeoLocation{
			Name:      s.ID,
			Longitude: s.Coordinate.Longitude,
			Latitude:  s.Coordinate.Latitude,
		})
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.geoKey, r.dataKey)
		if len(locations) > 0 {
			pipe.GeoAdd(ctx, r.geoKey, locations...)
			pipe.HSet(ctx, r.dataKey, records)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace redis shelters: %w", err)
	}

	return nil
}

func (r *RedisGeoCatalog) ListShelters(ctx context.Context) (_ []domain.Shelter, err error) {
	defer obs.Time(ctx, "catalog.redis.ListShelters")(&err)

	if r.client == nil {
		return nil, errors.New("redis geo catalog: client is nil")
	}

	raw, err := r.client.HGetAll(ctx, r.dataKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list redis shelters: %w", err)
	}

	records := make([]redisRecord, 0, len(raw))
	for id, v := range raw {
		rec, err := decodeRecord(id, v)
		if err != nil {
			return nil, fmt.Errorf("list redis shelters: %w", err)
		}
		records = append(records, rec)
	}

	return sortedShelters(records), nil
}

// ListWithin uses GEORADIUS as a coarse prefilter and returns matches in
// catalog order.
func (r *RedisGeoCatalog) ListWithin(
	ctx context.Context,
	center domain.Coordinate,
	radiusMeters float64,
) (_ []domain.Shelter, err error) {
	defer obs.Time(ctx, "catalog.redis.ListWithin")(&err)

	if r.client == nil {
		return nil, errors.New("redis geo catalog: client is nil")
	}
	if err := center.Validate(); err != nil {
		return nil, fmt.Errorf("list redis shelters within radius: %w", err)
	}
	if math.IsNaN(radiusMeters) || radiusMeters < 0 {
		return nil, fmt.Errorf("list redis shelters within radius: invalid radius %v", radiusMeters)
	}
	if math.IsInf(radiusMeters, 1) || math.Abs(center.Latitude) > redisMaxLatitude {
		return r.ListShelters(ctx)
	}

	hits, err := r.client.GeoRadius(ctx, r.geoKey, center.Longitude, center.Latitude, &redis.GeoRadiusQuery{
		Radius: radiusMeters*redisRadiusFactor + redisRadiusPadM,
		Unit:   "m",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("list redis shelters within radius: georadius: %w", err)
	}
	if len(hits) == 0 {
		return []domain.Shelter{}, nil
	}

	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.Name)
	}

	values, err := r.client.HMGet(ctx, r.dataKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("list redis shelters within radius: hmget: %w", err)
	}

	records := make([]redisRecord, 0, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			// GEO member without a record; the dataset is being replaced.
			continue
		}
		rec, err := decodeRecord(ids[i], s)
		if err != nil {
			return nil, fmt.Errorf("list redis shelters within radius: %w", err)
		}
		records = append(records, rec)
	}

	return sortedShelters(records), nil
}

func decodeRecord(id, raw string) (redisRecord, error) {
	var rec redisRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return redisRecord{}, fmt.Errorf("decode shelter %q: %w", id, err)
	}
	return rec, nil
}

func sortedShelters(records []redisRecord) []domain.Shelter {
	slices.SortFunc(records, func(a, b redisRecord) int { return a.Seq - b.Seq })

	out := make([]domain.Shelter, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Shelter)
	}
	return out
}
