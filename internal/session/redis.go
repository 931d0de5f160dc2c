package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const durableTTL = 30 * 24 * time.Hour

// RedisStore is the durable scope: "remember me" sessions survive gateway
// restarts for up to 30 days.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(id string) string { return "forma:session:" + id }
func prefsKey(id string) string   { return "forma:prefs:" + id }

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, sessionKey(s.ID), data, durableTTL).Err()
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete removes a session. Preference keys are left alone so a user's
// language and theme survive sign-out.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, sessionKey(id)).Err()
}

func (r *RedisStore) SavePrefs(ctx context.Context, id string, p Prefs) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, prefsKey(id), data, durableTTL).Err()
}

func (r *RedisStore) Prefs(ctx context.Context, id string) (Prefs, error) {
	data, err := r.client.Get(ctx, prefsKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return DefaultPrefs(), nil
	}
	if err != nil {
		return Prefs{}, err
	}

	var p Prefs
	if err := json.Unmarshal(data, &p); err != nil {
		return Prefs{}, err
	}
	return p, nil
}
