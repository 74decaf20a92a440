package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"artassist/internal/models"
	"artassist/internal/redis"
)

const (
	redisSessionPrefix     = "artassist:session:"
	redisInvalidateChannel = "artassist:invalidate"
)

const (
	scopeUpdate = "update"
	scopeEnd    = "end"
)

type invalidateMessage struct {
	Origin    string `json:"origin"`
	SessionID string `json:"session_id"`
	Scope     string `json:"scope"`
}

// stateRedis caches session snapshots so another instance can pick a session up.
// Snapshots never carry the credential.
type stateRedis struct {
	client *redis.Client
	ttl    time.Duration
}

func newStateCache(client *redis.Client, ttl time.Duration) *stateRedis {
	if client == nil {
		return nil
	}
	return &stateRedis{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return redisSessionPrefix + id
}

// startListener delivers invalidations until ctx is done.
func (r *stateRedis) startListener(ctx context.Context, handler func(invalidateMessage)) error {
	if r == nil || handler == nil {
		return nil
	}
	pubsub, err := r.client.Subscribe(ctx, redisInvalidateChannel)
	if err != nil {
		return err
	}
	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var inv invalidateMessage
				if err := json.Unmarshal([]byte(msg.Payload), &inv); err != nil {
					log.Printf("worker invalidation decode failed: %v", err)
					continue
				}
				handler(inv)
			}
		}
	}()
	return nil
}

// publishInvalidation broadcast invalidate msg
func (r *stateRedis) publishInvalidation(msg invalidateMessage) {
	if r == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("worker invalidation marshal failed: %v", err)
		return
	}
	if err := r.client.Publish(context.Background(), redisInvalidateChannel, payload); err != nil {
		log.Printf("worker publish invalidation failed: %v", err)
	}
}

func (r *stateRedis) cacheSession(session *models.Session) {
	if r == nil || session == nil || session.ID == "" {
		return
	}
	cached := *session
	cached.CredentialConfigured = false
	cached.CredentialHint = ""
	cached.Provider = ""
	data, err := json.Marshal(&cached)
	if err != nil {
		log.Printf("worker rdb session marshal failed: %v", err)
		return
	}
	if err := r.client.Set(context.Background(), sessionKey(session.ID), data, r.ttl); err != nil {
		log.Printf("worker rdb session failed: %v", err)
	}
}

func (r *stateRedis) loadSession(id string) (*models.Session, bool) {
	if r == nil || id == "" {
		return nil, false
	}
	raw, err := r.client.Get(context.Background(), sessionKey(id))
	if err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) {
			log.Printf("worker load session rdb failed: %v", err)
		}
		return nil, false
	}
	var session models.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		log.Printf("worker decode session rdb failed: %v", err)
		return nil, false
	}
	if session.ID != id {
		return nil, false
	}
	return &session, true
}

func (r *stateRedis) invalidateSession(id string) {
	if r == nil || id == "" {
		return
	}
	if err := r.client.Del(context.Background(), sessionKey(id)); err != nil && !errors.Is(err, redis.ErrCacheMiss) {
		log.Printf("worker invalidate session rdb failed: %v", err)
	}
}
