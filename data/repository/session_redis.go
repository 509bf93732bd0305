package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/hemobase/hemobase/structs"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "sess:"
	userIndexPrefix  = "sess:user:"
)

// upsertSessionScript implements the atomic reuse-or-create decision for
// one user slot. A live existing session only has its identity snapshot
// and provenance replaced; an expired one has already been evicted by the
// key TTL, so the slot is rebuilt with fresh timestamps.
const upsertSessionScript = `
local sid = redis.call("GET", KEYS[1])
if sid then
  local key = "sess:" .. sid
  if redis.call("EXISTS", key) == 1 then
    redis.call("HSET", key, "data", ARGV[2])
    return sid
  end
end
local key = "sess:" .. ARGV[1]
redis.call("HSET", key, "data", ARGV[2], "user_id", ARGV[3], "created_at", ARGV[4], "expire_at", ARGV[5])
redis.call("PEXPIREAT", key, tonumber(ARGV[5]))
redis.call("SET", KEYS[1], ARGV[1])
redis.call("PEXPIREAT", KEYS[1], tonumber(ARGV[5]))
return ARGV[1]
`

const deleteSessionScript = `
local key = "sess:" .. ARGV[1]
local uid = redis.call("HGET", key, "user_id")
local existed = redis.call("DEL", key)
if uid then
  local idx = "sess:user:" .. uid
  if redis.call("GET", idx) == ARGV[1] then
    redis.call("DEL", idx)
  end
end
return existed
`

// clearUserIndexScript drops a user index entry only if it still points
// at the given session.
const clearUserIndexScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  redis.call("DEL", KEYS[1])
end
return 0
`

var (
	upsertSessionLua  = redis.NewScript(upsertSessionScript)
	deleteSessionLua  = redis.NewScript(deleteSessionScript)
	clearUserIndexLua = redis.NewScript(clearUserIndexScript)
)

// redisSessionRepository keeps each session in a hash keyed by session id
// with a per-user index key pointing at it. Both keys expire at the
// session's expire-at instant, so an expired session is simply absent.
type redisSessionRepository struct {
	client *redis.Client
}

func NewRedisSessionRepository(client *redis.Client) SessionRepository {
	return &redisSessionRepository{client: client}
}

// sessionData is the identity/provenance snapshot stored in the "data"
// field. Timestamps live in their own fields so slot reuse can replace
// the snapshot without touching them.
type sessionData struct {
	UserID    string   `json:"user_id"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
	IPAddress string   `json:"ip_address"`
	UserAgent string   `json:"user_agent"`
}

func (r *redisSessionRepository) Save(ctx context.Context, session *structs.Session) (string, error) {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}

	data, err := json.Marshal(sessionData{
		UserID:    session.UserID,
		Email:     session.Email,
		Roles:     session.Roles,
		IPAddress: session.IPAddress,
		UserAgent: session.UserAgent,
	})
	if err != nil {
		return "", err
	}

	key := sessionKeyPrefix + session.ID
	idx := userIndexPrefix + session.UserID

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key,
		"data", string(data),
		"user_id", session.UserID,
		"created_at", session.CreatedAt.UnixMilli(),
		"expire_at", session.ExpireAt.UnixMilli(),
	)
	pipe.PExpireAt(ctx, key, session.ExpireAt)
	pipe.Set(ctx, idx, session.ID, 0)
	pipe.PExpireAt(ctx, idx, session.ExpireAt)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}

	return session.ID, nil
}

func (r *redisSessionRepository) FindByID(ctx context.Context, id string) (*structs.Session, error) {
	fields, err := r.client.HGetAll(ctx, sessionKeyPrefix+id).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	return sessionFromFields(id, fields)
}

func (r *redisSessionRepository) FindByUserID(ctx context.Context, userID string) (*structs.Session, error) {
	id, err := r.client.Get(ctx, userIndexPrefix+userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *redisSessionRepository) UpdateByID(ctx context.Context, id string, session *structs.Session) error {
	prevUserID, err := r.client.HGet(ctx, sessionKeyPrefix+id, "user_id").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return err
	}

	stored := *session
	stored.ID = id
	if _, err := r.Save(ctx, &stored); err != nil {
		return err
	}

	// Rebinding the session to another user leaves the old index behind;
	// drop it unless something else has claimed it since.
	if prevUserID != session.UserID {
		if err := clearUserIndexLua.Run(ctx, r.client,
			[]string{userIndexPrefix + prevUserID}, id).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (r *redisSessionRepository) DeleteByID(ctx context.Context, id string) error {
	return deleteSessionLua.Run(ctx, r.client, []string{}, id).Err()
}

func (r *redisSessionRepository) Upsert(ctx context.Context, session *structs.Session) (*structs.Session, error) {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}

	data, err := json.Marshal(sessionData{
		UserID:    session.UserID,
		Email:     session.Email,
		Roles:     session.Roles,
		IPAddress: session.IPAddress,
		UserAgent: session.UserAgent,
	})
	if err != nil {
		return nil, err
	}

	id, err := upsertSessionLua.Run(ctx, r.client,
		[]string{userIndexPrefix + session.UserID},
		session.ID,
		string(data),
		session.UserID,
		session.CreatedAt.UnixMilli(),
		session.ExpireAt.UnixMilli(),
	).Text()
	if err != nil {
		return nil, err
	}

	return r.FindByID(ctx, id)
}

func sessionFromFields(id string, fields map[string]string) (*structs.Session, error) {
	data, ok := fields["data"]
	if !ok {
		return nil, ErrNotFound
	}

	var snapshot sessionData
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		return nil, err
	}

	createdAt, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return nil, err
	}
	expireAt, err := strconv.ParseInt(fields["expire_at"], 10, 64)
	if err != nil {
		return nil, err
	}

	return &structs.Session{
		ID:        id,
		UserID:    snapshot.UserID,
		Email:     snapshot.Email,
		Roles:     snapshot.Roles,
		IPAddress: snapshot.IPAddress,
		UserAgent: snapshot.UserAgent,
		CreatedAt: time.UnixMilli(createdAt).UTC(),
		ExpireAt:  time.UnixMilli(expireAt).UTC(),
	}, nil
}
