package activities

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"mergington/internal/shared/constants"

	"github.com/redis/go-redis/v9"
)

// Lua script for atomic signup - membership and capacity are checked in the
// same round trip as the write.
var luaAtomicSignup = redis.NewScript(`
-- KEYS[1] = detail hash
-- KEYS[2] = roster list
-- KEYS[3] = members set
-- ARGV[1] = email
-- ARGV[2] = "1" to enforce max_participants

if redis.call("EXISTS", KEYS[1]) == 0 then
    return {0, "activity_not_found"}
end

if redis.call("SISMEMBER", KEYS[3], ARGV[1]) == 1 then
    return {0, "already_signed_up"}
end

if ARGV[2] == "1" then
    local max = tonumber(redis.call("HGET", KEYS[1], "max_participants"))
    if max and redis.call("LLEN", KEYS[2]) >= max then
        return {0, "activity_full"}
    end
end

redis.call("RPUSH", KEYS[2], ARGV[1])
redis.call("SADD", KEYS[3], ARGV[1])

return {1, "success"}
`)

// Lua script for atomic unregister
var luaAtomicUnregister = redis.NewScript(`
-- KEYS[1] = detail hash
-- KEYS[2] = roster list
-- KEYS[3] = members set
-- ARGV[1] = email

if redis.call("EXISTS", KEYS[1]) == 0 then
    return {0, "activity_not_found"}
end

if redis.call("SISMEMBER", KEYS[3], ARGV[1]) == 0 then
    return {0, "participant_not_found"}
end

redis.call("LREM", KEYS[2], 0, ARGV[1])
redis.call("SREM", KEYS[3], ARGV[1])

return {1, "success"}
`)

var scriptReasons = map[string]error{
	"activity_not_found":    ErrActivityNotFound,
	"already_signed_up":     ErrAlreadySignedUp,
	"activity_full":         ErrActivityFull,
	"participant_not_found": ErrParticipantNotFound,
}

// redisRepository stores the registry in Redis so several API replicas can
// share one roster.
type redisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) Repository {
	return &redisRepository{client: client}
}

// PreloadScripts loads Lua scripts into Redis ahead of the first request
func PreloadScripts(ctx context.Context, client *redis.Client) error {
	if client == nil {
		return fmt.Errorf("redis client not available")
	}
	if err := luaAtomicSignup.Load(ctx, client).Err(); err != nil {
		return fmt.Errorf("failed to load signup script: %w", err)
	}
	if err := luaAtomicUnregister.Load(ctx, client).Err(); err != nil {
		return fmt.Errorf("failed to load unregister script: %w", err)
	}
	return nil
}

func (r *redisRepository) List(ctx context.Context) (Catalog, error) {
	names, err := r.client.LRange(ctx, constants.REDIS_KEY_ACTIVITY_NAMES, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list activity names: %w", err)
	}

	details := make([]*redis.MapStringStringCmd, len(names))
	rosters := make([]*redis.StringSliceCmd, len(names))

	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, name := range names {
			details[i] = pipe.HGetAll(ctx, constants.BuildActivityDetailKey(name))
			rosters[i] = pipe.LRange(ctx, constants.BuildActivityRosterKey(name), 0, -1)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}

	catalog := make(Catalog, 0, len(names))
	for i, name := range names {
		activity, err := decodeActivity(name, details[i].Val(), rosters[i].Val())
		if err != nil {
			return nil, err
		}
		catalog = append(catalog, *activity)
	}
	return catalog, nil
}

func (r *redisRepository) Get(ctx context.Context, name string) (*Activity, error) {
	var detail *redis.MapStringStringCmd
	var roster *redis.StringSliceCmd

	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		detail = pipe.HGetAll(ctx, constants.BuildActivityDetailKey(name))
		roster = pipe.LRange(ctx, constants.BuildActivityRosterKey(name), 0, -1)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load activity: %w", err)
	}

	if len(detail.Val()) == 0 {
		return nil, ErrActivityNotFound
	}
	return decodeActivity(name, detail.Val(), roster.Val())
}

func (r *redisRepository) AddParticipant(ctx context.Context, name, email string, enforceCapacity bool) error {
	enforce := "0"
	if enforceCapacity {
		enforce = "1"
	}

	result, err := luaAtomicSignup.Run(ctx, r.client, constants.BuildActivityKeys(name), email, enforce).Result()
	if err != nil {
		return fmt.Errorf("failed to execute atomic signup: %w", err)
	}
	return parseScriptResult(result)
}

func (r *redisRepository) RemoveParticipant(ctx context.Context, name, email string) error {
	result, err := luaAtomicUnregister.Run(ctx, r.client, constants.BuildActivityKeys(name), email).Result()
	if err != nil {
		return fmt.Errorf("failed to execute atomic unregister: %w", err)
	}
	return parseScriptResult(result)
}

func (r *redisRepository) Reset(ctx context.Context, seed []Activity) error {
	existing, err := r.client.LRange(ctx, constants.REDIS_KEY_ACTIVITY_NAMES, 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to read existing activities: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		stale := []string{constants.REDIS_KEY_ACTIVITY_NAMES}
		for _, name := range existing {
			stale = append(stale, constants.BuildActivityKeys(name)...)
		}
		pipe.Del(ctx, stale...)

		seen := make(map[string]bool, len(seed))
		for _, a := range seed {
			if seen[a.Name] {
				continue
			}
			seen[a.Name] = true

			pipe.RPush(ctx, constants.REDIS_KEY_ACTIVITY_NAMES, a.Name)
			pipe.HSet(ctx, constants.BuildActivityDetailKey(a.Name),
				"description", a.Description,
				"schedule", a.Schedule,
				"max_participants", a.MaxParticipants,
			)

			if len(a.Participants) == 0 {
				continue
			}
			members := make([]interface{}, 0, len(a.Participants))
			for _, email := range a.Participants {
				members = append(members, email)
			}
			pipe.RPush(ctx, constants.BuildActivityRosterKey(a.Name), members...)
			pipe.SAdd(ctx, constants.BuildActivityMembersKey(a.Name), members...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to seed activities: %w", err)
	}
	return nil
}

func decodeActivity(name string, detail map[string]string, roster []string) (*Activity, error) {
	maxParticipants, err := strconv.Atoi(detail["max_participants"])
	if err != nil {
		return nil, fmt.Errorf("invalid max_participants for %q: %w", name, err)
	}
	if roster == nil {
		roster = []string{}
	}
	return &Activity{
		Name:            name,
		Description:     detail["description"],
		Schedule:        detail["schedule"],
		MaxParticipants: maxParticipants,
		Participants:    roster,
	}, nil
}

// parseScriptResult turns the {ok, reason} pair returned by the scripts into an error
func parseScriptResult(result interface{}) error {
	resultArray, ok := result.([]interface{})
	if !ok || len(resultArray) != 2 {
		return fmt.Errorf("unexpected result format from Lua script")
	}

	success, ok := resultArray[0].(int64)
	if !ok {
		return fmt.Errorf("invalid success flag in Lua script result")
	}
	if success == 1 {
		return nil
	}

	reason, _ := resultArray[1].(string)
	if err, known := scriptReasons[reason]; known {
		return err
	}
	return fmt.Errorf("roster update rejected: %s", reason)
}
