package counter

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/DocBriefHQ/DocBrief/internal/pkg/cache"
	"github.com/redis/go-redis/v9"
)

const (
	summariesByTeamKey = "summary:counters:team"
	summariesByUserKey = "summary:counters:user"
	failuresKey        = "summary:counters:failures"
)

// AddSummary increments the completed-summary counters for a team and user in Redis
func AddSummary(userID, teamID string) error {
	ctx := context.Background()
	rdb := cache.GetClient()
	if err := rdb.HIncrBy(ctx, summariesByTeamKey, teamID, 1).Err(); err != nil {
		return err
	}
	return rdb.HIncrBy(ctx, summariesByUserKey, userID+":"+teamID, 1).Err()
}

// AddFailure increments the failed-run counter for a pipeline stage in Redis
func AddFailure(stage string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, failuresKey, stage, 1).Err()
}

// missingField reports whether a read failed only because the hash field has
// never been written.
func missingField(err error) bool {
	return errors.Is(err, redis.Nil)
}

// TeamSummaryCount reads the completed-summary count for one team
func TeamSummaryCount(teamID string) (int64, error) {
	ctx := context.Background()
	val, err := cache.GetClient().HGet(ctx, summariesByTeamKey, teamID).Result()
	if err != nil {
		if missingField(err) {
			return 0, nil
		}
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

// UserSummaryCount reads the completed-summary count for one user in a team
func UserSummaryCount(userID, teamID string) (int64, error) {
	ctx := context.Background()
	val, err := cache.GetClient().HGet(ctx, summariesByUserKey, userID+":"+teamID).Result()
	if err != nil {
		if missingField(err) {
			return 0, nil
		}
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

// FailureCounts reads all failure counters keyed by pipeline stage
func FailureCounts() (map[string]int64, error) {
	ctx := context.Background()
	data, err := cache.GetClient().HGetAll(ctx, failuresKey).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(data))
	for stage, v := range data {
		n, perr := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if perr != nil {
			continue
		}
		out[stage] = n
	}
	return out, nil
}
