package counter

import (
	"errors"
	"fmt"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestMissingField(t *testing.T) {
	assert.True(t, missingField(redis.Nil))
	assert.True(t, missingField(fmt.Errorf("hget: %w", redis.Nil)), "wrapped sentinel still detected")
	assert.False(t, missingField(errors.New("redis: nil")), "message lookalikes are real errors")
	assert.False(t, missingField(errors.New("connection refused")))
	assert.False(t, missingField(nil))
}
