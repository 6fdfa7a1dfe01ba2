package subscription

import (
	"errors"
	"strings"

	"github.com/DocBriefHQ/DocBrief/app/models"
)

// UnlimitedLimit marks a quota that never runs out (trial window).
const UnlimitedLimit = -1

// ErrInvalidTier is returned for tiers outside the known set, and from
// ChangeSubscription for any tier that cannot be purchased.
var ErrInvalidTier = errors.New("invalid subscription tier")

// ErrUpgradesDisabled is returned by ChangeSubscription while the upgrade
// feature is switched off.
var ErrUpgradesDisabled = errors.New("subscription upgrades are disabled")

// Monthly summary quotas per tier. The free limit is only the fallback;
// the configured MONTHLY_FREE_LIMIT wins at runtime.
var tierLimits = map[string]int{
	models.TIER_TRIAL:    UnlimitedLimit,
	models.TIER_FREE:     10,
	models.TIER_STANDARD: 100,
	models.TIER_PREMIUM:  1000,
}

func normalizeTier(tier string) string {
	normalized := strings.ToLower(strings.TrimSpace(tier))
	if normalized == "" {
		return models.TIER_FREE
	}
	return normalized
}

// tierLimit resolves the monthly cap for a tier; unknown tiers are an error,
// not a silent default.
func tierLimit(tier string) (int, error) {
	limit, ok := tierLimits[normalizeTier(tier)]
	if !ok {
		return 0, ErrInvalidTier
	}
	return limit, nil
}

// isPaidTier reports whether a tier can be the target of a subscription change.
func isPaidTier(tier string) bool {
	switch normalizeTier(tier) {
	case models.TIER_STANDARD, models.TIER_PREMIUM:
		return true
	default:
		return false
	}
}
