package featureflags

import (
	"strings"

	"github.com/DocBriefHQ/DocBrief/internal/pkg/env"
)

// Defaults applied when the corresponding env variables are unset.
const (
	DefaultMonthlyFreeLimit = 10
	DefaultTrialPeriodDays  = 7
)

// Flags holds every independently gateable feature toggle plus the quota
// constants that go with them. Built once at startup and passed explicitly
// into the services that need it.
type Flags struct {
	SubscriptionSystem  bool
	TrialPeriod         bool
	UsageTracking       bool
	SubscriptionLimits  bool
	SubscriptionUpgrade bool

	MonthlyFreeLimit int
	TrialPeriodDays  int
	UpgradeLink      string
}

// FromEnv reads ENABLE_* toggles and quota constants from the environment.
func FromEnv() Flags {
	return Flags{
		SubscriptionSystem:  envBool("ENABLE_SUBSCRIPTION_SYSTEM"),
		TrialPeriod:         envBool("ENABLE_TRIAL_PERIOD"),
		UsageTracking:       envBool("ENABLE_USAGE_TRACKING"),
		SubscriptionLimits:  envBool("ENABLE_SUBSCRIPTION_LIMITS"),
		SubscriptionUpgrade: envBool("ENABLE_SUBSCRIPTION_UPGRADE"),
		MonthlyFreeLimit:    env.GetEnvInt("MONTHLY_FREE_LIMIT", DefaultMonthlyFreeLimit),
		TrialPeriodDays:     env.GetEnvInt("TRIAL_PERIOD_DAYS", DefaultTrialPeriodDays),
		UpgradeLink:         env.GetEnv("UPGRADE_LINK", ""),
	}
}

// TrialEnabled reports whether trial handling applies. The trial toggle is
// subordinate to the subscription system toggle.
func (f Flags) TrialEnabled() bool {
	return f.SubscriptionSystem && f.TrialPeriod
}

// UsageTrackingEnabled reports whether completed summarizations are recorded.
func (f Flags) UsageTrackingEnabled() bool {
	return f.SubscriptionSystem && f.UsageTracking
}

// LimitsEnabled reports whether monthly quotas are enforced.
func (f Flags) LimitsEnabled() bool {
	return f.SubscriptionSystem && f.SubscriptionLimits
}

// UpgradeEnabled reports whether tier changes are accepted.
func (f Flags) UpgradeEnabled() bool {
	return f.SubscriptionSystem && f.SubscriptionUpgrade
}

func envBool(key string) bool {
	return strings.EqualFold(env.GetEnv(key, "false"), "true")
}
