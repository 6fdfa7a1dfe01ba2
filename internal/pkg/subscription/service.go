package subscription

import (
	"errors"
	"log"
	"math"
	"time"

	"github.com/DocBriefHQ/DocBrief/app/models"
	"github.com/DocBriefHQ/DocBrief/app/repository"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/featureflags"
	"gorm.io/gorm"
)

const subscriptionPeriodDays = 30
const expiryWarningDays = 3

// Limits is the resolved quota view for one account.
type Limits struct {
	Limit         int    `json:"limit"`
	Status        string `json:"status"`
	Tier          string `json:"tier,omitempty"`
	DaysRemaining *int   `json:"days_remaining,omitempty"`
}

// Unlimited reports whether this quota never runs out.
func (l Limits) Unlimited() bool {
	return l.Limit == UnlimitedLimit
}

// Stats is the usage payload served on the status endpoint.
type Stats struct {
	CurrentUsage  int64  `json:"current_usage"`
	Limit         int    `json:"limit"`
	Status        string `json:"status"`
	Tier          string `json:"tier,omitempty"`
	DaysRemaining *int   `json:"days_remaining,omitempty"`
}

// ExpiryWarning is returned when an active subscription is about to lapse.
type ExpiryWarning struct {
	DaysRemaining int       `json:"days_remaining"`
	Tier          string    `json:"tier"`
	EndDate       time.Time `json:"end_date"`
}

// Service is the single source of truth for plan resolution and quota
// admission. Reads fail soft to the free default so a metering fault can
// never block message delivery; writes surface their errors.
type Service struct {
	accounts repository.AccountRepository
	usage    repository.UsageRepository
	flags    featureflags.Flags
	now      func() time.Time
}

// NewService creates a subscription service from injected repositories.
func NewService(accounts repository.AccountRepository, usage repository.UsageRepository, flags featureflags.Flags) *Service {
	return &Service{
		accounts: accounts,
		usage:    usage,
		flags:    flags,
		now:      time.Now,
	}
}

// NewServiceFromDB creates a subscription service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, flags featureflags.Flags) *Service {
	repos := repository.NewRepositories(db)
	return NewService(repos.Account, repos.Usage, flags)
}

// WithClock overrides the time source; used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) freeLimit() int {
	if s.flags.MonthlyFreeLimit > 0 {
		return s.flags.MonthlyFreeLimit
	}
	return featureflags.DefaultMonthlyFreeLimit
}

func (s *Service) freeDefault() Limits {
	return Limits{Limit: s.freeLimit(), Status: models.SUBSCRIPTION_STATUS_FREE}
}

// GetLimits resolves the current plan and quota for an account. A missing
// account yields the free default without creating a record; store faults
// degrade to the same default. Unknown tiers fail with ErrInvalidTier.
func (s *Service) GetLimits(userID, teamID string) (Limits, error) {
	account, err := s.accounts.GetByUserTeam(userID, teamID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("subscription: limits lookup for %s/%s failed, using free default: %v", userID, teamID, err)
		}
		return s.freeDefault(), nil
	}

	if s.flags.TrialEnabled() && s.inTrial(account) {
		days := s.trialDaysRemaining(account)
		return Limits{
			Limit:         UnlimitedLimit,
			Status:        models.SUBSCRIPTION_STATUS_TRIAL,
			DaysRemaining: &days,
		}, nil
	}

	tier := normalizeTier(account.SubscriptionTier)
	limit, err := tierLimit(tier)
	if err != nil {
		return Limits{}, err
	}
	if tier == models.TIER_FREE {
		limit = s.freeLimit()
	}
	return Limits{
		Limit:  limit,
		Status: account.SubscriptionStatus,
		Tier:   tier,
	}, nil
}

// inTrial reports whether the account is inside its trial window. Once the
// end timestamp has been reached the trial is over, regardless of how the
// status field lags behind.
func (s *Service) inTrial(account *models.UserAccount) bool {
	if account.SubscriptionStatus != models.SUBSCRIPTION_STATUS_TRIAL || account.TrialEnd == nil {
		return false
	}
	return s.now().Before(*account.TrialEnd)
}

// trialDaysRemaining counts remaining trial days, rounded up and never negative.
func (s *Service) trialDaysRemaining(account *models.UserAccount) int {
	remaining := account.TrialEnd.Sub(s.now())
	days := int(math.Ceil(remaining.Hours() / 24))
	if days < 0 {
		days = 0
	}
	return days
}

// CheckUsageLimit decides whether one more summarization is admitted. The
// account is provisioned here on first contact, so a brand-new user starts
// their trial the moment they first reach the bot. Disabled limit
// enforcement fails open; quota-read faults degrade to the free limit
// rather than erroring out.
func (s *Service) CheckUsageLimit(userID, teamID string) bool {
	if s.flags.SubscriptionSystem {
		if _, err := s.GetOrCreateAccount(userID, teamID, ""); err != nil {
			log.Printf("subscription: account provisioning for %s/%s failed: %v", userID, teamID, err)
		}
	}

	if !s.flags.LimitsEnabled() {
		return true
	}

	limits, err := s.GetLimits(userID, teamID)
	if err != nil {
		log.Printf("subscription: limit resolution for %s/%s failed, using free default: %v", userID, teamID, err)
		limits = s.freeDefault()
	}
	if limits.Unlimited() {
		return true
	}

	month := models.MonthKey(s.now())
	count, err := s.usage.CountForMonth(userID, teamID, month)
	if err != nil {
		log.Printf("subscription: usage count for %s/%s failed, assuming zero: %v", userID, teamID, err)
		count = 0
	}
	return count < int64(limits.Limit)
}

// GetUsageStats builds the status payload: current usage against the resolved
// quota. With the subscription system off it reports unlimited usage.
func (s *Service) GetUsageStats(userID, teamID string) Stats {
	if !s.flags.SubscriptionSystem {
		return Stats{CurrentUsage: 0, Limit: UnlimitedLimit, Status: "unlimited"}
	}

	limits, err := s.GetLimits(userID, teamID)
	if err != nil {
		limits = s.freeDefault()
	}

	month := models.MonthKey(s.now())
	count, err := s.usage.CountForMonth(userID, teamID, month)
	if err != nil {
		log.Printf("subscription: usage count for %s/%s failed, assuming zero: %v", userID, teamID, err)
		count = 0
	}

	return Stats{
		CurrentUsage:  count,
		Limit:         limits.Limit,
		Status:        limits.Status,
		Tier:          limits.Tier,
		DaysRemaining: limits.DaysRemaining,
	}
}

// ChangeSubscription moves an account onto a paid tier: status becomes
// active and the period is a flat 30 days from now. Upgrades and downgrades
// take the identical path; each call resets the end date with no proration.
func (s *Service) ChangeSubscription(userID, teamID, newTier string) error {
	if !s.flags.UpgradeEnabled() {
		return ErrUpgradesDisabled
	}
	tier := normalizeTier(newTier)
	if !isPaidTier(tier) {
		return ErrInvalidTier
	}

	account, err := s.GetOrCreateAccount(userID, teamID, "")
	if err != nil {
		return err
	}

	now := s.now()
	end := now.Add(subscriptionPeriodDays * 24 * time.Hour)
	account.SubscriptionStatus = models.SUBSCRIPTION_STATUS_ACTIVE
	account.SubscriptionTier = tier
	account.SubscriptionStart = &now
	account.SubscriptionEnd = &end
	return s.accounts.Update(account)
}

// CheckExpiry returns a warning payload when an active subscription has at
// most three whole days left (truncated toward zero). Trial and free
// accounts never warn.
func (s *Service) CheckExpiry(userID, teamID string) (*ExpiryWarning, error) {
	if !s.flags.SubscriptionSystem {
		return nil, nil
	}

	account, err := s.accounts.GetByUserTeam(userID, teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if account.SubscriptionStatus != models.SUBSCRIPTION_STATUS_ACTIVE || account.SubscriptionEnd == nil {
		return nil, nil
	}

	days := int(account.SubscriptionEnd.Sub(s.now()).Hours() / 24)
	if days > expiryWarningDays {
		return nil, nil
	}
	return &ExpiryWarning{
		DaysRemaining: days,
		Tier:          account.SubscriptionTier,
		EndDate:       *account.SubscriptionEnd,
	}, nil
}

// GetOrCreateAccount fetches the account for a Slack identity, lazily
// creating it in a fresh trial window on first contact. A changed email is
// written back together with the login timestamp.
func (s *Service) GetOrCreateAccount(userID, teamID, email string) (*models.UserAccount, error) {
	account, err := s.accounts.GetByUserTeam(userID, teamID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		account = models.NewTrialAccount(userID, teamID, email, s.trialDays(), s.now())
		if err := account.Validate(); err != nil {
			return nil, err
		}
		if err := s.accounts.Create(account); err != nil {
			return nil, err
		}
		return account, nil
	}

	if email != "" && account.Email != email {
		now := s.now()
		account.Email = email
		account.LastLoginAt = &now
		if err := s.accounts.Update(account); err != nil {
			return nil, err
		}
	}
	return account, nil
}

func (s *Service) trialDays() int {
	if s.flags.TrialPeriodDays > 0 {
		return s.flags.TrialPeriodDays
	}
	return featureflags.DefaultTrialPeriodDays
}

// RecordUsage appends a usage event for a completed summarization. Gated by
// the usage-tracking toggle; callers treat failures as best-effort.
func (s *Service) RecordUsage(userID, teamID, fileName string) error {
	if !s.flags.UsageTrackingEnabled() {
		return nil
	}

	account, err := s.GetOrCreateAccount(userID, teamID, "")
	if err != nil {
		return err
	}

	now := s.now()
	return s.usage.Record(&models.UsageEvent{
		UserID:       userID,
		TeamID:       teamID,
		Month:        models.MonthKey(now),
		Timestamp:    now,
		FileName:     fileName,
		StatusAtTime: account.SubscriptionStatus,
	})
}

// ListMonthUsage returns the usage events recorded in the current month,
// oldest first.
func (s *Service) ListMonthUsage(userID, teamID string) ([]models.UsageEvent, error) {
	return s.usage.ListForMonth(userID, teamID, models.MonthKey(s.now()))
}

// ResetAllUsage truncates the usage table (admin reset).
func (s *Service) ResetAllUsage() error {
	return s.usage.TruncateAll()
}
