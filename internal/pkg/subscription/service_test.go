package subscription

import (
	"errors"
	"testing"
	"time"

	"github.com/DocBriefHQ/DocBrief/app/models"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/featureflags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeAccountRepo struct {
	accounts map[string]*models.UserAccount
	failGet  error
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[string]*models.UserAccount)}
}

func accountKey(userID, teamID string) string {
	return userID + "/" + teamID
}

func (r *fakeAccountRepo) Create(account *models.UserAccount) error {
	r.accounts[accountKey(account.UserID, account.TeamID)] = account
	return nil
}

func (r *fakeAccountRepo) GetByUserTeam(userID, teamID string) (*models.UserAccount, error) {
	if r.failGet != nil {
		return nil, r.failGet
	}
	account, ok := r.accounts[accountKey(userID, teamID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *account
	return &copied, nil
}

func (r *fakeAccountRepo) Update(account *models.UserAccount) error {
	r.accounts[accountKey(account.UserID, account.TeamID)] = account
	return nil
}

func (r *fakeAccountRepo) Count() (int64, error) {
	return int64(len(r.accounts)), nil
}

type fakeUsageRepo struct {
	events     []*models.UsageEvent
	failCount  error
	failRecord error
	truncated  bool
}

func (r *fakeUsageRepo) Record(event *models.UsageEvent) error {
	if r.failRecord != nil {
		return r.failRecord
	}
	r.events = append(r.events, event)
	return nil
}

func (r *fakeUsageRepo) CountForMonth(userID, teamID, month string) (int64, error) {
	if r.failCount != nil {
		return 0, r.failCount
	}
	var n int64
	for _, e := range r.events {
		if e.UserID == userID && e.TeamID == teamID && e.Month == month {
			n++
		}
	}
	return n, nil
}

func (r *fakeUsageRepo) ListForMonth(userID, teamID, month string) ([]models.UsageEvent, error) {
	var out []models.UsageEvent
	for _, e := range r.events {
		if e.UserID == userID && e.TeamID == teamID && e.Month == month {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeUsageRepo) TruncateAll() error {
	r.events = nil
	r.truncated = true
	return nil
}

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(flags featureFlagsOption) (*Service, *fakeAccountRepo, *fakeUsageRepo) {
	accounts := newFakeAccountRepo()
	usage := &fakeUsageRepo{}
	svc := NewService(accounts, usage, flags.build()).WithClock(func() time.Time { return testNow })
	return svc, accounts, usage
}

// featureFlagsOption keeps test flag wiring readable.
type featureFlagsOption struct {
	system   bool
	trial    bool
	tracking bool
	limits   bool
	upgrade  bool
}

func allFlagsOn() featureFlagsOption {
	return featureFlagsOption{system: true, trial: true, tracking: true, limits: true, upgrade: true}
}

func (o featureFlagsOption) build() featureflags.Flags {
	return featureflags.Flags{
		SubscriptionSystem:  o.system,
		TrialPeriod:         o.trial,
		UsageTracking:       o.tracking,
		SubscriptionLimits:  o.limits,
		SubscriptionUpgrade: o.upgrade,
		MonthlyFreeLimit:    10,
		TrialPeriodDays:     7,
	}
}

func TestGetLimitsUnknownAccountDefaultsToFree(t *testing.T) {
	svc, _, _ := newTestService(allFlagsOn())

	limits, err := svc.GetLimits("U123", "T123")
	require.NoError(t, err)
	assert.Equal(t, 10, limits.Limit)
	assert.Equal(t, models.SUBSCRIPTION_STATUS_FREE, limits.Status)
	assert.Nil(t, limits.DaysRemaining)
}

func TestGetLimitsTrialAccount(t *testing.T) {
	svc, accounts, _ := newTestService(allFlagsOn())
	account := models.NewTrialAccount("U123", "T123", "u@example.com", 7, testNow.Add(-2*24*time.Hour))
	require.NoError(t, accounts.Create(account))

	limits, err := svc.GetLimits("U123", "T123")
	require.NoError(t, err)
	assert.Equal(t, UnlimitedLimit, limits.Limit)
	assert.True(t, limits.Unlimited())
	assert.Equal(t, models.SUBSCRIPTION_STATUS_TRIAL, limits.Status)
	require.NotNil(t, limits.DaysRemaining)
	assert.Equal(t, 5, *limits.DaysRemaining)
}

func TestGetLimitsTrialDisabledFallsThroughToTier(t *testing.T) {
	flags := allFlagsOn()
	flags.trial = false
	svc, accounts, _ := newTestService(flags)
	account := models.NewTrialAccount("U123", "T123", "u@example.com", 7, testNow)
	require.NoError(t, accounts.Create(account))

	limits, err := svc.GetLimits("U123", "T123")
	require.NoError(t, err)
	assert.Equal(t, UnlimitedLimit, limits.Limit)
	assert.Equal(t, models.TIER_TRIAL, limits.Tier)
}

func TestGetLimitsExpiredTrialUsesTierLimit(t *testing.T) {
	svc, accounts, _ := newTestService(allFlagsOn())
	account := models.NewTrialAccount("U123", "T123", "u@example.com", 7, testNow.Add(-10*24*time.Hour))
	require.NoError(t, accounts.Create(account))

	// Status still says trial but the window has closed.
	limits, err := svc.GetLimits("U123", "T123")
	require.NoError(t, err)
	assert.Equal(t, UnlimitedLimit, limits.Limit)
	assert.Equal(t, models.TIER_TRIAL, limits.Tier)
	assert.Nil(t, limits.DaysRemaining)
}

func TestGetLimitsPaidTiers(t *testing.T) {
	svc, accounts, _ := newTestService(allFlagsOn())
	require.NoError(t, accounts.Create(&models.UserAccount{
		UserID: "U1", TeamID: "T1",
		SubscriptionStatus: models.SUBSCRIPTION_STATUS_ACTIVE,
		SubscriptionTier:   models.TIER_STANDARD,
	}))
	require.NoError(t, accounts.Create(&models.UserAccount{
		UserID: "U2", TeamID: "T1",
		SubscriptionStatus: models.SUBSCRIPTION_STATUS_ACTIVE,
		SubscriptionTier:   "PREMIUM",
	}))

	standard, err := svc.GetLimits("U1", "T1")
	require.NoError(t, err)
	assert.Equal(t, 100, standard.Limit)

	// Tier lookup is case-insensitive.
	premium, err := svc.GetLimits("U2", "T1")
	require.NoError(t, err)
	assert.Equal(t, 1000, premium.Limit)
	assert.Equal(t, models.TIER_PREMIUM, premium.Tier)
}

func TestGetLimitsUnknownTier(t *testing.T) {
	svc, accounts, _ := newTestService(allFlagsOn())
	require.NoError(t, accounts.Create(&models.UserAccount{
		UserID: "U1", TeamID: "T1",
		SubscriptionStatus: models.SUBSCRIPTION_STATUS_ACTIVE,
		SubscriptionTier:   "platinum",
	}))

	_, err := svc.GetLimits("U1", "T1")
	assert.ErrorIs(t, err, ErrInvalidTier)
}

func TestGetLimitsStoreFaultFallsBackToFree(t *testing.T) {
	svc, accounts, _ := newTestService(allFlagsOn())
	accounts.failGet = errors.New("connection refused")

	limits, err := svc.GetLimits("U1", "T1")
	require.NoError(t, err)
	assert.Equal(t, 10, limits.Limit)
	assert.Equal(t, models.SUBSCRIPTION_STATUS_FREE, limits.Status)
}

func freeAccount(userID, teamID string) *models.UserAccount {
	return &models.UserAccount{
		UserID: userID, TeamID: teamID,
		SubscriptionStatus: models.SUBSCRIPTION_STATUS_FREE,
		SubscriptionTier:   models.TIER_FREE,
	}
}

func TestCheckUsageLimit(t *testing.T) {
	svc, accounts, usage := newTestService(allFlagsOn())
	require.NoError(t, accounts.Create(freeAccount("U1", "T1")))
	month := models.MonthKey(testNow)

	for i := 0; i < 9; i++ {
		usage.events = append(usage.events, &models.UsageEvent{UserID: "U1", TeamID: "T1", Month: month})
	}
	assert.True(t, svc.CheckUsageLimit("U1", "T1"), "9 of 10 used")

	usage.events = append(usage.events, &models.UsageEvent{UserID: "U1", TeamID: "T1", Month: month})
	assert.False(t, svc.CheckUsageLimit("U1", "T1"), "10 of 10 used")
}

func TestCheckUsageLimitProvisionsTrialOnFirstContact(t *testing.T) {
	svc, accounts, _ := newTestService(allFlagsOn())

	assert.True(t, svc.CheckUsageLimit("U1", "T1"))

	account, err := accounts.GetByUserTeam("U1", "T1")
	require.NoError(t, err)
	assert.Equal(t, models.SUBSCRIPTION_STATUS_TRIAL, account.SubscriptionStatus)

	limits, err := svc.GetLimits("U1", "T1")
	require.NoError(t, err)
	assert.Equal(t, UnlimitedLimit, limits.Limit, "first contact starts the trial, not the free plan")
}

func TestCheckUsageLimitProvisionsEvenWithoutEnforcement(t *testing.T) {
	flags := allFlagsOn()
	flags.limits = false
	flags.tracking = false
	svc, accounts, _ := newTestService(flags)

	assert.True(t, svc.CheckUsageLimit("U1", "T1"))

	account, err := accounts.GetByUserTeam("U1", "T1")
	require.NoError(t, err)
	assert.Equal(t, models.SUBSCRIPTION_STATUS_TRIAL, account.SubscriptionStatus)
}

func TestCheckUsageLimitIgnoresOtherMonths(t *testing.T) {
	svc, accounts, usage := newTestService(allFlagsOn())
	require.NoError(t, accounts.Create(freeAccount("U1", "T1")))

	for i := 0; i < 50; i++ {
		usage.events = append(usage.events, &models.UsageEvent{UserID: "U1", TeamID: "T1", Month: "2025-05"})
	}
	assert.True(t, svc.CheckUsageLimit("U1", "T1"))
}

func TestCheckUsageLimitDisabledEnforcementFailsOpen(t *testing.T) {
	flags := allFlagsOn()
	flags.limits = false
	svc, _, usage := newTestService(flags)
	month := models.MonthKey(testNow)
	for i := 0; i < 500; i++ {
		usage.events = append(usage.events, &models.UsageEvent{UserID: "U1", TeamID: "T1", Month: month})
	}

	assert.True(t, svc.CheckUsageLimit("U1", "T1"))
}

func TestCheckUsageLimitCountFaultAssumesZero(t *testing.T) {
	svc, accounts, usage := newTestService(allFlagsOn())
	require.NoError(t, accounts.Create(freeAccount("U1", "T1")))
	usage.failCount = errors.New("table gone")

	assert.True(t, svc.CheckUsageLimit("U1", "T1"))
}

func TestCheckUsageLimitTrialNeverBlocks(t *testing.T) {
	svc, accounts, usage := newTestService(allFlagsOn())
	require.NoError(t, accounts.Create(models.NewTrialAccount("U1", "T1", "", 7, testNow)))
	month := models.MonthKey(testNow)
	for i := 0; i < 5000; i++ {
		usage.events = append(usage.events, &models.UsageEvent{UserID: "U1", TeamID: "T1", Month: month})
	}

	assert.True(t, svc.CheckUsageLimit("U1", "T1"))
}

func TestGetUsageStats(t *testing.T) {
	svc, accounts, usage := newTestService(allFlagsOn())
	require.NoError(t, accounts.Create(&models.UserAccount{
		UserID: "U1", TeamID: "T1",
		SubscriptionStatus: models.SUBSCRIPTION_STATUS_ACTIVE,
		SubscriptionTier:   models.TIER_STANDARD,
	}))
	month := models.MonthKey(testNow)
	for i := 0; i < 7; i++ {
		usage.events = append(usage.events, &models.UsageEvent{UserID: "U1", TeamID: "T1", Month: month})
	}

	stats := svc.GetUsageStats("U1", "T1")
	assert.Equal(t, int64(7), stats.CurrentUsage)
	assert.Equal(t, 100, stats.Limit)
	assert.Equal(t, models.SUBSCRIPTION_STATUS_ACTIVE, stats.Status)
	assert.Equal(t, models.TIER_STANDARD, stats.Tier)
}

func TestGetUsageStatsSystemDisabled(t *testing.T) {
	svc, _, _ := newTestService(featureFlagsOption{})

	stats := svc.GetUsageStats("U1", "T1")
	assert.Equal(t, int64(0), stats.CurrentUsage)
	assert.Equal(t, UnlimitedLimit, stats.Limit)
	assert.Equal(t, "unlimited", stats.Status)
}

func TestChangeSubscriptionUpgrade(t *testing.T) {
	svc, accounts, _ := newTestService(allFlagsOn())

	require.NoError(t, svc.ChangeSubscription("U1", "T1", "premium"))

	account, err := accounts.GetByUserTeam("U1", "T1")
	require.NoError(t, err)
	assert.Equal(t, models.SUBSCRIPTION_STATUS_ACTIVE, account.SubscriptionStatus)
	assert.Equal(t, models.TIER_PREMIUM, account.SubscriptionTier)
	require.NotNil(t, account.SubscriptionEnd)
	assert.Equal(t, testNow.Add(30*24*time.Hour), *account.SubscriptionEnd)

	limits, err := svc.GetLimits("U1", "T1")
	require.NoError(t, err)
	assert.Equal(t, 1000, limits.Limit)
}

func TestChangeSubscriptionRenewalResetsPeriod(t *testing.T) {
	svc, accounts, _ := newTestService(allFlagsOn())
	require.NoError(t, svc.ChangeSubscription("U1", "T1", models.TIER_STANDARD))
	require.NoError(t, svc.ChangeSubscription("U1", "T1", models.TIER_STANDARD))

	account, err := accounts.GetByUserTeam("U1", "T1")
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(30*24*time.Hour), *account.SubscriptionEnd)
}

func TestChangeSubscriptionInvalidTierLeavesStateUntouched(t *testing.T) {
	svc, accounts, _ := newTestService(allFlagsOn())
	require.NoError(t, accounts.Create(models.NewTrialAccount("U1", "T1", "", 7, testNow)))

	err := svc.ChangeSubscription("U1", "T1", "platinum")
	assert.ErrorIs(t, err, ErrInvalidTier)

	account, getErr := accounts.GetByUserTeam("U1", "T1")
	require.NoError(t, getErr)
	assert.Equal(t, models.SUBSCRIPTION_STATUS_TRIAL, account.SubscriptionStatus)
}

func TestChangeSubscriptionFreeTierRejected(t *testing.T) {
	svc, _, _ := newTestService(allFlagsOn())
	assert.ErrorIs(t, svc.ChangeSubscription("U1", "T1", models.TIER_FREE), ErrInvalidTier)
}

func TestChangeSubscriptionUpgradesDisabled(t *testing.T) {
	flags := allFlagsOn()
	flags.upgrade = false
	svc, _, _ := newTestService(flags)

	assert.ErrorIs(t, svc.ChangeSubscription("U1", "T1", "premium"), ErrUpgradesDisabled)
}

func TestCheckExpiryWarnsInsideWindow(t *testing.T) {
	svc, accounts, _ := newTestService(allFlagsOn())
	end := testNow.Add(2*24*time.Hour + 6*time.Hour)
	require.NoError(t, accounts.Create(&models.UserAccount{
		UserID: "U1", TeamID: "T1",
		SubscriptionStatus: models.SUBSCRIPTION_STATUS_ACTIVE,
		SubscriptionTier:   models.TIER_STANDARD,
		SubscriptionEnd:    &end,
	}))

	warning, err := svc.CheckExpiry("U1", "T1")
	require.NoError(t, err)
	require.NotNil(t, warning)
	assert.Equal(t, 2, warning.DaysRemaining)
	assert.Equal(t, models.TIER_STANDARD, warning.Tier)
}

func TestCheckExpiryNoWarningOutsideWindow(t *testing.T) {
	svc, accounts, _ := newTestService(allFlagsOn())
	end := testNow.Add(20 * 24 * time.Hour)
	require.NoError(t, accounts.Create(&models.UserAccount{
		UserID: "U1", TeamID: "T1",
		SubscriptionStatus: models.SUBSCRIPTION_STATUS_ACTIVE,
		SubscriptionTier:   models.TIER_STANDARD,
		SubscriptionEnd:    &end,
	}))

	warning, err := svc.CheckExpiry("U1", "T1")
	require.NoError(t, err)
	assert.Nil(t, warning)
}

func TestCheckExpirySkipsTrialAndMissingAccounts(t *testing.T) {
	svc, accounts, _ := newTestService(allFlagsOn())
	require.NoError(t, accounts.Create(models.NewTrialAccount("U1", "T1", "", 7, testNow)))

	warning, err := svc.CheckExpiry("U1", "T1")
	require.NoError(t, err)
	assert.Nil(t, warning)

	warning, err = svc.CheckExpiry("U2", "T1")
	require.NoError(t, err)
	assert.Nil(t, warning)
}

func TestGetOrCreateAccountStartsTrial(t *testing.T) {
	svc, _, _ := newTestService(allFlagsOn())

	account, err := svc.GetOrCreateAccount("U1", "T1", "u@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.SUBSCRIPTION_STATUS_TRIAL, account.SubscriptionStatus)
	require.NotNil(t, account.TrialEnd)
	assert.Equal(t, testNow.Add(7*24*time.Hour), *account.TrialEnd)

	again, err := svc.GetOrCreateAccount("U1", "T1", "u@example.com")
	require.NoError(t, err)
	assert.Equal(t, account.TrialEnd.Unix(), again.TrialEnd.Unix())
}

func TestGetOrCreateAccountRefreshesEmail(t *testing.T) {
	svc, accounts, _ := newTestService(allFlagsOn())
	require.NoError(t, accounts.Create(models.NewTrialAccount("U1", "T1", "old@example.com", 7, testNow)))

	account, err := svc.GetOrCreateAccount("U1", "T1", "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", account.Email)
	require.NotNil(t, account.LastLoginAt)
}

func TestRecordUsage(t *testing.T) {
	svc, _, usage := newTestService(allFlagsOn())

	require.NoError(t, svc.RecordUsage("U1", "T1", "report.pdf"))
	require.Len(t, usage.events, 1)
	event := usage.events[0]
	assert.Equal(t, models.MonthKey(testNow), event.Month)
	assert.Equal(t, "report.pdf", event.FileName)
	assert.Equal(t, models.SUBSCRIPTION_STATUS_TRIAL, event.StatusAtTime)
}

func TestRecordUsageDisabledTrackingIsNoop(t *testing.T) {
	flags := allFlagsOn()
	flags.tracking = false
	svc, _, usage := newTestService(flags)

	require.NoError(t, svc.RecordUsage("U1", "T1", "report.pdf"))
	assert.Empty(t, usage.events)
}

func TestListMonthUsage(t *testing.T) {
	svc, _, usage := newTestService(allFlagsOn())
	month := models.MonthKey(testNow)
	usage.events = append(usage.events,
		&models.UsageEvent{UserID: "U1", TeamID: "T1", Month: month, FileName: "a.pdf"},
		&models.UsageEvent{UserID: "U1", TeamID: "T1", Month: "2025-01", FileName: "old.pdf"},
		&models.UsageEvent{UserID: "U2", TeamID: "T1", Month: month, FileName: "other.pdf"},
	)

	events, err := svc.ListMonthUsage("U1", "T1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "a.pdf", events[0].FileName)
}

func TestResetAllUsage(t *testing.T) {
	svc, _, usage := newTestService(allFlagsOn())
	usage.events = append(usage.events, &models.UsageEvent{UserID: "U1", TeamID: "T1"})

	require.NoError(t, svc.ResetAllUsage())
	assert.True(t, usage.truncated)
	assert.Empty(t, usage.events)
}
