package services

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gatofitnees/gatofit-backend/internal/config"
	"github.com/gatofitnees/gatofit-backend/internal/models"
	"github.com/gatofitnees/gatofit-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakePayPalAPI struct {
	sub  *PayPalSubscription
	plan *PayPalPlan
	err  error
}

func (f *fakePayPalAPI) GetSubscription(string) (*PayPalSubscription, error) {
	return f.sub, f.err
}

func (f *fakePayPalAPI) GetPlan(string) (*PayPalPlan, error) {
	return f.plan, f.err
}

func testConfig() *config.Config {
	return &config.Config{
		MonthlyPriceUSD: 9.99,
		YearlyPriceUSD:  59.99,
	}
}

func TestProcessWebhookEvent_DuplicateDelivery(t *testing.T) {
	db, mock, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	svc := NewSubscriptionService(db, testConfig(), &fakePayPalAPI{})

	mock.ExpectBegin()
	// conflicting insert affects zero rows, nothing else runs
	mock.ExpectExec(`INSERT INTO "webhook_events"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	ev := &BillingEvent{
		Kind:     EventPaymentCompleted,
		Provider: "revenuecat",
		EventID:  "evt-dup",
		UserID:   uuid.New(),
	}

	already, err := svc.ProcessWebhookEvent(ev, []byte(`{}`))

	require.NoError(t, err)
	assert.True(t, already)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessWebhookEvent_InformationalOnlyClaimsLedger(t *testing.T) {
	db, mock, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	svc := NewSubscriptionService(db, testConfig(), &fakePayPalAPI{})

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "webhook_events"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ev := &BillingEvent{
		Kind:      EventInformational,
		Provider:  "revenuecat",
		EventID:   "evt-info",
		EventType: "TRANSFER",
	}

	already, err := svc.ProcessWebhookEvent(ev, []byte(`{}`))

	require.NoError(t, err)
	assert.False(t, already)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessWebhookEvent_RenewalUpdatesSubscription(t *testing.T) {
	db, mock, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	svc := NewSubscriptionService(db, testConfig(), &fakePayPalAPI{})

	userID := uuid.New()
	subID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "webhook_events"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "user_subscriptions" WHERE user_id = \$1.*FOR UPDATE`).
		WithArgs(userID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "plan_type", "status", "expires_at", "paypal_subscription_id"}).
			AddRow(subID, userID, "monthly", "active", time.Now().Add(5*24*time.Hour), "I-SUB1"))
	mock.ExpectQuery(`SELECT \* FROM "payment_failures"`).
		WithArgs(subID, 1).
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectExec(`UPDATE "user_subscriptions"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ev := &BillingEvent{
		Kind:      EventPaymentCompleted,
		Provider:  "revenuecat",
		EventID:   "evt-renewal",
		EventType: "RENEWAL",
		UserID:    userID,
		PlanType:  models.PlanMonthly,
	}

	already, err := svc.ProcessWebhookEvent(ev, []byte(`{}`))

	require.NoError(t, err)
	assert.False(t, already)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessWebhookEvent_FailureRollsBackLedgerClaim(t *testing.T) {
	db, mock, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	svc := NewSubscriptionService(db, testConfig(), &fakePayPalAPI{})

	userID := uuid.New()
	dbErr := errors.New("connection reset")

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "webhook_events"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "user_subscriptions"`).
		WillReturnError(dbErr)
	mock.ExpectRollback()

	ev := &BillingEvent{
		Kind:     EventCancelled,
		Provider: "revenuecat",
		EventID:  "evt-err",
		UserID:   userID,
	}

	_, err := svc.ProcessWebhookEvent(ev, []byte(`{}`))

	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyCheckout_RejectsMidTermPlanChange(t *testing.T) {
	db, mock, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	var yearlyPlan PayPalPlan
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "P-YEARLY",
		"billing_cycles": [
			{"tenure_type": "REGULAR", "frequency": {"interval_unit": "YEAR", "interval_count": 1}}
		]
	}`), &yearlyPlan))

	paypal := &fakePayPalAPI{
		sub:  &PayPalSubscription{ID: "I-SUB1", Status: "ACTIVE", PlanID: "P-YEARLY"},
		plan: &yearlyPlan,
	}
	svc := NewSubscriptionService(db, testConfig(), paypal)

	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "user_subscriptions" WHERE user_id = \$1.*FOR UPDATE`).
		WithArgs(userID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "plan_type", "status", "expires_at"}).
			AddRow(uuid.New(), userID, "monthly", "active", time.Now().Add(10*24*time.Hour)))
	mock.ExpectRollback()

	_, err := svc.VerifyCheckout("I-SUB1", userID)

	assert.ErrorIs(t, err, ErrPlanChangeWhileActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyCheckout_RenewsWithRowLocked(t *testing.T) {
	db, mock, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	var monthlyPlan PayPalPlan
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "P-MONTHLY",
		"billing_cycles": [
			{"tenure_type": "REGULAR", "frequency": {"interval_unit": "MONTH", "interval_count": 1}}
		]
	}`), &monthlyPlan))

	paypal := &fakePayPalAPI{
		sub:  &PayPalSubscription{ID: "I-SUB1", Status: "ACTIVE", PlanID: "P-MONTHLY"},
		plan: &monthlyPlan,
	}
	svc := NewSubscriptionService(db, testConfig(), paypal)

	userID := uuid.New()
	subID := uuid.New()
	oldExpiry := time.Now().Add(-2 * 24 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "user_subscriptions" WHERE user_id = \$1.*FOR UPDATE`).
		WithArgs(userID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "plan_type", "status", "expires_at"}).
			AddRow(subID, userID, "monthly", "expired", oldExpiry))
	mock.ExpectExec(`UPDATE "user_subscriptions"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	sub, err := svc.VerifyCheckout("I-SUB1", userID)

	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, sub.Status)
	assert.Equal(t, models.PlanMonthly, sub.PlanType)
	assert.True(t, sub.ExpiresAt.After(time.Now().Add(29*24*time.Hour)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyCheckout_InactiveAtProvider(t *testing.T) {
	db, _, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	paypal := &fakePayPalAPI{
		sub: &PayPalSubscription{ID: "I-SUB1", Status: "CANCELLED"},
	}
	svc := NewSubscriptionService(db, testConfig(), paypal)

	_, err := svc.VerifyCheckout("I-SUB1", uuid.New())

	assert.ErrorIs(t, err, ErrSubscriptionNotActive)
}
