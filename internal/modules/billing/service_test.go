package billing

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendlotto/invest/internal/database"
	"github.com/trendlotto/invest/internal/modules/auth"
)

func testService(t *testing.T) (*Service, *auth.UserRepository, int64) {
	t.Helper()
	db, err := database.New(database.Config{
		Path: filepath.Join(t.TempDir(), "app.db"),
		Name: "app",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })

	res, err := db.Exec(`
		INSERT INTO users (username, hashed_password, membership, created_at)
		VALUES ('alice', 'x', 'basic', ?)
	`, time.Now().Unix())
	require.NoError(t, err)
	userID, err := res.LastInsertId()
	require.NoError(t, err)

	users := auth.NewUserRepository(db.Conn(), zerolog.Nop())
	return NewService(db.Conn(), users, zerolog.Nop()), users, userID
}

func TestConfirmPaymentUpgradesUser(t *testing.T) {
	s, users, userID := testService(t)

	p, err := s.ConfirmPayment(userID, "4900", "KRW", "toss-7781")
	require.NoError(t, err)
	assert.NotEmpty(t, p.TransactionID)
	assert.True(t, p.Amount.Equal(decimal.NewFromInt(4900)))

	user, err := users.GetByID(userID)
	require.NoError(t, err)
	assert.Equal(t, "premium", user.Membership)

	history, err := s.History(userID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, p.TransactionID, history[0].TransactionID)
}

func TestConfirmPaymentRejectsUnderpayment(t *testing.T) {
	s, _, userID := testService(t)

	_, err := s.ConfirmPayment(userID, "4899.99", "KRW", "toss-7781")
	assert.Error(t, err)

	_, err = s.ConfirmPayment(userID, "not-a-number", "KRW", "toss-7781")
	assert.Error(t, err)

	_, err = s.ConfirmPayment(userID, "4900", "KRW", "")
	assert.Error(t, err)
}

func TestConfirmPaymentUnknownUser(t *testing.T) {
	s, _, userID := testService(t)

	_, err := s.ConfirmPayment(userID+99, "4900", "KRW", "toss-7781")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user not found")
}

func TestDowngrade(t *testing.T) {
	s, users, userID := testService(t)

	_, err := s.ConfirmPayment(userID, "4900", "KRW", "toss-7781")
	require.NoError(t, err)

	require.NoError(t, s.Downgrade(userID))

	user, err := users.GetByID(userID)
	require.NoError(t, err)
	assert.Equal(t, "basic", user.Membership)
}

func TestAmountsKeepDecimalPrecision(t *testing.T) {
	s, _, userID := testService(t)

	p, err := s.ConfirmPayment(userID, "4900.10", "KRW", "toss-7781")
	require.NoError(t, err)

	history, err := s.History(userID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "4900.1", history[0].Amount.String())
	assert.True(t, p.Amount.Equal(history[0].Amount))
}
