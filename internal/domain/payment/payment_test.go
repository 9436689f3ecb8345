package payment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMethod(t *testing.T) {
	cases := []struct {
		raw  string
		want Method
	}{
		{"cc", MethodCreditCard},
		{"CREDIT_CARD", MethodCreditCard},
		{"CreditCard", MethodCreditCard},
		{" cash ", MethodCash},
		{"UPI", MethodUPI},
	}
	for _, tc := range cases {
		got, err := ParseMethod(tc.raw)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}

	_, err := ParseMethod("cheque")
	assert.Error(t, err)
}

func TestRequiresVerification(t *testing.T) {
	assert.True(t, MethodCash.RequiresVerification())
	assert.False(t, MethodCreditCard.RequiresVerification())
	assert.False(t, MethodUPI.RequiresVerification())
}

func TestNewPayment_InitialStatusByMethod(t *testing.T) {
	electronic, err := NewPayment(uuid.New(), uuid.New(), MethodUPI, 5000, "txn-1")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, electronic.Status(), "electronic settles immediately")

	cash, err := NewPayment(uuid.New(), uuid.New(), MethodCash, 5000, "")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, cash.Status(), "cash waits for verification")
	assert.Nil(t, cash.VerifiedBy())
}

func TestNewPayment_Validation(t *testing.T) {
	_, err := NewPayment(uuid.Nil, uuid.New(), MethodUPI, 5000, "txn-1")
	assert.Error(t, err, "nil booking ID")

	_, err = NewPayment(uuid.New(), uuid.Nil, MethodUPI, 5000, "txn-1")
	assert.Error(t, err, "nil user ID")

	_, err = NewPayment(uuid.New(), uuid.New(), Method("barter"), 5000, "txn-1")
	assert.Error(t, err, "unknown method")

	_, err = NewPayment(uuid.New(), uuid.New(), MethodUPI, 0, "txn-1")
	assert.Error(t, err, "non-positive amount")
}

func TestVerify_Idempotent(t *testing.T) {
	cash, err := NewPayment(uuid.New(), uuid.New(), MethodCash, 5000, "")
	require.NoError(t, err)

	verifierID := uuid.New()
	now := time.Now().UTC()

	changed, err := cash.Verify(verifierID, now)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, StatusSuccess, cash.Status())
	require.NotNil(t, cash.VerifiedBy())
	assert.Equal(t, verifierID, *cash.VerifiedBy())
	require.NotNil(t, cash.VerifiedAt())

	changed, err = cash.Verify(uuid.New(), now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, changed, "repeat verification is a no-op")
	assert.Equal(t, verifierID, *cash.VerifiedBy(), "original verifier stamp is kept")
}

func TestVerify_RejectedAfterFailure(t *testing.T) {
	cash, err := NewPayment(uuid.New(), uuid.New(), MethodCash, 5000, "")
	require.NoError(t, err)
	require.NoError(t, cash.MarkFailed())

	_, err = cash.Verify(uuid.New(), time.Now().UTC())
	assert.Error(t, err)
	assert.Equal(t, StatusFailed, cash.Status())
}

func TestMarkSuccessMarkFailed(t *testing.T) {
	pending, err := NewPayment(uuid.New(), uuid.New(), MethodCash, 5000, "")
	require.NoError(t, err)

	require.NoError(t, pending.MarkSuccess())
	assert.Equal(t, StatusSuccess, pending.Status())
	assert.Error(t, pending.MarkFailed(), "settled payment cannot fail afterwards")

	other, err := NewPayment(uuid.New(), uuid.New(), MethodCash, 5000, "")
	require.NoError(t, err)
	require.NoError(t, other.MarkFailed())
	assert.Equal(t, StatusFailed, other.Status())
	assert.Error(t, other.MarkSuccess(), "failed payment cannot settle afterwards")
}
