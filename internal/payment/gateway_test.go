package payment

import (
	"testing"

	"glowdesk/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapIntentStatus(t *testing.T) {
	tests := []struct {
		intent string
		want   model.PaymentStatus
	}{
		{IntentRequiresPaymentMethod, model.PaymentPending},
		{IntentRequiresCapture, model.PaymentAuthorized},
		{IntentSucceeded, model.PaymentCaptured},
		{IntentCanceled, model.PaymentCancelled},
	}

	for _, tt := range tests {
		got, err := MapIntentStatus(tt.intent)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestMapIntentStatus_UnknownFailsLoudly(t *testing.T) {
	_, err := MapIntentStatus("requires_confirmation")

	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodeUnknownIntentStatus, domainErr.Code)
}
