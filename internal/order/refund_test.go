package order

import (
	"testing"

	"glowdesk/internal/model"

	"github.com/stretchr/testify/assert"
)

func paidOrder(total int64) model.Order {
	return model.Order{
		Status:        model.OrderPaid,
		PaymentStatus: model.PaymentCaptured,
		Total:         total,
	}
}

func TestApplyRefund_PartialThenFullThenReplay(t *testing.T) {
	o := paidOrder(10000)

	// First refund of half the total.
	out := ApplyRefund(o, 5000)
	assert.EqualValues(t, 5000, out.Applied)
	assert.EqualValues(t, 5000, out.Order.RefundedAmount)
	assert.Equal(t, model.PaymentPartiallyRefunded, out.Order.PaymentStatus)
	assert.False(t, out.FullyRefunded)

	// Second refund covers the rest.
	out = ApplyRefund(out.Order, 5000)
	assert.EqualValues(t, 5000, out.Applied)
	assert.EqualValues(t, 10000, out.Order.RefundedAmount)
	assert.Equal(t, model.PaymentRefunded, out.Order.PaymentStatus)
	assert.True(t, out.FullyRefunded)

	// A third attempt of any amount applies nothing and never overdraws.
	out = ApplyRefund(out.Order, 9999)
	assert.EqualValues(t, 0, out.Applied)
	assert.EqualValues(t, 10000, out.Order.RefundedAmount)
	assert.Equal(t, model.PaymentRefunded, out.Order.PaymentStatus)
}

func TestApplyRefund_ClampsOverdraft(t *testing.T) {
	out := ApplyRefund(paidOrder(10000), 25000)
	assert.EqualValues(t, 10000, out.Applied)
	assert.EqualValues(t, 10000, out.Order.RefundedAmount)
	assert.Equal(t, model.PaymentRefunded, out.Order.PaymentStatus)
}

func TestApplyRefund_NegativeAndZero(t *testing.T) {
	o := paidOrder(10000)

	out := ApplyRefund(o, -500)
	assert.EqualValues(t, 0, out.Applied)
	assert.Equal(t, model.PaymentCaptured, out.Order.PaymentStatus, "no refund means payment status unchanged")

	out = ApplyRefund(o, 0)
	assert.EqualValues(t, 0, out.Applied)
	assert.Equal(t, model.PaymentCaptured, out.Order.PaymentStatus)
}

func TestClampRefund(t *testing.T) {
	o := paidOrder(10000)
	o.RefundedAmount = 4000

	assert.EqualValues(t, 3000, ClampRefund(o, 3000))
	assert.EqualValues(t, 6000, ClampRefund(o, 9000))
	assert.EqualValues(t, 0, ClampRefund(o, -1))
}
