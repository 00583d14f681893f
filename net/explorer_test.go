package net

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

const paymentWallet = "0xc6cde7c39eb2f0f0095f41570af89efc2c1ea828"

func wei(s string) *big.Int {
	n, _ := new(big.Int).SetString(s, 10)
	return n
}

func TestEvaluatePaymentWrongRecipient(t *testing.T) {
	tx := &proxyTransaction{
		Hash:        "0xabc",
		To:          "0xdAC17F958D2ee523a2206206994597C13D831ec7",
		Value:       "0xde0b6b3a7640000", // 1 ether
		BlockNumber: "0x10",
	}
	verdict := evaluatePayment(tx, &proxyReceipt{Status: "0x1"}, paymentWallet, wei("1000000000000000000"))

	assert.False(t, verdict.Verified)
	assert.Equal(t, ReasonWrongRecipient, verdict.Reason)
}

func TestEvaluatePaymentNotFound(t *testing.T) {
	verdict := evaluatePayment(nil, nil, paymentWallet, wei("1000000000000000000"))
	assert.Equal(t, ReasonNotFound, verdict.Reason)

	verdict = evaluatePayment(&proxyTransaction{}, nil, paymentWallet, wei("1000000000000000000"))
	assert.Equal(t, ReasonNotFound, verdict.Reason)
}

func TestEvaluatePaymentPending(t *testing.T) {
	tx := &proxyTransaction{Hash: "0xabc", To: paymentWallet, Value: "0xde0b6b3a7640000"}
	verdict := evaluatePayment(tx, nil, paymentWallet, wei("1000000000000000000"))
	assert.Equal(t, ReasonPending, verdict.Reason)
}

func TestEvaluatePaymentFailedOnChain(t *testing.T) {
	tx := &proxyTransaction{Hash: "0xabc", To: paymentWallet, Value: "0xde0b6b3a7640000", BlockNumber: "0x10"}
	verdict := evaluatePayment(tx, &proxyReceipt{Status: "0x0"}, paymentWallet, wei("1000000000000000000"))
	assert.Equal(t, ReasonFailedOnChain, verdict.Reason)
}

func TestEvaluatePaymentAmountTolerance(t *testing.T) {
	expected := wei("1000000000000000000")

	// 0.5% under: within the 1% tolerance.
	okTx := &proxyTransaction{Hash: "0xabc", To: paymentWallet, Value: "0xdcef33a6f838000", BlockNumber: "0x10"}
	verdict := evaluatePayment(okTx, &proxyReceipt{Status: "0x1"}, paymentWallet, expected)
	assert.True(t, verdict.Verified)
	assert.Empty(t, verdict.Reason)

	// 5% under: rejected.
	shortTx := &proxyTransaction{Hash: "0xabc", To: paymentWallet, Value: "0xd2f13f7789f0000", BlockNumber: "0x10"}
	verdict = evaluatePayment(shortTx, &proxyReceipt{Status: "0x1"}, paymentWallet, expected)
	assert.False(t, verdict.Verified)
	assert.Equal(t, ReasonAmountMismatch, verdict.Reason)
}

func TestEvaluatePaymentRecipientCaseInsensitive(t *testing.T) {
	tx := &proxyTransaction{
		Hash:        "0xabc",
		To:          "0xC6CDE7C39eB2f0F0095F41570af89eFC2C1Ea828",
		Value:       "0xde0b6b3a7640000",
		BlockNumber: "0x10",
	}
	verdict := evaluatePayment(tx, &proxyReceipt{Status: "0x1"}, paymentWallet, wei("1000000000000000000"))
	assert.True(t, verdict.Verified)
}
