package payment

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mkravets/brewcart/internal/checkout"
)

var declineReasons = []string{
	"insufficient funds",
	"expired card",
	"suspected fraud",
	"card blocked",
	"issuer unavailable",
}

// Simulator approves roughly 95 of 100 charges and declines the rest
// with a rotating reason. Seedable so tests are deterministic. Used when
// no real gateway is configured.
type Simulator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulator(seed int64) *Simulator {
	return &Simulator{rng: rand.New(rand.NewSource(seed))}
}

func (s *Simulator) Charge(_ context.Context, amount decimal.Decimal, _ checkout.Details) (*checkout.ChargeResult, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("cannot charge negative amount %s", amount)
	}

	s.mu.Lock()
	roll := s.rng.Intn(100)
	s.mu.Unlock()

	if roll < 95 {
		return &checkout.ChargeResult{
			Approved:  true,
			Reference: "TXN-" + uuid.NewString(),
		}, nil
	}

	return &checkout.ChargeResult{
		Approved:      false,
		DeclineReason: declineReasons[roll%len(declineReasons)],
	}, nil
}
