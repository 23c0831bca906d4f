package application

import (
	"time"

	"github.com/bnema/balance-dispatcher/internal/domain"
)

const (
	DefaultOutDir       = "output"
	DefaultSleepBetween = 3 * time.Second
)

type RunOptions struct {
	OutDir       string
	DryRun       bool
	SleepBetween time.Duration
	// OnResult, when set, receives every recipient result as soon as it is known.
	OnResult func(domain.RecipientResult)
}

func (o RunOptions) withDefaults() RunOptions {
	if o.OutDir == "" {
		o.OutDir = DefaultOutDir
	}
	if o.SleepBetween < 0 {
		o.SleepBetween = 0
	}
	return o
}

func (o RunOptions) notify(result domain.RecipientResult) {
	if o.OnResult != nil {
		o.OnResult(result)
	}
}
