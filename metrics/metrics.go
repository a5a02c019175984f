// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics tracks the operations accepted by the token core.
package metrics

import (
	"errors"

	"github.com/luxfi/metric"
)

const opLabel = "op"

var (
	_ Metrics = (*metricsImpl)(nil)

	opLabels = []string{opLabel}
)

type Metrics interface {
	metric.APIInterceptor

	// MarkAccepted counts one accepted operation of the named kind.
	MarkAccepted(op string)
	// MarkFeeCollected counts fee units diverted to the collector.
	MarkFeeCollected(units uint64)
	// MarkMinted counts units added to the supply.
	MarkMinted(units uint64)
	// MarkBurned counts units removed from the supply.
	MarkBurned(units uint64)
}

type metricsImpl struct {
	numOps            metric.CounterVec
	feeUnitsCollected metric.Counter
	unitsMinted       metric.Counter
	unitsBurned       metric.Counter

	metric.APIInterceptor
}

func New(registerer metric.Registerer) (Metrics, error) {
	registry, ok := registerer.(metric.Registry)
	if !ok {
		return nil, errors.New("registerer must implement metric.Registry")
	}

	m := &metricsImpl{
		numOps: metric.NewCounterVec(
			metric.CounterOpts{
				Name: "ops_accepted",
				Help: "number of operations accepted",
			},
			opLabels,
		),
		feeUnitsCollected: metric.NewCounter(metric.CounterOpts{
			Name: "fee_units_collected",
			Help: "number of units diverted to the fee collector",
		}),
		unitsMinted: metric.NewCounter(metric.CounterOpts{
			Name: "units_minted",
			Help: "number of units added to the total supply",
		}),
		unitsBurned: metric.NewCounter(metric.CounterOpts{
			Name: "units_burned",
			Help: "number of units removed from the total supply",
		}),
	}

	apiRequestMetric, err := metric.NewAPIInterceptor(registry)
	m.APIInterceptor = apiRequestMetric
	return m, err
}

func (m *metricsImpl) MarkAccepted(op string) {
	m.numOps.With(metric.Labels{
		opLabel: op,
	}).Inc()
}

func (m *metricsImpl) MarkFeeCollected(units uint64) {
	m.feeUnitsCollected.Add(float64(units))
}

func (m *metricsImpl) MarkMinted(units uint64) {
	m.unitsMinted.Add(float64(units))
}

func (m *metricsImpl) MarkBurned(units uint64) {
	m.unitsBurned.Add(float64(units))
}
