// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package fees holds the transfer fee settings and the per-account
// exemption registry, and computes the principal/fee split of a transfer.
package fees

import (
	"errors"
	"fmt"
	"sync"

	"github.com/luxfi/ids"

	safemath "github.com/luxfi/math"
)

// MaxRate is the fee rate denominator. Rates are expressed in
// parts-per-thousand, so a rate of MaxRate takes the whole amount.
const MaxRate = 1000

var (
	ErrInvalidFeeRate  = errors.New("fee rate above 1000 parts-per-thousand")
	ErrZeroCollector   = errors.New("fee collector must not be the empty address")
	ErrCollectorLocked = errors.New("fee collector is locked")
)

// Settings is a snapshot of the fee policy.
type Settings struct {
	// Rate in parts-per-thousand, 0-1000 inclusive.
	Rate uint64 `json:"rate"`
	// Cap is the absolute ceiling on the fee of a single transfer. 0 means
	// unbounded.
	Cap uint64 `json:"cap"`
	// Collector receives the fee leg of every transfer.
	Collector ids.ShortID `json:"collector"`
	// Locked freezes the collector. One-way.
	Locked bool `json:"locked"`
}

// Verify returns nil iff the settings are well formed.
func (s *Settings) Verify() error {
	switch {
	case s.Rate > MaxRate:
		return fmt.Errorf("%w: %d", ErrInvalidFeeRate, s.Rate)
	case s.Collector == ids.ShortEmpty:
		return ErrZeroCollector
	default:
		return nil
	}
}

// Exemption are the per-account fee overrides. The zero value is the
// default for accounts without an entry.
type Exemption struct {
	// FromFees waives the fee on transfers this account takes part in.
	FromFees bool `json:"fromFees"`
	// ToFees marks the current collector. Tracked for symmetry; the split
	// never consults it.
	ToFees bool `json:"toFees"`
}

// Manager owns the fee settings and the exemption registry.
type Manager struct {
	mu         sync.RWMutex
	settings   Settings
	exemptions map[ids.ShortID]Exemption
}

// New validates [settings] and seeds the registry: [authority] is exempt
// from fees and the collector is flagged as the fee recipient.
func New(settings Settings, authority ids.ShortID) (*Manager, error) {
	if err := settings.Verify(); err != nil {
		return nil, err
	}

	m := &Manager{
		settings:   settings,
		exemptions: make(map[ids.ShortID]Exemption),
	}
	m.exemptions[authority] = Exemption{FromFees: true}
	m.exemptions[settings.Collector] = Exemption{ToFees: true}
	return m, nil
}

// Settings returns the current fee policy snapshot.
func (m *Manager) Settings() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.settings
}

// Collector returns the current fee recipient.
func (m *Manager) Collector() ids.ShortID {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.settings.Collector
}

// Exemption returns [addr]'s registry entry, or the zero entry if absent.
func (m *Manager) Exemption(addr ids.ShortID) Exemption {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.exemptions[addr]
}

// IsExemptFromFees reports whether transfers involving [addr] skip the fee.
func (m *Manager) IsExemptFromFees(addr ids.ShortID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.exemptions[addr].FromFees
}

// IsExemptToFees reports whether [addr] is flagged as the fee recipient.
func (m *Manager) IsExemptToFees(addr ids.ShortID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.exemptions[addr].ToFees
}

// SetExemption overwrites [addr]'s registry entry wholesale.
func (m *Manager) SetExemption(addr ids.ShortID, exemption Exemption) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.exemptions[addr] = exemption
}

// Lock freezes the collector. Calling Lock on an already locked manager is
// a no-op.
func (m *Manager) Lock() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings.Locked = true
}

// Update replaces the fee policy. The update is all-or-nothing: if the
// collector is locked and [collector] differs from the current one, the
// call fails before any field is modified. On a collector change the old
// collector's exemption entry is cleared and the new collector is flagged
// as the fee recipient.
func (m *Manager) Update(rate, cap uint64, collector ids.ShortID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	updated := Settings{
		Rate:      rate,
		Cap:       cap,
		Collector: collector,
		Locked:    m.settings.Locked,
	}
	if err := updated.Verify(); err != nil {
		return err
	}
	if m.settings.Locked && collector != m.settings.Collector {
		return ErrCollectorLocked
	}

	if old := m.settings.Collector; collector != old {
		m.exemptions[old] = Exemption{}
		m.exemptions[collector] = Exemption{ToFees: true}
	}
	m.settings = updated
	return nil
}

// Split divides [amount] into the principal delivered to the recipient and
// the fee diverted to the collector. If either party is exempt from fees
// the whole amount is principal. The two parts always sum to [amount].
func (m *Manager) Split(sender, recipient ids.ShortID, amount uint64) (uint64, uint64) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.exemptions[sender].FromFees || m.exemptions[recipient].FromFees {
		return amount, 0
	}

	fee := feeOf(amount, m.settings.Rate)
	if cap := m.settings.Cap; cap > 0 && fee > cap {
		fee = cap
	}
	return amount - fee, fee
}

// feeOf returns floor(amount*rate/MaxRate) without overflowing.
func feeOf(amount, rate uint64) uint64 {
	if product, err := safemath.Mul(amount, rate); err == nil {
		return product / MaxRate
	}
	// The product doesn't fit in 64 bits. Split the amount into whole
	// thousands and a remainder; both partial products stay in range and
	// the truncation matches the single division.
	return amount/MaxRate*rate + amount%MaxRate*rate/MaxRate
}
