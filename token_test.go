// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package feetoken

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/database"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/luxfi/feetoken/fees"
	"github.com/luxfi/feetoken/state"
	feejson "github.com/luxfi/feetoken/utils/json"
)

// sinkSpy records every emitted event in order.
type sinkSpy struct {
	events []Event
}

func (s *sinkSpy) Emit(ev Event) {
	s.events = append(s.events, ev)
}

type testEnv struct {
	token     *Token
	db        database.Database
	sink      *sinkSpy
	authority ids.ShortID
	collector ids.ShortID
}

func newTestEnv(t *testing.T, rate, cap, initialSupply uint64) *testEnv {
	require := require.New(t)

	env := &testEnv{
		db:        memdb.New(),
		sink:      &sinkSpy{},
		authority: ids.GenerateTestShortID(),
		collector: ids.GenerateTestShortID(),
	}

	genesis := &Genesis{
		Name:          "Fee Token",
		Symbol:        "FEE",
		InitialSupply: feejson.Uint64(initialSupply),
		Authority:     env.authority,
		Fees: fees.Settings{
			Rate:      rate,
			Cap:       cap,
			Collector: env.collector,
		},
	}

	token, err := New(genesis, env.db, log.NewNoOpLogger(), metric.NewRegistry(), env.sink)
	require.NoError(err)
	env.token = token
	env.sink.events = nil // drop the genesis mint event
	return env
}

// fund moves units from the authority to [addr] without taking a fee, so
// tests can set up non-exempt balances.
func (env *testEnv) fund(t *testing.T, addr ids.ShortID, amount uint64) {
	require.NoError(t, env.token.Transfer(env.authority, addr, amount))
	env.sink.events = nil
}

func (env *testEnv) balance(t *testing.T, addr ids.ShortID) uint64 {
	balance, err := env.token.BalanceOf(addr)
	require.NoError(t, err)
	return balance
}

func TestNew(t *testing.T) {
	require := require.New(t)

	db := memdb.New()
	sink := &sinkSpy{}
	authority := ids.GenerateTestShortID()
	collector := ids.GenerateTestShortID()
	genesis := &Genesis{
		Name:          "Fee Token",
		Symbol:        "FEE",
		InitialSupply: 1_000_000,
		Authority:     authority,
		Fees: fees.Settings{
			Rate:      10,
			Collector: collector,
		},
	}

	token, err := New(genesis, db, log.NewNoOpLogger(), metric.NewRegistry(), sink)
	require.NoError(err)

	require.Equal("Fee Token", token.Name())
	require.Equal("FEE", token.Symbol())
	require.Equal(authority, token.Authority())

	supply, err := token.TotalSupply()
	require.NoError(err)
	require.Equal(uint64(1_000_000), supply)

	balance, err := token.BalanceOf(authority)
	require.NoError(err)
	require.Equal(uint64(1_000_000), balance)

	// The authority skips fees, the collector is flagged as recipient.
	require.Equal(fees.Exemption{FromFees: true}, token.Exemption(authority))
	require.Equal(fees.Exemption{ToFees: true}, token.Exemption(collector))

	require.Equal([]Event{
		&MintEvent{To: authority, Amount: 1_000_000},
	}, sink.events)

	// Reopening over the same database must not mint again.
	token, err = New(genesis, db, log.NewNoOpLogger(), metric.NewRegistry(), sink)
	require.NoError(err)

	supply, err = token.TotalSupply()
	require.NoError(err)
	require.Equal(uint64(1_000_000), supply)
}

func TestNewInvalidGenesis(t *testing.T) {
	authority := ids.GenerateTestShortID()
	collector := ids.GenerateTestShortID()

	tests := []struct {
		name        string
		genesis     *Genesis
		expectedErr error
	}{
		{
			name: "rate out of range",
			genesis: &Genesis{
				Name:      "Fee Token",
				Symbol:    "FEE",
				Authority: authority,
				Fees: fees.Settings{
					Rate:      fees.MaxRate + 1,
					Collector: collector,
				},
			},
			expectedErr: fees.ErrInvalidFeeRate,
		},
		{
			name: "empty collector",
			genesis: &Genesis{
				Name:      "Fee Token",
				Symbol:    "FEE",
				Authority: authority,
				Fees: fees.Settings{
					Rate: 10,
				},
			},
			expectedErr: fees.ErrZeroCollector,
		},
		{
			name: "empty authority",
			genesis: &Genesis{
				Name:   "Fee Token",
				Symbol: "FEE",
				Fees: fees.Settings{
					Rate:      10,
					Collector: collector,
				},
			},
			expectedErr: ErrZeroAuthority,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := New(test.genesis, memdb.New(), log.NewNoOpLogger(), metric.NewRegistry(), &sinkSpy{})
			require.ErrorIs(t, err, test.expectedErr)
		})
	}
}

func TestTransferWithFee(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, 10, 0, 1_000_000) // 1%
	alice := ids.GenerateTestShortID()
	bob := ids.GenerateTestShortID()
	env.fund(t, alice, 10_000)

	require.NoError(env.token.Transfer(alice, bob, 1000))

	require.Equal(uint64(9000), env.balance(t, alice))
	require.Equal(uint64(990), env.balance(t, bob))
	require.Equal(uint64(10), env.balance(t, env.collector))

	// The supply is conserved.
	supply, err := env.token.TotalSupply()
	require.NoError(err)
	require.Equal(uint64(1_000_000), supply)

	require.Equal([]Event{
		&TransferEvent{From: alice, To: bob, Amount: 990},
		&TransferEvent{From: alice, To: env.collector, Amount: 10},
		&FeesDistributedEvent{Sender: alice, Recipient: bob, Amount: 1000, Fee: 10},
	}, env.sink.events)
}

func TestTransferCappedFee(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, 10, 5, 1_000_000)
	alice := ids.GenerateTestShortID()
	bob := ids.GenerateTestShortID()
	env.fund(t, alice, 10_000)

	require.NoError(env.token.Transfer(alice, bob, 1000))

	require.Equal(uint64(995), env.balance(t, bob))
	require.Equal(uint64(5), env.balance(t, env.collector))
}

func TestTransferExemptSender(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, 100, 0, 1_000_000) // 10%
	bob := ids.GenerateTestShortID()

	// The authority is exempt from fees.
	require.NoError(env.token.Transfer(env.authority, bob, 500))

	require.Equal(uint64(500), env.balance(t, bob))
	require.Zero(env.balance(t, env.collector))

	require.Equal([]Event{
		&TransferEvent{From: env.authority, To: bob, Amount: 500},
	}, env.sink.events)
}

func TestTransferInsufficientBalance(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, 10, 0, 1_000_000)
	alice := ids.GenerateTestShortID()
	bob := ids.GenerateTestShortID()
	env.fund(t, alice, 100)

	err := env.token.Transfer(alice, bob, 101)
	require.ErrorIs(err, state.ErrInsufficientBalance)

	require.Equal(uint64(100), env.balance(t, alice))
	require.Zero(env.balance(t, bob))
	require.Empty(env.sink.events)
}

func TestTransferRollsBackPrincipalWhenFeeLegFails(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, 10, 0, 1_000_000) // 1%
	alice := ids.GenerateTestShortID()
	bob := ids.GenerateTestShortID()

	// Alice can cover the principal of a 1000 unit transfer but not the
	// fee on top of it.
	env.fund(t, alice, 995)

	err := env.token.Transfer(alice, bob, 1000)
	require.ErrorIs(err, state.ErrInsufficientBalance)

	// The principal move must not survive the failed fee move.
	require.Equal(uint64(995), env.balance(t, alice))
	require.Zero(env.balance(t, bob))
	require.Zero(env.balance(t, env.collector))
	require.Empty(env.sink.events)
}

func TestTransferFrom(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, 10, 0, 1_000_000) // 1%
	alice := ids.GenerateTestShortID()
	bob := ids.GenerateTestShortID()
	carol := ids.GenerateTestShortID()
	env.fund(t, alice, 10_000)

	require.NoError(env.token.Approve(alice, carol, 1500))
	require.NoError(env.token.TransferFrom(carol, alice, bob, 1000))

	require.Equal(uint64(9000), env.balance(t, alice))
	require.Equal(uint64(990), env.balance(t, bob))
	require.Equal(uint64(10), env.balance(t, env.collector))

	// The allowance is consumed by the full requested amount, not the
	// principal.
	allowance, err := env.token.Allowance(alice, carol)
	require.NoError(err)
	require.Equal(uint64(500), allowance)
}

func TestTransferFromAllowanceExceeded(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, 10, 0, 1_000_000)
	alice := ids.GenerateTestShortID()
	bob := ids.GenerateTestShortID()
	carol := ids.GenerateTestShortID()
	env.fund(t, alice, 10_000)

	require.NoError(env.token.Approve(alice, carol, 999))

	err := env.token.TransferFrom(carol, alice, bob, 1000)
	require.ErrorIs(err, state.ErrAllowanceExceeded)

	require.Equal(uint64(10_000), env.balance(t, alice))
	require.Zero(env.balance(t, bob))

	allowance, err := env.token.Allowance(alice, carol)
	require.NoError(err)
	require.Equal(uint64(999), allowance)
}

func TestTransferFromRollsBackAllowanceOnFailedMove(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, 10, 0, 1_000_000)
	alice := ids.GenerateTestShortID()
	bob := ids.GenerateTestShortID()
	carol := ids.GenerateTestShortID()
	env.fund(t, alice, 500)

	require.NoError(env.token.Approve(alice, carol, 1000))

	err := env.token.TransferFrom(carol, alice, bob, 1000)
	require.ErrorIs(err, state.ErrInsufficientBalance)

	// The allowance decrement must not survive the failed move.
	allowance, err := env.token.Allowance(alice, carol)
	require.NoError(err)
	require.Equal(uint64(1000), allowance)
}

func TestMint(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, 10, 0, 1_000_000)
	alice := ids.GenerateTestShortID()

	require.NoError(env.token.Mint(env.authority, alice, 5000))

	require.Equal(uint64(5000), env.balance(t, alice))

	supply, err := env.token.TotalSupply()
	require.NoError(err)
	require.Equal(uint64(1_005_000), supply)

	require.Equal([]Event{
		&MintEvent{To: alice, Amount: 5000},
	}, env.sink.events)

	err = env.token.Mint(alice, alice, 5000)
	require.ErrorIs(err, ErrUnauthorized)
}

func TestBurn(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, 10, 0, 1_000_000)
	alice := ids.GenerateTestShortID()
	env.fund(t, alice, 1000)

	require.NoError(env.token.Burn(alice, 400))

	require.Equal(uint64(600), env.balance(t, alice))

	supply, err := env.token.TotalSupply()
	require.NoError(err)
	require.Equal(uint64(999_600), supply)

	require.Equal([]Event{
		&BurnEvent{From: alice, Amount: 400},
	}, env.sink.events)

	err = env.token.Burn(alice, 601)
	require.ErrorIs(err, state.ErrInsufficientBalance)
}

func TestBurnFrom(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, 10, 0, 1_000_000)
	alice := ids.GenerateTestShortID()
	env.fund(t, alice, 1000)

	// Non-authority callers are rejected and balances are untouched.
	err := env.token.BurnFrom(alice, alice, 400)
	require.ErrorIs(err, ErrUnauthorized)
	require.Equal(uint64(1000), env.balance(t, alice))

	// The authority burns without holding any allowance.
	require.NoError(env.token.BurnFrom(env.authority, alice, 400))
	require.Equal(uint64(600), env.balance(t, alice))
}

func TestUpdateFeePolicy(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, 10, 100, 1_000_000)
	newCollector := ids.GenerateTestShortID()

	err := env.token.UpdateFeePolicy(newCollector, 20, 200, newCollector)
	require.ErrorIs(err, ErrUnauthorized)

	require.NoError(env.token.UpdateFeePolicy(env.authority, 20, 200, newCollector))

	settings := env.token.FeeSettings()
	require.Equal(uint64(20), settings.Rate)
	require.Equal(uint64(200), settings.Cap)
	require.Equal(newCollector, settings.Collector)

	// Exemption bookkeeping follows the collector.
	require.Equal(fees.Exemption{}, env.token.Exemption(env.collector))
	require.Equal(fees.Exemption{ToFees: true}, env.token.Exemption(newCollector))

	require.Equal([]Event{
		&FeeSettingsUpdatedEvent{Rate: 20, Cap: 200, Collector: newCollector},
	}, env.sink.events)
}

func TestUpdateFeePolicyLockedCollector(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, 10, 100, 1_000_000)

	require.NoError(env.token.LockCollector(env.authority))

	err := env.token.UpdateFeePolicy(env.authority, 20, 200, ids.GenerateTestShortID())
	require.ErrorIs(err, fees.ErrCollectorLocked)

	// The rejected call leaves the rate and cap untouched.
	settings := env.token.FeeSettings()
	require.Equal(uint64(10), settings.Rate)
	require.Equal(uint64(100), settings.Cap)
	require.Equal(env.collector, settings.Collector)
	require.Empty(env.sink.events)

	// Updates that keep the collector still apply.
	require.NoError(env.token.UpdateFeePolicy(env.authority, 20, 200, env.collector))
	settings = env.token.FeeSettings()
	require.Equal(uint64(20), settings.Rate)
	require.Equal(uint64(200), settings.Cap)
}

func TestLockCollector(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, 10, 0, 1_000_000)

	err := env.token.LockCollector(ids.GenerateTestShortID())
	require.ErrorIs(err, ErrUnauthorized)
	require.False(env.token.FeeSettings().Locked)

	require.NoError(env.token.LockCollector(env.authority))
	require.True(env.token.FeeSettings().Locked)

	// Locking twice succeeds with no observable change.
	require.NoError(env.token.LockCollector(env.authority))
	require.True(env.token.FeeSettings().Locked)
}

func TestSetExemption(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, 100, 0, 1_000_000) // 10%
	alice := ids.GenerateTestShortID()
	bob := ids.GenerateTestShortID()
	env.fund(t, alice, 1000)

	err := env.token.SetExemption(alice, alice, true, false)
	require.ErrorIs(err, ErrUnauthorized)

	require.NoError(env.token.SetExemption(env.authority, alice, true, false))
	require.Equal(fees.Exemption{FromFees: true}, env.token.Exemption(alice))
	require.Equal([]Event{
		&ExemptionUpdatedEvent{Account: alice, FromFees: true},
	}, env.sink.events)
	env.sink.events = nil

	// The exemption takes effect on transfers.
	require.NoError(env.token.Transfer(alice, bob, 500))
	require.Equal(uint64(500), env.balance(t, bob))
	require.Zero(env.balance(t, env.collector))

	// Entries are overwritten wholesale.
	require.NoError(env.token.SetExemption(env.authority, alice, false, false))
	require.Equal(fees.Exemption{}, env.token.Exemption(alice))
}
