// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package feetoken implements a fungible-value ledger that takes a
// configurable fee on every transfer, routes the fee to a designated
// collector, and gates supply and policy changes behind a single
// authority.
package feetoken

import (
	"errors"
	"fmt"
	"sync"

	"github.com/luxfi/database"
	"github.com/luxfi/database/versiondb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/luxfi/feetoken/fees"
	"github.com/luxfi/feetoken/metrics"
	"github.com/luxfi/feetoken/state"
)

const (
	opTransfer        = "transfer"
	opTransferFrom    = "transfer_from"
	opApprove         = "approve"
	opMint            = "mint"
	opBurn            = "burn"
	opBurnFrom        = "burn_from"
	opUpdateFeePolicy = "update_fee_policy"
	opLockCollector   = "lock_collector"
	opSetExemption    = "set_exemption"
)

var ErrUnauthorized = errors.New("caller is not the authority")

// Token is the fee-on-transfer token core. Operations run one at a time;
// each operation either applies all of its state changes or none of them.
// Balance and allowance writes go through a versiondb overlay that is
// committed only once every step of the operation has succeeded.
type Token struct {
	mu sync.RWMutex

	name      string
	symbol    string
	authority ids.ShortID

	fees    *fees.Manager
	baseDB  database.Database
	log     log.Logger
	metrics metrics.Metrics
	events  Sink
}

// New creates the token described by [genesis] over [db]. The initial
// supply is minted to the authority, unless [db] already holds token
// state from an earlier run.
func New(
	genesis *Genesis,
	db database.Database,
	logger log.Logger,
	registerer metric.Registerer,
	events Sink,
) (*Token, error) {
	if err := genesis.Verify(); err != nil {
		return nil, err
	}

	feeManager, err := fees.New(genesis.Fees, genesis.Authority)
	if err != nil {
		return nil, err
	}
	m, err := metrics.New(registerer)
	if err != nil {
		return nil, err
	}

	t := &Token{
		name:      genesis.Name,
		symbol:    genesis.Symbol,
		authority: genesis.Authority,
		fees:      feeManager,
		baseDB:    db,
		log:       logger,
		metrics:   m,
		events:    events,
	}

	vdb := versiondb.New(db)
	ledger := state.New(vdb)
	initialized, err := ledger.Initialized()
	if err != nil {
		return nil, err
	}
	if !initialized {
		supply := uint64(genesis.InitialSupply)
		if supply > 0 {
			if err := ledger.Mint(genesis.Authority, supply); err != nil {
				return nil, fmt.Errorf("failed to mint initial supply: %w", err)
			}
		}
		if err := ledger.SetInitialized(); err != nil {
			return nil, err
		}
		if err := vdb.Commit(); err != nil {
			return nil, err
		}
		if supply > 0 {
			t.events.Emit(&MintEvent{To: genesis.Authority, Amount: supply})
		}
	}

	logger.Info("initialized token",
		log.String("name", genesis.Name),
		log.String("symbol", genesis.Symbol),
		log.Uint64("initialSupply", uint64(genesis.InitialSupply)),
		log.Stringer("authority", genesis.Authority),
		log.Stringer("collector", genesis.Fees.Collector),
	)
	return t, nil
}

func (t *Token) Name() string {
	return t.name
}

func (t *Token) Symbol() string {
	return t.symbol
}

func (t *Token) Authority() ids.ShortID {
	return t.authority
}

// FeeSettings returns the current fee policy snapshot.
func (t *Token) FeeSettings() fees.Settings {
	return t.fees.Settings()
}

// Exemption returns [account]'s exemption entry, defaulting to no
// exemptions.
func (t *Token) Exemption(account ids.ShortID) fees.Exemption {
	return t.fees.Exemption(account)
}

// BalanceOf returns [account]'s balance.
func (t *Token) BalanceOf(account ids.ShortID) (uint64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return state.New(t.baseDB).Balance(account)
}

// Allowance returns how much [spender] may move on behalf of [owner].
func (t *Token) Allowance(owner, spender ids.ShortID) (uint64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return state.New(t.baseDB).Allowance(owner, spender)
}

// TotalSupply returns the number of units in circulation.
func (t *Token) TotalSupply() (uint64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return state.New(t.baseDB).TotalSupply()
}

// Transfer moves [amount] units from [sender] to [recipient], diverting
// the fee leg to the collector. The principal and fee moves are one
// atomic unit.
func (t *Token) Transfer(sender, recipient ids.ShortID, amount uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.transfer(sender, recipient, amount, opTransfer)
}

// TransferFrom moves [amount] units from [sender] to [recipient] on
// behalf of [spender]. The allowance is decremented by the full requested
// amount, fee included, so a delegated spender cannot extract more value
// than authorized.
func (t *Token) TransferFrom(spender, sender, recipient ids.ShortID, amount uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	principal, fee := t.fees.Split(sender, recipient, amount)
	collector := t.fees.Collector()

	vdb := versiondb.New(t.baseDB)
	ledger := state.New(vdb)
	if err := ledger.DecrementAllowance(sender, spender, amount); err != nil {
		return err
	}
	if err := t.move(ledger, sender, recipient, collector, principal, fee); err != nil {
		return err
	}
	if err := vdb.Commit(); err != nil {
		return err
	}

	t.accepted(sender, recipient, amount, principal, fee, opTransferFrom)
	return nil
}

// Approve sets [spender]'s allowance from [owner] to [amount].
func (t *Token) Approve(owner, spender ids.ShortID, amount uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := state.New(t.baseDB).Approve(owner, spender, amount); err != nil {
		return err
	}

	t.metrics.MarkAccepted(opApprove)
	return nil
}

// Mint creates [amount] new units and credits them to [account].
// Authority only.
func (t *Token) Mint(caller, account ids.ShortID, amount uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if caller != t.authority {
		return ErrUnauthorized
	}

	vdb := versiondb.New(t.baseDB)
	if err := state.New(vdb).Mint(account, amount); err != nil {
		return err
	}
	if err := vdb.Commit(); err != nil {
		return err
	}

	t.events.Emit(&MintEvent{To: account, Amount: amount})
	t.metrics.MarkAccepted(opMint)
	t.metrics.MarkMinted(amount)
	t.log.Info("mint accepted",
		log.Stringer("account", account),
		log.Uint64("amount", amount),
	)
	return nil
}

// Burn destroys [amount] units held by [caller].
func (t *Token) Burn(caller ids.ShortID, amount uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.burn(caller, amount, opBurn)
}

// BurnFrom destroys [amount] units held by [account] without consuming
// any allowance. This is an administrative override; authority only.
func (t *Token) BurnFrom(caller, account ids.ShortID, amount uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if caller != t.authority {
		return ErrUnauthorized
	}
	return t.burn(account, amount, opBurnFrom)
}

// UpdateFeePolicy replaces the fee rate, cap, and collector. The call is
// all-or-nothing: a locked collector rejects the whole update, including
// the rate and cap changes bundled with it. Authority only.
func (t *Token) UpdateFeePolicy(caller ids.ShortID, rate, cap uint64, collector ids.ShortID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if caller != t.authority {
		return ErrUnauthorized
	}
	if err := t.fees.Update(rate, cap, collector); err != nil {
		return err
	}

	t.events.Emit(&FeeSettingsUpdatedEvent{
		Rate:      rate,
		Cap:       cap,
		Collector: collector,
	})
	t.metrics.MarkAccepted(opUpdateFeePolicy)
	t.log.Info("fee policy updated",
		log.Uint64("rate", rate),
		log.Uint64("cap", cap),
		log.Stringer("collector", collector),
	)
	return nil
}

// LockCollector freezes the collector forever. Idempotent; authority
// only.
func (t *Token) LockCollector(caller ids.ShortID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if caller != t.authority {
		return ErrUnauthorized
	}
	t.fees.Lock()

	t.metrics.MarkAccepted(opLockCollector)
	t.log.Info("fee collector locked",
		log.Stringer("collector", t.fees.Collector()),
	)
	return nil
}

// SetExemption overwrites [account]'s exemption entry. Authority only.
func (t *Token) SetExemption(caller, account ids.ShortID, fromFees, toFees bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if caller != t.authority {
		return ErrUnauthorized
	}
	t.fees.SetExemption(account, fees.Exemption{
		FromFees: fromFees,
		ToFees:   toFees,
	})

	t.events.Emit(&ExemptionUpdatedEvent{
		Account:  account,
		FromFees: fromFees,
		ToFees:   toFees,
	})
	t.metrics.MarkAccepted(opSetExemption)
	t.log.Info("exemption updated",
		log.Stringer("account", account),
		log.Bool("fromFees", fromFees),
		log.Bool("toFees", toFees),
	)
	return nil
}

func (t *Token) transfer(sender, recipient ids.ShortID, amount uint64, op string) error {
	principal, fee := t.fees.Split(sender, recipient, amount)
	collector := t.fees.Collector()

	vdb := versiondb.New(t.baseDB)
	if err := t.move(state.New(vdb), sender, recipient, collector, principal, fee); err != nil {
		return err
	}
	if err := vdb.Commit(); err != nil {
		return err
	}

	t.accepted(sender, recipient, amount, principal, fee, op)
	return nil
}

// move applies the principal and fee legs to [ledger]. The caller owns
// the overlay the ledger runs over; a failed leg is discarded with it.
func (t *Token) move(ledger *state.Ledger, sender, recipient, collector ids.ShortID, principal, fee uint64) error {
	if err := ledger.Move(sender, recipient, principal); err != nil {
		return fmt.Errorf("failed to move principal: %w", err)
	}
	if fee > 0 {
		if err := ledger.Move(sender, collector, fee); err != nil {
			return fmt.Errorf("failed to move fee: %w", err)
		}
	}
	return nil
}

func (t *Token) accepted(sender, recipient ids.ShortID, amount, principal, fee uint64, op string) {
	t.events.Emit(&TransferEvent{From: sender, To: recipient, Amount: principal})
	if fee > 0 {
		t.events.Emit(&TransferEvent{From: sender, To: t.fees.Collector(), Amount: fee})
		t.events.Emit(&FeesDistributedEvent{
			Sender:    sender,
			Recipient: recipient,
			Amount:    amount,
			Fee:       fee,
		})
		t.metrics.MarkFeeCollected(fee)
	}
	t.metrics.MarkAccepted(op)
	t.log.Debug("transfer accepted",
		log.Stringer("sender", sender),
		log.Stringer("recipient", recipient),
		log.Uint64("amount", amount),
		log.Uint64("fee", fee),
	)
}

func (t *Token) burn(account ids.ShortID, amount uint64, op string) error {
	vdb := versiondb.New(t.baseDB)
	if err := state.New(vdb).Burn(account, amount); err != nil {
		return err
	}
	if err := vdb.Commit(); err != nil {
		return err
	}

	t.events.Emit(&BurnEvent{From: account, Amount: amount})
	t.metrics.MarkAccepted(op)
	t.metrics.MarkBurned(amount)
	t.log.Info("burn accepted",
		log.Stringer("account", account),
		log.Uint64("amount", amount),
	)
	return nil
}
