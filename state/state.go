// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package state manages the persistent balance, allowance, and supply
// state of the token.
package state

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/ids"

	safemath "github.com/luxfi/math"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAllowanceExceeded   = errors.New("allowance exceeded")

	// Database prefixes
	balancePrefix   = []byte("balance")
	allowancePrefix = []byte("allowance")
	metadataPrefix  = []byte("metadata")

	supplyKey      = []byte("supply")
	initializedKey = []byte("initialized")
)

// Ledger exposes the balance, allowance, and supply primitives over a
// database. Every mutation is a read-modify-write against the backing
// database; callers that need multi-step atomicity run the ledger over a
// versiondb overlay and commit once all steps succeed.
type Ledger struct {
	balances   database.Database
	allowances database.Database
	metadata   database.Database
}

// New creates a ledger over [db].
func New(db database.Database) *Ledger {
	return &Ledger{
		balances:   prefixdb.New(balancePrefix, db),
		allowances: prefixdb.New(allowancePrefix, db),
		metadata:   prefixdb.New(metadataPrefix, db),
	}
}

// Initialized reports whether genesis state has been written to the
// backing database.
func (l *Ledger) Initialized() (bool, error) {
	return l.metadata.Has(initializedKey)
}

// SetInitialized marks the backing database as holding genesis state.
func (l *Ledger) SetInitialized() error {
	return l.metadata.Put(initializedKey, nil)
}

// Balance returns [addr]'s balance. Accounts without an entry hold 0.
func (l *Ledger) Balance(addr ids.ShortID) (uint64, error) {
	return getUint64(l.balances, addr.Bytes())
}

// TotalSupply returns the number of units in circulation.
func (l *Ledger) TotalSupply() (uint64, error) {
	return getUint64(l.metadata, supplyKey)
}

// Move transfers [amount] units from [from] to [to]. It fails with
// ErrInsufficientBalance if [from] cannot cover the amount.
func (l *Ledger) Move(from, to ids.ShortID, amount uint64) error {
	fromBalance, err := l.Balance(from)
	if err != nil {
		return err
	}
	newFromBalance, err := safemath.Sub(fromBalance, amount)
	if err != nil {
		return fmt.Errorf("%w: %d < %d", ErrInsufficientBalance, fromBalance, amount)
	}

	if from == to {
		return nil
	}

	if err := putUint64(l.balances, from.Bytes(), newFromBalance); err != nil {
		return err
	}

	toBalance, err := l.Balance(to)
	if err != nil {
		return err
	}
	newToBalance, err := safemath.Add(toBalance, amount)
	if err != nil {
		return err
	}
	return putUint64(l.balances, to.Bytes(), newToBalance)
}

// Mint creates [amount] new units and credits them to [to].
func (l *Ledger) Mint(to ids.ShortID, amount uint64) error {
	supply, err := l.TotalSupply()
	if err != nil {
		return err
	}
	newSupply, err := safemath.Add(supply, amount)
	if err != nil {
		return err
	}

	balance, err := l.Balance(to)
	if err != nil {
		return err
	}
	newBalance, err := safemath.Add(balance, amount)
	if err != nil {
		return err
	}

	if err := putUint64(l.metadata, supplyKey, newSupply); err != nil {
		return err
	}
	return putUint64(l.balances, to.Bytes(), newBalance)
}

// Burn destroys [amount] units held by [from]. It fails with
// ErrInsufficientBalance if [from] cannot cover the amount.
func (l *Ledger) Burn(from ids.ShortID, amount uint64) error {
	balance, err := l.Balance(from)
	if err != nil {
		return err
	}
	newBalance, err := safemath.Sub(balance, amount)
	if err != nil {
		return fmt.Errorf("%w: %d < %d", ErrInsufficientBalance, balance, amount)
	}

	supply, err := l.TotalSupply()
	if err != nil {
		return err
	}
	newSupply, err := safemath.Sub(supply, amount)
	if err != nil {
		return err
	}

	if err := putUint64(l.metadata, supplyKey, newSupply); err != nil {
		return err
	}
	return putUint64(l.balances, from.Bytes(), newBalance)
}

// Allowance returns how much [spender] may move on behalf of [owner].
func (l *Ledger) Allowance(owner, spender ids.ShortID) (uint64, error) {
	return getUint64(l.allowances, allowanceKey(owner, spender))
}

// Approve sets [spender]'s allowance from [owner] to [amount].
func (l *Ledger) Approve(owner, spender ids.ShortID, amount uint64) error {
	return putUint64(l.allowances, allowanceKey(owner, spender), amount)
}

// DecrementAllowance reduces [spender]'s allowance from [owner] by
// [amount]. It fails with ErrAllowanceExceeded if the decrement would
// underflow.
func (l *Ledger) DecrementAllowance(owner, spender ids.ShortID, amount uint64) error {
	key := allowanceKey(owner, spender)
	allowance, err := getUint64(l.allowances, key)
	if err != nil {
		return err
	}
	newAllowance, err := safemath.Sub(allowance, amount)
	if err != nil {
		return fmt.Errorf("%w: %d < %d", ErrAllowanceExceeded, allowance, amount)
	}
	return putUint64(l.allowances, key, newAllowance)
}

func allowanceKey(owner, spender ids.ShortID) []byte {
	key := make([]byte, 0, len(owner)+len(spender))
	key = append(key, owner.Bytes()...)
	return append(key, spender.Bytes()...)
}

func getUint64(db database.Database, key []byte) (uint64, error) {
	data, err := db.Get(key)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("unexpected value length %d for key %q", len(data), key)
	}
	return binary.BigEndian.Uint64(data), nil
}

func putUint64(db database.Database, key []byte, value uint64) error {
	data := make([]byte, 8)
	binary.BigEndian.PutUint64(data, value)
	return db.Put(key, data)
}
