// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package feetoken

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/luxfi/ids"

	"github.com/luxfi/feetoken/fees"
	feejson "github.com/luxfi/feetoken/utils/json"
)

var (
	ErrEmptyName     = errors.New("token name must not be empty")
	ErrEmptySymbol   = errors.New("token symbol must not be empty")
	ErrZeroAuthority = errors.New("authority must not be the empty address")
)

// Genesis describes the initial state of the token: its identity, the
// supply minted to the authority, and the fee settings.
type Genesis struct {
	Name          string         `json:"name"`
	Symbol        string         `json:"symbol"`
	InitialSupply feejson.Uint64 `json:"initialSupply"`
	Authority     ids.ShortID    `json:"authority"`
	Fees          fees.Settings  `json:"fees"`
}

// Verify returns nil iff the genesis is well formed.
func (g *Genesis) Verify() error {
	switch {
	case g == nil:
		return errors.New("nil genesis")
	case g.Name == "":
		return ErrEmptyName
	case g.Symbol == "":
		return ErrEmptySymbol
	case g.Authority == ids.ShortEmpty:
		return ErrZeroAuthority
	default:
		return g.Fees.Verify()
	}
}

// ParseGenesis parses and verifies a JSON-encoded genesis.
func ParseGenesis(bytes []byte) (*Genesis, error) {
	genesis := &Genesis{}
	if err := json.Unmarshal(bytes, genesis); err != nil {
		return nil, fmt.Errorf("failed to parse genesis: %w", err)
	}
	return genesis, genesis.Verify()
}
