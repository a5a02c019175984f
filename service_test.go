// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package feetoken

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/ids"

	"github.com/luxfi/feetoken/state"
	feejson "github.com/luxfi/feetoken/utils/json"
)

func TestServiceTransfer(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, 10, 0, 1_000_000) // 1%
	service := &Service{token: env.token}
	alice := ids.GenerateTestShortID()
	bob := ids.GenerateTestShortID()
	env.fund(t, alice, 10_000)

	reply := &SuccessReply{}
	require.NoError(service.Transfer(nil, &TransferArgs{
		Sender:    alice,
		Recipient: bob,
		Amount:    1000,
	}, reply))
	require.True(reply.Success)

	balanceReply := &BalanceOfReply{}
	require.NoError(service.BalanceOf(nil, &BalanceOfArgs{Account: bob}, balanceReply))
	require.Equal(feejson.Uint64(990), balanceReply.Balance)

	err := service.Transfer(nil, &TransferArgs{
		Sender:    bob,
		Recipient: alice,
		Amount:    100_000,
	}, &SuccessReply{})
	require.ErrorIs(err, state.ErrInsufficientBalance)
}

func TestServiceQueries(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, 10, 100, 1_000_000)
	service := &Service{token: env.token}

	infoReply := &InfoReply{}
	require.NoError(service.Info(nil, nil, infoReply))
	require.Equal("Fee Token", infoReply.Name)
	require.Equal("FEE", infoReply.Symbol)
	require.Equal(env.authority, infoReply.Authority)

	supplyReply := &TotalSupplyReply{}
	require.NoError(service.TotalSupply(nil, nil, supplyReply))
	require.Equal(feejson.Uint64(1_000_000), supplyReply.Supply)

	feeReply := &FeeSettingsReply{}
	require.NoError(service.FeeSettings(nil, nil, feeReply))
	require.Equal(feejson.Uint64(10), feeReply.Rate)
	require.Equal(feejson.Uint64(100), feeReply.Cap)
	require.Equal(env.collector, feeReply.Collector)
	require.False(feeReply.Locked)

	exemptionReply := &ExemptionReply{}
	require.NoError(service.Exemption(nil, &ExemptionArgs{Account: env.authority}, exemptionReply))
	require.True(exemptionReply.FromFees)
	require.False(exemptionReply.ToFees)
}

func TestServiceAdmin(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, 10, 0, 1_000_000)
	service := &Service{token: env.token}

	require.NoError(service.LockCollector(nil, &LockCollectorArgs{
		Caller: env.authority,
	}, &SuccessReply{}))

	feeReply := &FeeSettingsReply{}
	require.NoError(service.FeeSettings(nil, nil, feeReply))
	require.True(feeReply.Locked)

	err := service.Mint(nil, &MintArgs{
		Caller:  ids.GenerateTestShortID(),
		Account: env.authority,
		Amount:  1,
	}, &SuccessReply{})
	require.ErrorIs(err, ErrUnauthorized)
}

func TestCreateHandlers(t *testing.T) {
	require := require.New(t)

	// A token publishing to a plain sink exposes only the RPC endpoint.
	env := newTestEnv(t, 10, 0, 0)
	handlers, err := env.token.CreateHandlers()
	require.NoError(err)
	require.Contains(handlers, "")
	require.NotContains(handlers, "/events")
}
