// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package feetoken

import (
	"net/http"

	"github.com/gorilla/rpc/v2"
	"github.com/luxfi/ids"

	"github.com/luxfi/feetoken/utils/json"
)

// Service provides the token RPC service.
type Service struct {
	token *Token
}

// CreateHandlers returns the HTTP handlers the token exposes: the
// JSON-RPC service at the root and, when the token publishes to an event
// server, the websocket event feed at /events.
func (t *Token) CreateHandlers() (map[string]http.Handler, error) {
	codec := json.NewCodec()

	rpcServer := rpc.NewServer()
	rpcServer.RegisterCodec(codec, "application/json")
	rpcServer.RegisterCodec(codec, "application/json;charset=UTF-8")
	rpcServer.RegisterInterceptFunc(t.metrics.InterceptRequest)
	rpcServer.RegisterAfterFunc(t.metrics.AfterRequest)
	if err := rpcServer.RegisterService(&Service{token: t}, "feetoken"); err != nil {
		return nil, err
	}

	handlers := map[string]http.Handler{
		"": rpcServer,
	}
	if events, ok := t.events.(*EventServer); ok {
		handlers["/events"] = events
	}
	return handlers, nil
}

// SuccessReply is the response from calls that return no data.
type SuccessReply struct {
	Success bool `json:"success"`
}

// InfoReply is the response from an Info call.
type InfoReply struct {
	Name      string      `json:"name"`
	Symbol    string      `json:"symbol"`
	Authority ids.ShortID `json:"authority"`
}

// Info returns the token identity and its authority.
func (s *Service) Info(_ *http.Request, _ *struct{}, reply *InfoReply) error {
	reply.Name = s.token.Name()
	reply.Symbol = s.token.Symbol()
	reply.Authority = s.token.Authority()
	return nil
}

// TotalSupplyReply is the response from a TotalSupply call.
type TotalSupplyReply struct {
	Supply json.Uint64 `json:"supply"`
}

// TotalSupply returns the number of units in circulation.
func (s *Service) TotalSupply(_ *http.Request, _ *struct{}, reply *TotalSupplyReply) error {
	supply, err := s.token.TotalSupply()
	reply.Supply = json.Uint64(supply)
	return err
}

// BalanceOfArgs are the arguments for BalanceOf.
type BalanceOfArgs struct {
	Account ids.ShortID `json:"account"`
}

// BalanceOfReply is the response from a BalanceOf call.
type BalanceOfReply struct {
	Balance json.Uint64 `json:"balance"`
}

// BalanceOf returns the balance of an account.
func (s *Service) BalanceOf(_ *http.Request, args *BalanceOfArgs, reply *BalanceOfReply) error {
	balance, err := s.token.BalanceOf(args.Account)
	reply.Balance = json.Uint64(balance)
	return err
}

// AllowanceArgs are the arguments for Allowance.
type AllowanceArgs struct {
	Owner   ids.ShortID `json:"owner"`
	Spender ids.ShortID `json:"spender"`
}

// AllowanceReply is the response from an Allowance call.
type AllowanceReply struct {
	Allowance json.Uint64 `json:"allowance"`
}

// Allowance returns how much the spender may move on behalf of the owner.
func (s *Service) Allowance(_ *http.Request, args *AllowanceArgs, reply *AllowanceReply) error {
	allowance, err := s.token.Allowance(args.Owner, args.Spender)
	reply.Allowance = json.Uint64(allowance)
	return err
}

// FeeSettingsReply is the response from a FeeSettings call.
type FeeSettingsReply struct {
	Rate      json.Uint64 `json:"rate"`
	Cap       json.Uint64 `json:"cap"`
	Collector ids.ShortID `json:"collector"`
	Locked    bool        `json:"locked"`
}

// FeeSettings returns the current fee policy.
func (s *Service) FeeSettings(_ *http.Request, _ *struct{}, reply *FeeSettingsReply) error {
	settings := s.token.FeeSettings()
	reply.Rate = json.Uint64(settings.Rate)
	reply.Cap = json.Uint64(settings.Cap)
	reply.Collector = settings.Collector
	reply.Locked = settings.Locked
	return nil
}

// ExemptionArgs are the arguments for Exemption.
type ExemptionArgs struct {
	Account ids.ShortID `json:"account"`
}

// ExemptionReply is the response from an Exemption call.
type ExemptionReply struct {
	FromFees bool `json:"fromFees"`
	ToFees   bool `json:"toFees"`
}

// Exemption returns the exemption entry of an account.
func (s *Service) Exemption(_ *http.Request, args *ExemptionArgs, reply *ExemptionReply) error {
	exemption := s.token.Exemption(args.Account)
	reply.FromFees = exemption.FromFees
	reply.ToFees = exemption.ToFees
	return nil
}

// TransferArgs are the arguments for Transfer.
type TransferArgs struct {
	Sender    ids.ShortID `json:"sender"`
	Recipient ids.ShortID `json:"recipient"`
	Amount    json.Uint64 `json:"amount"`
}

// Transfer moves units from the sender to the recipient, taking the fee
// leg out of the requested amount.
func (s *Service) Transfer(_ *http.Request, args *TransferArgs, reply *SuccessReply) error {
	if err := s.token.Transfer(args.Sender, args.Recipient, uint64(args.Amount)); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

// TransferFromArgs are the arguments for TransferFrom.
type TransferFromArgs struct {
	Spender   ids.ShortID `json:"spender"`
	Sender    ids.ShortID `json:"sender"`
	Recipient ids.ShortID `json:"recipient"`
	Amount    json.Uint64 `json:"amount"`
}

// TransferFrom moves units on behalf of the sender, consuming the
// spender's allowance by the full requested amount.
func (s *Service) TransferFrom(_ *http.Request, args *TransferFromArgs, reply *SuccessReply) error {
	if err := s.token.TransferFrom(args.Spender, args.Sender, args.Recipient, uint64(args.Amount)); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

// ApproveArgs are the arguments for Approve.
type ApproveArgs struct {
	Owner   ids.ShortID `json:"owner"`
	Spender ids.ShortID `json:"spender"`
	Amount  json.Uint64 `json:"amount"`
}

// Approve sets the spender's allowance from the owner.
func (s *Service) Approve(_ *http.Request, args *ApproveArgs, reply *SuccessReply) error {
	if err := s.token.Approve(args.Owner, args.Spender, uint64(args.Amount)); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

// MintArgs are the arguments for Mint.
type MintArgs struct {
	Caller  ids.ShortID `json:"caller"`
	Account ids.ShortID `json:"account"`
	Amount  json.Uint64 `json:"amount"`
}

// Mint creates new units. Authority only.
func (s *Service) Mint(_ *http.Request, args *MintArgs, reply *SuccessReply) error {
	if err := s.token.Mint(args.Caller, args.Account, uint64(args.Amount)); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

// BurnArgs are the arguments for Burn.
type BurnArgs struct {
	Caller ids.ShortID `json:"caller"`
	Amount json.Uint64 `json:"amount"`
}

// Burn destroys units held by the caller.
func (s *Service) Burn(_ *http.Request, args *BurnArgs, reply *SuccessReply) error {
	if err := s.token.Burn(args.Caller, uint64(args.Amount)); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

// BurnFromArgs are the arguments for BurnFrom.
type BurnFromArgs struct {
	Caller  ids.ShortID `json:"caller"`
	Account ids.ShortID `json:"account"`
	Amount  json.Uint64 `json:"amount"`
}

// BurnFrom destroys units held by an arbitrary account. Authority only.
func (s *Service) BurnFrom(_ *http.Request, args *BurnFromArgs, reply *SuccessReply) error {
	if err := s.token.BurnFrom(args.Caller, args.Account, uint64(args.Amount)); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

// UpdateFeePolicyArgs are the arguments for UpdateFeePolicy.
type UpdateFeePolicyArgs struct {
	Caller    ids.ShortID `json:"caller"`
	Rate      json.Uint64 `json:"rate"`
	Cap       json.Uint64 `json:"cap"`
	Collector ids.ShortID `json:"collector"`
}

// UpdateFeePolicy replaces the fee rate, cap, and collector. Authority
// only.
func (s *Service) UpdateFeePolicy(_ *http.Request, args *UpdateFeePolicyArgs, reply *SuccessReply) error {
	if err := s.token.UpdateFeePolicy(args.Caller, uint64(args.Rate), uint64(args.Cap), args.Collector); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

// LockCollectorArgs are the arguments for LockCollector.
type LockCollectorArgs struct {
	Caller ids.ShortID `json:"caller"`
}

// LockCollector freezes the collector forever. Authority only.
func (s *Service) LockCollector(_ *http.Request, args *LockCollectorArgs, reply *SuccessReply) error {
	if err := s.token.LockCollector(args.Caller); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

// SetExemptionArgs are the arguments for SetExemption.
type SetExemptionArgs struct {
	Caller   ids.ShortID `json:"caller"`
	Account  ids.ShortID `json:"account"`
	FromFees bool        `json:"fromFees"`
	ToFees   bool        `json:"toFees"`
}

// SetExemption overwrites an account's exemption entry. Authority only.
func (s *Service) SetExemption(_ *http.Request, args *SetExemptionArgs, reply *SuccessReply) error {
	if err := s.token.SetExemption(args.Caller, args.Account, args.FromFees, args.ToFees); err != nil {
		return err
	}
	reply.Success = true
	return nil
}
