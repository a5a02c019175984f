// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package feetoken

import (
	"net/http"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/pubsub"
)

var (
	_ Sink            = (*EventServer)(nil)
	_ Sink            = (NoOpSink{})
	_ pubsub.Filterer = (*eventFilterer)(nil)
)

// Event is an observable effect of an accepted operation.
type Event interface {
	// Addresses returns the accounts the event involves, for subscription
	// filtering.
	Addresses() []ids.ShortID
}

// TransferEvent reports units moved between two accounts. Fee-taking
// transfers produce one TransferEvent per leg.
type TransferEvent struct {
	From   ids.ShortID `json:"from"`
	To     ids.ShortID `json:"to"`
	Amount uint64      `json:"amount"`
}

func (e *TransferEvent) Addresses() []ids.ShortID {
	return []ids.ShortID{e.From, e.To}
}

// FeesDistributedEvent reports the fee taken from a transfer. Amount is
// the original requested amount, not the principal, so listeners can
// reconcile amount = principal + fee.
type FeesDistributedEvent struct {
	Sender    ids.ShortID `json:"sender"`
	Recipient ids.ShortID `json:"recipient"`
	Amount    uint64      `json:"amount"`
	Fee       uint64      `json:"fee"`
}

func (e *FeesDistributedEvent) Addresses() []ids.ShortID {
	return []ids.ShortID{e.Sender, e.Recipient}
}

// FeeSettingsUpdatedEvent reports the fee policy after an update.
type FeeSettingsUpdatedEvent struct {
	Rate      uint64      `json:"rate"`
	Cap       uint64      `json:"cap"`
	Collector ids.ShortID `json:"collector"`
}

func (e *FeeSettingsUpdatedEvent) Addresses() []ids.ShortID {
	return []ids.ShortID{e.Collector}
}

// ExemptionUpdatedEvent reports an account's exemption entry after an
// overwrite.
type ExemptionUpdatedEvent struct {
	Account  ids.ShortID `json:"account"`
	FromFees bool        `json:"fromFees"`
	ToFees   bool        `json:"toFees"`
}

func (e *ExemptionUpdatedEvent) Addresses() []ids.ShortID {
	return []ids.ShortID{e.Account}
}

// MintEvent reports units added to the supply.
type MintEvent struct {
	To     ids.ShortID `json:"to"`
	Amount uint64      `json:"amount"`
}

func (e *MintEvent) Addresses() []ids.ShortID {
	return []ids.ShortID{e.To}
}

// BurnEvent reports units removed from the supply.
type BurnEvent struct {
	From   ids.ShortID `json:"from"`
	Amount uint64      `json:"amount"`
}

func (e *BurnEvent) Addresses() []ids.ShortID {
	return []ids.ShortID{e.From}
}

// Sink receives the effects of accepted operations, in the order the core
// emits them. Effects are emitted only after the operation has committed.
type Sink interface {
	Emit(Event)
}

// NoOpSink drops every event.
type NoOpSink struct{}

func (NoOpSink) Emit(Event) {}

// EventServer publishes events to websocket subscribers, filtered by the
// addresses each event involves.
type EventServer struct {
	server *pubsub.Server
}

func NewEventServer(logger log.Logger) *EventServer {
	return &EventServer{
		server: pubsub.New(logger),
	}
}

func (s *EventServer) Emit(ev Event) {
	s.server.Publish(&eventFilterer{ev: ev})
}

func (s *EventServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.ServeHTTP(w, r)
}

type eventFilterer struct {
	ev Event
}

// Filter applies the subscribers' address filters to the event.
func (f *eventFilterer) Filter(filters []pubsub.Filter) ([]bool, interface{}) {
	resp := make([]bool, len(filters))
	for _, addr := range f.ev.Addresses() {
		for i, c := range filters {
			if resp[i] {
				continue
			}
			resp[i] = c.Check(addr.Bytes())
		}
	}
	return resp, f.ev
}
