// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package feetoken

import (
	"github.com/luxfi/database"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"
)

// Factory instantiates token cores from a JSON-encoded genesis, wiring an
// event server as the effect sink.
type Factory struct{}

func (*Factory) New(
	genesisBytes []byte,
	db database.Database,
	logger log.Logger,
	registerer metric.Registerer,
) (*Token, error) {
	genesis, err := ParseGenesis(genesisBytes)
	if err != nil {
		return nil, err
	}
	return New(genesis, db, logger, registerer, NewEventServer(logger))
}
