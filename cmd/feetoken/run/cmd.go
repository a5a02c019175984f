// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package run

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/luxfi/feetoken"
)

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "run",
		Short: "Runs the token RPC server over an in-memory database",
		RunE:  runFunc,
	}
	AddFlags(c.Flags())
	return c
}

func runFunc(c *cobra.Command, args []string) error {
	config, err := ParseFlags(c.Flags(), args)
	if err != nil {
		return err
	}
	if config.GenesisPath == "" {
		return errors.New("genesis path is required")
	}

	genesisBytes, err := os.ReadFile(config.GenesisPath)
	if err != nil {
		return fmt.Errorf("failed to read genesis: %w", err)
	}

	logger := log.NewLogger("feetoken")
	factory := feetoken.Factory{}
	token, err := factory.New(
		genesisBytes,
		memdb.New(),
		logger,
		metric.NewRegistry(),
	)
	if err != nil {
		return err
	}

	handlers, err := token.CreateHandlers()
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	for path, handler := range handlers {
		if path == "" {
			mux.Handle("/", handler)
			continue
		}
		mux.Handle(path, handler)
	}

	logger.Info("serving token RPC",
		log.String("addr", config.Addr),
	)
	return http.ListenAndServe(config.Addr, mux)
}
