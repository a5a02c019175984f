// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package run

import (
	"github.com/spf13/pflag"
)

const (
	GenesisKey = "genesis"
	AddrKey    = "addr"
)

func AddFlags(flags *pflag.FlagSet) {
	flags.String(GenesisKey, "", "Path of the JSON genesis to initialize the token with (required)")
	flags.String(AddrKey, "127.0.0.1:9750", "Address the RPC server listens on")
}

type Config struct {
	GenesisPath string
	Addr        string
}

func ParseFlags(flags *pflag.FlagSet, args []string) (*Config, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	genesisPath, err := flags.GetString(GenesisKey)
	if err != nil {
		return nil, err
	}

	addr, err := flags.GetString(AddrKey)
	if err != nil {
		return nil, err
	}

	return &Config{
		GenesisPath: genesisPath,
		Addr:        addr,
	}, nil
}
