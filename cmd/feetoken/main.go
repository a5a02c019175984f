// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/luxfi/feetoken/cmd/feetoken/run"
)

func main() {
	cmd := &cobra.Command{
		Use:   "feetoken",
		Short: "Runs and interacts with a fee-on-transfer token",
	}
	cmd.AddCommand(run.Command())

	if err := cmd.Execute(); err != nil {
		log.Fatalf("command failed: %v", err)
	}
}
