// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luxfi/aether/config"
	"github.com/luxfi/aether/crypto/bls"
)

var rootCmd = &cobra.Command{
	Use:   "aether",
	Short: "Aether BFT-DAG consensus engine",
	Long: `Aether drives a certified-DAG BFT consensus core: validators propose
vertices per round, aggregate quorum signatures into O(1)-size certificates,
and linearize the certified DAG via a VRF-seeded deterministic sort.`,
}

func main() {
	rootCmd.AddCommand(
		runCmd(),
		checkCmd(),
		keygenCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func checkCmd() *cobra.Command {
	var (
		n                    int
		maxDrift             int
		verificationWindow   int
		normalBatchSize      int
		highDriftBatchSize   int
		highDriftThreshold   int
		hardTriggerThreshold int
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate consensus parameters for safety and print a quorum/drift report",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := config.DefaultParameters
			if n > 0 {
				params.N = n
			}
			if maxDrift > 0 {
				params.MaxDrift = maxDrift
			}
			if verificationWindow > 0 {
				params.VerificationWindow = verificationWindow
			}
			if normalBatchSize > 0 {
				params.NormalBatchSize = normalBatchSize
			}
			if highDriftBatchSize > 0 {
				params.HighDriftBatchSize = highDriftBatchSize
			}
			if highDriftThreshold > 0 {
				params.HighDriftThreshold = highDriftThreshold
			}
			if hardTriggerThreshold > 0 {
				params.HardTriggerThreshold = hardTriggerThreshold
			}

			fmt.Printf("=== Aether Consensus Parameter Check ===\n\n")
			fmt.Printf("Committee size (n):        %d\n", params.N)
			fmt.Printf("Byzantine tolerance (f):   %d\n", params.F())
			fmt.Printf("Quorum (q = n-f):          %d\n", params.Quorum())
			fmt.Printf("Max drift:                 %d\n", params.MaxDrift)
			fmt.Printf("Verification window:       %d\n", params.VerificationWindow)
			fmt.Printf("Batch triggers:            normal>=%d, high-drift(>%d)>=%d, hard(>%d)=immediate\n",
				params.NormalBatchSize, params.HighDriftThreshold, params.HighDriftBatchSize, params.HardTriggerThreshold)

			if err := params.Valid(); err != nil {
				fmt.Printf("\nINVALID: %v\n", err)
				return err
			}
			fmt.Printf("\nOK: parameters satisfy all invariants.\n")
			return nil
		},
	}

	cmd.Flags().IntVar(&n, "n", 0, "committee size (0 to use default)")
	cmd.Flags().IntVar(&maxDrift, "max-drift", 0, "max uncommitted round distance (0 to use default)")
	cmd.Flags().IntVar(&verificationWindow, "verification-window", 0, "in-flight verification bound (0 to use default)")
	cmd.Flags().IntVar(&normalBatchSize, "normal-batch-size", 0, "normal batching trigger (0 to use default)")
	cmd.Flags().IntVar(&highDriftBatchSize, "high-drift-batch-size", 0, "high-drift batching trigger (0 to use default)")
	cmd.Flags().IntVar(&highDriftThreshold, "high-drift-threshold", 0, "drift at which the high-drift trigger applies (0 to use default)")
	cmd.Flags().IntVar(&hardTriggerThreshold, "hard-trigger-threshold", 0, "drift at which verification is forced (0 to use default)")
	return cmd
}

func keygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a BLS12-381 validator keypair and print it hex-encoded",
		RunE: func(cmd *cobra.Command, args []string) error {
			sk, err := bls.GenerateKey()
			if err != nil {
				return fmt.Errorf("generate key: %w", err)
			}
			pk := sk.PublicKey()
			fmt.Printf("private_key: %x\n", sk.Bytes())
			fmt.Printf("public_key:  %s\n", pk.Hex())
			return nil
		},
	}
}

func runCmd() *cobra.Command {
	var (
		configPath string
		listenAddr string
		validator  int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a single validator's consensus node",
		Long: `Run starts one validator's consensus task and network boundary. Wiring
a full multi-node deployment (peer address book, persistent key storage,
genesis committee bootstrap) is left to an external driver; run is the
process entry point that loads parameters, opens the listener, and starts
the round loop described in spec section 5.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNode(configPath, listenAddr, validator)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML parameters file (defaults built in if omitted)")
	cmd.Flags().StringVar(&listenAddr, "listen", ":9651", "TCP address to accept peer connections on")
	cmd.Flags().IntVar(&validator, "id", 0, "this validator's stable ID in [0, n)")
	return cmd
}
