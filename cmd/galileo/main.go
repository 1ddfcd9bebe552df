// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// galileo is a command-line tool to list the data types and operations of the elementwise engine, and
// to run operations on a queue.
//
// Usage:
//
//	galileo version
//	galileo dtypes
//	galileo ops
//	galileo run --op=Add --in=Float32 --size=1_000_000 --repeat=100 --parallelism=4
//
// The queue is configured with the environment variable GALILEO_BACKEND, overridden by the optional
// YAML file given in --config, which is overridden by the flags.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/gomlx/galileo/pkg/capi"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

func main() {
	klogFlags := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(klogFlags)
	rootCmd := newRootCmd()
	rootCmd.PersistentFlags().AddGoFlagSet(klogFlags)
	if err := rootCmd.Execute(); err != nil {
		klog.Errorf("galileo: %+v", err)
		klog.Flush()
		os.Exit(1)
	}
	klog.Flush()
}

func newRootCmd() *cobra.Command {
	qFlags := &queueFlags{}
	rootCmd := &cobra.Command{
		Use:           "galileo",
		Short:         "Galileo - elementwise math on device queues",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	qFlags.register(rootCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Galileo v%s (%s %s/%s)\n", capi.Version(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "dtypes",
		Short: "List the supported data types",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), dtypesTable())
		},
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "ops",
		Short: "List the operations, with the data types they accept",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), opsTable())
		},
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "queue",
		Short: "Create the configured queue and print its description",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return describeQueue(cmd, qFlags)
		},
	})
	rootCmd.AddCommand(newRunCmd(qFlags))
	return rootCmd
}
