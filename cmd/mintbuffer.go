// Copyright © 2021 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/kaleido-io/mintbuffer/internal/apiserver"
	"github.com/kaleido-io/mintbuffer/internal/config"
	"github.com/kaleido-io/mintbuffer/internal/i18n"
	"github.com/kaleido-io/mintbuffer/internal/log"
	"github.com/kaleido-io/mintbuffer/internal/orchestrator"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var sigs = make(chan os.Signal, 1)

var rootCmd = &cobra.Command{
	Use:   "mintbuffer",
	Short: "Bounded buffer of pending NFT descriptors",
	Long:  "Runs the buffer service, minting unique assets from a queue that a producer keeps topped up",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

var showConfigCmd = &cobra.Command{
	Use:     "showconfig",
	Aliases: []string{"showconf"},
	Short:   "List out the configuration options",
	RunE: func(cmd *cobra.Command, args []string) error {
		resetConfig()
		_ = config.ReadConfig(cfgFile)

		fmt.Printf("%-64s %v\n", "Key", "Value")
		fmt.Print("-----------------------------------------------------------------------------------\n")
		for _, k := range config.GetKnownKeys() {
			fmt.Printf("%-64s %v\n", k, config.Get(config.RootKey(k)))
		}
		return nil
	},
}

var cfgFile string

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "f", "", "config file")
	rootCmd.AddCommand(showConfigCmd)
}

var _utOrchestrator orchestrator.Orchestrator

func getOrchestrator() orchestrator.Orchestrator {
	if _utOrchestrator != nil {
		return _utOrchestrator
	}
	return orchestrator.NewOrchestrator()
}

// Execute is called by the main method of the package
func Execute() error {
	return rootCmd.Execute()
}

// resetConfig re-applies the root defaults, then the keys that components register under their own prefixes
func resetConfig() {
	config.Reset()
	orchestrator.InitConfig()
	apiserver.InitConfig()
}

func run() error {

	// Read the configuration first of all
	resetConfig()
	err := config.ReadConfig(cfgFile)
	if err == nil {
		orchestrator.InitConfig()
		apiserver.InitConfig()
	}

	// Setup logging after reading config (even if failed), to output header correctly
	ctx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()
	ctx = log.WithLogger(ctx, logrus.WithField("pid", fmt.Sprintf("%d", os.Getpid())))
	config.SetupLogging(ctx)
	log.L(ctx).Infof("mintbuffer")
	log.L(ctx).Infof("© Copyright 2021 Kaleido, Inc.")

	// Deferred error return from reading config
	if err != nil {
		return i18n.WrapError(ctx, err, i18n.MsgConfigFailed, err)
	}

	debugServer := startDebugListener(ctx)
	if debugServer != nil {
		defer debugServer.Close()
	}

	// Setup signal handling to cancel the context, which shuts down the API Server
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	o := getOrchestrator()
	if err = o.Init(ctx, cancelCtx); err != nil {
		return err
	}
	if err = o.Start(); err != nil {
		cancelCtx()
		o.WaitStop()
		return err
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- apiserver.NewAPIServer().Serve(ctx, o)
	}()

	select {
	case sig := <-sigs:
		log.L(ctx).Infof("Shutting down due to %s", sig.String())
		cancelCtx()
		err = <-errChan
	case err = <-errChan:
		cancelCtx()
	}
	o.WaitStop()
	return err
}

func startDebugListener(ctx context.Context) *http.Server {
	debugPort := config.GetInt(config.DebugPort)
	if debugPort < 0 {
		return nil
	}
	r := mux.NewRouter()
	r.PathPrefix("/debug/pprof/cmdline").HandlerFunc(pprof.Cmdline)
	r.PathPrefix("/debug/pprof/profile").HandlerFunc(pprof.Profile)
	r.PathPrefix("/debug/pprof/symbol").HandlerFunc(pprof.Symbol)
	r.PathPrefix("/debug/pprof/trace").HandlerFunc(pprof.Trace)
	r.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	debugServer := &http.Server{Addr: fmt.Sprintf("localhost:%d", debugPort), Handler: r, ReadHeaderTimeout: 30 * time.Second}
	go func() {
		_ = debugServer.ListenAndServe()
	}()
	log.L(ctx).Debugf("Debug HTTP endpoint listening on localhost:%d", debugPort)
	return debugServer
}
