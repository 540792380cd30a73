/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/hyperledger/fabric-library-app/pkg/common/logging/zaplog"
	"github.com/hyperledger/fabric-library-app/pkg/common/status"
	"github.com/hyperledger/fabric-library-app/pkg/config"
	"github.com/hyperledger/fabric-library-app/pkg/enroll"
	"github.com/hyperledger/fabric-library-app/pkg/ledger"
	"github.com/hyperledger/fabric-library-app/pkg/metrics"
	"github.com/hyperledger/fabric-library-app/pkg/profile"
	"github.com/hyperledger/fabric-library-app/pkg/wallet"
	"github.com/hyperledger/fabric-sdk-go/pkg/common/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var logger = logging.NewLogger("library/cmd")

// workflowAnnotation names the workflow of a command in failure reports.
const workflowAnnotation = "workflow"

type enrollFactory func(p *profile.Profile, opts enroll.CAOptions) (enroll.Client, func(), error)

type app struct {
	out    io.Writer
	errOut io.Writer

	v          *viper.Viper
	configFile string
	cfg        *config.Config
	metrics    *metrics.Metrics

	connector       ledger.Connector
	newEnrollClient enrollFactory
}

func newApp(out, errOut io.Writer) *app {
	return &app{
		out:       out,
		errOut:    errOut,
		connector: ledger.NewGatewayConnector(),
		newEnrollClient: func(p *profile.Profile, opts enroll.CAOptions) (enroll.Client, func(), error) {
			client, err := enroll.NewCAClient(p, opts)
			if err != nil {
				return nil, nil, err
			}
			return client, client.Close, nil
		},
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "library",
		Short:         "Library smart contract client.",
		Long:          `Registers application users with the organization's CA and invokes the library smart contract.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "configuration file (YAML)")
	flags.String("wallet", "", "wallet directory or database")
	flags.String("profile", "", "connection profile (JSON or YAML)")
	flags.String("log-level", "", "log level: debug, info, warning, error")
	flags.String("metrics-file", "", "write metrics to this file in the Prometheus text format")

	root.AddCommand(a.registerUserCmd())
	for _, b := range bookCommands {
		root.AddCommand(a.bookCmd(b))
	}
	root.AddCommand(a.walletCmd())

	return root
}

var flagKeys = map[string]string{
	"wallet":       "wallet.path",
	"profile":      "profile",
	"log-level":    "log.level",
	"metrics-file": "metricsFile",
}

func (a *app) setup(cmd *cobra.Command) error {
	v, err := config.New()
	if err != nil {
		return err
	}
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Root().PersistentFlags().Lookup(name)); err != nil {
			return status.Wrap(status.InvalidArguments, err, "flag %s", name)
		}
	}

	cfg, err := config.Load(v, a.configFile)
	if err != nil {
		return err
	}

	if err := installLogging(zaplog.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}); err != nil {
		return status.Wrap(status.InvalidArguments, err, "log configuration")
	}

	a.v, a.cfg = v, cfg
	a.metrics = metrics.New()
	return nil
}

var logState struct {
	sync.Mutex
	provider *zaplog.Provider
}

// installLogging routes SDK logging through zap. The SDK accepts one logger
// provider per process, so later calls only change the level; the format
// of the first call stays in effect.
func installLogging(opts zaplog.Options) error {
	logState.Lock()
	defer logState.Unlock()

	if logState.provider != nil {
		level, err := zaplog.ParseLevel(opts.Level)
		if err != nil {
			return err
		}
		logState.provider.SetLevel(level)
		return nil
	}

	provider, err := zaplog.New(opts)
	if err != nil {
		return err
	}
	logging.Initialize(provider)
	logState.provider = provider
	return nil
}

func (a *app) openWallet() (wallet.Store, func(), error) {
	store, closer, err := wallet.Open(a.cfg.WalletOptions())
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := closer.Close(); err != nil {
			logger.Warnf("failed to close wallet: %s", err)
		}
	}, nil
}

func (a *app) loadProfile() (*profile.Profile, error) {
	if err := a.cfg.RequireProfile(); err != nil {
		return nil, err
	}
	p, err := profile.FromFile(a.cfg.Profile)
	if err != nil {
		return nil, status.Wrap(status.InvalidArguments, err, "failed to load connection profile")
	}
	return p, nil
}

// execute runs the command line and returns the exit status.
func execute(a *app, args []string) int {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	cmd, err := root.ExecuteC()

	if a.metrics != nil && a.cfg != nil && a.cfg.MetricsFile != "" {
		if werr := a.metrics.WriteToTextfile(a.cfg.MetricsFile); werr != nil {
			logger.Warnf("%s", werr)
		}
	}

	if err != nil {
		workflow := root.Name()
		if cmd != nil {
			workflow = cmd.Name()
			if name, ok := cmd.Annotations[workflowAnnotation]; ok {
				workflow = name
			}
		}
		reportFailure(a.errOut, workflow, err)
		return 1
	}
	return 0
}

func reportFailure(w io.Writer, workflow string, err error) {
	detail := err.Error()
	if s, ok := status.FromError(err); ok {
		detail = s.Detail()
	}
	fmt.Fprintf(w, "******** %s FAILED: %s: %s\n", workflow, status.KindOf(err), detail)
}

// exactArgs rejects a wrong number of positional arguments before anything
// is opened.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return status.New(status.InvalidArguments, "%s expects %d arguments, got %d", cmd.Name(), n, len(args))
		}
		return nil
	}
}
