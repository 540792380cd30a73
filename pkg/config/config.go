/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package config reads the application configuration from the built-in
// defaults, an optional YAML file and LIBRARY_* environment variables.
package config

import (
	"bytes"
	_ "embed" // defaults.yaml
	"strings"
	"time"

	"github.com/hyperledger/fabric-library-app/pkg/common/status"
	"github.com/hyperledger/fabric-library-app/pkg/enroll"
	"github.com/hyperledger/fabric-library-app/pkg/ledger"
	"github.com/hyperledger/fabric-library-app/pkg/profile"
	"github.com/hyperledger/fabric-library-app/pkg/provision"
	"github.com/hyperledger/fabric-library-app/pkg/wallet"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix of the environment variables, e.g. LIBRARY_WALLET_PATH.
const EnvPrefix = "LIBRARY"

//go:embed defaults.yaml
var defaults []byte

// User to provision and to act as.
type User struct {
	Label          string
	MSPID          string
	Affiliation    string
	Secret         string
	MaxEnrollments int
	// Attributes in the form name=value, or name=value:ecert to include the
	// attribute in the enrollment certificate.
	Attributes []string
}

// Registrar credentials of the CA.
type Registrar struct {
	EnrollID     string
	EnrollSecret string
}

// CA selects the certificate authority.
type CA struct {
	Name      string
	StateDir  string
	Registrar Registrar
}

// Vault configures the vault wallet backend.
type Vault struct {
	Address string
	Token   string
	Mount   string
	Path    string
}

// Wallet selects the wallet backend.
type Wallet struct {
	Backend string
	Path    string
	Vault   Vault
}

// Discovery of endorsing peers.
type Discovery struct {
	Enabled     bool
	AsLocalhost bool
}

// Log output.
type Log struct {
	Level  string
	Format string
}

// Config of the application.
type Config struct {
	// Profile is the path of the connection profile.
	Profile       string
	Channel       string
	Contract      string
	CommitTimeout time.Duration
	MetricsFile   string
	User          User
	CA            CA
	Wallet        Wallet
	Discovery     Discovery
	Log           Log
}

// New returns a viper instance holding the defaults and bound to the
// environment.
func New() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, errors.Wrap(err, "failed to read configuration defaults")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v, nil
}

// Load merges the YAML file at path, if any, into v and decodes the result.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, status.Wrap(status.InvalidArguments, err, "failed to read config file %s", path)
		}
	}

	c := &Config{}
	err := v.Unmarshal(c, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, status.Wrap(status.InvalidArguments, err, "failed to decode configuration")
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	switch c.Wallet.Backend {
	case wallet.FileSystem, wallet.SQLite:
		if c.Wallet.Path == "" {
			return status.New(status.InvalidArguments, "wallet.path is required for the %s wallet", c.Wallet.Backend)
		}
	case wallet.InMemory:
	case wallet.Vault:
		if c.Wallet.Vault.Path == "" {
			return status.New(status.InvalidArguments, "wallet.vault.path is required for the vault wallet")
		}
	default:
		return status.New(status.InvalidArguments, "unknown wallet backend %q", c.Wallet.Backend)
	}

	for key, value := range map[string]string{
		"user.label": c.User.Label,
		"channel":    c.Channel,
		"contract":   c.Contract,
	} {
		if strings.TrimSpace(value) == "" {
			return status.New(status.InvalidArguments, "%s must not be empty", key)
		}
	}

	if c.CommitTimeout < 0 {
		return status.New(status.InvalidArguments, "commitTimeout must not be negative")
	}
	if _, err := c.RegistrationAttributes(); err != nil {
		return err
	}
	return nil
}

// RequireProfile checks that a connection profile is configured.
func (c *Config) RequireProfile() error {
	if c.Profile == "" {
		return status.New(status.InvalidArguments, "no connection profile configured, set --profile or LIBRARY_PROFILE")
	}
	return nil
}

// WalletOptions for wallet.Open.
func (c *Config) WalletOptions() wallet.Options {
	return wallet.Options{
		Backend: c.Wallet.Backend,
		Path:    c.Wallet.Path,
		Vault: wallet.VaultOptions{
			Address: c.Wallet.Vault.Address,
			Token:   c.Wallet.Vault.Token,
			Mount:   c.Wallet.Vault.Mount,
			Path:    c.Wallet.Vault.Path,
		},
	}
}

// CAOptions for the CA client.
func (c *Config) CAOptions() enroll.CAOptions {
	return enroll.CAOptions{
		CAName:   c.CA.Name,
		StateDir: c.CA.StateDir,
		Registrar: profile.Registrar{
			EnrollID:     c.CA.Registrar.EnrollID,
			EnrollSecret: c.CA.Registrar.EnrollSecret,
		},
	}
}

// LedgerOptions for opening sessions.
func (c *Config) LedgerOptions() ledger.Options {
	return ledger.Options{
		Discovery: ledger.Discovery{
			Enabled:     c.Discovery.Enabled,
			AsLocalhost: c.Discovery.AsLocalhost,
		},
		CommitTimeout: c.CommitTimeout,
	}
}

// ProvisionRequest for the configured user.
func (c *Config) ProvisionRequest() (provision.Request, error) {
	attrs, err := c.RegistrationAttributes()
	if err != nil {
		return provision.Request{}, err
	}
	return provision.Request{
		Label:          c.User.Label,
		MSPID:          c.User.MSPID,
		Affiliation:    c.User.Affiliation,
		Secret:         c.User.Secret,
		MaxEnrollments: c.User.MaxEnrollments,
		Attributes:     attrs,
	}, nil
}

// RegistrationAttributes parses the user attributes.
func (c *Config) RegistrationAttributes() ([]enroll.Attribute, error) {
	var attrs []enroll.Attribute
	for _, attr := range c.User.Attributes {
		attr = strings.TrimSpace(attr)
		if attr == "" {
			continue
		}
		name, value, ok := strings.Cut(attr, "=")
		if !ok || name == "" {
			return nil, status.New(status.InvalidArguments, "attribute %q is not of the form name=value", attr)
		}
		a := enroll.Attribute{Name: name, Value: value}
		if v, flag, ok := strings.Cut(value, ":"); ok && flag == "ecert" {
			a.Value, a.ECert = v, true
		}
		attrs = append(attrs, a)
	}
	return attrs, nil
}
