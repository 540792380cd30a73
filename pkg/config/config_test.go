/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperledger/fabric-library-app/pkg/common/status"
	"github.com/hyperledger/fabric-library-app/pkg/enroll"
	"github.com/hyperledger/fabric-library-app/pkg/ledger"
	"github.com/hyperledger/fabric-library-app/pkg/profile"
	"github.com/hyperledger/fabric-library-app/pkg/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, path string) (*Config, error) {
	v, err := New()
	require.NoError(t, err)
	return Load(v, path)
}

func TestDefaults(t *testing.T) {
	c, err := load(t, "")
	require.NoError(t, err)

	assert.Equal(t, "appUser", c.User.Label)
	assert.Equal(t, "Org1MSP", c.User.MSPID)
	assert.Equal(t, "org1.department1", c.User.Affiliation)
	assert.Equal(t, enroll.CAOptions{
		CAName:    "ca.org1.example.com",
		Registrar: profile.Registrar{EnrollID: "admin", EnrollSecret: "adminpw"},
	}, c.CAOptions())
	assert.Equal(t, "mychannel", c.Channel)
	assert.Equal(t, "library", c.Contract)
	assert.Equal(t, 5*time.Minute, c.CommitTimeout)
	assert.Equal(t, "info", c.Log.Level)

	assert.Equal(t, wallet.Options{
		Backend: wallet.FileSystem,
		Path:    "./wallet",
		Vault:   wallet.VaultOptions{Mount: "secret", Path: "library/wallet"},
	}, c.WalletOptions())
	assert.Equal(t, ledger.Options{
		Discovery:     ledger.Discovery{Enabled: true, AsLocalhost: true},
		CommitTimeout: 5 * time.Minute,
	}, c.LedgerOptions())

	assert.Error(t, c.RequireProfile())
}

func TestConfigFile(t *testing.T) {
	c, err := load(t, filepath.Join("testdata", "library.yaml"))
	require.NoError(t, err)

	assert.NoError(t, c.RequireProfile())
	assert.Equal(t, "librarychannel", c.Channel)
	assert.Equal(t, "library", c.Contract)
	assert.Equal(t, 90*time.Second, c.CommitTimeout)
	assert.Equal(t, wallet.SQLite, c.Wallet.Backend)
	assert.Equal(t, "/var/lib/library/wallet.db", c.Wallet.Path)
	assert.True(t, c.Discovery.Enabled)
	assert.False(t, c.Discovery.AsLocalhost)
	assert.Equal(t, Log{Level: "debug", Format: "json"}, c.Log)

	req, err := c.ProvisionRequest()
	require.NoError(t, err)
	assert.Equal(t, "librarian", req.Label)
	assert.Equal(t, "Org1MSP", req.MSPID)
	assert.Equal(t, "librarianpw", req.Secret)
	assert.Equal(t, 3, req.MaxEnrollments)
	assert.Equal(t, []enroll.Attribute{
		{Name: "role", Value: "librarian", ECert: true},
		{Name: "branch", Value: "central"},
	}, req.Attributes)
}

func TestEnvironment(t *testing.T) {
	t.Setenv("LIBRARY_WALLET_BACKEND", "vault")
	t.Setenv("LIBRARY_WALLET_VAULT_ADDRESS", "http://127.0.0.1:8200")
	t.Setenv("LIBRARY_COMMITTIMEOUT", "30s")
	t.Setenv("LIBRARY_USER_ATTRIBUTES", "role=reader,shelf=b4")
	t.Setenv("LIBRARY_CA_REGISTRAR_ENROLLSECRET", "s3cret")

	c, err := load(t, filepath.Join("testdata", "library.yaml"))
	require.NoError(t, err)

	assert.Equal(t, wallet.Vault, c.Wallet.Backend)
	assert.Equal(t, "http://127.0.0.1:8200", c.WalletOptions().Vault.Address)
	assert.Equal(t, 30*time.Second, c.CommitTimeout)

	attrs, err := c.RegistrationAttributes()
	require.NoError(t, err)
	assert.Equal(t, []enroll.Attribute{{Name: "role", Value: "reader"}, {Name: "shelf", Value: "b4"}}, attrs)
	assert.Equal(t, profile.Registrar{EnrollID: "admin", EnrollSecret: "s3cret"}, c.CAOptions().Registrar)
}

func TestInvalid(t *testing.T) {
	for _, name := range []string{"bad-backend.yaml", "bad-attribute.yaml", "missing.yaml"} {
		_, err := load(t, filepath.Join("testdata", name))
		require.Error(t, err, name)
		assert.Equal(t, status.InvalidArguments, status.KindOf(err), name)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c, err := load(t, "")
		require.NoError(t, err)
		return c
	}

	c := valid()
	c.User.Label = " "
	assert.Error(t, c.Validate())

	c = valid()
	c.Contract = ""
	assert.Error(t, c.Validate())

	// the profile supplies the MSP ID
	c = valid()
	c.User.MSPID = ""
	assert.NoError(t, c.Validate())

	c = valid()
	c.Wallet.Path = ""
	assert.Error(t, c.Validate())

	c = valid()
	c.Wallet.Backend = wallet.InMemory
	c.Wallet.Path = ""
	assert.NoError(t, c.Validate())

	c = valid()
	c.Wallet.Backend = wallet.Vault
	c.Wallet.Vault.Path = ""
	assert.Error(t, c.Validate())

	c = valid()
	c.CommitTimeout = -time.Second
	assert.Error(t, c.Validate())
}
