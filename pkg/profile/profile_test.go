/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package profile

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperledger/fabric-sdk-go/pkg/common/providers/core"
	"github.com/spf13/cast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookup(t *testing.T, provider core.ConfigProvider, key string) (interface{}, bool) {
	backends, err := provider()
	require.NoError(t, err)
	for _, backend := range backends {
		if value, ok := backend.Lookup(key); ok {
			return value, true
		}
	}
	return nil, false
}

// field looks up a key the way the SDK does, ignoring case.
func field(value interface{}, name string) interface{} {
	for key, v := range cast.ToStringMap(value) {
		if strings.EqualFold(key, name) {
			return v
		}
	}
	return nil
}

func registrarOf(t *testing.T, p *Profile, ca string) (string, string) {
	value, ok := lookup(t, p.ConfigProvider(), "certificateAuthorities")
	require.True(t, ok)
	registrar := field(field(value, ca), "registrar")
	return cast.ToString(field(registrar, "enrollId")), cast.ToString(field(registrar, "enrollSecret"))
}

func TestFromFileJSON(t *testing.T) {
	p, err := FromFile(filepath.Join("testdata", "connection-org1.json"))
	require.NoError(t, err)

	assert.Equal(t, "test-network-org1", p.Name())
	assert.Equal(t, "Org1", p.Organization())
	assert.Equal(t, "Org1MSP", p.MSPID())

	ca, err := p.CertificateAuthority("")
	require.NoError(t, err)
	assert.Equal(t, "ca.org1.example.com", ca)

	ca, err = p.CertificateAuthority("ca.org1.example.com")
	require.NoError(t, err)
	assert.Equal(t, "ca.org1.example.com", ca)

	_, err = p.CertificateAuthority("ca.org2.example.com")
	assert.Error(t, err)

	value, ok := lookup(t, p.ConfigProvider(), "client.organization")
	require.True(t, ok)
	assert.Equal(t, "Org1", value)
}

func TestFromFileYAML(t *testing.T) {
	p, err := FromFile(filepath.Join("testdata", "connection-org2.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "Org2", p.Organization())
	assert.Equal(t, "Org2MSP", p.MSPID())
}

func TestInvalidProfiles(t *testing.T) {
	for _, name := range []string{"no-client-org.yaml", "unknown-client-org.yaml", "malformed.yaml", "missing.yaml"} {
		_, err := FromFile(filepath.Join("testdata", name))
		assert.Error(t, err, name)
	}

	_, err := FromRaw([]byte("name: x"), "toml")
	assert.Error(t, err)
}

func TestWithDefaults(t *testing.T) {
	p, err := FromFile(filepath.Join("testdata", "connection-org1.json"))
	require.NoError(t, err)

	defaults := []byte("client:\n  organization: Ignored\n  credentialStore:\n    path: /tmp/state-store\n")
	provider := p.WithDefaults(defaults)

	value, ok := lookup(t, provider, "client.credentialStore.path")
	require.True(t, ok)
	assert.Equal(t, "/tmp/state-store", value)

	// the profile wins over the defaults
	value, ok = lookup(t, provider, "client.organization")
	require.True(t, ok)
	assert.Equal(t, "Org1", value)
}

func TestTestNetworkBuild(t *testing.T) {
	p, err := TestNetwork{Root: "/opt/test-network", Org: 1}.Build()
	require.NoError(t, err)

	assert.Equal(t, "Org1", p.Organization())
	assert.Equal(t, "Org1MSP", p.MSPID())

	ca, err := p.CertificateAuthority("ca.org1.example.com")
	require.NoError(t, err)
	assert.Equal(t, "ca.org1.example.com", ca)

	value, ok := lookup(t, p.ConfigProvider(), "peers")
	require.True(t, ok)
	peer := cast.ToStringMap(cast.ToStringMap(value)["peer0.org1.example.com"])
	assert.Equal(t, "grpcs://localhost:7051", peer["url"])

	p2, err := TestNetwork{Root: "/opt/test-network", Org: 2}.Build()
	require.NoError(t, err)
	assert.Equal(t, "Org2MSP", p2.MSPID())
	value, ok = lookup(t, p2.ConfigProvider(), "certificateAuthorities")
	require.True(t, ok)
	ca2 := cast.ToStringMap(cast.ToStringMap(value)["ca.org2.example.com"])
	assert.Equal(t, "https://localhost:8054", ca2["url"])

	_, err = TestNetwork{Org: 3}.Build()
	assert.Error(t, err)
}

func TestWithRegistrar(t *testing.T) {
	admin := Registrar{EnrollID: "admin", EnrollSecret: "adminpw"}

	p, err := FromFile(filepath.Join("..", "..", "cmd", "library", "testdata", "connection-org1.json"))
	require.NoError(t, err)
	assert.Empty(t, p.Registrar("ca.org1.example.com").EnrollID)

	withAdmin, err := p.WithRegistrar("ca.org1.example.com", admin)
	require.NoError(t, err)
	assert.Equal(t, admin, withAdmin.Registrar("ca.org1.example.com"))
	id, secret := registrarOf(t, withAdmin, "ca.org1.example.com")
	assert.Equal(t, "admin", id)
	assert.Equal(t, "adminpw", secret)
	assert.Equal(t, "Org1MSP", withAdmin.MSPID())

	value, ok := lookup(t, withAdmin.ConfigProvider(), "certificateAuthorities")
	require.True(t, ok)
	assert.Equal(t, "ca-org1", field(field(value, "ca.org1.example.com"), "caName"))

	p2, err := FromFile(filepath.Join("testdata", "connection-org2.yaml"))
	require.NoError(t, err)
	p2, err = p2.WithRegistrar("ca.org2.example.com", admin)
	require.NoError(t, err)
	id, _ = registrarOf(t, p2, "ca.org2.example.com")
	assert.Equal(t, "admin", id)

	_, err = p.WithRegistrar("ca.org2.example.com", admin)
	assert.Error(t, err)
}

func TestWithRegistrarKeepsDeclared(t *testing.T) {
	p, err := TestNetwork{Root: "/opt/test-network", Org: 1}.Build()
	require.NoError(t, err)

	same, err := p.WithRegistrar("ca.org1.example.com", Registrar{EnrollID: "registrar", EnrollSecret: "registrarpw"})
	require.NoError(t, err)
	id, secret := registrarOf(t, same, "ca.org1.example.com")
	assert.Equal(t, "admin", id)
	assert.Equal(t, "adminpw", secret)

	unchanged, err := p.WithRegistrar("ca.org1.example.com", Registrar{})
	require.NoError(t, err)
	assert.Equal(t, p, unchanged)
}
