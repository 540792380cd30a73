/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package profile loads connection profiles. The profile content is handed
// to fabric-sdk-go untouched; only the client organization, its MSP ID and
// its certificate authorities are looked up here.
package profile

import (
	"encoding/json"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/hyperledger/fabric-sdk-go/pkg/common/providers/core"
	"github.com/hyperledger/fabric-sdk-go/pkg/core/config"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// Profile is an opaque connection profile.
type Profile struct {
	raw        []byte
	configType string
	doc        document
}

// document holds the handful of entries the client needs to know about.
type document struct {
	Name   string `json:"name" yaml:"name"`
	Client struct {
		Organization string `json:"organization" yaml:"organization"`
	} `json:"client" yaml:"client"`
	Organizations          map[string]organization `json:"organizations" yaml:"organizations"`
	CertificateAuthorities map[string]caEntry      `json:"certificateAuthorities" yaml:"certificateAuthorities"`
}

type organization struct {
	MSPID                  string   `json:"mspid" yaml:"mspid"`
	Peers                  []string `json:"peers" yaml:"peers"`
	CertificateAuthorities []string `json:"certificateAuthorities" yaml:"certificateAuthorities"`
}

type caEntry struct {
	URL       string    `json:"url" yaml:"url"`
	CAName    string    `json:"caName" yaml:"caName"`
	Registrar Registrar `json:"registrar" yaml:"registrar"`
}

// Registrar is the CA identity allowed to register users.
type Registrar struct {
	EnrollID     string `json:"enrollId" yaml:"enrollId"`
	EnrollSecret string `json:"enrollSecret" yaml:"enrollSecret"`
}

// FromFile reads a JSON or YAML connection profile.
func FromFile(path string) (*Profile, error) {
	raw, err := ioutil.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read connection profile %s", path)
	}

	configType := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		configType = "json"
	}

	p, err := FromRaw(raw, configType)
	if err != nil {
		return nil, errors.WithMessagef(err, "connection profile %s", path)
	}
	return p, nil
}

// FromRaw parses profile content of the given type ("json" or "yaml").
func FromRaw(raw []byte, configType string) (*Profile, error) {
	p := &Profile{raw: raw, configType: strings.ToLower(configType)}

	var err error
	switch p.configType {
	case "json":
		err = json.Unmarshal(raw, &p.doc)
	case "yaml", "yml":
		p.configType = "yaml"
		err = yaml.Unmarshal(raw, &p.doc)
	default:
		return nil, errors.Errorf("unsupported connection profile type %q", configType)
	}
	if err != nil {
		return nil, errors.Wrap(err, "malformed connection profile")
	}

	if p.doc.Client.Organization == "" {
		return nil, errors.New("no client organization defined in the connection profile")
	}
	if _, ok := p.organization(); !ok {
		return nil, errors.Errorf("client organization %s is not defined in the connection profile", p.doc.Client.Organization)
	}

	return p, nil
}

func (p *Profile) organization() (organization, bool) {
	// organization keys are matched case-insensitively, as the SDK does
	for name, org := range p.doc.Organizations {
		if strings.EqualFold(name, p.doc.Client.Organization) {
			return org, true
		}
	}
	return organization{}, false
}

// Name of the network, as declared by the profile.
func (p *Profile) Name() string {
	return p.doc.Name
}

// Organization is the client organization.
func (p *Profile) Organization() string {
	return p.doc.Client.Organization
}

// MSPID of the client organization.
func (p *Profile) MSPID() string {
	org, _ := p.organization()
	return org.MSPID
}

// CertificateAuthority returns the CA to enroll against. A non-empty name
// must be declared by the profile; an empty name selects the first CA of the
// client organization.
func (p *Profile) CertificateAuthority(name string) (string, error) {
	if name != "" {
		if _, ok := p.certificateAuthority(name); !ok {
			return "", errors.Errorf("certificate authority %s is not defined in the connection profile", name)
		}
		return name, nil
	}

	org, _ := p.organization()
	if len(org.CertificateAuthorities) == 0 {
		return "", errors.Errorf("organization %s has no certificate authority", p.Organization())
	}
	return org.CertificateAuthorities[0], nil
}

func (p *Profile) certificateAuthority(name string) (string, bool) {
	if _, ok := p.doc.CertificateAuthorities[name]; ok {
		return name, true
	}
	for key := range p.doc.CertificateAuthorities {
		if strings.EqualFold(key, name) {
			return key, true
		}
	}
	return "", false
}

// Registrar of the named certificate authority, empty when the profile
// declares none.
func (p *Profile) Registrar(ca string) Registrar {
	key, _ := p.certificateAuthority(ca)
	return p.doc.CertificateAuthorities[key].Registrar
}

// WithRegistrar returns a profile in which the certificate authority ca
// carries the registrar r. A registrar declared by the profile is kept.
//
// The SDK reads certificateAuthorities as a whole from the first
// configuration backend defining it, so the registrar cannot be supplied
// through WithDefaults.
func (p *Profile) WithRegistrar(ca string, r Registrar) (*Profile, error) {
	key, ok := p.certificateAuthority(ca)
	if !ok {
		return nil, errors.Errorf("certificate authority %s is not defined in the connection profile", ca)
	}
	if r.EnrollID == "" || p.doc.CertificateAuthorities[key].Registrar.EnrollID != "" {
		return p, nil
	}

	var raw []byte
	var err error
	switch p.configType {
	case "json":
		raw, err = setJSONRegistrar(p.raw, key, r)
	default:
		raw, err = setYAMLRegistrar(p.raw, key, r)
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to set registrar of %s", ca)
	}
	return FromRaw(raw, p.configType)
}

func setJSONRegistrar(raw []byte, ca string, r Registrar) ([]byte, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "malformed connection profile")
	}
	cas, _ := doc["certificateAuthorities"].(map[string]interface{})
	entry, ok := cas[ca].(map[string]interface{})
	if !ok {
		return nil, errors.New("certificate authority entry is not an object")
	}
	entry["registrar"] = r
	return json.Marshal(doc)
}

func setYAMLRegistrar(raw []byte, ca string, r Registrar) ([]byte, error) {
	var doc map[interface{}]interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "malformed connection profile")
	}
	cas, _ := doc["certificateAuthorities"].(map[interface{}]interface{})
	entry, ok := cas[ca].(map[interface{}]interface{})
	if !ok {
		return nil, errors.New("certificate authority entry is not a mapping")
	}
	entry["registrar"] = r
	return yaml.Marshal(doc)
}

// ConfigProvider returns the profile as an SDK configuration.
func (p *Profile) ConfigProvider() core.ConfigProvider {
	return config.FromRaw(p.raw, p.configType)
}

// WithDefaults returns an SDK configuration in which keys missing from the
// profile are looked up in defaults (YAML).
func (p *Profile) WithDefaults(defaults []byte) core.ConfigProvider {
	profileProvider := p.ConfigProvider()
	defaultsProvider := config.FromRaw(defaults, "yaml")

	return func() ([]core.ConfigBackend, error) {
		backends, err := profileProvider()
		if err != nil {
			return nil, err
		}
		fallback, err := defaultsProvider()
		if err != nil {
			return nil, errors.WithMessage(err, "invalid configuration defaults")
		}
		return append(backends, fallback...), nil
	}
}
