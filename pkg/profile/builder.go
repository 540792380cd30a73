/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package profile

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// TestNetwork describes an organization of the Fabric test network, whose
// crypto material lives under <Root>/organizations.
type TestNetwork struct {
	// Root of the fabric-samples test-network directory.
	Root string
	// Org is the organization number, 1 or 2.
	Org int
	// PeerPort and CAPort are the host ports of the peer and CA.
	PeerPort int
	CAPort   int
}

type ccp struct {
	Name                   string                    `yaml:"name"`
	Version                string                    `yaml:"version"`
	Client                 ccpClient                 `yaml:"client"`
	Organizations          map[string]ccpOrg         `yaml:"organizations"`
	Peers                  map[string]ccpNode        `yaml:"peers"`
	CertificateAuthorities map[string]ccpCertificate `yaml:"certificateAuthorities"`
}

type ccpClient struct {
	Organization string `yaml:"organization"`
	Connection   struct {
		Timeout struct {
			Peer struct {
				Endorser string `yaml:"endorser"`
			} `yaml:"peer"`
		} `yaml:"timeout"`
	} `yaml:"connection"`
}

type ccpOrg struct {
	MSPID                  string   `yaml:"mspid"`
	Peers                  []string `yaml:"peers"`
	CertificateAuthorities []string `yaml:"certificateAuthorities"`
}

type ccpPath struct {
	Path string `yaml:"path"`
}

type ccpNode struct {
	URL         string            `yaml:"url"`
	TLSCACerts  ccpPath           `yaml:"tlsCACerts"`
	GRPCOptions map[string]string `yaml:"grpcOptions"`
}

type ccpRegistrar struct {
	EnrollID     string `yaml:"enrollId"`
	EnrollSecret string `yaml:"enrollSecret"`
}

type ccpCertificate struct {
	URL         string          `yaml:"url"`
	CAName      string          `yaml:"caName"`
	TLSCACerts  ccpPath         `yaml:"tlsCACerts"`
	Registrar   ccpRegistrar    `yaml:"registrar"`
	HTTPOptions map[string]bool `yaml:"httpOptions"`
}

// Build creates the connection profile of the organization in memory, the
// same profile the test network generates as connection-org<N>.yaml.
func (n TestNetwork) Build() (*Profile, error) {
	if n.Org != 1 && n.Org != 2 {
		return nil, errors.Errorf("test network has no organization %d", n.Org)
	}

	peerPort, caPort := n.PeerPort, n.CAPort
	if peerPort == 0 {
		peerPort = 7051 + (n.Org-1)*2000
	}
	if caPort == 0 {
		caPort = 7054 + (n.Org-1)*1000
	}

	orgName := fmt.Sprintf("Org%d", n.Org)
	domain := fmt.Sprintf("org%d.example.com", n.Org)
	peerName := "peer0." + domain
	caName := "ca." + domain
	orgDir := filepath.Join(n.Root, "organizations", "peerOrganizations", domain)

	doc := ccp{
		Name:    "test-network-org" + fmt.Sprint(n.Org),
		Version: "1.0.0",
		Organizations: map[string]ccpOrg{
			orgName: {
				MSPID:                  orgName + "MSP",
				Peers:                  []string{peerName},
				CertificateAuthorities: []string{caName},
			},
		},
		Peers: map[string]ccpNode{
			peerName: {
				URL:        fmt.Sprintf("grpcs://localhost:%d", peerPort),
				TLSCACerts: ccpPath{filepath.Join(orgDir, "tlsca", "tlsca."+domain+"-cert.pem")},
				GRPCOptions: map[string]string{
					"ssl-target-name-override": peerName,
					"hostnameOverride":         peerName,
				},
			},
		},
		CertificateAuthorities: map[string]ccpCertificate{
			caName: {
				URL:         fmt.Sprintf("https://localhost:%d", caPort),
				CAName:      fmt.Sprintf("ca-org%d", n.Org),
				TLSCACerts:  ccpPath{filepath.Join(orgDir, "ca", caName+"-cert.pem")},
				Registrar:   ccpRegistrar{EnrollID: "admin", EnrollSecret: "adminpw"},
				HTTPOptions: map[string]bool{"verify": false},
			},
		},
	}
	doc.Client.Organization = orgName
	doc.Client.Connection.Timeout.Peer.Endorser = "300"

	raw, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal connection profile")
	}
	return FromRaw(raw, "yaml")
}
