/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package wallet

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

const (
	x509Type        = "X.509"
	identityVersion = 1
)

// Identity holds the enrollment credentials of an application user.
// PrivateKey is secret. String leaves it out so an Identity can
// be passed to a logger without leaking the key.
type Identity struct {
	Label       string
	MSPID       string
	Affiliation string
	Certificate []byte
	PrivateKey  []byte
}

// NewX509Identity creates an X.509 identity for storage in a wallet
func NewX509Identity(mspID string, cert, key []byte) *Identity {
	return &Identity{MSPID: mspID, Certificate: cert, PrivateKey: key}
}

func (id *Identity) String() string {
	return fmt.Sprintf("Identity{Label: %s, MSPID: %s, Affiliation: %s, Certificate: %d bytes}",
		id.Label, id.MSPID, id.Affiliation, len(id.Certificate))
}

// Complete reports whether both the certificate and the private key are present.
func (id *Identity) Complete() bool {
	return len(id.Certificate) > 0 && len(id.PrivateKey) > 0
}

// x509Entry is the on-disk format shared with the fabric-network wallets.
type x509Entry struct {
	Version     int         `json:"version"`
	MspID       string      `json:"mspId"`
	IDType      string      `json:"type"`
	Affiliation string      `json:"affiliation,omitempty"`
	Credentials credentials `json:"credentials"`
}

type credentials struct {
	Certificate string `json:"certificate"`
	Key         string `json:"privateKey"`
}

func (id *Identity) toJSON() ([]byte, error) {
	return json.Marshal(&x509Entry{
		Version:     identityVersion,
		MspID:       id.MSPID,
		IDType:      x509Type,
		Affiliation: id.Affiliation,
		Credentials: credentials{
			Certificate: string(id.Certificate),
			Key:         string(id.PrivateKey),
		},
	})
}

func fromJSON(label string, content []byte) (*Identity, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, errors.Wrap(err, "invalid identity format")
	}

	idType, ok := data["type"].(string)
	if !ok {
		return nil, errors.New("invalid identity format: missing type property")
	}
	if idType != x509Type {
		return nil, errors.Errorf("invalid identity format: unsupported identity type: %s", idType)
	}

	var entry x509Entry
	if err := json.Unmarshal(content, &entry); err != nil {
		return nil, errors.Wrap(err, "invalid identity format")
	}

	return &Identity{
		Label:       label,
		MSPID:       entry.MspID,
		Affiliation: entry.Affiliation,
		Certificate: []byte(entry.Credentials.Certificate),
		PrivateKey:  []byte(entry.Credentials.Key),
	}, nil
}
