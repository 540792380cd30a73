/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package enroll obtains signed credentials for application users from a
// certificate authority.
//
// Registration is a one-time administrative act that produces an enrollment
// secret; enrollment exchanges the secret for a certificate and may be
// repeated.
package enroll

import (
	"github.com/hyperledger/fabric-library-app/pkg/wallet"
)

//go:generate mockgen -destination mockenroll/mockenroll.gen.go -package mockenroll github.com/hyperledger/fabric-library-app/pkg/enroll Client

// Client is the registration/enrollment capability of a certificate authority.
type Client interface {
	// Register creates a registration record and returns its enrollment secret.
	// Fails with status.AlreadyRegistered or status.RegistrationFailed.
	Register(request *RegistrationRequest) (string, error)

	// Enroll exchanges the secret for signed credentials.
	// Fails with status.EnrollmentFailed.
	Enroll(label, secret string) (*wallet.Identity, error)
}

// Attribute is a name/value pair added to the registration record. ECert
// attributes are included in enrollment certificates by default.
type Attribute struct {
	Name  string
	Value string
	ECert bool
}

// RegistrationRequest defines the attributes required to register a user with the CA
type RegistrationRequest struct {
	// Label doubles as the enrollment ID.
	Label string
	// MSPID of the organization the user belongs to.
	MSPID string
	// Affiliation of the user, e.g. org1.department1
	Affiliation string
	// Type of identity being registered, "client" when empty.
	Type string
	// Secret is an optional password. The CA generates one when empty.
	Secret string
	// MaxEnrollments is the number of times the secret can be used. Zero
	// means the CA default.
	MaxEnrollments int
	Attributes     []Attribute
}
