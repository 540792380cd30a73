/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package ledger opens authenticated sessions to a Fabric network and invokes
// smart contract transactions through them.
package ledger

import (
	"time"

	"github.com/hyperledger/fabric-library-app/pkg/profile"
	"github.com/hyperledger/fabric-library-app/pkg/wallet"
	"github.com/hyperledger/fabric-sdk-go/pkg/common/logging"
)

var logger = logging.NewLogger("library/ledger")

//go:generate mockgen -destination mockledger/mockledger.gen.go -package mockledger github.com/hyperledger/fabric-library-app/pkg/ledger Connector,Session,Contract

// DefaultCommitTimeout bounds how long a submit waits for the commit event.
const DefaultCommitTimeout = 5 * time.Minute

// Discovery controls service discovery of endorsing peers.
type Discovery struct {
	Enabled bool
	// AsLocalhost maps discovered peer addresses to localhost, for networks
	// running in containers on the client host.
	AsLocalhost bool
}

// Options for opening a session.
type Options struct {
	Discovery     Discovery
	CommitTimeout time.Duration
}

// Connector opens sessions.
type Connector interface {
	// Open connects to the network described by the profile, authenticated as
	// id. Fails with status.ConnectFailed. Nothing is left open on failure.
	Open(p *profile.Profile, id *wallet.Identity, opts Options) (Session, error)
}

// Session is an open connection to the network. It must be closed exactly
// once; additional calls to Close are ignored.
type Session interface {
	// GetContract resolves a contract deployed on a channel.
	// Fails with status.ChannelNotFound, or status.ContractNotFound for an
	// empty name. A contract missing from the channel fails its transactions
	// with status.TransactionFailed.
	GetContract(channel, name string) (Contract, error)
	Close()
}

// Contract is a smart contract on a channel.
type Contract interface {
	Name() string
	// SubmitTransaction endorses the transaction, sends it for ordering and
	// waits for it to be committed. Fails with status.TransactionFailed.
	SubmitTransaction(name string, args ...string) ([]byte, error)
	// EvaluateTransaction queries a peer without updating the ledger.
	// Fails with status.TransactionFailed.
	EvaluateTransaction(name string, args ...string) ([]byte, error)
}

// WithSession opens a session, runs fn with it and closes the session when fn
// returns or panics.
func WithSession(connector Connector, p *profile.Profile, id *wallet.Identity, opts Options, fn func(Session) error) error {
	session, err := connector.Open(p, id, opts)
	if err != nil {
		return err
	}
	defer session.Close()

	return fn(session)
}
