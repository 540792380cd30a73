/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ledger

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/hyperledger/fabric-library-app/pkg/common/status"
	"github.com/hyperledger/fabric-library-app/pkg/profile"
	"github.com/hyperledger/fabric-library-app/pkg/wallet"
	sdkstatus "github.com/hyperledger/fabric-sdk-go/pkg/common/errors/status"
	"github.com/hyperledger/fabric-sdk-go/pkg/common/providers/core"
	"github.com/hyperledger/fabric-sdk-go/pkg/gateway"
	"github.com/pkg/errors"
)

const localhostEnvVarName = "DISCOVERY_AS_LOCALHOST"

// transactor is the part of gateway.Contract in use.
type transactor interface {
	Name() string
	SubmitTransaction(name string, args ...string) ([]byte, error)
	EvaluateTransaction(name string, args ...string) ([]byte, error)
}

type channel interface {
	GetContract(name string) transactor
}

type connection interface {
	GetNetwork(name string) (channel, error)
	Close()
}

type connectFunc func(config core.ConfigProvider, id *wallet.Identity, timeout time.Duration) (connection, error)

// GatewayConnector opens sessions with the fabric-sdk-go gateway.
type GatewayConnector struct {
	connect connectFunc
}

// NewGatewayConnector returns a connector backed by the SDK gateway.
func NewGatewayConnector() *GatewayConnector {
	return &GatewayConnector{connect: gatewayConnect}
}

// Open connects to the network as id.
func (c *GatewayConnector) Open(p *profile.Profile, id *wallet.Identity, opts Options) (Session, error) {
	if p == nil {
		return nil, status.New(status.InvalidArguments, "no connection profile given")
	}
	if id == nil || !id.Complete() {
		return nil, status.New(status.InvalidArguments, "identity is missing credentials")
	}

	if !opts.Discovery.Enabled {
		logger.Warn("the gateway always uses service discovery, ignoring discovery.enabled=false")
	}
	if err := os.Setenv(localhostEnvVarName, strconv.FormatBool(opts.Discovery.AsLocalhost)); err != nil {
		return nil, status.Wrap(status.ConnectFailed, err, "failed to set %s", localhostEnvVarName)
	}

	timeout := opts.CommitTimeout
	if timeout <= 0 {
		timeout = DefaultCommitTimeout
	}

	conn, err := c.connect(p.ConfigProvider(), id, timeout)
	if err != nil {
		return nil, status.Wrap(status.ConnectFailed, err, "failed to connect to gateway as %s", id.Label)
	}

	logger.Debugf("connected to %s as %s", p.Name(), id.Label)
	return &session{conn: conn}, nil
}

func gatewayConnect(config core.ConfigProvider, id *wallet.Identity, timeout time.Duration) (connection, error) {
	label := id.Label
	if label == "" {
		label = "user"
	}

	// the gateway reads the identity from a wallet; keep the key out of any
	// persistent one
	w := gateway.NewInMemoryWallet()
	if err := w.Put(label, gateway.NewX509Identity(id.MSPID, string(id.Certificate), string(id.PrivateKey))); err != nil {
		return nil, errors.Wrap(err, "failed to load identity")
	}

	gw, err := gateway.Connect(
		gateway.WithConfig(config),
		gateway.WithIdentity(w, label),
		gateway.WithTimeout(timeout),
	)
	if err != nil {
		return nil, err
	}
	return &gatewayConnection{gw: gw}, nil
}

type gatewayConnection struct {
	gw *gateway.Gateway
}

func (c *gatewayConnection) GetNetwork(name string) (channel, error) {
	nw, err := c.gw.GetNetwork(name)
	if err != nil {
		return nil, err
	}
	return &gatewayNetwork{nw: nw}, nil
}

func (c *gatewayConnection) Close() {
	c.gw.Close()
}

type gatewayNetwork struct {
	nw *gateway.Network
}

func (n *gatewayNetwork) GetContract(name string) transactor {
	return n.nw.GetContract(name)
}

type session struct {
	mutex  sync.Mutex
	conn   connection
	closed bool
}

func (s *session) GetContract(channel, name string) (Contract, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return nil, status.New(status.ConnectFailed, "session is closed")
	}
	if channel == "" {
		return nil, status.New(status.ChannelNotFound, "no channel name given")
	}

	nw, err := s.conn.GetNetwork(channel)
	if err != nil {
		return nil, status.Wrap(status.ChannelNotFound, err, "failed to get network %s", channel)
	}

	if name == "" {
		return nil, status.New(status.ContractNotFound, "no contract name given")
	}
	// the gateway does not check the name; an unknown contract is rejected
	// by the peers and surfaces as TransactionFailed
	return &contract{t: nw.GetContract(name)}, nil
}

func (s *session) Close() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		logger.Debug("session already closed")
		return
	}
	s.closed = true
	s.conn.Close()
}

type contract struct {
	t transactor
}

func (c *contract) Name() string {
	return c.t.Name()
}

func (c *contract) SubmitTransaction(name string, args ...string) ([]byte, error) {
	result, err := c.t.SubmitTransaction(name, args...)
	if err != nil {
		return nil, transactionError("submit", name, err)
	}
	return result, nil
}

func (c *contract) EvaluateTransaction(name string, args ...string) ([]byte, error) {
	result, err := c.t.EvaluateTransaction(name, args...)
	if err != nil {
		return nil, transactionError("evaluate", name, err)
	}
	return result, nil
}

// transactionError carries the network's rejection reason, taken from the SDK
// status when there is one.
func transactionError(op, name string, err error) error {
	if s, ok := sdkstatus.FromError(err); ok && s.Message != "" {
		return status.Wrap(status.TransactionFailed, err, "failed to %s transaction %s: %s", op, name, s.Message)
	}
	return status.Wrap(status.TransactionFailed, err, "failed to %s transaction %s", op, name)
}
