/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package submit invokes a transaction of a smart contract on behalf of a
// user held in the wallet.
package submit

import (
	"time"

	"github.com/google/uuid"
	"github.com/hyperledger/fabric-library-app/pkg/common/status"
	"github.com/hyperledger/fabric-library-app/pkg/ledger"
	"github.com/hyperledger/fabric-library-app/pkg/profile"
	"github.com/hyperledger/fabric-library-app/pkg/wallet"
	"github.com/hyperledger/fabric-sdk-go/pkg/common/logging"
)

var logger = logging.NewLogger("library/submit")

const (
	// Committed is the status of a submitted transaction once the commit
	// event has been received.
	Committed = "committed"
	// Evaluated is the status of a query.
	Evaluated = "evaluated"
)

// TransactionRequest names the transaction to invoke.
type TransactionRequest struct {
	Contract    string
	Transaction string
	Args        []string
}

// Request to run a transaction as the user Label.
type Request struct {
	TransactionRequest
	Label   string
	Channel string
	// Arity is the number of arguments the transaction expects.
	Arity int
}

// Result of a transaction.
type Result struct {
	Status  string
	Payload []byte
	// RunID correlates the log lines of one invocation.
	RunID string
}

// Recorder observes finished transactions.
type Recorder interface {
	ObserveTransaction(transaction string, elapsed time.Duration, err error)
}

// Workflow runs transactions. Each call opens its own session.
type Workflow struct {
	store     wallet.Store
	connector ledger.Connector
	profile   *profile.Profile
	options   ledger.Options
	recorder  Recorder
}

// New returns a workflow reading identities from store and connecting to the
// network of p.
func New(store wallet.Store, connector ledger.Connector, p *profile.Profile, opts ledger.Options) *Workflow {
	return &Workflow{store: store, connector: connector, profile: p, options: opts}
}

// WithRecorder sets the recorder for finished transactions.
func (w *Workflow) WithRecorder(r Recorder) *Workflow {
	w.recorder = r
	return w
}

// Submit sends the transaction for endorsement and ordering and waits until
// it is committed. There is no retry.
func (w *Workflow) Submit(req Request) (*Result, error) {
	return w.invoke(req, Committed, func(c ledger.Contract) ([]byte, error) {
		return c.SubmitTransaction(req.Transaction, req.Args...)
	})
}

// Evaluate runs the transaction on a peer without updating the ledger.
func (w *Workflow) Evaluate(req Request) (*Result, error) {
	return w.invoke(req, Evaluated, func(c ledger.Contract) ([]byte, error) {
		return c.EvaluateTransaction(req.Transaction, req.Args...)
	})
}

func (w *Workflow) invoke(req Request, done string, call func(ledger.Contract) ([]byte, error)) (*Result, error) {
	result := &Result{RunID: uuid.New().String()}
	start := time.Now()

	payload, err := w.run(req, result.RunID, call)
	if w.recorder != nil {
		w.recorder.ObserveTransaction(req.Transaction, time.Since(start), err)
	}
	if err != nil {
		logger.Errorf("[%s] %s failed: %s", result.RunID, req.Transaction, err)
		return nil, status.Prefix(err, "%s FAILED", req.Transaction)
	}

	result.Status = done
	result.Payload = payload
	logger.Infof("[%s] transaction %s has been %s", result.RunID, req.Transaction, done)
	return result, nil
}

func (w *Workflow) run(req Request, runID string, call func(ledger.Contract) ([]byte, error)) ([]byte, error) {
	if len(req.Args) != req.Arity {
		return nil, status.New(status.InvalidArguments, "%s expects %d arguments, got %d", req.Transaction, req.Arity, len(req.Args))
	}
	if req.Transaction == "" {
		return nil, status.New(status.InvalidArguments, "no transaction name given")
	}

	id, err := w.store.Get(req.Label)
	if err != nil {
		return nil, err
	}

	logger.Debugf("[%s] invoking %s on %s/%s as %s", runID, req.Transaction, req.Channel, req.Contract, req.Label)

	var payload []byte
	err = ledger.WithSession(w.connector, w.profile, id, w.options, func(session ledger.Session) error {
		contract, err := session.GetContract(req.Channel, req.Contract)
		if err != nil {
			return err
		}
		payload, err = call(contract)
		return err
	})
	return payload, err
}
