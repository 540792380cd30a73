/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package provision registers an application user with the organization's
// certificate authority, enrolls it and stores the resulting credentials in
// the wallet.
package provision

import (
	"github.com/hyperledger/fabric-library-app/pkg/common/status"
	"github.com/hyperledger/fabric-library-app/pkg/enroll"
	"github.com/hyperledger/fabric-library-app/pkg/wallet"
	"github.com/hyperledger/fabric-sdk-go/pkg/common/logging"
)

var logger = logging.NewLogger("library/provision")

// State of a provisioning run.
type State int

const (
	// CheckExisting looks the label up in the wallet.
	CheckExisting State = iota
	// Register creates the registration record with the CA.
	Register
	// Enroll obtains the certificate.
	Enroll
	// Persist stores the identity.
	Persist
	// Provisioned is the terminal success state.
	Provisioned
	// AlreadyProvisioned is the terminal state when the wallet already holds the label.
	AlreadyProvisioned
	// Failed is the terminal failure state.
	Failed
)

var stateNames = map[State]string{
	CheckExisting:      "CheckExisting",
	Register:           "Register",
	Enroll:             "Enroll",
	Persist:            "Persist",
	Provisioned:        "Provisioned",
	AlreadyProvisioned: "AlreadyProvisioned",
	Failed:             "Failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}

// Terminal reports whether no transition leaves the state.
func (s State) Terminal() bool {
	return s == Provisioned || s == AlreadyProvisioned || s == Failed
}

// Request describes the user to provision.
type Request struct {
	Label       string
	MSPID       string
	Affiliation string
	// Secret is handed to the CA at registration. When the user is already
	// registered it is also the secret used to enroll.
	Secret         string
	MaxEnrollments int
	Attributes     []enroll.Attribute
}

// Result of a provisioning run.
type Result struct {
	State State
	// Visited lists the states in the order they were entered, the terminal
	// state included.
	Visited []State
	// Identity is set once the user has been enrolled.
	Identity *wallet.Identity
}

func (r *Result) enter(s State) {
	r.State = s
	r.Visited = append(r.Visited, s)
}

// Workflow provisions users. It holds no state between runs.
type Workflow struct {
	store  wallet.Store
	client enroll.Client
}

// New returns a workflow storing into store and enrolling with client.
func New(store wallet.Store, client enroll.Client) *Workflow {
	return &Workflow{store: store, client: client}
}

// Run provisions the user of the request. A label already present in the
// store is left untouched and no CA call is made.
func (w *Workflow) Run(req Request) (*Result, error) {
	result := &Result{}
	err := w.run(req, result)
	if err != nil {
		result.enter(Failed)
		return result, status.Prefix(err, "register user %s", req.Label)
	}
	return result, nil
}

func (w *Workflow) run(req Request, result *Result) error {
	result.enter(CheckExisting)
	if req.Label == "" {
		return status.New(status.InvalidArguments, "label is required")
	}
	exists, err := w.store.Exists(req.Label)
	if err != nil {
		return err
	}
	if exists {
		logger.Infof("An identity for the user %s already exists in the wallet", req.Label)
		result.enter(AlreadyProvisioned)
		return nil
	}

	result.enter(Register)
	secret, err := w.client.Register(&enroll.RegistrationRequest{
		Label:          req.Label,
		MSPID:          req.MSPID,
		Affiliation:    req.Affiliation,
		Secret:         req.Secret,
		MaxEnrollments: req.MaxEnrollments,
		Attributes:     req.Attributes,
	})
	switch {
	case status.Is(err, status.AlreadyRegistered):
		// the CA does not hand out the original secret again
		logger.Warnf("%s is already registered, enrolling with the configured secret", req.Label)
		secret = req.Secret
	case err != nil:
		return err
	}

	result.enter(Enroll)
	id, err := w.client.Enroll(req.Label, secret)
	if err != nil {
		return err
	}
	if id == nil {
		return status.New(status.EnrollmentFailed, "no credentials returned for %s", req.Label)
	}
	if id.Label == "" {
		id.Label = req.Label
	}
	if id.MSPID == "" {
		id.MSPID = req.MSPID
	}
	if id.Affiliation == "" {
		id.Affiliation = req.Affiliation
	}
	result.Identity = id

	result.enter(Persist)
	if err := w.store.Put(req.Label, id); err != nil {
		return err
	}

	logger.Infof("Successfully registered and enrolled user %s and imported it into the wallet", req.Label)
	result.enter(Provisioned)
	return nil
}
