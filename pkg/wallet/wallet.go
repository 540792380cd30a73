/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package wallet stores the credentials of application users, keyed by label.
//
// A Wallet serializes identities in the X.509 JSON format used by the Fabric
// client SDKs and delegates raw storage to a Backend. Backends are provided
// for the filesystem, memory, HashiCorp Vault and SQLite.
package wallet

import (
	"strings"

	"github.com/hyperledger/fabric-library-app/pkg/common/status"
	"github.com/hyperledger/fabric-sdk-go/pkg/common/logging"
	"github.com/pkg/errors"
)

var logger = logging.NewLogger("library/wallet")

// ErrNotFound is returned by backends when no entry exists for a label.
var ErrNotFound = errors.New("entry not found")

// IsNotFound reports whether the cause of err is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Cause(err) == ErrNotFound
}

// Store is the credential store used by the workflows.
type Store interface {
	Exists(label string) (bool, error)
	Get(label string) (*Identity, error)
	Put(label string, id *Identity) error
	Remove(label string) error
	List() ([]string, error)
}

// Backend is the interface for implementations that provide backing storage
// for identities in a wallet. Content is opaque to the backend.
// Get must return ErrNotFound (possibly wrapped) when the label is absent.
type Backend interface {
	Put(label string, content []byte) error
	Get(label string) ([]byte, error)
	Exists(label string) (bool, error)
	Remove(label string) error
	List() ([]string, error)
}

// Wallet implements Store on top of a Backend.
type Wallet struct {
	store Backend
}

// NewWalletWithBackend creates a wallet that keeps its entries in the given backend.
func NewWalletWithBackend(backend Backend) *Wallet {
	return &Wallet{store: backend}
}

// Put an identity into the wallet, replacing any identity already stored under label.
//  Parameters:
//  label specifies the name to be associated with the identity.
//  id specifies the identity to store in the wallet.
func (w *Wallet) Put(label string, id *Identity) error {
	if err := validateLabel(label); err != nil {
		return err
	}
	if id == nil {
		return status.New(status.InvalidArguments, "no identity given for label %s", label)
	}

	content, err := id.toJSON()
	if err != nil {
		return status.Wrap(status.StoreUnavailable, err, "encode identity %s", label)
	}

	if err := w.store.Put(label, content); err != nil {
		return status.Wrap(status.StoreUnavailable, err, "write identity %s", label)
	}

	logger.Debugf("stored identity %s for MSP %s", label, id.MSPID)
	return nil
}

// Get an identity from the wallet.
//  Parameters:
//  label specifies the name of the identity in the wallet.
//
//  Returns:
//  The identity, or an IdentityNotFound error.
func (w *Wallet) Get(label string) (*Identity, error) {
	if err := validateLabel(label); err != nil {
		return nil, err
	}

	content, err := w.store.Get(label)
	if err != nil {
		if IsNotFound(err) {
			return nil, status.New(status.IdentityNotFound, "identity %s is not in the wallet", label)
		}
		return nil, status.Wrap(status.StoreUnavailable, err, "read identity %s", label)
	}

	id, err := fromJSON(label, content)
	if err != nil {
		return nil, status.Wrap(status.StoreUnavailable, err, "decode identity %s", label)
	}

	return id, nil
}

// Exists tests whether the wallet contains an identity for the given label.
func (w *Wallet) Exists(label string) (bool, error) {
	if err := validateLabel(label); err != nil {
		return false, err
	}

	exists, err := w.store.Exists(label)
	if err != nil {
		return false, status.Wrap(status.StoreUnavailable, err, "look up identity %s", label)
	}
	return exists, nil
}

// Remove an identity from the wallet. If the identity does not exist, this method does nothing.
func (w *Wallet) Remove(label string) error {
	if err := validateLabel(label); err != nil {
		return err
	}

	if err := w.store.Remove(label); err != nil {
		return status.Wrap(status.StoreUnavailable, err, "remove identity %s", label)
	}
	return nil
}

// List returns the labels of all identities in the wallet.
func (w *Wallet) List() ([]string, error) {
	labels, err := w.store.List()
	if err != nil {
		return nil, status.Wrap(status.StoreUnavailable, err, "list identities")
	}
	return labels, nil
}

func validateLabel(label string) error {
	if label == "" {
		return status.New(status.InvalidArguments, "identity label is empty")
	}
	if strings.ContainsAny(label, `/\`) || label == "." || label == ".." {
		return status.New(status.InvalidArguments, "identity label %q is not a valid name", label)
	}
	return nil
}
