/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package wallet

import (
	"io"

	"github.com/hyperledger/fabric-library-app/pkg/common/status"
)

// Backend names accepted by Open.
const (
	FileSystem = "filesystem"
	InMemory   = "memory"
	Vault      = "vault"
	SQLite     = "sqlite"
)

// Options selects and configures a wallet backend.
type Options struct {
	Backend string
	// Path is the directory for FileSystem and the data source for SQLite.
	Path  string
	Vault VaultOptions
}

// Open creates the wallet described by opts. The returned closer must be
// closed when the wallet is no longer needed.
func Open(opts Options) (Store, io.Closer, error) {
	switch opts.Backend {
	case FileSystem, "":
		w, err := NewFileSystemWallet(opts.Path)
		if err != nil {
			return nil, nil, status.Wrap(status.StoreUnavailable, err, "open wallet")
		}
		return w, nopCloser{}, nil
	case InMemory:
		return NewInMemoryWallet(), nopCloser{}, nil
	case Vault:
		w, err := NewVaultWallet(opts.Vault)
		if err != nil {
			return nil, nil, status.Wrap(status.StoreUnavailable, err, "open wallet")
		}
		return w, nopCloser{}, nil
	case SQLite:
		w, err := NewSQLiteWallet(opts.Path)
		if err != nil {
			return nil, nil, status.Wrap(status.StoreUnavailable, err, "open wallet")
		}
		return w, w, nil
	default:
		return nil, nil, status.New(status.InvalidArguments, "unknown wallet backend %q", opts.Backend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
