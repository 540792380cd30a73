/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package wallet

import (
	"path"

	vault "github.com/hashicorp/vault/api"
	"github.com/pkg/errors"
)

const defaultVaultMount = "secret"

// VaultOptions configures a Vault-backed wallet.
type VaultOptions struct {
	// Address of the Vault server; the client default applies when empty.
	Address string
	// Token used to authenticate.
	Token string
	// Mount of the KV version 2 secrets engine, "secret" when empty.
	Mount string
	// Path below the mount under which identities are kept.
	Path string
}

// vaultBackend keeps entries in a KV v2 secrets engine, one secret per label
// with the identity JSON in its "value" field.
type vaultBackend struct {
	logical *vault.Logical
	mount   string
	path    string
}

// NewVaultWallet creates an instance of a wallet, backed by key/values in Vault
func NewVaultWallet(opts VaultOptions) (*Wallet, error) {
	if opts.Path == "" {
		return nil, errors.New("vault wallet path is empty")
	}
	if opts.Token == "" {
		return nil, errors.New("vault token is empty")
	}

	cfg := vault.DefaultConfig()
	if opts.Address != "" {
		cfg.Address = opts.Address
	}

	client, err := vault.NewClient(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "can't create Vault client")
	}
	client.SetToken(opts.Token)

	mount := opts.Mount
	if mount == "" {
		mount = defaultVaultMount
	}

	return NewWalletWithBackend(&vaultBackend{logical: client.Logical(), mount: mount, path: opts.Path}), nil
}

func (v *vaultBackend) dataPath(label string) string {
	return path.Join(v.mount, "data", v.path, label)
}

func (v *vaultBackend) metadataPath(elem ...string) string {
	return path.Join(append([]string{v.mount, "metadata", v.path}, elem...)...)
}

func (v *vaultBackend) Put(label string, content []byte) error {
	secret := map[string]interface{}{
		"data": map[string]interface{}{"value": string(content)},
	}
	if _, err := v.logical.Write(v.dataPath(label), secret); err != nil {
		return errors.Wrapf(err, "can't write %s to Vault", label)
	}
	return nil
}

func (v *vaultBackend) Get(label string) ([]byte, error) {
	value, found, err := v.read(label)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Wrapf(ErrNotFound, "no secret for %s", label)
	}
	return []byte(value), nil
}

func (v *vaultBackend) read(label string) (string, bool, error) {
	secret, err := v.logical.Read(v.dataPath(label))
	if err != nil {
		return "", false, errors.Wrapf(err, "can't read %s from Vault", label)
	}
	if secret == nil || secret.Data == nil {
		return "", false, nil
	}

	// deleted versions come back with metadata only
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok || data == nil {
		return "", false, nil
	}

	value, ok := data["value"].(string)
	if !ok {
		return "", false, errors.Errorf("invalid value type for %s: expected string", label)
	}
	return value, true, nil
}

func (v *vaultBackend) Exists(label string) (bool, error) {
	_, found, err := v.read(label)
	return found, err
}

// Remove deletes all versions and the metadata of the entry.
func (v *vaultBackend) Remove(label string) error {
	if _, err := v.logical.Delete(v.metadataPath(label)); err != nil {
		return errors.Wrapf(err, "can't delete %s from Vault", label)
	}
	return nil
}

func (v *vaultBackend) List() ([]string, error) {
	secret, err := v.logical.List(v.metadataPath())
	if err != nil {
		return nil, errors.Wrap(err, "can't list identities in Vault")
	}

	labels := []string{}
	if secret == nil || secret.Data == nil {
		return labels, nil
	}

	keys, ok := secret.Data["keys"].([]interface{})
	if !ok {
		return nil, errors.New("can't cast key list from Vault")
	}

	for _, key := range keys {
		label, ok := key.(string)
		if !ok {
			return nil, errors.New("can't cast key from Vault to string")
		}
		// sub paths are listed with a trailing slash
		if label == "" || label[len(label)-1] == '/' {
			continue
		}
		labels = append(labels, label)
	}
	return labels, nil
}
