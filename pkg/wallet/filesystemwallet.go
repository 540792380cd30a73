/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package wallet

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const (
	dataFileExtension = ".id"
	tempFileExtension = ".tmp"
)

// fileSystemBackend stores one <label>.id file per identity in a directory.
type fileSystemBackend struct {
	path string
}

// NewFileSystemWallet creates a wallet backed by files in the given directory.
// The directory is created if it does not exist.
//  Parameters:
//  path specifies where on the filesystem to store the wallet.
func NewFileSystemWallet(path string) (*Wallet, error) {
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(cleanPath, 0700); err != nil {
		return nil, errors.Wrapf(err, "failed to create wallet directory %s", cleanPath)
	}

	return NewWalletWithBackend(&fileSystemBackend{cleanPath}), nil
}

func (fsw *fileSystemBackend) pathname(label string) string {
	return filepath.Clean(filepath.Join(fsw.path, label) + dataFileExtension)
}

// Put writes the entry to a temporary file first so a failed write never
// truncates an identity that is already stored.
func (fsw *fileSystemBackend) Put(label string, content []byte) error {
	f, err := ioutil.TempFile(fsw.path, label+"-*"+tempFileExtension)
	if err != nil {
		return err
	}
	tmpName := f.Name()

	if _, err := f.Write(content); err != nil {
		_ = f.Close() // ignore error; Write error takes precedence
		_ = os.Remove(tmpName)
		return err
	}
	if err := f.Chmod(0600); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, fsw.pathname(label))
}

func (fsw *fileSystemBackend) Get(label string) ([]byte, error) {
	content, err := ioutil.ReadFile(fsw.pathname(label))
	if os.IsNotExist(err) {
		if _, dirErr := os.Stat(fsw.path); dirErr != nil {
			return nil, dirErr
		}
		return nil, errors.Wrapf(ErrNotFound, "no file for %s", label)
	}
	return content, err
}

// Remove deletes the entry. A missing entry is not an error.
func (fsw *fileSystemBackend) Remove(label string) error {
	err := os.Remove(fsw.pathname(label))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (fsw *fileSystemBackend) Exists(label string) (bool, error) {
	if _, err := os.Stat(fsw.path); err != nil {
		return false, err
	}

	_, err := os.Stat(fsw.pathname(label))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (fsw *fileSystemBackend) List() ([]string, error) {
	files, err := ioutil.ReadDir(fsw.path)
	if err != nil {
		return nil, err
	}

	labels := []string{}
	for _, file := range files {
		name := file.Name()
		if file.IsDir() || filepath.Ext(name) != dataFileExtension {
			continue
		}
		labels = append(labels, strings.TrimSuffix(name, dataFileExtension))
	}

	return labels, nil
}
