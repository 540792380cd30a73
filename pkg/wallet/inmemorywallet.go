/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package wallet

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

type inMemoryBackend struct {
	mutex   sync.RWMutex
	storage map[string][]byte
}

// NewInMemoryWallet creates a wallet held in memory.
// This implementation is not backed by a persistent store.
func NewInMemoryWallet() *Wallet {
	return NewWalletWithBackend(&inMemoryBackend{storage: make(map[string][]byte)})
}

func (m *inMemoryBackend) Put(label string, content []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	stored := make([]byte, len(content))
	copy(stored, content)
	m.storage[label] = stored
	return nil
}

func (m *inMemoryBackend) Get(label string) ([]byte, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	content, ok := m.storage[label]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "label doesn't exist: %s", label)
	}
	return content, nil
}

func (m *inMemoryBackend) Remove(label string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.storage, label)
	return nil
}

func (m *inMemoryBackend) Exists(label string) (bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	_, ok := m.storage[label]
	return ok, nil
}

func (m *inMemoryBackend) List() ([]string, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	labels := make([]string, 0, len(m.storage))
	for label := range m.storage {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels, nil
}
