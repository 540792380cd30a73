/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package integration contains helpers for tests that run against the
// fabric-samples test network with the library chaincode deployed.
package integration

import (
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/hyperledger/fabric-library-app/pkg/profile"
)

// TestNetworkEnv names the variable holding the test-network directory.
const TestNetworkEnv = "FABRIC_TEST_NETWORK"

const (
	// ChannelID of the test network
	ChannelID = "mychannel"
	// ContractName of the library chaincode
	ContractName = "library"
)

// TestRunID is an identifier for the current run of tests
var TestRunID = strings.Split(uuid.New().String(), "-")[0]

// Profile builds the connection profile of Org1, skipping the test when no
// test network is configured.
func Profile(t *testing.T) *profile.Profile {
	t.Helper()

	root := os.Getenv(TestNetworkEnv)
	if root == "" {
		t.Skipf("%s is not set", TestNetworkEnv)
	}

	p, err := profile.TestNetwork{Root: root, Org: 1}.Build()
	if err != nil {
		t.Fatalf("Failed to build connection profile: %s", err)
	}
	return p
}
