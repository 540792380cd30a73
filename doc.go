/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package library is a client of the library smart contract on Hyperledger Fabric.
//
// Packages
//
// pkg/wallet: Stores the credentials of application users in the filesystem, memory,
// HashiCorp Vault or SQLite.
//
// pkg/enroll: Registers and enrolls users with the organization's Fabric CA.
//
// pkg/provision: Registers a user, enrolls it and imports the credentials into a wallet.
//
// pkg/ledger: Opens gateway sessions and invokes contract transactions.
//
// pkg/submit: Invokes a transaction on behalf of a user held in the wallet.
//
// cmd/library: The command line client.
//
// Basic workflow
//
//      1) Run "library register-user" once. The configured user is registered with the CA,
//         enrolled, and its certificate and key are stored in the wallet.
//         Note: running it again does nothing while the wallet holds the user.
//      2) Run a transaction, e.g. "library borrow-book book-42 alice". The command connects
//         as the user, submits BorrowBook and waits until it is committed.
//      3) Query with "library read-book book-42"; nothing is written to the ledger.
//
package library
