/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"

	"github.com/hyperledger/fabric-library-app/pkg/submit"
	"github.com/spf13/cobra"
)

type bookCommand struct {
	use         string
	short       string
	transaction string
	arity       int
	// evaluate queries instead of submitting
	evaluate bool
}

var bookCommands = []bookCommand{
	{use: "borrow-book <id> <borrower>", short: "Borrow a book.", transaction: "BorrowBook", arity: 2},
	{use: "return-book <id> <borrower>", short: "Return a borrowed book.", transaction: "ReturnBook", arity: 2},
	{use: "purchase-book <id>", short: "Add a book to the library.", transaction: "PurchaseBook", arity: 1},
	{use: "read-book <id>", short: "Print a book.", transaction: "ReadBook", arity: 1, evaluate: true},
}

func (a *app) bookCmd(b bookCommand) *cobra.Command {
	return &cobra.Command{
		Use:         b.use,
		Short:       b.short,
		Args:        exactArgs(b.arity),
		Annotations: map[string]string{workflowAnnotation: b.transaction},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.invoke(b, args)
		},
	}
}

func (a *app) invoke(b bookCommand, args []string) error {
	p, err := a.loadProfile()
	if err != nil {
		return err
	}

	store, closeWallet, err := a.openWallet()
	if err != nil {
		return err
	}
	defer closeWallet()

	w := submit.New(store, a.connector, p, a.cfg.LedgerOptions()).WithRecorder(a.metrics)
	req := submit.Request{
		TransactionRequest: submit.TransactionRequest{
			Contract:    a.cfg.Contract,
			Transaction: b.transaction,
			Args:        args,
		},
		Label:   a.cfg.User.Label,
		Channel: a.cfg.Channel,
		Arity:   b.arity,
	}

	if b.evaluate {
		result, err := w.Evaluate(req)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, string(result.Payload))
		return nil
	}

	result, err := w.Submit(req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Transaction has been submitted, status: %s\n", result.Status)
	if len(result.Payload) > 0 {
		fmt.Fprintln(a.out, string(result.Payload))
	}
	return nil
}
