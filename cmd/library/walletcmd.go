/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) walletCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Inspect the wallet.",
	}
	cmd.AddCommand(&cobra.Command{
		Use:         "list",
		Short:       "List the labels of the identities in the wallet.",
		Args:        exactArgs(0),
		Annotations: map[string]string{workflowAnnotation: "WalletList"},
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeWallet, err := a.openWallet()
			if err != nil {
				return err
			}
			defer closeWallet()

			labels, err := store.List()
			if err != nil {
				return err
			}
			for _, label := range labels {
				fmt.Fprintln(a.out, label)
			}
			return nil
		},
	})
	return cmd
}
