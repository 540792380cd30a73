/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"

	"github.com/hyperledger/fabric-library-app/pkg/provision"
	"github.com/spf13/cobra"
)

func (a *app) registerUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "register-user",
		Short:       "Register and enroll the application user.",
		Long:        `Registers the configured user with the organization's CA, enrolls it and imports the credentials into the wallet. Does nothing if the wallet already holds the user.`,
		Args:        exactArgs(0),
		Annotations: map[string]string{workflowAnnotation: "RegisterUser"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.registerUser()
		},
	}
}

func (a *app) registerUser() error {
	req, err := a.cfg.ProvisionRequest()
	if err != nil {
		return err
	}

	p, err := a.loadProfile()
	if err != nil {
		return err
	}
	if req.MSPID == "" {
		req.MSPID = p.MSPID()
	}

	store, closeWallet, err := a.openWallet()
	if err != nil {
		return err
	}
	defer closeWallet()

	client, closeClient, err := a.newEnrollClient(p, a.cfg.CAOptions())
	if err != nil {
		return err
	}
	defer closeClient()

	result, err := provision.New(store, client).Run(req)
	if result != nil {
		a.metrics.ObserveProvision(result.State.String(), err)
	}
	if err != nil {
		return err
	}

	if result.State == provision.AlreadyProvisioned {
		fmt.Fprintf(a.out, "An identity for the user %s already exists in the wallet\n", req.Label)
		return nil
	}
	fmt.Fprintf(a.out, "Successfully registered and enrolled user %s and imported it into the wallet\n", req.Label)
	return nil
}
