/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package enroll

import (
	"encoding/hex"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperledger/fabric-library-app/pkg/common/status"
	"github.com/hyperledger/fabric-library-app/pkg/profile"
	"github.com/hyperledger/fabric-library-app/pkg/wallet"
	"github.com/hyperledger/fabric-sdk-go/pkg/client/msp"
	"github.com/hyperledger/fabric-sdk-go/pkg/common/logging"
	mspctx "github.com/hyperledger/fabric-sdk-go/pkg/common/providers/msp"
	"github.com/hyperledger/fabric-sdk-go/pkg/core/cryptosuite"
	"github.com/hyperledger/fabric-sdk-go/pkg/fabsdk"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

var logger = logging.NewLogger("library/enroll")

const defaultIdentityType = "client"

// caService is the subset of the SDK CA client in use.
type caService interface {
	Register(request *msp.RegistrationRequest) (string, error)
	Enroll(enrollmentID string, opts ...msp.EnrollmentOption) error
	GetSigningIdentity(id string) (mspctx.SigningIdentity, error)
}

// CAOptions selects the certificate authority and where the SDK keeps the
// enrollment material.
type CAOptions struct {
	// CAName as declared in the connection profile. Empty selects the first
	// CA of the client organization.
	CAName string
	// StateDir holds the SDK state store and keystore.
	StateDir string
	// Registrar registers users. It is added to the CA entry of profiles
	// that declare no registrar.
	Registrar profile.Registrar
}

// CAClient registers and enrolls users with a Fabric CA.
type CAClient struct {
	sdk      *fabsdk.FabricSDK
	ca       caService
	caName   string
	mspID    string
	keyStore string
}

// NewCAClient creates a client for the CA of the profile's organization.
func NewCAClient(p *profile.Profile, opts CAOptions) (*CAClient, error) {
	caName, err := p.CertificateAuthority(opts.CAName)
	if err != nil {
		return nil, status.Wrap(status.InvalidArguments, err, "certificate authority")
	}
	if p, err = caProfile(p, caName, opts.Registrar); err != nil {
		return nil, err
	}

	stateDir := opts.StateDir
	if stateDir == "" {
		stateDir = filepath.Join(os.TempDir(), "library-msp")
	}
	defaults, err := stateDefaults(stateDir)
	if err != nil {
		return nil, err
	}

	sdk, err := fabsdk.New(p.WithDefaults(defaults))
	if err != nil {
		return nil, status.Wrap(status.InvalidArguments, err, "failed to create SDK")
	}

	keyStore, err := keyStorePath(sdk)
	if err != nil {
		sdk.Close()
		return nil, err
	}

	client, err := msp.New(sdk.Context(), msp.WithOrg(p.Organization()), msp.WithCAInstance(caName))
	if err != nil {
		sdk.Close()
		return nil, status.Wrap(status.InvalidArguments, err, "failed to create CA client for %s", caName)
	}

	logger.Debugf("CA client created for %s, keystore %s", caName, keyStore)

	return &CAClient{
		sdk:      sdk,
		ca:       client,
		caName:   caName,
		mspID:    p.MSPID(),
		keyStore: keyStore,
	}, nil
}

func caProfile(p *profile.Profile, caName string, registrar profile.Registrar) (*profile.Profile, error) {
	p, err := p.WithRegistrar(caName, registrar)
	if err != nil {
		return nil, status.Wrap(status.InvalidArguments, err, "certificate authority")
	}
	if p.Registrar(caName).EnrollID == "" {
		logger.Warnf("no registrar configured for %s, registration will be rejected", caName)
	}
	return p, nil
}

func stateDefaults(stateDir string) ([]byte, error) {
	defaults := map[string]interface{}{
		"client": map[string]interface{}{
			"credentialStore": map[string]interface{}{
				"path": filepath.Join(stateDir, "state-store"),
				"cryptoStore": map[string]interface{}{
					"path": filepath.Join(stateDir, "msp"),
				},
			},
		},
	}
	raw, err := yaml.Marshal(defaults)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal SDK state configuration")
	}
	return raw, nil
}

func keyStorePath(sdk *fabsdk.FabricSDK) (string, error) {
	backend, err := sdk.Config()
	if err != nil {
		return "", status.Wrap(status.InvalidArguments, err, "failed to read SDK configuration")
	}
	return cryptosuite.ConfigFromBackend(backend).KeyStorePath(), nil
}

// Register creates the registration record of the user.
func (c *CAClient) Register(request *RegistrationRequest) (string, error) {
	if request == nil || request.Label == "" {
		return "", status.New(status.InvalidArguments, "registration requires a label")
	}

	identityType := request.Type
	if identityType == "" {
		identityType = defaultIdentityType
	}

	attrs := make([]msp.Attribute, 0, len(request.Attributes))
	for _, a := range request.Attributes {
		attrs = append(attrs, msp.Attribute{Name: a.Name, Value: a.Value, ECert: a.ECert})
	}

	secret, err := c.ca.Register(&msp.RegistrationRequest{
		Name:           request.Label,
		Type:           identityType,
		MaxEnrollments: request.MaxEnrollments,
		Affiliation:    request.Affiliation,
		Attributes:     attrs,
		CAName:         c.caName,
		Secret:         request.Secret,
	})
	if err != nil {
		return "", registrationError(request.Label, err)
	}

	logger.Debugf("registered %s with %s", request.Label, c.caName)
	return secret, nil
}

func registrationError(label string, err error) error {
	if strings.Contains(err.Error(), "is already registered") {
		return status.Wrap(status.AlreadyRegistered, err, "%s is already registered", label)
	}
	return status.Wrap(status.RegistrationFailed, err, "failed to register %s", label)
}

// Enroll exchanges the secret for an enrollment certificate and returns the
// certificate together with its private key.
func (c *CAClient) Enroll(label, secret string) (*wallet.Identity, error) {
	if label == "" {
		return nil, status.New(status.InvalidArguments, "enrollment requires a label")
	}

	if err := c.ca.Enroll(label, msp.WithSecret(secret)); err != nil {
		return nil, status.Wrap(status.EnrollmentFailed, err, "failed to enroll %s", label)
	}

	signingIdentity, err := c.ca.GetSigningIdentity(label)
	if err != nil {
		return nil, status.Wrap(status.EnrollmentFailed, err, "failed to load signing identity of %s", label)
	}

	key, err := readPrivateKey(c.keyStore, signingIdentity.PrivateKey().SKI())
	if err != nil {
		return nil, status.Wrap(status.EnrollmentFailed, err, "failed to load private key of %s", label)
	}

	id := wallet.NewX509Identity(c.mspID, signingIdentity.EnrollmentCertificate(), key)
	id.Label = label

	logger.Debugf("enrolled %s", label)
	return id, nil
}

// readPrivateKey reads the PEM encoded key the software keystore saved for ski.
func readPrivateKey(keyStore string, ski []byte) ([]byte, error) {
	if len(ski) == 0 {
		return nil, errors.New("signing identity has no key identifier")
	}
	path := filepath.Join(keyStore, hex.EncodeToString(ski)+"_sk")
	key, err := ioutil.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrap(err, "private key not found in keystore")
	}
	return key, nil
}

// Close releases the SDK.
func (c *CAClient) Close() {
	if c.sdk != nil {
		c.sdk.Close()
	}
}
