/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package status defines the error kinds returned by the library client
// workflows. Every fatal condition surfaced to a caller carries exactly one
// Kind together with the underlying cause, so callers can decide how to report
// it without parsing messages.
package status

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a workflow error.
type Kind int32

const (
	// Unknown is returned by KindOf for errors that were not produced by this package.
	Unknown Kind = iota
	// InvalidArguments wrong positional arguments or malformed request fields
	InvalidArguments
	// StoreUnavailable the credential store location cannot be read or written
	StoreUnavailable
	// IdentityNotFound no credentials are stored under the requested label
	IdentityNotFound
	// AlreadyRegistered the CA already holds a registration for the label
	AlreadyRegistered
	// RegistrationFailed the CA rejected the registration request
	RegistrationFailed
	// EnrollmentFailed the CA rejected the enrollment or credentials could not be read back
	EnrollmentFailed
	// ConnectFailed the gateway connection could not be established
	ConnectFailed
	// ChannelNotFound the channel is unknown to the network
	ChannelNotFound
	// ContractNotFound the contract is unknown on the channel
	ContractNotFound
	// TransactionFailed the network rejected or failed to commit the transaction
	TransactionFailed
)

// KindName maps the kinds in this package to human-readable strings
var KindName = map[int32]string{
	0:  "Unknown",
	1:  "InvalidArguments",
	2:  "StoreUnavailable",
	3:  "IdentityNotFound",
	4:  "AlreadyRegistered",
	5:  "RegistrationFailed",
	6:  "EnrollmentFailed",
	7:  "ConnectFailed",
	8:  "ChannelNotFound",
	9:  "ContractNotFound",
	10: "TransactionFailed",
}

func (k Kind) String() string {
	if s, ok := KindName[int32(k)]; ok {
		return s
	}
	return Unknown.String()
}

// Error is a classified error. Message describes the failed operation and
// Cause, when present, is the error reported by the collaborator.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// New returns an error of the given kind without an underlying cause.
func New(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies cause with the given kind. It returns nil if cause is nil.
func Wrap(kind Kind, cause error, format string, args ...interface{}) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail())
}

// Detail is the message and cause, without the kind.
func (e *Error) Detail() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// FromError returns the first *Error found in the chain of err, following
// both pkg/errors causes and standard library wrapping.
func FromError(err error) (*Error, bool) {
	for err != nil {
		if s, ok := err.(*Error); ok {
			return s, true
		}
		switch e := err.(type) {
		case interface{ Cause() error }:
			err = e.Cause()
		case interface{ Unwrap() error }:
			err = e.Unwrap()
		default:
			return nil, false
		}
	}
	return nil, false
}

// KindOf returns the kind of err, or Unknown if err is nil or unclassified.
func KindOf(err error) Kind {
	if s, ok := FromError(err); ok {
		return s.Kind
	}
	return Unknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Prefix adds workflow context in front of err while keeping its kind.
func Prefix(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.WithMessagef(err, format, args...)
}
