/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package submit

import (
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/hyperledger/fabric-library-app/pkg/common/status"
	"github.com/hyperledger/fabric-library-app/pkg/ledger"
	"github.com/hyperledger/fabric-library-app/pkg/ledger/mockledger"
	"github.com/hyperledger/fabric-library-app/pkg/profile"
	"github.com/hyperledger/fabric-library-app/pkg/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var borrowBook = Request{
	TransactionRequest: TransactionRequest{
		Contract:    "library",
		Transaction: "BorrowBook",
		Args:        []string{"book-42", "alice"},
	},
	Label:   "appUser",
	Channel: "mychannel",
	Arity:   2,
}

type observation struct {
	transaction string
	failed      bool
}

type mockRecorder struct {
	observed []observation
}

func (r *mockRecorder) ObserveTransaction(transaction string, elapsed time.Duration, err error) {
	r.observed = append(r.observed, observation{transaction: transaction, failed: err != nil})
}

func setup(t *testing.T) (*wallet.Wallet, *profile.Profile, *wallet.Identity) {
	p, err := profile.TestNetwork{Root: "/opt/test-network", Org: 1}.Build()
	require.NoError(t, err)

	store := wallet.NewInMemoryWallet()
	id := wallet.NewX509Identity("Org1MSP", []byte("cert"), []byte("key"))
	require.NoError(t, store.Put("appUser", id))

	stored, err := store.Get("appUser")
	require.NoError(t, err)
	return store, p, stored
}

func TestSubmitBorrowBook(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	store, p, id := setup(t)
	opts := ledger.Options{Discovery: ledger.Discovery{Enabled: true, AsLocalhost: true}}

	connector := mockledger.NewMockConnector(mockCtrl)
	session := mockledger.NewMockSession(mockCtrl)
	contract := mockledger.NewMockContract(mockCtrl)

	gomock.InOrder(
		connector.EXPECT().Open(p, id, opts).Return(session, nil),
		session.EXPECT().GetContract("mychannel", "library").Return(contract, nil),
		contract.EXPECT().SubmitTransaction("BorrowBook", "book-42", "alice").Return([]byte{}, nil),
		session.EXPECT().Close(),
	)

	recorder := &mockRecorder{}
	result, err := New(store, connector, p, opts).WithRecorder(recorder).Submit(borrowBook)
	require.NoError(t, err)
	assert.Equal(t, Committed, result.Status)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, []observation{{transaction: "BorrowBook"}}, recorder.observed)
}

func TestEvaluate(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	store, p, _ := setup(t)

	connector := mockledger.NewMockConnector(mockCtrl)
	session := mockledger.NewMockSession(mockCtrl)
	contract := mockledger.NewMockContract(mockCtrl)

	gomock.InOrder(
		connector.EXPECT().Open(p, gomock.Any(), gomock.Any()).Return(session, nil),
		session.EXPECT().GetContract("mychannel", "library").Return(contract, nil),
		contract.EXPECT().EvaluateTransaction("ReadBook", "book-42").Return([]byte(`{"id":"book-42"}`), nil),
		session.EXPECT().Close(),
	)

	req := Request{
		TransactionRequest: TransactionRequest{Contract: "library", Transaction: "ReadBook", Args: []string{"book-42"}},
		Label:              "appUser",
		Channel:            "mychannel",
		Arity:              1,
	}
	result, err := New(store, connector, p, ledger.Options{}).Evaluate(req)
	require.NoError(t, err)
	assert.Equal(t, Evaluated, result.Status)
	assert.JSONEq(t, `{"id":"book-42"}`, string(result.Payload))
}

func TestSubmitArity(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	// an empty wallet: a store lookup would fail with IdentityNotFound
	connector := mockledger.NewMockConnector(mockCtrl)
	w := New(wallet.NewInMemoryWallet(), connector, nil, ledger.Options{})

	for _, args := range [][]string{nil, {"book-42"}, {"book-42", "alice", "bob"}} {
		req := borrowBook
		req.Args = args
		_, err := w.Submit(req)
		require.Error(t, err)
		assert.Equal(t, status.InvalidArguments, status.KindOf(err))
		assert.Contains(t, err.Error(), "BorrowBook FAILED")
	}
}

func TestSubmitIdentityNotFound(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	_, p, _ := setup(t)
	connector := mockledger.NewMockConnector(mockCtrl)

	_, err := New(wallet.NewInMemoryWallet(), connector, p, ledger.Options{}).Submit(borrowBook)
	require.Error(t, err)
	assert.Equal(t, status.IdentityNotFound, status.KindOf(err))
	assert.Contains(t, err.Error(), "BorrowBook FAILED")
}

func TestSubmitFailures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(connector *mockledger.MockConnector, session *mockledger.MockSession, contract *mockledger.MockContract)
		kind  status.Kind
	}{
		{
			name: "connect failed",
			setup: func(connector *mockledger.MockConnector, session *mockledger.MockSession, contract *mockledger.MockContract) {
				connector.EXPECT().Open(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, status.New(status.ConnectFailed, "connection refused"))
			},
			kind: status.ConnectFailed,
		},
		{
			name: "channel not found",
			setup: func(connector *mockledger.MockConnector, session *mockledger.MockSession, contract *mockledger.MockContract) {
				gomock.InOrder(
					connector.EXPECT().Open(gomock.Any(), gomock.Any(), gomock.Any()).Return(session, nil),
					session.EXPECT().GetContract("mychannel", "library").Return(nil, status.New(status.ChannelNotFound, "no channel mychannel")),
					session.EXPECT().Close(),
				)
			},
			kind: status.ChannelNotFound,
		},
		{
			name: "transaction rejected",
			setup: func(connector *mockledger.MockConnector, session *mockledger.MockSession, contract *mockledger.MockContract) {
				gomock.InOrder(
					connector.EXPECT().Open(gomock.Any(), gomock.Any(), gomock.Any()).Return(session, nil),
					session.EXPECT().GetContract("mychannel", "library").Return(contract, nil),
					contract.EXPECT().SubmitTransaction("BorrowBook", "book-42", "alice").
						Return(nil, status.New(status.TransactionFailed, "book book-42 is already borrowed")),
					session.EXPECT().Close(),
				)
			},
			kind: status.TransactionFailed,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			mockCtrl := gomock.NewController(t)
			defer mockCtrl.Finish()

			store, p, _ := setup(t)
			connector := mockledger.NewMockConnector(mockCtrl)
			session := mockledger.NewMockSession(mockCtrl)
			contract := mockledger.NewMockContract(mockCtrl)
			test.setup(connector, session, contract)

			recorder := &mockRecorder{}
			result, err := New(store, connector, p, ledger.Options{}).WithRecorder(recorder).Submit(borrowBook)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.Equal(t, test.kind, status.KindOf(err))
			assert.Contains(t, err.Error(), "BorrowBook FAILED")
			assert.Equal(t, []observation{{transaction: "BorrowBook", failed: true}}, recorder.observed)
		})
	}
}

func TestSubmitRunIDs(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	store, p, _ := setup(t)
	connector := mockledger.NewMockConnector(mockCtrl)
	session := mockledger.NewMockSession(mockCtrl)
	contract := mockledger.NewMockContract(mockCtrl)

	connector.EXPECT().Open(gomock.Any(), gomock.Any(), gomock.Any()).Return(session, nil).Times(2)
	session.EXPECT().GetContract(gomock.Any(), gomock.Any()).Return(contract, nil).Times(2)
	contract.EXPECT().SubmitTransaction(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).Times(2)
	session.EXPECT().Close().Times(2)

	w := New(store, connector, p, ledger.Options{})
	first, err := w.Submit(borrowBook)
	require.NoError(t, err)
	second, err := w.Submit(borrowBook)
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, second.RunID)
}
