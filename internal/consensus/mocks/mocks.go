// Package mocks hosts hand-written gomock-style doubles for the
// consensus package's external collaborator interfaces (Mempool, Ledger,
// Clock), in the shape mockgen would generate, for use in
// internal/consensus/engine_test.go.
package mocks

import (
	"reflect"

	"github.com/golang/mock/gomock"

	"github.com/jaimedvw/stellar-simulator/internal/consensus"
)

// MockMempool is a mock of the consensus.Mempool interface.
type MockMempool struct {
	ctrl     *gomock.Controller
	recorder *MockMempoolMockRecorder
}

// MockMempoolMockRecorder is the mock recorder for MockMempool.
type MockMempoolMockRecorder struct {
	mock *MockMempool
}

// NewMockMempool creates a new mock instance.
func NewMockMempool(ctrl *gomock.Controller) *MockMempool {
	m := &MockMempool{ctrl: ctrl}
	m.recorder = &MockMempoolMockRecorder{m}
	return m
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockMempool) EXPECT() *MockMempoolMockRecorder {
	return m.recorder
}

// GetTransaction mocks base method.
func (m *MockMempool) GetTransaction() (consensus.Transaction, bool) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetTransaction")
	ret0, _ := ret[0].(consensus.Transaction)
	ret1, _ := ret[1].(bool)
	return ret0, ret1
}

// GetTransaction indicates an expected call of GetTransaction.
func (mr *MockMempoolMockRecorder) GetTransaction() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetTransaction", reflect.TypeOf((*MockMempool)(nil).GetTransaction))
}

// GetAllTransactions mocks base method.
func (m *MockMempool) GetAllTransactions() []consensus.Transaction {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetAllTransactions")
	ret0, _ := ret[0].([]consensus.Transaction)
	return ret0
}

// GetAllTransactions indicates an expected call of GetAllTransactions.
func (mr *MockMempoolMockRecorder) GetAllTransactions() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetAllTransactions", reflect.TypeOf((*MockMempool)(nil).GetAllTransactions))
}

// Remove mocks base method.
func (m *MockMempool) Remove(tx consensus.Transaction) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Remove", tx)
}

// Remove indicates an expected call of Remove.
func (mr *MockMempoolMockRecorder) Remove(tx interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Remove", reflect.TypeOf((*MockMempool)(nil).Remove), tx)
}

// MockLedger is a mock of the consensus.Ledger interface.
type MockLedger struct {
	ctrl     *gomock.Controller
	recorder *MockLedgerMockRecorder
}

// MockLedgerMockRecorder is the mock recorder for MockLedger.
type MockLedgerMockRecorder struct {
	mock *MockLedger
}

// NewMockLedger creates a new mock instance.
func NewMockLedger(ctrl *gomock.Controller) *MockLedger {
	m := &MockLedger{ctrl: ctrl}
	m.recorder = &MockLedgerMockRecorder{m}
	return m
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockLedger) EXPECT() *MockLedgerMockRecorder {
	return m.recorder
}

// AddSlot mocks base method.
func (m *MockLedger) AddSlot(slot uint64, rec consensus.ExternalizeRecord) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "AddSlot", slot, rec)
}

// AddSlot indicates an expected call of AddSlot.
func (mr *MockLedgerMockRecorder) AddSlot(slot, rec interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AddSlot", reflect.TypeOf((*MockLedger)(nil).AddSlot), slot, rec)
}

// GetSlot mocks base method.
func (m *MockLedger) GetSlot(slot uint64) (consensus.ExternalizeRecord, bool) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetSlot", slot)
	ret0, _ := ret[0].(consensus.ExternalizeRecord)
	ret1, _ := ret[1].(bool)
	return ret0, ret1
}

// GetSlot indicates an expected call of GetSlot.
func (mr *MockLedgerMockRecorder) GetSlot(slot interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetSlot", reflect.TypeOf((*MockLedger)(nil).GetSlot), slot)
}

// HasSlot mocks base method.
func (m *MockLedger) HasSlot(slot uint64) bool {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "HasSlot", slot)
	ret0, _ := ret[0].(bool)
	return ret0
}

// HasSlot indicates an expected call of HasSlot.
func (mr *MockLedgerMockRecorder) HasSlot(slot interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "HasSlot", reflect.TypeOf((*MockLedger)(nil).HasSlot), slot)
}

// MockClock is a mock of the consensus.Clock interface.
type MockClock struct {
	ctrl     *gomock.Controller
	recorder *MockClockMockRecorder
}

// MockClockMockRecorder is the mock recorder for MockClock.
type MockClockMockRecorder struct {
	mock *MockClock
}

// NewMockClock creates a new mock instance.
func NewMockClock(ctrl *gomock.Controller) *MockClock {
	m := &MockClock{ctrl: ctrl}
	m.recorder = &MockClockMockRecorder{m}
	return m
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockClock) EXPECT() *MockClockMockRecorder {
	return m.recorder
}

// Now mocks base method.
func (m *MockClock) Now() float64 {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Now")
	ret0, _ := ret[0].(float64)
	return ret0
}

// Now indicates an expected call of Now.
func (mr *MockClockMockRecorder) Now() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Now", reflect.TypeOf((*MockClock)(nil).Now))
}

var (
	_ consensus.Mempool = (*MockMempool)(nil)
	_ consensus.Ledger  = (*MockLedger)(nil)
	_ consensus.Clock   = (*MockClock)(nil)
)
