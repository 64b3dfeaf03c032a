package contract

import (
	"context"

	"github.com/huangsam/swagent/schema"
	"github.com/stretchr/testify/mock"
)

// MockFetcher is a mock implementation of Fetcher for testing.
type MockFetcher struct {
	mock.Mock
}

var _ Fetcher = &MockFetcher{} // Compile-time check

// Fetch implements the Fetcher interface.
func (m *MockFetcher) Fetch(ctx context.Context, req *schema.Request) (*schema.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*schema.Response)
	return resp, args.Error(1)
}

// MockNotifier is a mock implementation of Notifier for testing.
type MockNotifier struct {
	mock.Mock
}

var _ Notifier = &MockNotifier{} // Compile-time check

// Show implements the Notifier interface.
func (m *MockNotifier) Show(ctx context.Context, n schema.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// Close implements the Notifier interface.
func (m *MockNotifier) Close(ctx context.Context, tag string) error {
	args := m.Called(ctx, tag)
	return args.Error(0)
}

// MockClients is a mock implementation of Clients for testing.
type MockClients struct {
	mock.Mock
}

var _ Clients = &MockClients{} // Compile-time check

// Claim implements the Clients interface.
func (m *MockClients) Claim(ctx context.Context, version string) error {
	args := m.Called(ctx, version)
	return args.Error(0)
}

// OpenWindow implements the Clients interface.
func (m *MockClients) OpenWindow(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

// MockPushManager is a mock implementation of PushManager for testing.
type MockPushManager struct {
	mock.Mock
}

var _ PushManager = &MockPushManager{} // Compile-time check

// Subscribe implements the PushManager interface.
func (m *MockPushManager) Subscribe(ctx context.Context, opts schema.SubscribeOptions) (*schema.PushSubscription, error) {
	args := m.Called(ctx, opts)
	sub, _ := args.Get(0).(*schema.PushSubscription)
	return sub, args.Error(1)
}

// MockPaymentSyncer is a mock implementation of PaymentSyncer for testing.
type MockPaymentSyncer struct {
	mock.Mock
}

var _ PaymentSyncer = &MockPaymentSyncer{} // Compile-time check

// SyncPendingPayments implements the PaymentSyncer interface.
func (m *MockPaymentSyncer) SyncPendingPayments(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
