package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/wekeepgrowing/storefront/internal/domain/entity"
	"github.com/wekeepgrowing/storefront/internal/domain/provider"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) GetAccessToken(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) CreatePayment(ctx context.Context, req *provider.CreatePaymentRequest) (*provider.CreatePaymentResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.CreatePaymentResponse), args.Error(1)
}

func (m *MockGateway) CapturePayment(ctx context.Context, reference string, amountValue int64) (*provider.ModificationResponse, error) {
	args := m.Called(ctx, reference, amountValue)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.ModificationResponse), args.Error(1)
}

func (m *MockGateway) RefundPayment(ctx context.Context, reference string, amountValue int64) (*provider.ModificationResponse, error) {
	args := m.Called(ctx, reference, amountValue)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.ModificationResponse), args.Error(1)
}

func (m *MockGateway) GetPayment(ctx context.Context, reference string) (*provider.PaymentDetails, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.PaymentDetails), args.Error(1)
}

// fakePayments mirrors the status semantics of the gorm repository.
type fakePayments struct {
	mu       sync.Mutex
	payments map[string]*entity.Payment
}

func newFakePayments() *fakePayments {
	return &fakePayments{payments: map[string]*entity.Payment{}}
}

func (f *fakePayments) Upsert(_ context.Context, p *entity.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.payments[p.Reference] = &cp
	return nil
}

func (f *fakePayments) UpdateStatus(_ context.Context, ref, psp string, status entity.PaymentStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[ref]
	if !ok {
		f.payments[ref] = &entity.Payment{Reference: ref, PSPReference: psp, Status: status}
		return true, nil
	}
	if p.Status == status {
		return false, nil
	}
	p.Status = status
	return true, nil
}

func (f *fakePayments) GetByReference(_ context.Context, ref string) (*entity.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.payments[ref], nil
}

func (f *fakePayments) List(_ context.Context, limit, offset int) ([]*entity.Payment, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entity.Payment, 0, len(f.payments))
	for _, p := range f.payments {
		out = append(out, p)
	}
	total := int64(len(out))
	if offset >= len(out) {
		return []*entity.Payment{}, total, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

type fakeEvents struct {
	saved     map[string]int
	processed []string
	ignored   []string
	failed    []string
}

func newFakeEvents() *fakeEvents { return &fakeEvents{saved: map[string]int{}} }

func (f *fakeEvents) Save(_ context.Context, key, _, _ string, _ []byte) (bool, error) {
	f.saved[key]++
	return f.saved[key] == 1, nil
}

func (f *fakeEvents) MarkProcessed(_ context.Context, key string) error {
	f.processed = append(f.processed, key)
	return nil
}

func (f *fakeEvents) MarkIgnored(_ context.Context, key, _ string) error {
	f.ignored = append(f.ignored, key)
	return nil
}

func (f *fakeEvents) MarkFailed(_ context.Context, key string, _ error) error {
	f.failed = append(f.failed, key)
	return nil
}

type published struct {
	channel string
	message interface{}
}

type fakePublisher struct{ messages []published }

func (f *fakePublisher) Publish(_ context.Context, channel string, message interface{}) error {
	f.messages = append(f.messages, published{channel: channel, message: message})
	return nil
}

type fakeOrders struct {
	orders []*entity.Order
}

func (f *fakeOrders) ExistsByReference(_ context.Context, userID, ref string) (bool, error) {
	o, _ := f.GetByReference(context.Background(), userID, ref)
	return o != nil, nil
}

func (f *fakeOrders) Create(_ context.Context, order *entity.Order) error {
	f.orders = append(f.orders, order)
	return nil
}

func (f *fakeOrders) ListByUser(_ context.Context, userID string) ([]*entity.Order, error) {
	var out []*entity.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrders) GetByReference(_ context.Context, userID, ref string) (*entity.Order, error) {
	for _, o := range f.orders {
		if o.UserID == userID && o.OrderReference == ref {
			return o, nil
		}
	}
	return nil, nil
}

type fakeUsers struct {
	users map[string]*entity.User
}

func newFakeUsers(users ...*entity.User) *fakeUsers {
	f := &fakeUsers{users: map[string]*entity.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Ensure(_ context.Context, u *entity.User) error {
	if _, ok := f.users[u.ID]; !ok {
		f.users[u.ID] = u
	}
	return nil
}

func (f *fakeUsers) Get(_ context.Context, id string) (*entity.User, error) { return f.users[id], nil }

func (f *fakeUsers) List(context.Context) ([]*entity.User, error) {
	out := make([]*entity.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUsers) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := f.users[id]; !ok {
		return false, nil
	}
	delete(f.users, id)
	return true, nil
}

type fakeAdmins struct {
	admins map[string]*entity.AdminUser
}

func (f *fakeAdmins) GetByUsername(_ context.Context, username string) (*entity.AdminUser, error) {
	return f.admins[username], nil
}

func (f *fakeAdmins) Upsert(_ context.Context, username, hash string) error {
	f.admins[username] = &entity.AdminUser{Username: username, PasswordHash: hash}
	return nil
}

type fakeIssuer struct {
	issued []entity.Identity
}

func (f *fakeIssuer) Issue(identity entity.Identity, ttl time.Duration) (string, time.Time, error) {
	f.issued = append(f.issued, identity)
	return "signed-token", time.Unix(0, 0).Add(ttl), nil
}
