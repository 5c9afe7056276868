package infra

import (
	"context"
	"procomp-service/internal/cache"
	"procomp-service/internal/document"
	"procomp-service/internal/mailer"
	"time"

	"github.com/stretchr/testify/mock"
)

type MailerMock struct {
	mock.Mock
}

func NewMailerMock() *MailerMock {
	return &MailerMock{}
}

func (m *MailerMock) Send(ctx context.Context, msg mailer.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type RendererMock struct {
	mock.Mock
}

func NewRendererMock() *RendererMock {
	return &RendererMock{}
}

func (m *RendererMock) RenderQuote(doc document.QuoteDocument) ([]byte, error) {
	args := m.Called(doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *RendererMock) RenderInvoice(doc document.InvoiceDocument) ([]byte, error) {
	args := m.Called(doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type IdentifierRegistryMock struct {
	mock.Mock
}

func NewIdentifierRegistryMock() *IdentifierRegistryMock {
	return &IdentifierRegistryMock{}
}

func (m *IdentifierRegistryMock) Reserve(ctx context.Context, identifier string, ticketID int) (bool, error) {
	args := m.Called(ctx, identifier, ticketID)
	return args.Bool(0), args.Error(1)
}

func (m *IdentifierRegistryMock) Release(ctx context.Context, identifier string, ticketID int) error {
	args := m.Called(ctx, identifier, ticketID)
	return args.Error(0)
}

type SchedulerMock struct {
	mock.Mock
}

func NewSchedulerMock() *SchedulerMock {
	return &SchedulerMock{}
}

func (m *SchedulerMock) Arm(ctx context.Context, ticketID int, dueAt time.Time) error {
	args := m.Called(ctx, ticketID, dueAt)
	return args.Error(0)
}

func (m *SchedulerMock) Disarm(ctx context.Context, ticketID int) error {
	args := m.Called(ctx, ticketID)
	return args.Error(0)
}

type SessionStoreMock struct {
	mock.Mock
}

func NewSessionStoreMock() *SessionStoreMock {
	return &SessionStoreMock{}
}

func (m *SessionStoreMock) Create(ctx context.Context, sess *cache.Session) (string, error) {
	args := m.Called(ctx, sess)
	return args.String(0), args.Error(1)
}

func (m *SessionStoreMock) Get(ctx context.Context, id string) (*cache.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cache.Session), args.Error(1)
}

func (m *SessionStoreMock) Save(ctx context.Context, sess *cache.Session) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *SessionStoreMock) Destroy(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
