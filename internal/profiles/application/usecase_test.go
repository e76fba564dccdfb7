package application

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"go-market/internal/profiles/domain"
	"go-market/pkg/errors"
	"go-market/pkg/logger"
)

// MockProfileRepository is a mock implementation of ProfileRepository
type MockProfileRepository struct {
	profiles  map[uuid.UUID]*domain.Profile
	completed map[uuid.UUID]bool
	createFn  func(ctx context.Context, profile *domain.Profile) error
}

func NewMockProfileRepository() *MockProfileRepository {
	return &MockProfileRepository{
		profiles:  make(map[uuid.UUID]*domain.Profile),
		completed: make(map[uuid.UUID]bool),
	}
}

func (m *MockProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	if m.createFn != nil {
		return m.createFn(ctx, profile)
	}
	m.profiles[profile.ID] = profile
	return nil
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	profile, ok := m.profiles[id]
	if !ok {
		return nil, domain.NewProfileNotFound(id)
	}
	return profile, nil
}

func (m *MockProfileRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Profile, error) {
	var out []*domain.Profile
	for _, p := range m.profiles {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockProfileRepository) RecordOrderCompleted(ctx context.Context, orderID, buyerID, sellerID uuid.UUID) (bool, error) {
	if m.completed[orderID] {
		return false, nil
	}
	m.completed[orderID] = true
	if p, ok := m.profiles[sellerID]; ok {
		p.CompletedSales++
	}
	if p, ok := m.profiles[buyerID]; ok {
		p.CompletedPurchases++
	}
	return true, nil
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	events []interface{}
}

func (m *MockEventPublisher) PublishProfileCreated(ctx context.Context, profile *domain.Profile) error {
	m.events = append(m.events, profile)
	return nil
}

// MockAccountCreator returns a fixed account id
type MockAccountCreator struct {
	calls int
}

func (m *MockAccountCreator) CreateAccount(ctx context.Context, email string) (string, error) {
	m.calls++
	return "acct_123", nil
}

func TestCreateProfile_Success(t *testing.T) {
	// Arrange
	repo := NewMockProfileRepository()
	publisher := &MockEventPublisher{}
	accounts := &MockAccountCreator{}
	useCase := NewProfileUseCase(repo, publisher, accounts, logger.NewNop())

	input := CreateProfileInput{
		UserID: "user-1",
		Kind:   domain.KindBusiness,
		Name:   "Green Farm",
		Email:  "Farm@Example.com",
	}

	// Act
	output, err := useCase.CreateProfile(context.Background(), input)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if output.Profile.Email != "farm@example.com" {
		t.Errorf("expected normalised email, got '%s'", output.Profile.Email)
	}

	if output.Profile.PaymentAccountID != "acct_123" {
		t.Errorf("expected payment account to be attached, got '%s'", output.Profile.PaymentAccountID)
	}

	if len(publisher.events) != 1 {
		t.Errorf("expected 1 event published, got %d", len(publisher.events))
	}
}

func TestCreateProfile_ConsumerHasNoAccount(t *testing.T) {
	repo := NewMockProfileRepository()
	accounts := &MockAccountCreator{}
	useCase := NewProfileUseCase(repo, nil, accounts, logger.NewNop())

	output, err := useCase.CreateProfile(context.Background(), CreateProfileInput{
		UserID: "user-1",
		Kind:   domain.KindConsumer,
		Name:   "Jane",
		Email:  "jane@example.com",
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if accounts.calls != 0 {
		t.Errorf("expected no gateway call, got %d", accounts.calls)
	}
	if output.Profile.PaymentAccountID != "" {
		t.Errorf("expected no payment account, got '%s'", output.Profile.PaymentAccountID)
	}
}

func TestCreateProfile_InvalidKind(t *testing.T) {
	useCase := NewProfileUseCase(NewMockProfileRepository(), nil, nil, logger.NewNop())

	_, err := useCase.CreateProfile(context.Background(), CreateProfileInput{
		UserID: "user-1",
		Kind:   "wizard",
		Name:   "Jane",
		Email:  "jane@example.com",
	})

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, errors.CodeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestVerifyProfileOwner(t *testing.T) {
	repo := NewMockProfileRepository()
	useCase := NewProfileUseCase(repo, nil, nil, logger.NewNop())

	output, err := useCase.CreateProfile(context.Background(), CreateProfileInput{
		UserID: "user-1",
		Kind:   domain.KindConsumer,
		Name:   "Jane",
		Email:  "jane@example.com",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := useCase.VerifyProfileOwner(context.Background(), "user-1", output.Profile.ID); err != nil {
		t.Errorf("expected owner to pass, got %v", err)
	}
	if err := useCase.VerifyProfileOwner(context.Background(), "user-2", output.Profile.ID); !errors.Is(err, errors.CodeForbidden) {
		t.Errorf("expected forbidden for another user, got %v", err)
	}
	if err := useCase.VerifyProfileOwner(context.Background(), "user-1", uuid.New()); !errors.Is(err, errors.CodeForbidden) {
		t.Errorf("expected forbidden for unknown profile, got %v", err)
	}
}

func TestRecordOrderCompleted_Once(t *testing.T) {
	repo := NewMockProfileRepository()
	useCase := NewProfileUseCase(repo, nil, nil, logger.NewNop())

	buyer, _ := domain.NewProfile("user-1", domain.KindConsumer, "Jane", "jane@example.com")
	seller, _ := domain.NewProfile("user-2", domain.KindBusiness, "Farm", "farm@example.com")
	repo.profiles[buyer.ID] = buyer
	repo.profiles[seller.ID] = seller

	input := RecordOrderCompletedInput{OrderID: uuid.New(), BuyerID: buyer.ID, SellerID: seller.ID}
	for i := 0; i < 2; i++ {
		if err := useCase.RecordOrderCompleted(context.Background(), input); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}

	if seller.CompletedSales != 1 {
		t.Errorf("expected 1 completed sale, got %d", seller.CompletedSales)
	}
	if buyer.CompletedPurchases != 1 {
		t.Errorf("expected 1 completed purchase, got %d", buyer.CompletedPurchases)
	}
}
