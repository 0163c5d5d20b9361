package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"contacts-api/internal/domain"
	"contacts-api/internal/repository"
)

type mockContactRepo struct {
	nextID int64
	byID   map[int64]domain.Contact
}

func newMockContactRepo() *mockContactRepo {
	return &mockContactRepo{byID: make(map[int64]domain.Contact)}
}

func (m *mockContactRepo) Create(_ context.Context, contact domain.Contact) (domain.Contact, error) {
	m.nextID++
	contact.ID = m.nextID
	contact.CreatedAt = time.Now().UTC()
	m.byID[contact.ID] = contact
	return contact, nil
}

func (m *mockContactRepo) GetByID(_ context.Context, id, userID int64) (domain.Contact, error) {
	contact, ok := m.byID[id]
	if !ok || contact.UserID != userID {
		return domain.Contact{}, pgx.ErrNoRows
	}
	return contact, nil
}

func (m *mockContactRepo) GetByEmail(_ context.Context, email string, userID int64) (domain.Contact, error) {
	for _, contact := range m.byID {
		if contact.UserID == userID && contact.Email == email {
			return contact, nil
		}
	}
	return domain.Contact{}, pgx.ErrNoRows
}

func (m *mockContactRepo) List(_ context.Context, userID int64, filter repository.ContactFilter, skip, limit int) ([]domain.Contact, error) {
	matches := func(value, pattern string) bool {
		if pattern == "" {
			return true
		}
		return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
	}
	var result []domain.Contact
	for id := int64(1); id <= m.nextID; id++ {
		contact, ok := m.byID[id]
		if !ok || contact.UserID != userID {
			continue
		}
		if matches(contact.FirstName, filter.FirstName) &&
			matches(contact.LastName, filter.LastName) &&
			matches(contact.Email, filter.Email) {
			result = append(result, contact)
		}
	}
	if skip >= len(result) {
		return nil, nil
	}
	result = result[skip:]
	if limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockContactRepo) ListWithBirthdays(_ context.Context, userID int64) ([]domain.Contact, error) {
	var result []domain.Contact
	for id := int64(1); id <= m.nextID; id++ {
		contact, ok := m.byID[id]
		if ok && contact.UserID == userID && contact.Birthday != nil {
			result = append(result, contact)
		}
	}
	return result, nil
}

func (m *mockContactRepo) Update(_ context.Context, contact domain.Contact) (domain.Contact, error) {
	existing, ok := m.byID[contact.ID]
	if !ok || existing.UserID != contact.UserID {
		return domain.Contact{}, pgx.ErrNoRows
	}
	contact.CreatedAt = existing.CreatedAt
	m.byID[contact.ID] = contact
	return contact, nil
}

func (m *mockContactRepo) Delete(_ context.Context, id, userID int64) (bool, error) {
	contact, ok := m.byID[id]
	if !ok || contact.UserID != userID {
		return false, nil
	}
	delete(m.byID, id)
	return true, nil
}

func validInput(email string) ContactInput {
	return ContactInput{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       email,
		PhoneNumber: "380501234567",
	}
}

func TestContactService_CreateAndDuplicate(t *testing.T) {
	repo := newMockContactRepo()
	svc := NewContactService(zap.NewNop(), repo)

	contact, err := svc.Create(context.Background(), 1, validInput("ada@example.com"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if contact.ID == 0 || contact.UserID != 1 {
		t.Fatalf("unexpected contact: %+v", contact)
	}

	if _, err := svc.Create(context.Background(), 1, validInput("ada@example.com")); !errors.Is(err, ErrContactExists) {
		t.Fatalf("expected ErrContactExists, got %v", err)
	}

	// El mismo email en la agenda de otro usuario no es conflicto.
	if _, err := svc.Create(context.Background(), 2, validInput("ada@example.com")); err != nil {
		t.Fatalf("create for another user: %v", err)
	}
}

func TestContactService_Validation(t *testing.T) {
	svc := NewContactService(zap.NewNop(), newMockContactRepo())

	cases := []struct {
		name  string
		input ContactInput
	}{
		{"missing first name", ContactInput{LastName: "L", Email: "a@b.c", PhoneNumber: "380501234567"}},
		{"bad email", ContactInput{FirstName: "A", LastName: "L", Email: "not-an-email", PhoneNumber: "380501234567"}},
		{"phone too short", ContactInput{FirstName: "A", LastName: "L", Email: "a@b.c", PhoneNumber: "12345"}},
		{"phone with letters", ContactInput{FirstName: "A", LastName: "L", Email: "a@b.c", PhoneNumber: "38050123456a"}},
		{"additional data too long", ContactInput{FirstName: "A", LastName: "L", Email: "a@b.c", PhoneNumber: "380501234567", AdditionalData: strings.Repeat("x", 300)}},
	}
	for _, tc := range cases {
		if _, err := svc.Create(context.Background(), 1, tc.input); !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", tc.name, err)
		}
	}
}

func TestContactService_OwnerScoping(t *testing.T) {
	repo := newMockContactRepo()
	svc := NewContactService(zap.NewNop(), repo)

	contact, err := svc.Create(context.Background(), 1, validInput("ada@example.com"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Otro usuario no ve ni toca el contacto: misma señal que inexistente.
	if _, err := svc.Get(context.Background(), contact.ID, 2); !errors.Is(err, ErrContactNotFound) {
		t.Fatalf("expected ErrContactNotFound for foreign user, got %v", err)
	}
	if err := svc.Delete(context.Background(), contact.ID, 2); !errors.Is(err, ErrContactNotFound) {
		t.Fatalf("expected ErrContactNotFound on foreign delete, got %v", err)
	}

	list, err := svc.List(context.Background(), 2, ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("foreign user must not see contacts, got %d", len(list))
	}
}

func TestContactService_ListFilters(t *testing.T) {
	repo := newMockContactRepo()
	svc := NewContactService(zap.NewNop(), repo)

	inputs := []ContactInput{
		{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", PhoneNumber: "380501234567"},
		{FirstName: "Alan", LastName: "Turing", Email: "alan@example.com", PhoneNumber: "380501234568"},
		{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", PhoneNumber: "380501234569"},
	}
	for _, in := range inputs {
		if _, err := svc.Create(context.Background(), 1, in); err != nil {
			t.Fatalf("create %s: %v", in.FirstName, err)
		}
	}

	list, err := svc.List(context.Background(), 1, ListOptions{Filter: repository.ContactFilter{FirstName: "a"}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("partial match must be case-insensitive, got %d", len(list))
	}

	list, err = svc.List(context.Background(), 1, ListOptions{Filter: repository.ContactFilter{LastName: "lov"}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].FirstName != "Ada" {
		t.Fatalf("unexpected filter result: %+v", list)
	}

	list, err = svc.List(context.Background(), 1, ListOptions{Skip: 1, Limit: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].FirstName != "Alan" {
		t.Fatalf("unexpected pagination result: %+v", list)
	}
}

func TestContactService_UpdatePatch(t *testing.T) {
	repo := newMockContactRepo()
	svc := NewContactService(zap.NewNop(), repo)

	contact, err := svc.Create(context.Background(), 1, validInput("ada@example.com"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newPhone := "380509999999"
	updated, err := svc.Update(context.Background(), contact.ID, 1, ContactPatch{PhoneNumber: &newPhone})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.PhoneNumber != newPhone {
		t.Fatalf("phone not updated: %q", updated.PhoneNumber)
	}
	// Los campos no incluidos en el patch quedan intactos.
	if updated.FirstName != "Ada" || updated.Email != "ada@example.com" {
		t.Fatalf("untouched fields changed: %+v", updated)
	}

	badPhone := "123"
	if _, err := svc.Update(context.Background(), contact.ID, 1, ContactPatch{PhoneNumber: &badPhone}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	if _, err := svc.Update(context.Background(), 999, 1, ContactPatch{PhoneNumber: &newPhone}); !errors.Is(err, ErrContactNotFound) {
		t.Fatalf("expected ErrContactNotFound, got %v", err)
	}
}

func TestContactService_UpcomingBirthdays(t *testing.T) {
	repo := newMockContactRepo()
	svc := NewContactService(zap.NewNop(), repo)

	today := time.Now().UTC()
	birthdayIn := func(days int) *domain.Date {
		d := today.AddDate(-30, 0, days)
		date := domain.NewDate(d.Year(), d.Month(), d.Day())
		return &date
	}

	create := func(first, email string, birthday *domain.Date) {
		t.Helper()
		input := validInput(email)
		input.FirstName = first
		input.Birthday = birthday
		if _, err := svc.Create(context.Background(), 1, input); err != nil {
			t.Fatalf("create %s: %v", first, err)
		}
	}

	create("Soon", "soon@example.com", birthdayIn(2))
	create("Today", "today@example.com", birthdayIn(0))
	create("Far", "far@example.com", birthdayIn(30))
	create("Past", "past@example.com", birthdayIn(-10))
	create("NoBirthday", "none@example.com", nil)

	list, err := svc.List(context.Background(), 1, ListOptions{Upcoming: true})
	if err != nil {
		t.Fatalf("upcoming: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 upcoming birthdays, got %d: %+v", len(list), list)
	}
	// Ordenados del más cercano al más lejano.
	if list[0].FirstName != "Today" || list[1].FirstName != "Soon" {
		t.Fatalf("unexpected order: %s, %s", list[0].FirstName, list[1].FirstName)
	}

	// Una ventana más amplia alcanza el cumpleaños a 30 días.
	list, err = svc.List(context.Background(), 1, ListOptions{Upcoming: true, Days: 40})
	if err != nil {
		t.Fatalf("upcoming wide: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 upcoming birthdays in 40 days, got %d", len(list))
	}
}
