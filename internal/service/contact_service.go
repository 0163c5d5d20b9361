package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"contacts-api/internal/domain"
	"contacts-api/internal/repository"
)

// Límites de campos compartidos con el esquema de la base.
const (
	firstNameMaxLength      = 100
	lastNameMaxLength       = 100
	contactEmailMaxLength   = 100
	phoneNumberMinLength    = 12
	phoneNumberMaxLength    = 14
	additionalDataMaxLength = 255
)

const defaultUpcomingDays = 7

var (
	ErrContactExists   = errors.New("contact already exists")
	ErrContactNotFound = errors.New("contact not found")
	ErrValidation      = errors.New("validation failed")
)

// ContactService coordina reglas de negocio para contactos.
type ContactService struct {
	logger   *zap.Logger
	contacts repository.ContactRepository
}

func NewContactService(logger *zap.Logger, contacts repository.ContactRepository) *ContactService {
	return &ContactService{
		logger:   logger,
		contacts: contacts,
	}
}

// ContactInput son los campos de creación de un contacto.
type ContactInput struct {
	FirstName      string
	LastName       string
	Email          string
	PhoneNumber    string
	Birthday       *domain.Date
	AdditionalData string
}

// ContactPatch es una actualización parcial: solo los campos no nulos se
// aplican sobre el contacto existente.
type ContactPatch struct {
	FirstName      *string
	LastName       *string
	Email          *string
	PhoneNumber    *string
	Birthday       *domain.Date
	AdditionalData *string
}

// ListOptions controla paginación, filtros y el modo de próximos cumpleaños.
type ListOptions struct {
	Skip     int
	Limit    int
	Filter   repository.ContactFilter
	Upcoming bool
	Days     int
}

// Create agrega un contacto al usuario, rechazando emails duplicados dentro
// de su propia agenda.
func (s *ContactService) Create(ctx context.Context, userID int64, input ContactInput) (domain.Contact, error) {
	contact := domain.Contact{
		UserID:         userID,
		FirstName:      strings.TrimSpace(input.FirstName),
		LastName:       strings.TrimSpace(input.LastName),
		Email:          strings.TrimSpace(input.Email),
		PhoneNumber:    strings.TrimSpace(input.PhoneNumber),
		Birthday:       input.Birthday,
		AdditionalData: strings.TrimSpace(input.AdditionalData),
	}
	if err := validateContact(contact); err != nil {
		return domain.Contact{}, err
	}

	if _, err := s.contacts.GetByEmail(ctx, contact.Email, userID); err == nil {
		return domain.Contact{}, ErrContactExists
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Contact{}, err
	}

	return s.contacts.Create(ctx, contact)
}

// List devuelve los contactos del usuario según las opciones dadas.
func (s *ContactService) List(ctx context.Context, userID int64, opts ListOptions) ([]domain.Contact, error) {
	if opts.Upcoming {
		days := opts.Days
		if days <= 0 {
			days = defaultUpcomingDays
		}
		return s.UpcomingBirthdays(ctx, userID, days)
	}
	if opts.Limit <= 0 {
		opts.Limit = 100
	}
	if opts.Skip < 0 {
		opts.Skip = 0
	}
	return s.contacts.List(ctx, userID, opts.Filter, opts.Skip, opts.Limit)
}

// UpcomingBirthdays devuelve los contactos cuyo próximo cumpleaños cae dentro
// de los próximos days días, ordenados del más cercano al más lejano. El corte
// por fecha se calcula en memoria sobre las filas con cumpleaños no nulo.
func (s *ContactService) UpcomingBirthdays(ctx context.Context, userID int64, days int) ([]domain.Contact, error) {
	contacts, err := s.contacts.ListWithBirthdays(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := time.Now().UTC()
	type withDelta struct {
		delta   int
		contact domain.Contact
	}
	var upcoming []withDelta
	for _, c := range contacts {
		if c.Birthday == nil {
			continue
		}
		next := c.Birthday.NextOccurrence(today)
		delta := int(next.Sub(time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)).Hours() / 24)
		if delta >= 0 && delta <= days {
			upcoming = append(upcoming, withDelta{delta: delta, contact: c})
		}
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].delta < upcoming[j].delta
	})
	result := make([]domain.Contact, 0, len(upcoming))
	for _, u := range upcoming {
		result = append(result, u.contact)
	}
	return result, nil
}

// Get carga un contacto del usuario. Contactos ajenos se reportan como
// inexistentes.
func (s *ContactService) Get(ctx context.Context, contactID, userID int64) (domain.Contact, error) {
	contact, err := s.contacts.GetByID(ctx, contactID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Contact{}, ErrContactNotFound
		}
		return domain.Contact{}, err
	}
	return contact, nil
}

// Update aplica un patch tipado sobre un contacto existente del usuario.
func (s *ContactService) Update(ctx context.Context, contactID, userID int64, patch ContactPatch) (domain.Contact, error) {
	contact, err := s.Get(ctx, contactID, userID)
	if err != nil {
		return domain.Contact{}, err
	}

	if patch.FirstName != nil {
		contact.FirstName = strings.TrimSpace(*patch.FirstName)
	}
	if patch.LastName != nil {
		contact.LastName = strings.TrimSpace(*patch.LastName)
	}
	if patch.Email != nil {
		contact.Email = strings.TrimSpace(*patch.Email)
	}
	if patch.PhoneNumber != nil {
		contact.PhoneNumber = strings.TrimSpace(*patch.PhoneNumber)
	}
	if patch.Birthday != nil {
		contact.Birthday = patch.Birthday
	}
	if patch.AdditionalData != nil {
		contact.AdditionalData = strings.TrimSpace(*patch.AdditionalData)
	}

	if err := validateContact(contact); err != nil {
		return domain.Contact{}, err
	}

	updated, err := s.contacts.Update(ctx, contact)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Contact{}, ErrContactNotFound
		}
		return domain.Contact{}, err
	}
	return updated, nil
}

// Delete elimina un contacto del usuario.
func (s *ContactService) Delete(ctx context.Context, contactID, userID int64) error {
	ok, err := s.contacts.Delete(ctx, contactID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrContactNotFound
	}
	return nil
}

func validateContact(c domain.Contact) error {
	if c.FirstName == "" || len(c.FirstName) > firstNameMaxLength {
		return fmt.Errorf("%w: first_name must be 1..%d characters", ErrValidation, firstNameMaxLength)
	}
	if c.LastName == "" || len(c.LastName) > lastNameMaxLength {
		return fmt.Errorf("%w: last_name must be 1..%d characters", ErrValidation, lastNameMaxLength)
	}
	if c.Email == "" || len(c.Email) > contactEmailMaxLength || !strings.Contains(c.Email, "@") {
		return fmt.Errorf("%w: email must be a valid address up to %d characters", ErrValidation, contactEmailMaxLength)
	}
	if err := validatePhoneNumber(c.PhoneNumber); err != nil {
		return err
	}
	if len(c.AdditionalData) > additionalDataMaxLength {
		return fmt.Errorf("%w: additional_data must be up to %d characters", ErrValidation, additionalDataMaxLength)
	}
	return nil
}

func validatePhoneNumber(phone string) error {
	if len(phone) < phoneNumberMinLength || len(phone) > phoneNumberMaxLength {
		return fmt.Errorf("%w: phone_number length must be between %d and %d digits", ErrValidation, phoneNumberMinLength, phoneNumberMaxLength)
	}
	for _, r := range phone {
		if !unicode.IsDigit(r) {
			return fmt.Errorf("%w: phone_number must contain only digits", ErrValidation)
		}
	}
	return nil
}
