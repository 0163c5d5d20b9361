package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"contacts-api/internal/domain"
	"contacts-api/internal/email"
	"contacts-api/internal/repository"
)

// UserService coordina registro, login y verificación de email.
type UserService struct {
	logger      *zap.Logger
	users       repository.UserRepository
	emailSender email.Sender
	tokens      *TokenService
	publicURL   string
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, emailSender email.Sender, tokens *TokenService, publicURL string) *UserService {
	return &UserService{
		logger:      logger,
		users:       users,
		emailSender: emailSender,
		tokens:      tokens,
		publicURL:   strings.TrimRight(publicURL, "/"),
	}
}

var (
	ErrUserExists          = errors.New("user already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidEmail        = errors.New("invalid email")
	ErrVerificationInvalid = errors.New("verification token invalid or expired")
)

// Register crea un usuario nuevo y dispara el email de verificación.
// Un fallo en el envío del email no deshace la creación de la cuenta.
func (s *UserService) Register(ctx context.Context, emailAddr, password string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return domain.User{}, ErrInvalidEmail
	}

	// Chequeo previo para responder un conflicto limpio; el constraint UNIQUE
	// de la tabla sigue siendo la garantía real ante registros concurrentes.
	if _, err := s.users.GetByEmail(ctx, emailAddr); err == nil {
		return domain.User{}, ErrUserExists
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.users.Create(ctx, emailAddr, hashed)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return domain.User{}, ErrUserExists
		}
		return domain.User{}, err
	}

	s.sendVerificationEmail(ctx, user.Email)
	return user, nil
}

// Authenticate valida credenciales. Email desconocido y contraseña incorrecta
// producen el mismo error para no revelar si la cuenta existe.
func (s *UserService) Authenticate(ctx context.Context, emailAddr, password string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if user.HashedPassword == "" || !VerifyPassword(password, user.HashedPassword) {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// RequestEmailVerification reemite el email de verificación. Devuelve nil
// tanto si el email no existe como si ya está verificado: la respuesta al
// cliente es siempre la misma y solo el caso pendiente dispara un envío.
func (s *UserService) RequestEmailVerification(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return ErrInvalidEmail
	}
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	if user.IsVerified {
		return nil
	}
	s.sendVerificationEmail(ctx, user.Email)
	return nil
}

// VerifyEmail consume un token de verificación y marca la cuenta como
// verificada. Un segundo click con el mismo token es idempotente.
func (s *UserService) VerifyEmail(ctx context.Context, token string) (domain.User, error) {
	claims, err := s.tokens.Decode(token, PurposeEmailVerification)
	if err != nil {
		return domain.User{}, ErrVerificationInvalid
	}
	user, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Mismo error que un token inválido: no se distingue hacia afuera.
			return domain.User{}, ErrVerificationInvalid
		}
		return domain.User{}, err
	}
	if user.IsVerified {
		return user, nil
	}
	return s.users.SetVerified(ctx, user.ID)
}

// GetByEmail carga un usuario por email.
func (s *UserService) GetByEmail(ctx context.Context, emailAddr string) (domain.User, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// UpdateAvatar persiste la URL del avatar subido.
func (s *UserService) UpdateAvatar(ctx context.Context, userID int64, avatarURL string) (domain.User, error) {
	user, err := s.users.UpdateAvatar(ctx, userID, avatarURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *UserService) sendVerificationEmail(ctx context.Context, emailAddr string) {
	token, err := s.tokens.IssueVerificationToken(emailAddr)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("issue verification token failed", zap.Error(err), zap.String("email", emailAddr))
		}
		return
	}
	link := fmt.Sprintf("%s/api/v1/auth/verify-email?token=%s", s.publicURL, token)
	if s.emailSender == nil {
		s.logVerificationLink(emailAddr, link, errors.New("email sender not configured"))
		return
	}
	if err := s.emailSender.SendVerificationEmail(ctx, emailAddr, link); err != nil {
		s.logVerificationLink(emailAddr, link, err)
	}
}

// logVerificationLink deja el link en los logs cuando el envío falla, para
// que la verificación siga siendo posible en ambientes sin SMTP.
func (s *UserService) logVerificationLink(emailAddr, link string, cause error) {
	if s.logger == nil {
		return
	}
	s.logger.Warn("send verification email failed, link logged as fallback",
		zap.Error(cause),
		zap.String("email", emailAddr),
		zap.String("verification_link", link),
	)
}

// normalizeEmail solo recorta espacios: el email es case-sensitive y se usa
// tal cual como subject de los tokens.
func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
