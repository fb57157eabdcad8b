package identity

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"auction-service/internal/auctionerrors"
	"auction-service/internal/models"
	"auction-service/internal/notifier"
	"auction-service/internal/repository"
	"auction-service/utils"
)

const (
	bcryptCost = 10
	tokenTTL   = time.Hour
)

// Identity is the resolved caller of an authenticated request
type Identity struct {
	UserID      string
	DisplayName string
	Email       string
}

// Service implements registration, email verification and credential
// verification for auction users
type Service struct {
	users    repository.UserDB
	notifier notifier.Notifier
	secret   []byte
}

// NewService creates a new identity Service instance
func NewService(users repository.UserDB, sink notifier.Notifier, secret string) *Service {
	return &Service{
		users:    users,
		notifier: sink,
		secret:   []byte(secret),
	}
}

type authClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Register creates an unverified account and sends the verification email
func (s *Service) Register(name, email, password, phone string) error {
	if name == "" || email == "" {
		return fmt.Errorf("identity: %w - missing name or email", auctionerrors.ErrValidation)
	}
	if !validPassword(password) {
		return fmt.Errorf("identity: %w - password needs 8+ characters with lower, upper and symbol", auctionerrors.ErrValidation)
	}

	if _, err := s.users.GetUserByEmail(email); err == nil {
		return fmt.Errorf("identity: %w", auctionerrors.ErrEmailTaken)
	} else if !errors.Is(err, auctionerrors.ErrUserNotFound) {
		return fmt.Errorf("identity: failed to check email %s: %w", email, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("identity: failed to hash password: %w", err)
	}
	token, err := newVerificationToken()
	if err != nil {
		return fmt.Errorf("identity: failed to generate verification token: %w", err)
	}

	user := models.User{
		UserID:            utils.GenerateID(),
		Name:              name,
		Email:             email,
		Phone:             phone,
		PasswordHash:      string(hash),
		VerificationToken: token,
	}
	if err := s.users.CreateUser(user); err != nil {
		return fmt.Errorf("identity: failed to create user: %w", err)
	}

	s.sendVerification(user)
	return nil
}

// VerifyEmail marks the account holding the token as verified
func (s *Service) VerifyEmail(token string) error {
	if token == "" {
		return fmt.Errorf("identity: %w", auctionerrors.ErrInvalidToken)
	}

	user, err := s.users.GetUserByVerificationToken(token)
	if errors.Is(err, auctionerrors.ErrUserNotFound) {
		return fmt.Errorf("identity: %w", auctionerrors.ErrInvalidToken)
	}
	if err != nil {
		return fmt.Errorf("identity: failed to look up verification token: %w", err)
	}

	user.IsVerified = true
	user.VerificationToken = ""
	if err := s.users.UpdateUser(user); err != nil {
		return fmt.Errorf("identity: failed to verify user %s: %w", user.UserID, err)
	}
	return nil
}

// Login checks the credentials and issues a signed token. An unverified
// account gets its verification email re-sent and the login is refused.
func (s *Service) Login(email, password string) (string, error) {
	user, err := s.users.GetUserByEmail(email)
	if errors.Is(err, auctionerrors.ErrUserNotFound) {
		return "", fmt.Errorf("identity: %w", auctionerrors.ErrInvalidCredential)
	}
	if err != nil {
		return "", fmt.Errorf("identity: failed to look up user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("identity: %w", auctionerrors.ErrInvalidCredential)
	}

	if !user.IsVerified {
		s.sendVerification(user)
		return "", fmt.Errorf("identity: %w", auctionerrors.ErrEmailNotVerified)
	}

	now := time.Now().UTC()
	claims := authClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
		Email: user.Email,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("identity: failed to sign token: %w", err)
	}

	user.Tokens = append(user.Tokens, signed)
	if err := s.users.UpdateUser(user); err != nil {
		return "", fmt.Errorf("identity: failed to store token for user %s: %w", user.UserID, err)
	}
	return signed, nil
}

// Logout invalidates one of the account's active tokens
func (s *Service) Logout(email, token string) error {
	if email == "" || token == "" {
		return fmt.Errorf("identity: %w - missing email or token", auctionerrors.ErrValidation)
	}
	if _, err := s.parseToken(token); err != nil {
		return err
	}

	user, err := s.users.GetUserByEmail(email)
	if errors.Is(err, auctionerrors.ErrUserNotFound) {
		return fmt.Errorf("identity: %w", auctionerrors.ErrUserNotFound)
	}
	if err != nil {
		return fmt.Errorf("identity: failed to look up user by email: %w", err)
	}

	kept := user.Tokens[:0]
	found := false
	for _, t := range user.Tokens {
		if t == token {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	if !found {
		return fmt.Errorf("identity: %w", auctionerrors.ErrInvalidCredential)
	}

	user.Tokens = kept
	if err := s.users.UpdateUser(user); err != nil {
		return fmt.Errorf("identity: failed to remove token for user %s: %w", user.UserID, err)
	}
	return nil
}

// VerifyCredential validates a bearer token and resolves the caller. The
// token must still be among the account's active tokens, so logged-out
// tokens are refused before their expiry.
func (s *Service) VerifyCredential(token string) (Identity, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return Identity{}, err
	}

	user, err := s.users.GetUserByID(claims.Subject)
	if err != nil {
		return Identity{}, fmt.Errorf("identity: %w", auctionerrors.ErrInvalidCredential)
	}

	active := false
	for _, t := range user.Tokens {
		if t == token {
			active = true
			break
		}
	}
	if !active {
		return Identity{}, fmt.Errorf("identity: %w", auctionerrors.ErrInvalidCredential)
	}

	return Identity{UserID: user.UserID, DisplayName: user.Name, Email: user.Email}, nil
}

func (s *Service) parseToken(token string) (*authClaims, error) {
	claims := &authClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("identity: %w", auctionerrors.ErrInvalidCredential)
	}
	return claims, nil
}

// sendVerification delivers the verification email; failures are logged, not
// propagated
func (s *Service) sendVerification(user models.User) {
	err := s.notifier.Notify(user.Email, notifier.TemplateVerificationEmail, map[string]any{
		"name":  user.Name,
		"token": user.VerificationToken,
	})
	if err != nil {
		utils.Error("failed to send verification email", map[string]any{
			"email": user.Email,
			"error": err.Error(),
		})
	}
}

func newVerificationToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// validPassword requires 8+ characters with at least one lowercase letter,
// one uppercase letter and one symbol
func validPassword(password string) bool {
	// length is counted in runes so multibyte characters count once
	if utf8.RuneCountInString(password) < 8 {
		return false
	}
	var lower, upper, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			symbol = true
		}
	}
	return lower && upper && symbol
}
