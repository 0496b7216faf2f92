package user

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/auth"
	"github.com/MikeMC777/storefront/internal/mail"
)

// OTPTTL is how long an emailed code stays valid.
const OTPTTL = 300 * time.Second

var (
	ErrPendingNotFound = fmt.Errorf("registration %w", apperr.ErrNotFound)
	ErrEmailTaken      = apperr.Invalid("Email already registered")
	ErrOTPExpired      = apperr.Invalid("OTP expired")
	ErrOTPInvalid      = apperr.Invalid("Invalid OTP")
	ErrBadCredentials  = apperr.New(apperr.ErrUnauthenticated, "Invalid email or password")
)

type Service struct {
	repo    Repository
	pending PendingStore
	mailer  mail.Sender
	now     func() time.Time
	otp     func() (string, error)
}

func NewService(repo Repository, pending PendingStore, mailer mail.Sender) *Service {
	if mailer == nil {
		mailer = mail.Log{}
	}
	return &Service{repo: repo, pending: pending, mailer: mailer, now: time.Now, otp: newOTP}
}

func newOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Register parks the sign-up and mails a one-time code. The returned id
// identifies the pending registration for VerifyOTP.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (string, error) {
	name := strings.TrimSpace(req.Name)
	email := normEmail(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return "", apperr.Invalid("name, email and password are required")
	}
	if !strings.Contains(email, "@") {
		return "", apperr.Invalid("invalid email")
	}
	if len(req.Password) < 6 {
		return "", apperr.Invalid("password must be at least 6 characters")
	}

	_, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return "", ErrEmailTaken
	case !errors.Is(err, ErrNotFound):
		return "", err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return "", err
	}
	code, err := s.otp()
	if err != nil {
		return "", err
	}
	p := &Pending{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		OTP:          code,
		IssuedAt:     s.now().UTC(),
	}
	if err := s.pending.Put(ctx, p); err != nil {
		return "", err
	}

	body := fmt.Sprintf("Hello %s,\n\nYour verification code is %s. It expires in 5 minutes.\n", name, code)
	if err := s.mailer.Send(ctx, email, "Email Verification OTP", body); err != nil {
		log.Printf("[mail] otp to %s failed: %v", email, err)
	}
	return p.ID, nil
}

// VerifyOTP turns a pending registration into a user account.
func (s *Service) VerifyOTP(ctx context.Context, pendingID, code string) (*User, error) {
	p, err := s.pending.Get(ctx, pendingID)
	if err != nil {
		return nil, err
	}
	if s.now().Sub(p.IssuedAt) > OTPTTL {
		if err := s.pending.Delete(ctx, p.ID); err != nil {
			log.Printf("[user] drop expired registration %s: %v", p.ID, err)
		}
		return nil, ErrOTPExpired
	}
	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(code)), []byte(p.OTP)) != 1 {
		return nil, ErrOTPInvalid
	}

	u := &User{
		ID:           uuid.NewString(),
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		Role:         auth.RoleUser,
	}
	err = s.repo.Create(ctx, u)
	if errors.Is(err, ErrAlreadyExist) {
		_ = s.pending.Delete(ctx, p.ID)
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	if err := s.pending.Delete(ctx, p.ID); err != nil {
		log.Printf("[user] drop registration %s: %v", p.ID, err)
	}
	return u, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return nil, ErrBadCredentials
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// SignInGoogle finds the account for a verified Google profile, creating a
// customer account on first sign-in.
func (s *Service) SignInGoogle(ctx context.Context, p GoogleProfile) (*User, error) {
	if !p.EmailVerified {
		return nil, apperr.New(apperr.ErrUnauthenticated, "Google email not verified")
	}
	u, err := s.repo.GetByEmail(ctx, p.Email)
	if errors.Is(err, ErrNotFound) {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			name = strings.SplitN(p.Email, "@", 2)[0]
		}
		u = &User{
			ID:       uuid.NewString(),
			Name:     name,
			Email:    normEmail(p.Email),
			GoogleID: p.Sub,
			Role:     auth.RoleUser,
		}
		if err := s.repo.Create(ctx, u); err != nil {
			return nil, err
		}
		return u, nil
	}
	if err != nil {
		return nil, err
	}
	if u.GoogleID == "" && p.Sub != "" {
		if err := s.repo.SetGoogleID(ctx, u.ID, p.Sub); err != nil {
			return nil, err
		}
		u.GoogleID = p.Sub
	}
	return u, nil
}

// Bootstrap names the staff accounts created at startup. Hashes are bcrypt.
type Bootstrap struct {
	AdminEmail          string
	AdminPasswordHash   string
	FinanceEmail        string
	FinancePasswordHash string
}

// EnsureBootstrap creates the admin when no admin exists yet and the
// finance account when its email is unused.
func (s *Service) EnsureBootstrap(ctx context.Context, b Bootstrap) error {
	if b.AdminEmail != "" {
		n, err := s.repo.CountByRole(ctx, auth.RoleAdmin)
		if err != nil {
			return err
		}
		if n == 0 {
			if err := s.seed(ctx, "Admin", b.AdminEmail, b.AdminPasswordHash, auth.RoleAdmin); err != nil {
				return err
			}
		}
	}
	if b.FinanceEmail != "" {
		_, err := s.repo.GetByEmail(ctx, b.FinanceEmail)
		if errors.Is(err, ErrNotFound) {
			return s.seed(ctx, "Finance", b.FinanceEmail, b.FinancePasswordHash, auth.RoleFinance)
		}
		return err
	}
	return nil
}

func (s *Service) seed(ctx context.Context, name, email, hash, role string) error {
	u := &User{ID: uuid.NewString(), Name: name, Email: normEmail(email), PasswordHash: hash, Role: role}
	err := s.repo.Create(ctx, u)
	if errors.Is(err, ErrAlreadyExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed %s: %w", role, err)
	}
	log.Printf("[user] created %s account %s", role, u.Email)
	return nil
}
