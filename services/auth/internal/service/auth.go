package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
	"github.com/Skotchmaster/storefront/services/auth/internal/models"
	"github.com/Skotchmaster/storefront/services/auth/internal/repo"
	"github.com/Skotchmaster/storefront/services/auth/internal/transport"
)

const (
	accessTTL      = 15 * time.Minute
	refreshTTL     = 7 * 24 * time.Hour
	minPasswordLen = 8
)

var phoneRe = regexp.MustCompile(`^\+?\d{9,15}$`)

// validPhone accepts an empty number; the field is optional.
func validPhone(v string) bool {
	return v == "" || phoneRe.MatchString(v)
}

type AuthService struct {
	Repo          *repo.GormRepo
	JWTSecret     []byte
	RefreshSecret []byte
	Events        events.Publisher
	// AdminEmails get the admin role at registration.
	AdminEmails []string

	NewOTP func() (string, error)
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	IsAdmin      bool

	OTPRequired bool
	UserID      uint
}

// GenerateOTP returns a 6-digit code in [100000, 999999].
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

func (h *AuthService) otp() (string, error) {
	if h.NewOTP != nil {
		return h.NewOTP()
	}
	return GenerateOTP()
}

func (h *AuthService) CreateAccessToken(role, id string, accessExp time.Time) (string, error) {
	return tokens.SignAccess(h.JWTSecret, id, role, accessExp)
}

func (h *AuthService) CreateRefreshToken(id string, refreshExp time.Time) (string, string, error) {
	jti := uuid.NewString()
	tok, err := tokens.SignRefresh(h.RefreshSecret, id, jti, refreshExp)
	if err != nil {
		return "", "", err
	}
	return tok, jti, nil
}

func (h *AuthService) publish(ctx context.Context, topic string, userID uint, eventType string, payload any) {
	if h.Events == nil {
		return
	}
	l := logging.FromContext(ctx)
	e, err := events.New(eventType, payload)
	if err != nil {
		l.Error("event_encode_error", "type", eventType, "error", err)
		return
	}
	if err := h.Events.PublishEvent(ctx, topic, strconv.FormatUint(uint64(userID), 10), e); err != nil {
		l.Warn("event_publish_error", "topic", topic, "type", eventType, "error", err)
	}
}

func validateRegister(req transport.RegisterRequest) error {
	fe := FieldErrors{}
	if _, err := mail.ParseAddress(req.Email); err != nil || strings.ContainsAny(req.Email, " <>") {
		fe["email"] = "invalid email"
	}
	if strings.TrimSpace(req.Username) == "" {
		fe["username"] = "required"
	}
	if !validPhone(strings.TrimSpace(req.PhoneNumber)) {
		fe["phone_number"] = "invalid phone number"
	}
	switch {
	case len(req.Password) < minPasswordLen:
		fe["password"] = fmt.Sprintf("must be at least %d characters", minPasswordLen)
	case req.Password != req.Password2:
		fe["password2"] = "passwords do not match"
	}
	if len(fe) > 0 {
		return fe
	}
	return nil
}

func (h *AuthService) roleFor(email string) string {
	for _, a := range h.AdminEmails {
		if strings.EqualFold(a, email) {
			return tokens.RoleAdmin
		}
	}
	return tokens.RoleUser
}

// Register creates the account. With two-factor enabled a first code is
// issued right away, as the account must be confirmed before use.
func (h *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if err := validateRegister(req); err != nil {
		return nil, err
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}
	user := models.User{
		Email:        strings.TrimSpace(req.Email),
		Username:     strings.TrimSpace(req.Username),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		Address:      strings.TrimSpace(req.Address),
		PasswordHash: pwHash,
		Role:         h.roleFor(strings.TrimSpace(req.Email)),
		Is2FAEnabled: req.Is2FAEnabled,
	}

	if err := h.Repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("register_error", "status", 409, "reason", "user already exist")
			return nil, fmt.Errorf("email already registered: %w", ErrConflict)
		}
		l.Error("register_error", "status", 500, "error", err)
		return nil, err
	}

	h.publish(ctx, events.TopicUser, user.ID, events.TypeUserRegistered, map[string]any{
		"user_id":  user.ID,
		"email":    user.Email,
		"username": user.Username,
	})

	if user.Is2FAEnabled {
		if err := h.issueOTP(ctx, &user, "register"); err != nil {
			return nil, err
		}
	}
	return &user, nil
}

func (h *AuthService) issueOTP(ctx context.Context, u *models.User, purpose string) error {
	code, err := h.otp()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	if err := h.Repo.SaveOTP(ctx, u.ID, code); err != nil {
		return fmt.Errorf("save otp: %w", err)
	}
	h.publish(ctx, events.TopicNotification, u.ID, events.TypeAuthOTPIssued, map[string]any{
		"user_id": u.ID,
		"email":   u.Email,
		"code":    code,
		"purpose": purpose,
	})
	return nil
}

func (h *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("email and password are required: %w", ErrValidation)
	}

	user, err := h.Repo.UserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("login_failed", "status", 401, "reason", "unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "wrong password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	if user.Is2FAEnabled {
		if err := h.issueOTP(ctx, user, "login"); err != nil {
			return nil, err
		}
		return &LoginResult{OTPRequired: true, UserID: user.ID}, nil
	}
	return h.session(ctx, user)
}

// VerifyOTP consumes the pending code and opens a session.
func (h *AuthService) VerifyOTP(ctx context.Context, userID uint, code string) (*LoginResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, FieldErrors{"otp": "required"}
	}

	user, err := h.Repo.GetUserById(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, err
	}

	ok, err := h.Repo.ConsumeOTP(ctx, userID, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidOTP
	}
	return h.session(ctx, user)
}

func (h *AuthService) session(ctx context.Context, user *models.User) (*LoginResult, error) {
	sub := strconv.FormatUint(uint64(user.ID), 10)

	accessExp := time.Now().Add(accessTTL)
	accessToken, err := h.CreateAccessToken(user.Role, sub, accessExp)
	if err != nil {
		return nil, err
	}

	refreshExp := time.Now().Add(refreshTTL)
	refreshToken, jti, err := h.CreateRefreshToken(sub, refreshExp)
	if err != nil {
		return nil, err
	}

	if err := h.Repo.AddRefresh(ctx, &models.RefreshToken{
		Token:     hash.Sha256Hex(refreshToken),
		UserID:    user.ID,
		JTI:       jti,
		ExpiresAt: refreshExp.Unix(),
	}); err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		IsAdmin:      user.Role == tokens.RoleAdmin,
		UserID:       user.ID,
	}, nil
}

// Refresh rotates the refresh token: the presented one is revoked and a new
// pair is issued. The role is read from the user row so demotions apply.
func (h *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := tokens.RefreshClaimsFromToken(refreshToken, h.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err)
	}
	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	user, err := h.Repo.GetUserById(ctx, uint(userID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	sub := claims.Subject
	accessExp := time.Now().Add(accessTTL)
	accessToken, err := h.CreateAccessToken(user.Role, sub, accessExp)
	if err != nil {
		return nil, err
	}
	refreshExp := time.Now().Add(refreshTTL)
	nextToken, jti, err := h.CreateRefreshToken(sub, refreshExp)
	if err != nil {
		return nil, err
	}

	err = h.Repo.RotateRefreshToken(ctx, claims.ID, &models.RefreshToken{
		Token:     hash.Sha256Hex(nextToken),
		UserID:    user.ID,
		JTI:       jti,
		ExpiresAt: refreshExp.Unix(),
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, repo.ErrRefreshUnusable) {
			l.Warn("refresh_failed", "status", 401, "user_id", user.ID, "error", err)
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: nextToken,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		IsAdmin:      user.Role == tokens.RoleAdmin,
		UserID:       user.ID,
	}, nil
}

func (h *AuthService) LogOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return h.Repo.LogOut(ctx, refreshToken)
}

func (h *AuthService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	u, err := h.Repo.GetUserById(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, err
	}
	return u, nil
}

func (h *AuthService) UpdateProfile(ctx context.Context, userID uint, req transport.UpdateProfileRequest) (*models.User, error) {
	fields := map[string]any{}
	if req.FirstName != nil {
		fields["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		fields["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if req.Username != nil {
		name := strings.TrimSpace(*req.Username)
		if name == "" {
			return nil, FieldErrors{"username": "must not be empty"}
		}
		fields["username"] = name
	}
	if req.PhoneNumber != nil {
		phone := strings.TrimSpace(*req.PhoneNumber)
		if !validPhone(phone) {
			return nil, FieldErrors{"phone_number": "invalid phone number"}
		}
		fields["phone_number"] = phone
	}
	if req.Address != nil {
		fields["address"] = strings.TrimSpace(*req.Address)
	}
	if req.Is2FAEnabled != nil {
		fields["is_2fa_enabled"] = *req.Is2FAEnabled
	}

	u, err := h.Repo.UpdateProfile(ctx, userID, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, err
	}
	return u, nil
}
