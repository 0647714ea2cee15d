package transport

type RegisterRequest struct {
	Email        string `json:"email"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	Password2    string `json:"password2"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	PhoneNumber  string `json:"phone_number"`
	Address      string `json:"address"`
	Is2FAEnabled bool   `json:"is_2fa_enabled"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyOTPRequest struct {
	OTP string `json:"otp"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UpdateProfileRequest carries optional fields; nil leaves a field unchanged.
type UpdateProfileRequest struct {
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	Username     *string `json:"username"`
	PhoneNumber  *string `json:"phone_number"`
	Address      *string `json:"address"`
	Is2FAEnabled *bool   `json:"is_2fa_enabled"`
}

// TokenResponse mirrors what the auth client decodes on refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	AccessExp    int64  `json:"access_exp"`
	RefreshExp   int64  `json:"refresh_exp"`
	IsAdmin      bool   `json:"is_admin"`
}

type OTPRequiredResponse struct {
	OTPRequired bool `json:"otp_required"`
	UserID      uint `json:"user_id"`
}
