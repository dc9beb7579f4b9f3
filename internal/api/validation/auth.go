package validation

// LoginRequest mirrors the body of POST /auth/manager/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=320"`
	Password string `json:"password" validate:"required,max=200"`
	TeamSlug string `json:"teamSlug" validate:"max=100"`
}

// ValidateLogin validates a manager login request.
func ValidateLogin(req LoginRequest) []FieldError {
	return check(req)
}
