package models

// Address is the postal address captured at registration.
type Address struct {
	Address string `json:"address"`
	ZipCode string `json:"zipCode"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// RegistrationRequest is the inbound registration payload.
type RegistrationRequest struct {
	FirstName         string  `json:"firstName"`
	LastName          string  `json:"lastName"`
	Password          string  `json:"password"`
	ConfirmedPassword string  `json:"confirmedPassword"`
	Email             string  `json:"email"`
	PhoneNumber       string  `json:"phoneNumber"`
	PassportNumber    string  `json:"passportNumber"`
	Address           Address `json:"address"`
}

// PasswordsMatch reports whether the password and its confirmation agree.
func (r RegistrationRequest) PasswordsMatch() bool {
	return r.Password == r.ConfirmedPassword
}

// LoginRequest is the inbound login payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AccessToken is the token set returned to clients. It is never persisted.
type AccessToken struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token,omitempty"`
	TokenType        string `json:"token_type,omitempty"`
	ExpiresIn        int64  `json:"expires_in,omitempty"`
	RefreshExpiresIn int64  `json:"refresh_expires_in,omitempty"`
	Scope            string `json:"scope,omitempty"`
}
