package identityprovider

import "net/http"

// GuidAttribute is the account attribute that links an identity account to
// its profile record. The realm's protocol mapper copies it into the Guid
// token claim.
const GuidAttribute = "GUID"

// Account is a new identity provider account. Username mirrors Email.
type Account struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Enabled   bool
	Guid      string
	Password  string
}

// ProviderResponse is the provider's answer to an account creation.
type ProviderResponse struct {
	StatusCode int
	Location   string
}

// Created reports whether the provider answered 201.
func (r ProviderResponse) Created() bool {
	return r.StatusCode == http.StatusCreated
}

type userRepresentation struct {
	Username      string                     `json:"username"`
	Email         string                     `json:"email"`
	FirstName     string                     `json:"firstName"`
	LastName      string                     `json:"lastName"`
	Enabled       bool                       `json:"enabled"`
	EmailVerified bool                       `json:"emailVerified"`
	Attributes    map[string][]string        `json:"attributes,omitempty"`
	Credentials   []credentialRepresentation `json:"credentials"`
}

type credentialRepresentation struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Temporary bool   `json:"temporary"`
}

func toUserRepresentation(a Account) userRepresentation {
	rep := userRepresentation{
		Username:  a.Username,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Enabled:   a.Enabled,
		Credentials: []credentialRepresentation{
			{Type: "password", Value: a.Password, Temporary: false},
		},
	}
	if a.Guid != "" {
		rep.Attributes = map[string][]string{GuidAttribute: {a.Guid}}
	}
	return rep
}
