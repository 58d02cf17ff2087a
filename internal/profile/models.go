package profile

import (
	"encoding/json"

	"idgate/internal/auth/models"
)

// Record is the profile service's view of a user. The gateway only holds a
// transient copy of it. Timestamps are relayed exactly as the profile service
// wrote them, which is usually a local date-time without a zone.
type Record struct {
	ID             string          `json:"id"`
	Email          string          `json:"email"`
	FirstName      string          `json:"firstName"`
	LastName       string          `json:"lastName"`
	PhoneNumber    string          `json:"phoneNumber,omitempty"`
	PassportNumber string          `json:"passportNumber,omitempty"`
	Address        models.Address  `json:"address"`
	Created        json.RawMessage `json:"created,omitempty"`
	Updated        json.RawMessage `json:"updated,omitempty"`
}

// individualRequest is the create payload. Credentials never leave the gateway
// towards the profile service.
type individualRequest struct {
	FirstName      string         `json:"firstName"`
	LastName       string         `json:"lastName"`
	Email          string         `json:"email"`
	PhoneNumber    string         `json:"phoneNumber,omitempty"`
	PassportNumber string         `json:"passportNumber,omitempty"`
	Address        models.Address `json:"address"`
}

func toIndividualRequest(req models.RegistrationRequest) individualRequest {
	return individualRequest{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		PassportNumber: req.PassportNumber,
		Address:        req.Address,
	}
}
