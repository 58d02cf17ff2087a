package service

import (
	"context"

	"idgate/internal/auth/models"
	"idgate/internal/auth/store/orphan"
	"idgate/internal/identityprovider"
	"idgate/internal/profile"
)

//go:generate mockgen -source=ports.go -destination=mocks/ports_mock.go -package=mocks

// IdentityProvider creates accounts and issues tokens.
type IdentityProvider interface {
	CreateAccount(ctx context.Context, account identityprovider.Account) (identityprovider.ProviderResponse, error)
	IssueToken(ctx context.Context, username, password string) (*models.AccessToken, error)
}

// ProfileService owns the durable user records.
type ProfileService interface {
	RegisterUser(ctx context.Context, req models.RegistrationRequest) (*profile.Record, error)
	GetUser(ctx context.Context, id string) (*profile.Record, error)
	DeleteUser(ctx context.Context, id string) error
}

// OrphanRecorder remembers profiles the saga failed to roll back.
type OrphanRecorder interface {
	Record(ctx context.Context, rec orphan.Record) error
}
