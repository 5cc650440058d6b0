package settings

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/legalprop/propostas/internal/auth"
	"github.com/legalprop/propostas/internal/validation"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=settings

// Repository stores one opaque document per user.
type Repository interface {
	Load(ctx context.Context, userID uuid.UUID) ([]byte, error)
	Save(ctx context.Context, userID uuid.UUID, data []byte) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the caller's settings, or the defaults when none are stored.
// Older documents are upgraded and written back.
func (s *Service) Get(ctx context.Context, principal auth.Principal) (Settings, error) {
	data, err := s.repo.Load(ctx, principal.UserID)
	if errors.Is(err, ErrNotFound) {
		return Defaults(), nil
	}

	if err != nil {
		return Settings{}, err
	}

	st, version, err := decode(data)
	if err != nil {
		return Settings{}, err
	}

	if version < CurrentVersion {
		if err := s.save(ctx, principal.UserID, st); err != nil {
			slog.Warn("failed to persist migrated settings", "user_id", principal.UserID, "error", err)
		}
	}

	return st, nil
}

func (s *Service) Update(ctx context.Context, principal auth.Principal, st Settings) (Settings, error) {
	st.Version = CurrentVersion

	if err := validation.Struct(st).Err(); err != nil {
		return Settings{}, err
	}

	if err := s.save(ctx, principal.UserID, st); err != nil {
		return Settings{}, err
	}

	return st, nil
}

func (s *Service) save(ctx context.Context, userID uuid.UUID, st Settings) error {
	data, err := Encode(st)
	if err != nil {
		return err
	}

	return s.repo.Save(ctx, userID, data)
}
