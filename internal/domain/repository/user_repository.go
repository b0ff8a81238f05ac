package repository

import (
	"context"

	"github.com/contableweb/contable-api/internal/domain/entity"
)

// UserRepository puerto de persistencia de usuarios.
type UserRepository interface {
	// Create persiste un usuario nuevo. Devuelve domain.ErrEmailAlreadyExists
	// si el email ya está registrado.
	Create(ctx context.Context, user *entity.User) error

	// GetByID devuelve el usuario o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.User, error)

	// GetByEmail devuelve el usuario o nil si no existe.
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}
