package models

import (
	"time"

	"github.com/google/uuid"
)

const RoleUser = "ROLE_USER"

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	ModifiedAt     time.Time
	Email          string
	HashedPassword string
	Name           string
	Role           string
}
