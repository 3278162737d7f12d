package shared

import "time"

// BaseEntity holds the identity and timestamps shared by every table-backed
// type. IDs are assigned by the database on insert, so a fresh entity has ID 0.
type BaseEntity struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{CreatedAt: now, UpdatedAt: now}
}

// Touch records a modification.
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}
