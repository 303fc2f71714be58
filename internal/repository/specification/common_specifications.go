package specification

import "gorm.io/gorm"

// ByID filters by primary key
type ByID struct {
	ID string
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// UserOwnedBy restricts rows to one user; an empty UserID matches everything.
type UserOwnedBy struct {
	UserID string
}

func (s UserOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	if s.UserID == "" {
		return db
	}
	return db.Where("user_id = ?", s.UserID)
}
