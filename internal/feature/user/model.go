package user

import (
	"time"

	"studybuddy/internal/domain"
)

// UserModel 持久化记录：GORM 表 users / Mongo 集合 users
type UserModel struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	FullName   string    `gorm:"size:128;not null" bson:"fullName"`
	Email      string    `gorm:"uniqueIndex;size:191;not null" bson:"email"`
	Role       string    `gorm:"size:32;not null" bson:"role"`
	School     *string   `gorm:"size:128" bson:"school,omitempty"`
	SchoolYear *int      `bson:"schoolYear,omitempty"`
	Major      *string   `gorm:"size:128" bson:"major,omitempty"`
	CreatedAt  time.Time `bson:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

func (UserModel) TableName() string { return "users" }

func FromDomain(u domain.User) UserModel {
	return UserModel{
		ID: u.ID, FullName: u.FullName, Email: u.Email, Role: u.Role,
		School: u.School, SchoolYear: u.SchoolYear, Major: u.Major,
		CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
	}
}

func (m UserModel) ToDomain() domain.User {
	return domain.User{
		ID: m.ID, FullName: m.FullName, Email: m.Email, Role: m.Role,
		School: m.School, SchoolYear: m.SchoolYear, Major: m.Major,
		CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
	}
}
