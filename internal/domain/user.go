package domain

import "time"

type User struct {
	ID         string    `json:"id"`
	FullName   string    `json:"fullName" validate:"required"`
	Email      string    `json:"email" validate:"required,contains=@"`
	Role       string    `json:"role" validate:"required"`
	School     *string   `json:"school"`
	SchoolYear *int      `json:"schoolYear" validate:"omitempty,gt=0"`
	Major      *string   `json:"major"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// UserInput 创建用户的入参
type UserInput struct {
	FullName   string  `json:"fullName"`
	Email      string  `json:"email"`
	Role       string  `json:"role"`
	School     *string `json:"school"`
	SchoolYear *int    `json:"schoolYear"`
	Major      *string `json:"major"`
}

// UserPatch 部分更新：nil 表示未提供；school/major 传 "" 、schoolYear 传 0 表示清空
type UserPatch struct {
	FullName   *string `json:"fullName"`
	Email      *string `json:"email"`
	Role       *string `json:"role"`
	School     *string `json:"school"`
	SchoolYear *int    `json:"schoolYear"`
	Major      *string `json:"major"`
}

func (p UserPatch) Apply(u User) User {
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.School != nil {
		u.School = clearable(p.School)
	}
	if p.SchoolYear != nil {
		u.SchoolYear = p.SchoolYear
		if *p.SchoolYear == 0 {
			u.SchoolYear = nil
		}
	}
	if p.Major != nil {
		u.Major = clearable(p.Major)
	}
	return u
}

func clearable(v *string) *string {
	if *v == "" {
		return nil
	}
	return v
}

type UserFilter struct {
	Role string
}
