package domain

import (
	"time"
)

type Employee struct {
	ID                int64     `json:"id"`
	Code              string    `json:"code"`
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	Email             string    `json:"email"`
	DefaultPositionID *int64    `json:"defaultPositionID"`
	WorkSiteName      string    `json:"workSiteName"`
	IsActive          bool      `json:"isActive"`
	CreatedAt         time.Time `json:"createdAt"`
	Version           int32     `json:"-"`
}

// FullName 按照中文习惯姓在前
func (e *Employee) FullName() string {
	return e.LastName + e.FirstName
}
