package models

import "time"

type Position struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Department string    `gorm:"not null;uniqueIndex:idx_position_dept_role" json:"department"`
	RoleTitle  string    `gorm:"not null;uniqueIndex:idx_position_dept_role" json:"roleTitle"`
	KLevel     string    `gorm:"column:k_level" json:"kLevel"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type Qualification struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	QualificationType string    `gorm:"not null;uniqueIndex:idx_qualification_type_name" json:"qualificationType"`
	Name              string    `gorm:"not null;uniqueIndex:idx_qualification_type_name" json:"name"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type TenderStatus string

const (
	TenderOpen    TenderStatus = "open"
	TenderClosed  TenderStatus = "closed"
	TenderAwarded TenderStatus = "awarded"
)

type Tender struct {
	ID              uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	Title           string       `gorm:"not null" json:"title"`
	ReferenceNumber string       `gorm:"uniqueIndex;not null;size:64" json:"referenceNumber"`
	Client          string       `json:"client"`
	Description     string       `json:"description"`
	ClosingDate     *time.Time   `json:"closingDate"`
	Status          TenderStatus `gorm:"not null;default:open;size:16" json:"status"`
	CreatedBy       string       `json:"createdBy"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}
