package models

import (
	"time"

	"cvportal/internal/rbac"

	"gorm.io/datatypes"
)

type CVStatus string

const (
	StatusActive   CVStatus = "active"
	StatusPending  CVStatus = "pending"
	StatusArchived CVStatus = "archived"
)

func (s CVStatus) Valid() bool {
	switch s {
	case StatusActive, StatusPending, StatusArchived:
		return true
	}
	return false
}

type WorkExperience struct {
	CompanyName   string `json:"companyName"`
	Position      string `json:"position"`
	RoleTitle     string `json:"roleTitle"`
	StartDate     string `json:"startDate" validate:"omitempty,monthyear"`
	EndDate       string `json:"endDate" validate:"omitempty,monthyear"`
	IsCurrentRole bool   `json:"isCurrentRole"`
}

type CertificateType struct {
	Department      string `json:"department"`
	Role            string `json:"role"`
	CertificateName string `json:"certificateName"`
}

type CVRecord struct {
	ID                      uint                                 `gorm:"primaryKey;autoIncrement" json:"id"`
	Name                    string                               `gorm:"not null" json:"name"`
	Surname                 string                               `json:"surname"`
	IDPassport              string                               `gorm:"column:id_passport" json:"idPassport"`
	Gender                  string                               `json:"gender"`
	Email                   string                               `gorm:"not null;index" json:"email"`
	Phone                   string                               `json:"phone"`
	Position                string                               `gorm:"not null" json:"position"`
	RoleTitle               string                               `json:"roleTitle"`
	Department              string                               `json:"department"`
	Experience              int                                  `gorm:"not null;default:0" json:"experience"`
	ExperienceInSimilarRole int                                  `json:"experienceInSimilarRole"`
	ExperienceWithITSMTools int                                  `gorm:"column:experience_with_itsm_tools" json:"experienceWithITSMTools"`
	SAPKLevel               string                               `gorm:"column:sap_k_level" json:"sapKLevel"`
	Qualifications          string                               `json:"qualifications"`
	QualificationType       string                               `json:"qualificationType"`
	QualificationName       string                               `json:"qualificationName"`
	InstituteName           string                               `json:"instituteName"`
	YearCompleted           string                               `json:"yearCompleted"`
	Languages               string                               `json:"languages"`
	WorkExperiences         datatypes.JSONSlice[WorkExperience]  `json:"workExperiences"`
	CertificateTypes        datatypes.JSONSlice[CertificateType] `json:"certificateTypes"`
	Skills                  string                               `json:"skills"`
	Status                  CVStatus                             `gorm:"not null;default:pending;index" json:"status"`
	CVFile                  *string                              `gorm:"column:cv_file" json:"cvFile"`
	SubmittedAt             time.Time                            `gorm:"not null;index" json:"submittedAt"`
	UpdatedAt               time.Time                            `json:"updatedAt"`
}

func (CVRecord) TableName() string { return "cv_records" }

type UserProfile struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string     `gorm:"uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         rbac.Role  `gorm:"not null;default:user" json:"role"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Department   string     `json:"department"`
	Position     string     `json:"position"`
	PhoneNumber  string     `json:"phoneNumber"`
	IsActive     bool       `gorm:"not null" json:"isActive"`
	LastLogin    *time.Time `json:"lastLogin"`
	ModifiedBy   string     `json:"modifiedBy"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (UserProfile) TableName() string { return "user_profiles" }

type HistoryAction string

const (
	ActionCreate HistoryAction = "CREATE"
	ActionUpdate HistoryAction = "UPDATE"
	ActionDelete HistoryAction = "DELETE"
)

// VersionHistoryEntry is append-only. RecordID is a back-reference, not a
// foreign key: history outlives the row it describes.
type VersionHistoryEntry struct {
	ID            uint                        `gorm:"primaryKey;autoIncrement" json:"id"`
	Table         string                      `gorm:"column:table_name;not null;index:idx_history_record,priority:1" json:"table_name"`
	RecordID      uint                        `gorm:"not null;index:idx_history_record,priority:2" json:"record_id"`
	Action        HistoryAction               `gorm:"not null" json:"action"`
	OldValues     Snapshot                    `json:"old_values"`
	NewValues     Snapshot                    `json:"new_values"`
	ChangedFields datatypes.JSONSlice[string] `json:"changed_fields"`
	UserID        *uint                       `json:"user_id"`
	Username      string                      `gorm:"not null" json:"username"`
	Timestamp     time.Time                   `gorm:"not null;index" json:"timestamp"`
	Description   string                      `json:"description,omitempty"`
}

func (VersionHistoryEntry) TableName() string { return "version_history" }

type Session struct {
	JTI       string     `gorm:"primaryKey;size:64" json:"jti"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
