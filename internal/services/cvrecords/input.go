package cvrecords

import (
	"cvportal/internal/apperr"
	"cvportal/internal/models"
	"cvportal/internal/validation"
)

// Input is both the create body and the partial update body: a nil field is
// absent.
type Input struct {
	Name                    *string                   `json:"name" validate:"omitnil,min=1"`
	Surname                 *string                   `json:"surname"`
	IDPassport              *string                   `json:"idPassport"`
	Gender                  *string                   `json:"gender"`
	Email                   *string                   `json:"email" validate:"omitnil,email"`
	Phone                   *string                   `json:"phone"`
	Position                *string                   `json:"position" validate:"omitnil,min=1"`
	RoleTitle               *string                   `json:"roleTitle"`
	Department              *string                   `json:"department"`
	Experience              *int                      `json:"experience" validate:"omitnil,gte=0"`
	ExperienceInSimilarRole *int                      `json:"experienceInSimilarRole" validate:"omitnil,gte=0"`
	ExperienceWithITSMTools *int                      `json:"experienceWithITSMTools" validate:"omitnil,gte=0"`
	SAPKLevel               *string                   `json:"sapKLevel"`
	Qualifications          *string                   `json:"qualifications"`
	QualificationType       *string                   `json:"qualificationType"`
	QualificationName       *string                   `json:"qualificationName"`
	InstituteName           *string                   `json:"instituteName"`
	YearCompleted           *string                   `json:"yearCompleted" validate:"omitempty,year"`
	Languages               *string                   `json:"languages"`
	WorkExperiences         *[]models.WorkExperience  `json:"workExperiences" validate:"omitnil,dive"`
	CertificateTypes        *[]models.CertificateType `json:"certificateTypes"`
	Skills                  *string                   `json:"skills"`
	Status                  *models.CVStatus          `json:"status" validate:"omitnil,oneof=active pending archived"`
}

func (in Input) validateCreate() error {
	ve := apperr.NewValidation()
	validation.RequireString(ve, "name", in.Name)
	validation.RequireString(ve, "email", in.Email)
	validation.RequireString(ve, "position", in.Position)
	return validation.Into(ve, in).Err()
}

func (in Input) validateUpdate() error {
	return validation.Struct(in)
}

// apply copies every present field onto r.
func (in Input) apply(r *models.CVRecord) {
	setString(&r.Name, in.Name)
	setString(&r.Surname, in.Surname)
	setString(&r.IDPassport, in.IDPassport)
	setString(&r.Gender, in.Gender)
	setString(&r.Email, in.Email)
	setString(&r.Phone, in.Phone)
	setString(&r.Position, in.Position)
	setString(&r.RoleTitle, in.RoleTitle)
	setString(&r.Department, in.Department)
	setInt(&r.Experience, in.Experience)
	setInt(&r.ExperienceInSimilarRole, in.ExperienceInSimilarRole)
	setInt(&r.ExperienceWithITSMTools, in.ExperienceWithITSMTools)
	setString(&r.SAPKLevel, in.SAPKLevel)
	setString(&r.Qualifications, in.Qualifications)
	setString(&r.QualificationType, in.QualificationType)
	setString(&r.QualificationName, in.QualificationName)
	setString(&r.InstituteName, in.InstituteName)
	setString(&r.YearCompleted, in.YearCompleted)
	setString(&r.Languages, in.Languages)
	setString(&r.Skills, in.Skills)
	if in.WorkExperiences != nil {
		r.WorkExperiences = *in.WorkExperiences
	}
	if in.CertificateTypes != nil {
		r.CertificateTypes = *in.CertificateTypes
	}
	if in.Status != nil {
		r.Status = *in.Status
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
