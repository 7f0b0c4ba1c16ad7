package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SectionKind identifies one resume section. Each user owns at most one
// aggregate per kind.
type SectionKind string

const (
	KindPersonal       SectionKind = "personal"
	KindEducation      SectionKind = "education"
	KindExperience     SectionKind = "experience"
	KindSkills         SectionKind = "skills"
	KindProjects       SectionKind = "projects"
	KindCertifications SectionKind = "certifications"
)

// AllSectionKinds lists every section kind in display order.
var AllSectionKinds = []SectionKind{
	KindPersonal,
	KindEducation,
	KindExperience,
	KindSkills,
	KindProjects,
	KindCertifications,
}

// Valid reports whether k is a known section kind.
func (k SectionKind) Valid() bool {
	for _, known := range AllSectionKinds {
		if k == known {
			return true
		}
	}
	return false
}

// PersonalInfo holds the contact block at the top of a resume.
type PersonalInfo struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"fullname" validate:"notblank"`
	Email    string    `json:"email" validate:"notblank,email"`
	Phone    string    `json:"phone" validate:"notblank"`
	Address  string    `json:"address,omitempty"`
	LinkedIn string    `json:"linkedin,omitempty"`
	GitHub   string    `json:"github,omitempty"`
	Website  string    `json:"website,omitempty"`
	Summary  string    `json:"summary,omitempty"`
}

// Education is one degree or course of study.
type Education struct {
	ID             uuid.UUID `json:"id"`
	Degree         string    `json:"degree" validate:"notblank"`
	Institution    string    `json:"institution" validate:"notblank"`
	FieldOfStudy   string    `json:"fieldofstudy,omitempty"`
	StartYear      int       `json:"startyear,omitempty" validate:"omitempty,gte=1900,lte=2100"`
	GraduationYear int       `json:"graduationyear" validate:"required,gte=1900,lte=2100"`
	Percentage     *float64  `json:"percentage" validate:"required,gte=0,lte=100"`
}

// Experience is one position held.
type Experience struct {
	ID                uuid.UUID `json:"id"`
	JobTitle          string    `json:"jobtitle" validate:"notblank"`
	CompanyName       string    `json:"companyname" validate:"notblank"`
	YearsOfExperience *float64  `json:"yearsofexperience" validate:"required,gte=0"`
	Description       string    `json:"description" validate:"notblank"`
	Location          string    `json:"location,omitempty"`
	StartDate         string    `json:"startdate,omitempty"`
	EndDate           string    `json:"enddate,omitempty"`
}

// Skill groups skill names under a category such as "Languages".
type Skill struct {
	ID        uuid.UUID `json:"id"`
	SkillType string    `json:"skilltype" validate:"notblank"`
	SkillName []string  `json:"skillname" validate:"required,min=1,dive,notblank"`
}

// Project is a personal or professional project.
type Project struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title" validate:"notblank"`
	Description      string    `json:"description" validate:"notblank"`
	TechnologiesUsed []string  `json:"technologiesUsed" validate:"required,min=1,dive,notblank"`
	Link             string    `json:"link,omitempty" validate:"omitempty,url"`
}

// Certification is a credential issued by an organization.
type Certification struct {
	ID                  uuid.UUID `json:"id"`
	CertificationName   string    `json:"certificationName" validate:"notblank"`
	IssuingOrganization string    `json:"issuingOrganization" validate:"notblank"`
	DateObtained        string    `json:"dateObtained" validate:"notblank"`
	CertificationID     string    `json:"certificationId" validate:"notblank"`
	ExpirationDate      string    `json:"expirationDate,omitempty"`
	CredentialURL       string    `json:"credentialUrl,omitempty" validate:"omitempty,url"`
}

// Entry ID accessors. Section services use these to assign and match ids
// without knowing the concrete entry type.

func (e *PersonalInfo) EntryID() uuid.UUID       { return e.ID }
func (e *PersonalInfo) SetEntryID(id uuid.UUID)  { e.ID = id }
func (e *Education) EntryID() uuid.UUID          { return e.ID }
func (e *Education) SetEntryID(id uuid.UUID)     { e.ID = id }
func (e *Experience) EntryID() uuid.UUID         { return e.ID }
func (e *Experience) SetEntryID(id uuid.UUID)    { e.ID = id }
func (e *Skill) EntryID() uuid.UUID              { return e.ID }
func (e *Skill) SetEntryID(id uuid.UUID)         { e.ID = id }
func (e *Project) EntryID() uuid.UUID            { return e.ID }
func (e *Project) SetEntryID(id uuid.UUID)       { e.ID = id }
func (e *Certification) EntryID() uuid.UUID      { return e.ID }
func (e *Certification) SetEntryID(id uuid.UUID) { e.ID = id }

// Aggregate is the per-user document for one section kind. Entries keep
// insertion order.
type Aggregate[T any] struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Kind      SectionKind
	Entries   []T
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MarshalJSON renders the entries under the section's own key, e.g.
// {"userId": "...", "experience": [...]}.
func (a Aggregate[T]) MarshalJSON() ([]byte, error) {
	entries := a.Entries
	if entries == nil {
		entries = []T{}
	}
	return json.Marshal(map[string]any{
		"id":           a.ID,
		"userId":       a.UserID,
		string(a.Kind): entries,
		"createdAt":    a.CreatedAt,
		"updatedAt":    a.UpdatedAt,
	})
}

// Profile is every live section of one user, as edited in the form editor.
type Profile struct {
	UserID         uuid.UUID       `json:"userId"`
	Personal       []PersonalInfo  `json:"personal"`
	Education      []Education     `json:"education"`
	Experience     []Experience    `json:"experience"`
	Skills         []Skill         `json:"skills"`
	Projects       []Project       `json:"projects"`
	Certifications []Certification `json:"certifications"`
}
