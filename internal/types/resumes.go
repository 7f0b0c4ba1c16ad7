package types

import (
	"time"

	"github.com/google/uuid"
)

// Resume layouts understood by the presentation layer.
const (
	LayoutClassic      = "classic"
	LayoutModern       = "modern"
	LayoutMinimal      = "minimal"
	LayoutProfessional = "professional"
	LayoutCreative     = "creative"
)

// ResumeSnapshot is a named, denormalized copy of every section, saved apart
// from the live editable aggregates.
type ResumeSnapshot struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"userId"`
	Name           string          `json:"name"`
	Layout         string          `json:"layout"`
	Personal       []PersonalInfo  `json:"personal"`
	Education      []Education     `json:"education"`
	Experience     []Experience    `json:"experience"`
	Skills         []Skill         `json:"skills"`
	Projects       []Project       `json:"projects"`
	Certifications []Certification `json:"certifications"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// SnapshotInput is the client-editable part of a snapshot.
type SnapshotInput struct {
	Name           string          `json:"name" validate:"notblank,max=200"`
	Layout         string          `json:"layout" validate:"notblank,oneof=classic modern minimal professional creative"`
	Personal       []PersonalInfo  `json:"personal" validate:"dive"`
	Education      []Education     `json:"education" validate:"dive"`
	Experience     []Experience    `json:"experience" validate:"dive"`
	Skills         []Skill         `json:"skills" validate:"dive"`
	Projects       []Project       `json:"projects" validate:"dive"`
	Certifications []Certification `json:"certifications" validate:"dive"`
}

// FromProfileRequest names a snapshot built from the caller's live sections.
type FromProfileRequest struct {
	Name   string `json:"name" validate:"notblank,max=200"`
	Layout string `json:"layout" validate:"notblank,oneof=classic modern minimal professional creative"`
}

// SnapshotSummary is the list view of a snapshot.
type SnapshotSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Layout    string    `json:"layout"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Summary returns the list view of s.
func (s *ResumeSnapshot) Summary() SnapshotSummary {
	return SnapshotSummary{
		ID:        s.ID,
		Name:      s.Name,
		Layout:    s.Layout,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// ApplyInput copies the editable fields of in onto s.
func (s *ResumeSnapshot) ApplyInput(in *SnapshotInput) {
	s.Name = in.Name
	s.Layout = in.Layout
	s.Personal = in.Personal
	s.Education = in.Education
	s.Experience = in.Experience
	s.Skills = in.Skills
	s.Projects = in.Projects
	s.Certifications = in.Certifications
	s.FillEmptySections()
}

// FillEmptySections replaces absent section lists with empty ones so every
// section encodes as a JSON array.
func (s *ResumeSnapshot) FillEmptySections() {
	s.Personal = orEmpty(s.Personal)
	s.Education = orEmpty(s.Education)
	s.Experience = orEmpty(s.Experience)
	s.Skills = orEmpty(s.Skills)
	s.Projects = orEmpty(s.Projects)
	s.Certifications = orEmpty(s.Certifications)
}

func orEmpty[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
