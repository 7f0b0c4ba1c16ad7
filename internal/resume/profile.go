package resume

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/types"
	"golang.org/x/sync/errgroup"
)

// Sections holds one service per section kind over a shared store.
type Sections struct {
	Personal       *Section[types.PersonalInfo, *types.PersonalInfo]
	Education      *Section[types.Education, *types.Education]
	Experience     *Section[types.Experience, *types.Experience]
	Skills         *Section[types.Skill, *types.Skill]
	Projects       *Section[types.Project, *types.Project]
	Certifications *Section[types.Certification, *types.Certification]
}

// NewSections creates the services for every section kind.
func NewSections(store SectionStore) *Sections {
	return &Sections{
		Personal:       NewSection[types.PersonalInfo](types.KindPersonal, store),
		Education:      NewSection[types.Education](types.KindEducation, store),
		Experience:     NewSection[types.Experience](types.KindExperience, store),
		Skills:         NewSection[types.Skill](types.KindSkills, store),
		Projects:       NewSection[types.Project](types.KindProjects, store),
		Certifications: NewSection[types.Certification](types.KindCertifications, store),
	}
}

// Profile reads every section of the user concurrently. Sections that were
// never written come back as empty lists.
func (s *Sections) Profile(ctx context.Context, userID uuid.UUID) (*types.Profile, error) {
	profile := &types.Profile{UserID: userID}

	// Each goroutine writes a distinct field, so no locking is needed.
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		profile.Personal, err = s.Personal.Entries(gCtx, userID)
		return err
	})
	g.Go(func() (err error) {
		profile.Education, err = s.Education.Entries(gCtx, userID)
		return err
	})
	g.Go(func() (err error) {
		profile.Experience, err = s.Experience.Entries(gCtx, userID)
		return err
	})
	g.Go(func() (err error) {
		profile.Skills, err = s.Skills.Entries(gCtx, userID)
		return err
	})
	g.Go(func() (err error) {
		profile.Projects, err = s.Projects.Entries(gCtx, userID)
		return err
	})
	g.Go(func() (err error) {
		profile.Certifications, err = s.Certifications.Entries(gCtx, userID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return profile, nil
}
