package server

import (
	"net/http"

	"github.com/jonathan/resume-builder/internal/resume"
	"github.com/jonathan/resume-builder/internal/types"
)

// sectionRoutes registers the create, read, update and delete routes for
// one section kind under /{kind}.
func sectionRoutes[T any, P resume.EntryPtr[T]](s *Server, section *resume.Section[T, P]) {
	base := "/" + string(section.Kind())
	s.handleProtected("POST "+base, addSectionHandler(section))
	s.handleProtected("GET "+base, getSectionHandler(section))
	s.handleProtected("PUT "+base+"/{id}", updateSectionHandler(section))
	s.handleProtected("PATCH "+base+"/{id}", updateSectionHandler(section))
	s.handleProtected("DELETE "+base+"/{id}", deleteSectionHandler(section))
}

func addSectionHandler[T any, P resume.EntryPtr[T]](section *resume.Section[T, P]) http.HandlerFunc {
	op := "add " + string(section.Kind())
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		entries, err := decodeOneOrMany[T](w, r)
		if err != nil {
			writeError(w, op, err)
			return
		}

		agg, added, err := section.Add(r.Context(), userID, entries)
		if err != nil {
			writeError(w, op, err)
			return
		}

		// Certifications answer with the submitted entries, as stored.
		if section.Kind() == types.KindCertifications {
			successMessage(w, http.StatusCreated, sectionLabel(section.Kind())+" added successfully", added)
			return
		}
		successMessage(w, http.StatusCreated, sectionLabel(section.Kind())+" added successfully", agg)
	}
}

func getSectionHandler[T any, P resume.EntryPtr[T]](section *resume.Section[T, P]) http.HandlerFunc {
	op := "get " + string(section.Kind())
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		agg, err := section.Get(r.Context(), userID)
		if err != nil {
			writeError(w, op, err)
			return
		}
		success(w, http.StatusOK, agg)
	}
}

func updateSectionHandler[T any, P resume.EntryPtr[T]](section *resume.Section[T, P]) http.HandlerFunc {
	op := "update " + string(section.Kind())
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		entryID, err := pathID(r)
		if err != nil {
			writeError(w, op, err)
			return
		}

		var entry T
		if err := decodeJSON(w, r, &entry); err != nil {
			writeError(w, op, err)
			return
		}

		agg, err := section.Update(r.Context(), userID, entryID, entry)
		if err != nil {
			writeError(w, op, err)
			return
		}
		successMessage(w, http.StatusOK, sectionLabel(section.Kind())+" updated successfully", agg)
	}
}

func deleteSectionHandler[T any, P resume.EntryPtr[T]](section *resume.Section[T, P]) http.HandlerFunc {
	op := "delete " + string(section.Kind())
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		entryID, err := pathID(r)
		if err != nil {
			writeError(w, op, err)
			return
		}

		agg, err := section.Delete(r.Context(), userID, entryID)
		if err != nil {
			writeError(w, op, err)
			return
		}
		successMessage(w, http.StatusOK, sectionLabel(section.Kind())+" deleted successfully", agg)
	}
}

func sectionLabel(kind types.SectionKind) string {
	switch kind {
	case types.KindPersonal:
		return "Personal details"
	case types.KindEducation:
		return "Education"
	case types.KindExperience:
		return "Experience"
	case types.KindSkills:
		return "Skills"
	case types.KindProjects:
		return "Project"
	case types.KindCertifications:
		return "Certification"
	default:
		return string(kind)
	}
}
