package web

import (
	"errors"
	"net/http"

	"github.com/lbianche/schooladmin/internal/models"
	"github.com/lbianche/schooladmin/internal/school"
	"github.com/lbianche/schooladmin/internal/store"
)

// coursesData renders the course list with its inline add form.
type coursesData struct {
	Courses []models.Course
	Form    CourseForm
}

func (s *Server) courseData(r *http.Request, form CourseForm) (coursesData, error) {
	courses, err := s.service.Store().ListCourses(r.Context())
	return coursesData{Courses: courses, Form: form}, err
}

func (s *Server) handleCourseList(w http.ResponseWriter, r *http.Request) {
	data, err := s.courseData(r, CourseForm{})
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "courses.html", "Courses", data, nil)
}

// handleCourseMutate handles both the add form and the per-row delete
// buttons; the submit button's action value tells them apart.
func (s *Server) handleCourseMutate(w http.ResponseWriter, r *http.Request) {
	switch r.PostFormValue("action") {
	case "add":
		form := parseCourseForm(r)
		if msgs := checkForm(form); len(msgs) > 0 {
			data, err := s.courseData(r, form)
			if err != nil {
				s.renderError(w, r, err)
				return
			}
			s.render(w, r, http.StatusUnprocessableEntity, "courses.html", "Courses", data, flashErrors(msgs))
			return
		}
		created, err := s.service.AddCourse(r.Context(), clientIP(r), models.Course(form))
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		if !created {
			data, err := s.courseData(r, form)
			if err != nil {
				s.renderError(w, r, err)
				return
			}
			s.render(w, r, http.StatusOK, "courses.html", "Courses", data,
				flashWarning("A course with code "+form.Code+" already exists."))
			return
		}
	case "del":
		err := s.service.RemoveCourse(r.Context(), clientIP(r), r.PostFormValue("code"))
		var depErr *school.DependencyError
		switch {
		case errors.As(err, &depErr):
			data, derr := s.courseData(r, CourseForm{})
			if derr != nil {
				s.renderError(w, r, derr)
				return
			}
			s.render(w, r, http.StatusConflict, "courses.html", "Courses", data,
				flashWarning("Cannot delete this course while editions or qualifications refer to it."))
			return
		case errors.Is(err, store.ErrNotFound):
			// Already gone.
		case err != nil:
			s.renderError(w, r, err)
			return
		}
	}
	redirect(w, r, "/courses")
}

// editionsData renders the edition list with the dropdowns for the add form.
type editionsData struct {
	Editions []models.EditionRow
	Courses  []models.Course
	Teachers []models.TeacherRow
	Form     EditionForm
}

func (s *Server) editionData(r *http.Request, form EditionForm) (editionsData, error) {
	editions, err := s.service.Store().ListEditions(r.Context())
	if err != nil {
		return editionsData{}, err
	}
	courses, err := s.service.Store().ListCourses(r.Context())
	if err != nil {
		return editionsData{}, err
	}
	teachers, err := s.service.Store().ListTeachers(r.Context())
	if err != nil {
		return editionsData{}, err
	}
	return editionsData{Editions: editions, Courses: courses, Teachers: teachers, Form: form}, nil
}

func (s *Server) handleEditionList(w http.ResponseWriter, r *http.Request) {
	data, err := s.editionData(r, EditionForm{})
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "editions.html", "Editions", data, nil)
}

func (s *Server) handleEditionMutate(w http.ResponseWriter, r *http.Request) {
	switch r.PostFormValue("action") {
	case "add":
		form := parseEditionForm(r)
		if msgs := checkForm(form); len(msgs) > 0 {
			data, err := s.editionData(r, form)
			if err != nil {
				s.renderError(w, r, err)
				return
			}
			s.render(w, r, http.StatusUnprocessableEntity, "editions.html", "Editions", data, flashErrors(msgs))
			return
		}
		created, err := s.service.AddEdition(r.Context(), clientIP(r), form.Edition())
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		if !created {
			data, err := s.editionData(r, form)
			if err != nil {
				s.renderError(w, r, err)
				return
			}
			s.render(w, r, http.StatusOK, "editions.html", "Editions", data,
				flashWarning("An edition with code "+form.Code+" already exists."))
			return
		}
	case "del":
		err := s.service.RemoveEdition(r.Context(), clientIP(r), r.PostFormValue("code"))
		var depErr *school.DependencyError
		switch {
		case errors.As(err, &depErr):
			data, derr := s.editionData(r, EditionForm{})
			if derr != nil {
				s.renderError(w, r, derr)
				return
			}
			s.render(w, r, http.StatusConflict, "editions.html", "Editions", data,
				flashWarning("Cannot delete this edition while participants are enrolled."))
			return
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			s.renderError(w, r, err)
			return
		}
	}
	redirect(w, r, "/editions")
}

// participantsData renders the participant list with its inline add form.
type participantsData struct {
	Participants []models.Participant
	Form         ParticipantForm
}

func (s *Server) participantData(r *http.Request, form ParticipantForm) (participantsData, error) {
	participants, err := s.service.Store().ListParticipants(r.Context())
	return participantsData{Participants: participants, Form: form}, err
}

func (s *Server) handleParticipantList(w http.ResponseWriter, r *http.Request) {
	data, err := s.participantData(r, ParticipantForm{})
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "participants.html", "Participants", data, nil)
}

func (s *Server) handleParticipantMutate(w http.ResponseWriter, r *http.Request) {
	switch r.PostFormValue("action") {
	case "add":
		form := parseParticipantForm(r)
		if msgs := checkForm(form); len(msgs) > 0 {
			data, err := s.participantData(r, form)
			if err != nil {
				s.renderError(w, r, err)
				return
			}
			s.render(w, r, http.StatusUnprocessableEntity, "participants.html", "Participants", data, flashErrors(msgs))
			return
		}
		created, err := s.service.AddParticipant(r.Context(), clientIP(r), models.Participant(form))
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		if !created {
			data, err := s.participantData(r, form)
			if err != nil {
				s.renderError(w, r, err)
				return
			}
			s.render(w, r, http.StatusOK, "participants.html", "Participants", data,
				flashWarning("A participant with fiscal code "+form.CF+" already exists."))
			return
		}
	case "del":
		err := s.service.RemoveParticipant(r.Context(), clientIP(r), r.PostFormValue("cf"))
		var depErr *school.DependencyError
		switch {
		case errors.As(err, &depErr):
			data, derr := s.participantData(r, ParticipantForm{})
			if derr != nil {
				s.renderError(w, r, derr)
				return
			}
			s.render(w, r, http.StatusConflict, "participants.html", "Participants", data,
				flashWarning("Cannot delete this participant while enrollments exist."))
			return
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			s.renderError(w, r, err)
			return
		}
	}
	redirect(w, r, "/participants")
}
