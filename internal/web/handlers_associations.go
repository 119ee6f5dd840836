package web

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/lbianche/schooladmin/internal/models"
	"github.com/lbianche/schooladmin/internal/store"
)

// qualificationsData renders the qualification list, optionally scoped to
// one teacher, with the dropdowns for the add form.
type qualificationsData struct {
	Rows     []models.QualificationRow
	Stats    *models.QualificationStats
	Teachers []models.TeacherRow
	Courses  []models.Course
	ScopeCF  string
	Form     QualificationForm
}

func (s *Server) qualificationData(r *http.Request, scopeCF string, form QualificationForm) (qualificationsData, error) {
	rows, err := s.service.Store().ListQualifications(r.Context(), scopeCF)
	if err != nil {
		return qualificationsData{}, err
	}
	stats, err := s.service.Store().QualificationStats(r.Context())
	if err != nil {
		return qualificationsData{}, err
	}
	teachers, err := s.service.Store().ListTeachers(r.Context())
	if err != nil {
		return qualificationsData{}, err
	}
	courses, err := s.service.Store().ListCourses(r.Context())
	if err != nil {
		return qualificationsData{}, err
	}
	return qualificationsData{
		Rows:     rows,
		Stats:    stats,
		Teachers: teachers,
		Courses:  courses,
		ScopeCF:  scopeCF,
		Form:     form,
	}, nil
}

func qualificationsURL(scopeCF string) string {
	if scopeCF == "" {
		return "/qualifications"
	}
	return "/qualifications?cf=" + url.QueryEscape(scopeCF)
}

func (s *Server) handleQualificationList(w http.ResponseWriter, r *http.Request) {
	scopeCF := strings.TrimSpace(r.URL.Query().Get("cf"))
	data, err := s.qualificationData(r, scopeCF, QualificationForm{})
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "qualifications.html", "Qualifications", data, nil)
}

func (s *Server) handleQualificationMutate(w http.ResponseWriter, r *http.Request) {
	// The scope travels as a hidden field so a mutation lands back on the
	// same filtered list.
	scopeCF := strings.TrimSpace(r.PostFormValue("scope"))

	switch r.PostFormValue("action") {
	case "add":
		form := parseQualificationForm(r)
		if msgs := checkForm(form); len(msgs) > 0 {
			data, err := s.qualificationData(r, scopeCF, form)
			if err != nil {
				s.renderError(w, r, err)
				return
			}
			s.render(w, r, http.StatusUnprocessableEntity, "qualifications.html", "Qualifications", data, flashErrors(msgs))
			return
		}
		created, err := s.service.Qualify(r.Context(), clientIP(r), models.Qualification(form))
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		if !created {
			data, err := s.qualificationData(r, scopeCF, form)
			if err != nil {
				s.renderError(w, r, err)
				return
			}
			s.render(w, r, http.StatusOK, "qualifications.html", "Qualifications", data,
				flashWarning("This teacher already holds a qualification for this course."))
			return
		}
	case "del":
		form := parseQualificationForm(r)
		deleted, err := s.service.Disqualify(r.Context(), clientIP(r), models.Qualification(form))
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		if !deleted {
			data, err := s.qualificationData(r, scopeCF, QualificationForm{})
			if err != nil {
				s.renderError(w, r, err)
				return
			}
			s.render(w, r, http.StatusOK, "qualifications.html", "Qualifications", data,
				flashWarning("No such qualification to remove."))
			return
		}
	}
	redirect(w, r, qualificationsURL(scopeCF))
}

// enrollmentsData renders the enrollment list, optionally filtered by
// participant and edition, with the dropdowns for the add form.
type enrollmentsData struct {
	Rows         []models.EnrollmentRow
	Stats        *models.EnrollmentStats
	Participants []models.Participant
	Editions     []models.EditionRow
	Filter       store.EnrollmentFilter
	Form         EnrollmentForm
}

func (s *Server) enrollmentData(r *http.Request, filter store.EnrollmentFilter, form EnrollmentForm) (enrollmentsData, error) {
	rows, err := s.service.Store().ListEnrollments(r.Context(), filter)
	if err != nil {
		return enrollmentsData{}, err
	}
	stats, err := s.service.Store().EnrollmentStats(r.Context())
	if err != nil {
		return enrollmentsData{}, err
	}
	participants, err := s.service.Store().ListParticipants(r.Context())
	if err != nil {
		return enrollmentsData{}, err
	}
	editions, err := s.service.Store().ListEditions(r.Context())
	if err != nil {
		return enrollmentsData{}, err
	}
	return enrollmentsData{
		Rows:         rows,
		Stats:        stats,
		Participants: participants,
		Editions:     editions,
		Filter:       filter,
		Form:         form,
	}, nil
}

func enrollmentsURL(f store.EnrollmentFilter) string {
	q := url.Values{}
	if f.ParticipantCF != "" {
		q.Set("cf", f.ParticipantCF)
	}
	if f.EditionCode != "" {
		q.Set("edition", f.EditionCode)
	}
	if len(q) == 0 {
		return "/enrollments"
	}
	return "/enrollments?" + q.Encode()
}

func (s *Server) handleEnrollmentList(w http.ResponseWriter, r *http.Request) {
	filter := store.EnrollmentFilter{
		ParticipantCF: strings.TrimSpace(r.URL.Query().Get("cf")),
		EditionCode:   strings.TrimSpace(r.URL.Query().Get("edition")),
	}
	data, err := s.enrollmentData(r, filter, EnrollmentForm{})
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "enrollments.html", "Enrollments", data, nil)
}

func (s *Server) handleEnrollmentMutate(w http.ResponseWriter, r *http.Request) {
	filter := store.EnrollmentFilter{
		ParticipantCF: strings.TrimSpace(r.PostFormValue("scope_cf")),
		EditionCode:   strings.TrimSpace(r.PostFormValue("scope_edition")),
	}

	switch r.PostFormValue("action") {
	case "add":
		form := parseEnrollmentForm(r)
		if msgs := checkForm(form); len(msgs) > 0 {
			data, err := s.enrollmentData(r, filter, form)
			if err != nil {
				s.renderError(w, r, err)
				return
			}
			s.render(w, r, http.StatusUnprocessableEntity, "enrollments.html", "Enrollments", data, flashErrors(msgs))
			return
		}
		created, err := s.service.Enroll(r.Context(), clientIP(r), form.Enrollment())
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		if !created {
			data, err := s.enrollmentData(r, filter, form)
			if err != nil {
				s.renderError(w, r, err)
				return
			}
			s.render(w, r, http.StatusOK, "enrollments.html", "Enrollments", data,
				flashWarning("This participant is already enrolled in this edition. Update the grade from the list instead."))
			return
		}
	case "upd":
		form := parseEnrollmentForm(r)
		if msgs := checkForm(form); len(msgs) > 0 {
			data, err := s.enrollmentData(r, filter, EnrollmentForm{})
			if err != nil {
				s.renderError(w, r, err)
				return
			}
			s.render(w, r, http.StatusUnprocessableEntity, "enrollments.html", "Enrollments", data, flashErrors(msgs))
			return
		}
		if err := s.service.SetGrade(r.Context(), clientIP(r), form.Enrollment()); err != nil {
			s.renderError(w, r, err)
			return
		}
	case "del":
		form := parseEnrollmentForm(r)
		deleted, err := s.service.Unenroll(r.Context(), clientIP(r), form.ParticipantCF, form.EditionCode)
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		if !deleted {
			data, err := s.enrollmentData(r, filter, EnrollmentForm{})
			if err != nil {
				s.renderError(w, r, err)
				return
			}
			s.render(w, r, http.StatusOK, "enrollments.html", "Enrollments", data,
				flashWarning("No such enrollment to remove."))
			return
		}
	}
	redirect(w, r, enrollmentsURL(filter))
}
