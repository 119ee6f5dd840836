package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lbianche/schooladmin/internal/models"
	"github.com/lbianche/schooladmin/internal/store"
)

// teacherFormData renders both the add and the edit form.
type teacherFormData struct {
	Form    TeacherForm
	Editing bool
	Phones  []string
	Kinds   []string
}

// teacherDeleteData is the delete-confirmation page: the teacher plus the
// dependent rows the cascade will resolve.
type teacherDeleteData struct {
	Teacher *models.Teacher
	Deps    *models.TeacherDependencies
}

func (s *Server) handleTeacherList(w http.ResponseWriter, r *http.Request) {
	rows, err := s.service.Store().ListTeachers(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "teachers.html", "Teachers", rows, nil)
}

func (s *Server) handleTeacherNew(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "teacher_form.html", "New teacher", teacherFormData{
		Kinds: models.TeacherKinds,
	}, nil)
}

func (s *Server) handleTeacherCreate(w http.ResponseWriter, r *http.Request) {
	form := parseTeacherForm(r)
	data := teacherFormData{Form: form, Kinds: models.TeacherKinds}

	if msgs := checkForm(form); len(msgs) > 0 {
		s.render(w, r, http.StatusUnprocessableEntity, "teacher_form.html", "New teacher", data, flashErrors(msgs))
		return
	}

	created, err := s.service.AddTeacher(r.Context(), clientIP(r), form.Teacher(), form.Phone)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	if !created {
		s.render(w, r, http.StatusOK, "teacher_form.html", "New teacher", data,
			flashWarning("A teacher with fiscal code "+form.CF+" already exists."))
		return
	}
	redirect(w, r, "/teachers")
}

func (s *Server) handleTeacherEdit(w http.ResponseWriter, r *http.Request) {
	cf := chi.URLParam(r, "cf")
	t, err := s.service.Store().GetTeacher(r.Context(), cf)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	if t == nil {
		redirect(w, r, "/teachers")
		return
	}
	phones, err := s.service.Store().ListPhones(r.Context(), cf)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "teacher_form.html", "Edit teacher", teacherFormData{
		Form: TeacherForm{
			CF:        t.CF,
			FirstName: t.FirstName,
			LastName:  t.LastName,
			BirthCity: t.BirthCity,
			Kind:      t.Kind,
		},
		Editing: true,
		Phones:  phones,
		Kinds:   models.TeacherKinds,
	}, nil)
}

func (s *Server) handleTeacherUpdate(w http.ResponseWriter, r *http.Request) {
	form := parseTeacherForm(r)
	// The key comes from the URL; the form cannot rename a teacher.
	form.CF = chi.URLParam(r, "cf")

	if msgs := checkForm(form); len(msgs) > 0 {
		phones, _ := s.service.Store().ListPhones(r.Context(), form.CF)
		s.render(w, r, http.StatusUnprocessableEntity, "teacher_form.html", "Edit teacher", teacherFormData{
			Form:    form,
			Editing: true,
			Phones:  phones,
			Kinds:   models.TeacherKinds,
		}, flashErrors(msgs))
		return
	}

	if err := s.service.UpdateTeacher(r.Context(), clientIP(r), form.Teacher()); err != nil {
		s.renderError(w, r, err)
		return
	}
	redirect(w, r, "/teachers")
}

func (s *Server) handleTeacherDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	cf := chi.URLParam(r, "cf")
	t, err := s.service.Store().GetTeacher(r.Context(), cf)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	if t == nil {
		redirect(w, r, "/teachers")
		return
	}
	deps, err := s.service.Store().TeacherDependencies(r.Context(), cf)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "teacher_delete.html", "Delete teacher", teacherDeleteData{
		Teacher: t,
		Deps:    deps,
	}, nil)
}

func (s *Server) handleTeacherDelete(w http.ResponseWriter, r *http.Request) {
	cf := chi.URLParam(r, "cf")
	_, err := s.service.RemoveTeacher(r.Context(), clientIP(r), cf)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Already gone, the list the user lands on shows that.
			redirect(w, r, "/teachers")
			return
		}
		s.renderError(w, r, err)
		return
	}
	redirect(w, r, "/teachers")
}

// handleTeacherPhones adds or removes a phone number from the edit page.
func (s *Server) handleTeacherPhones(w http.ResponseWriter, r *http.Request) {
	cf := chi.URLParam(r, "cf")
	number := r.PostFormValue("number")
	back := "/teachers/" + cf + "/edit"

	var err error
	switch r.PostFormValue("action") {
	case "add":
		if number != "" {
			_, err = s.service.AddPhone(r.Context(), clientIP(r), cf, number)
		}
	case "del":
		_, err = s.service.RemovePhone(r.Context(), clientIP(r), cf, number)
	}
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	redirect(w, r, back)
}
