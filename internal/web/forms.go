package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/lbianche/schooladmin/internal/models"
)

// validate is shared by all forms; validator collects every violation so a
// page can list them together instead of one at a time.
var validate = validator.New()

// TeacherForm carries the add/edit teacher fields.
type TeacherForm struct {
	CF        string `validate:"required,max=16"`
	FirstName string `validate:"max=64"`
	LastName  string `validate:"required,max=64"`
	BirthCity string `validate:"required,max=64"`
	Kind      string `validate:"required,oneof=internal consultant"`
	Phone     string `validate:"max=20"`
}

func parseTeacherForm(r *http.Request) TeacherForm {
	return TeacherForm{
		CF:        strings.ToUpper(strings.TrimSpace(r.PostFormValue("cf"))),
		FirstName: strings.TrimSpace(r.PostFormValue("first_name")),
		LastName:  strings.TrimSpace(r.PostFormValue("last_name")),
		BirthCity: strings.TrimSpace(r.PostFormValue("birth_city")),
		Kind:      strings.TrimSpace(r.PostFormValue("kind")),
		Phone:     strings.TrimSpace(r.PostFormValue("phone")),
	}
}

func (f TeacherForm) Teacher() models.Teacher {
	return models.Teacher{
		CF:        f.CF,
		FirstName: f.FirstName,
		LastName:  f.LastName,
		BirthCity: f.BirthCity,
		Kind:      f.Kind,
	}
}

// QualificationForm selects a (teacher, course) pair.
type QualificationForm struct {
	TeacherCF  string `validate:"required"`
	CourseCode string `validate:"required"`
}

func parseQualificationForm(r *http.Request) QualificationForm {
	return QualificationForm{
		TeacherCF:  strings.TrimSpace(r.PostFormValue("teacher_cf")),
		CourseCode: strings.TrimSpace(r.PostFormValue("course_code")),
	}
}

// EnrollmentForm selects a (participant, edition) pair with an optional
// grade. Grade stays nil when the field is submitted empty; nil is "not
// graded yet" and is always valid.
type EnrollmentForm struct {
	ParticipantCF string `validate:"required"`
	EditionCode   string `validate:"required"`
	Grade         *int   `validate:"omitnil,min=0,max=30"`

	gradeInvalid bool
}

func parseEnrollmentForm(r *http.Request) EnrollmentForm {
	f := EnrollmentForm{
		ParticipantCF: strings.TrimSpace(r.PostFormValue("participant_cf")),
		EditionCode:   strings.TrimSpace(r.PostFormValue("edition_code")),
	}
	if raw := strings.TrimSpace(r.PostFormValue("grade")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			f.gradeInvalid = true
		} else {
			f.Grade = &n
		}
	}
	return f
}

func (f EnrollmentForm) Enrollment() models.Enrollment {
	return models.Enrollment{
		ParticipantCF: f.ParticipantCF,
		EditionCode:   f.EditionCode,
		Grade:         f.Grade,
	}
}

// CourseForm carries the add-course fields.
type CourseForm struct {
	Code  string `validate:"required,max=16"`
	Title string `validate:"required,max=128"`
}

func parseCourseForm(r *http.Request) CourseForm {
	return CourseForm{
		Code:  strings.ToUpper(strings.TrimSpace(r.PostFormValue("code"))),
		Title: strings.TrimSpace(r.PostFormValue("title")),
	}
}

// EditionForm carries the add-edition fields; the responsible teacher is
// optional and empty means unassigned.
type EditionForm struct {
	Code       string `validate:"required,max=16"`
	CourseCode string `validate:"required"`
	TeacherCF  string
}

func parseEditionForm(r *http.Request) EditionForm {
	return EditionForm{
		Code:       strings.ToUpper(strings.TrimSpace(r.PostFormValue("code"))),
		CourseCode: strings.TrimSpace(r.PostFormValue("course_code")),
		TeacherCF:  strings.TrimSpace(r.PostFormValue("teacher_cf")),
	}
}

func (f EditionForm) Edition() models.Edition {
	e := models.Edition{Code: f.Code, CourseCode: f.CourseCode}
	if f.TeacherCF != "" {
		cf := f.TeacherCF
		e.TeacherCF = &cf
	}
	return e
}

// ParticipantForm carries the add-participant fields.
type ParticipantForm struct {
	CF        string `validate:"required,max=16"`
	FirstName string `validate:"max=64"`
	LastName  string `validate:"required,max=64"`
}

func parseParticipantForm(r *http.Request) ParticipantForm {
	return ParticipantForm{
		CF:        strings.ToUpper(strings.TrimSpace(r.PostFormValue("cf"))),
		FirstName: strings.TrimSpace(r.PostFormValue("first_name")),
		LastName:  strings.TrimSpace(r.PostFormValue("last_name")),
	}
}

// fieldMessages maps "Field.tag" to what the page shows. Unknown
// combinations fall back to a generic per-field message.
var fieldMessages = map[string]string{
	"TeacherCF.required":     "Select a teacher",
	"CourseCode.required":    "Select a course",
	"ParticipantCF.required": "Select a participant",
	"EditionCode.required":   "Select an edition",
	"Grade.min":              "Grade must be between 0 and 30",
	"Grade.max":              "Grade must be between 0 and 30",
	"CF.required":            "Fiscal code is required",
	"CF.max":                 "Fiscal code is too long",
	"LastName.required":      "Last name is required",
	"BirthCity.required":     "Birth city is required",
	"Kind.required":          "Select a teacher kind",
	"Kind.oneof":             "Teacher kind must be internal or consultant",
	"Code.required":          "Code is required",
	"Code.max":               "Code is too long",
	"Title.required":         "Title is required",
}

// checkForm validates a form struct and returns every violated rule as a
// user-facing message. An empty slice means the form is valid.
func checkForm(form any) []string {
	var msgs []string

	if f, ok := form.(EnrollmentForm); ok && f.gradeInvalid {
		msgs = append(msgs, "Grade must be a whole number")
	}

	err := validate.Struct(form)
	if err == nil {
		return msgs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return append(msgs, "Invalid form submission")
	}
	for _, fe := range verrs {
		if msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]; ok {
			msgs = append(msgs, msg)
			continue
		}
		msgs = append(msgs, "Invalid value for "+fe.Field())
	}
	return msgs
}
