package web

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formRequest(values url.Values) *strings.Reader {
	return strings.NewReader(values.Encode())
}

func TestCheckTeacherForm(t *testing.T) {
	tests := []struct {
		name string
		form TeacherForm
		want []string
	}{
		{
			name: "valid",
			form: TeacherForm{CF: "RSSMRA80A01F205X", LastName: "Rossi", BirthCity: "Milano", Kind: "internal"},
		},
		{
			name: "missing everything collects all messages",
			form: TeacherForm{},
			want: []string{
				"Fiscal code is required",
				"Last name is required",
				"Birth city is required",
				"Select a teacher kind",
			},
		},
		{
			name: "unknown kind",
			form: TeacherForm{CF: "RSSMRA80A01F205X", LastName: "Rossi", BirthCity: "Milano", Kind: "guest"},
			want: []string{"Teacher kind must be internal or consultant"},
		},
		{
			name: "fiscal code too long",
			form: TeacherForm{CF: strings.Repeat("X", 17), LastName: "Rossi", BirthCity: "Milano", Kind: "internal"},
			want: []string{"Fiscal code is too long"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checkForm(tt.form))
		})
	}
}

func TestCheckEnrollmentFormGradeBounds(t *testing.T) {
	base := EnrollmentForm{ParticipantCF: "BNCGPP90C03L219K", EditionCode: "GO101-2026"}

	for _, grade := range []int{0, 15, 30} {
		form := base
		g := grade
		form.Grade = &g
		assert.Empty(t, checkForm(form), "grade %d must be accepted", grade)
	}

	for _, grade := range []int{-1, 31, 100} {
		form := base
		g := grade
		form.Grade = &g
		msgs := checkForm(form)
		require.Len(t, msgs, 1, "grade %d must be rejected", grade)
		assert.Equal(t, "Grade must be between 0 and 30", msgs[0])
	}

	// no grade at all is fine: not graded yet
	assert.Empty(t, checkForm(base))
}

func TestCheckEnrollmentFormMissingPrincipals(t *testing.T) {
	msgs := checkForm(EnrollmentForm{})
	assert.Equal(t, []string{"Select a participant", "Select an edition"}, msgs)
}

func TestParseEnrollmentFormGrade(t *testing.T) {
	tests := []struct {
		name    string
		grade   string
		want    *int
		invalid bool
	}{
		{name: "empty means ungraded", grade: "", want: nil},
		{name: "zero is a real grade", grade: "0", want: intPtr(0)},
		{name: "thirty", grade: "30", want: intPtr(30)},
		{name: "not a number", grade: "abc", invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := url.Values{
				"participant_cf": {"BNCGPP90C03L219K"},
				"edition_code":   {"GO101-2026"},
				"grade":          {tt.grade},
			}
			r := httptest.NewRequest("POST", "/enrollments", formRequest(values))
			r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

			form := parseEnrollmentForm(r)
			assert.Equal(t, tt.want, form.Grade)
			assert.Equal(t, tt.invalid, form.gradeInvalid)
			if tt.invalid {
				msgs := checkForm(form)
				require.NotEmpty(t, msgs)
				assert.Equal(t, "Grade must be a whole number", msgs[0])
			}
		})
	}
}

func TestParseTeacherFormNormalizes(t *testing.T) {
	values := url.Values{
		"cf":         {"  rssmra80a01f205x "},
		"first_name": {" Anna "},
		"last_name":  {"Rossi"},
		"birth_city": {"Milano"},
		"kind":       {"internal"},
	}
	r := httptest.NewRequest("POST", "/teachers/new", formRequest(values))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	form := parseTeacherForm(r)
	assert.Equal(t, "RSSMRA80A01F205X", form.CF)
	assert.Equal(t, "Anna", form.FirstName)
}

func intPtr(n int) *int { return &n }
