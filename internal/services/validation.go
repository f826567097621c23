package services

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/qaforum/apiserver/types"
)

const (
	usernameMinLength = 5
	usernameMaxLength = 30
	nameMaxLength     = 150
	emailMaxLength    = 254

	// Passwords must be strictly longer than passwordMinLength.
	passwordMinLength = 8
	passwordMaxLength = 30
	// bcrypt ignores input past this many bytes.
	passwordMaxBytes = 72

	// Question and comment texts must be strictly longer than their minimum.
	questionMinLength = 15
	questionMaxLength = 150
	commentMinLength  = 3
	commentMaxLength  = 500
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

// RegistrationForm is the input of a sign-up.
type RegistrationForm struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

// normalize trims the text fields. Passwords are kept as typed.
func (f RegistrationForm) normalize() RegistrationForm {
	f.Username = strings.TrimSpace(f.Username)
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.TrimSpace(f.Email)
	return f
}

// validateRegistration runs every field rule that does not need the store.
func validateRegistration(f RegistrationForm) *ValidationError {
	verr := &ValidationError{}

	switch n := utf8.RuneCountInString(f.Username); {
	case n == 0:
		verr.Add("username", types.NewMessage(types.MsgUsernameRequired))
	default:
		if n < usernameMinLength {
			verr.Add("username", types.NewMessage(types.MsgUsernameMinLength))
		}
		if n > usernameMaxLength {
			verr.Add("username", types.NewMessage(types.MsgUsernameMaxLength))
		}
		if !usernamePattern.MatchString(f.Username) {
			verr.Add("username", types.NewMessage(types.MsgUsernameInvalid))
		}
	}

	checkMaxLength(verr, "first_name", f.FirstName, nameMaxLength)
	checkMaxLength(verr, "last_name", f.LastName, nameMaxLength)

	if f.Email == "" {
		verr.Add("email", types.NewMessage(types.MsgFieldRequired))
	} else if !validEmail(f.Email) {
		verr.Add("email", types.NewMessage(types.MsgEmailInvalid))
	} else {
		checkMaxLength(verr, "email", f.Email, emailMaxLength)
	}

	if f.Password == "" {
		verr.Add("password", types.NewMessage(types.MsgPasswordRequired))
	}
	if f.Password2 == "" {
		verr.Add("password2", types.NewMessage(types.MsgPassword2Required))
	}
	if f.Password != "" && f.Password2 != "" {
		var msg string
		if f.Password != f.Password2 {
			msg = types.MsgPasswordsMismatch
		} else if n := utf8.RuneCountInString(f.Password); n <= passwordMinLength || n > passwordMaxLength || len(f.Password) > passwordMaxBytes {
			msg = types.MsgPasswordLength
		}
		if msg != "" {
			verr.Add("password", types.NewMessage(msg))
			verr.Add("password2", types.NewMessage(msg))
		}
	}

	return verr
}

// validateQuestionText trims text and checks the question length rules.
func validateQuestionText(text string) (string, error) {
	return validateText("question_text", text, questionMinLength, questionMaxLength, types.MsgQuestionTooShort)
}

// validateCommentText trims text and checks the comment length rules.
func validateCommentText(text string) (string, error) {
	return validateText("comment_text", text, commentMinLength, commentMaxLength, types.MsgCommentTooShort)
}

func validateText(field, text string, minExclusive, max int, tooShort string) (string, error) {
	text = strings.TrimSpace(text)
	verr := &ValidationError{}
	n := utf8.RuneCountInString(text)
	switch {
	case n == 0:
		verr.Add(field, types.NewMessage(types.MsgFieldRequired))
	case n <= minExclusive:
		verr.Add(field, types.NewMessage(tooShort))
	default:
		checkMaxLength(verr, field, text, max)
	}
	return text, verr.Err()
}

func checkMaxLength(verr *ValidationError, field, value string, max int) {
	if n := utf8.RuneCountInString(value); n > max {
		verr.Add(field, types.NewMessage(types.MsgFieldMaxLength, max, n))
	}
}

// validEmail accepts a bare address whose domain has a dot, or localhost.
func validEmail(value string) bool {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value || addr.Name != "" {
		return false
	}
	at := strings.LastIndexByte(value, '@')
	if at <= 0 {
		return false
	}
	domain := value[at+1:]
	if domain == "localhost" {
		return true
	}
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}
