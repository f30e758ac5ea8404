// Package validate holds the pure field validators shared by the client core
// and the sync server. Validators return message keys, not display text; the
// caller resolves keys through its translator.
package validate

import (
	"net/url"
	"regexp"
	"strings"
)

// Field limits. These are user-visible contracts mirrored by the database
// schema; do not change them casually.
const (
	MaxTitleLength    = 500
	MaxURLLength      = 2000
	MaxOutputLength   = 10000
	MaxEmailLength    = 254
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

// Message keys returned in Result.Error.
const (
	KeyTitleRequired = "titleRequired"
	KeyTitleTooLong  = "titleTooLong"
	KeyURLTooLong    = "urlTooLong"
	KeyURLInvalid    = "urlInvalid"
	KeyURLScheme     = "urlScheme"
	KeyOutputTooLong = "outputTooLong"

	KeyEmailRequired           = "emailRequired"
	KeyEmailInvalid            = "emailInvalid"
	KeyEmailTooLong            = "emailTooLong"
	KeyPasswordRequired        = "passwordRequired"
	KeyPasswordTooShort        = "passwordTooShort"
	KeyPasswordTooLong         = "passwordTooLong"
	KeyPasswordConfirmRequired = "passwordConfirmRequired"
	KeyPasswordMismatch        = "passwordMismatch"
)

// Result is the outcome of a single field validation.
type Result struct {
	Valid bool
	// Error is a message key; empty when Valid.
	Error string
}

func ok() Result             { return Result{Valid: true} }
func fail(key string) Result { return Result{Error: key} }

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Title checks a task title: required after trimming, at most 500 runes.
func Title(title string) Result {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return fail(KeyTitleRequired)
	}
	if len([]rune(trimmed)) > MaxTitleLength {
		return fail(KeyTitleTooLong)
	}
	return ok()
}

// URL checks an optional link: empty is valid, otherwise it must be an
// absolute http(s) URL of at most 2000 characters.
func URL(raw string) Result {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ok()
	}
	if len(trimmed) > MaxURLLength {
		return fail(KeyURLTooLong)
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return fail(KeyURLInvalid)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fail(KeyURLScheme)
	}
	return ok()
}

// Output checks the optional reflection note: empty is valid, at most 10000 runes.
func Output(output string) Result {
	if output == "" {
		return ok()
	}
	if len([]rune(output)) > MaxOutputLength {
		return fail(KeyOutputTooLong)
	}
	return ok()
}

// Email checks an email address against a deliberately loose shape; the
// authoritative check is whether the mail arrives.
func Email(email string) Result {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return fail(KeyEmailRequired)
	}
	if !emailPattern.MatchString(trimmed) {
		return fail(KeyEmailInvalid)
	}
	if len(trimmed) > MaxEmailLength {
		return fail(KeyEmailTooLong)
	}
	return ok()
}

// Password checks length bounds. 72 is the bcrypt input ceiling.
func Password(password string) Result {
	if password == "" {
		return fail(KeyPasswordRequired)
	}
	if len(password) < MinPasswordLength {
		return fail(KeyPasswordTooShort)
	}
	if len(password) > MaxPasswordLength {
		return fail(KeyPasswordTooLong)
	}
	return ok()
}

// PasswordConfirm checks that the confirmation matches the primary password.
func PasswordConfirm(password, confirm string) Result {
	if confirm == "" {
		return fail(KeyPasswordConfirmRequired)
	}
	if password != confirm {
		return fail(KeyPasswordMismatch)
	}
	return ok()
}
