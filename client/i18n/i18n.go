// Package i18n resolves user-facing message keys to translated strings.
// The core packages never embed display text; they carry keys and accept a
// Translator capability from whoever owns the UI.
package i18n

// Translator resolves a message key to display text. Unknown keys resolve to
// the key itself so a missing entry is visible instead of silent.
type Translator func(key string) string

// Bundle holds the message table for one language.
type Bundle struct {
	language string
	messages map[string]string
}

// Languages supported out of the box.
const (
	English  = "en"
	Japanese = "ja"
)

// New returns a bundle for the given language, falling back to English.
func New(language string) *Bundle {
	messages, ok := tables[language]
	if !ok {
		language = English
		messages = tables[English]
	}
	return &Bundle{language: language, messages: messages}
}

// Language returns the bundle's language code.
func (b *Bundle) Language() string { return b.language }

// T resolves a key.
func (b *Bundle) T(key string) string {
	if b == nil {
		return key
	}
	if msg, ok := b.messages[key]; ok {
		return msg
	}
	return key
}

// Translate exposes T as a Translator value.
func (b *Bundle) Translate() Translator { return b.T }

var tables = map[string]map[string]string{
	English: {
		"error":      "Error",
		"inputError": "Input Error",
		"today":      "Today",
		"yesterday":  "Yesterday",

		"fetchFailed":      "Failed to fetch tasks",
		"addFailed":        "Failed to add the task",
		"loginRequired":    "Sign in required",
		"toggleFailed":     "Failed to update the task",
		"deleteFailed":     "Failed to delete the task",
		"outputSaveFailed": "Failed to save the output",
		"urlSaveFailed":    "Failed to save the URL",

		"titleRequired": "Please enter a task",
		"titleTooLong":  "Tasks must be 500 characters or less",
		"urlTooLong":    "URLs must be 2000 characters or less",
		"urlInvalid":    "The URL format is invalid",
		"urlScheme":     "URLs must start with http:// or https://",
		"outputTooLong": "Outputs must be 10000 characters or less",

		"emailRequired":           "Please enter an email address",
		"emailInvalid":            "The email address format is invalid",
		"emailTooLong":            "The email address is too long",
		"passwordRequired":        "Please enter a password",
		"passwordTooShort":        "Passwords must be at least 6 characters",
		"passwordTooLong":         "Passwords must be 72 characters or less",
		"passwordConfirmRequired": "Please confirm your password",
		"passwordMismatch":        "Passwords do not match",

		"userNotFound":        "User not found",
		"sessionNotFound":     "Session not found",
		"deleteAccountFailed": "Failed to delete the account",
	},
	Japanese: {
		"error":      "エラー",
		"inputError": "入力エラー",
		"today":      "今日",
		"yesterday":  "昨日",

		"fetchFailed":      "Todoの取得に失敗しました",
		"addFailed":        "Todoの追加に失敗しました",
		"loginRequired":    "ログインが必要です",
		"toggleFailed":     "Todoの更新に失敗しました",
		"deleteFailed":     "Todoの削除に失敗しました",
		"outputSaveFailed": "アウトプットの保存に失敗しました",
		"urlSaveFailed":    "URLの保存に失敗しました",

		"titleRequired": "タスクを入力してください",
		"titleTooLong":  "タスクは500文字以内で入力してください",
		"urlTooLong":    "URLは2000文字以内で入力してください",
		"urlInvalid":    "URLの形式が正しくありません",
		"urlScheme":     "URLはhttp://またはhttps://で始まる必要があります",
		"outputTooLong": "アウトプットは10000文字以内で入力してください",

		"emailRequired":           "メールアドレスを入力してください",
		"emailInvalid":            "メールアドレスの形式が正しくありません",
		"emailTooLong":            "メールアドレスが長すぎます",
		"passwordRequired":        "パスワードを入力してください",
		"passwordTooShort":        "パスワードは6文字以上で入力してください",
		"passwordTooLong":         "パスワードは72文字以内で入力してください",
		"passwordConfirmRequired": "パスワード確認を入力してください",
		"passwordMismatch":        "パスワードが一致しません",

		"userNotFound":        "ユーザーが見つかりません",
		"sessionNotFound":     "セッションが見つかりません",
		"deleteAccountFailed": "アカウントの削除に失敗しました",
	},
}
