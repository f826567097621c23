package types

// Message is a user-facing text identified by a catalog key. Args are
// substituted positionally when the message is rendered for a language.
type Message struct {
	Key  string `json:"key"`
	Args []any  `json:"args,omitempty"`
}

// NewMessage builds a Message for key.
func NewMessage(key string, args ...any) Message {
	return Message{Key: key, Args: args}
}

// NoticeLevel classifies a notice for presentation.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeInfo    NoticeLevel = "info"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient message that is not attached to a form field.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message Message     `json:"message"`
}

// Catalog keys shared between services and handlers.
const (
	MsgFieldRequired      = "field.required"
	MsgFieldMaxLength     = "field.max_length"
	MsgUsernameRequired   = "username.required"
	MsgUsernameMinLength  = "username.min_length"
	MsgUsernameMaxLength  = "username.max_length"
	MsgUsernameInvalid    = "username.invalid"
	MsgUsernameTaken      = "username.taken"
	MsgEmailInvalid       = "email.invalid"
	MsgEmailTaken         = "email.taken"
	MsgPasswordRequired   = "password.required"
	MsgPassword2Required  = "password2.required"
	MsgPasswordsMismatch  = "password.mismatch"
	MsgPasswordLength     = "password.length"
	MsgLoginInvalidForm   = "login.invalid_form"
	MsgLoginInvalid       = "login.invalid_credentials"
	MsgLoginRequired      = "login.required"
	MsgLoggedOut          = "logout.success"
	MsgRegistered         = "register.success"
	MsgQuestionTooShort   = "question.too_short"
	MsgQuestionNotFound   = "question.not_found"
	MsgQuestionDeleted    = "question.deleted"
	MsgQuestionsEmpty     = "question.list_empty"
	MsgDraftsEmpty        = "question.drafts_empty"
	MsgCommentTooShort    = "comment.too_short"
	MsgCommentsEmpty      = "comment.list_empty"
	MsgCommentLoginPrompt = "comment.login_prompt"
)
