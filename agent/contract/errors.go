package contract

import "errors"

var (
	ErrValidation           = errors.New("validation failed")
	ErrUserNotFound         = errors.New("user not found")
	ErrTaskNotFound         = errors.New("task not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrUnknownTool          = errors.New("unknown tool")
	ErrEngineUnavailable    = errors.New("reasoning engine unavailable")
)
