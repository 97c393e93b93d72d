package service

import "mediumish/internal/apperr"

// Errors returned to the HTTP layer. Messages are shown to callers verbatim.
var (
	ErrMissingCredentials = apperr.New(apperr.BadRequest, "username, email and password are required")
	ErrUserExists         = apperr.New(apperr.Conflict, "User already exists")
	ErrInvalidCredentials = apperr.New(apperr.Unauthorized, "Invalid credentials")
	ErrEmailNotFound      = apperr.New(apperr.NotFound, "User with that email does not exist.")
	ErrResetTokenInvalid  = apperr.New(apperr.InvalidOrExpired, "Token is invalid or has expired.")
	ErrPasswordRequired   = apperr.New(apperr.BadRequest, "new password is required")
	ErrPasswordTooLong    = apperr.New(apperr.BadRequest, "password must be at most 72 bytes")
	ErrSendResetEmail     = apperr.New(apperr.Internal, "Error sending email")

	ErrUserNotFound  = apperr.New(apperr.NotFound, "User not found")
	ErrUsernameTaken = apperr.New(apperr.Conflict, "Username already taken")
	ErrBioTooLong    = apperr.New(apperr.BadRequest, "bio must be at most 160 characters")

	ErrPostNotFound        = apperr.New(apperr.NotFound, "Post not found")
	ErrPostFieldsRequired  = apperr.New(apperr.BadRequest, "title and content are required")
	ErrCommentRequired     = apperr.New(apperr.BadRequest, "comment text is required")
	ErrSearchQueryRequired = apperr.New(apperr.BadRequest, "Search query is required")

	ErrSelfFollow = apperr.New(apperr.BadRequest, "You cannot follow yourself")

	ErrListNameRequired = apperr.New(apperr.BadRequest, "list name is required")
)
