package domain

import "errors"

var (
	// ErrNotAuthenticated is returned when an unauthenticated profile is made the active user.
	ErrNotAuthenticated = errors.New("user must be authenticated to start a quiz")
	// ErrNotAuthorized is returned when a non-admin tries to change the question bank.
	ErrNotAuthorized = errors.New("only admin users can change questions")
	// ErrInvalidUser is returned when a quiz is started without an authenticated active user.
	ErrInvalidUser = errors.New("invalid or unauthenticated user")
	// ErrNoUserSet is returned when a quiz is finished with no active user.
	ErrNoUserSet = errors.New("user not set")
	// ErrEmptyQuestionBank is returned when finishing needs the first question of an empty bank.
	ErrEmptyQuestionBank = errors.New("question index 0 out of range: question bank is empty")
	// ErrInvalidName is returned when a first or last name is not 1 to 50 characters long.
	ErrInvalidName = errors.New("name must be between 1 and 50 characters")
	// ErrLoadQuestions is the uniform error of the remote question source.
	ErrLoadQuestions = errors.New("failed to load questions from the URL")

	// ErrInvalidUsername is returned when a username breaks the 3-20 [A-Za-z0-9_] rule.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrProfileNotFound indicates no profile is stored under a username.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrInvalidCredentials is returned when a login does not match the stored profile.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrQuestionNotFound indicates a question source has no questions for the requested bank.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrLoginRequired is returned to a websocket client that has not logged in on its connection.
	ErrLoginRequired = errors.New("login required")
)
