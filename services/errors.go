package services

import "errors"

// Shared errors used across services and the HTTP mapping layer.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed       = errors.New("validation failed")
	ErrPasswordTooShort       = errors.New("password must be at least 8 characters")
	ErrEmailRequired          = errors.New("email is required")
	ErrInvalidEmail           = errors.New("email address is invalid")
	ErrTeamNameRequired       = errors.New("team name is required")
	ErrTeamNotRecruiting      = errors.New("team is not recruiting")
	ErrTeamFull               = errors.New("team has reached its member limit")
	ErrUserAlreadyInTeam      = errors.New("user is already in a team")
	ErrUserNotInTeam          = errors.New("user is not a member of this team")
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrDailyLimitExceeded     = errors.New("daily donation limit exceeded")
	ErrInsufficientCredits    = errors.New("insufficient credits")
	ErrSessionAlreadyCredited = errors.New("session has already been converted to credits")
	ErrOnlusNotEligible       = errors.New("organization cannot receive donations")
	ErrResetTokenInvalid      = errors.New("invalid or expired password reset token")

	// Conflicts
	ErrUserEmailConflict       = errors.New("email address is already in use")
	ErrUserNicknameConflict    = errors.New("nickname is already in use")
	ErrTeamNameConflict        = errors.New("team name is already in use")
	ErrTournamentNameConflict  = errors.New("tournament name already exists")
	ErrTeamAlreadyEnrolled     = errors.New("team is already enrolled in this tournament")
	ErrRewardAlreadyClaimed    = errors.New("achievement reward already claimed")
	ErrAchievementNotCompleted = errors.New("achievement is not completed yet")

	// Authentication and authorization
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")

	// Entity-specific not-found errors (more context than ErrNotFound)
	ErrUserNotFound        = errors.New("user not found")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrTeamNotFound        = errors.New("team not found")
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrOnlusNotFound       = errors.New("onlus organization not found")
	ErrApplicationNotFound = errors.New("onlus application not found")
	ErrModeNotFound        = errors.New("game mode not found")
	ErrAchievementNotFound = errors.New("achievement not found")
	ErrSessionNotFound     = errors.New("game session not found")
	ErrPaymentNotFound     = errors.New("payment intent not found")

	// Tournament lifecycle
	ErrTournamentNotEnoughTeams          = errors.New("tournament needs at least two enrolled teams to start")
	ErrTournamentFull                    = errors.New("tournament enrollment is full")
	ErrTournamentNotAcceptingTeams       = errors.New("tournament is not accepting team enrollment")
	ErrTournamentNotActive               = errors.New("tournament is not active")
	ErrTournamentInvalidDateRange        = errors.New("tournament end date must be after start date")
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")

	// ONLUS application lifecycle
	ErrApplicationNotDraft        = errors.New("application has already been submitted")
	ErrApplicationNotUnderReview  = errors.New("application is not under review")
	ErrApplicationMissingDocument = errors.New("application requires at least one compliance document")

	// Payments
	ErrWebhookSignatureInvalid = errors.New("webhook signature verification failed")
	ErrWebhookTimestampStale   = errors.New("webhook timestamp outside tolerance")

	// Object storage
	ErrStorageNotConfigured = errors.New("object storage is not configured")
)
