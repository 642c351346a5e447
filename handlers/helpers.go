package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goodplay/goodplay-backend/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// envelope is the uniform response body: {"success": ..., "message": ...,
// "data": ...}.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	js, err := json.Marshal(body)
	if err != nil {
		slog.Error("failed to marshal response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)
}

func okResponse(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

func serverErrorResponse(w http.ResponseWriter, err error) {
	slog.Error("internal server error", slog.Any("error", err))
	errorResponse(w, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}

func badRequestResponse(w http.ResponseWriter, err error) {
	errorResponse(w, http.StatusBadRequest, err.Error())
}

// objectIDParam extracts a URL parameter as a Mongo ObjectID.
func objectIDParam(r *http.Request, name string) (primitive.ObjectID, error) {
	raw := chi.URLParam(r, name)
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid %s parameter", name)
	}
	return id, nil
}

func queryInt64(r *http.Request, name string, fallback int64) int64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		// Negative skips and limits are invalid in pagination queries.
		return fallback
	}
	return v
}

// mapServiceErrorToHTTP converts service layer errors into HTTP responses.
func mapServiceErrorToHTTP(w http.ResponseWriter, err error) {
	switch {
	// Missing resources
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrWalletNotFound),
		errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrTournamentNotFound),
		errors.Is(err, services.ErrOnlusNotFound),
		errors.Is(err, services.ErrApplicationNotFound),
		errors.Is(err, services.ErrModeNotFound),
		errors.Is(err, services.ErrAchievementNotFound),
		errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrPaymentNotFound):
		errorResponse(w, http.StatusNotFound, err.Error())

	// Conflicts
	case errors.Is(err, services.ErrUserEmailConflict),
		errors.Is(err, services.ErrUserNicknameConflict),
		errors.Is(err, services.ErrTeamNameConflict),
		errors.Is(err, services.ErrTournamentNameConflict),
		errors.Is(err, services.ErrTeamAlreadyEnrolled),
		errors.Is(err, services.ErrRewardAlreadyClaimed),
		errors.Is(err, services.ErrSessionAlreadyCredited),
		errors.Is(err, services.ErrTournamentFull),
		errors.Is(err, services.ErrTeamFull):
		errorResponse(w, http.StatusConflict, err.Error())

	// Validation and business rules
	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrEmailRequired),
		errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrTeamNameRequired),
		errors.Is(err, services.ErrTeamNotRecruiting),
		errors.Is(err, services.ErrUserAlreadyInTeam),
		errors.Is(err, services.ErrUserNotInTeam),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrDailyLimitExceeded),
		errors.Is(err, services.ErrInsufficientCredits),
		errors.Is(err, services.ErrOnlusNotEligible),
		errors.Is(err, services.ErrResetTokenInvalid),
		errors.Is(err, services.ErrAchievementNotCompleted),
		errors.Is(err, services.ErrTournamentNotEnoughTeams),
		errors.Is(err, services.ErrTournamentNotAcceptingTeams),
		errors.Is(err, services.ErrTournamentNotActive),
		errors.Is(err, services.ErrTournamentInvalidDateRange),
		errors.Is(err, services.ErrTournamentInvalidStatusTransition),
		errors.Is(err, services.ErrApplicationNotDraft),
		errors.Is(err, services.ErrApplicationNotUnderReview),
		errors.Is(err, services.ErrApplicationMissingDocument):
		errorResponse(w, http.StatusBadRequest, err.Error())

	// Authentication and authorization
	case errors.Is(err, services.ErrAuthInvalidCredentials),
		errors.Is(err, services.ErrWebhookSignatureInvalid),
		errors.Is(err, services.ErrWebhookTimestampStale):
		errorResponse(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrForbiddenOperation):
		errorResponse(w, http.StatusForbidden, err.Error())

	case errors.Is(err, services.ErrStorageNotConfigured):
		errorResponse(w, http.StatusServiceUnavailable, err.Error())

	default:
		serverErrorResponse(w, err)
	}
}
