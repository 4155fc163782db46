package importer

// errors.go maps run errors to user-facing messages with codes for support
// reference. The summary screen prints the code next to every failed field.
//
// Error codes are grouped by category:
//
//	AUTH001 - Credentials rejected by the authorization endpoint
//	AUTH002 - Authorization endpoint returned an error or unreadable token
//	AUTH003 - Any other failure while obtaining a credential
//	SUB001  - Field rejected as unauthorized (token expired or revoked)
//	SUB002  - Field rejected as invalid (4xx)
//	SUB003  - Rate limit reached (429)
//	SUB004  - Server error (5xx)
//	NET001  - Request never reached the server (API or token endpoint)
//	VAL001  - Invalid name
//	VAL002  - Invalid label
//	VAL003  - Invalid field or input type
//	VAL004  - Missing required column
//	VAL005  - Malformed row
//	ERR000  - Anything else

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/halofields/internal/auth"
	"github.com/JonMunkholm/halofields/internal/customfield"
	"github.com/JonMunkholm/halofields/internal/fieldapi"
	"github.com/JonMunkholm/halofields/internal/source"
)

// UserMessage is a user-friendly rendering of an error.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the run log for details",
	Code:    "ERR000",
}

// MapError converts an error from loading, authorizing or submitting into a
// UserMessage. It returns the zero value for nil.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var (
		subErr   *fieldapi.SubmissionError
		tErr     *fieldapi.TransportError
		tokenErr *auth.TokenError
		cfErr    *customfield.Error
		rowErr   *source.RowError
	)

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return UserMessage{
			Message: "The client id or secret was rejected",
			Action:  "Check CLIENT_ID and CLIENT_SECRET",
			Code:    "AUTH001",
		}
	case errors.Is(err, auth.ErrTokenRequest):
		return UserMessage{
			Message: "The authorization endpoint could not be reached",
			Action:  "Check network connectivity and BASE_URL",
			Code:    "NET001",
		}
	case errors.As(err, &tokenErr), errors.Is(err, auth.ErrMalformedToken):
		return UserMessage{
			Message: "The authorization server did not issue a usable token",
			Action:  "Check BASE_URL and the API application's permissions",
			Code:    "AUTH002",
		}

	case errors.As(err, &subErr):
		return mapSubmission(subErr)
	case errors.As(err, &tErr):
		return UserMessage{
			Message: "The request could not reach the server",
			Action:  "Check network connectivity and BASE_URL, then retry the failed fields",
			Code:    "NET001",
		}

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return UserMessage{
			Message: "The run was interrupted",
			Action:  "Run again to submit the remaining fields",
			Code:    "ERR001",
		}

	case errors.As(err, &cfErr):
		return mapValidation(cfErr)
	case errors.Is(err, source.ErrMissingColumn), errors.Is(err, source.ErrNoHeader):
		return UserMessage{
			Message: "A required column is missing from the source file",
			Action:  "The header must name: name, label, field_type_id, input_type_id, selection_options",
			Code:    "VAL004",
		}
	case errors.As(err, &rowErr):
		return UserMessage{
			Message: fmt.Sprintf("Row %d could not be read", rowErr.Line),
			Action:  "Check the row's column count and numeric ids",
			Code:    "VAL005",
		}
	}

	var credErr *fieldapi.CredentialError
	if errors.As(err, &credErr) {
		return UserMessage{
			Message: "A credential could not be obtained",
			Action:  "Check connectivity to the authorization endpoint",
			Code:    "AUTH003",
		}
	}

	return defaultMessage
}

func mapSubmission(err *fieldapi.SubmissionError) UserMessage {
	switch {
	case err.StatusCode == http.StatusUnauthorized, err.StatusCode == http.StatusForbidden:
		return UserMessage{
			Message: "The API rejected the credential",
			Action:  "Check the API application's permissions, then retry the failed fields",
			Code:    "SUB001",
		}
	case err.StatusCode == http.StatusTooManyRequests:
		return UserMessage{
			Message: "The API rate limit was reached",
			Action:  "Wait a few minutes or raise SUBMIT_DELAY, then retry the failed fields",
			Code:    "SUB003",
		}
	case err.StatusCode >= 500:
		return UserMessage{
			Message: "The server failed to create the field",
			Action:  "Retry the failed fields later",
			Code:    "SUB004",
		}
	default:
		return UserMessage{
			Message: "The server rejected the field definition",
			Action:  "Check the field's name, type and options",
			Code:    "SUB002",
		}
	}
}

func mapValidation(err *customfield.Error) UserMessage {
	switch err.Stage {
	case customfield.StageName:
		return UserMessage{
			Message: "A field name is invalid",
			Action:  "Use at most 64 letters, digits or underscores, without spaces",
			Code:    "VAL001",
		}
	case customfield.StageLabel:
		return UserMessage{
			Message: "A field label is invalid",
			Action:  "Labels must be 1 to 256 characters",
			Code:    "VAL002",
		}
	default:
		return UserMessage{
			Message: "A field or input type id is not supported",
			Action:  "Check field_type_id and input_type_id against the supported codes",
			Code:    "VAL003",
		}
	}
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}
