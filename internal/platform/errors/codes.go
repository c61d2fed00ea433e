// Package errors provides structured error handling with transport mapping.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Lookup errors
	CodeCaseNotFound  Code = "CASE_NOT_FOUND"
	CodeSceneNotFound Code = "SCENE_NOT_FOUND"
	CodeGameNotFound  Code = "GAME_NOT_FOUND"
	CodeStatsNotFound Code = "STATS_NOT_FOUND"

	// Conflict errors
	CodeCaseAlreadyExists    Code = "CASE_ALREADY_EXISTS"
	CodeSceneAlreadyExists   Code = "SCENE_ALREADY_EXISTS"
	CodeSessionAlreadyExists Code = "SESSION_ALREADY_EXISTS"
	CodeAlreadyCommitted     Code = "ALREADY_COMMITTED"
	CodeAlreadyRevealed      Code = "ALREADY_REVEALED"

	// State errors
	CodeGameNotActive    Code = "GAME_NOT_ACTIVE"
	CodeGameAlreadyEnded Code = "GAME_ALREADY_ENDED"
	CodeNotAllCommitted  Code = "NOT_ALL_COMMITTED"
	CodeNotAllRevealed   Code = "NOT_ALL_REVEALED"
	CodeSceneInactive    Code = "SCENE_INACTIVE"

	// Authorization errors
	CodeNotPlayer    Code = "NOT_PLAYER"
	CodeUnauthorized Code = "UNAUTHORIZED"

	// Validation errors
	CodeInvalidAccusationID Code = "INVALID_ACCUSATION_ID"
	CodeSelfPlay            Code = "SELF_PLAY"
	CodeInvalidInput        Code = "INVALID_INPUT"

	// Integrity errors
	CodeCommitmentMismatch  Code = "COMMITMENT_MISMATCH"
	CodeInvalidTargetReveal Code = "INVALID_TARGET_REVEAL"
	CodeInvalidProof        Code = "INVALID_PROOF"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Not found - referenced record is absent or expired
	case CodeCaseNotFound,
		CodeSceneNotFound,
		CodeGameNotFound,
		CodeStatsNotFound:
		return http.StatusNotFound

	// Conflict - duplicate creation or slot already filled
	case CodeCaseAlreadyExists,
		CodeSceneAlreadyExists,
		CodeSessionAlreadyExists,
		CodeAlreadyCommitted,
		CodeAlreadyRevealed,
		// State violations share the conflict status: the operation is not
		// valid for the record's current phase.
		CodeGameNotActive,
		CodeGameAlreadyEnded,
		CodeNotAllCommitted,
		CodeNotAllRevealed,
		CodeSceneInactive:
		return http.StatusConflict

	// Forbidden - caller is not the required participant or role
	case CodeNotPlayer,
		CodeUnauthorized:
		return http.StatusForbidden

	// Bad request - input outside the declared domain
	case CodeInvalidAccusationID,
		CodeSelfPlay,
		CodeInvalidInput:
		return http.StatusBadRequest

	// Unprocessable - recomputed digest does not match the stored commitment
	case CodeCommitmentMismatch,
		CodeInvalidTargetReveal,
		CodeInvalidProof:
		return http.StatusUnprocessableEntity

	default:
		return http.StatusInternalServerError
	}
}
