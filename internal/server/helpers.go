// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"errors"
	"strconv"

	"agora/internal/models"
	"agora/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

var opLog = observability.NewOpLogger("api")

// callerIdentity returns the authenticated identity placed in locals by the
// auth middleware.
func callerIdentity(c *fiber.Ctx) string {
	identity, _ := c.Locals("identity").(string)
	return identity
}

// parsePostID extracts the :id route parameter as a post id.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parsePostID(c *fiber.Ctx) (uint64, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid post ID"))
		return 0, errResponseWritten
	}
	return id, nil
}

// statusForError maps engine error codes onto HTTP statuses.
func statusForError(err error) int {
	switch models.CodeOf(err) {
	case models.CodeAlreadyExists, models.CodeAlreadyReacted,
		models.CodeSelfFollow, models.CodeAlreadyFollowing, models.CodeNotFollowing:
		return fiber.StatusConflict
	case models.CodeProfileRequired, models.CodePrivateAccessDenied, models.CodeCommentForbidden:
		return fiber.StatusForbidden
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// respondEngineError records the failed operation and writes the error with
// its mapped status.
func respondEngineError(c *fiber.Ctx, operation string, err error) error {
	observability.RecordOperation(operation, err)
	if code := models.CodeOf(err); code != "" && code != models.CodeInternal {
		opLog.LogRejected(c.UserContext(), operation, code, nil)
	} else {
		opLog.LogError(c.UserContext(), operation, err, nil)
	}
	return models.RespondWithError(c, statusForError(err), err)
}

// recordSuccess records a completed mutating operation.
func recordSuccess(c *fiber.Ctx, operation string) {
	observability.RecordOperation(operation, nil)
	opLog.LogSuccess(c.UserContext(), operation, map[string]interface{}{
		"caller": callerIdentity(c),
	})
}
