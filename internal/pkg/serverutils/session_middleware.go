package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const WorkflowIDLocal = "workflow_id"

var ErrInvalidSession = errors.New("invalid workflow session")

// ParseSessionToken verifies a workflow session token and returns its workflow id.
func ParseSessionToken(secret, tokenStr string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidSession
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, ErrInvalidSession
	}
	raw, _ := claims["workflow_id"].(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidSession
	}
	return id, nil
}

func sessionToken(ctx *fiber.Ctx) string {
	if auth := ctx.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if token := ctx.Get("X-Workflow-Session"); token != "" {
		return token
	}
	return ctx.Query("token")
}

// SessionMiddleware accepts the token as a bearer header, an
// X-Workflow-Session header or a token query parameter.
func SessionMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := sessionToken(ctx)
		if tokenStr == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing session token"))
		}

		workflowId, err := ParseSessionToken(secret, tokenStr)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid session token"))
		}

		ctx.Locals(WorkflowIDLocal, workflowId)
		return ctx.Next()
	}
}

// WorkflowID reads the id stored by SessionMiddleware.
func WorkflowID(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, ok := ctx.Locals(WorkflowIDLocal).(uuid.UUID)
	if !ok {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Missing workflow session")
	}
	return id, nil
}
