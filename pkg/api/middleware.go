package api

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	requestIDHeader     = "X-Request-ID"
	requestIDContextKey = "reqId"
)

func requestIDMiddleware(c *fiber.Ctx) error {
	requestID := strings.TrimSpace(c.Get(requestIDHeader))
	if requestID == "" {
		requestID = uuid.NewString()
	}

	ctx := context.WithValue(c.UserContext(), requestIDContextKey, requestID)
	c.SetUserContext(ctx)
	c.Set(requestIDHeader, requestID)

	return c.Next()
}
