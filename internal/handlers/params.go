package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/middleware"
)

// currentUserID shortcuts to the authenticated user's id. Routes behind
// RequireAuth always have one.
func currentUserID(c *gin.Context) uuid.UUID {
	return middleware.CurrentUser(c).ID
}

// pathID parses the :id path segment as a uuid.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// boolQuery parses an optional boolean query parameter, nil when absent or
// malformed.
func boolQuery(c *gin.Context, name string) *bool {
	raw, ok := c.GetQuery(name)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &value
}

// uuidQuery parses an optional uuid query parameter.
func uuidQuery(c *gin.Context, name string) *uuid.UUID {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

// intQuery parses an optional int query parameter with a fallback.
func intQuery(c *gin.Context, name string, fallback int) int {
	raw, ok := c.GetQuery(name)
	if !ok {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
