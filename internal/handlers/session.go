package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/middleware"
)

// SessionHeader carries the guest cart session id. When a guest caller sends
// none, one is minted and echoed back so the client can persist it.
const SessionHeader = "X-Session-Id"

// resolveSession maps the caller to a cart session key. Authenticated users
// share one cart across devices (keyed by user id); guests are keyed by their
// session id. An invalid bearer token is an error; an absent one is a guest.
func resolveSession(c *gin.Context, jwtSecret string) (string, *primitive.ObjectID, error) {
	userID, err := middleware.ParseBearer(c.GetHeader("Authorization"), jwtSecret)
	if err != nil {
		return "", nil, err
	}
	if userID != nil {
		return "user:" + userID.Hex(), userID, nil
	}

	sessionID := strings.TrimSpace(c.GetHeader(SessionHeader))
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	c.Header(SessionHeader, sessionID)
	return "guest:" + sessionID, nil, nil
}
