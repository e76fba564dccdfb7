package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-market/pkg/errors"
	"go-market/pkg/logger"
)

const (
	// ProfileHeader selects which of the user's profiles is acting
	ProfileHeader = "X-Profile-ID"
	// ProfileIDKey is the gin context key for the verified profile id
	ProfileIDKey = "profile_id"
)

// ProfileVerifier checks that a profile belongs to a user
type ProfileVerifier interface {
	VerifyProfileOwner(ctx context.Context, userID string, profileID uuid.UUID) error
}

// RequireProfile resolves the acting profile from X-Profile-ID. It must run after Authenticate.
func RequireProfile(verifier ProfileVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(ProfileHeader)
		profileID, err := uuid.Parse(raw)
		if err != nil {
			c.Error(errors.NewUnauthorized("missing or malformed " + ProfileHeader + " header"))
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		if err := verifier.VerifyProfileOwner(ctx, c.GetString(UserIDKey), profileID); err != nil {
			c.Error(err)
			c.Abort()
			return
		}

		c.Set(ProfileIDKey, profileID)
		c.Request = c.Request.WithContext(logger.WithProfileIDContext(ctx, profileID.String()))
		c.Next()
	}
}

// ActingProfile returns the profile id set by RequireProfile
func ActingProfile(c *gin.Context) uuid.UUID {
	id, _ := c.Get(ProfileIDKey)
	profileID, _ := id.(uuid.UUID)
	return profileID
}
