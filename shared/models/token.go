package models

import "github.com/google/uuid"

// TokenDetails describes an issued access token.
type TokenDetails struct {
	AccessToken string
	AccessUUID  string
	UserID      uuid.UUID
	ExpiresAt   int64
}
