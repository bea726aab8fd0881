package models

// Keys under which the auth middleware stores request identity in the gin context.
const (
	CtxKeyUserID     = "user_id"
	CtxKeyRole       = "role"
	CtxKeyAccessUUID = "access_uuid"
)
