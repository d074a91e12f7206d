package domain

import "time"

// Platform roles carried in user events and gateway-issued tokens.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// UserProjection is the local read-optimized copy of a user owned by the
// users service. Written only by inbound user events.
type UserProjection struct {
	ID        string    `json:"id" bson:"_id"`
	Username  string    `json:"username" bson:"username"`
	Email     string    `json:"email" bson:"email"`
	Roles     []string  `json:"roles" bson:"roles"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// CreatorSnapshot is the denormalized creator embedded in a track projection.
type CreatorSnapshot struct {
	UserID   string   `json:"user_id" bson:"user_id"`
	Username string   `json:"username" bson:"username"`
	Roles    []string `json:"roles" bson:"roles"`
}

// TrackAudio holds the storage location of a track's audio file.
type TrackAudio struct {
	URL   string `json:"url" bson:"url"`
	S3Key string `json:"s3_key" bson:"s3_key"`
}

// TrackStats holds the mutable play/download counters.
type TrackStats struct {
	Plays     int64 `json:"plays" bson:"plays"`
	Downloads int64 `json:"downloads" bson:"downloads"`
}

// TrackProjection is the local read-optimized copy of a track owned by the
// beats service. Written only by inbound beat events.
type TrackProjection struct {
	ID             string          `json:"id" bson:"_id"`
	Title          string          `json:"title" bson:"title"`
	CreatedBy      CreatorSnapshot `json:"created_by" bson:"created_by"`
	Genre          string          `json:"genre" bson:"genre"`
	Tags           []string        `json:"tags" bson:"tags"`
	Description    string          `json:"description" bson:"description"`
	Audio          TrackAudio      `json:"audio" bson:"audio"`
	Stats          TrackStats      `json:"stats" bson:"stats"`
	IsPublic       bool            `json:"is_public" bson:"is_public"`
	IsDownloadable bool            `json:"is_downloadable" bson:"is_downloadable"`
	UpdatedAt      time.Time       `json:"updated_at" bson:"updated_at"`
}
