package domain

import (
	"encoding/json"
	"time"
)

// Inbound event types published by the beats and users services.
const (
	EventBeatCreated              = "BEAT_CREATED"
	EventBeatUpdated              = "BEAT_UPDATED"
	EventBeatDeleted              = "BEAT_DELETED"
	EventBeatPlaysIncremented     = "BEAT_PLAYS_INCREMENTED"
	EventBeatDownloadsIncremented = "BEAT_DOWNLOADS_INCREMENTED"
	EventUserCreated              = "USER_CREATED"
	EventUserUpdated              = "USER_UPDATED"
	EventUserDeleted              = "USER_DELETED"
)

// Outbound event types emitted on the social-events topic.
const (
	EventReportCreated      = "REPORT_CREATED"
	EventReportStateChanged = "REPORT_STATE_CHANGED"
)

// EventEnvelope is the wire format shared by all topics: UTF-8 JSON with a
// type discriminator and a type-specific payload.
type EventEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// CreatorPayload mirrors the createdBy snapshot embedded in beat events.
type CreatorPayload struct {
	UserID   string   `json:"userId"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// AudioPayload mirrors the audio block of beat events.
type AudioPayload struct {
	URL   string `json:"url"`
	S3Key string `json:"s3Key"`
}

// StatsPayload mirrors the stats block of beat events.
type StatsPayload struct {
	Plays     int64 `json:"plays"`
	Downloads int64 `json:"downloads"`
}

// BeatPayload is the payload of BEAT_CREATED and BEAT_UPDATED.
type BeatPayload struct {
	ID             string         `json:"_id"`
	Title          string         `json:"title"`
	CreatedBy      CreatorPayload `json:"createdBy"`
	Genre          string         `json:"genre"`
	Tags           []string       `json:"tags"`
	Description    string         `json:"description"`
	Audio          AudioPayload   `json:"audio"`
	Stats          StatsPayload   `json:"stats"`
	IsPublic       bool           `json:"isPublic"`
	IsDownloadable bool           `json:"isDownloadable"`
}

// BeatStatsPayload is the payload of the counter-increment events.
type BeatStatsPayload struct {
	ID    string       `json:"_id"`
	Stats StatsPayload `json:"stats"`
}

// BeatDeletedPayload is the payload of BEAT_DELETED.
type BeatDeletedPayload struct {
	ID string `json:"_id"`
}

// UserPayload is the payload of USER_CREATED and USER_UPDATED.
type UserPayload struct {
	ID        string     `json:"_id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Roles     []string   `json:"roles"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// UserDeletedPayload is the payload of USER_DELETED.
type UserDeletedPayload struct {
	ID string `json:"_id"`
}

// ReportEventPayload is the payload emitted for REPORT_CREATED and
// REPORT_STATE_CHANGED on the social-events topic.
type ReportEventPayload struct {
	ReportID   string `json:"reportId"`
	TargetKind string `json:"targetKind"`
	TargetID   string `json:"targetId"`
	ReporterID string `json:"reporterId"`
	AuthorID   string `json:"authorId"`
	State      string `json:"state"`
}
