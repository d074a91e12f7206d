package domain

import "time"

// Comment, Rating, and Playlist documents are created and updated by the
// interaction CRUD services. This service only reads the minimal fields the
// moderation resolver needs and mutates them as a side effect of cascading
// deletes — it never creates them.

// Comment is a user comment on a track, optionally scoped to a playlist.
type Comment struct {
	ID         string    `json:"id" bson:"_id"`
	TrackID    string    `json:"track_id" bson:"track_id"`
	PlaylistID string    `json:"playlist_id,omitempty" bson:"playlist_id,omitempty"`
	AuthorID   string    `json:"author_id" bson:"author_id"`
	Text       string    `json:"text" bson:"text"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// Rating is a user rating of a track, optionally scoped to a playlist.
type Rating struct {
	ID         string    `json:"id" bson:"_id"`
	TrackID    string    `json:"track_id" bson:"track_id"`
	PlaylistID string    `json:"playlist_id,omitempty" bson:"playlist_id,omitempty"`
	AuthorID   string    `json:"author_id" bson:"author_id"`
	Value      int       `json:"value" bson:"value"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// Playlist is a user-owned, optionally collaborative list of tracks.
type Playlist struct {
	ID            string    `json:"id" bson:"_id"`
	OwnerID       string    `json:"owner_id" bson:"owner_id"`
	Name          string    `json:"name" bson:"name"`
	TrackIDs      []string  `json:"track_ids" bson:"track_ids"`
	Collaborators []string  `json:"collaborators" bson:"collaborators"`
	IsPublic      bool      `json:"is_public" bson:"is_public"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}
