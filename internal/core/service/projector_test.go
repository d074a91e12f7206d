package service

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/beatshub/interaction-service/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory projection stubs
// ---------------------------------------------------------------------------

type stubUserProjectionRepo struct {
	byID map[string]*domain.UserProjection
}

func newStubUserProjectionRepo() *stubUserProjectionRepo {
	return &stubUserProjectionRepo{byID: make(map[string]*domain.UserProjection)}
}

func (r *stubUserProjectionRepo) Upsert(_ context.Context, u *domain.UserProjection) error {
	clone := *u
	r.byID[u.ID] = &clone
	return nil
}

func (r *stubUserProjectionRepo) Delete(_ context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

func (r *stubUserProjectionRepo) FindByID(_ context.Context, id string) (*domain.UserProjection, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.NotFoundError("user not found")
	}
	clone := *u
	return &clone, nil
}

type stubTrackProjectionRepo struct {
	byID map[string]*domain.TrackProjection
}

func newStubTrackProjectionRepo() *stubTrackProjectionRepo {
	return &stubTrackProjectionRepo{byID: make(map[string]*domain.TrackProjection)}
}

func (r *stubTrackProjectionRepo) Upsert(_ context.Context, t *domain.TrackProjection) error {
	clone := *t
	r.byID[t.ID] = &clone
	return nil
}

// UpdateStats mirrors the Mongo upsert: counters only, descriptive fields kept.
func (r *stubTrackProjectionRepo) UpdateStats(_ context.Context, id string, stats domain.TrackStats) error {
	t, ok := r.byID[id]
	if !ok {
		r.byID[id] = &domain.TrackProjection{ID: id, Stats: stats}
		return nil
	}
	t.Stats = stats
	return nil
}

func (r *stubTrackProjectionRepo) Delete(_ context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

func (r *stubTrackProjectionRepo) DeleteByCreator(_ context.Context, userID string) error {
	for id, t := range r.byID {
		if t.CreatedBy.UserID == userID {
			delete(r.byID, id)
		}
	}
	return nil
}

func (r *stubTrackProjectionRepo) FindByID(_ context.Context, id string) (*domain.TrackProjection, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, domain.NotFoundError("track not found")
	}
	clone := *t
	return &clone, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type projectorFixture struct {
	users     *stubUserProjectionRepo
	tracks    *stubTrackProjectionRepo
	comments  *stubCommentRepo
	ratings   *stubRatingRepo
	playlists *stubPlaylistRepo
	projector *Projector
}

func newProjectorFixture() *projectorFixture {
	f := &projectorFixture{
		users:     newStubUserProjectionRepo(),
		tracks:    newStubTrackProjectionRepo(),
		comments:  newStubCommentRepo(),
		ratings:   newStubRatingRepo(),
		playlists: newStubPlaylistRepo(),
	}
	f.projector = NewProjector(f.users, f.tracks, f.comments, f.ratings, f.playlists, zerolog.Nop())
	return f
}

func envelope(t *testing.T, eventType string, payload any) []byte {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	raw, err := json.Marshal(domain.EventEnvelope{Type: eventType, Payload: body})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return raw
}

func beatPayload(id, creatorID string) domain.BeatPayload {
	return domain.BeatPayload{
		ID:    id,
		Title: "Night Drive",
		CreatedBy: domain.CreatorPayload{
			UserID:   creatorID,
			Username: "producer",
			Roles:    []string{"user"},
		},
		Genre:          "lofi",
		Tags:           []string{"chill", "night"},
		Description:    "late night loop",
		Audio:          domain.AudioPayload{URL: "https://cdn.example.com/a.mp3", S3Key: "beats/a.mp3"},
		Stats:          domain.StatsPayload{Plays: 10, Downloads: 2},
		IsPublic:       true,
		IsDownloadable: true,
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestProjector_BeatCreated_UpsertsProjection(t *testing.T) {
	f := newProjectorFixture()

	raw := envelope(t, domain.EventBeatCreated, beatPayload("track-1", "user-1"))
	if err := f.projector.Process(context.Background(), raw); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	track, err := f.tracks.FindByID(context.Background(), "track-1")
	if err != nil {
		t.Fatalf("projection missing: %v", err)
	}
	if track.Title != "Night Drive" || track.CreatedBy.UserID != "user-1" {
		t.Errorf("unexpected projection: %+v", track)
	}
	if track.Stats.Plays != 10 || track.Stats.Downloads != 2 {
		t.Errorf("unexpected stats: %+v", track.Stats)
	}
}

func TestProjector_BeatCreated_Idempotent(t *testing.T) {
	f := newProjectorFixture()
	raw := envelope(t, domain.EventBeatCreated, beatPayload("track-1", "user-1"))

	if err := f.projector.Process(context.Background(), raw); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	first, _ := f.tracks.FindByID(context.Background(), "track-1")

	if err := f.projector.Process(context.Background(), raw); err != nil {
		t.Fatalf("second apply: %v", err)
	}
	second, _ := f.tracks.FindByID(context.Background(), "track-1")

	if len(f.tracks.byID) != 1 {
		t.Fatalf("expected one projection, got %d", len(f.tracks.byID))
	}
	// UpdatedAt is assigned per apply; everything else must match exactly.
	second.UpdatedAt = first.UpdatedAt
	if !reflect.DeepEqual(first, second) {
		t.Errorf("replay changed state:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestProjector_StatsIncremented_UpdatesCountersOnly(t *testing.T) {
	f := newProjectorFixture()
	if err := f.projector.Process(context.Background(), envelope(t, domain.EventBeatCreated, beatPayload("track-1", "user-1"))); err != nil {
		t.Fatalf("seed: %v", err)
	}

	raw := envelope(t, domain.EventBeatPlaysIncremented, domain.BeatStatsPayload{
		ID:    "track-1",
		Stats: domain.StatsPayload{Plays: 11, Downloads: 2},
	})
	if err := f.projector.Process(context.Background(), raw); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	track, _ := f.tracks.FindByID(context.Background(), "track-1")
	if track.Stats.Plays != 11 {
		t.Errorf("expected plays 11, got %d", track.Stats.Plays)
	}
	if track.Title != "Night Drive" {
		t.Errorf("descriptive fields must be untouched, got title %q", track.Title)
	}
}

func TestProjector_UserCreated_UpsertsProjection(t *testing.T) {
	f := newProjectorFixture()

	raw := envelope(t, domain.EventUserCreated, domain.UserPayload{
		ID:       "user-1",
		Username: "alice",
		Email:    "alice@example.com",
		Roles:    []string{"user", "admin"},
	})
	if err := f.projector.Process(context.Background(), raw); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	u, err := f.users.FindByID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("projection missing: %v", err)
	}
	if u.Username != "alice" || len(u.Roles) != 2 {
		t.Errorf("unexpected projection: %+v", u)
	}
}

func TestProjector_BeatDeleted_CascadeComplete(t *testing.T) {
	f := newProjectorFixture()
	ctx := context.Background()

	if err := f.projector.Process(ctx, envelope(t, domain.EventBeatCreated, beatPayload("track-1", "user-1"))); err != nil {
		t.Fatalf("seed: %v", err)
	}
	f.comments.seed(&domain.Comment{ID: "c1", TrackID: "track-1", AuthorID: "user-2"})
	f.comments.seed(&domain.Comment{ID: "c2", TrackID: "track-1", AuthorID: "user-3"})
	f.comments.seed(&domain.Comment{ID: "c3", TrackID: "track-9", AuthorID: "user-2"})
	f.ratings.seed(&domain.Rating{ID: "r1", TrackID: "track-1", AuthorID: "user-2", Value: 5})
	f.playlists.seed(&domain.Playlist{ID: "p1", OwnerID: "user-3", TrackIDs: []string{"track-1", "track-9"}, IsPublic: true})

	if err := f.projector.Process(ctx, envelope(t, domain.EventBeatDeleted, domain.BeatDeletedPayload{ID: "track-1"})); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if _, err := f.tracks.FindByID(ctx, "track-1"); err == nil {
		t.Errorf("projection should be gone")
	}
	for id, c := range f.comments.byID {
		if c.TrackID == "track-1" {
			t.Errorf("comment %s still references deleted track", id)
		}
	}
	if _, ok := f.comments.byID["c3"]; !ok {
		t.Errorf("unrelated comment must survive")
	}
	for id, r := range f.ratings.byID {
		if r.TrackID == "track-1" {
			t.Errorf("rating %s still references deleted track", id)
		}
	}
	for _, pl := range f.playlists.byID {
		for _, id := range pl.TrackIDs {
			if id == "track-1" {
				t.Errorf("playlist %s still lists deleted track", pl.ID)
			}
		}
	}

	// Redelivery of the same delete must be a no-op, not an error.
	if err := f.projector.Process(ctx, envelope(t, domain.EventBeatDeleted, domain.BeatDeletedPayload{ID: "track-1"})); err != nil {
		t.Errorf("replayed delete failed: %v", err)
	}
}

func TestProjector_UserDeleted_CascadeComplete(t *testing.T) {
	f := newProjectorFixture()
	ctx := context.Background()

	if err := f.projector.Process(ctx, envelope(t, domain.EventUserCreated, domain.UserPayload{ID: "user-1", Username: "alice"})); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := f.projector.Process(ctx, envelope(t, domain.EventBeatCreated, beatPayload("track-1", "user-1"))); err != nil {
		t.Fatalf("seed track: %v", err)
	}
	if err := f.projector.Process(ctx, envelope(t, domain.EventBeatCreated, beatPayload("track-2", "user-9"))); err != nil {
		t.Fatalf("seed track: %v", err)
	}
	f.playlists.seed(&domain.Playlist{ID: "p1", OwnerID: "user-1", TrackIDs: []string{"track-2"}})
	f.playlists.seed(&domain.Playlist{ID: "p2", OwnerID: "user-9", Collaborators: []string{"user-1", "user-5"}})
	f.comments.seed(&domain.Comment{ID: "c1", TrackID: "track-2", AuthorID: "user-1"})
	f.ratings.seed(&domain.Rating{ID: "r1", TrackID: "track-2", AuthorID: "user-1", Value: 4})

	if err := f.projector.Process(ctx, envelope(t, domain.EventUserDeleted, domain.UserDeletedPayload{ID: "user-1"})); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if _, err := f.users.FindByID(ctx, "user-1"); err == nil {
		t.Errorf("user projection should be gone")
	}
	if _, ok := f.playlists.byID["p1"]; ok {
		t.Errorf("owned playlist should be gone")
	}
	for _, collab := range f.playlists.byID["p2"].Collaborators {
		if collab == "user-1" {
			t.Errorf("collaborator entry should be gone")
		}
	}
	for id, c := range f.comments.byID {
		if c.AuthorID == "user-1" {
			t.Errorf("comment %s still authored by deleted user", id)
		}
	}
	for id, r := range f.ratings.byID {
		if r.AuthorID == "user-1" {
			t.Errorf("rating %s still authored by deleted user", id)
		}
	}
	if _, err := f.tracks.FindByID(ctx, "track-1"); err == nil {
		t.Errorf("created track projection should be gone")
	}
	if _, err := f.tracks.FindByID(ctx, "track-2"); err != nil {
		t.Errorf("unrelated track projection must survive")
	}
}

func TestProjector_UnknownEventType_Ignored(t *testing.T) {
	f := newProjectorFixture()

	raw := envelope(t, "BEAT_REMIXED", map[string]string{"_id": "track-1"})
	if err := f.projector.Process(context.Background(), raw); err != nil {
		t.Fatalf("unknown type must not error, got: %v", err)
	}
	if len(f.tracks.byID) != 0 || len(f.users.byID) != 0 {
		t.Errorf("unknown type must not mutate projections")
	}
}

func TestProjector_MalformedMessage_Errors(t *testing.T) {
	f := newProjectorFixture()
	cases := map[string][]byte{
		"not json":         []byte("{not-json"),
		"missing type":     []byte(`{"payload":{}}`),
		"missing beat id":  envelope(t, domain.EventBeatCreated, domain.BeatPayload{Title: "x"}),
		"missing user id":  envelope(t, domain.EventUserDeleted, domain.UserDeletedPayload{}),
		"payload mismatch": []byte(fmt.Sprintf(`{"type":%q,"payload":"oops"}`, domain.EventBeatCreated)),
	}

	for name, raw := range cases {
		if err := f.projector.Process(context.Background(), raw); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
	if len(f.tracks.byID) != 0 || len(f.users.byID) != 0 {
		t.Errorf("malformed messages must not mutate projections")
	}
}
