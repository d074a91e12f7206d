package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/beatshub/interaction-service/internal/core/domain"
)

const collectionReports = "reports"

// reportDocument is the persisted shape of a moderation report. The domain's
// tagged target is spread over three optional fields; exactly one is set.
type reportDocument struct {
	ID         string    `bson:"_id"`
	CommentID  string    `bson:"comment_id,omitempty"`
	RatingID   string    `bson:"rating_id,omitempty"`
	PlaylistID string    `bson:"playlist_id,omitempty"`
	UserID     string    `bson:"user_id"`
	AuthorID   string    `bson:"author_id"`
	State      string    `bson:"state"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

func toReportDocument(r *domain.Report) *reportDocument {
	doc := &reportDocument{
		ID:        r.ID,
		UserID:    r.ReporterID,
		AuthorID:  r.AuthorID,
		State:     string(r.State),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	switch r.Target.Kind {
	case domain.TargetComment:
		doc.CommentID = r.Target.ID
	case domain.TargetRating:
		doc.RatingID = r.Target.ID
	case domain.TargetPlaylist:
		doc.PlaylistID = r.Target.ID
	}
	return doc
}

func (d *reportDocument) toDomain() *domain.Report {
	target := domain.Target{}
	switch {
	case d.CommentID != "":
		target = domain.Target{Kind: domain.TargetComment, ID: d.CommentID}
	case d.RatingID != "":
		target = domain.Target{Kind: domain.TargetRating, ID: d.RatingID}
	case d.PlaylistID != "":
		target = domain.Target{Kind: domain.TargetPlaylist, ID: d.PlaylistID}
	}
	return &domain.Report{
		ID:         d.ID,
		Target:     target,
		ReporterID: d.UserID,
		AuthorID:   d.AuthorID,
		State:      domain.ReportState(d.State),
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// targetField maps a target kind to its document field.
func targetField(kind domain.TargetKind) string {
	switch kind {
	case domain.TargetComment:
		return "comment_id"
	case domain.TargetRating:
		return "rating_id"
	default:
		return "playlist_id"
	}
}

// ReportRepository implements ports.ReportRepository using MongoDB.
type ReportRepository struct {
	col *mongo.Collection
}

func NewReportRepository(db *mongo.Database) *ReportRepository {
	return &ReportRepository{col: db.Collection(collectionReports)}
}

// EnsureIndexes creates the partial unique indexes backing the
// at-most-one-active-report-per-target invariant. Uniqueness is scoped to
// state "Checking": resolved reports never block a new one.
func (r *ReportRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := make([]mongo.IndexModel, 0, 5)
	for _, field := range []string{"comment_id", "rating_id", "playlist_id"} {
		indexes = append(indexes, mongo.IndexModel{
			Keys: bson.D{{Key: field, Value: 1}, {Key: "state", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"state": string(domain.StateChecking),
					field:   bson.M{"$exists": true},
				}),
		})
	}
	indexes = append(indexes,
		mongo.IndexModel{Keys: bson.D{{Key: "author_id", Value: 1}}},
		mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}}},
	)

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// Insert persists a new report. A duplicate-key violation means another
// reporter won the race on the same target; it surfaces as the same Conflict
// the advisory pre-check produces.
func (r *ReportRepository) Insert(ctx context.Context, report *domain.Report) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, toReportDocument(report))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ConflictError("already reported and under review")
		}
		return err
	}
	return nil
}

func (r *ReportRepository) FindByID(ctx context.Context, id string) (*domain.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc reportDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFoundError("report not found")
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *ReportRepository) FindActiveByTarget(ctx context.Context, target domain.Target) (*domain.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		targetField(target.Kind): target.ID,
		"state":                  string(domain.StateChecking),
	}

	var doc reportDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFoundError("no active report for target")
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// UpdateState sets the new state and updated_at. No target re-validation
// happens here: decisions must land even when the target is gone.
func (r *ReportRepository) UpdateState(ctx context.Context, id string, state domain.ReportState, ts time.Time) (*domain.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"state":      string(state),
		"updated_at": ts.UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc reportDocument
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFoundError("report not found")
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *ReportRepository) ListByAuthor(ctx context.Context, authorID string) ([]*domain.Report, error) {
	return r.list(ctx, bson.M{"author_id": authorID})
}

func (r *ReportRepository) ListByReporter(ctx context.Context, reporterID string) ([]*domain.Report, error) {
	return r.list(ctx, bson.M{"user_id": reporterID})
}

func (r *ReportRepository) ListAll(ctx context.Context) ([]*domain.Report, error) {
	return r.list(ctx, bson.M{})
}

func (r *ReportRepository) list(ctx context.Context, filter bson.M) ([]*domain.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []reportDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	reports := make([]*domain.Report, 0, len(docs))
	for i := range docs {
		reports = append(reports, docs[i].toDomain())
	}
	return reports, nil
}
