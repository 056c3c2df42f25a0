package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robertarktes/tourinfo/internal/domain"
	"github.com/robertarktes/tourinfo/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NoticeStore is the back-office notification sink. The orchestrator
// writes to it fire-and-forget; the admin screens read it through the
// poller.
type NoticeStore struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewNoticeStore(db *mongo.Database, logger observability.Logger) *NoticeStore {
	return &NoticeStore{
		coll:   db.Collection("admin_notices"),
		logger: logger,
	}
}

type noticeDoc struct {
	ID        uuid.UUID `bson:"_id"`
	Type      string    `bson:"type"`
	Title     string    `bson:"title"`
	Message   string    `bson:"message"`
	IsRead    bool      `bson:"is_read"`
	CreatedAt time.Time `bson:"created_at"`
}

func (s *NoticeStore) Insert(ctx context.Context, notice domain.AdminNotice) error {
	doc := noticeDoc{
		ID:        notice.ID,
		Type:      string(notice.Type),
		Title:     notice.Title,
		Message:   notice.Message,
		IsRead:    notice.IsRead,
		CreatedAt: notice.CreatedAt,
	}
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	_, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		s.logger.Error("failed to insert admin notice", err)
		return domain.MarkConnection(err)
	}
	return nil
}

func (s *NoticeStore) List(ctx context.Context, limit int64) ([]domain.AdminNotice, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1}).SetLimit(limit)
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, domain.MarkConnection(err)
	}
	defer cur.Close(ctx)

	var notices []domain.AdminNotice
	for cur.Next(ctx) {
		var doc noticeDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		notices = append(notices, domain.AdminNotice{
			ID:        doc.ID,
			Type:      domain.NotificationType(doc.Type),
			Title:     doc.Title,
			Message:   doc.Message,
			IsRead:    doc.IsRead,
			CreatedAt: doc.CreatedAt,
		})
	}
	return notices, cur.Err()
}

func (s *NoticeStore) CountUnreadNotices(ctx context.Context) (int64, error) {
	count, err := s.coll.CountDocuments(ctx, bson.M{"is_read": false})
	if err != nil {
		return 0, domain.MarkConnection(err)
	}
	return count, nil
}

func (s *NoticeStore) MarkRead(ctx context.Context, id uuid.UUID) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		s.logger.Error("failed to mark notice read", err)
		return domain.MarkConnection(err)
	}
	return nil
}
