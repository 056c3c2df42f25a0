package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robertarktes/tourinfo/internal/domain"
	"github.com/robertarktes/tourinfo/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ServiceCatalog holds the bookable tours and services shown on the
// public site. Reservation creation only reads it.
type ServiceCatalog struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewServiceCatalog(db *mongo.Database, logger observability.Logger) *ServiceCatalog {
	return &ServiceCatalog{
		coll:   db.Collection("services"),
		logger: logger,
	}
}

type ServiceDoc struct {
	ID          uuid.UUID `bson:"_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description"`
	Location    string    `bson:"location"`
	Price       float64   `bson:"price"`
	Active      bool      `bson:"active"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func (c *ServiceCatalog) GetService(ctx context.Context, id uuid.UUID) (*ServiceDoc, error) {
	var svc ServiceDoc
	err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&svc)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		c.logger.Error("failed to get service", err)
		return nil, domain.MarkConnection(err)
	}
	return &svc, nil
}

func (c *ServiceCatalog) CreateService(ctx context.Context, svc ServiceDoc) error {
	svc.CreatedAt = time.Now()
	svc.UpdatedAt = time.Now()
	_, err := c.coll.InsertOne(ctx, svc)
	if err != nil {
		c.logger.Error("failed to create service", err)
		return domain.MarkConnection(err)
	}
	return nil
}
