package databases

// go generate: mockery --name CaseDatabase

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/casetrack-api/models"
)

const caseName = "cases"

// CaseFilter narrows a case listing. Empty fields match everything.
type CaseFilter struct {
	VictimID  string
	OfficerID string
}

// CaseDatabase contains the methods to use with the case database
type CaseDatabase interface {
	FindOne(ctx context.Context, id string) (*models.Case, error)
	Find(ctx context.Context, filter CaseFilter) ([]models.Case, error)
	InsertOne(ctx context.Context, c models.Case) error
	// Apply writes fields and appends the optional timeline entry as a single
	// atomic change, returning the stored case afterwards
	Apply(ctx context.Context, id string, fields models.CaseFields, appended *models.CaseUpdate) (*models.Case, error)
	EnsureIndexes(ctx context.Context) error
}

type caseDatabase struct {
	db DatabaseHelper
}

// NewCaseDatabase initializes a new instance of case database with the provided db connection
func NewCaseDatabase(db DatabaseHelper) CaseDatabase {
	return &caseDatabase{
		db: db,
	}
}

func (c *caseDatabase) FindOne(ctx context.Context, id string) (*models.Case, error) {
	cs := &models.Case{}
	err := c.db.Collection(caseName).FindOne(ctx, bson.M{"_id": id}).Decode(&cs)
	if err != nil {
		return nil, mapMongoError(err)
	}
	if err := checkDecoded(cs); err != nil {
		return nil, err
	}
	return cs, nil
}

func (c *caseDatabase) Find(ctx context.Context, filter CaseFilter) ([]models.Case, error) {
	query := bson.M{}
	if filter.VictimID != "" {
		query["victimId"] = filter.VictimID
	}
	if filter.OfficerID != "" {
		query["officerId"] = filter.OfficerID
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	curr, err := c.db.Collection(caseName).Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find cases: %w", err)
	}
	defer curr.Close(ctx)

	cases := []models.Case{}
	if err := curr.All(ctx, &cases); err != nil {
		return nil, fmt.Errorf("failed to decode cases: %w", err)
	}
	for i := range cases {
		if err := checkDecoded(&cases[i]); err != nil {
			return nil, err
		}
	}
	return cases, nil
}

func (c *caseDatabase) InsertOne(ctx context.Context, cs models.Case) error {
	_, err := c.db.Collection(caseName).InsertOne(ctx, cs)
	if err != nil {
		return mapMongoError(err)
	}
	return nil
}

func (c *caseDatabase) Apply(ctx context.Context, id string, fields models.CaseFields, appended *models.CaseUpdate) (*models.Case, error) {
	update := bson.M{"$set": fields}
	if appended != nil {
		update["$push"] = bson.M{"updates": appended}
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	cs := &models.Case{}
	err := c.db.Collection(caseName).FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&cs)
	if err != nil {
		return nil, mapMongoError(err)
	}
	if err := checkDecoded(cs); err != nil {
		return nil, err
	}
	return cs, nil
}

func (c *caseDatabase) EnsureIndexes(ctx context.Context) error {
	coll := c.db.Collection(caseName)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "caseNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "victimId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	for _, m := range indexes {
		if _, err := coll.CreateIndex(ctx, m); err != nil {
			return fmt.Errorf("failed to create case index: %w", err)
		}
	}
	return nil
}

// checkDecoded rejects stored cases whose status is outside the lifecycle.
// BSON decoding does not go through Status.UnmarshalJSON.
func checkDecoded(cs *models.Case) error {
	if !cs.Status.Valid() {
		return fmt.Errorf("case %s has unknown status %q", cs.ID, string(cs.Status))
	}
	return nil
}

// mapMongoError translates driver errors into the model sentinels
func mapMongoError(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return models.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", models.ErrDuplicate, err)
	}
	return err
}
