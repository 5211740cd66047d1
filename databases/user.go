package databases

// go generate: mockery --name UserDatabase

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/casetrack-api/models"
)

const userName = "users"

// UserDatabase contains the methods to use with the user database
type UserDatabase interface {
	FindOne(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	InsertOne(ctx context.Context, u models.User) error
	EnsureIndexes(ctx context.Context) error
}

type userDatabase struct {
	db DatabaseHelper
}

// NewUserDatabase initializes a new instance of user database with the provided db connection
func NewUserDatabase(db DatabaseHelper) UserDatabase {
	return &userDatabase{
		db: db,
	}
}

func (u *userDatabase) FindOne(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}
	err := u.db.Collection(userName).FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		return nil, mapMongoError(err)
	}
	return user, nil
}

func (u *userDatabase) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := u.db.Collection(userName).FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&user)
	if err != nil {
		return nil, mapMongoError(err)
	}
	return user, nil
}

func (u *userDatabase) InsertOne(ctx context.Context, user models.User) error {
	user.Email = strings.ToLower(user.Email)
	_, err := u.db.Collection(userName).InsertOne(ctx, user)
	if err != nil {
		return mapMongoError(err)
	}
	return nil
}

func (u *userDatabase) EnsureIndexes(ctx context.Context) error {
	coll := u.db.Collection(userName)
	for _, key := range []string{"email", "idNumber"} {
		_, err := coll.CreateIndex(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: key, Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return fmt.Errorf("failed to create user index on %s: %w", key, err)
		}
	}
	return nil
}
