package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adboard/ad-directory/internal/core/domain"
)

const collectionCities = "cities"

// CityRepository persists cities. Name uniqueness is enforced by a unique
// index; the duplicate-key error is translated at this boundary.
type CityRepository struct {
	coll *mongo.Collection
}

func NewCityRepository(db *mongo.Database) *CityRepository {
	return &CityRepository{coll: db.Collection(collectionCities)}
}

type mongoCity struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (c mongoCity) toDomain() domain.City {
	return domain.City{ID: c.ID.Hex(), Name: c.Name, CreatedAt: c.CreatedAt.UTC()}
}

func (r *CityRepository) Create(ctx context.Context, city *domain.City) (*domain.City, error) {
	doc := mongoCity{Name: city.Name, CreatedAt: time.Now().UTC()}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrCityExists
		}
		return nil, fmt.Errorf("insert city: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	created := doc.toDomain()
	return &created, nil
}

func (r *CityRepository) Delete(ctx context.Context, id string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, nil // malformed id cannot match any row
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, fmt.Errorf("delete city: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *CityRepository) FindByID(ctx context.Context, id string) (*domain.City, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrCityNotFound
	}

	var mc mongoCity
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCityNotFound
		}
		return nil, fmt.Errorf("find city: %w", err)
	}
	city := mc.toDomain()
	return &city, nil
}

func (r *CityRepository) List(ctx context.Context) ([]domain.City, error) {
	return r.find(ctx, bson.M{})
}

func (r *CityRepository) Search(ctx context.Context, substring string) ([]domain.City, error) {
	return r.find(ctx, bson.M{"name": substringRegex(substring)})
}

func (r *CityRepository) find(ctx context.Context, filter bson.M) ([]domain.City, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find cities: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoCity
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode cities: %w", err)
	}

	cities := make([]domain.City, 0, len(docs))
	for _, d := range docs {
		cities = append(cities, d.toDomain())
	}
	return cities, nil
}

// EnsureIndexes creates the unique name index.
func (r *CityRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: uniqueIndex(),
	})
	return err
}
