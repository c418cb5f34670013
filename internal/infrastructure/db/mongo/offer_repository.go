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
	"github.com/adboard/ad-directory/internal/core/ports"
)

const (
	collectionOffers          = "offers"
	collectionOfferCities     = "offer_cities"
	collectionOfferCategories = "offer_categories"
)

// OfferRepository owns the offers collection and the two join collections.
// A join row is one document uniquely keyed by its (offer_id, city_id) or
// (offer_id, category_id) pair.
type OfferRepository struct {
	db        *mongo.Database
	offers    *mongo.Collection
	cityLinks *mongo.Collection
	catLinks  *mongo.Collection
}

func NewOfferRepository(db *mongo.Database) *OfferRepository {
	return &OfferRepository{
		db:        db,
		offers:    db.Collection(collectionOffers),
		cityLinks: db.Collection(collectionOfferCities),
		catLinks:  db.Collection(collectionOfferCategories),
	}
}

type mongoOffer struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	Title              string             `bson:"title"`
	Description        string             `bson:"description,omitempty"`
	BackgroundImageURL string             `bson:"background_image_url"`
	CompanyLogoURL     string             `bson:"company_logo_url"`
	CompanyName        string             `bson:"company_name"`
	CreatedAt          time.Time          `bson:"created_at"`
}

// offerLink is a join row. OfferID and TargetID hold hex object ids; TargetID
// is a city id in offer_cities and a category id in offer_categories.
type offerLink struct {
	OfferID  string `bson:"offer_id"`
	TargetID string `bson:"target_id"`
}

func (o mongoOffer) toDomain() domain.Offer {
	return domain.Offer{
		ID:                 o.ID.Hex(),
		Title:              o.Title,
		Description:        o.Description,
		BackgroundImageURL: o.BackgroundImageURL,
		CompanyLogoURL:     o.CompanyLogoURL,
		CompanyName:        o.CompanyName,
		Cities:             []domain.City{},
		Categories:         []domain.Category{},
		CreatedAt:          o.CreatedAt.UTC(),
	}
}

// Create inserts the offer document plus all join rows in one multi-document
// transaction, so a failed link insert leaves nothing behind.
func (r *OfferRepository) Create(ctx context.Context, offer *domain.Offer, cityIDs, categoryIDs []string) (*domain.Offer, error) {
	doc := mongoOffer{
		Title:              offer.Title,
		Description:        offer.Description,
		BackgroundImageURL: offer.BackgroundImageURL,
		CompanyLogoURL:     offer.CompanyLogoURL,
		CompanyName:        offer.CompanyName,
		CreatedAt:          time.Now().UTC(),
	}

	session, err := r.db.Client().StartSession()
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	var oid primitive.ObjectID
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		res, err := r.offers.InsertOne(sc, doc)
		if err != nil {
			return nil, err
		}
		oid = res.InsertedID.(primitive.ObjectID)

		if err := r.insertLinks(sc, r.cityLinks, oid.Hex(), cityIDs); err != nil {
			return nil, err
		}
		if err := r.insertLinks(sc, r.catLinks, oid.Hex(), categoryIDs); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrOfferExists
		}
		return nil, fmt.Errorf("insert offer: %w", err)
	}

	return r.FindByID(ctx, oid.Hex())
}

func (r *OfferRepository) insertLinks(ctx context.Context, coll *mongo.Collection, offerID string, targetIDs []string) error {
	if len(targetIDs) == 0 {
		return nil
	}
	docs := make([]any, 0, len(targetIDs))
	for _, id := range targetIDs {
		docs = append(docs, offerLink{OfferID: offerID, TargetID: id})
	}
	_, err := coll.InsertMany(ctx, docs)
	return err
}

// Delete removes the offer and cascades both join collections.
func (r *OfferRepository) Delete(ctx context.Context, id string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, nil
	}

	session, err := r.db.Client().StartSession()
	if err != nil {
		return 0, fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	var deleted int64
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		res, err := r.offers.DeleteOne(sc, bson.M{"_id": oid})
		if err != nil {
			return nil, err
		}
		deleted = res.DeletedCount

		linkFilter := bson.M{"offer_id": id}
		if _, err := r.cityLinks.DeleteMany(sc, linkFilter); err != nil {
			return nil, err
		}
		if _, err := r.catLinks.DeleteMany(sc, linkFilter); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete offer: %w", err)
	}
	return deleted, nil
}

func (r *OfferRepository) FindByID(ctx context.Context, id string) (*domain.Offer, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrOfferNotFound
	}

	var mo mongoOffer
	if err := r.offers.FindOne(ctx, bson.M{"_id": oid}).Decode(&mo); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOfferNotFound
		}
		return nil, fmt.Errorf("find offer: %w", err)
	}

	offers, err := r.resolveAssociations(ctx, []mongoOffer{mo})
	if err != nil {
		return nil, err
	}
	return &offers[0], nil
}

// List applies the optional city and category join filters, then pages over
// the matching offers by creation time ascending.
func (r *OfferRepository) List(ctx context.Context, filter ports.ListOffersFilter) ([]domain.Offer, error) {
	query := bson.M{}

	if filter.CityID != "" || filter.CategoryID != "" {
		ids, err := r.filterOfferIDs(ctx, filter.CityID, filter.CategoryID)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return []domain.Offer{}, nil
		}
		query["_id"] = bson.M{"$in": ids}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetSkip(int64(filter.Offset)).
		SetLimit(int64(filter.Limit))

	return r.findOffers(ctx, query, opts)
}

// filterOfferIDs intersects the join collections for the given filters.
func (r *OfferRepository) filterOfferIDs(ctx context.Context, cityID, categoryID string) ([]primitive.ObjectID, error) {
	var keep map[string]bool

	if cityID != "" {
		ids, err := linkedOfferIDs(ctx, r.cityLinks, cityID)
		if err != nil {
			return nil, err
		}
		keep = ids
	}
	if categoryID != "" {
		ids, err := linkedOfferIDs(ctx, r.catLinks, categoryID)
		if err != nil {
			return nil, err
		}
		if keep == nil {
			keep = ids
		} else {
			for id := range keep {
				if !ids[id] {
					delete(keep, id)
				}
			}
		}
	}

	oids := make([]primitive.ObjectID, 0, len(keep))
	for id := range keep {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		oids = append(oids, oid)
	}
	return oids, nil
}

func linkedOfferIDs(ctx context.Context, coll *mongo.Collection, targetID string) (map[string]bool, error) {
	cur, err := coll.Find(ctx, bson.M{"target_id": targetID})
	if err != nil {
		return nil, fmt.Errorf("find links: %w", err)
	}
	defer cur.Close(ctx)

	var links []offerLink
	if err := cur.All(ctx, &links); err != nil {
		return nil, fmt.Errorf("decode links: %w", err)
	}

	ids := make(map[string]bool, len(links))
	for _, l := range links {
		ids[l.OfferID] = true
	}
	return ids, nil
}

func (r *OfferRepository) SearchByTitle(ctx context.Context, substring string) ([]domain.Offer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "title", Value: 1}})
	return r.findOffers(ctx, bson.M{"title": substringRegex(substring)}, opts)
}

func (r *OfferRepository) findOffers(ctx context.Context, query bson.M, opts *options.FindOptions) ([]domain.Offer, error) {
	cur, err := r.offers.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find offers: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoOffer
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode offers: %w", err)
	}
	return r.resolveAssociations(ctx, docs)
}

// resolveAssociations eagerly loads the cities and categories of each offer in
// two bulk queries per relation, preserving the offers' order.
func (r *OfferRepository) resolveAssociations(ctx context.Context, docs []mongoOffer) ([]domain.Offer, error) {
	offers := make([]domain.Offer, 0, len(docs))
	if len(docs) == 0 {
		return offers, nil
	}

	offerIDs := make([]string, 0, len(docs))
	for _, d := range docs {
		offerIDs = append(offerIDs, d.ID.Hex())
	}

	cityLinks, err := linksByOffer(ctx, r.cityLinks, offerIDs)
	if err != nil {
		return nil, err
	}
	catLinks, err := linksByOffer(ctx, r.catLinks, offerIDs)
	if err != nil {
		return nil, err
	}

	cities, err := r.loadCities(ctx, collectValues(cityLinks))
	if err != nil {
		return nil, err
	}
	categories, err := r.loadCategories(ctx, collectValues(catLinks))
	if err != nil {
		return nil, err
	}

	for _, d := range docs {
		offer := d.toDomain()
		for _, cityID := range cityLinks[d.ID.Hex()] {
			if city, ok := cities[cityID]; ok {
				offer.Cities = append(offer.Cities, city)
			}
		}
		for _, categoryID := range catLinks[d.ID.Hex()] {
			if category, ok := categories[categoryID]; ok {
				offer.Categories = append(offer.Categories, category)
			}
		}
		offers = append(offers, offer)
	}
	return offers, nil
}

func linksByOffer(ctx context.Context, coll *mongo.Collection, offerIDs []string) (map[string][]string, error) {
	cur, err := coll.Find(ctx, bson.M{"offer_id": bson.M{"$in": offerIDs}})
	if err != nil {
		return nil, fmt.Errorf("find links: %w", err)
	}
	defer cur.Close(ctx)

	var links []offerLink
	if err := cur.All(ctx, &links); err != nil {
		return nil, fmt.Errorf("decode links: %w", err)
	}

	byOffer := make(map[string][]string, len(links))
	for _, l := range links {
		byOffer[l.OfferID] = append(byOffer[l.OfferID], l.TargetID)
	}
	return byOffer, nil
}

func collectValues(m map[string][]string) []primitive.ObjectID {
	seen := make(map[string]bool)
	var oids []primitive.ObjectID
	for _, vals := range m {
		for _, v := range vals {
			if seen[v] {
				continue
			}
			seen[v] = true
			if oid, err := primitive.ObjectIDFromHex(v); err == nil {
				oids = append(oids, oid)
			}
		}
	}
	return oids
}

func (r *OfferRepository) loadCities(ctx context.Context, ids []primitive.ObjectID) (map[string]domain.City, error) {
	out := make(map[string]domain.City, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cur, err := r.db.Collection(collectionCities).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("load cities: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoCity
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode cities: %w", err)
	}
	for _, d := range docs {
		out[d.ID.Hex()] = d.toDomain()
	}
	return out, nil
}

func (r *OfferRepository) loadCategories(ctx context.Context, ids []primitive.ObjectID) (map[string]domain.Category, error) {
	out := make(map[string]domain.Category, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cur, err := r.db.Collection(collectionCategories).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoCategory
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	for _, d := range docs {
		out[d.ID.Hex()] = d.toDomain()
	}
	return out, nil
}

// LinkCity upserts the join row. The upserted count is 0 when the pair
// already existed, which the service reports as a no-op.
func (r *OfferRepository) LinkCity(ctx context.Context, offerID, cityID string) (int64, error) {
	filter := bson.M{"offer_id": offerID, "target_id": cityID}
	update := bson.M{"$setOnInsert": offerLink{OfferID: offerID, TargetID: cityID}}

	res, err := r.cityLinks.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return 0, fmt.Errorf("link offer city: %w", err)
	}
	return res.UpsertedCount, nil
}

// UnlinkCity deletes the join row, reporting affected rows.
func (r *OfferRepository) UnlinkCity(ctx context.Context, offerID, cityID string) (int64, error) {
	res, err := r.cityLinks.DeleteOne(ctx, bson.M{"offer_id": offerID, "target_id": cityID})
	if err != nil {
		return 0, fmt.Errorf("unlink offer city: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *OfferRepository) CountByCity(ctx context.Context, cityID string) (int64, error) {
	n, err := r.cityLinks.CountDocuments(ctx, bson.M{"target_id": cityID})
	if err != nil {
		return 0, fmt.Errorf("count city links: %w", err)
	}
	return n, nil
}

func (r *OfferRepository) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	n, err := r.catLinks.CountDocuments(ctx, bson.M{"target_id": categoryID})
	if err != nil {
		return 0, fmt.Errorf("count category links: %w", err)
	}
	return n, nil
}

// EnsureIndexes creates the unique title index and the unique compound pair
// indexes that make duplicate join rows impossible.
func (r *OfferRepository) EnsureIndexes(ctx context.Context) error {
	if _, err := r.offers.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "title", Value: 1}},
		Options: uniqueIndex(),
	}); err != nil {
		return err
	}

	pair := bson.D{{Key: "offer_id", Value: 1}, {Key: "target_id", Value: 1}}
	for _, coll := range []*mongo.Collection{r.cityLinks, r.catLinks} {
		if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    pair,
			Options: uniqueIndex(),
		}); err != nil {
			return err
		}
	}
	return nil
}
