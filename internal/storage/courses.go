package storage

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Course is a catalog entry. Code is the unique natural key, stored
// uppercase.
type Course struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Code        string             `bson:"code" json:"code"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Instructor  string             `bson:"instructor,omitempty" json:"instructor,omitempty"`
	Credits     int                `bson:"credits" json:"credits"`
	Duration    int                `bson:"duration" json:"duration"`
	Status      string             `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

const (
	CourseActive    = "active"
	CourseInactive  = "inactive"
	CourseCompleted = "completed"
)

func ValidCourseStatus(s string) bool {
	switch s {
	case CourseActive, CourseInactive, CourseCompleted:
		return true
	}
	return false
}

func NormalizeCourseCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

type CourseStore interface {
	Insert(ctx context.Context, c *Course) error
	FindByID(ctx context.Context, id string) (*Course, error)
	FindByCode(ctx context.Context, code string) (*Course, error)
	List(ctx context.Context) ([]Course, error)
	Update(ctx context.Context, id string, c *Course) (*Course, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type MongoCourseStore struct {
	coll *mongo.Collection
}

func NewMongoCourseStore(db *mongo.Database, coll string) *MongoCourseStore {
	return &MongoCourseStore{coll: db.Collection(coll)}
}

func (m *MongoCourseStore) EnsureIndexes(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (m *MongoCourseStore) Insert(ctx context.Context, c *Course) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	c.Code = NormalizeCourseCode(c.Code)
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := m.coll.InsertOne(ctx, c)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (m *MongoCourseStore) FindByID(ctx context.Context, id string) (*Course, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var c Course
	err = m.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (m *MongoCourseStore) FindByCode(ctx context.Context, code string) (*Course, error) {
	var c Course
	err := m.coll.FindOne(ctx, bson.M{"code": NormalizeCourseCode(code)}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (m *MongoCourseStore) List(ctx context.Context) ([]Course, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := m.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	courses := []Course{}
	if err := cur.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (m *MongoCourseStore) Update(ctx context.Context, id string, c *Course) (*Course, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	set := bson.M{
		"name":        c.Name,
		"code":        NormalizeCourseCode(c.Code),
		"description": c.Description,
		"instructor":  c.Instructor,
		"credits":     c.Credits,
		"duration":    c.Duration,
		"status":      c.Status,
		"updated_at":  time.Now().UTC(),
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var out Course
	err = m.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&out)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *MongoCourseStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := m.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoCourseStore) Count(ctx context.Context) (int64, error) {
	return m.coll.CountDocuments(ctx, bson.M{})
}
