package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lacanteen/canteen-system/internal/core/domain"
)

const (
	studentsCollection      = "students"
	subscriptionsCollection = "subscriptions"
)

type StudentRepository struct {
	students *mongo.Collection
	subs     *mongo.Collection
}

func NewStudentRepository(db *mongo.Database) *StudentRepository {
	return &StudentRepository{
		students: db.Collection(studentsCollection),
		subs:     db.Collection(subscriptionsCollection),
	}
}

// Create inserts a new student document.
func (r *StudentRepository) Create(ctx context.Context, s *domain.Student) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.students.InsertOne(ctx, s)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrStudentExists
		}
		return fmt.Errorf("insert student: %w", err)
	}
	return nil
}

func (r *StudentRepository) FindByID(ctx context.Context, id string) (*domain.Student, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByCardID resolves a student by card identifier; with
// withSubscriptions set, subscriptions whose end date has not passed are
// attached to the result.
func (r *StudentRepository) FindByCardID(ctx context.Context, cardID string, withSubscriptions bool) (*domain.Student, error) {
	student, err := r.findOne(ctx, bson.M{"card_id": cardID})
	if err != nil {
		return nil, err
	}
	if withSubscriptions {
		subs, err := r.activeSubscriptions(ctx, student.ID)
		if err != nil {
			return nil, err
		}
		student.Subscriptions = subs
	}
	return student, nil
}

func (r *StudentRepository) FindByExternalCode(ctx context.Context, code string) (*domain.Student, error) {
	return r.findOne(ctx, bson.M{"external_code": code})
}

// IncrementBalance atomically adds amount to the balance and returns the
// updated document. Amount positivity is the service's responsibility.
func (r *StudentRepository) IncrementBalance(ctx context.Context, id string, amount float64) (*domain.Student, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$inc": bson.M{"balance": amount},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var s domain.Student
	err := r.students.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrStudentNotFound
		}
		return nil, fmt.Errorf("increment balance: %w", err)
	}
	return &s, nil
}

func (r *StudentRepository) CreateSubscription(ctx context.Context, sub *domain.Subscription) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.subs.InsertOne(ctx, sub); err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

func (r *StudentRepository) UpdatePhoto(ctx context.Context, externalCode, photoURL string) (*domain.Student, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{"photo": photoURL, "updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var s domain.Student
	err := r.students.FindOneAndUpdate(ctx, bson.M{"external_code": externalCode}, update, opts).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrStudentNotFound
		}
		return nil, fmt.Errorf("update photo: %w", err)
	}
	return &s, nil
}

func (r *StudentRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.students.CountDocuments(ctx, bson.M{})
}

// CountWithSubscriptionType counts distinct students holding at least one
// subscription of the given type, regardless of expiry.
func (r *StudentRepository) CountWithSubscriptionType(ctx context.Context, t domain.SubscriptionType) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	ids, err := r.subs.Distinct(ctx, "student_id", bson.M{"type": string(t)})
	if err != nil {
		return 0, fmt.Errorf("count subscribers: %w", err)
	}
	return int64(len(ids)), nil
}

// EnsureIndexes creates the lookup indexes on students and subscriptions.
func (r *StudentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.students.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "card_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "external_code", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
	})
	if err != nil {
		return err
	}

	_, err = r.subs.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "student_id", Value: 1}}},
		{Keys: bson.D{{Key: "type", Value: 1}}},
	})
	return err
}

func (r *StudentRepository) findOne(ctx context.Context, filter bson.M) (*domain.Student, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var s domain.Student
	if err := r.students.FindOne(ctx, filter).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrStudentNotFound
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &s, nil
}

func (r *StudentRepository) activeSubscriptions(ctx context.Context, studentID string) ([]domain.Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"student_id": studentID,
		"end_date":   bson.M{"$gte": time.Now().UTC()},
	}
	cur, err := r.subs.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find subscriptions: %w", err)
	}
	defer cur.Close(ctx)

	var subs []domain.Subscription
	if err := cur.All(ctx, &subs); err != nil {
		return nil, fmt.Errorf("decode subscriptions: %w", err)
	}
	return subs, nil
}
