package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lacanteen/canteen-system/internal/core/domain"
	"github.com/lacanteen/canteen-system/internal/core/ports"
)

const transactionsCollection = "transactions"

// LedgerRepository owns the balance/transaction ledger. Debit runs inside
// a MongoDB session transaction so the balance decrement and the inserted
// transaction rows commit or discard as one unit.
type LedgerRepository struct {
	client   *mongo.Client
	students *mongo.Collection
	txs      *mongo.Collection
}

func NewLedgerRepository(client *mongo.Client, db *mongo.Database) *LedgerRepository {
	return &LedgerRepository{
		client:   client,
		students: db.Collection(studentsCollection),
		txs:      db.Collection(transactionsCollection),
	}
}

// Debit atomically charges total against the student's balance and
// records one transaction row per line. The balance is re-read inside
// the transaction scope: the caller's earlier check is advisory only,
// and two concurrent debits against the same student serialize here.
// The decrement itself is additionally guarded by a balance >= total
// filter, so even under weaker read isolation the balance cannot go
// negative.
func (r *LedgerRepository) Debit(ctx context.Context, studentID string, total float64, lines []ports.DebitLine) (float64, []domain.Transaction, error) {
	session, err := r.client.StartSession()
	if err != nil {
		return 0, nil, fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		// Re-check under the transaction's isolation.
		var student domain.Student
		if err := r.students.FindOne(sc, bson.M{"_id": studentID}).Decode(&student); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, domain.ErrStudentNotFound
			}
			return nil, fmt.Errorf("re-read balance: %w", err)
		}
		if student.Balance < total {
			return nil, domain.ErrInsufficientBalance
		}

		// Guarded decrement: matches only while the balance still covers
		// the total.
		res, err := r.students.UpdateOne(sc,
			bson.M{"_id": studentID, "balance": bson.M{"$gte": total}},
			bson.M{
				"$inc": bson.M{"balance": -total},
				"$set": bson.M{"updated_at": time.Now().UTC()},
			},
		)
		if err != nil {
			return nil, fmt.Errorf("decrement balance: %w", err)
		}
		if res.MatchedCount == 0 {
			return nil, domain.ErrInsufficientBalance
		}

		now := time.Now().UTC()
		created := make([]domain.Transaction, 0, len(lines))
		docs := make([]interface{}, 0, len(lines))
		for _, line := range lines {
			tx := domain.Transaction{
				ID:        uuid.NewString(),
				StudentID: studentID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Amount:    line.Amount,
				CreatedAt: now,
			}
			created = append(created, tx)
			docs = append(docs, tx)
		}
		if _, err := r.txs.InsertMany(sc, docs); err != nil {
			return nil, fmt.Errorf("insert transactions: %w", err)
		}

		return debitOutcome{balance: student.Balance - total, created: created}, nil
	})
	if err != nil {
		return 0, nil, err
	}

	outcome := result.(debitOutcome)
	return outcome.balance, outcome.created, nil
}

type debitOutcome struct {
	balance float64
	created []domain.Transaction
}

// historyRow is the $lookup-joined shape decoded from the aggregation.
type historyRow struct {
	domain.Transaction `bson:",inline"`
	Student            struct {
		Name  string `bson:"name"`
		Grade string `bson:"grade"`
	} `bson:"student"`
	Product struct {
		Name  string  `bson:"name"`
		Price float64 `bson:"price"`
	} `bson:"product"`
}

// Recent returns the latest limit transactions joined with student and
// product details, newest first.
func (r *LedgerRepository) Recent(ctx context.Context, limit int) ([]ports.HistoryEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: studentsCollection},
			{Key: "localField", Value: "student_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "student"},
		}}},
		{{Key: "$unwind", Value: bson.D{{Key: "path", Value: "$student"}, {Key: "preserveNullAndEmptyArrays", Value: true}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: productsCollection},
			{Key: "localField", Value: "product_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "product"},
		}}},
		{{Key: "$unwind", Value: bson.D{{Key: "path", Value: "$product"}, {Key: "preserveNullAndEmptyArrays", Value: true}}}},
	}

	cur, err := r.txs.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate history: %w", err)
	}
	defer cur.Close(ctx)

	var rows []historyRow
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}

	entries := make([]ports.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, ports.HistoryEntry{
			Transaction: row.Transaction,
			StudentName: row.Student.Name,
			Grade:       row.Student.Grade,
			ProductName: row.Product.Name,
			UnitPrice:   row.Product.Price,
		})
	}
	return entries, nil
}

func (r *LedgerRepository) TopProductsByQuantity(ctx context.Context, limit int) ([]ports.ProductCount, error) {
	return r.topProducts(ctx, bson.D{{Key: "$sum", Value: "$quantity"}}, limit)
}

func (r *LedgerRepository) TopProductsByFrequency(ctx context.Context, limit int) ([]ports.ProductCount, error) {
	return r.topProducts(ctx, bson.D{{Key: "$sum", Value: 1}}, limit)
}

func (r *LedgerRepository) topProducts(ctx context.Context, accumulator bson.D, limit int) ([]ports.ProductCount, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$product_id"},
			{Key: "count", Value: accumulator},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}

	cur, err := r.txs.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate top products: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		ProductID string `bson:"_id"`
		Count     int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode top products: %w", err)
	}

	counts := make([]ports.ProductCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, ports.ProductCount{ProductID: row.ProductID, Count: row.Count})
	}
	return counts, nil
}

// EnsureIndexes creates the history/aggregation indexes on transactions.
func (r *LedgerRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.txs.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "product_id", Value: 1}}},
	})
	return err
}
