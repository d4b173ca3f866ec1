package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/lacanteen/canteen-system/internal/api/metrics"
	"github.com/lacanteen/canteen-system/internal/core/domain"
	"github.com/lacanteen/canteen-system/internal/core/ports"
)

// ReplayGuard abstracts the idempotency store (Redis). Claim returns
// false when the key has already been claimed by an earlier submission.
type ReplayGuard interface {
	Claim(ctx context.Context, key string) (bool, error)
}

type checkoutService struct {
	students ports.StudentRepository
	catalog  ports.CatalogRepository
	ledger   ports.LedgerRepository
	notifier ports.Notifier
	replay   ReplayGuard
	log      zerolog.Logger
}

// NewCheckoutService returns a CheckoutService. replay may be nil, in
// which case idempotency keys are ignored.
func NewCheckoutService(
	students ports.StudentRepository,
	catalog ports.CatalogRepository,
	ledger ports.LedgerRepository,
	notifier ports.Notifier,
	replay ReplayGuard,
	log zerolog.Logger,
) ports.CheckoutService {
	return &checkoutService{
		students: students,
		catalog:  catalog,
		ledger:   ledger,
		notifier: notifier,
		replay:   replay,
		log:      log,
	}
}

// Checkout charges a student's balance for a cart of products. The debit
// and the transaction inserts happen in one atomic unit of work inside
// the ledger; the balance re-check in there is what makes two concurrent
// scans of the same card safe. Everything before that point is
// validation and an advisory pre-check, and must not mutate anything.
func (s *checkoutService) Checkout(ctx context.Context, in ports.CheckoutInput) (*ports.CheckoutResult, error) {
	start := time.Now()

	// 1. Reject malformed carts before touching any store.
	if err := validateCart(in); err != nil {
		metrics.CheckoutsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	// 2. Replay protection: claim the idempotency key first so a retried
	// submission can never charge twice. Degraded-open on store failure.
	if s.replay != nil && in.IdempotencyKey != "" {
		fresh, err := s.replay.Claim(ctx, in.IdempotencyKey)
		if err != nil {
			s.log.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("replay check failed, processing anyway")
		} else if !fresh {
			metrics.CheckoutsTotal.WithLabelValues("duplicate").Inc()
			return nil, domain.ErrDuplicateCheckout
		}
	}

	// 3. Resolve the student from the card or the explicit id.
	student, err := s.resolveStudent(ctx, in)
	if err != nil {
		metrics.CheckoutsTotal.WithLabelValues("not_found").Inc()
		return nil, err
	}

	// 4. Re-derive every line price from the catalog. The terminal's
	// cached prices are a display hint only and are never charged.
	lines, items, total, err := s.priceCart(ctx, in.Items)
	if err != nil {
		metrics.CheckoutsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}
	if in.DisplayTotal > 0 && math.Abs(in.DisplayTotal-total) > 0.005 {
		s.log.Warn().
			Str("student_id", student.ID).
			Float64("terminal_total", in.DisplayTotal).
			Float64("catalog_total", total).
			Msg("terminal total disagrees with catalog, charging catalog total")
	}

	// 5. Advisory pre-check. This read happens outside the transaction
	// boundary, so the ledger re-checks before decrementing.
	if student.Balance < total {
		metrics.CheckoutsTotal.WithLabelValues("insufficient_balance").Inc()
		return nil, domain.ErrInsufficientBalance
	}

	// 6. The atomic unit of work: re-check, decrement, insert.
	newBalance, txs, err := s.ledger.Debit(ctx, student.ID, total, lines)
	if err != nil {
		if err == domain.ErrInsufficientBalance {
			metrics.CheckoutsTotal.WithLabelValues("insufficient_balance").Inc()
			return nil, err
		}
		metrics.CheckoutsTotal.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Str("student_id", student.ID).Msg("ledger debit failed")
		return nil, fmt.Errorf("checkout: debit: %w", err)
	}

	// 7. Post-commit receipt. Best effort: the notifier owns delivery and
	// its failures never unwind a committed checkout.
	s.notifier.PurchaseNotification(student.Email, student.Name, items, total, newBalance)

	metrics.CheckoutsTotal.WithLabelValues("success").Inc()
	metrics.CheckoutAmountPoints.Observe(total)
	metrics.CheckoutDuration.Observe(time.Since(start).Seconds())

	s.log.Info().
		Str("student_id", student.ID).
		Float64("total", total).
		Float64("new_balance", newBalance).
		Int("lines", len(txs)).
		Msg("checkout committed")

	return &ports.CheckoutResult{
		StudentName:  student.Name,
		NewBalance:   newBalance,
		Transactions: txs,
	}, nil
}

func validateCart(in ports.CheckoutInput) error {
	if in.CardID == "" && in.StudentID == "" {
		return fmt.Errorf("%w: missing student locator", domain.ErrInvalidCheckout)
	}
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: empty cart", domain.ErrInvalidCheckout)
	}
	for _, item := range in.Items {
		if item.ProductID == "" {
			return fmt.Errorf("%w: missing product id", domain.ErrInvalidCheckout)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidCheckout)
		}
		if item.UnitPrice < 0 {
			return fmt.Errorf("%w: negative price", domain.ErrInvalidCheckout)
		}
	}
	return nil
}

func (s *checkoutService) resolveStudent(ctx context.Context, in ports.CheckoutInput) (*domain.Student, error) {
	if in.CardID != "" {
		return s.students.FindByCardID(ctx, in.CardID, false)
	}
	return s.students.FindByID(ctx, in.StudentID)
}

// priceCart resolves every cart line against the catalog and returns the
// ledger lines, the receipt items, and the authoritative total.
func (s *checkoutService) priceCart(ctx context.Context, cart []ports.CartItem) ([]ports.DebitLine, []ports.PurchasedItem, float64, error) {
	ids := make([]string, 0, len(cart))
	for _, item := range cart {
		ids = append(ids, item.ProductID)
	}

	products, err := s.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("checkout: load products: %w", err)
	}
	byID := make(map[string]*domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]ports.DebitLine, 0, len(cart))
	items := make([]ports.PurchasedItem, 0, len(cart))
	var total float64
	for _, item := range cart {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, nil, 0, fmt.Errorf("%w: unknown product %s", domain.ErrInvalidCheckout, item.ProductID)
		}
		amount := product.Price * float64(item.Quantity)
		total += amount
		lines = append(lines, ports.DebitLine{
			ProductID: product.ID,
			Quantity:  item.Quantity,
			Amount:    amount,
		})
		items = append(items, ports.PurchasedItem{
			Name:     product.Name,
			Quantity: item.Quantity,
			Price:    product.Price,
		})
	}
	return lines, items, total, nil
}
