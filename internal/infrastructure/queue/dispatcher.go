package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/lacanteen/canteen-system/internal/api/metrics"
	"github.com/lacanteen/canteen-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

const (
	kindPurchase      = "purchase"
	kindBalanceUpdate = "balance_update"
)

// Sender is the synchronous delivery backend (the SMTP mailer).
type Sender interface {
	SendPurchase(studentEmail, studentName string, items []ports.PurchasedItem, total, newBalance float64) error
	SendBalanceUpdate(studentEmail, studentName string, amount, newBalance float64) error
}

type notification struct {
	kind         string
	studentEmail string
	studentName  string
	items        []ports.PurchasedItem
	amount       float64
	total        float64
	newBalance   float64
}

// Dispatcher routes receipt notifications to a fixed set of workers using
// consistent hashing on the student email, so a student's receipts are
// delivered in the order their operations committed. It implements
// ports.Notifier: enqueueing never blocks checkout on SMTP, and delivery
// failures are logged and counted, never propagated.
type Dispatcher struct {
	workers []chan notification
	sender  Sender
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers delivery workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sender Sender, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan notification, numWorkers),
		sender:  sender,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan notification, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// PurchaseNotification enqueues a purchase receipt.
func (d *Dispatcher) PurchaseNotification(studentEmail, studentName string, items []ports.PurchasedItem, total, newBalance float64) {
	d.enqueue(notification{
		kind:         kindPurchase,
		studentEmail: studentEmail,
		studentName:  studentName,
		items:        items,
		total:        total,
		newBalance:   newBalance,
	})
}

// BalanceUpdateNotification enqueues a top-up receipt.
func (d *Dispatcher) BalanceUpdateNotification(studentEmail, studentName string, amount, newBalance float64) {
	d.enqueue(notification{
		kind:         kindBalanceUpdate,
		studentEmail: studentEmail,
		studentName:  studentName,
		amount:       amount,
		newBalance:   newBalance,
	})
}

// enqueue routes to the worker responsible for the student. A full worker
// channel drops the receipt rather than stalling a committed checkout.
func (d *Dispatcher) enqueue(n notification) {
	idx := d.shardIndex(n.studentEmail)
	select {
	case d.workers[idx] <- n:
		metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.NotificationsTotal.WithLabelValues(n.kind, "error").Inc()
		d.log.Warn().Str("kind", n.kind).Str("student", n.studentName).Msg("notification queue full, receipt dropped")
	}
}

// shardIndex maps a student email deterministically to a worker index.
func (d *Dispatcher) shardIndex(studentEmail string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(studentEmail))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan notification) {
	workerID := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			metrics.NotificationQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))

			var err error
			switch n.kind {
			case kindPurchase:
				err = d.sender.SendPurchase(n.studentEmail, n.studentName, n.items, n.total, n.newBalance)
			case kindBalanceUpdate:
				err = d.sender.SendBalanceUpdate(n.studentEmail, n.studentName, n.amount, n.newBalance)
			}
			if err != nil {
				metrics.NotificationsTotal.WithLabelValues(n.kind, "error").Inc()
				d.log.Error().Err(err).
					Str("kind", n.kind).
					Str("student", n.studentName).
					Int("worker_id", id).
					Msg("receipt delivery failed")
				continue
			}
			metrics.NotificationsTotal.WithLabelValues(n.kind, "sent").Inc()
		}
	}
}
