package ports

// PurchasedItem is one receipt line in a purchase notification.
type PurchasedItem struct {
	Name     string
	Quantity int
	Price    float64 // unit price in points
}

// Notifier delivers best-effort receipts to the student and the canteen
// administrators. Implementations must not block the caller on delivery
// and must never surface delivery errors to it.
type Notifier interface {
	PurchaseNotification(studentEmail, studentName string, items []PurchasedItem, total, newBalance float64)
	BalanceUpdateNotification(studentEmail, studentName string, amount, newBalance float64)
}
