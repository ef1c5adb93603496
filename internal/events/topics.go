package events

// Topic constants for domain events emitted by the point of sale.
const (
	TopicInvoiceFinalized  = "invoice.finalized"
	TopicInventoryLowStock = "inventory.low_stock"
	TopicCustomerCreated   = "customer.created"
)

// DefaultTopics returns the canonical list of emitted topics.
func DefaultTopics() []string {
	return []string{
		TopicInvoiceFinalized,
		TopicInventoryLowStock,
		TopicCustomerCreated,
	}
}
