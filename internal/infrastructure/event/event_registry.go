package event

import (
	"github.com/backoffice/backend/internal/domain/finance"
)

// RegisterAllEvents registers all domain event types with the serializer
// This is required for the OutboxProcessor to deserialize events from the outbox table
func RegisterAllEvents(serializer *EventSerializer) {
	// Invoice events
	serializer.Register(finance.EventTypeInvoiceCreated, &finance.InvoiceCreatedEvent{})
	serializer.Register(finance.EventTypeInvoiceSent, &finance.InvoiceSentEvent{})
	serializer.Register(finance.EventTypeInvoicePaid, &finance.InvoicePaidEvent{})
	serializer.Register(finance.EventTypeInvoicePartiallyPaid, &finance.InvoicePartiallyPaidEvent{})
	serializer.Register(finance.EventTypeProformaConverted, &finance.ProformaConvertedEvent{})
	serializer.Register(finance.EventTypeInvoiceCancelled, &finance.InvoiceCancelledEvent{})

	// Customer payment events
	serializer.Register(finance.EventTypePaymentReceived, &finance.PaymentReceivedEvent{})
	serializer.Register(finance.EventTypePaymentAllocated, &finance.PaymentAllocatedEvent{})
	serializer.Register(finance.EventTypePaymentFullyAllocated, &finance.PaymentFullyAllocatedEvent{})

	// Credit note events
	serializer.Register(finance.EventTypeCreditNoteCreated, &finance.CreditNoteCreatedEvent{})
	serializer.Register(finance.EventTypeCreditNoteApplied, &finance.CreditNoteAppliedEvent{})
	serializer.Register(finance.EventTypeCreditNoteFullyApplied, &finance.CreditNoteFullyAppliedEvent{})
	serializer.Register(finance.EventTypeCreditNoteVoided, &finance.CreditNoteVoidedEvent{})

	// Customer credit events
	serializer.Register(finance.EventTypeCreditBalanceRecalculated, &finance.CreditBalanceRecalculatedEvent{})
}
