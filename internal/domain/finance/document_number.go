package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DocumentType identifies which document a generated number belongs to
type DocumentType string

const (
	DocumentTypeInvoice    DocumentType = "INVOICE"
	DocumentTypeProforma   DocumentType = "PROFORMA"
	DocumentTypePayment    DocumentType = "PAYMENT"
	DocumentTypeCreditNote DocumentType = "CREDIT_NOTE"
)

// IsValid checks if the document type is valid
func (d DocumentType) IsValid() bool {
	switch d {
	case DocumentTypeInvoice, DocumentTypeProforma, DocumentTypePayment, DocumentTypeCreditNote:
		return true
	}
	return false
}

// Prefix returns the human-readable number prefix for the document type
func (d DocumentType) Prefix() string {
	switch d {
	case DocumentTypeInvoice:
		return "INV"
	case DocumentTypeProforma:
		return "PRO"
	case DocumentTypePayment:
		return "PAY"
	case DocumentTypeCreditNote:
		return "CN"
	default:
		return "DOC"
	}
}

// NumberPeriod returns the YYYYMM period used for document numbering
func NumberPeriod(t time.Time) string {
	return t.Format("200601")
}

// FormatDocumentNumber renders a document number as PREFIX-YYYYMM-NNNN
// The sequence is zero-padded to four digits and grows beyond that naturally
func FormatDocumentNumber(docType DocumentType, period string, sequence int64) string {
	return fmt.Sprintf("%s-%s-%04d", docType.Prefix(), period, sequence)
}

// NumberGenerator allocates unique document numbers per tenant, document
// type and monthly period. Implementations must be safe under concurrent
// calls for the same scope.
type NumberGenerator interface {
	NextNumber(ctx context.Context, tenantID uuid.UUID, docType DocumentType, at time.Time) (string, error)
}
