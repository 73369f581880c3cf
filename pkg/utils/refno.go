package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateInvoiceNo generates a unique invoice number for a completed sale
func GenerateInvoiceNo() string {
	return "INV-" + strings.ToUpper(uuid.New().String()[:8])
}

// GeneratePurchaseNo generates a unique purchase reference number
func GeneratePurchaseNo() string {
	return "PUR-" + strings.ToUpper(uuid.New().String()[:8])
}

// GenerateBarcode generates a fallback barcode for products created without one
func GenerateBarcode() string {
	return "PRD-" + strings.ToUpper(uuid.New().String()[:8])
}
