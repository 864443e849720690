package receipt

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/receipt-relay/backend/internal/domain/shared"
	"github.com/receipt-relay/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Defaults applied when the platform omits a field. The webhook payload is
// best-effort data; absence is never an error.
const (
	DefaultIdentifier  = "N/A"
	DefaultItemName    = "Item"
	DefaultPaymentName = "Payment"
)

// Parse errors. ErrNoReceipts covers both a missing and an empty receipts
// array; the pipeline treats it as a no-op rather than a failure.
var (
	ErrNoReceipts       = shared.NewDomainError("NO_RECEIPTS", "webhook payload contains no receipts")
	ErrMalformedPayload = shared.NewDomainError("MALFORMED_PAYLOAD", "webhook payload is not valid JSON")
	ErrMalformedReceipt = shared.NewDomainError("MALFORMED_RECEIPT", "first receipt entry is not an object")
)

// Receipt is one sale notification pushed by the commerce platform.
//
// Total is authoritative for display. The platform never guarantees it equals
// the sum of the line totals, so nothing downstream may reconcile the two.
type Receipt struct {
	Number     string
	StoreID    string
	EmployeeID string
	Total      valueobject.Money
	LineItems  []LineItem
	Payments   []Payment
}

// LineItem is one purchased entry within a receipt.
type LineItem struct {
	Name      string
	Quantity  int64
	UnitPrice valueobject.Money

	// explicitTotal holds the platform-supplied line total, when present.
	explicitTotal *valueobject.Money
}

// NewLineItem creates a line item whose total derives from quantity and price.
func NewLineItem(name string, quantity int64, unitPrice valueobject.Money) LineItem {
	return LineItem{Name: name, Quantity: quantity, UnitPrice: unitPrice}
}

// NewLineItemWithTotal creates a line item with an explicit, authoritative total.
func NewLineItemWithTotal(name string, quantity int64, unitPrice, total valueobject.Money) LineItem {
	return LineItem{Name: name, Quantity: quantity, UnitPrice: unitPrice, explicitTotal: &total}
}

// LineTotal returns the platform-supplied total when one was present,
// otherwise quantity × unit price.
func (li LineItem) LineTotal() valueobject.Money {
	if li.explicitTotal != nil {
		return *li.explicitTotal
	}
	return li.UnitPrice.MultiplyByInt(li.Quantity)
}

// HasExplicitTotal reports whether the platform supplied the line total.
func (li LineItem) HasExplicitTotal() bool {
	return li.explicitTotal != nil
}

// Payment is one tender entry within a receipt.
type Payment struct {
	Name   string
	Amount valueobject.Money
}

// Wire types matching the platform webhook body:
//
//	{"receipts": [{receipt_number, store_id, employee_id, total_money,
//	  line_items: [{item_name, quantity, price, total_money?}],
//	  payments: [{name, money_amount}]}, ...]}
type webhookEnvelope struct {
	Receipts []json.RawMessage `json:"receipts"`
}

type wireReceipt struct {
	ReceiptNumber *string        `json:"receipt_number"`
	StoreID       *string        `json:"store_id"`
	EmployeeID    *string        `json:"employee_id"`
	TotalMoney    *float64       `json:"total_money"`
	LineItems     []wireLineItem `json:"line_items"`
	Payments      []wirePayment  `json:"payments"`
}

type wireLineItem struct {
	ItemName   *string  `json:"item_name"`
	Quantity   *float64 `json:"quantity"`
	Price      *float64 `json:"price"`
	TotalMoney *float64 `json:"total_money"`
}

type wirePayment struct {
	Name        *string  `json:"name"`
	MoneyAmount *float64 `json:"money_amount"`
}

// ParseWebhook extracts the first receipt from a raw webhook payload.
//
// It fails only when there is no usable receipt entry: missing or empty
// receipts array, undecodable JSON, or a first entry that is not an object.
// Every field-level absence resolves to the documented defaults instead.
func ParseWebhook(raw []byte) (*Receipt, error) {
	var envelope webhookEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if len(envelope.Receipts) == 0 {
		return nil, ErrNoReceipts
	}

	// Only the first receipt is processed; the platform sends one per event.
	// Unmarshal alone cannot catch a null entry (it leaves the struct
	// untouched), so the entry must be checked to be an object first.
	first := bytes.TrimSpace(envelope.Receipts[0])
	if len(first) == 0 || first[0] != '{' {
		return nil, ErrMalformedReceipt
	}

	var wire wireReceipt
	if err := json.Unmarshal(first, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReceipt, err)
	}

	r := &Receipt{
		Number:     stringOrDefault(wire.ReceiptNumber, DefaultIdentifier),
		StoreID:    stringOrDefault(wire.StoreID, DefaultIdentifier),
		EmployeeID: stringOrDefault(wire.EmployeeID, DefaultIdentifier),
		Total:      moneyOrZero(wire.TotalMoney),
	}

	for _, item := range wire.LineItems {
		name := stringOrDefault(item.ItemName, DefaultItemName)
		quantity := int64(floatOrZero(item.Quantity))
		unitPrice := moneyOrZero(item.Price)
		if item.TotalMoney != nil {
			r.LineItems = append(r.LineItems,
				NewLineItemWithTotal(name, quantity, unitPrice, moneyOrZero(item.TotalMoney)))
		} else {
			r.LineItems = append(r.LineItems, NewLineItem(name, quantity, unitPrice))
		}
	}

	for _, payment := range wire.Payments {
		r.Payments = append(r.Payments, Payment{
			Name:   stringOrDefault(payment.Name, DefaultPaymentName),
			Amount: moneyOrZero(payment.MoneyAmount),
		})
	}

	return r, nil
}

func stringOrDefault(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

func floatOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func moneyOrZero(f *float64) valueobject.Money {
	if f == nil {
		return valueobject.ZeroMVR()
	}
	return valueobject.NewMoneyMVR(decimal.NewFromFloat(*f))
}
