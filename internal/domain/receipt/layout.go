package receipt

import (
	"strconv"
	"time"
)

// Canvas geometry. The card is 400 logical pixels wide with a predictable row
// height, and grows by a fixed amount per line item. These constants must not
// drift or rendered receipts lose visual parity with prior output.
const (
	CanvasWidth    = 400
	BaseHeight     = 500
	PerItemHeight  = 50
	ExportWidth    = 450
	ExportZoom     = 1.5
	ExportQuality  = 95
	FooterTimeForm = "02/01/2006 15:04"
)

// CanvasHeight computes the canvas height for a receipt with n line items.
func CanvasHeight(itemCount int) int {
	return BaseHeight + itemCount*PerItemHeight
}

// PaymentDisplay selects how the tender section is laid out.
type PaymentDisplay string

const (
	// PaymentDisplayItemized renders one row per payment entry on the event.
	PaymentDisplayItemized PaymentDisplay = "ITEMIZED"
	// PaymentDisplaySingleRow renders one row carrying the receipt total,
	// labelled with Style.SingleRowLabel ("Transfer" on the classic card).
	PaymentDisplaySingleRow PaymentDisplay = "SINGLE_ROW"
)

// Style carries the per-shop presentation knobs. The shops served by this
// bridge share one card layout and differ only in these values.
type Style struct {
	ShopName       string
	LogoURL        string
	FooterLines    []string
	CreditLine     string
	PaymentDisplay PaymentDisplay
	SingleRowLabel string
	// ShowOrigin adds the employee and register rows under the total banner
	ShowOrigin bool
}

// DefaultStyle returns the stock card used when no shop style is configured.
func DefaultStyle() Style {
	return Style{
		ShopName:       "SM Shop",
		FooterLines:    []string{"Thank You!"},
		PaymentDisplay: PaymentDisplayItemized,
		SingleRowLabel: "Transfer",
	}
}

// BlockKind identifies one presentation block on the card.
type BlockKind string

const (
	BlockHeader      BlockKind = "HEADER"
	BlockTotalBanner BlockKind = "TOTAL_BANNER"
	BlockOrigin      BlockKind = "ORIGIN"
	BlockItemRow     BlockKind = "ITEM_ROW"
	BlockDivider     BlockKind = "DIVIDER"
	BlockTotalRecap  BlockKind = "TOTAL_RECAP"
	BlockPaymentRow  BlockKind = "PAYMENT_ROW"
	BlockFooter      BlockKind = "FOOTER"
)

// Block is one presentation block. Which fields are set depends on Kind:
// rows use Label/Value/Detail, the header uses Title/LogoURL, the footer
// uses Lines/Timestamp/ReceiptNumber.
type Block struct {
	Kind          BlockKind
	Title         string
	LogoURL       string
	Label         string
	Value         string
	Detail        string
	Lines         []string
	Timestamp     string
	ReceiptNumber string
}

// LayoutPlan is the computed presentation of one receipt: the canvas
// geometry, the export options the renderer expects, and the ordered blocks.
type LayoutPlan struct {
	CanvasWidth   int
	CanvasHeight  int
	ExportWidth   int
	ExportZoom    float64
	ExportQuality int
	Style         Style
	Blocks        []Block
}

// Layout computes the presentation plan for a receipt.
//
// The timestamp block carries now, the render time, not a transaction time;
// the platform event has no usable occurred-at field. Everything else is a
// pure function of the receipt and style.
func Layout(r *Receipt, style Style, now time.Time) *LayoutPlan {
	plan := &LayoutPlan{
		CanvasWidth:   CanvasWidth,
		CanvasHeight:  CanvasHeight(len(r.LineItems)),
		ExportWidth:   ExportWidth,
		ExportZoom:    ExportZoom,
		ExportQuality: ExportQuality,
		Style:         style,
	}

	plan.Blocks = append(plan.Blocks, Block{
		Kind:    BlockHeader,
		Title:   style.ShopName,
		LogoURL: style.LogoURL,
	})
	plan.Blocks = append(plan.Blocks, Block{
		Kind:  BlockTotalBanner,
		Value: r.Total.Format(),
	})

	if style.ShowOrigin {
		plan.Blocks = append(plan.Blocks, Block{
			Kind:  BlockOrigin,
			Label: r.EmployeeID,
			Value: r.StoreID,
		})
	}

	for _, item := range r.LineItems {
		plan.Blocks = append(plan.Blocks, Block{
			Kind:   BlockItemRow,
			Label:  item.Name,
			Value:  item.LineTotal().Format(),
			Detail: itemDetail(item),
		})
	}

	plan.Blocks = append(plan.Blocks, Block{Kind: BlockDivider})
	plan.Blocks = append(plan.Blocks, Block{
		Kind:  BlockTotalRecap,
		Label: "Total",
		Value: r.Total.Format(),
	})

	switch style.PaymentDisplay {
	case PaymentDisplaySingleRow:
		plan.Blocks = append(plan.Blocks, Block{
			Kind:  BlockPaymentRow,
			Label: style.SingleRowLabel,
			Value: r.Total.Format(),
		})
	default:
		for _, payment := range r.Payments {
			plan.Blocks = append(plan.Blocks, Block{
				Kind:  BlockPaymentRow,
				Label: payment.Name,
				Value: payment.Amount.Format(),
			})
		}
	}

	plan.Blocks = append(plan.Blocks, Block{
		Kind:          BlockFooter,
		Lines:         style.FooterLines,
		Timestamp:     now.Format(FooterTimeForm),
		ReceiptNumber: r.Number,
	})

	return plan
}

func itemDetail(item LineItem) string {
	return strconv.FormatInt(item.Quantity, 10) + " × " + item.UnitPrice.Format()
}
