package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/receipt-relay/backend/internal/domain/receipt"
	"github.com/receipt-relay/backend/internal/domain/shared/valueobject"
)

func testReceipt() *receipt.Receipt {
	return &receipt.Receipt{
		Number:     "2-1042",
		StoreID:    "store-1",
		EmployeeID: "emp-1",
		Total:      valueobject.NewMoneyMVRFromFloat(550),
		LineItems: []receipt.LineItem{
			receipt.NewLineItem("Coffee", 2, valueobject.NewMoneyMVRFromFloat(100)),
			receipt.NewLineItemWithTotal("Croissant", 1,
				valueobject.NewMoneyMVRFromFloat(350),
				valueobject.NewMoneyMVRFromFloat(350)),
		},
		Payments: []receipt.Payment{
			{Name: "Cash", Amount: valueobject.NewMoneyMVRFromFloat(550)},
		},
	}
}

func TestTemplateEngine_RenderHTML(t *testing.T) {
	engine, err := NewTemplateEngine()
	require.NoError(t, err)

	style := receipt.DefaultStyle()
	style.LogoURL = "https://cdn.example.com/logo.png"
	style.CreditLine = "Powered by SM Shop"

	now := time.Date(2025, 3, 14, 21, 5, 0, 0, time.UTC)
	plan := receipt.Layout(testReceipt(), style, now)

	html, err := engine.RenderHTML(plan)
	require.NoError(t, err)

	assert.Contains(t, html, "<h2>SM Shop</h2>")
	assert.Contains(t, html, `src="https://cdn.example.com/logo.png"`)
	assert.Contains(t, html, `width: 400px`)
	assert.Contains(t, html, `height: 600px`)
	assert.Contains(t, html, `<p class="total">MVR 550.00</p>`)
	assert.Contains(t, html, "<span>Coffee</span>")
	assert.Contains(t, html, "<span>MVR 200.00</span>")
	assert.Contains(t, html, "2 × MVR 100.00")
	assert.Contains(t, html, "<span>Croissant</span>")
	assert.Contains(t, html, "<span>MVR 350.00</span>")
	assert.Contains(t, html, "<span>Cash</span>")
	assert.Contains(t, html, "Thank You!")
	assert.Contains(t, html, "14/03/2025 21:05")
	assert.Contains(t, html, "Receipt № 2-1042")
	assert.Contains(t, html, "Powered by SM Shop")
}

func TestTemplateEngine_RenderHTML_NoLogoNoCredit(t *testing.T) {
	engine, err := NewTemplateEngine()
	require.NoError(t, err)

	plan := receipt.Layout(testReceipt(), receipt.DefaultStyle(), time.Now())

	html, err := engine.RenderHTML(plan)
	require.NoError(t, err)

	assert.NotContains(t, html, "<img")
	assert.NotContains(t, html, "footer-bottom")
}

func TestTemplateEngine_RenderHTML_OriginRows(t *testing.T) {
	engine, err := NewTemplateEngine()
	require.NoError(t, err)

	style := receipt.DefaultStyle()
	style.ShowOrigin = true

	html, err := engine.RenderHTML(receipt.Layout(testReceipt(), style, time.Now()))
	require.NoError(t, err)

	assert.Contains(t, html, "Employee: emp-1")
	assert.Contains(t, html, "POS: store-1")

	html, err = engine.RenderHTML(receipt.Layout(testReceipt(), receipt.DefaultStyle(), time.Now()))
	require.NoError(t, err)
	assert.NotContains(t, html, "Employee:")
}

func TestTemplateEngine_RenderHTML_SingleRowPayments(t *testing.T) {
	engine, err := NewTemplateEngine()
	require.NoError(t, err)

	style := receipt.DefaultStyle()
	style.PaymentDisplay = receipt.PaymentDisplaySingleRow

	html, err := engine.RenderHTML(receipt.Layout(testReceipt(), style, time.Now()))
	require.NoError(t, err)

	assert.Contains(t, html, "<span>Transfer</span>")
	assert.NotContains(t, html, "<span>Cash</span>")
}

func TestTemplateEngine_RenderHTML_EscapesItemNames(t *testing.T) {
	engine, err := NewTemplateEngine()
	require.NoError(t, err)

	r := testReceipt()
	r.LineItems = []receipt.LineItem{
		receipt.NewLineItem("<script>alert(1)</script>", 1, valueobject.NewMoneyMVRFromFloat(10)),
	}

	html, err := engine.RenderHTML(receipt.Layout(r, receipt.DefaultStyle(), time.Now()))
	require.NoError(t, err)

	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestTemplateEngine_RenderHTML_MultiLineFooter(t *testing.T) {
	engine, err := NewTemplateEngine()
	require.NoError(t, err)

	style := receipt.DefaultStyle()
	style.FooterLines = []string{"Thank You!", "Visit us again"}

	html, err := engine.RenderHTML(receipt.Layout(testReceipt(), style, time.Now()))
	require.NoError(t, err)

	assert.Contains(t, html, "Thank You!<br>Visit us again")
}

func TestTemplateEngine_RenderHTML_NilPlan(t *testing.T) {
	engine, err := NewTemplateEngine()
	require.NoError(t, err)

	_, err = engine.RenderHTML(nil)
	assert.Error(t, err)
}

func TestTemplateEngine_RenderHTML_ItemRowOrder(t *testing.T) {
	engine, err := NewTemplateEngine()
	require.NoError(t, err)

	html, err := engine.RenderHTML(receipt.Layout(testReceipt(), receipt.DefaultStyle(), time.Now()))
	require.NoError(t, err)

	coffee := strings.Index(html, "<span>Coffee</span>")
	croissant := strings.Index(html, "<span>Croissant</span>")
	require.NotEqual(t, -1, coffee)
	require.NotEqual(t, -1, croissant)
	assert.Less(t, coffee, croissant)
}
