package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/receipt-relay/backend/internal/domain/receipt"
)

// receiptCard is the fixed card markup. The geometry mirrors the layout
// plan: a 400px card whose height is set explicitly so the exported image
// never clips or overflows the computed canvas.
const receiptCard = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Receipt - {{.ShopName}}</title>
    <style>
        body {
            font-family: 'Roboto', sans-serif;
            background-color: #F5F5F5;
            margin: 0;
            padding: 5px;
            display: flex;
            justify-content: center;
        }
        .receipt {
            background: #ffffff;
            padding: 20px;
            border-radius: 8px;
            width: {{.CanvasWidth}}px;
            height: {{.CanvasHeight}}px;
            box-shadow: 0 0 10px rgba(0, 0, 0, 0.1);
            overflow: hidden;
        }
        .logo {
            display: block;
            margin: 0 auto 10px;
            height: 80px;
        }
        h2 {
            text-align: center;
            font-size: 15px;
            font-weight: bold;
        }
        hr {
            border-top: 1px dashed #aaa;
        }
        .total {
            font-size: 24px;
            font-weight: bold;
            text-align: center;
        }
        .item {
            display: flex;
            justify-content: space-between;
            padding: 5px 0;
        }
        .footer {
            text-align: center;
            font-size: 14px;
            color: #666;
        }
        .footer-inline {
            display: flex;
            justify-content: space-between;
            font-size: 14px;
            color: #666;
            margin-bottom: 5px;
        }
        .footer-bottom {
            text-align: center;
            font-size: 10px;
            margin-top: 20px;
            color: #666;
        }
    </style>
</head>
<body>
    <div class="receipt">
        {{if .LogoURL}}<img class="logo" src="{{.LogoURL}}" alt="{{.ShopName}}">{{end}}
        <h2>{{.ShopName}}</h2>
        <hr>
        <p class="total">{{.TotalBanner}}</p>
        <hr>
        {{if .ShowOrigin}}
        <div>
            <span class="footer-inline">Employee: {{.EmployeeID}}</span>
            <span class="footer-inline">POS: {{.StoreID}}</span>
        </div>
        <hr>
        {{end}}
        {{range .Items}}
        <div class="item">
            <span>{{.Name}}</span>
            <span>{{.Total}}</span>
        </div>
        <span class="footer-inline">{{.Detail}}</span>
        {{end}}
        <hr>
        <div class="item">
            <strong>{{.RecapLabel}}</strong>
            <strong>{{.RecapValue}}</strong>
        </div>
        {{range .Payments}}
        <div class="item">
            <span>{{.Label}}</span>
            <span>{{.Value}}</span>
        </div>
        {{end}}
        <hr>
        {{if .FooterLines}}<p class="footer">{{range $i, $line := .FooterLines}}{{if $i}}<br>{{end}}{{$line}}{{end}}</p>{{end}}
        <div class="footer-inline">
            <small>{{.Timestamp}}</small>
            <span>Receipt {{"№"}} {{.ReceiptNumber}}</span>
        </div>
        {{if .CreditLine}}<p class="footer-bottom">{{.CreditLine}}</p>{{end}}
    </div>
</body>
</html>
`

// TemplateEngine renders a layout plan into the card markup
type TemplateEngine struct {
	tmpl *template.Template
}

// NewTemplateEngine parses the card template
func NewTemplateEngine() (*TemplateEngine, error) {
	tmpl, err := template.New("receipt-card").Parse(receiptCard)
	if err != nil {
		return nil, fmt.Errorf("failed to parse receipt card template: %w", err)
	}
	return &TemplateEngine{tmpl: tmpl}, nil
}

// itemView is one purchased-item row on the card
type itemView struct {
	Name   string
	Total  string
	Detail string
}

// rowView is one label/value row (payments)
type rowView struct {
	Label string
	Value string
}

// cardView is the template data assembled from a layout plan
type cardView struct {
	ShopName      string
	LogoURL       template.URL
	CanvasWidth   int
	CanvasHeight  int
	TotalBanner   string
	ShowOrigin    bool
	EmployeeID    string
	StoreID       string
	Items         []itemView
	RecapLabel    string
	RecapValue    string
	Payments      []rowView
	FooterLines   []string
	CreditLine    string
	Timestamp     string
	ReceiptNumber string
}

// RenderHTML produces the card markup for one layout plan
func (e *TemplateEngine) RenderHTML(plan *receipt.LayoutPlan) (string, error) {
	if plan == nil {
		return "", fmt.Errorf("layout plan is nil")
	}

	view := cardView{
		CanvasWidth:  plan.CanvasWidth,
		CanvasHeight: plan.CanvasHeight,
		CreditLine:   plan.Style.CreditLine,
	}

	for _, block := range plan.Blocks {
		switch block.Kind {
		case receipt.BlockHeader:
			view.ShopName = block.Title
			view.LogoURL = template.URL(block.LogoURL)
		case receipt.BlockTotalBanner:
			view.TotalBanner = block.Value
		case receipt.BlockOrigin:
			view.ShowOrigin = true
			view.EmployeeID = block.Label
			view.StoreID = block.Value
		case receipt.BlockItemRow:
			view.Items = append(view.Items, itemView{
				Name:   block.Label,
				Total:  block.Value,
				Detail: block.Detail,
			})
		case receipt.BlockTotalRecap:
			view.RecapLabel = block.Label
			view.RecapValue = block.Value
		case receipt.BlockPaymentRow:
			view.Payments = append(view.Payments, rowView{
				Label: block.Label,
				Value: block.Value,
			})
		case receipt.BlockFooter:
			view.Timestamp = block.Timestamp
			view.ReceiptNumber = block.ReceiptNumber
			view.FooterLines = block.Lines
		}
	}

	var buf bytes.Buffer
	if err := e.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render receipt card: %w", err)
	}
	return buf.String(), nil
}
