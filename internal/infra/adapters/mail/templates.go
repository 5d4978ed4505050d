package mail

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	"esim-storefront/internal/domain/model"
	"esim-storefront/internal/domain/ports/adapter"
)

const (
	subjectOrderConfirmation = "Order Confirmation - eSIM Platform"
	subjectEsimActivation    = "Your eSIM Activation Details - eSIM Platform"
)

var orderConfirmationTmpl = template.Must(template.New("order_confirmation").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
    .content { background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px; }
    .order-details { background: white; padding: 20px; border-radius: 8px; margin: 20px 0; }
    .button { display: inline-block; padding: 12px 30px; background: #667eea; color: white; text-decoration: none; border-radius: 5px; margin-top: 20px; }
    .footer { text-align: center; margin-top: 30px; color: #666; font-size: 12px; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>Order Confirmed!</h1>
    </div>
    <div class="content">
      <p>Hello {{.CustomerName}},</p>
      <p>Thank you for your purchase! Your eSIM order has been confirmed.</p>

      <div class="order-details">
        <h3>Order Details</h3>
        <p><strong>Order Number:</strong> {{.OrderNumber}}</p>
        <p><strong>Plan:</strong> {{.PlanName}}</p>
        <p><strong>Amount:</strong> {{.Amount}} {{.Currency}}</p>
      </div>

      <p>You will receive another email shortly with your eSIM activation details and QR code.</p>

      {{if .OrdersURL}}<a href="{{.OrdersURL}}" class="button">View Order</a>{{end}}
    </div>
    <div class="footer">
      <p>&copy; {{.Year}} eSIM Platform. All rights reserved.</p>
    </div>
  </div>
</body>
</html>`))

var esimActivationTmpl = template.Must(template.New("esim_activation").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
    .content { background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px; }
    .qr-code { text-align: center; margin: 30px 0; }
    .qr-code img { max-width: 250px; border: 4px solid #667eea; border-radius: 10px; }
    .activation-info { background: white; padding: 20px; border-radius: 8px; margin: 20px 0; }
    .code { background: #f0f0f0; padding: 10px; border-radius: 5px; font-family: monospace; font-size: 14px; word-break: break-all; }
    .steps { background: white; padding: 20px; border-radius: 8px; margin: 20px 0; }
    .steps ol { padding-left: 20px; }
    .steps li { margin: 10px 0; }
    .footer { text-align: center; margin-top: 30px; color: #666; font-size: 12px; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>Your eSIM is Ready!</h1>
    </div>
    <div class="content">
      <p>Hello {{.CustomerName}},</p>
      <p>Your eSIM for <strong>{{.PlanName}}</strong> has been activated and is ready to use.</p>

      <div class="qr-code">
        <h3>Scan this QR Code</h3>
        <img src="{{.QRCode}}" alt="eSIM QR Code">
      </div>

      <div class="activation-info">
        <h3>Manual Activation Details</h3>
        <p><strong>SM-DP+ Address:</strong></p>
        <div class="code">{{.SMDPAddress}}</div>
        <p style="margin-top: 15px;"><strong>Activation Code:</strong></p>
        <div class="code">{{.ActivationCode}}</div>
      </div>

      <div class="steps">
        <h3>How to Install Your eSIM</h3>
        <ol>
          <li>Go to your device Settings</li>
          <li>Select "Cellular" or "Mobile Data"</li>
          <li>Tap "Add eSIM" or "Add Cellular Plan"</li>
          <li>Scan the QR code above or enter details manually</li>
          <li>Follow the on-screen instructions to complete setup</li>
        </ol>
      </div>

      <p><strong>Note:</strong> Make sure you have an active internet connection when installing your eSIM.</p>
    </div>
    <div class="footer">
      <p>Need help? Contact our support team.</p>
      <p>&copy; {{.Year}} eSIM Platform. All rights reserved.</p>
    </div>
  </div>
</body>
</html>`))

var _ adapter.MailRenderer = (*TemplateRenderer)(nil)

// TemplateRenderer renders outbox payloads with the built-in HTML
// templates.
type TemplateRenderer struct{}

func NewTemplateRenderer() *TemplateRenderer { return &TemplateRenderer{} }

func (r *TemplateRenderer) Render(kind model.NotificationKind, payload []byte) (string, string, error) {
	year := time.Now().Year()
	var buf bytes.Buffer
	switch kind {
	case model.NotificationKindOrderConfirmation:
		var params model.OrderConfirmationParams
		if err := json.Unmarshal(payload, &params); err != nil {
			return "", "", fmt.Errorf("decode %s payload: %w", kind, err)
		}
		data := struct {
			model.OrderConfirmationParams
			Year int
		}{params, year}
		if err := orderConfirmationTmpl.Execute(&buf, data); err != nil {
			return "", "", err
		}
		return subjectOrderConfirmation, buf.String(), nil
	case model.NotificationKindEsimActivation:
		var params model.EsimActivationParams
		if err := json.Unmarshal(payload, &params); err != nil {
			return "", "", fmt.Errorf("decode %s payload: %w", kind, err)
		}
		// html/template rewrites data: URLs to #ZgotmplZ unless the
		// value is already typed as a URL.
		data := struct {
			model.EsimActivationParams
			QRCode template.URL
			Year   int
		}{params, template.URL(params.QRCodeData), year}
		if err := esimActivationTmpl.Execute(&buf, data); err != nil {
			return "", "", err
		}
		return subjectEsimActivation, buf.String(), nil
	default:
		return "", "", fmt.Errorf("unknown notification kind %q", kind)
	}
}
