package mail

import "strings"

// Bodies are plain HTML with {{field}} placeholders. Substitution is a
// straight string replace; nothing is parsed or escaped beyond that.

const confirmationHTML = `<html><body>
<h2>Reservation received</h2>
<p>Dear {{name}},</p>
<p>Thank you for booking <strong>{{service_name}}</strong>.</p>
<p>Date: {{date}}<br>Participants: {{participants}}</p>
<p>We will confirm your reservation shortly.</p>
</body></html>`

const paymentLinkHTML = `<html><body>
<h2>Your reservation is confirmed</h2>
<p>Dear {{name}},</p>
<p><strong>{{service_name}}</strong> on {{date}} is confirmed.</p>
<p>Please complete your payment: <a href="{{payment_url}}">{{payment_url}}</a></p>
</body></html>`

const statusChangeHTML = `<html><body>
<h2>Reservation update</h2>
<p>Dear {{name}},</p>
<p>Your reservation for <strong>{{service_name}}</strong> on {{date}} is now: {{status}}.</p>
</body></html>`

const operatorNoticeHTML = `<html><body>
<h2>New reservation</h2>
<p>{{name}} ({{email}}, {{phone}}) booked <strong>{{service_name}}</strong>.</p>
<p>Date: {{date}}<br>Participants: {{participants}}</p>
<p>Notes: {{notes}}</p>
</body></html>`

func Render(tpl string, fields map[string]string) string {
	pairs := make([]string, 0, len(fields)*2)
	for k, v := range fields {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}
