package notify

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/truck-repair-platform/internal/leads"
)

type field struct {
	label string
	value string
}

func leadFields(lead *leads.Lead) []field {
	fields := []field{
		{"Type", string(lead.Type)},
		{"Name", lead.Name},
		{"Phone", lead.Phone},
		{"Email", lead.Email},
		{"Truck", strings.TrimSpace(lead.TruckMake + " " + lead.TruckModel)},
		{"Issue", lead.Issue},
		{"Location", lead.Location},
		{"Urgency", string(lead.Urgency)},
	}
	if lead.IsFleet {
		fields = append(fields, field{"Fleet size", strconv.Itoa(lead.FleetSize)})
	}
	fields = append(fields,
		field{"Source", lead.Source},
		field{"Received", lead.Timestamp.Format(time.RFC1123)},
	)

	out := fields[:0]
	for _, f := range fields {
		if f.value != "" {
			out = append(out, f)
		}
	}
	return out
}

// LeadEmail renders the shop notification for a new lead. To is left empty.
func LeadEmail(lead *leads.Lead, shopName string) EmailMessage {
	subject := fmt.Sprintf("New %s lead: %s", lead.Type, lead.Name)
	if lead.Type == leads.TypeEmergency {
		subject = "EMERGENCY " + subject
	}

	fields := leadFields(lead)

	var text strings.Builder
	text.WriteString("A new lead came in through the website chat.\n\n")
	for _, f := range fields {
		fmt.Fprintf(&text, "%s: %s\n", f.label, f.value)
	}
	fmt.Fprintf(&text, "\n- %s website", shopName)

	var body strings.Builder
	body.WriteString(`<div style="font-family: sans-serif; max-width: 600px;">`)
	fmt.Fprintf(&body, "<h2>%s</h2><table>", html.EscapeString(subject))
	for _, f := range fields {
		fmt.Fprintf(&body, "<tr><td><strong>%s</strong></td><td>%s</td></tr>", f.label, html.EscapeString(f.value))
	}
	fmt.Fprintf(&body, "</table><p>%s website</p></div>", html.EscapeString(shopName))

	return EmailMessage{
		ToName:  shopName,
		Subject: subject,
		Body:    text.String(),
		HTML:    body.String(),
	}
}
