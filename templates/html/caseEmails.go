package templates

import (
	"fmt"
	"html"
	"strings"
)

// CaseEmail holds the values shown in a case notification e-mail
type CaseEmail struct {
	RecipientName string
	CaseNumber    string
	Headline      string
	Details       string
	CaseURL       string
}

// RenderCaseNotificationEmail generates branded HTML for a case notification.
// Every value is HTML-escaped; newlines in Details become <br> tags.
func RenderCaseNotificationEmail(e CaseEmail) string {
	details := strings.ReplaceAll(html.EscapeString(e.Details), "\n", "<br>")

	link := ""
	if e.CaseURL != "" {
		link = fmt.Sprintf(`<p><a class="button" href="%s">View case %s</a></p>`,
			html.EscapeString(e.CaseURL), html.EscapeString(e.CaseNumber))
	}

	return fmt.Sprintf(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1, minimum-scale=1, maximum-scale=1">
  <title>%s</title>
  <style type="text/css">
    body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 0; background-color: #f3f4f6; }
    .container { max-width: 600px; margin: 0 auto; background-color: #ffffff; }
    .header { background-color: #1e3a8a; padding: 32px 30px; text-align: center; }
    .header h1 { color: #fff; margin: 0; font-size: 22px; font-weight: 700; }
    .content { padding: 32px 30px; color: #1f2937; line-height: 1.6; font-size: 15px; }
    .case { font-family: monospace; color: #1e3a8a; }
    .button { display: inline-block; padding: 10px 18px; background-color: #1e3a8a; color: #fff; text-decoration: none; border-radius: 4px; }
    .footer { padding: 24px 30px; text-align: center; color: #6b7280; font-size: 12px; border-top: 1px solid #e5e7eb; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>%s</h1>
    </div>
    <div class="content">
      <p>Dear %s,</p>
      <p class="case">%s</p>
      <p>%s</p>
      %s
    </div>
    <div class="footer">
      <p>South African Police Service | CaseTrack</p>
      <p>This message is confidential and intended for the case participant only.</p>
    </div>
  </div>
</body>
</html>`,
		html.EscapeString(e.Headline),
		html.EscapeString(e.Headline),
		html.EscapeString(e.RecipientName),
		html.EscapeString(e.CaseNumber),
		details,
		link,
	)
}

// RenderCaseNotificationText is the plain text alternative of the e-mail
func RenderCaseNotificationText(e CaseEmail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", e.RecipientName)
	fmt.Fprintf(&b, "%s\n\n", e.Headline)
	if e.Details != "" {
		fmt.Fprintf(&b, "%s\n\n", e.Details)
	}
	if e.CaseURL != "" {
		fmt.Fprintf(&b, "View case %s: %s\n\n", e.CaseNumber, e.CaseURL)
	}
	b.WriteString("South African Police Service | CaseTrack\n")
	return b.String()
}
