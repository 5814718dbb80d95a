package widget

import (
	"html"
	"html/template"
	"regexp"
	"strings"
	"time"

	"lexline/internal/models"
)

// Badge labels keyed by track type. Exactly one badge renders per response,
// and only when the payload carries a known track.
var trackBadges = map[string]string{
	models.TrackSmallClaims: "Small Claims",
	models.TrackFastTrack:   "Fast Track",
	models.TrackMultiTrack:  "Multi-Track",
}

var (
	boldPattern   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicPattern = regexp.MustCompile(`\*([^*]+)\*`)
)

// formatBotContent escapes the raw text and then applies the restricted
// markdown the server is allowed to use: **bold**, *italic*, newlines and
// bullet characters. Nothing else is interpreted, so server text can never
// inject markup.
func formatBotContent(content string) template.HTML {
	escaped := html.EscapeString(content)
	escaped = boldPattern.ReplaceAllString(escaped, "<strong>$1</strong>")
	escaped = italicPattern.ReplaceAllString(escaped, "<em>$1</em>")
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")
	return template.HTML(escaped)
}

// formatUserContent escapes only. User text gets no markdown treatment.
func formatUserContent(content string) template.HTML {
	escaped := html.EscapeString(content)
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")
	return template.HTML(escaped)
}

type messageView struct {
	Sender    string
	Body      template.HTML
	Badge     string
	Track     string
	Citations []models.Citation
	Referral  *models.ReferralInfo
	Timestamp string
}

var messageTmpl = template.Must(template.New("message").Parse(`<div class="message {{.Sender}}-message">
<div class="message-content">{{.Body}}</div>
{{- if .Badge}}
<span class="track-badge track-{{.Track}}">{{.Badge}}</span>
{{- end}}
{{- if .Citations}}
<div class="citations"><strong>Sources</strong><ul>
{{- range .Citations}}
{{- if eq .Type "case"}}
<li class="citation-case">{{.Name}}{{if .Citation}} {{.Citation}}{{end}}{{if .URL}} <a href="{{.URL}}" target="_blank" rel="noopener">View case</a>{{end}}</li>
{{- else}}
<li class="citation-procedure">{{.Title}}{{if .Source}} ({{.Source}}){{end}}{{if .URL}} <a href="{{.URL}}" target="_blank" rel="noopener">View guidance</a>{{end}}</li>
{{- end}}
{{- end}}
</ul></div>
{{- end}}
{{- if .Referral}}
<div class="referral-card">
<p class="referral-advice">{{.Referral.Advice}}</p>
{{- if .Referral.Solicitors}}
<div class="referral-solicitors"><strong>Recommended solicitors</strong><ul>
{{- range .Referral.Solicitors}}
<li>{{.FirmName}}{{if .Location}}, {{.Location}}{{end}}{{if .ContactPhone}} &middot; {{.ContactPhone}}{{end}}{{if .Website}} &middot; <a href="{{.Website}}" target="_blank" rel="noopener">Website</a>{{end}}</li>
{{- end}}
</ul></div>
{{- end}}
{{- if .Referral.FundingOptions}}
<div class="referral-funding"><strong>Funding options</strong><ul>
{{- range .Referral.FundingOptions}}
<li><strong>{{.Type}}</strong>: {{.Description}}</li>
{{- end}}
</ul></div>
{{- end}}
</div>
{{- end}}
<div class="message-time">{{.Timestamp}}</div>
</div>`))

// renderMessage builds the HTML for one message bubble. aux is nil for user
// messages and plain bot messages; badge, citations and referral sections are
// each independently optional.
func renderMessage(content, sender string, aux *models.BotResponse, ts time.Time) string {
	view := messageView{
		Sender:    sender,
		Timestamp: ts.Format("15:04"),
	}

	if sender == SenderBot {
		view.Body = formatBotContent(content)
	} else {
		view.Body = formatUserContent(content)
	}

	if aux != nil {
		view.Badge = trackBadges[aux.TrackType]
		view.Track = aux.TrackType
		view.Citations = aux.Citations
		view.Referral = aux.ReferralInfo
	}

	var b strings.Builder
	if err := messageTmpl.Execute(&b, view); err != nil {
		return string(view.Body)
	}
	return b.String()
}

var typingHTML = `<div class="typing-indicator"><span></span><span></span><span></span></div>`

var errorTmpl = template.Must(template.New("error").Parse(
	`<div class="alert alert-error" role="alert">{{.}}</div>`))

func renderError(message string) string {
	var b strings.Builder
	if err := errorTmpl.Execute(&b, message); err != nil {
		return html.EscapeString(message)
	}
	return b.String()
}
