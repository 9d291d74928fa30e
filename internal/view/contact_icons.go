package view

import (
	"html/template"
	"strings"
)

// ContactChannel is one entry of the static contacts page.
type ContactChannel struct {
	Icon  string
	Label string
	Link  string
}

var (
	contactIconSVG = map[string]string{
		"github":   `<svg viewBox="0 0 24 24" fill="currentColor" aria-hidden="true"><path d="M12 .297c-6.63 0-12 5.373-12 12 0 5.303 3.438 9.8 8.205 11.385.6.113.82-.258.82-.577 0-.285-.01-1.04-.015-2.04-3.338.724-4.042-1.61-4.042-1.61-.546-1.142-1.335-1.512-1.335-1.512-1.087-.744.084-.729.084-.729 1.205.084 1.838 1.236 1.838 1.236 1.07 1.835 2.809 1.305 3.495.998.108-.776.417-1.305.76-1.605-2.665-.3-5.466-1.332-5.466-5.93 0-1.31.465-2.38 1.235-3.22-.135-.303-.54-1.523.105-3.176 0 0 1.005-.322 3.3 1.23.96-.267 1.98-.399 3-.405 1.02.006 2.04.138 3 .405 2.28-1.552 3.285-1.23 3.285-1.23.645 1.653.24 2.873.12 3.176.765.84 1.23 1.91 1.23 3.22 0 4.61-2.805 5.625-5.475 5.92.42.36.81 1.096.81 2.22 0 1.606-.015 2.896-.015 3.286 0 .315.21.69.825.57C20.565 22.092 24 17.592 24 12.297c0-6.627-5.373-12-12-12"/></svg>`,
		"email":    `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="1.5" stroke-linecap="round" stroke-linejoin="round"><path d="M21.75 6.75v10.5a2.25 2.25 0 0 1-2.25 2.25h-15A2.25 2.25 0 0 1 2.25 17.25V6.75M21.75 6.75A2.25 2.25 0 0 0 19.5 4.5h-15A2.25 2.25 0 0 0 2.25 6.75v.243c0 .781.405 1.506 1.071 1.916l7.5 4.615a2.25 2.25 0 0 0 2.157 0l7.5-4.615a2.25 2.25 0 0 0 1.072-1.916V6.75"/></svg>`,
		"telegram": `<svg viewBox="0 0 24 24" fill="currentColor" aria-hidden="true"><circle cx="12" cy="12" r="12"/></svg>`,
	}
	defaultContactIconSVG = `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="1.5"><circle cx="12" cy="12" r="9"/></svg>`

	defaultContacts = []ContactChannel{
		{Icon: "email", Label: "Email", Link: "mailto:hello@sensive.blog"},
		{Icon: "github", Label: "GitHub", Link: "https://github.com/sensive"},
		{Icon: "telegram", Label: "Telegram", Link: "https://t.me/sensive"},
	}
)

// ContactIcon resolves the inline SVG for an icon key, falling back to a plain circle.
func ContactIcon(key string) template.HTML {
	if svg, ok := contactIconSVG[strings.ToLower(strings.TrimSpace(key))]; ok {
		return template.HTML(svg)
	}
	return template.HTML(defaultContactIconSVG)
}

// DefaultContacts returns a copy of the channels shown on the contacts page.
func DefaultContacts() []ContactChannel {
	return append([]ContactChannel(nil), defaultContacts...)
}
