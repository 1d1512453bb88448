package legal

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"text/template"
	"time"
)

//go:embed pages/*.md
var pages embed.FS

// ErrUnknownPage is returned for a page name other than privacy or terms.
var ErrUnknownPage = errors.New("unknown legal page")

// Page is a rendered legal document.
type Page struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

var titles = map[string]string{
	"privacy": "Privacy Policy",
	"terms":   "Terms of Service",
}

var templates = template.Must(template.ParseFS(pages, "pages/*.md"))

// Render renders the named page with today's date and the given contact
// address.
func Render(name, contactEmail string, now time.Time) (Page, error) {
	title, ok := titles[name]
	if !ok {
		return Page{}, ErrUnknownPage
	}
	if contactEmail == "" {
		contactEmail = "[Your Contact Email Here]"
	}

	var buf bytes.Buffer
	err := templates.ExecuteTemplate(&buf, name+".md", struct {
		LastUpdated  string
		ContactEmail string
	}{now.Format("January 2, 2006"), contactEmail})
	if err != nil {
		return Page{}, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return Page{Name: name, Title: title, Body: buf.String()}, nil
}
