package capture

import "context"

// Image is a single <img> found on the page.
type Image struct {
	Src    string `json:"src"`
	Alt    string `json:"alt"`
	HasAlt bool   `json:"hasAlt"`
}

// Heading is an h1-h6 element.
type Heading struct {
	Tag  string `json:"tag"`
	Text string `json:"text"`
}

// Form summarizes the inputs and labels of one <form>.
type Form struct {
	Inputs int `json:"inputs"`
	Labels int `json:"labels"`
}

// Elements is the structural summary taken at capture time.
type Elements struct {
	Images   []Image   `json:"images"`
	Headings []Heading `json:"headings"`
	Buttons  int       `json:"buttons"`
	Forms    []Form    `json:"forms"`
}

// MissingAlt counts images without an alt attribute.
func (e Elements) MissingAlt() int {
	n := 0
	for _, img := range e.Images {
		if !img.HasAlt {
			n++
		}
	}
	return n
}

// Page is everything the analyzers need about one URL.
type Page struct {
	URL        string   `json:"url"`
	HTML       string   `json:"-"`
	Text       string   `json:"text"`
	Elements   Elements `json:"elements"`
	Screenshot string   `json:"-"` // base64 or data URI, may be empty
}

// Capturer fetches and summarizes a page.
type Capturer interface {
	Capture(ctx context.Context, url string) (Page, error)
}
