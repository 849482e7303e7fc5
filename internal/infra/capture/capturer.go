package capture

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"

	"github.com/bryanwahyu/visiai/internal/domain/capture"
)

const (
	DefaultTimeout      = 45 * time.Second
	DefaultUserAgent    = "Mozilla/5.0 (compatible; VisiAI/1.0; +https://github.com/bryanwahyu/visiai)"
	DefaultMaxBodyBytes = 5 << 20

	maxScreenshotBytes = 10 << 20
	maxRedirects       = 10
)

type Config struct {
	Timeout            time.Duration
	UserAgent          string
	MaxBodyBytes       int64
	ScreenshotEndpoint string
}

// HTTPCapturer fetches a page over HTTP and summarizes it with goquery. A
// screenshot is taken only when an external screenshot endpoint is set.
type HTTPCapturer struct {
	cfg  Config
	http *http.Client
}

func NewHTTPCapturer(cfg Config, httpClient *http.Client) *HTTPCapturer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	client := &http.Client{}
	if httpClient != nil {
		*client = *httpClient
	}
	client.CheckRedirect = checkRedirect
	return &HTTPCapturer{cfg: cfg, http: client}
}

// checkRedirect applies the target host rules to every redirect hop.
func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	if err := capture.CheckTarget(req.URL); err != nil {
		return fmt.Errorf("redirect to %s: %w", req.URL.Host, err)
	}
	return nil
}

func (c *HTTPCapturer) Capture(ctx context.Context, target string) (capture.Page, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	body, err := c.get(ctx, target, c.cfg.MaxBodyBytes, "text/html,application/xhtml+xml")
	if err != nil {
		return capture.Page{}, fmt.Errorf("fetch page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return capture.Page{}, fmt.Errorf("parse page: %w", err)
	}

	page := capture.Page{
		URL:      target,
		HTML:     string(body),
		Text:     ExtractText(doc),
		Elements: Summarize(doc, target),
	}

	if c.cfg.ScreenshotEndpoint != "" {
		shot, err := c.screenshot(ctx, target)
		if err != nil {
			logrus.WithError(err).WithField("url", target).Warn("screenshot failed, continuing without image")
		} else {
			page.Screenshot = shot
		}
	}

	logrus.WithFields(logrus.Fields{
		"url":      target,
		"chars":    len(page.Text),
		"images":   len(page.Elements.Images),
		"headings": len(page.Elements.Headings),
		"buttons":  page.Elements.Buttons,
	}).Debug("page captured")
	return page, nil
}

func (c *HTTPCapturer) screenshot(ctx context.Context, target string) (string, error) {
	endpoint := c.cfg.ScreenshotEndpoint + "?url=" + url.QueryEscape(target)
	if strings.Contains(c.cfg.ScreenshotEndpoint, "?") {
		endpoint = c.cfg.ScreenshotEndpoint + "&url=" + url.QueryEscape(target)
	}
	img, err := c.get(ctx, endpoint, maxScreenshotBytes, "image/*")
	if err != nil {
		return "", err
	}
	if len(img) == 0 {
		return "", fmt.Errorf("empty screenshot")
	}
	ct := http.DetectContentType(img)
	if !strings.HasPrefix(ct, "image/") {
		return "", fmt.Errorf("screenshot endpoint returned %s", ct)
	}
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(img), nil
}

func (c *HTTPCapturer) get(ctx context.Context, target string, limit int64, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", accept)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

// ExtractText returns the visible body text, NFKC-normalized with whitespace
// collapsed.
func ExtractText(doc *goquery.Document) string {
	body := doc.Find("body").Clone()
	body.Find("script, style, noscript, template").Remove()
	return strings.Join(strings.Fields(norm.NFKC.String(body.Text())), " ")
}

// Summarize collects the structural element summary of a document.
func Summarize(doc *goquery.Document, pageURL string) capture.Elements {
	base, _ := url.Parse(pageURL)
	el := capture.Elements{
		Images:   []capture.Image{},
		Headings: []capture.Heading{},
		Forms:    []capture.Form{},
	}

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		alt := s.AttrOr("alt", "")
		el.Images = append(el.Images, capture.Image{
			Src:    resolve(base, s.AttrOr("src", "")),
			Alt:    alt,
			HasAlt: alt != "",
		})
	})
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		el.Headings = append(el.Headings, capture.Heading{
			Tag:  strings.ToUpper(goquery.NodeName(s)),
			Text: strings.Join(strings.Fields(s.Text()), " "),
		})
	})
	el.Buttons = doc.Find(`button, a.btn, [role="button"]`).Length()
	doc.Find("form").Each(func(_ int, s *goquery.Selection) {
		el.Forms = append(el.Forms, capture.Form{
			Inputs: s.Find("input").Length(),
			Labels: s.Find("label").Length(),
		})
	})
	return el
}

func resolve(base *url.URL, ref string) string {
	if base == nil || ref == "" {
		return ref
	}
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
