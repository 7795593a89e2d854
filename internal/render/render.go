// Package render turns a slider instance into page markup: the optional
// block text, the carousel container with one image per slide, the
// navigation arrows, the initialisation script and the manage button.
//
// Markup is built as html node trees and serialised with html.Render, so
// every attribute and text is escaped on output.
package render

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/GoSlider/GoSlider/internal/asset"
	"github.com/GoSlider/GoSlider/internal/db/controller/sliderconfig"
	"github.com/GoSlider/GoSlider/internal/db/models"
	"github.com/GoSlider/GoSlider/internal/i18n"
)

// URLResolver maps an asset reference to its public url.
type URLResolver interface {
	URLFor(ref asset.Ref) string
}

// Block is everything needed to render one slider instance.
type Block struct {
	InstanceID uint64
	Config     sliderconfig.Config
	Slides     []models.Slide
	CanManage  bool
	ManageURL  string
}

// Result is the rendered block.
type Result struct {
	Body   template.HTML // block text, carousel or placeholder
	Footer template.HTML // manage button
	Init   template.HTML // script element starting the carousel
	DOMID  string        // id of the slides container, empty without slides
}

// Renderer renders slider blocks.
type Renderer struct {
	urls    URLResolver
	strings i18n.Strings
	ugc     *bluemonday.Policy
	strict  *bluemonday.Policy
}

// New returns a renderer resolving image urls with urls.
func New(urls URLResolver, strs i18n.Strings) *Renderer {
	return &Renderer{
		urls:    urls,
		strings: strs,
		ugc:     bluemonday.UGCPolicy(),
		strict:  bluemonday.StrictPolicy(),
	}
}

// Render renders b. rc numbers the instances of the current page.
func (r *Renderer) Render(rc *Context, b *Block) (Result, error) {
	var (
		res  Result
		body strings.Builder
		p    = ParamsFrom(&b.Config)
	)

	if p.Text != "" {
		body.WriteString(r.ugc.Sanitize(p.Text))
	}

	switch {
	case len(b.Slides) > 0:
		uid := rc.Next(b.InstanceID)
		res.DOMID = "slides" + uid

		markup, err := renderNodes(r.carousel(&p, b.Slides, uid, res.DOMID))
		if err != nil {
			return Result{}, err
		}

		body.WriteString(markup)

		script, err := BuildInitPayload(p.Driver, &p, b.Slides, uid).Script()
		if err != nil {
			return Result{}, err
		}

		initMarkup, err := renderNodes(element(atom.Script, nil, text(script)))
		if err != nil {
			return Result{}, err
		}

		res.Init = template.HTML(initMarkup) //nolint:gosec // built from escaped nodes and encoded json
	case b.CanManage:
		markup, err := renderNodes(element(atom.Div, attrs("class", "alert alert-info"),
			text(r.strings.GetString("noimages", i18n.DomainSlider))))
		if err != nil {
			return Result{}, err
		}

		body.WriteString(markup)
	}

	res.Body = template.HTML(body.String()) //nolint:gosec // sanitised text and escaped nodes

	if b.CanManage {
		footer, err := renderNodes(element(atom.A, attrs("href", b.ManageURL, "class", "btn btn-primary"),
			text(r.strings.GetString("manage_slides", i18n.DomainSlider))))
		if err != nil {
			return Result{}, err
		}

		res.Footer = template.HTML(footer) //nolint:gosec // escaped nodes
	}

	return res, nil
}

func (r *Renderer) carousel(p *Params, slides []models.Slide, uid, domID string) *html.Node {
	var container *html.Node

	if p.Driver == DriverBxSlider {
		container = element(atom.Div, attrs(
			"id", domID,
			"class", "bxslider bxslider"+uid,
			"style", "visibility: hidden;",
		))
	} else {
		container = element(atom.Div, attrs(
			"id", domID,
			"class", "slides"+uid,
			"style", "display: none;",
		))
	}

	caps := p.Driver.Capabilities()

	for i := range slides {
		for _, n := range r.slide(p, &caps, &slides[i]) {
			container.AppendChild(n)
		}
	}

	wrapper := element(atom.Div, attrs("class", "slider"), container)

	if p.Navigation && caps.NavArrows {
		wrapper.AppendChild(r.navLink("previous", "slidesjs-previous slidesjs-navigation", "icon fa fa-chevron-left"))
		wrapper.AppendChild(r.navLink("next", "slidesjs-next slidesjs-navigation", "icon fa fa-chevron-right"))
	}

	return wrapper
}

// slide returns the nodes of one slide: the optionally linked image and,
// for drivers with captions, the caption block inside a slide wrapper.
func (r *Renderer) slide(p *Params, caps *Capabilities, s *models.Slide) []*html.Node {
	title := r.plain(s.Title)

	alt := title
	if alt == "" {
		alt = s.Image
	}

	img := element(atom.Img, attrs(
		"src", r.urls.URLFor(asset.Ref{OwnerID: s.ID, Filename: s.Image}),
		"class", "img",
		"alt", alt,
		"width", "100%",
	))

	content := img

	if href, ok := SanitizeLink(s.Link); ok {
		content = element(atom.A, attrs("href", href, "rel", "nofollow"), img)
	}

	if caps.SlideClass == "" {
		return []*html.Node{content}
	}

	wrapper := element(atom.Div, attrs("class", caps.SlideClass), content)

	if caps.Captions && (p.Captions || p.DisplayDesc) {
		wrapper.AppendChild(r.caption(p, title, r.plain(s.Description)))
	}

	return []*html.Node{wrapper}
}

func (r *Renderer) caption(p *Params, title, desc string) *html.Node {
	classes := []string{"bx-caption"}

	if p.Captions {
		classes = append(classes, "bxcaption")
	}

	if p.DisplayDesc {
		classes = append(classes, "bxdesc")
	}

	if p.HideOnHover {
		classes = append(classes, "hideonhover")
	}

	c := element(atom.Div, attrs("class", strings.Join(classes, " ")))

	if title = strings.TrimSpace(title); title != "" {
		c.AppendChild(element(atom.Span, nil, text(title)))
	}

	if desc = strings.TrimSpace(desc); desc != "" {
		c.AppendChild(element(atom.P, nil, text(desc)))
	}

	return c
}

func (r *Renderer) navLink(key, class, icon string) *html.Node {
	label := r.strings.GetString(key, i18n.DomainCore)

	return element(atom.A,
		attrs("href", "#", "class", class, "role", "button", "aria-label", label, "tabindex", "0"),
		element(atom.Span, attrs("class", icon, "aria-hidden", "true")),
		element(atom.Span, attrs("class", "sr-only"), text(label)),
	)
}

// plain strips all markup from user text. Entities are decoded because the
// result is escaped again when rendered.
func (r *Renderer) plain(s string) string {
	return html.UnescapeString(r.strict.Sanitize(s))
}

func element(a atom.Atom, attr []html.Attribute, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attr}
	for _, c := range children {
		n.AppendChild(c)
	}

	return n
}

func attrs(kv ...string) []html.Attribute {
	out := make([]html.Attribute, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}

	return out
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func renderNodes(nodes ...*html.Node) (string, error) {
	var buf bytes.Buffer

	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}

	return buf.String(), nil
}
