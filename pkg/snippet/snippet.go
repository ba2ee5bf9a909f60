// Package snippet generates embed code and preview URLs for the image API.
//
// [Generate] emits the head markup that wires an OG card into a page for a
// given web framework. [PreviewURL] builds the API URL a preview pane loads
// for a set of query parameters.
package snippet

import (
	"bytes"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"text/template"

	"github.com/meshy-studio/meshy/pkg/errors"
	"github.com/meshy-studio/meshy/pkg/params"
)

// Flavor names a target web framework.
type Flavor string

const (
	SvelteKit Flavor = "sveltekit"
	NextJS    Flavor = "nextjs"
	TanStack  Flavor = "tanstack"
)

// Flavors lists every supported framework.
var Flavors = []Flavor{SvelteKit, NextJS, TanStack}

// ParseFlavor validates a framework name.
func ParseFlavor(s string) (Flavor, error) {
	f := Flavor(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Flavors, f) {
		return "", errors.New(errors.ErrCodeInvalidInput, "flavor must be one of sveltekit, nextjs, tanstack, got %q", s)
	}
	return f, nil
}

const imageMeta = `<meta property="og:image:type" content="image/jpeg" />
    <meta property="og:image:width" content="1200" />
    <meta property="og:image:height" content="630" />`

var templates = map[Flavor]*template.Template{
	SvelteKit: parse(`<script lang="ts">
    const title = {{quote .Title}};
    const description = {{quote .Description}};
</script>

<svelte:head>
    <title>{title}</title>
    <meta property="og:title" content={title} />
    <meta property="og:description" content={description} />
    <meta property="og:image" content={` + "`{{.ImageURL}}`" + `} />
    ` + imageMeta + `
</svelte:head>
`),
	NextJS: parse(`import Head from 'next/head'

// Settings
const title = {{quote .Title}};
const description = {{quote .Description}};

// Template
<Head>
    <title>{title}</title>
    <meta property="og:title" content={title} />
    <meta property="og:description" content={description} />
    <meta property="og:image" content={` + "`{{.ImageURL}}`" + `} />
    ` + imageMeta + `
</Head>
`),
	TanStack: parse(`import { createRootRoute } from '@tanstack/react-router'

const title = {{quote .Title}};
const description = {{quote .Description}};

export const Route = createRootRoute({
    head: () => ({
        meta: [
            { title },
            { property: "og:title", content: title },
            { property: "og:description", content: description },
            { property: "og:image", content: ` + "`{{.ImageURL}}`" + ` },
            { property: "og:image:type", content: "image/jpeg" },
            { property: "og:image:width", content: "1200" },
            { property: "og:image:height", content: "630" }
        ]
    })
})
`),
}

func parse(text string) *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"quote": strconv.Quote,
	}).Parse(text))
}

type data struct {
	Title       string
	Description string
	ImageURL    string
}

// Generate renders the embed snippet for flavor. baseURL is the public
// origin of the service, e.g. "https://meshy.studio". The image URL keeps
// title and description as template-literal placeholders so the page's own
// variables are interpolated at runtime.
func Generate(flavor Flavor, p params.OG, baseURL string) (string, error) {
	tmpl, ok := templates[flavor]
	if !ok {
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown flavor %q", flavor)
	}

	q := url.Values{}
	q.Set("template", p.Template)
	q.Set("darkMode", strconv.FormatBool(p.DarkMode))
	q.Set("branding", p.Branding)
	image := strings.TrimRight(baseURL, "/") + "/api/og?" + q.Encode() +
		"&title=${encodeURIComponent(title)}&description=${encodeURIComponent(description)}"

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, data{Title: p.Title, Description: p.Description, ImageURL: image})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "render %s snippet", flavor)
	}
	return buf.String(), nil
}

// PreviewURL returns the API URL for an image kind ("chart", "mesh" or
// "og") under baseURL. seed is required for mesh and ignored otherwise.
// rawQuery is appended as-is.
func PreviewURL(baseURL, kind, seed, rawQuery string) (string, error) {
	base := strings.TrimRight(baseURL, "/")
	var path string
	switch kind {
	case "chart":
		path = "/api/chart"
	case "og":
		path = "/api/og"
	case "mesh":
		if seed == "" {
			return "", errors.New(errors.ErrCodeInvalidSeed, "mesh preview needs a seed")
		}
		path = "/api/mesh/" + url.PathEscape(seed)
	default:
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown image kind %q", kind)
	}
	if q := strings.TrimPrefix(rawQuery, "?"); q != "" {
		return base + path + "?" + q, nil
	}
	return base + path, nil
}
