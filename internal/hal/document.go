// Package hal reads HAL (Hypertext Application Language) JSON documents.
//
// A Document keeps the raw JSON body and answers link and embedded-resource
// lookups against it lazily, so a resource can be navigated without decoding
// its full shape first. Typed properties are read with Decode.
package hal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/buger/jsonparser"
	"github.com/yosida95/uritemplate/v3"
)

const (
	linksKey    = "_links"
	embeddedKey = "_embedded"
)

// Link is a single HAL link object.
type Link struct {
	Href      string `json:"href"`
	Templated bool   `json:"templated,omitempty"`
	Name      string `json:"name,omitempty"`
}

// Expand fills a templated href with vars. Non-templated links are returned as-is.
func (l Link) Expand(vars map[string]string) (string, error) {
	if !l.Templated {
		return l.Href, nil
	}
	tmpl, err := uritemplate.New(l.Href)
	if err != nil {
		return "", fmt.Errorf("parsing link template %q: %w", l.Href, err)
	}
	values := uritemplate.Values{}
	for k, v := range vars {
		values.Set(k, uritemplate.String(v))
	}
	href, err := tmpl.Expand(values)
	if err != nil {
		return "", fmt.Errorf("expanding link template %q: %w", l.Href, err)
	}
	return href, nil
}

// Document is a parsed HAL resource.
type Document struct {
	raw []byte
}

// ErrEmpty is returned for a body with no JSON value in it.
var ErrEmpty = errors.New("empty hal document")

// Parse wraps a JSON object body as a Document.
func Parse(body []byte) (Document, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return Document{}, ErrEmpty
	}
	_, dataType, _, err := jsonparser.Get(body)
	if err != nil {
		return Document{}, fmt.Errorf("parsing hal document: %w", err)
	}
	if dataType != jsonparser.Object {
		return Document{}, fmt.Errorf("parsing hal document: expected object, got %s", dataType)
	}
	return Document{raw: body}, nil
}

// Read parses a Document from r.
func Read(r io.Reader) (Document, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("reading hal document: %w", err)
	}
	return Parse(body)
}

// Raw returns the document's JSON body.
func (d Document) Raw() []byte {
	return d.raw
}

// Link returns the first link registered under rel.
// A relation may hold a single link object or an array of them.
func (d Document) Link(rel string) (Link, bool) {
	links := d.Links(rel)
	if len(links) == 0 {
		return Link{}, false
	}
	return links[0], true
}

// Links returns every link registered under rel, in document order.
func (d Document) Links(rel string) []Link {
	value, dataType, _, err := jsonparser.Get(d.raw, linksKey, rel)
	if err != nil {
		return nil
	}
	switch dataType {
	case jsonparser.Object:
		if l, ok := decodeLink(value); ok {
			return []Link{l}
		}
	case jsonparser.Array:
		var links []Link
		_, _ = jsonparser.ArrayEach(value, func(item []byte, itemType jsonparser.ValueType, _ int, _ error) {
			if itemType != jsonparser.Object {
				return
			}
			if l, ok := decodeLink(item); ok {
				links = append(links, l)
			}
		})
		return links
	}
	return nil
}

// Embedded returns the resources embedded under name. A single embedded
// object is returned as a one-element slice.
func (d Document) Embedded(name string) []Document {
	value, dataType, _, err := jsonparser.Get(d.raw, embeddedKey, name)
	if err != nil {
		return nil
	}
	switch dataType {
	case jsonparser.Object:
		return []Document{{raw: value}}
	case jsonparser.Array:
		var docs []Document
		_, _ = jsonparser.ArrayEach(value, func(item []byte, itemType jsonparser.ValueType, _ int, _ error) {
			if itemType == jsonparser.Object {
				docs = append(docs, Document{raw: item})
			}
		})
		return docs
	}
	return nil
}

// HasEmbedded reports whether the document carries an _embedded entry for name.
func (d Document) HasEmbedded(name string) bool {
	_, _, _, err := jsonparser.Get(d.raw, embeddedKey, name)
	return err == nil
}

// String returns the string property at the given key path, or "" if absent.
func (d Document) String(keys ...string) string {
	s, err := jsonparser.GetString(d.raw, keys...)
	if err != nil {
		return ""
	}
	return s
}

// Decode unmarshals the document's properties into v.
func (d Document) Decode(v any) error {
	if len(d.raw) == 0 {
		return errors.New("decoding empty hal document")
	}
	return json.Unmarshal(d.raw, v)
}

func decodeLink(raw []byte) (Link, bool) {
	href, err := jsonparser.GetString(raw, "href")
	if err != nil || href == "" {
		return Link{}, false
	}
	l := Link{Href: href}
	if templated, err := jsonparser.GetBoolean(raw, "templated"); err == nil {
		l.Templated = templated
	}
	if name, err := jsonparser.GetString(raw, "name"); err == nil {
		l.Name = name
	}
	return l, true
}
