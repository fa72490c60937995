// Package storefront parses the Widget-Context request header sent by the
// storefront widget bundle and gates requests on bundle version and store.
package storefront

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dunglas/httpsfv"
)

// HeaderName is the request header carrying the widget context.
const HeaderName = "Widget-Context"

// WidgetContext is what the storefront bundle reports about its page.
// Every field is optional.
type WidgetContext struct {
	Store      string // store hash the bundle was rendered for
	CustomerID string // logged-in customer, "" for guests
	Version    string // bundle version, semver without the leading "v"
	Page       string // theme template, e.g. "pages/product"
}

// ParseHeader parses a Widget-Context header (RFC 8941 dictionary).
//
// Examples:
//   - store="abc123", customer=42, version="1.4.0"
//   - customer="42";verified, page=pages/category  (params ignored)
//
// An empty header yields an empty context. Unknown keys are ignored.
func ParseHeader(header string) (*WidgetContext, error) {
	wc := &WidgetContext{}
	header = strings.TrimSpace(header)
	if header == "" {
		return wc, nil
	}

	dict, err := httpsfv.UnmarshalDictionary([]string{header})
	if err != nil {
		return nil, fmt.Errorf("invalid %s header: %w", HeaderName, err)
	}

	if wc.Store, err = stringMember(dict, "store"); err != nil {
		return nil, err
	}
	if wc.CustomerID, err = stringMember(dict, "customer"); err != nil {
		return nil, err
	}
	if wc.Version, err = stringMember(dict, "version"); err != nil {
		return nil, err
	}
	if wc.Page, err = stringMember(dict, "page"); err != nil {
		return nil, err
	}

	wc.Version = strings.TrimPrefix(wc.Version, "v")
	if wc.CustomerID == "0" {
		wc.CustomerID = ""
	}
	return wc, nil
}

// stringMember reads key as a string, token, or integer item.
func stringMember(dict *httpsfv.Dictionary, key string) (string, error) {
	member, ok := dict.Get(key)
	if !ok {
		return "", nil
	}

	item, ok := member.(httpsfv.Item)
	if !ok {
		return "", fmt.Errorf("%s value must be an item", key)
	}

	switch v := item.Value.(type) {
	case string:
		return strings.TrimSpace(v), nil
	case httpsfv.Token:
		return string(v), nil
	case int64:
		if v < 0 {
			return "", fmt.Errorf("%s must not be negative", key)
		}
		return strconv.FormatInt(v, 10), nil
	default:
		return "", errors.New(key + " value must be a string, token or integer")
	}
}
