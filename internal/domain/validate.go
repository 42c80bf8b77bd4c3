package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	FieldTitle       = "title"
	FieldURL         = "url"
	FieldDescription = "description"
	FieldRating      = "rating"
)

// ValidateForCreate checks a create payload and normalizes it.
//
// Checks run in a fixed order so that multi-invalid inputs always report the same message:
// title, url, rating presence, rating range, url format.
func ValidateForCreate(in Input) (Draft, error) {
	title, rawURL, rating := in[FieldTitle], in[FieldURL], in[FieldRating]

	if !truthy(title) {
		return Draft{}, missing(FieldTitle)
	}
	if !truthy(rawURL) {
		return Draft{}, missing(FieldURL)
	}
	if !truthy(rating) {
		return Draft{}, missing(FieldRating)
	}
	r, ok := parseRating(rating)
	if !ok {
		return Draft{}, &ValidationError{Kind: ErrInvalidRating, Field: FieldRating}
	}
	u := toText(rawURL)
	if !IsWebURI(u) {
		return Draft{}, &ValidationError{Kind: ErrInvalidURL, Field: FieldURL}
	}

	d := Draft{Title: toText(title), URL: u, Rating: r}
	if v, ok := in[FieldDescription]; ok && v != nil {
		s := toText(v)
		d.Description = &s
	}
	return d, nil
}

// ValidateForUpdate checks a partial update.
//
// At least one known field must carry a truthy value. Fields that are present are held to
// the same rules as on create, so an update cannot store an invalid title, url or rating.
// Unknown keys are ignored.
func ValidateForUpdate(in Input) (Patch, error) {
	if !truthy(in[FieldTitle]) && !truthy(in[FieldURL]) &&
		!truthy(in[FieldDescription]) && !truthy(in[FieldRating]) {
		return Patch{}, &ValidationError{Kind: ErrEmptyUpdate}
	}

	title, hasTitle := in[FieldTitle]
	rawURL, hasURL := in[FieldURL]
	rating, hasRating := in[FieldRating]

	if hasTitle && !truthy(title) {
		return Patch{}, missing(FieldTitle)
	}
	if hasURL && !truthy(rawURL) {
		return Patch{}, missing(FieldURL)
	}
	if hasRating && !truthy(rating) {
		return Patch{}, missing(FieldRating)
	}

	var p Patch
	if hasRating {
		r, ok := parseRating(rating)
		if !ok {
			return Patch{}, &ValidationError{Kind: ErrInvalidRating, Field: FieldRating}
		}
		p.Rating = &r
	}
	if hasURL {
		u := toText(rawURL)
		if !IsWebURI(u) {
			return Patch{}, &ValidationError{Kind: ErrInvalidURL, Field: FieldURL}
		}
		p.URL = &u
	}
	if hasTitle {
		t := toText(title)
		p.Title = &t
	}
	if v, ok := in[FieldDescription]; ok {
		p.SetDescription = true
		if v != nil {
			s := toText(v)
			p.Description = &s
		}
	}
	return p, nil
}

// IsWebURI reports whether raw is an absolute http(s) URI with a host.
func IsWebURI(raw string) bool {
	if raw == "" || strings.ContainsAny(raw, " \t\r\n") {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return false
	}
	return u.Hostname() != "" && u.Opaque == ""
}

// parseRating coerces v to a number and accepts integers in range.
func parseRating(v any) (int, bool) {
	f, ok := toNumber(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < MinRating || f > MaxRating {
		return 0, false
	}
	return int(f), true
}

// truthy mirrors loose truthiness: nil, "", 0, NaN and false are falsy.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case json.Number, float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		f, ok := toNumber(x)
		return ok && f != 0 && !math.IsNaN(f)
	default:
		return true
	}
}

func toNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return math.NaN(), false
	}
}

func toText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}
