package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrMissingTitle = errors.New("title is required")

// Submission is the canonical input to routing, after legacy aliases have
// been resolved.
type Submission struct {
	Title        string
	Description  string
	Category     string
	Location     Location
	ImageURLs    []string
	ManualEntity string
	Creator      Creator
}

// ReportRequest is the POST /reports body. Older clients send the assigned
// entity as "entity" and the address as "location" (a plain string) or
// "address"; Normalize resolves those once so nothing downstream has to.
type ReportRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`

	EntityName string `json:"entityName"`
	Entity     string `json:"entity"`
	Entidad    string `json:"entidad"`

	Location  json.RawMessage `json:"location"`
	Address   string          `json:"address"`
	Latitude  *float64        `json:"latitude"`
	Longitude *float64        `json:"longitude"`

	ImageURLs []string `json:"imageUrls"`
	Images    []string `json:"images"`

	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
}

type locationObject struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
	Address   string   `json:"address"`
}

// Normalize validates the request and maps it to a Submission.
func (r ReportRequest) Normalize() (Submission, error) {
	sub := Submission{
		Title:        strings.TrimSpace(r.Title),
		Description:  strings.TrimSpace(r.Description),
		Category:     strings.TrimSpace(r.Category),
		ManualEntity: firstNonEmpty(r.EntityName, r.Entity, r.Entidad),
		ImageURLs:    r.ImageURLs,
		Creator: Creator{
			UserID: strings.TrimSpace(r.UserID),
			Name:   strings.TrimSpace(r.UserName),
			Email:  strings.TrimSpace(r.UserEmail),
		},
	}
	if sub.Title == "" {
		return Submission{}, ErrMissingTitle
	}
	if len(sub.ImageURLs) == 0 {
		sub.ImageURLs = r.Images
	}

	loc, err := parseLocation(r.Location)
	if err != nil {
		return Submission{}, err
	}
	if loc.Address == "" {
		loc.Address = strings.TrimSpace(r.Address)
	}
	if r.Latitude != nil {
		loc.Latitude = *r.Latitude
	}
	if r.Longitude != nil {
		loc.Longitude = *r.Longitude
	}
	sub.Location = loc

	return sub, nil
}

func parseLocation(raw json.RawMessage) (Location, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Location{}, nil
	}

	switch raw[0] {
	case '"':
		var address string
		if err := json.Unmarshal(raw, &address); err != nil {
			return Location{}, fmt.Errorf("invalid location: %w", err)
		}
		return Location{Address: strings.TrimSpace(address)}, nil
	case '{':
		var obj locationObject
		if err := json.Unmarshal(raw, &obj); err != nil {
			return Location{}, fmt.Errorf("invalid location: %w", err)
		}
		loc := Location{Address: strings.TrimSpace(obj.Address)}
		if v := firstFloat(obj.Latitude, obj.Lat); v != nil {
			loc.Latitude = *v
		}
		if v := firstFloat(obj.Longitude, obj.Lng); v != nil {
			loc.Longitude = *v
		}
		return loc, nil
	default:
		return Location{}, fmt.Errorf("invalid location: expected string or object")
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func firstFloat(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
