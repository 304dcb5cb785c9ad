// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package linkedin scrapes LinkedIn profiles and writes the retained fields
// to disk. It is the first pipeline stage.
package linkedin

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/pdiddy/profile-engine/pkg/types"
)

// RawProfile is a scraped profile keyed by LinkedIn field name, before the
// allow-list is applied. Values are left encoded so unknown fields survive
// untouched until Filter drops them.
type RawProfile map[string]json.RawMessage

// Keys returns the field names present in the profile, sorted.
func (r RawProfile) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// elementsView is the shape shared by the Voyager *View collections.
type elementsView struct {
	Elements []json.RawMessage `json:"elements"`
}

// profileView is the Voyager profileView response.
type profileView struct {
	Profile                 map[string]json.RawMessage `json:"profile"`
	PositionView            elementsView               `json:"positionView"`
	EducationView           elementsView               `json:"educationView"`
	LanguageView            elementsView               `json:"languageView"`
	PublicationView         elementsView               `json:"publicationView"`
	CertificationView       elementsView               `json:"certificationView"`
	VolunteerExperienceView elementsView               `json:"volunteerExperienceView"`
	HonorView               elementsView               `json:"honorView"`
	ProjectView             elementsView               `json:"projectView"`
}

// parseProfileView flattens a profileView body into a RawProfile: the
// top-level profile fields plus one list per collection view.
func parseProfileView(body []byte) (RawProfile, error) {
	var view profileView
	if err := json.Unmarshal(body, &view); err != nil {
		return nil, err
	}
	if view.Profile == nil {
		return nil, fmt.Errorf("response has no profile object")
	}

	raw := make(RawProfile, len(view.Profile)+8)
	for k, v := range view.Profile {
		if k == "miniProfile" {
			continue
		}
		raw[k] = v
	}

	collections := map[string]elementsView{
		"experience":     view.PositionView,
		"education":      view.EducationView,
		"languages":      view.LanguageView,
		"publications":   view.PublicationView,
		"certifications": view.CertificationView,
		"volunteer":      view.VolunteerExperienceView,
		"honors":         view.HonorView,
		"projects":       view.ProjectView,
	}
	for key, cv := range collections {
		elements := cv.Elements
		if elements == nil {
			elements = []json.RawMessage{}
		}
		data, err := json.Marshal(elements)
		if err != nil {
			return nil, err
		}
		raw[key] = data
	}

	return raw, nil
}

// Filter keeps only the fields in types.ProfileFields and decodes them into
// a typed Profile. Fields outside the allow-list are discarded.
func Filter(raw RawProfile) (*types.Profile, error) {
	kept := make(map[string]json.RawMessage, len(types.ProfileFields))
	for _, key := range types.ProfileFields {
		if v, ok := raw[key]; ok {
			kept[key] = v
		}
	}

	data, err := json.Marshal(kept)
	if err != nil {
		return nil, err
	}

	var p types.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding profile fields: %w", err)
	}
	return &p, nil
}

// NormalizePublicID extracts the public profile identifier from a vanity URL
// (https://www.linkedin.com/in/<id>/, with or without scheme) or returns a
// bare identifier unchanged. It returns "" when no identifier can be found.
func NormalizePublicID(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	if !strings.Contains(ref, "/") {
		return ref
	}

	if !strings.Contains(ref, "://") {
		ref = "https://" + ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+1 < len(parts); i++ {
		if parts[i] == "in" {
			id, err := url.PathUnescape(parts[i+1])
			if err != nil {
				return parts[i+1]
			}
			return id
		}
	}
	return ""
}
