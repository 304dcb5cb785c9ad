// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package roster resolves person names from the command line against the
// configured accounts.
package roster

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/profile-engine/pkg/types"
)

// All selects every configured account.
const All = "ALL"

// ErrUnknownPerson is returned when a person name has no configured account.
var ErrUnknownPerson = errors.New("person not found in accounts")

// ErrNoPerson is returned when no person name was given.
var ErrNoPerson = errors.New("provide a person name, or set it to ALL to process all configured accounts")

// ErrInvalidAccounts is returned when the configured account names cannot
// be mapped to distinct output files.
var ErrInvalidAccounts = errors.New("invalid accounts")

// Resolve returns the accounts selected by name. ALL selects every account,
// sorted by name; any other name must match a configured account exactly.
// Every configured name must slug to a distinct, non-empty file name.
func Resolve(accounts []types.Account, name string) ([]types.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNoPerson
	}
	if err := Validate(accounts); err != nil {
		return nil, err
	}

	if name == All {
		out := make([]types.Account, len(accounts))
		copy(out, accounts)
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return out, nil
	}

	for _, a := range accounts {
		if a.Name == name {
			return []types.Account{a}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPerson, name)
}

// Validate checks that every account name has a non-empty slug and that no
// two names share one, since the slug names each person's output files.
func Validate(accounts []types.Account) error {
	owners := make(map[string]string, len(accounts))
	for _, a := range accounts {
		slug := Slug(a.Name)
		if slug == "" {
			return fmt.Errorf("%w: name %q has no letters or digits", ErrInvalidAccounts, a.Name)
		}
		if prev, ok := owners[slug]; ok {
			return fmt.Errorf("%w: %q and %q both map to file name %q", ErrInvalidAccounts, prev, a.Name, slug)
		}
		owners[slug] = a.Name
	}
	return nil
}

var nonSlug = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Slug converts a person name to a filesystem-safe identifier:
// "Ada Lovelace" becomes "ada-lovelace".
func Slug(name string) string {
	s := nonSlug.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}
