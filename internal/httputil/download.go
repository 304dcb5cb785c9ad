// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/pdiddy/profile-engine/internal/layout"
)

// Download fetches url to destPath. The body is streamed through
// layout.WriteAtomic, so a failed download never leaves a partial file at
// destPath.
func Download(ctx context.Context, client *resty.Client, url, destPath string) error {
	resp, err := client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode(), url)
	}

	return layout.WriteAtomic(destPath, body)
}
