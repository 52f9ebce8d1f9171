package format

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

const maxRemoteBytes = 4 << 20

// Fetch downloads a song and reports which decoder its URL selects.
func Fetch(ctx context.Context, client *http.Client, rawURL string) (Kind, string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, "", fmt.Errorf("HTTP error %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteBytes))
	if err != nil {
		return 0, "", err
	}
	text, err := DecodeText(raw)
	if err != nil {
		return 0, "", err
	}
	return KindOf(req.URL.Path), text, nil
}
