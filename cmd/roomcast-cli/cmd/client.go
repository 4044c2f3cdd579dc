package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// getJSON fetches a service API endpoint and decodes the response into out.
func getJSON(path string, out any) error {
	client := &http.Client{Timeout: 10 * time.Second}

	url := strings.TrimRight(serverURL, "/") + path
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("failed to reach server at %s: %w", serverURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode server response: %w", err)
	}
	return nil
}
