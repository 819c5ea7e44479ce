package yahoo

import (
	"encoding/json"
	"testing"
)

func mustUnmarshal(t *testing.T, body string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(body), v); err != nil {
		t.Fatalf("Failed to unmarshal fixture: %v", err)
	}
}
