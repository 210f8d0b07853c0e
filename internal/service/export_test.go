package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHumanizeAgo(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"future", now.Add(time.Minute), "just now"},
		{"seconds ago", now.Add(-30 * time.Second), "just now"},
		{"minutes ago", now.Add(-5 * time.Minute), "5 minute(s) ago"},
		{"hours ago", now.Add(-3 * time.Hour), "3 hour(s) ago"},
		{"days ago", now.Add(-48 * time.Hour), "2 day(s) ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, humanizeAgo(tt.t))
		})
	}
}

func TestExportMap_KeepsIdentityAndProgress(t *testing.T) {
	url := "http://example.com/files/a.xlsx"
	m := exportMap(ExportStatus{
		Key:      "exports:abc",
		Type:     "payments",
		UserID:   7,
		Progress: 95,
		FileURL:  &url,
		Created:  time.Now(),
	})

	assert.Equal(t, "exports:abc", m["key"])
	assert.Equal(t, "payments", m["type"])
	assert.Equal(t, int64(7), m["user_id"])
	assert.Equal(t, 95.0, m["progress"])
	assert.Equal(t, &url, m["file_url"])
}
