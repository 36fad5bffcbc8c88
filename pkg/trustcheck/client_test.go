package trustcheck

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustcheck/scraper-agent/internal/model"
)

func TestSubmitReport(t *testing.T) {
	var got model.ReportPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/reports", r.URL.Path)
		assert.Equal(t, "Bearer bot-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "bot-token")
	err := client.SubmitReport(context.Background(), model.ReportPayload{
		TargetType:      model.TargetPhone,
		TargetValue:     "+48600111222",
		Rating:          1,
		Reason:          model.ReasonScam,
		IsAutoGenerated: true,
	})

	require.NoError(t, err)
	assert.Equal(t, model.TargetPhone, got.TargetType)
	assert.Equal(t, "+48600111222", got.TargetValue)
	assert.True(t, got.IsAutoGenerated)
}

func TestSubmitReportRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "bot-token").SubmitReport(context.Background(), model.ReportPayload{})
	assert.Error(t, err)
}

func TestExists(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    bool
		wantErr bool
	}{
		{name: "already reported", status: http.StatusOK, body: `{"community":{"totalReports":3}}`, want: true},
		{name: "known but unreported", status: http.StatusOK, body: `{"community":{"totalReports":0}}`, want: false},
		{name: "unknown identity", status: http.StatusNotFound, body: "", want: false},
		{name: "malformed body", status: http.StatusOK, body: "{", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/verification/search/+48600111222", r.URL.Path)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			exists, err := NewClient(srv.URL, "bot-token").Exists(context.Background(), "+48600111222")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, exists)
		})
	}
}

func TestUploadScreenshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/uploads/screenshots", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"path":"/uploads/abc.png"}`))
	}))
	defer srv.Close()

	path, err := NewClient(srv.URL, "bot-token").UploadScreenshot(context.Background(), []byte{0x89}, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/abc.png", path)
}

func TestUploadScreenshotRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "bot-token").UploadScreenshot(context.Background(), []byte{0x89}, "image/png")
	assert.Error(t, err)
}
