package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/tmimport/internal/domain"
)

func newJobServer(t *testing.T, status int, body string, delay time.Duration) (*httptest.Server, *string) {
	t.Helper()
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		gotPath = r.URL.Path
		if delay > 0 {
			time.Sleep(delay)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &gotPath
}

func newTestTrigger(url string, timeout time.Duration) *JobTrigger {
	return NewJobTrigger(&JobTriggerConfig{
		URL:        url,
		Timeout:    timeout,
		Token:      "token-1",
		ProductJob: "TextMaster-ProductImport-",
		CatalogJob: "TextMaster-CatalogImport-",
		ContentJob: "TextMaster-ContentImport-",
	})
}

func TestJobName(t *testing.T) {
	trigger := newTestTrigger("http://localhost/{0}", 0)

	tests := map[domain.ItemType]string{
		domain.ItemTypeProduct:  "TextMaster-ProductImport-RefArch",
		domain.ItemTypeCategory: "TextMaster-CatalogImport-RefArch",
		domain.ItemTypeContent:  "TextMaster-ContentImport-RefArch",
	}
	for itemType, want := range tests {
		got, err := trigger.JobName(itemType, "RefArch")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := trigger.JobName(domain.ItemType("folder"), "RefArch")
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestTriggerClassifiesExecutionStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    domain.JobOutcome
		wantErr bool
	}{
		{"running", http.StatusOK, `{"execution_status":"running"}`, domain.JobOutcomeAccepted, false},
		{"pending", http.StatusOK, `{"execution_status":"PENDING"}`, domain.JobOutcomeAccepted, false},
		{"finished", http.StatusOK, `{"execution_status":"finished"}`, domain.JobOutcomeFinished, false},
		{"already running status", http.StatusOK, `{"execution_status":"JobAlreadyRunningException"}`, domain.JobOutcomeAlreadyRunning, false},
		{"already running fault", http.StatusBadRequest, `{"fault":{"type":"JobAlreadyRunningException","message":"busy"}}`, domain.JobOutcomeAlreadyRunning, false},
		{"error", http.StatusOK, `{"execution_status":"error"}`, domain.JobOutcomeFailed, true},
		{"server error", http.StatusInternalServerError, ``, domain.JobOutcomeFailed, true},
		{"malformed", http.StatusOK, `<html>`, domain.JobOutcomeFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, path := newJobServer(t, tt.status, tt.body, 0)
			trigger := newTestTrigger(srv.URL+"/s/-/dw/data/v19_5/jobs/{0}/executions", time.Second)

			outcome, err := trigger.Trigger(context.Background(), domain.ItemTypeProduct, "RefArch")
			assert.Equal(t, tt.want, outcome)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrTriggerFailed)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, "/s/-/dw/data/v19_5/jobs/TextMaster-ProductImport-RefArch/executions", *path)
		})
	}
}

func TestTriggerJobPlaceholder(t *testing.T) {
	srv, path := newJobServer(t, http.StatusOK, `{"execution_status":"running"}`, 0)
	trigger := newTestTrigger(srv.URL+"/jobs/{job}/executions", time.Second)

	_, err := trigger.Trigger(context.Background(), domain.ItemTypeContent, "Site Genesis")
	require.NoError(t, err)
	assert.Equal(t, "/jobs/TextMaster-ContentImport-Site Genesis/executions", *path)
}

func TestTriggerTimeoutIsFailed(t *testing.T) {
	srv, _ := newJobServer(t, http.StatusOK, `{"execution_status":"running"}`, 300*time.Millisecond)
	trigger := newTestTrigger(srv.URL+"/{0}", 50*time.Millisecond)

	outcome, err := trigger.Trigger(context.Background(), domain.ItemTypeCategory, "RefArch")
	assert.Equal(t, domain.JobOutcomeFailed, outcome)
	assert.ErrorIs(t, err, domain.ErrTriggerFailed)
}
