package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextFieldsPropagate(t *testing.T) {
	var buf bytes.Buffer
	base := New(&Config{Level: "info", Format: "json", Output: &buf, ServiceName: "test"})

	ctx := base.WithContext(context.Background())
	ctx = SetRunID(ctx, "run-1")
	ctx = WithFields(ctx, Fields{FieldDocumentID: "D1"})

	assert.Equal(t, "run-1", GetRunID(ctx))

	With(Fields{FieldCount: 2}).WithStatus("imported").Info(ctx, "run %s done", "run-1")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "test", line["service"])
	assert.Equal(t, "run-1", line[FieldRunID])
	assert.Equal(t, "D1", line[FieldDocumentID])
	assert.Equal(t, "imported", line[FieldStatus])
	assert.Equal(t, "run run-1 done", line["message"])
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Same(t, GetDefault(), FromContext(context.Background()))
	assert.Empty(t, GetRequestID(context.Background()))
}
