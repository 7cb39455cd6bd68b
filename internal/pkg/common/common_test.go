package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	var v map[string]any
	require.NoError(t, ParseJSON(`{"calories": 420.50}`, &v))
	assert.Equal(t, json.Number("420.50"), v["calories"])

	assert.ErrorIs(t, ParseJSON(`{"a":1} {"b":2}`, &v), ErrTrailingJSON)
	assert.Error(t, ParseJSON(`{"a":1} trailing`, &v))
	assert.Error(t, ParseJSONBytes([]byte(`{"a":`), &v))
}

func TestCustomError(t *testing.T) {
	cause := errors.New("boom")
	err := ErrAIServiceError.WithError(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusServiceUnavailable, err.Status)
	assert.Equal(t, "AI 服務錯誤: boom", err.Error())
	assert.Nil(t, ErrAIServiceError.Err)

	assert.Empty(t, err.Response(false).Details)
	assert.Equal(t, "boom", err.Response(true).Details)
	assert.Equal(t, "otro", err.WithMessage("otro").Message)
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("limit must be a positive integer")
	assert.True(t, IsValidationError(err))
	assert.True(t, IsValidationError(errors.Join(errors.New("x"), err)))
	assert.False(t, IsValidationError(errors.New("x")))
}

func TestHashAndFilter(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", HashBytes(nil))
	assert.Equal(t, HashBytes([]byte("abc")), HashString("abc"))
	assert.Len(t, GenerateUUID(), 36)

	assert.True(t, isImageField("image_data"))
	assert.False(t, isImageField("request_id"))
	assert.Equal(t, "a, b", StringSliceToString([]string{"a", "b"}))
	assert.Equal(t, "debug", ParseLevel(" DEBUG ").String())
	assert.Equal(t, "info", ParseLevel("verbose").String())
}

func TestInitLogger_Mode(t *testing.T) {
	prevLogger, prevMode := Logger, LogMode
	t.Cleanup(func() { Logger, LogMode = prevLogger, prevMode })

	dir := t.TempDir()
	require.NoError(t, InitLogger("debug", dir, " Concise "))
	assert.Equal(t, "concise", LogMode)
	assert.True(t, Logger.Core().Enabled(-1))

	_, err := os.Stat(filepath.Join(dir, "app.log"))
	assert.NoError(t, err)

	require.NoError(t, InitLogger("info", dir, ""))
	assert.Empty(t, LogMode)
}
