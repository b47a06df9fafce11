package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/slimecats/internal/boxes"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(map[string]string{"put": "yarn"})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]interface{}{"put": "yarn"}, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error(ErrCodeFull, "all boxes are full", nil)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeFull, resp.Error.Code)
	assert.Equal(t, "all boxes are full", resp.Error.Message)
	assert.Nil(t, resp.Error.Details)
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error(ErrCodeNotFound, "no todo #3", "todo: absent")
	require.NoError(t, err)
	assert.Equal(t, "Error [E004]: no todo #3\n", buf.String())
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	err := formatter.Error(ErrCodeNotFound, "no todo #3", "todo: absent")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E004]")
	assert.Contains(t, buf.String(), "Details: todo: absent")
}

func TestOutputFormatter_Result(t *testing.T) {
	text := &bytes.Buffer{}
	require.NoError(t, (&OutputFormatter{Format: "text", Writer: text}).Result(42, "forty-two\n"))
	assert.Equal(t, "forty-two\n", text.String())

	js := &bytes.Buffer{}
	require.NoError(t, (&OutputFormatter{Format: "json", Writer: js}).Result(42, "forty-two\n"))
	assert.JSONEq(t, `{"status":"ok","data":42}`, js.String())
}

func TestOutputFormatter_Fail(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Fail(ExitFailure, ErrCodeFull, "all boxes are full", boxes.ErrBoxesFull)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.ErrorIs(t, err, boxes.ErrBoxesFull)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, boxes.ErrBoxesFull.Error(), resp.Error.Details)
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:  "text",
				Writer:  buf,
				Verbose: tt.verbose,
			}

			formatter.VerboseLog("sync %s failed", "local:b")

			if tt.wantLog {
				assert.Contains(t, buf.String(), "sync local:b failed")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad config")))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))

	wrapped := WrapExitError(ExitFailure, "sync", errors.New("boom"))
	assert.Equal(t, "sync: boom", wrapped.Error())
}
