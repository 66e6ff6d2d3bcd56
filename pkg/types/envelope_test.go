// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeJSON(t *testing.T) {
	tests := []struct {
		name string
		env  Envelope[DownloadResult]
		want string
	}{
		{
			name: "success has null error",
			env:  OK(DownloadResult{FilePath: "/tmp/x.pdf", Provider: "arxiv"}),
			want: `{"success":true,"data":{"file_path":"/tmp/x.pdf","provider":"arxiv","paper_id":"","message":""},"error":null}`,
		},
		{
			name: "failure without data has null data",
			env:  Fail[DownloadResult](nil, errors.New("validation error: paper_id must not be empty")),
			want: `{"success":false,"data":null,"error":"validation error: paper_id must not be empty"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.env)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestEnvelopeJSON_FailureKeepsDiagnostics(t *testing.T) {
	resp := SearchResponse{Query: "go", Errors: map[string]string{"brave": "timeout"}}
	got, err := json.Marshal(Fail(&resp, errors.New("no providers available")))
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(got, &raw))
	assert.Contains(t, string(raw["data"]), `"brave":"timeout"`)
	assert.JSONEq(t, `"no providers available"`, string(raw["error"]))

	var back Envelope[SearchResponse]
	require.NoError(t, json.Unmarshal(got, &back))
	assert.False(t, back.Success)
	assert.Equal(t, "no providers available", back.Error)
	assert.Equal(t, "timeout", back.Data.Errors["brave"])
}

func TestEnvelopeJSON_DecodesNulls(t *testing.T) {
	var env Envelope[DownloadResult]
	require.NoError(t, json.Unmarshal([]byte(`{"success":true,"data":null,"error":null}`), &env))
	assert.True(t, env.Success)
	assert.Nil(t, env.Data)
	assert.Empty(t, env.Error)
}
