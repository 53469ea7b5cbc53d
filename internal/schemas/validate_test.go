package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAnalysisResponse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name: "complete valid response",
			input: `{
				"summary": "A quarterly sales deck.",
				"insights": ["Q3 outperformed Q2"],
				"recommendations": ["Expand the northern territory"],
				"generated_code": "console.log('ok')"
			}`,
		},
		{
			name: "valid without generated code",
			input: `{
				"summary": "A budget workbook.",
				"insights": [],
				"recommendations": []
			}`,
		},
		{
			name:    "missing summary",
			input:   `{"insights": [], "recommendations": []}`,
			wantErr: true,
		},
		{
			name:    "empty summary",
			input:   `{"summary": "", "insights": [], "recommendations": []}`,
			wantErr: true,
		},
		{
			name:    "insights not an array",
			input:   `{"summary": "x", "insights": "one big string", "recommendations": []}`,
			wantErr: true,
		},
		{
			name:    "insight items not strings",
			input:   `{"summary": "x", "insights": [1, 2], "recommendations": []}`,
			wantErr: true,
		},
		{
			name:    "generated code not a string",
			input:   `{"summary": "x", "insights": [], "recommendations": [], "generated_code": 42}`,
			wantErr: true,
		},
		{
			name:    "not an object",
			input:   `["summary"]`,
			wantErr: true,
		},
		{
			name:    "malformed JSON",
			input:   `{"summary": "x",`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAnalysisResponse([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidationErrorNamesFields(t *testing.T) {
	err := ValidateAnalysisResponse([]byte(`{"insights": [], "recommendations": []}`))
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	require.NotEmpty(t, ve.Errors)
	assert.Contains(t, err.Error(), "summary")
}
