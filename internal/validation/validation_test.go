package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name string `json:"name" validate:"required,min=3,max=5,alphanum"`
	Body string `json:"body" validate:"notblank"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name   string
		input  sample
		fields []string
	}{
		{name: "valid", input: sample{Name: "abc", Body: "x"}},
		{name: "missing name", input: sample{Body: "x"}, fields: []string{"name"}},
		{name: "too short", input: sample{Name: "ab", Body: "x"}, fields: []string{"name"}},
		{name: "too long", input: sample{Name: "abcdef", Body: "x"}, fields: []string{"name"}},
		{name: "non alphanumeric", input: sample{Name: "a_b", Body: "x"}, fields: []string{"name"}},
		{name: "blank body", input: sample{Name: "abc", Body: "  \n"}, fields: []string{"body"}},
		{name: "both", input: sample{Name: "", Body: ""}, fields: []string{"name", "body"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.input)
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}

			var verr *Error
			require.True(t, errors.As(err, &verr), "expected *validation.Error, got %v", err)

			got := make([]string, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				got = append(got, f.Field)
				assert.NotEmpty(t, f.Description)
			}
			assert.ElementsMatch(t, tt.fields, got)
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := New("title", "title is required")
	assert.Equal(t, "title is required", err.Error())
}

func TestStruct_MaxBytesCountsEncodedLength(t *testing.T) {
	type secret struct {
		Value string `json:"value" validate:"maxbytes=8"`
	}

	assert.NoError(t, Struct(secret{Value: "ééaa"}))

	err := Struct(secret{Value: "ééééé"})
	var verr *Error
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "value must be at most 8 bytes", verr.Fields[0].Description)
}
