package shared

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Front string `json:"front" validate:"required"`
	Count int    `json:"count" validate:"gte=1"`
}

type selfValidating struct {
	OK bool `json:"ok"`
}

func (s *selfValidating) Validate() error {
	if !s.OK {
		return errors.New("not ok")
	}
	return nil
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr error
		errText string
	}{
		{name: "valid", body: `{"front":"hola","count":2}`},
		{name: "empty body", body: "", wantErr: ErrEmptyBody},
		{name: "malformed", body: `{"front":"hola",}`, errText: "invalid character"},
		{name: "unknown field", body: `{"front":"hola","extra":1}`, errText: "unknown field"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var got sampleRequest
			err := DecodeJSON(req, &got)

			switch {
			case tc.wantErr != nil:
				assert.ErrorIs(t, err, tc.wantErr)
			case tc.errText != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errText)
			default:
				require.NoError(t, err)
				assert.Equal(t, sampleRequest{Front: "hola", Count: 2}, got)
			}
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestDecodeJSON_ReadError(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/", failingReader{})
	var got sampleRequest
	err := DecodeJSON(req, &got)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateRequest(&sampleRequest{Front: "a", Count: 1}))
	assert.Error(t, ValidateRequest(&sampleRequest{Count: 1}))
	assert.Error(t, ValidateRequest(&sampleRequest{Front: "a"}))

	assert.NoError(t, ValidateRequest(&selfValidating{OK: true}))
	assert.Error(t, ValidateRequest(&selfValidating{}))
}
