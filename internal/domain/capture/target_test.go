package capture

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckTarget(t *testing.T) {
	tests := []struct {
		raw string
		err error
	}{
		{"https://example.com/page", nil},
		{"http://93.184.216.34/", nil},
		{"http://localhost:8080/", ErrInternalHost},
		{"http://api.localhost./", ErrInternalHost},
		{"http://127.0.0.1/", ErrInternalHost},
		{"http://[::1]/", ErrInternalHost},
		{"http://0.0.0.0/", ErrInternalHost},
		{"http://10.1.2.3/", ErrPrivateRange},
		{"http://192.168.0.10/", ErrPrivateRange},
		{"http://169.254.169.254/", ErrPrivateRange},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			u, err := url.Parse(tt.raw)
			require.NoError(t, err)
			if tt.err == nil {
				assert.NoError(t, CheckTarget(u))
				return
			}
			assert.ErrorIs(t, CheckTarget(u), tt.err)
		})
	}
}

func TestCheckTargetRejectsSchemeAndEmptyHost(t *testing.T) {
	u, err := url.Parse("file:///etc/passwd")
	require.NoError(t, err)
	assert.ErrorContains(t, CheckTarget(u), "invalid URL scheme")

	assert.ErrorContains(t, CheckHost(""), "must include a host")
}
