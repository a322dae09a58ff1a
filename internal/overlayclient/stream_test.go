package overlayclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateStreamURL(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr error
	}{
		{raw: "", wantErr: ErrStreamURLEmpty},
		{raw: "   ", wantErr: ErrStreamURLEmpty},
		{raw: "http://example.com/live.m3u8", wantErr: ErrStreamURLScheme},
		{raw: "  rtsp://cam.local/stream1 ", want: "rtsp://cam.local/stream1"},
	}
	for _, tc := range tests {
		got, err := ValidateStreamURL(tc.raw)
		if tc.wantErr != nil {
			assert.ErrorIs(t, err, tc.wantErr, tc.raw)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestSampleStreamsAreValid(t *testing.T) {
	for _, s := range SampleStreams {
		_, err := ValidateStreamURL(s.URL)
		assert.NoError(t, err, s.Name)
	}
}
