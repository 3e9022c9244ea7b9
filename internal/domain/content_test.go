package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContentType(t *testing.T) {
	tests := []struct {
		input   string
		want    ContentType
		wantErr bool
	}{
		{"Photo", ContentPhoto, false},
		{"photo", ContentPhoto, false},
		{"REEL", ContentReel, false},
		{"video", ContentVideo, false},
		{"", "", false},
		{"story", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseContentType(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContentType_Extension(t *testing.T) {
	assert.Equal(t, ".jpg", ContentPhoto.Extension())
	assert.Equal(t, ".mp4", ContentReel.Extension())
	assert.Equal(t, ".mp4", ContentVideo.Extension())
	assert.False(t, ContentPhoto.IsVideo())
	assert.True(t, ContentReel.IsVideo())
}

func TestDownloadReference_RoundTrip(t *testing.T) {
	ref := ContentReference{Platform: PlatformInstagram, Identifier: "ABC123", ContentType: ContentPhoto}
	assert.Equal(t, "/api/instagram/download/ABC123/photo", ref.DownloadReference())

	parsed, err := ParseDownloadReference("http://localhost:5000" + ref.DownloadReference() + "?quality=720p")
	require.NoError(t, err)
	assert.Equal(t, ref, parsed)
}

func TestParseDownloadReference_Invalid(t *testing.T) {
	for _, ref := range []string{
		"/api/instagram/metadata",
		"/api/myspace/download/1/video",
		"/api/youtube/download/abc/story",
		"garbage",
	} {
		_, err := ParseDownloadReference(ref)
		assert.Error(t, err, ref)
	}
}

func TestDuration_JSON(t *testing.T) {
	data, err := json.Marshal(DurationFromSeconds(12.6))
	require.NoError(t, err)
	assert.Equal(t, "13", string(data))

	data, err = json.Marshal(NotApplicable)
	require.NoError(t, err)
	assert.Equal(t, `"N/A"`, string(data))

	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"N/A"`), &d))
	assert.False(t, d.Valid)
	require.NoError(t, json.Unmarshal([]byte(`42`), &d))
	assert.Equal(t, Duration{Seconds: 42, Valid: true}, d)
}

func TestStagedFile_ReleaseOnce(t *testing.T) {
	staged := &StagedFile{Path: "/tmp/x"}
	calls := 0
	staged.ReleaseOnce(func() { calls++ })
	staged.ReleaseOnce(func() { calls++ })
	assert.Equal(t, 1, calls)
}

func TestError_Classification(t *testing.T) {
	err := Transient(errors.New("connection reset"))
	assert.True(t, IsTransient(err))
	assert.True(t, IsTransient(errors.Join(errors.New("ctx"), err)))
	assert.False(t, IsTransient(NotFound("gone", nil)))
	assert.False(t, IsTransient(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))

	ref := ContentReference{Platform: PlatformFacebook, Identifier: "42"}
	typed := Permanent("bad", nil).WithRef(ref)
	assert.Equal(t, PlatformFacebook, typed.Platform)
	assert.Equal(t, "42", typed.Identifier)
	assert.Contains(t, typed.Error(), "facebook bad_request [42]")
	assert.Equal(t, "internal server error", PublicMessage(errors.New("boom")))
}

func TestParsePlatform(t *testing.T) {
	p, err := ParsePlatform(" YouTube ")
	assert.NoError(t, err)
	assert.Equal(t, PlatformYouTube, p)

	_, err = ParsePlatform("tiktok")
	assert.Error(t, err)
}
