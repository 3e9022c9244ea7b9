package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractInstagramShortcode(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"post with trailing slash", "https://www.instagram.com/p/ABC123/", "ABC123", false},
		{"post without trailing slash", "https://instagram.com/p/ABC123", "ABC123", false},
		{"reel", "https://www.instagram.com/reel/C_x-9yZ/", "C_x-9yZ", false},
		{"reel with query", "https://www.instagram.com/reel/Cabc123/?igsh=MWQ1ZGUxMzBkMA==", "Cabc123", false},
		{"mobile host", "https://m.instagram.com/p/XYZ/", "XYZ", false},
		{"profile URL", "https://www.instagram.com/someuser/", "", true},
		{"stories", "https://www.instagram.com/stories/someuser/123/", "", true},
		{"wrong host", "https://platformA.com/p/ABC123/", "", true},
		{"lookalike host", "https://notinstagram.com/p/ABC123/", "", true},
		{"not a url", "not-a-url", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractInstagramShortcode(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, KindInvalidURL, KindOf(err))
				assert.Equal(t, "Invalid Instagram URL format", PublicMessage(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractFacebookPostID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"posts path", "https://www.facebook.com/someuser/posts/1234567890", "1234567890", false},
		{"videos path", "https://www.facebook.com/someuser/videos/987654321/", "987654321", false},
		{"trailing id", "https://www.facebook.com/555666777", "555666777", false},
		{"posts wins over later segment", "https://www.facebook.com/123/posts/456", "456", false},
		{"watch query", "https://www.facebook.com/watch/?v=24681357", "24681357", false},
		{"story query", "https://m.facebook.com/story.php?story_fbid=1357&id=42", "1357", false},
		{"no id", "https://www.facebook.com/someuser", "", true},
		{"wrong host", "https://example.com/posts/123", "", true},
		{"not a url", "not-a-url", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractFacebookPostID(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, KindInvalidURL, KindOf(err))
				assert.Equal(t, "Invalid Facebook URL format", PublicMessage(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractYouTubeVideoID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"watch with extra params", "https://www.youtube.com/watch?list=PL1&v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ", false},
		{"mobile watch", "https://m.youtube.com/watch?v=abc-_123", "abc-_123", false},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"short link with params", "https://youtu.be/dQw4w9WgXcQ?si=xyz&t=3", "dQw4w9WgXcQ", false},
		{"watch without v", "https://www.youtube.com/watch?list=PL1", "", true},
		{"channel", "https://www.youtube.com/@someone", "", true},
		{"wrong host", "https://vimeo.com/watch?v=123", "", true},
		{"not a url", "not-a-url", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractYouTubeVideoID(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, KindInvalidURL, KindOf(err))
				assert.Contains(t, PublicMessage(err), "Invalid YouTube URL format")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleanYouTubeURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=abc&list=PL1&index=2", "https://www.youtube.com/watch?v=abc"},
		{"https://youtu.be/abc?si=tracking", "https://youtu.be/abc"},
		{"https://www.youtube.com/watch?feature=share", "https://www.youtube.com/watch"},
		{"https://www.youtube.com/watch?v=abc#t=10", "https://www.youtube.com/watch?v=abc"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := CleanYouTubeURL(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractIdentifier_NotAURLFailsEverywhere(t *testing.T) {
	for _, platform := range Platforms {
		t.Run(string(platform), func(t *testing.T) {
			_, err := ExtractIdentifier(platform, "not-a-url")
			require.Error(t, err)
			assert.Equal(t, KindInvalidURL, KindOf(err))
			assert.Regexp(t, `^Invalid .+ URL format`, PublicMessage(err))
		})
	}
}

func TestValidateIdentifier(t *testing.T) {
	assert.NoError(t, ValidateIdentifier(PlatformInstagram, "ABC_12-3"))
	assert.NoError(t, ValidateIdentifier(PlatformFacebook, "123456"))
	assert.NoError(t, ValidateIdentifier(PlatformYouTube, "dQw4w9WgXcQ"))

	assert.Error(t, ValidateIdentifier(PlatformInstagram, "../etc"))
	assert.Error(t, ValidateIdentifier(PlatformFacebook, "12ab"))
	assert.Error(t, ValidateIdentifier(PlatformYouTube, ""))
	assert.Error(t, ValidateIdentifier("myspace", "123"))
}
