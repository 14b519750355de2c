package yt

import (
	"testing"

	"github.com/kkdai/youtube/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindLink(t *testing.T) {
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		FindLink("check this https://www.youtube.com/watch?v=dQw4w9WgXcQ out"))
	assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", FindLink("youtu.be/dQw4w9WgXcQ"))
	assert.Equal(t, "", FindLink("no links here"))
}

func TestExists(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ", true},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&feature=youtu.be", true},
		{"despacito", false},
		{"dQw4w9WgXcQ", false},
		{"https://example.com/watch?v=dQw4w9WgXcQ", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Exists(tt.input), tt.input)
	}
}

func TestParseSearchResults(t *testing.T) {
	out := []byte(`{"id":"abc","title":"First","duration":225,"channel":"Chan","view_count":1000,"thumbnails":[{"url":"small"},{"url":"large"}]}
not json
{"id":"def","title":"Second","duration":3723.0,"uploader":"Uploader"}

{"title":"no id"}
`)

	tracks := parseSearchResults(out)

	require.Len(t, tracks, 2)
	assert.Equal(t, Track{
		ID:        "abc",
		Title:     "First",
		Duration:  "3:45",
		Thumbnail: "large",
		URL:       "https://www.youtube.com/watch?v=abc",
		Channel:   "Chan",
		Views:     1000,
	}, tracks[0])
	assert.Equal(t, "1:02:03", tracks[1].Duration)
	assert.Equal(t, "Uploader", tracks[1].Channel)
	assert.Equal(t, "https://i.ytimg.com/vi/def/hqdefault.jpg", tracks[1].Thumbnail)
}

func TestParseSearchResults_Empty(t *testing.T) {
	tracks := parseSearchResults(nil)
	assert.NotNil(t, tracks)
	assert.Empty(t, tracks)
}

func TestMimeExt(t *testing.T) {
	assert.Equal(t, "m4a", mimeExt(`audio/mp4; codecs="mp4a.40.2"`))
	assert.Equal(t, "webm", mimeExt(`audio/webm; codecs="opus"`))
	assert.Equal(t, "mp4", mimeExt(`video/mp4; codecs="avc1.42001E, mp4a.40.2"`))
	assert.Equal(t, "ogg", mimeExt("audio/ogg"))
}

var testFormats = youtube.FormatList{
	{ItagNo: 137, MimeType: `video/mp4; codecs="avc1.640028"`, QualityLabel: "1080p", ContentLength: 5000},
	{ItagNo: 251, MimeType: `audio/webm; codecs="opus"`, AudioChannels: 2, AudioQuality: "AUDIO_QUALITY_MEDIUM"},
	{ItagNo: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`, AudioChannels: 2, AudioQuality: "AUDIO_QUALITY_MEDIUM", ContentLength: 2048},
	{ItagNo: 18, MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, AudioChannels: 2, QualityLabel: "360p"},
}

func TestPickFormat(t *testing.T) {
	audio, ok := pickFormat(testFormats, false)
	require.True(t, ok)
	assert.Equal(t, 140, audio.ItagNo)

	video, ok := pickFormat(testFormats, true)
	require.True(t, ok)
	assert.Equal(t, 18, video.ItagNo)
}

func TestPickFormat_FallsBackToOtherContainers(t *testing.T) {
	audio, ok := pickFormat(testFormats[:2], false)
	require.True(t, ok)
	assert.Equal(t, 251, audio.ItagNo)

	_, ok = pickFormat(testFormats[:2], true)
	assert.False(t, ok)
}

func TestFormatsFromVideo(t *testing.T) {
	formats := formatsFromVideo(&youtube.Video{Formats: testFormats})

	require.Len(t, formats, 4)
	assert.Equal(t, Format{Itag: 137, Note: "1080p", Ext: "mp4", Filesize: 5000}, formats[0])
	assert.Equal(t, Format{Itag: 140, Note: "medium", Ext: "m4a", Filesize: 2048}, formats[2])
}

func TestVideoID(t *testing.T) {
	id, err := VideoID("see https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", id)

	_, err = VideoID("despacito")
	assert.ErrorIs(t, err, ErrInvalidLink)
}
