package bundle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArBytesWithFilesStartsWithGlobalHeader(t *testing.T) {
	files := []File{
		{Name: "file_contexts", Contents: []byte("/etc(/.*)? etc_t\n")},
		{Name: "file_contexts.homedirs", Contents: []byte("/home(/.*)? home_t\n")},
	}
	data, err := ArBytes(files)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	// ar global header is the fixed 8-byte magic "!<arch>\n".
	assert.Equal(t, "!<arch>\n", string(data[:8]))
}

func TestCpioBytesProducesNonEmptyArchive(t *testing.T) {
	files := []File{
		{Name: "file_contexts.local", Contents: []byte("/srv(/.*)? srv_t\n")},
	}
	data, err := CpioBytes(files)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestArBytesEmptyFileListStillHasGlobalHeader(t *testing.T) {
	data, err := ArBytes(nil)
	require.NoError(t, err)
	assert.Equal(t, "!<arch>\n", string(data[:8]))
}
