package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShellEscape(t *testing.T) {
	assert.Equal(t, "''", ShellEscape(""))
	assert.Equal(t, "plain", ShellEscape("plain"))
	assert.Equal(t, "'two words'", ShellEscape("two words"))
	assert.Equal(t, "'%(title)s.%(ext)s'", ShellEscape("%(title)s.%(ext)s"))
	assert.Equal(t, `'it'"'"'s'`, ShellEscape("it's"))
}

func TestShellEscapeCommand(t *testing.T) {
	got := ShellEscapeCommand("/usr/local/bin/yt-dlp", "-P", "/tmp/my downloads", "--progress")
	assert.Equal(t, `/usr/local/bin/yt-dlp -P '/tmp/my downloads' --progress`, got)
}
