package confirm

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newPrompter(input string, out *bytes.Buffer) *Prompter {
	return NewPrompter(func(o *Options) {
		o.Input = strings.NewReader(input)
		o.Output = out
	})
}

func TestPrompter_Confirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"yes", "y\n", true},
		{"upper case", "Y\n", true},
		{"surrounding space", "  y  \n", true},
		{"no newline at eof", "y", true},
		{"no", "n\n", false},
		{"empty line", "\n", false},
		{"eof", "", false},
		{"other word", "yes\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got := newPrompter(tt.input, &out).Confirm("danger ahead", "type y")
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "danger ahead\ntype y: ")
		})
	}
}

func TestPrompter_CustomPhrase(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(func(o *Options) {
		o.Input = strings.NewReader("reset\ny\n")
		o.Output = &out
		o.Phrase = "reset"
	})
	assert.True(t, p.Confirm("w", "p"))
	assert.False(t, p.Confirm("w", "p"))
}

func TestPrompter_SharesBufferedReader(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("/reset\ny\n/exit\n"))
	p := NewPrompter(func(o *Options) {
		o.Input = in
		o.Output = &bytes.Buffer{}
	})

	cmd, err := in.ReadString('\n')
	assert.NoError(t, err)
	assert.Equal(t, "/reset\n", cmd)
	assert.True(t, p.Confirm("w", "p"))

	rest, err := in.ReadString('\n')
	assert.NoError(t, err)
	assert.Equal(t, "/exit\n", rest)
}

func TestAlways(t *testing.T) {
	assert.True(t, Always(true).Confirm("w", "p"))
	assert.False(t, Always(false).Confirm("w", "p"))
}
