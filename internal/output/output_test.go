package output

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) Copy(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input    string
		expected Mode
		wantErr  bool
	}{
		{input: "", expected: ModePrint},
		{input: "print", expected: ModePrint},
		{input: " COPY ", expected: ModeCopy},
		{input: "exec", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mode, err := ParseMode(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, mode)
		})
	}
}

func TestEmitPrint(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	require.NoError(t, w.Emit("no newline", ModePrint))
	require.NoError(t, w.Emit("with newline\n", ModePrint))
	assert.Equal(t, "no newline\nwith newline\n", buf.String())
}

func TestEmitCopy(t *testing.T) {
	var buf bytes.Buffer
	clip := &fakeClipboard{}
	w := New(&buf).WithClipboard(clip)

	require.NoError(t, w.Emit("card text", ModeCopy))
	assert.Equal(t, "card text", clip.text)
	assert.Empty(t, buf.String())
}

func TestCopyError(t *testing.T) {
	w := New(nil).WithClipboard(&fakeClipboard{err: ErrNoClipboard})
	assert.True(t, errors.Is(w.Copy("x"), ErrNoClipboard))
}
