package codeblock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuizFlagFollowsMeta(t *testing.T) {
	b := New("", "python quiz", "print(1)\n")
	assert.True(t, b.IsQuiz())

	b.SetQuiz(false)
	assert.Equal(t, "", b.Meta())
	assert.False(t, b.IsQuiz())

	b.SetQuiz(true)
	assert.Equal(t, "quiz", b.Meta())
	assert.True(t, b.IsQuiz())

	b.SetMeta("")
	assert.False(t, b.IsQuiz())
}

func TestSetQuizPreserving(t *testing.T) {
	b := New("go", "title=main quiz linenos", "")
	require.True(t, b.IsQuiz())

	b.SetQuizPreserving(false)
	assert.Equal(t, "title=main linenos", b.Meta())
	assert.False(t, b.IsQuiz())

	b.SetQuizPreserving(true)
	assert.Equal(t, "title=main linenos quiz", b.Meta())
	assert.True(t, b.IsQuiz())
}

func TestToggleQuiz(t *testing.T) {
	b := New("go", "linenos", "")

	b.ToggleQuiz(false)
	assert.Equal(t, "quiz", b.Meta())

	b.ToggleQuiz(true)
	assert.Equal(t, "", b.Meta())
	assert.False(t, b.IsQuiz())
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		meta  string
		quiz  bool
		extra []string
	}{
		{meta: "", quiz: false},
		{meta: "quiz", quiz: true},
		{meta: "QUIZ", quiz: true},
		{meta: "a,quiz b", quiz: true, extra: []string{"a", "b"}},
		{meta: "quizzes", quiz: false, extra: []string{"quizzes"}},
	}

	for _, tt := range tests {
		t.Run(tt.meta, func(t *testing.T) {
			f := ParseFlags(tt.meta)
			assert.Equal(t, tt.quiz, f.Quiz)
			assert.Equal(t, tt.extra, f.Extra)
		})
	}
}

func TestFromFence(t *testing.T) {
	tests := []struct {
		info     string
		language string
		meta     string
		quiz     bool
	}{
		{info: "", language: "", meta: ""},
		{info: "go", language: "go", meta: ""},
		{info: "python quiz", language: "python", meta: "quiz", quiz: true},
		{info: "  js   quiz  extra ", language: "js", meta: "quiz  extra", quiz: true},
	}

	for _, tt := range tests {
		t.Run(tt.info, func(t *testing.T) {
			b := FromFence(tt.info, "x")
			assert.Equal(t, tt.language, b.Language())
			assert.Equal(t, tt.meta, b.Meta())
			assert.Equal(t, tt.quiz, b.IsQuiz())
			assert.Equal(t, "x", b.Source())
		})
	}
}

func TestFromAttrs(t *testing.T) {
	b, err := FromAttrs(map[string]string{AttrLanguage: "go", AttrMeta: "quiz", AttrValue: "x := 1"})
	require.NoError(t, err)
	assert.Equal(t, "go", b.Language())
	assert.True(t, b.IsQuiz())
	assert.Equal(t, b.Attrs(), map[string]string{AttrLanguage: "go", AttrMeta: "quiz", AttrValue: "x := 1"})

	_, err = FromAttrs(map[string]string{AttrLanguage: "go"})
	assert.ErrorIs(t, err, ErrMalformedNode)
}

func TestDisplayLanguage(t *testing.T) {
	b := New("", "", "")
	assert.Equal(t, "plaintext", b.DisplayLanguage(SurfaceRender))
	assert.Equal(t, "text", b.DisplayLanguage(SurfaceEditor))

	b.SetLanguage("rust")
	assert.Equal(t, "rust", b.DisplayLanguage(SurfaceRender))
	assert.Equal(t, "rust", b.DisplayLanguage(SurfaceEditor))
}

func TestInfo(t *testing.T) {
	assert.Equal(t, "go", New("go", "", "").Info())
	assert.Equal(t, "go quiz", New("go", "quiz", "").Info())
	assert.Equal(t, "text quiz", New("", "quiz", "").Info())
	assert.Equal(t, "", New("", "", "").Info())
}

func TestCloneIsIndependent(t *testing.T) {
	b := New("go", "a quiz", "src")
	c := b.Clone()
	c.SetQuizPreserving(false)
	c.SetSource("other")

	assert.True(t, b.IsQuiz())
	assert.Equal(t, "src", b.Source())
	assert.Equal(t, []string{"a"}, b.Flags().Extra)
}

func TestHighlighterLanguage(t *testing.T) {
	tests := map[string]string{
		"":        "plaintext",
		"text":    "plaintext",
		"JS":      "javascript",
		"py":      "python",
		"golang":  "go",
		"go":      "go",
		"haskell": "haskell",
	}
	for in, expected := range tests {
		assert.Equal(t, expected, HighlighterLanguage(in), "input %q", in)
	}
}

func TestNextLanguage(t *testing.T) {
	assert.Equal(t, "go", NextLanguage(""))
	assert.Equal(t, "python", NextLanguage("golang"))
	assert.Equal(t, PickerLanguages[0], NextLanguage(PickerLanguages[len(PickerLanguages)-1]))
	assert.Equal(t, PickerLanguages[0], NextLanguage("cobol"))
}
