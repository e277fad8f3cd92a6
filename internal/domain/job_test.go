package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemplate_WireValuesAndAliases(t *testing.T) {
	cases := map[string]TemplateKind{
		"modern":     TemplatePrimary,
		"primary":    TemplatePrimary,
		" Classic ":  TemplateSecondary,
		"secondary":  TemplateSecondary,
		"hybrid":     TemplateTwoColumn,
		"TWO-COLUMN": TemplateTwoColumn,
	}
	for in, want := range cases {
		got, err := ParseTemplate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseTemplate_Unknown(t *testing.T) {
	_, err := ParseTemplate("fancy")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTemplate)
	assert.Equal(t, KindInvalidTemplate, KindOf(err))
	assert.Contains(t, err.Error(), `"fancy"`)
}

func TestTemplateKind_ZeroMargin(t *testing.T) {
	assert.True(t, TemplateTwoColumn.ZeroMargin())
	assert.False(t, TemplatePrimary.ZeroMargin())
	assert.False(t, TemplateSecondary.ZeroMargin())
}

func TestParseViewMode(t *testing.T) {
	m, err := ParseViewMode("", ModeFinal)
	require.NoError(t, err)
	assert.Equal(t, ModeFinal, m)

	m, err = ParseViewMode("Draft", ModeFinal)
	require.NoError(t, err)
	assert.Equal(t, ModeDraft, m)

	_, err = ParseViewMode("sketch", ModeFinal)
	assert.Error(t, err)
}

func TestPipelineError_IsAndUnwrap(t *testing.T) {
	cause := context.DeadlineExceeded
	err := fmt.Errorf("export: %w", &PipelineError{Kind: KindReadinessTimeout, State: "AwaitingReadiness", Cause: cause})

	assert.ErrorIs(t, err, ErrReadinessTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, errors.Is(err, ErrLaunchFailure))
	assert.Equal(t, KindReadinessTimeout, KindOf(err))
	assert.Contains(t, err.Error(), "AwaitingReadiness")
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
}

func TestNewRenderJob(t *testing.T) {
	a := NewRenderJob(TemplatePrimary, ModeFinal)
	b := NewRenderJob(TemplatePrimary, ModeFinal)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, InjectContent, a.Strategy)
}
