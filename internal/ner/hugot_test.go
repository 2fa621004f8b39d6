package ner

import (
	"testing"

	"github.com/knights-analytics/hugot/pipelines"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromHugot_PreservesOrderAndFields(t *testing.T) {
	in := []pipelines.Entity{
		{Entity: "Disease", Word: "leukemia", Score: 0.5},
		{Entity: "Gene", Word: "BCR", Score: 0.25},
	}
	got := fromHugot(in)
	require.Len(t, got, 2)
	assert.Equal(t, Entity{Word: "leukemia", Label: "Disease", Score: 0.5, LabelSource: LabelFromEntityGroup}, got[0])
	assert.Equal(t, Entity{Word: "BCR", Label: "Gene", Score: 0.25, LabelSource: LabelFromEntityGroup}, got[1])
}

func TestNewHugotRecognizer_RequiresModelPath(t *testing.T) {
	_, err := NewHugotRecognizer("", "", nil)
	assert.Error(t, err)
}
