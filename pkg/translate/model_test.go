package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapModel_KnownAliasesResolve(t *testing.T) {
	assert.Equal(t, "gemini-1.5-pro-latest", MapModel("gpt-4o"))
	assert.Equal(t, "gemini-1.5-flash-latest", MapModel("gpt-4o-mini"))
	assert.Equal(t, "gemini-1.5-pro-latest", MapModel("gpt-4-turbo"))
}

func TestMapModel_UnmappedNamePassesThrough(t *testing.T) {
	assert.Equal(t, "gemini-1.5-pro-latest", MapModel("gemini-1.5-pro-latest"))
	assert.Equal(t, "some-future-model", MapModel("some-future-model"))
}
