package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "deep-red", Slugify("Deep Red"))
	assert.Equal(t, "deep-red", Slugify("  Deep   Red  "))
	assert.Equal(t, "100-cotton", Slugify("100% Cotton"))
	assert.Equal(t, "cafe-creme", Slugify("cafe.creme"))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "red", Normalize(" Red "))
	assert.Equal(t, Normalize("RED"), Normalize("red"))
}

func TestMakeUnique(t *testing.T) {
	taken := map[string]bool{}
	assert.Equal(t, "red", MakeUnique("red", taken))

	taken["red"] = true
	assert.Equal(t, "red-2", MakeUnique("red", taken))

	taken["red-2"] = true
	taken["red-3"] = true
	assert.Equal(t, "red-4", MakeUnique("red", taken))
}

func TestDeterministicSlugs(t *testing.T) {
	assert.Equal(t, "owner-1_attr-1", Deterministic("owner-1", "attr-1"))
	assert.Equal(t, "attr-1_true", ForBoolean("attr-1", true))
	assert.Equal(t, "attr-1_false", ForBoolean("attr-1", false))
	assert.Equal(t, "owner-1_target-1", ForReference("owner-1", "target-1"))
}

func TestFromFileURL(t *testing.T) {
	assert.Equal(t, "spec-sheet", FromFileURL("https://cdn.example.com/docs/Spec%20Sheet.pdf"))
	assert.Equal(t, "manual", FromFileURL("/files/manual.pdf"))
	assert.Equal(t, "photo", FromFileURL("photo.jpg"))
}
