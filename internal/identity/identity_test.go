package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/supercuts/supercuts/internal/models"
)

func fp(v float64) *float64 { return &v }

func combo() models.Combination {
	return models.Combination{
		{Field: "met", Direction: ">", Pivot: fp(100)},
		{Field: "n_jets", Direction: ">=", Pivot: fp(4), Fixed: true},
		{Field: "ht", Direction: "<", Pivot: fp(1200.5)},
	}
}

func TestHash_Format(t *testing.T) {
	h := Hash(combo())
	assert.Len(t, h, 64) // SHA256 hex is 64 chars
	assert.Regexp(t, "^[0-9a-f]{64}$", h)
}

func TestHash_Deterministic(t *testing.T) {
	assert.Equal(t, Hash(combo()), Hash(combo()))
	assert.Equal(t, Hash(combo()), Hash(combo().Clone()))
}

// Pinned: identities must stay stable across runs and releases.
func TestHash_Stable(t *testing.T) {
	assert.Equal(t,
		"709751259c7d90ffd536b00707bd94ac2e38373b6b7b055e35701f7ba3ca39c6",
		Hash(models.Combination{{Field: "met", Direction: ">", Pivot: fp(100)}}),
	)
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		Hash(nil),
	)
}

func TestHash_PermutationInvariant(t *testing.T) {
	c := combo()
	want := Hash(c)

	perms := []models.Combination{
		{c[0], c[2], c[1]},
		{c[1], c[0], c[2]},
		{c[1], c[2], c[0]},
		{c[2], c[0], c[1]},
		{c[2], c[1], c[0]},
	}
	for _, p := range perms {
		assert.Equal(t, want, Hash(p))
	}
}

func TestHash_DoesNotReorderInput(t *testing.T) {
	c := combo()
	Hash(c)
	assert.Equal(t, "met", c[0].Field)
	assert.Equal(t, "ht", c[2].Field)
}

func TestHash_SensitiveToContent(t *testing.T) {
	base := Hash(combo())

	mutations := map[string]func(models.Combination){
		"pivot":     func(c models.Combination) { c[0].Pivot = fp(101) },
		"direction": func(c models.Combination) { c[0].Direction = ">=" },
		"field":     func(c models.Combination) { c[0].Field = "met_sig" },
		"fixed":     func(c models.Combination) { c[0].Fixed = true },
		"unset":     func(c models.Combination) { c[0].Pivot = nil },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			c := combo()
			mutate(c)
			assert.NotEqual(t, base, Hash(c))
		})
	}
}

func TestHash_FieldBoundaries(t *testing.T) {
	// "ab"+"c" must not collide with "a"+"bc"
	a := models.Combination{{Field: "ab", Direction: "<", Pivot: fp(1)}, {Field: "c"}}
	b := models.Combination{{Field: "a"}, {Field: "bc", Direction: "<", Pivot: fp(1)}}
	assert.NotEqual(t, Hash(a), Hash(b))
}
