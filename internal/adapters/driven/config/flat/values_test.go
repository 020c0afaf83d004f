package flat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNest(t *testing.T) {
	flat := map[string]any{
		"a.b.c": 1,
		"a.b":   "shadowed",
		"a.d":   2,
		"top":   true,
	}

	nested := Nest(flat)

	assert.Equal(t, map[string]any{
		"a": map[string]any{
			"b": map[string]any{"c": 1},
			"d": 2,
		},
		"top": true,
	}, nested)
	assert.Equal(t, map[string]any{"a.b.c": 1, "a.d": 2, "top": true}, Flatten(nested))
}

func TestValues_ZeroValueUsable(t *testing.T) {
	var v Values

	_, ok := v.Get("missing")
	assert.False(t, ok)

	v.Put("remote.pull_interval", 90*time.Second)
	raw, _ := v.Get("remote.pull_interval")
	assert.Equal(t, "1m30s", raw)
	assert.Equal(t, 90*time.Second, v.GetDuration("remote.pull_interval"))
	assert.Equal(t, map[string]any{"remote": map[string]any{"pull_interval": "1m30s"}}, v.Nested())
}

func TestValues_Replace(t *testing.T) {
	var v Values
	v.Put("old", "x")

	v.Replace(map[string]any{"content.root": "/srv"})

	assert.Empty(t, v.GetString("old"))
	assert.Equal(t, "/srv", v.GetString("content.root"))
}
