package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPut_Idempotent(t *testing.T) {
	p := New()
	h1 := p.Put("a.cpp:3:5")
	h2 := p.Put("a.cpp:3:5")
	assert.Equal(t, h1, h2)
	assert.Equal(t, 1, p.Len())
}

func TestPut_DistinctContent(t *testing.T) {
	p := New()
	h1 := p.Put("a.cpp:3:5")
	h2 := p.Put("a.cpp:3:6")
	assert.NotEqual(t, h1, h2)
	assert.Equal(t, 2, p.Len())
}

func TestGet_RoundTrip(t *testing.T) {
	p := New()
	h := p.Put("b.cpp:1:1")
	s, ok := p.Get(h)
	require.True(t, ok)
	assert.Equal(t, "b.cpp:1:1", s)
}

func TestGet_InvalidHandle(t *testing.T) {
	p := New()
	p.Put("x")
	_, ok := p.Get(0)
	assert.False(t, ok)
	_, ok = p.Get(99)
	assert.False(t, ok)
}

func TestAll_CoversEveryDistinctHandle(t *testing.T) {
	p := New()
	want := map[Handle]string{
		p.Put("one"): "one",
		p.Put("two"): "two",
	}
	p.Put("one") // duplicate, should not grow the pool

	got := p.All()
	assert.Len(t, got, len(want))
	for _, h := range got {
		s, ok := p.Get(h)
		require.True(t, ok)
		assert.Equal(t, want[h], s)
	}
}

func TestPut_PropertyLikeSequence(t *testing.T) {
	p := New()
	inputs := []string{"a", "b", "a", "c", "b", "a"}
	handles := make([]Handle, len(inputs))
	for i, s := range inputs {
		handles[i] = p.Put(s)
	}
	for i := range inputs {
		for j := range inputs {
			if inputs[i] == inputs[j] {
				assert.Equal(t, handles[i], handles[j])
			} else {
				assert.NotEqual(t, handles[i], handles[j])
			}
		}
	}
}
