package overlay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff_Sequence(t *testing.T) {
	b := NewBackoff(nil)
	outcomes := []bool{true, false, false, true, false}
	var got []int
	for _, changed := range outcomes {
		got = append(got, b.Observe(changed))
	}
	assert.Equal(t, []int{0, 0, 1, 0, 0}, got)
}

func TestBackoff_CapsAtLastEntry(t *testing.T) {
	b := NewBackoff(nil)
	for i := 0; i < 100; i++ {
		b.Observe(false)
	}
	assert.Equal(t, len(DefaultSchedule)-1, b.Index())
	assert.Equal(t, 900*time.Second, b.Base())

	b.Observe(true)
	assert.Equal(t, 0, b.Index())
	assert.Equal(t, 0, b.Streak())
	assert.Equal(t, 5*time.Second, b.Base())
}

func TestBackoff_StepsEveryTwoMisses(t *testing.T) {
	b := NewBackoff(nil)
	want := []time.Duration{
		5 * time.Second, 10 * time.Second, 10 * time.Second, 20 * time.Second, 20 * time.Second, 40 * time.Second,
	}
	for i, w := range want {
		b.Observe(false)
		assert.Equal(t, w, b.Base(), "after miss %d", i+1)
	}
}

func TestBackoff_CopiesSchedule(t *testing.T) {
	s := []time.Duration{time.Second, 2 * time.Second}
	b := NewBackoff(s)
	s[0] = time.Hour
	assert.Equal(t, time.Second, b.Base())
}
