package app

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLazy(t *testing.T) {
	t.Run("Success_BuildsOnce", func(t *testing.T) {
		var (
			l     lazy[int]
			calls int
			wg    sync.WaitGroup
		)
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := l.get(func() (int, error) {
					calls++
					return 42, nil
				})
				assert.NoError(t, err)
				assert.Equal(t, 42, v)
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, calls)
	})

	t.Run("Error_FailureIsMemoized", func(t *testing.T) {
		var l lazy[string]
		boom := errors.New("boom")

		_, err := l.get(func() (string, error) { return "", boom })
		assert.ErrorIs(t, err, boom)

		_, err = l.get(func() (string, error) { return "late", nil })
		assert.ErrorIs(t, err, boom)

		_, ok := l.peek()
		assert.False(t, ok)
	})

	t.Run("Success_SetBeforeBuild", func(t *testing.T) {
		var l lazy[string]
		_, ok := l.peek()
		assert.False(t, ok)

		l.set("preset")
		assert.Equal(t, "preset", l.ensure(func() string { return "built" }))

		v, ok := l.peek()
		assert.True(t, ok)
		assert.Equal(t, "preset", v)
	})
}
