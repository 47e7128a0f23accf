package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProfile(t *testing.T) {
	t.Run("starting a span ends the previous one", func(t *testing.T) {
		profile, endProfile := NewProfile()
		first, _ := profile.StartNewSpan("load")
		require.Nil(t, first.ElapsedMs)

		second, endSecond := profile.StartNewSpan("attribute")
		require.NotNil(t, first.ElapsedMs)
		require.Nil(t, second.ElapsedMs)

		endSecond()
		endProfile()
		require.NotNil(t, second.ElapsedMs)
		require.NotNil(t, profile.TotalMs)
		require.Len(t, profile.Spans, 2)
	})

	t.Run("failed span keeps the error", func(t *testing.T) {
		span, _ := NewSpan("decompose")
		span.Fail(errors.New("not enough data"))
		require.Equal(t, "not enough data", span.Err)
		require.NotNil(t, span.ElapsedMs)
	})

	t.Run("context round trip", func(t *testing.T) {
		profile, _ := NewProfile()
		ctx := NewProfileContext(context.Background(), profile)
		require.Same(t, profile, ProfileFromContext(ctx))
		require.NotNil(t, ProfileFromContext(context.Background()))
	})
}
