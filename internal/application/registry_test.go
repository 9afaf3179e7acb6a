package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"stock-scan/internal/domain/entity"
	"stock-scan/internal/infrastructure/storage"
)

func newTestRegistry() *Registry {
	return NewRegistry(func() *Session {
		return NewSession(nil, newGatedClient(), storage.NewMemoryResultStore(), nil)
	})
}

func TestRegistry_GetReturnsSameSession(t *testing.T) {
	r := newTestRegistry()

	a := r.Get(10)
	require.Same(t, a, r.Get(10))
	require.NotSame(t, a, r.Get(20))
}

func TestRegistry_SessionsAreIndependent(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Get(1).SelectImage(handleA))

	require.Equal(t, entity.PhaseImageSelected, r.Get(1).State().Phase)
	require.Equal(t, entity.PhaseIdle, r.Get(2).State().Phase)
}

func TestRegistry_DropClosesSession(t *testing.T) {
	r := newTestRegistry()
	old := r.Get(1)
	r.Drop(1)

	_, err := old.Submit(context.Background())
	require.ErrorIs(t, err, entity.ErrSessionClosed)
	require.NotSame(t, old, r.Get(1))
}

func TestRegistry_Close(t *testing.T) {
	r := newTestRegistry()
	a, b := r.Get(1), r.Get(2)
	r.Close()

	require.ErrorIs(t, a.SelectImage(handleA), entity.ErrSessionClosed)
	require.ErrorIs(t, b.SelectImage(handleA), entity.ErrSessionClosed)
}
