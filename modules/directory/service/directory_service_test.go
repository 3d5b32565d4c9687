package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quorum-booking/core/config"
)

type fakeCache struct {
	names  map[string]string
	err    error
	seeded map[string]string
}

func (f *fakeCache) GetDisplayName(_ context.Context, id string) (string, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	name, ok := f.names[id]
	return name, ok, nil
}

func (f *fakeCache) SetDisplayNames(_ context.Context, names map[string]string) error {
	f.seeded = names
	return f.err
}

func (f *fakeCache) Ping(context.Context) error { return nil }
func (f *fakeCache) Close() error               { return nil }

func TestResolveDisplayName(t *testing.T) {
	ctx := context.Background()

	t.Run("built-in directory", func(t *testing.T) {
		s := NewDirectoryService(nil, nil)
		assert.Equal(t, "Soham Joshi", s.ResolveDisplayName(ctx, "user@example.com"))
		assert.Equal(t, "Robert Steel", s.ResolveDisplayName(ctx, "robert@example.com"))
	})

	t.Run("falls back to local part", func(t *testing.T) {
		s := NewDirectoryService(nil, nil)
		assert.Equal(t, "newcomer", s.ResolveDisplayName(ctx, "newcomer@example.com"))
		assert.Equal(t, "plain-id", s.ResolveDisplayName(ctx, "plain-id"))
	})

	t.Run("configured users replace the built-in list", func(t *testing.T) {
		s := NewDirectoryService([]config.UserConfig{{ID: "ana@corp.io", Name: "Ana Lima"}}, nil)
		assert.Equal(t, "Ana Lima", s.ResolveDisplayName(ctx, "ana@corp.io"))
		assert.Equal(t, "user", s.ResolveDisplayName(ctx, "user@example.com"))
	})

	t.Run("cache wins over static entries", func(t *testing.T) {
		c := &fakeCache{names: map[string]string{"user@example.com": "S. Joshi"}}
		s := NewDirectoryService(nil, c)
		assert.Equal(t, "S. Joshi", s.ResolveDisplayName(ctx, "user@example.com"))
		assert.Equal(t, "John Smith", s.ResolveDisplayName(ctx, "john@example.com"))
	})

	t.Run("cache failure degrades to static lookup", func(t *testing.T) {
		s := NewDirectoryService(nil, &fakeCache{err: fmt.Errorf("connection refused")})
		assert.Equal(t, "John Smith", s.ResolveDisplayName(ctx, "john@example.com"))
	})
}

func TestSeed(t *testing.T) {
	c := &fakeCache{}
	s := NewDirectoryService([]config.UserConfig{{ID: "a@x.io", Name: "A"}, {ID: " ", Name: "blank"}}, c)
	require.NoError(t, s.Seed(context.Background()))
	assert.Equal(t, map[string]string{"a@x.io": "A"}, c.seeded)

	assert.NoError(t, NewDirectoryService(nil, nil).Seed(context.Background()))
}
