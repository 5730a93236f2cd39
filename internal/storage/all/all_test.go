package all

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/storage"
)

func TestAllKindsRegistered(t *testing.T) {
	require.Equal(t, []string{"memory", "mssql", "postgres", "sqlite"}, storage.Kinds())
}

func TestUnknownKind(t *testing.T) {
	_, err := storage.New(context.Background(), storage.Config{Kind: "oracle"})
	require.ErrorContains(t, err, `unknown kind "oracle"`)
}

func TestEnsureTable_UnknownKind(t *testing.T) {
	require.Error(t, storage.EnsureTable(context.Background(), "oracle", nil, ""))
}
