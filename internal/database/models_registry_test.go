package database

import (
	"testing"

	modelspkg "talenta/internal/models"

	"github.com/stretchr/testify/require"
)

func TestPersistentModels_IncludesEngagementTables(t *testing.T) {
	var like, follow bool
	for _, model := range PersistentModels() {
		switch model.(type) {
		case *modelspkg.Like:
			like = true
		case *modelspkg.Follow:
			follow = true
		}
	}
	require.True(t, like, "PersistentModels should include Like")
	require.True(t, follow, "PersistentModels should include Follow")
}
