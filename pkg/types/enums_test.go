package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStatus(t *testing.T) {
	assert.True(t, RunStatusPending.Valid())
	assert.False(t, RunStatus("destroyed").Valid())

	assert.False(t, RunStatusPending.Terminal())
	assert.False(t, RunStatusRunning.Terminal())
	assert.True(t, RunStatusCompleted.Terminal())
	assert.True(t, RunStatusFailed.Terminal())

	st, err := FromStringRunStatus("running")
	require.NoError(t, err)
	assert.Equal(t, RunStatusRunning, st)

	_, err = FromStringRunStatus("nope")
	assert.Error(t, err)
}

func TestStoreBackend(t *testing.T) {
	assert.True(t, StoreBackendFilesystem.Valid())
	assert.True(t, StoreBackendMinIO.Valid())
	assert.False(t, StoreBackend("tape").Valid())

	b, err := FromStringStoreBackend("minio")
	require.NoError(t, err)
	assert.Equal(t, StoreBackendMinIO, b)
}

func TestArtifactKind(t *testing.T) {
	for _, k := range []ArtifactKind{ArtifactKindCorpus, ArtifactKindCheckpoint, ArtifactKindDataset} {
		assert.True(t, k.Valid())
		assert.NotEmpty(t, k.String())
	}
	assert.False(t, ArtifactKind("blob").Valid())
}

func TestRunStatusSQL(t *testing.T) {
	v, err := RunStatusCompleted.Value()
	require.NoError(t, err)
	assert.Equal(t, "completed", v)

	var st RunStatus
	require.NoError(t, st.Scan("failed"))
	assert.Equal(t, RunStatusFailed, st)

	assert.Error(t, st.Scan(42))
}
