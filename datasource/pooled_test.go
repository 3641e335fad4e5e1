package datasource

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func openMockPooled(t *testing.T, maxSize int) (*Pooled, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(false))
	require.NoError(t, err)

	p := &Pooled{db: db, options: DefaultOptions(), maxSize: maxSize}
	return p, mock
}

func TestPooledReusesReleasedConnectionLIFO(t *testing.T) {
	p, _ := openMockPooled(t, 2)
	defer p.Close()

	c1, err := p.GetConnection(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, p.CreatedCount())

	require.NoError(t, p.ReleaseConnection(c1))

	c2, err := p.GetConnection(context.Background())
	require.NoError(t, err)
	require.Equal(t, c1.ID, c2.ID)
	require.EqualValues(t, 1, p.CreatedCount())
}

func TestPooledDiscardsBeyondMaxSize(t *testing.T) {
	p, _ := openMockPooled(t, 0)
	defer p.Close()

	c1, err := p.GetConnection(context.Background())
	require.NoError(t, err)
	require.NoError(t, p.ReleaseConnection(c1))

	c2, err := p.GetConnection(context.Background())
	require.NoError(t, err)
	require.NotEqual(t, c1.ID, c2.ID)
	require.EqualValues(t, 2, p.CreatedCount())
}

func TestPooledClearDropsFreeList(t *testing.T) {
	p, _ := openMockPooled(t, 5)
	defer p.Close()

	c1, err := p.GetConnection(context.Background())
	require.NoError(t, err)
	require.NoError(t, p.ReleaseConnection(c1))

	p.Clear()

	c2, err := p.GetConnection(context.Background())
	require.NoError(t, err)
	require.NotEqual(t, c1.ID, c2.ID)
}
