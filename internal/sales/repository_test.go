package sales

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesdesk/salesdesk/internal/platform/db/dbtest"
	"github.com/salesdesk/salesdesk/internal/shared"
)

func TestRepositoryListHugeLimit(t *testing.T) {
	table := &dbtest.Table{Count: 4}
	repo := &repository{db: table}
	req := shared.ParsePageRequest(url.Values{"limit": {"500000000"}})

	assert.NotPanics(t, func() {
		rows, total, err := repo.List(context.Background(), req.Limit, req.Offset())
		require.NoError(t, err)
		assert.Empty(t, rows)
		assert.Equal(t, 4, total)
	})
	require.Len(t, table.QueryArgs(), 1)
	assert.Equal(t, []any{500000000, 0}, table.QueryArgs()[0])
}
