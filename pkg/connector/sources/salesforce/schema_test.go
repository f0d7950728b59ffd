package salesforce

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mykobyhub/kibana-connectors/pkg/testutil"
)

func TestIsQueryable(t *testing.T) {
	fake := newFakeSalesforce(t)
	fake.queryable = []string{"FooField"}
	run := NewRunContext(newTestClient(t, fake))
	ctx := testutil.TestContext(t)

	ok, err := run.IsQueryable(ctx, "FooField")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = run.IsQueryable(ctx, "ArghField")
	require.NoError(t, err)
	assert.False(t, ok)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, 1, fake.describeHits, "the global describe runs once per run")
}

func TestSelectQueryableFields(t *testing.T) {
	fake := newFakeSalesforce(t)
	fake.fields = []string{"FooField", "BarField", "ArghField"}
	run := NewRunContext(newTestClient(t, fake))
	ctx := testutil.TestContext(t)

	fields, err := run.SelectQueryableFields(ctx, "FooObject", []string{"FooField", "BarField", "NarghField"})
	require.NoError(t, err)
	assert.Equal(t, []string{"FooField", "BarField"}, fields)

	fields, err = run.SelectQueryableFields(ctx, "FooObject", []string{"ArghField"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ArghField"}, fields)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, 1, fake.describeHits)
}

func TestSObjectsCacheByType(t *testing.T) {
	t.Run("builds each table once", func(t *testing.T) {
		fake := newFakeSalesforce(t)
		run := NewRunContext(newTestClient(t, fake))
		ctx := testutil.TestContext(t)

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := run.SObjectsCacheByType(ctx, "User")
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		users, err := run.SObjectsCacheByType(ctx, "User")
		require.NoError(t, err)
		assert.Equal(t, map[string]Reference{
			"user_id": {ID: NewText("user_id"), Name: NewText("Frodo"), Email: NewText("frodo@tlotr.com")},
		}, users)

		accounts, err := run.SObjectsCacheByType(ctx, "Account")
		require.NoError(t, err)
		require.Contains(t, accounts, "account_id")
		assert.Equal(t, "TLOTR", accounts["account_id"].Name.Value)

		queries := fake.recordedQueries()
		require.Len(t, queries, 2)
		assert.Equal(t, "SELECT Id,\nName,\nEmail\nFROM User", queries[0])
		assert.Equal(t, "SELECT Id,\nName\nFROM Account", queries[1])
	})

	t.Run("not queryable yields an empty table", func(t *testing.T) {
		fake := newFakeSalesforce(t)
		fake.queryable = []string{"Account"}
		run := NewRunContext(newTestClient(t, fake))

		users, err := run.SObjectsCacheByType(testutil.TestContext(t), "User")
		require.NoError(t, err)
		assert.Empty(t, users)

		_, queries, _ := fake.counts()
		assert.Zero(t, queries)
	})

	t.Run("lookup", func(t *testing.T) {
		fake := newFakeSalesforce(t)
		run := NewRunContext(newTestClient(t, fake))
		ctx := testutil.TestContext(t)

		ref, err := run.lookup(ctx, "User", NewText("user_id"))
		require.NoError(t, err)
		require.NotNil(t, ref)
		assert.Equal(t, "Frodo", ref.Name.Value)

		ref, err = run.lookup(ctx, "User", NewText("someone_else"))
		require.NoError(t, err)
		assert.Nil(t, ref)

		ref, err = run.lookup(ctx, "User", Text{})
		require.NoError(t, err)
		assert.Nil(t, ref)
	})
}
