package repositories

import (
	"context"
	"sync"
	"testing"

	"postsapi/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testCollection runs the behaviour every Collection backend must share.
// newCollection must return an empty collection for the given schema.
func testCollection(t *testing.T, newCollection func(t *testing.T, schema *models.Schema) Collection) {
	ctx := context.Background()

	t.Run("create and find by id", func(t *testing.T) {
		posts := newCollection(t, models.PostSchema)

		created, err := posts.Create(ctx, models.Record{"title": "My First Post", "content": "Hello", "sender": "user123"})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID())
		assert.NotEmpty(t, created[models.CreatedAtField])

		found, err := posts.FindByID(ctx, created.ID())
		require.NoError(t, err)
		assert.Equal(t, created, found)
	})

	t.Run("create rejects invalid record", func(t *testing.T) {
		posts := newCollection(t, models.PostSchema)

		_, err := posts.Create(ctx, models.Record{"content": "Hello", "sender": "user123"})
		var verr *models.ValidationError
		assert.ErrorAs(t, err, &verr)

		all, err := posts.Find(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("find filters and keeps insertion order", func(t *testing.T) {
		comments := newCollection(t, models.CommentSchema)

		var ids []string
		for _, sender := range []string{"user123", "other", "user123"} {
			rec, err := comments.Create(ctx, models.Record{"content": "c", "postId": "p1", "sender": sender})
			require.NoError(t, err)
			ids = append(ids, rec.ID())
		}

		all, err := comments.Find(ctx, models.Filter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		for i, rec := range all {
			assert.Equal(t, ids[i], rec.ID())
		}

		mine, err := comments.Find(ctx, models.Filter{"sender": {"user123"}})
		require.NoError(t, err)
		require.Len(t, mine, 2)
		assert.Equal(t, ids[0], mine[0].ID())
		assert.Equal(t, ids[2], mine[1].ID())

		none, err := comments.Find(ctx, models.Filter{"sender": {"nobody"}})
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)

		for _, key := range []string{"$comment", "$where", "sender.length"} {
			matched, err := comments.Find(ctx, models.Filter{key: {"x"}})
			require.NoError(t, err, key)
			assert.Empty(t, matched, key)
		}
	})

	t.Run("update returns record after update", func(t *testing.T) {
		comments := newCollection(t, models.CommentSchema)

		created, err := comments.Create(ctx, models.Record{"content": "old", "postId": "p1", "sender": "s"})
		require.NoError(t, err)

		updated, err := comments.FindByIDAndUpdate(ctx, created.ID(), models.Record{"content": "X"})
		require.NoError(t, err)
		assert.Equal(t, "X", updated["content"])
		assert.Equal(t, "p1", updated["postId"])
		assert.Equal(t, created.ID(), updated.ID())

		found, err := comments.FindByID(ctx, created.ID())
		require.NoError(t, err)
		assert.Equal(t, updated, found)
	})

	t.Run("update validates", func(t *testing.T) {
		comments := newCollection(t, models.CommentSchema)

		created, err := comments.Create(ctx, models.Record{"content": "old", "postId": "p1", "sender": "s"})
		require.NoError(t, err)

		_, err = comments.FindByIDAndUpdate(ctx, created.ID(), models.Record{"sender": ""})
		assert.Error(t, err)

		found, err := comments.FindByID(ctx, created.ID())
		require.NoError(t, err)
		assert.Equal(t, "s", found["sender"])
	})

	t.Run("delete returns removed record", func(t *testing.T) {
		comments := newCollection(t, models.CommentSchema)

		created, err := comments.Create(ctx, models.Record{"content": "bye", "postId": "p1", "sender": "s"})
		require.NoError(t, err)

		deleted, err := comments.FindByIDAndDelete(ctx, created.ID())
		require.NoError(t, err)
		assert.Equal(t, created.ID(), deleted.ID())

		_, err = comments.FindByID(ctx, created.ID())
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = comments.FindByIDAndDelete(ctx, created.ID())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown id", func(t *testing.T) {
		posts := newCollection(t, models.PostSchema)

		_, err := posts.FindByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = posts.FindByIDAndUpdate(ctx, "missing", models.Record{"title": "x"})
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = posts.FindByIDAndDelete(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)

		all, err := posts.Find(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("resources do not share records", func(t *testing.T) {
		posts := newCollection(t, models.PostSchema)
		comments := newCollection(t, models.CommentSchema)

		_, err := posts.Create(ctx, models.Record{"title": "t", "content": "c", "sender": "s"})
		require.NoError(t, err)

		all, err := comments.Find(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("concurrent creates", func(t *testing.T) {
		comments := newCollection(t, models.CommentSchema)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := comments.Create(ctx, models.Record{"content": "c", "postId": "p1", "sender": "s"})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		all, err := comments.Find(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, all, 20)
	})
}
