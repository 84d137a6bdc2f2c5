package seed

import (
	"testing"

	"haven/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Post{}, &models.Comment{}, &models.Subscriber{}))
	return db
}

func TestSeedPopulatesDemoContent(t *testing.T) {
	t.Parallel()
	db := setupSeedDB(t)

	opts := Options{NumPosts: 8, MaxCommentsPer: 4, NumSubscribers: 10, IncludeDrafts: true}
	require.NoError(t, Seed(db, opts))

	var postCount, draftCount, subCount int64
	require.NoError(t, db.Model(&models.Post{}).Count(&postCount).Error)
	require.NoError(t, db.Model(&models.Post{}).Where("status = ?", models.PostStatusDraft).Count(&draftCount).Error)
	require.NoError(t, db.Model(&models.Subscriber{}).Count(&subCount).Error)

	assert.Equal(t, int64(8), postCount)
	assert.Equal(t, int64(2), draftCount)
	assert.Equal(t, int64(10), subCount)

	// Every published post carries the derived fields a real save would have.
	var posts []models.Post
	require.NoError(t, db.Where("status = ?", models.PostStatusPublished).Find(&posts).Error)
	for _, p := range posts {
		assert.NotEmpty(t, p.Slug)
		assert.NotEmpty(t, p.Excerpt)
		assert.GreaterOrEqual(t, p.ReadTime, 1)
		assert.NotNil(t, p.PublishedAt)
	}

	// Comments only hang off published posts.
	var orphaned int64
	require.NoError(t, db.Model(&models.Comment{}).
		Joins("JOIN posts ON posts.id = comments.post_id").
		Where("posts.status != ?", models.PostStatusPublished).
		Count(&orphaned).Error)
	assert.Zero(t, orphaned)
}

func TestSeedCleanRemovesPriorContent(t *testing.T) {
	t.Parallel()
	db := setupSeedDB(t)

	require.NoError(t, db.Create(&models.Subscriber{Email: "old@example.com"}).Error)
	require.NoError(t, Seed(db, Options{NumPosts: 1, NumSubscribers: 1, ShouldClean: true}))

	var count int64
	require.NoError(t, db.Model(&models.Subscriber{}).Where("email = ?", "old@example.com").Count(&count).Error)
	assert.Zero(t, count)
}
