package database_test

import (
	"errors"
	"testing"

	"github.com/albedo-support/api/internal/database"
	"github.com/albedo-support/api/internal/database/databasetest"
	"github.com/albedo-support/api/internal/models"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedIsRepeatable(t *testing.T) {
	db := databasetest.Open(t)

	first, err := database.Seed(db)
	require.NoError(t, err)
	assert.Equal(t, 4, first.Categories)
	assert.Equal(t, 3, first.Articles)

	second, err := database.Seed(db)
	require.NoError(t, err)
	assert.Zero(t, second.Categories)
	assert.Zero(t, second.Articles)

	var article models.ArticleModel
	require.NoError(t, db.Where("slug = ?", "docs/faq").First(&article).Error)
	require.Len(t, article.Content, 1)
	assert.Equal(t, "Explore answers to common usage and setup questions.", article.Content[0].Description)
}

func TestIsDuplicateKey(t *testing.T) {
	db := databasetest.Open(t)

	require.NoError(t, db.Create(&models.CategoryModel{Name: "FAQ", Color: "#fff"}).Error)
	err := db.Create(&models.CategoryModel{Name: "FAQ", Color: "#000"}).Error
	require.Error(t, err)
	assert.True(t, database.IsDuplicateKey(err))

	assert.True(t, database.IsDuplicateKey(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry"}))
	assert.False(t, database.IsDuplicateKey(&mysqldriver.MySQLError{Number: 1452}))
	assert.False(t, database.IsDuplicateKey(errors.New("boom")))
	assert.False(t, database.IsDuplicateKey(nil))
}
