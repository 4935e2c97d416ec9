package category_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/albedo-support/api/internal/database/databasetest"
	"github.com/albedo-support/api/internal/middleware/authtest"
	"github.com/albedo-support/api/internal/models"
	"github.com/albedo-support/api/internal/modules/content/category"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setup(t *testing.T) (*authtest.Kit, string) {
	kit := authtest.New(t, databasetest.Open(t))
	category.NewHandler(category.NewService(kit.DB)).RegisterRoutes(kit.API, kit.Auth)
	admin := kit.CreateUser(t, models.RoleAdmin)
	return kit, kit.Bearer(t, admin)
}

func TestCreateCategoryDefaultsColor(t *testing.T) {
	kit, admin := setup(t)

	w := kit.Do(http.MethodPost, "/api/categories", admin, `{"name":"Billing"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var got category.CategoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Billing", got.Name)
	assert.Equal(t, models.DefaultCategoryColor, got.Color)
	assert.NotEmpty(t, got.ID)
}

func TestCreateCategoryDuplicateNameAddsNoRow(t *testing.T) {
	kit, admin := setup(t)

	require.Equal(t, http.StatusCreated, kit.Do(http.MethodPost, "/api/categories", admin, `{"name":"Billing"}`).Code)
	w := kit.Do(http.MethodPost, "/api/categories", admin, `{"name":"Billing"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Category with this name already exists")

	var count int64
	kit.DB.Model(&models.CategoryModel{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestCreateCategoryRequiresAdmin(t *testing.T) {
	kit, _ := setup(t)
	user := kit.CreateUser(t, models.RoleUser)

	assert.Equal(t, http.StatusUnauthorized, kit.Do(http.MethodPost, "/api/categories", "", `{"name":"x"}`).Code)
	assert.Equal(t, http.StatusForbidden, kit.Do(http.MethodPost, "/api/categories", kit.Bearer(t, user), `{"name":"x"}`).Code)
}

func TestListIncludesArticleCount(t *testing.T) {
	kit, _ := setup(t)
	cat := models.CategoryModel{Name: "Guides", Color: "#000000"}
	require.NoError(t, kit.DB.Create(&cat).Error)
	require.NoError(t, kit.DB.Create(&models.ArticleModel{Title: "a", Slug: "a", CategoryID: cat.ID}).Error)
	require.NoError(t, kit.DB.Create(&models.ArticleModel{Title: "b", Slug: "b", CategoryID: cat.ID}).Error)

	w := kit.Do(http.MethodGet, "/api/categories", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got []category.CategoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.EqualValues(t, 2, got[0].ArticleCount)
}

func TestDeleteCategoryGuard(t *testing.T) {
	kit, admin := setup(t)
	used := models.CategoryModel{Name: "Used", Color: "#000000"}
	empty := models.CategoryModel{Name: "Empty", Color: "#000000"}
	require.NoError(t, kit.DB.Create(&used).Error)
	require.NoError(t, kit.DB.Create(&empty).Error)
	require.NoError(t, kit.DB.Create(&models.ArticleModel{Title: "a", Slug: "a", CategoryID: used.ID}).Error)

	w := kit.Do(http.MethodDelete, "/api/categories/"+used.ID, admin, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Cannot delete category with 1 article(s)")

	w = kit.Do(http.MethodDelete, "/api/categories/"+empty.ID, admin, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = kit.Do(http.MethodDelete, "/api/categories/"+empty.ID, admin, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateCategoryIsPartial(t *testing.T) {
	kit, admin := setup(t)
	cat := models.CategoryModel{Name: "Old", Description: "keep me", Color: "#111111"}
	other := models.CategoryModel{Name: "Other", Color: "#111111"}
	require.NoError(t, kit.DB.Create(&cat).Error)
	require.NoError(t, kit.DB.Create(&other).Error)

	w := kit.Do(http.MethodPut, "/api/categories/"+cat.ID, admin, `{"color":"#222222"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got category.CategoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Old", got.Name)
	assert.Equal(t, "keep me", got.Description)
	assert.Equal(t, "#222222", got.Color)

	w = kit.Do(http.MethodPut, "/api/categories/"+cat.ID, admin, `{"name":"Other"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetCategoryNotFound(t *testing.T) {
	kit, _ := setup(t)
	w := kit.Do(http.MethodGet, "/api/categories/missing", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Category not found")
}

func TestListDatabaseFailureIs500(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	mock.ExpectQuery("SELECT \\* FROM `categories`").WillReturnError(errors.New("connection reset"))

	kit := authtest.New(t, db)
	category.NewHandler(category.NewService(db)).RegisterRoutes(kit.API, kit.Auth)

	w := kit.Do(http.MethodGet, "/api/categories", "", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}
