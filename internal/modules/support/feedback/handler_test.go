package feedback_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/albedo-support/api/internal/database/databasetest"
	"github.com/albedo-support/api/internal/middleware/authtest"
	"github.com/albedo-support/api/internal/models"
	"github.com/albedo-support/api/internal/modules/support/feedback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*authtest.Kit, string) {
	kit := authtest.New(t, databasetest.Open(t))
	feedback.NewHandler(feedback.NewService(kit.DB)).RegisterRoutes(kit.API, kit.Auth)
	return kit, kit.Bearer(t, kit.CreateUser(t, models.RoleAdmin))
}

func TestRatingValidation(t *testing.T) {
	kit, _ := setup(t)

	for _, body := range []string{
		`{"email":"a@example.com","message":"m","rating":0}`,
		`{"email":"a@example.com","message":"m","rating":6}`,
		`{"email":"a@example.com","message":"m","rating":-1}`,
	} {
		w := kit.Do(http.MethodPost, "/api/feedback", "", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}

	w := kit.Do(http.MethodPost, "/api/feedback", "", `{"email":"a@example.com","message":"m"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var fb models.RatingFeedbackModel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fb))
	assert.Nil(t, fb.Rating)

	w = kit.Do(http.MethodPost, "/api/feedback", "", `{"email":"a@example.com","message":"m","rating":5}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	var count int64
	kit.DB.Model(&models.RatingFeedbackModel{}).Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestStats(t *testing.T) {
	kit, admin := setup(t)

	w := kit.Do(http.MethodGet, "/api/feedback/stats", admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"total_feedback":0,
		"average_rating":null,
		"rating_count":0,
		"rating_distribution":{"1":0,"2":0,"3":0,"4":0,"5":0},
		"feedback_without_rating":0
	}`, w.Body.String())

	for _, body := range []string{
		`{"email":"a@example.com","message":"m","rating":5}`,
		`{"email":"a@example.com","message":"m","rating":4}`,
		`{"email":"a@example.com","message":"m","rating":4}`,
		`{"email":"a@example.com","message":"m"}`,
	} {
		require.Equal(t, http.StatusCreated, kit.Do(http.MethodPost, "/api/feedback", "", body).Code)
	}

	w = kit.Do(http.MethodGet, "/api/feedback/stats", admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"total_feedback":4,
		"average_rating":4.3,
		"rating_count":3,
		"rating_distribution":{"1":0,"2":0,"3":0,"4":2,"5":1},
		"feedback_without_rating":1
	}`, w.Body.String())
}

func TestListAndDeleteRequireAdmin(t *testing.T) {
	kit, admin := setup(t)
	w := kit.Do(http.MethodPost, "/api/feedback", "", `{"email":"a@example.com","message":"m","rating":3}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var fb models.RatingFeedbackModel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fb))

	assert.Equal(t, http.StatusUnauthorized, kit.Do(http.MethodGet, "/api/feedback", "", "").Code)

	w = kit.Do(http.MethodGet, "/api/feedback", admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.RatingFeedbackModel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	assert.Equal(t, http.StatusNoContent, kit.Do(http.MethodDelete, "/api/feedback/ratings/"+fb.ID, admin, "").Code)
	assert.Equal(t, http.StatusNotFound, kit.Do(http.MethodDelete, "/api/feedback/ratings/"+fb.ID, admin, "").Code)
}
