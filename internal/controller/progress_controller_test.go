package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"skillpath_backend/internal/config"
	"skillpath_backend/internal/model"
	"skillpath_backend/internal/repository"
	"skillpath_backend/internal/service"
	"skillpath_backend/internal/testutil"
	"skillpath_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newProgressRouter(t *testing.T, db *gorm.DB, user *model.User) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, err := config.NewGamificationConfig("UTC", 5)
	require.NoError(t, err)

	users := repository.NewUserRepository(db)
	gamification := service.NewGamificationService(db,
		users,
		repository.NewLevelRepository(db),
		repository.NewBadgeRepository(db),
		repository.NewStreakRepository(db),
		cfg,
	)
	progress := service.NewProgressService(db,
		users,
		repository.NewRoadmapRepository(db),
		repository.NewProgressRepository(db),
		repository.NewSubmissionRepository(db),
		gamification,
		nil,
		cfg,
	)
	ctrl := NewProgressController(progress)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if user != nil {
			c.Set(util.ContextUserKey, user)
		}
	})
	r.POST("/quizzes/:id/submit", ctrl.SubmitQuiz)
	r.POST("/assignments/:id/submit", ctrl.SubmitAssignment)
	r.PATCH("/submissions/:id/grade", ctrl.GradeSubmission)
	r.POST("/modules/:id/complete", ctrl.CompleteModule)
	return r
}

func send(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func TestSubmitQuizEndpoint(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.SeedCatalog(t, db)
	user := testutil.SeedUser(t, db, "ada@example.com")
	quiz := testutil.SeedQuiz(t, db, 20, [][]string{{"a"}, {"b"}, {"c"}, {"d"}})
	r := newProgressRouter(t, db, user)

	answers := map[string][]string{}
	for i, q := range quiz.Questions {
		answers[q.ID] = q.CorrectOptionKeys
		if i == 3 {
			answers[q.ID] = []string{"a"}
		}
	}

	w := send(r, http.MethodPost, "/quizzes/"+quiz.ID+"/submit", map[string]any{"answers": answers})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body envelope[service.QuizResult]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.InDelta(t, 0.75, body.Data.Attempt.Score, 1e-9)
	assert.True(t, body.Data.Attempt.Passed)
	assert.Positive(t, body.Data.Outcome.PointsAwarded)

	assert.Equal(t, http.StatusNotFound,
		send(r, http.MethodPost, "/quizzes/"+model.GenerateUUID()+"/submit", map[string]any{"answers": answers}).Code)
	assert.Equal(t, http.StatusBadRequest,
		send(r, http.MethodPost, "/quizzes/missing/submit", map[string]any{"answers": answers}).Code)

	unknown := map[string][]string{model.GenerateUUID(): {"a"}}
	w = send(r, http.MethodPost, "/quizzes/"+quiz.ID+"/submit", map[string]any{"answers": unknown})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "malformed answer map")

	req := httptest.NewRequest(http.MethodPost, "/quizzes/"+quiz.ID+"/submit", bytes.NewBufferString("{"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProgressEndpointsRequireUser(t *testing.T) {
	db := testutil.NewTestDB(t)
	r := newProgressRouter(t, db, nil)

	assert.Equal(t, http.StatusUnauthorized, send(r, http.MethodPost, "/modules/x/complete", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, send(r, http.MethodPost, "/quizzes/x/submit", map[string]any{}).Code)
}

func TestAssignmentEndpoints(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.SeedCatalog(t, db)
	user := testutil.SeedUser(t, db, "grace@example.com")
	assignment := testutil.SeedAssignment(t, db, 40)
	r := newProgressRouter(t, db, user)

	req := httptest.NewRequest(http.MethodPost, "/assignments/"+assignment.ID+"/submit", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var submitted envelope[service.SubmissionResult]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submitted))
	subID := submitted.Data.Submission.ID
	assert.Equal(t, model.SubmissionSubmitted, submitted.Data.Submission.Status)

	assert.Equal(t, http.StatusBadRequest,
		send(r, http.MethodPatch, "/submissions/"+subID+"/grade", map[string]any{"grade": 0.5}).Code)
	assert.Equal(t, http.StatusBadRequest,
		send(r, http.MethodPatch, "/submissions/not-an-id/grade", map[string]any{"status": "passed"}).Code)

	w = send(r, http.MethodPatch, "/submissions/"+subID+"/grade", map[string]any{"status": "passed", "grade": 0.95})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var graded envelope[service.SubmissionResult]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &graded))
	assert.Equal(t, "passed", graded.Data.Submission.Status)
	// 40 - 10 credit + 4 bonus
	assert.Equal(t, 34, graded.Data.Outcome.PointsAwarded)

	assert.Equal(t, http.StatusConflict,
		send(r, http.MethodPatch, "/submissions/"+subID+"/grade", map[string]any{"status": "passed", "grade": 1.0}).Code)
}
