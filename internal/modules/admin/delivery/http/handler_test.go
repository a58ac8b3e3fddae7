package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dev-lov-oper/Clarix-AI/internal/entity"
	handler "github.com/dev-lov-oper/Clarix-AI/internal/modules/admin/delivery/http"
	"github.com/dev-lov-oper/Clarix-AI/internal/modules/admin/service"
	userRepo "github.com/dev-lov-oper/Clarix-AI/internal/modules/user/repository"
	"github.com/dev-lov-oper/Clarix-AI/internal/scheduler"
	"github.com/dev-lov-oper/Clarix-AI/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAdminHandler(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	mr, client := testutil.NewRedis(t)
	users := userRepo.NewUserRepository(db)

	jobs := scheduler.New(client, time.Minute, zap.NewNop())
	runs := 0
	require.NoError(t, jobs.Register(scheduler.Job{
		Name: "leaderboard",
		Run:  func(ctx context.Context) error { runs++; return nil },
	}))

	h := handler.NewAdminHandler(service.NewAdminService(jobs, users, zap.NewNop()))
	r := gin.New()
	r.GET("/api/admin/jobs", h.ListJobs)
	r.POST("/api/admin/jobs/:name/run", h.RunJob)
	r.POST("/api/admin/users/:id/roles", h.GrantRole)

	member := testutil.CreateUser(t, db, 0, entity.ExpertiseBeginner)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		return w
	}

	w := do(http.MethodGet, "/api/admin/jobs", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "leaderboard")

	assert.Equal(t, http.StatusOK, do(http.MethodPost, "/api/admin/jobs/leaderboard/run", "").Code)
	assert.Equal(t, 1, runs)
	assert.Equal(t, http.StatusNotFound, do(http.MethodPost, "/api/admin/jobs/unknown/run", "").Code)

	require.NoError(t, mr.Set(scheduler.LockKey("leaderboard"), "elsewhere"))
	assert.Equal(t, http.StatusConflict, do(http.MethodPost, "/api/admin/jobs/leaderboard/run", "").Code)
	assert.Equal(t, 1, runs)

	path := "/api/admin/users/" + member.ID.String() + "/roles"
	assert.Equal(t, http.StatusOK, do(http.MethodPost, path, `{"role":"admin"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, path, `{"role":"root"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, "/api/admin/users/nope/roles", `{"role":"admin"}`).Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodPost, "/api/admin/users/"+uuid.NewString()+"/roles", `{"role":"admin"}`).Code)

	granted, err := users.FindByID(context.Background(), member.ID)
	require.NoError(t, err)
	assert.True(t, granted.HasRole(entity.RoleAdmin))
}
