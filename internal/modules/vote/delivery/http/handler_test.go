package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dev-lov-oper/Clarix-AI/internal/entity"
	handler "github.com/dev-lov-oper/Clarix-AI/internal/modules/vote/delivery/http"
	"github.com/dev-lov-oper/Clarix-AI/internal/modules/vote/dto"
	"github.com/dev-lov-oper/Clarix-AI/internal/modules/vote/repository"
	"github.com/dev-lov-oper/Clarix-AI/internal/modules/vote/service"
	"github.com/dev-lov-oper/Clarix-AI/internal/testutil"
	"github.com/dev-lov-oper/Clarix-AI/pkg/dbretry"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRouter(t *testing.T, userID uuid.UUID) (*gin.Engine, *entity.Contribution) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	author := testutil.CreateUser(t, db, 0, entity.ExpertiseBeginner)
	require.NoError(t, db.Create(&entity.User{ID: userID, Expertise: entity.ExpertiseBeginner}).Error)
	contribution := testutil.CreateContribution(t, db, &entity.Contribution{TopicID: "graphs", AuthorID: author.ID})

	h := handler.NewVoteHandler(service.NewVoteService(repository.NewVoteRepository(db), dbretry.DefaultPolicy(), zap.NewNop()))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID.String())
		c.Next()
	})
	r.PUT("/api/contributions/:id/vote", h.CastVote)
	r.GET("/api/contributions/:id/vote", h.GetVote)
	return r, contribution
}

func TestCastVoteHandler(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	r, contribution := newRouter(t, userID)

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{"up vote", "/api/contributions/" + contribution.ID.String() + "/vote", `{"direction":"up"}`, http.StatusOK},
		{"bad direction", "/api/contributions/" + contribution.ID.String() + "/vote", `{"direction":"sideways"}`, http.StatusBadRequest},
		{"bad id", "/api/contributions/nope/vote", `{"direction":"up"}`, http.StatusBadRequest},
		{"unknown contribution", "/api/contributions/" + uuid.NewString() + "/vote", `{"direction":"up"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, tt.path, strings.NewReader(tt.body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		assert.Equal(t, tt.wantStatus, w.Code, tt.name)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/contributions/"+contribution.ID.String()+"/vote", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data dto.VoteResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "up", body.Data.Direction)
}
