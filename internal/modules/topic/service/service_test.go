package service_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/dev-lov-oper/Clarix-AI/internal/bootstrap"
	"github.com/dev-lov-oper/Clarix-AI/internal/modules/topic/dto"
	"github.com/dev-lov-oper/Clarix-AI/internal/modules/topic/repository"
	"github.com/dev-lov-oper/Clarix-AI/internal/modules/topic/service"
	"github.com/dev-lov-oper/Clarix-AI/internal/testutil"
	"github.com/dev-lov-oper/Clarix-AI/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicService(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	require.NoError(t, bootstrap.SeedTopics(db))
	svc := service.NewTopicService(repository.NewTopicRepository(db))
	ctx := context.Background()

	created, err := svc.CreateTopic(ctx, dto.CreateTopicRequest{Name: "  Bit Manipulation "})
	require.NoError(t, err)
	assert.Equal(t, "bit_manipulation", created.ID)
	assert.Equal(t, "Bit Manipulation", created.Name)

	_, err = svc.CreateTopic(ctx, dto.CreateTopicRequest{Name: "bit manipulation"})
	assert.Equal(t, http.StatusConflict, apperror.MapErrorToStatus(err))

	got, err := svc.GetTopic(ctx, "Bit Manipulation")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.GetTopic(ctx, "quantum")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	found, err := svc.GetAllTopics(ctx, dto.TopicFilter{Search: "MANIP"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "bit_manipulation", found[0].ID)

	all, err := svc.GetAllTopics(ctx, dto.TopicFilter{})
	require.NoError(t, err)
	assert.Greater(t, len(all), 1)
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].Name, all[i].Name)
	}
}
