package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"greentrip-be/internal/entity"
	"greentrip-be/internal/model"
	"greentrip-be/internal/repository/implementation"
	"greentrip-be/pkg/clarification"
	"greentrip-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStores(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	require.NoError(t, gormDB.AutoMigrate(&model.Session{}, &model.Conversation{}))

	ctx := context.Background()

	t.Run("Session round trip", func(t *testing.T) {
		repo := implementation.NewSessionRepository(gormDB)

		session := &entity.Session{Id: uuid.New()}
		session.AppendTurn("user", "recommend a coastal city", entity.TurnMetadata{Type: "clarification_trigger"})
		session.ClarificationState = clarification.NewState("recommend a coastal city", []clarification.Question{
			{Id: 0, Category: "timing", Text: "When?"},
		})
		require.NoError(t, repo.Create(ctx, session))
		defer repo.Delete(ctx, session.Id)

		loaded, err := repo.Get(ctx, session.Id)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Len(t, loaded.ConversationHistory, 1)
		require.NotNil(t, loaded.ClarificationState)

		loaded.ClarificationState.AddAnswer(0, "spring")
		loaded.ClarificationComplete = true
		require.NoError(t, repo.Update(ctx, loaded))

		reloaded, err := repo.Get(ctx, session.Id)
		require.NoError(t, err)
		assert.True(t, reloaded.ClarificationComplete)
		assert.True(t, reloaded.ClarificationState.IsComplete())
	})

	t.Run("Session miss returns nil", func(t *testing.T) {
		repo := implementation.NewSessionRepository(gormDB)

		loaded, err := repo.Get(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("Conversation upsert", func(t *testing.T) {
		repo := implementation.NewConversationRepository(gormDB)

		conversation := &entity.Conversation{SessionId: uuid.New()}
		require.NoError(t, repo.Save(ctx, conversation))

		conversation.Feedback = &entity.Feedback{Rating: 5, FeedbackType: "recommendation_rating"}
		require.NoError(t, repo.Save(ctx, conversation))

		loaded, err := repo.Get(ctx, conversation.SessionId)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		require.NotNil(t, loaded.Feedback)
		assert.Equal(t, 5, loaded.Feedback.Rating)

		gormDB.Delete(&model.Conversation{}, "session_id = ?", conversation.SessionId)
	})
}
