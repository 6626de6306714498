package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/quidz-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(types.AllModels()...)
}

// EnsurePostgresIndexes adds indexes gorm tags cannot express.
func EnsurePostgresIndexes(db *gorm.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{
			name: "idx_absences_pending",
			sql:  `CREATE INDEX IF NOT EXISTS idx_absences_pending ON absences(date) WHERE approved IS NULL AND deleted_at IS NULL;`,
		},
		{
			name: "idx_chat_messages_unread",
			sql:  `CREATE INDEX IF NOT EXISTS idx_chat_messages_unread ON chat_messages(recipient_id, sender_id) WHERE read_at IS NULL AND deleted_at IS NULL;`,
		},
		{
			name: "idx_learning_progress_known",
			sql:  `CREATE INDEX IF NOT EXISTS idx_learning_progress_known ON learning_progress(user_id, flashcard_id) WHERE knew_answer;`,
		},
		{
			name: "idx_tasks_period",
			sql:  `CREATE INDEX IF NOT EXISTS idx_tasks_period ON tasks(assigned_to, (COALESCE(due_date, created_at::date))) WHERE deleted_at IS NULL;`,
		},
	}
	for _, s := range stmts {
		if err := db.Exec(s.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", s.name, err)
		}
	}
	return nil
}
