package bootstrap

import (
	"github.com/dev-lov-oper/Clarix-AI/internal/entity"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var defaultTopics = []string{
	"Arrays",
	"Strings",
	"Hash Tables",
	"Linked Lists",
	"Stacks and Queues",
	"Trees",
	"Graphs",
	"Sorting",
	"Binary Search",
	"Dynamic Programming",
	"Greedy",
	"Recursion",
	entity.DefaultTopicName,
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.UserRole{},
		&entity.UserExpertTopic{},
		&entity.UserBadge{},
		&entity.Topic{},
		&entity.Contribution{},
		&entity.Vote{},
		&entity.HistoryEntry{},
		&entity.ConfidenceRecord{},
		&entity.UserStats{},
		&entity.LeaderboardSnapshot{},
		&entity.DailyStat{},
		&entity.Notification{},
	)
}

// SeedTopics inserts the default topics, leaving existing rows untouched.
func SeedTopics(db *gorm.DB) error {
	topics := make([]entity.Topic, 0, len(defaultTopics))
	for _, name := range defaultTopics {
		topics = append(topics, entity.Topic{ID: entity.TopicID(name), Name: name})
	}

	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&topics).Error
}

// SeedAdminUser makes sure the given id exists and carries the admin role.
// Tokens are issued elsewhere, so the id must match the subject of the
// operator's token.
func SeedAdminUser(db *gorm.DB, log *zap.Logger, adminID uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		admin := entity.User{ID: adminID, Username: "admin", Expertise: entity.ExpertiseBeginner}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&admin)
		if res.Error != nil {
			return res.Error
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&entity.UserRole{UserID: adminID, Role: entity.RoleAdmin}).Error; err != nil {
			return err
		}

		if res.RowsAffected > 0 {
			log.Info("admin user seeded", zap.String("user_id", adminID.String()))
		}
		return nil
	})
}
