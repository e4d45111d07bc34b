// Package community is the shared encouragement feed: short posts and
// one-tap reactions.
//
// Posting and reacting deliberately do NOT feed Counters.CommunityHelpCount.
// Nothing distinguishes a genuinely helpful interaction from feed noise
// yet, so the counter stays at zero and the "Community Helper"
// achievements stay locked until real help tracking lands.
package community

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mindwell-app/mindwell/internal/domain"
	"github.com/mindwell-app/mindwell/internal/infra/sqlite"
)

// maxBodyLen bounds a post body.
const maxBodyLen = 500

type Service struct {
	db  *sqlite.DB
	log *zap.Logger
}

func NewService(db *sqlite.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

// Post publishes a new entry to the feed.
func (s *Service) Post(userID, body string, now time.Time) (domain.Post, error) {
	body = strings.TrimSpace(body)
	if body == "" || len(body) > maxBodyLen {
		return domain.Post{}, fmt.Errorf("%w: post body must be 1-%d characters", domain.ErrInvalidInput, maxBodyLen)
	}
	p := domain.Post{
		ID:        uuid.NewString(),
		UserID:    userID,
		Body:      body,
		CreatedAt: now,
	}
	if err := s.db.InsertPost(p); err != nil {
		return domain.Post{}, fmt.Errorf("publish post: %w", err)
	}
	s.log.Info("post published", zap.String("id", p.ID))
	return p, nil
}

// React bumps a post's reaction count.
func (s *Service) React(postID string) error {
	return s.db.AddReaction(postID)
}

// Feed returns the newest posts.
func (s *Service) Feed(limit int) ([]domain.Post, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.db.ListPosts(limit)
}
