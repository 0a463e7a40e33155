// Package session manages budget sessions and their derived statistics.
// Statistics are never stored; they are recomputed from the transaction set
// on every read so they cannot drift.
package session

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"homeledger-server/src/apperr"
	"homeledger-server/src/core/calc"
	"homeledger-server/src/core/scope"
	"homeledger-server/src/models"
	"homeledger-server/src/store"
)

type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// summarize attaches recomputed statistics to a session. If the computation
// fails the metadata is still returned with zero stats; losing the numbers
// must not lose the session.
func (s *Service) summarize(ctx context.Context, sc scope.Scope, sess models.BudgetSession) models.SessionSummary {
	out := models.SessionSummary{
		BudgetSession: sess,
		TotalIncome:   decimal.Zero,
		TotalExpense:  decimal.Zero,
		Balance:       decimal.Zero,
	}

	transactions, err := s.store.ListTransactions(ctx, sc, store.TransactionFilter{SessionID: &sess.ID})
	if err != nil {
		log.Printf("ERROR: Failed to compute stats for session %d: %v", sess.ID, err)
		return out
	}
	sum := calc.Summarize(transactions)
	out.TransactionCount = sum.Count
	out.TotalIncome = sum.TotalIncome
	out.TotalExpense = sum.TotalExpense
	out.Balance = sum.Balance
	return out
}

func (s *Service) ListSessions(ctx context.Context, sc scope.Scope) ([]models.SessionSummary, error) {
	sessions, err := s.store.ListSessions(ctx, sc)
	if err != nil {
		return nil, err
	}
	summaries := make([]models.SessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		summaries = append(summaries, s.summarize(ctx, sc, sess))
	}
	return summaries, nil
}

// DescribeSession returns a session with its statistics and bumps the
// last-accessed timestamp. Listing does not bump; only get-by-id does.
func (s *Service) DescribeSession(ctx context.Context, sc scope.Scope, id int64) (*models.SessionSummary, error) {
	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sc.CanAccess(sess.ActorID) {
		return nil, apperr.Unauthorized("session %d does not belong to actor %d", id, sc.ActorID())
	}

	now := time.Now()
	if err := s.store.TouchSession(ctx, id, now); err != nil {
		log.Printf("ERROR: Failed to bump last-accessed for session %d: %v", id, err)
	} else {
		sess.LastAccessedAt = now
	}

	summary := s.summarize(ctx, sc, *sess)
	return &summary, nil
}

func (s *Service) CreateSession(ctx context.Context, sc scope.Scope, draft models.SessionDraft) (*models.BudgetSession, error) {
	if strings.TrimSpace(draft.Name) == "" {
		return nil, apperr.InvalidArgument("session name must not be blank")
	}
	color := draft.Color
	if color == "" {
		color = "#0070f3"
	}
	icon := draft.Icon
	if icon == "" {
		icon = "💰"
	}
	return s.store.CreateSession(ctx, &models.BudgetSession{
		Name:        draft.Name,
		Description: draft.Description,
		Color:       color,
		Icon:        icon,
		ActorID:     sc.ActorID(),
	})
}

func (s *Service) UpdateSession(ctx context.Context, sc scope.Scope, id int64, draft models.SessionDraft) (*models.BudgetSession, error) {
	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sc.CanAccess(sess.ActorID) {
		return nil, apperr.Unauthorized("session %d does not belong to actor %d", id, sc.ActorID())
	}
	if strings.TrimSpace(draft.Name) == "" {
		return nil, apperr.InvalidArgument("session name must not be blank")
	}

	sess.Name = draft.Name
	sess.Description = draft.Description
	if draft.Color != "" {
		sess.Color = draft.Color
	}
	if draft.Icon != "" {
		sess.Icon = draft.Icon
	}
	return s.store.UpdateSession(ctx, sess)
}

func (s *Service) DeleteSession(ctx context.Context, sc scope.Scope, id int64) error {
	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if !sc.CanAccess(sess.ActorID) {
		return apperr.Unauthorized("session %d does not belong to actor %d", id, sc.ActorID())
	}
	return s.store.DeleteSession(ctx, id)
}
