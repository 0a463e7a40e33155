package ledger

import (
	"context"
	"strings"

	"homeledger-server/src/apperr"
	"homeledger-server/src/core/scope"
	"homeledger-server/src/models"
)

func validateAccountDraft(d models.AccountDraft) error {
	if strings.TrimSpace(d.Name) == "" {
		return apperr.InvalidArgument("account name must not be blank")
	}
	switch d.AccountKind {
	case models.AccountKindChecking, models.AccountKindSavings, models.AccountKindCard:
	default:
		return apperr.InvalidArgument("unknown account kind: %q", d.AccountKind)
	}
	switch d.ConnectionKind {
	case models.ConnectionBankFeed, models.ConnectionCardFeed, models.ConnectionManual:
	default:
		return apperr.InvalidArgument("unknown connection kind: %q", d.ConnectionKind)
	}
	return nil
}

func (s *Service) ListAccounts(ctx context.Context, sc scope.Scope, activeOnly bool) ([]models.LinkedAccount, error) {
	return s.store.ListAccounts(ctx, sc, activeOnly)
}

func (s *Service) GetAccount(ctx context.Context, sc scope.Scope, id int64) (*models.LinkedAccount, error) {
	a, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sc.CanAccess(a.ActorID) {
		return nil, apperr.Unauthorized("account %d does not belong to actor %d", id, sc.ActorID())
	}
	return a, nil
}

func (s *Service) CreateAccount(ctx context.Context, sc scope.Scope, draft models.AccountDraft) (*models.LinkedAccount, error) {
	if err := validateAccountDraft(draft); err != nil {
		return nil, err
	}
	active := true
	if draft.Active != nil {
		active = *draft.Active
	}
	return s.store.CreateAccount(ctx, &models.LinkedAccount{
		Name:            draft.Name,
		InstitutionCode: draft.InstitutionCode,
		InstitutionName: draft.InstitutionName,
		AccountNumber:   draft.AccountNumber,
		AccountKind:     draft.AccountKind,
		ConnectionKind:  draft.ConnectionKind,
		Active:          active,
		ActorID:         sc.ActorID(),
	})
}

// UpdateAccount replaces an account's descriptive fields. Credentials and
// the sync watermark are untouched; those belong to the sync lifecycle.
func (s *Service) UpdateAccount(ctx context.Context, sc scope.Scope, id int64, draft models.AccountDraft) (*models.LinkedAccount, error) {
	a, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sc.CanAccess(a.ActorID) {
		return nil, apperr.Unauthorized("account %d does not belong to actor %d", id, sc.ActorID())
	}
	if err := validateAccountDraft(draft); err != nil {
		return nil, err
	}

	a.Name = draft.Name
	a.InstitutionCode = draft.InstitutionCode
	a.InstitutionName = draft.InstitutionName
	a.AccountNumber = draft.AccountNumber
	a.AccountKind = draft.AccountKind
	a.ConnectionKind = draft.ConnectionKind
	if draft.Active != nil {
		a.Active = *draft.Active
	}
	return s.store.UpdateAccount(ctx, a)
}

func (s *Service) DeleteAccount(ctx context.Context, sc scope.Scope, id int64) error {
	a, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return err
	}
	if !sc.CanAccess(a.ActorID) {
		return apperr.Unauthorized("account %d does not belong to actor %d", id, sc.ActorID())
	}
	return s.store.DeleteAccount(ctx, id)
}
