// Package syncer drives external feed synchronization: it fetches upstream
// transactions through a connector, persists only the ones not yet seen for
// the account's owner, and advances the sync watermark. Re-running a sync
// against an unchanged feed writes nothing.
package syncer

import (
	"context"
	"log"
	"sync"
	"time"

	"homeledger-server/src/apperr"
	"homeledger-server/src/core/scope"
	"homeledger-server/src/models"
	"homeledger-server/src/store"
)

type Orchestrator struct {
	store      store.Store
	connectors map[string]Connector

	// One in-flight sync per account; concurrent syncs of the same account
	// would race on the dedup check. Entries are refcounted and removed
	// once no sync holds or waits on them.
	mu    sync.Mutex
	locks map[int64]*accountLock
}

type accountLock struct {
	mu   sync.Mutex
	refs int
}

func New(st store.Store, connectors ...Connector) *Orchestrator {
	byKind := make(map[string]Connector, len(connectors))
	for _, c := range connectors {
		byKind[c.Source()] = c
	}
	return &Orchestrator{
		store:      st,
		connectors: byKind,
		locks:      make(map[int64]*accountLock),
	}
}

func (o *Orchestrator) acquireLock(accountID int64) *accountLock {
	o.mu.Lock()
	l, ok := o.locks[accountID]
	if !ok {
		l = &accountLock{}
		o.locks[accountID] = l
	}
	l.refs++
	o.mu.Unlock()

	l.mu.Lock()
	return l
}

func (o *Orchestrator) releaseLock(accountID int64, l *accountLock) {
	l.mu.Unlock()
	o.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(o.locks, accountID)
	}
	o.mu.Unlock()
}

func (o *Orchestrator) connectorFor(account *models.LinkedAccount) (Connector, error) {
	c, ok := o.connectors[account.ConnectionKind]
	if !ok {
		return nil, apperr.InvalidState("account %d has no syncable connection (%s)", account.ID, account.ConnectionKind)
	}
	return c, nil
}

// AuthorizationURL builds the OAuth authorization URL for a connection kind
// and institution.
func (o *Orchestrator) AuthorizationURL(connectionKind, institutionCode string) (string, error) {
	c, ok := o.connectors[connectionKind]
	if !ok {
		return "", apperr.InvalidArgument("unknown connection kind: %q", connectionKind)
	}
	return c.BuildAuthorizationURL(institutionCode)
}

type Result struct {
	AccountID int64     `json:"account_id"`
	Fetched   int       `json:"fetched"`
	Created   int       `json:"created"`
	SyncedAt  time.Time `json:"synced_at"`
}

// Sync fetches the account's feed and reconciles it into the ledger. New
// transactions and the watermark advance commit together; a failure leaves
// both untouched.
func (o *Orchestrator) Sync(ctx context.Context, sc scope.Scope, accountID int64) (*Result, error) {
	lock := o.acquireLock(accountID)
	defer o.releaseLock(accountID, lock)

	account, err := o.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !sc.CanAccess(account.ActorID) {
		return nil, apperr.Unauthorized("account %d does not belong to actor %d", accountID, sc.ActorID())
	}
	if !account.Active || !account.Credentialed() {
		return nil, apperr.InvalidState("account %d is inactive or has no credentials", accountID)
	}
	connector, err := o.connectorFor(account)
	if err != nil {
		return nil, err
	}

	fetched, err := connector.FetchTransactions(ctx, account)
	if err != nil {
		return nil, apperr.ExternalSync(err, "fetch failed for account %d", accountID)
	}

	now := time.Now()
	created := 0
	err = o.store.RunInTx(ctx, func(tx store.Store) error {
		for _, ext := range fetched {
			if ext.ExternalID != "" {
				seen, err := tx.HasExternalTransaction(ctx, account.ActorID, ext.ExternalID)
				if err != nil {
					return err
				}
				if seen {
					continue
				}
			}
			if _, err := tx.InsertTransaction(ctx, externalToTransaction(ext, account, now)); err != nil {
				return err
			}
			created++
		}
		// The watermark advances even when nothing new arrived; an empty
		// delta is still a successful sync.
		account.LastSyncedAt = &now
		_, err := tx.UpdateAccount(ctx, account)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Printf("INFO: Synced account %d: fetched %d, created %d", accountID, len(fetched), created)
	return &Result{AccountID: accountID, Fetched: len(fetched), Created: created, SyncedAt: now}, nil
}

func externalToTransaction(ext ExternalTransaction, account *models.LinkedAccount, now time.Time) *models.Transaction {
	occurred := ext.OccurredAt
	if occurred.IsZero() {
		occurred = now
	}
	t := &models.Transaction{
		Kind:            ext.Kind,
		Amount:          ext.Amount,
		Description:     ext.Description,
		ActorID:         account.ActorID,
		AccountID:       &account.ID,
		TransactionDate: occurred,
		SyncSource:      account.ConnectionKind,
	}
	if ext.ExternalID != "" {
		id := ext.ExternalID
		t.ExternalID = &id
	}
	return t
}

// HandleCallback exchanges the authorization code for credentials, activates
// the account, and runs a full sync as a continuation of the callback.
func (o *Orchestrator) HandleCallback(ctx context.Context, sc scope.Scope, accountID int64, authorizationCode string) (*Result, error) {
	account, err := o.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !sc.CanAccess(account.ActorID) {
		return nil, apperr.Unauthorized("account %d does not belong to actor %d", accountID, sc.ActorID())
	}
	connector, err := o.connectorFor(account)
	if err != nil {
		return nil, err
	}

	creds, err := connector.ExchangeCode(ctx, account, authorizationCode)
	if err != nil {
		return nil, apperr.ExternalSync(err, "code exchange failed for account %d", accountID)
	}

	account.AccessToken = &creds.AccessToken
	if creds.RefreshToken != "" {
		account.RefreshToken = &creds.RefreshToken
	}
	if !creds.ExpiresAt.IsZero() {
		expires := creds.ExpiresAt
		account.TokenExpiresAt = &expires
	}
	account.Active = true
	if _, err := o.store.UpdateAccount(ctx, account); err != nil {
		return nil, err
	}
	log.Printf("INFO: Authorized account %d via %s callback", accountID, account.ConnectionKind)

	return o.Sync(ctx, sc, accountID)
}
