package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"homeledger-server/src/apperr"
	"homeledger-server/src/models"
	"homeledger-server/src/store"
)

var defaultCategories = []models.Category{
	{Name: "Salary", Kind: models.KindIncome, Description: "Monthly salary"},
	{Name: "Side income", Kind: models.KindIncome, Description: "Freelance, odd jobs"},
	{Name: "Investments", Kind: models.KindIncome, Description: "Dividends, interest"},
	{Name: "Other income", Kind: models.KindIncome, Description: "Everything else coming in"},
	{Name: "Food", Kind: models.KindExpense, Description: "Groceries, eating out"},
	{Name: "Transport", Kind: models.KindExpense, Description: "Public transit, fuel"},
	{Name: "Housing", Kind: models.KindExpense, Description: "Rent, utilities"},
	{Name: "Health", Kind: models.KindExpense, Description: "Doctor visits, medication"},
	{Name: "Education", Kind: models.KindExpense, Description: "Courses, books"},
	{Name: "Leisure", Kind: models.KindExpense, Description: "Movies, hobbies"},
	{Name: "Shopping", Kind: models.KindExpense, Description: "Clothes, household goods"},
	{Name: "Other expenses", Kind: models.KindExpense, Description: "Everything else going out"},
}

// EnsureDefaults creates the administrator actor and the default category
// set if they do not exist yet. Safe to run on every startup.
func EnsureDefaults(ctx context.Context, st store.Store, adminEmail, adminPassword string) error {
	_, err := st.GetActorByEmail(ctx, adminEmail)
	if apperr.IsNotFound(err) {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		_, err = st.CreateActor(ctx, &models.Actor{
			Email:        adminEmail,
			PasswordHash: string(hash),
			Name:         "Administrator",
			Role:         models.RoleAdmin,
		})
		if err != nil {
			return fmt.Errorf("create admin actor: %w", err)
		}
		log.Printf("INFO: Created administrator actor %s", adminEmail)
	} else if err != nil {
		return err
	}

	count, err := st.CountCategories(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, c := range defaultCategories {
		category := c
		if _, err := st.CreateCategory(ctx, &category); err != nil {
			return fmt.Errorf("create default category %s: %w", c.Name, err)
		}
	}
	log.Printf("INFO: Created %d default categories", len(defaultCategories))
	return nil
}

// SeedDemo fills the store with generated actors, accounts, and
// transactions. Demo mode only.
func SeedDemo(ctx context.Context, st store.Store, actorCount, transactionsPerActor int) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("demo"), bcrypt.MinCost)
	if err != nil {
		return err
	}

	categories, err := st.ListCategories(ctx, "")
	if err != nil {
		return err
	}

	for i := 0; i < actorCount; i++ {
		actor, err := st.CreateActor(ctx, &models.Actor{
			Email:        gofakeit.Email(),
			PasswordHash: string(hash),
			Name:         gofakeit.Name(),
			Role:         models.RoleOwner,
		})
		if err != nil {
			return err
		}

		account, err := st.CreateAccount(ctx, &models.LinkedAccount{
			Name:            gofakeit.Company() + " checking",
			InstitutionCode: fmt.Sprintf("%03d", gofakeit.Number(1, 999)),
			InstitutionName: gofakeit.Company(),
			AccountNumber:   "****" + gofakeit.DigitN(4),
			AccountKind:     models.AccountKindChecking,
			ConnectionKind:  models.ConnectionManual,
			Active:          true,
			ActorID:         actor.ID,
		})
		if err != nil {
			return err
		}

		for j := 0; j < transactionsPerActor; j++ {
			kind := models.KindExpense
			if gofakeit.Number(0, 3) == 0 {
				kind = models.KindIncome
			}
			amount := decimal.NewFromFloat(gofakeit.Price(5, 500)).Round(2)
			_, err := st.InsertTransaction(ctx, &models.Transaction{
				Kind:            kind,
				Amount:          amount,
				Description:     gofakeit.ProductName(),
				ActorID:         actor.ID,
				CategoryID:      randomCategoryID(categories, kind),
				AccountID:       &account.ID,
				TransactionDate: time.Now().AddDate(0, 0, -gofakeit.Number(0, 60)),
				SyncSource:      models.SourceManual,
			})
			if err != nil {
				return err
			}
		}
	}
	log.Printf("INFO: Seeded %d demo actors with %d transactions each", actorCount, transactionsPerActor)
	return nil
}

func randomCategoryID(categories []models.Category, kind string) *int64 {
	var matching []models.Category
	for _, c := range categories {
		if c.Kind == kind {
			matching = append(matching, c)
		}
	}
	if len(matching) == 0 {
		return nil
	}
	id := matching[gofakeit.Number(0, len(matching)-1)].ID
	return &id
}
