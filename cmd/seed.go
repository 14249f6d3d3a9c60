package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"ticketing-app/config"
	"ticketing-app/internal/store"
	"ticketing-app/models"
	"ticketing-app/utils"
)

// registerSeedCommand adds a `seed` subcommand that provisions the
// admin account and a couple of demo events for local development.
func registerSeedCommand(app *pocketbase.PocketBase, cfg *config.Config) {
	app.RootCmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Create the admin account and sample events",
		RunE: func(_ *cobra.Command, _ []string) error {
			if !app.IsBootstrapped() {
				if err := app.Bootstrap(); err != nil {
					return fmt.Errorf("bootstrap: %w", err)
				}
			}

			ctx := context.Background()

			if err := seedAdmin(app, cfg); err != nil {
				return err
			}
			if err := seedEvents(ctx, app); err != nil {
				return err
			}

			log.Println("Seeding completed")
			return nil
		},
	})
}

func seedAdmin(app *pocketbase.PocketBase, cfg *config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Println("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	if _, err := app.FindFirstRecordByFilter("admins", "email = {:email}", dbx.Params{"email": cfg.AdminEmail}); err == nil {
		log.Printf("Admin %s already exists, skipping", cfg.AdminEmail)
		return nil
	}

	collection, err := app.FindCollectionByNameOrId("admins")
	if err != nil {
		return fmt.Errorf("find admins collection: %w", err)
	}

	hash, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	record := core.NewRecord(collection)
	record.Set("email", cfg.AdminEmail)
	record.Set("password_hash", hash)
	if err := app.Save(record); err != nil {
		return fmt.Errorf("save admin: %w", err)
	}

	log.Printf("Created admin %s", cfg.AdminEmail)
	return nil
}

func seedEvents(ctx context.Context, app *pocketbase.PocketBase) error {
	existing, err := app.FindRecordsByFilter("events", "id != ''", "", 1, 0)
	if err == nil && len(existing) > 0 {
		log.Println("Events already exist, skipping event seed")
		return nil
	}

	catalog := store.NewEventCatalog(app)
	samples := []*models.Event{
		{
			Name:         "Jakarta Music Fest",
			Description:  "A night of stellar music performances.",
			Date:         time.Now().AddDate(0, 1, 0).Truncate(time.Hour),
			Location:     "Jakarta Convention Center",
			Price:        decimal.NewFromInt(150000),
			TotalTickets: 500,
		},
		{
			Name:         "Comedy Night",
			Description:  "Get ready to laugh out loud with top comedians.",
			Date:         time.Now().AddDate(0, 0, 15).Truncate(time.Hour),
			Location:     "Isola Bar, Jakarta",
			Price:        decimal.NewFromInt(75000),
			TotalTickets: 200,
		},
	}

	for _, ev := range samples {
		created, err := catalog.Create(ctx, ev)
		if err != nil {
			return fmt.Errorf("seed event %q: %w", ev.Name, err)
		}
		log.Printf("Created event %q (%s)", created.Name, created.ID)
	}
	return nil
}
