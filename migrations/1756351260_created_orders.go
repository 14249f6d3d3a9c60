package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("orders")

		collection.Fields.Add(
			&core.TextField{
				Name:     "event_id",
				Required: true,
			},
			&core.TextField{
				Name:     "buyer_name",
				Required: true,
			},
			&core.EmailField{
				Name:     "buyer_email",
				Required: true,
			},
			&core.TextField{
				Name:     "buyer_phone",
				Required: true,
			},
			&core.SelectField{
				Name:      "status",
				Required:  true,
				Values:    []string{"pending", "paid", "sent", "failed"},
				MaxSelect: 1,
			},
			&core.TextField{
				Name:     "reference",
				Required: true,
			},
			&core.AutodateField{
				Name:     "created",
				OnCreate: true,
			},
			&core.AutodateField{
				Name:     "updated",
				OnCreate: true,
				OnUpdate: true,
			},
		)

		// The gateway reference is the webhook's fallback lookup key
		// and must stay unique.
		collection.AddIndex("idx_orders_reference", true, "reference", "")
		collection.AddIndex("idx_orders_status", false, "status", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("orders")
		if err != nil {
			return nil
		}
		return app.Delete(collection)
	})
}
