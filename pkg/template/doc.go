// Package template provides versioned notification templates with {{key}}
// placeholder rendering and pluggable persistence.
//
// Templates are immutable once stored: Update creates a new version under the
// same name instead of mutating the referenced record, so messages rendered
// from an older version stay reproducible.
//
// # Basic Usage
//
//	storage := template.NewMemoryStorage()
//	store, err := template.NewStore(storage)
//	if err != nil {
//	    // handle error
//	}
//
//	tpl, err := store.Create(ctx, template.CreateParams{
//	    Name:     "loan_approved",
//	    Type:     notifykit.ChannelEmail,
//	    Category: notifykit.CategoryTransactional,
//	    Subject:  "Loan approved",
//	    Body:     "Approved for {{amount}}",
//	})
//
//	subject, body, err := store.Render(ctx, tpl.ID, map[string]string{"amount": "5000"})
//
// Unresolved placeholders are left verbatim and logged at warn level rather
// than failing the render; this keeps template authoring forgiving.
//
// For production use back the store with Redis:
//
//	store, _ := template.NewStore(template.NewRedisStorage(redisStore))
package template
