package template

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit"
)

func TestNewStore_NilStorage(t *testing.T) {
	t.Parallel()

	_, err := NewStore(nil)
	assert.ErrorIs(t, err, ErrStorageNil)
}

func TestStore_Create(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  CreateParams
		wantErr error
	}{
		{
			name: "valid template",
			params: CreateParams{
				Name:     "loan_approved",
				Type:     notifykit.ChannelEmail,
				Category: notifykit.CategoryTransactional,
				Subject:  "Loan approved",
				Body:     "Approved for {{amount}}",
			},
		},
		{
			name: "missing name",
			params: CreateParams{
				Type:     notifykit.ChannelEmail,
				Category: notifykit.CategoryTransactional,
				Body:     "x",
			},
			wantErr: ErrInvalidTemplate,
		},
		{
			name: "unknown channel",
			params: CreateParams{
				Name:     "t",
				Type:     notifykit.Channel("fax"),
				Category: notifykit.CategoryTransactional,
				Body:     "x",
			},
			wantErr: ErrInvalidTemplate,
		},
		{
			name: "missing body",
			params: CreateParams{
				Name:     "t",
				Type:     notifykit.ChannelSMS,
				Category: notifykit.CategoryAlert,
			},
			wantErr: ErrInvalidTemplate,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store, err := NewStore(NewMemoryStorage())
			require.NoError(t, err)

			tpl, err := store.Create(context.Background(), tt.params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, tpl.ID)
			assert.Equal(t, 1, tpl.Version)
			assert.True(t, tpl.Active)
			assert.Equal(t, "en", tpl.Language)
			assert.Equal(t, []string{"amount"}, tpl.Variables)
		})
	}
}

func TestStore_UpdateCreatesNewVersion(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := NewStore(NewMemoryStorage())
	require.NoError(t, err)

	v1, err := store.Create(ctx, CreateParams{
		Name:     "welcome",
		Type:     notifykit.ChannelEmail,
		Category: notifykit.CategorySystem,
		Body:     "Hello {{name}}",
	})
	require.NoError(t, err)

	newBody := "Hi {{name}}, welcome aboard"
	v2, err := store.Update(ctx, v1.ID, UpdateParams{Body: &newBody})
	require.NoError(t, err)

	assert.NotEqual(t, v1.ID, v2.ID, "update must mint a new template id")
	assert.Equal(t, 2, v2.Version)
	assert.Equal(t, newBody, v2.Body)

	// The original version is untouched.
	orig, err := store.Get(ctx, v1.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello {{name}}", orig.Body)
	assert.Equal(t, 1, orig.Version)

	// Name lookup resolves to the latest version.
	latest, err := store.GetByName(ctx, "welcome")
	require.NoError(t, err)
	assert.Equal(t, v2.ID, latest.ID)
}

func TestStore_RenderInactive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := NewStore(NewMemoryStorage())
	require.NoError(t, err)

	tpl, err := store.Create(ctx, CreateParams{
		Name:     "old",
		Type:     notifykit.ChannelEmail,
		Category: notifykit.CategoryMarketing,
		Body:     "buy {{thing}}",
	})
	require.NoError(t, err)
	require.NoError(t, store.Deactivate(ctx, tpl.ID))

	_, _, err = store.Render(ctx, tpl.ID, nil)
	assert.ErrorIs(t, err, ErrTemplateInactive)
}

func TestStore_RenderNotFound(t *testing.T) {
	t.Parallel()

	store, err := NewStore(NewMemoryStorage())
	require.NoError(t, err)

	_, _, err = store.Render(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}
