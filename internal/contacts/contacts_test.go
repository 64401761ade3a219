package contacts

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "medregistry/pkg/domain-errors"
)

func newTestService() *Service {
	return NewService(NewMemoryStore(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestContactCRUD(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, Contact{Phone: "9876543210", Name: "Asha Verma", Email: "asha@example.com"})
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := svc.Get(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, "Asha Verma", got.Name)

	updated, err := svc.Update(ctx, Contact{Phone: "9876543210", Name: "Dr. Asha Verma"})
	require.NoError(t, err)
	assert.Equal(t, "Dr. Asha Verma", updated.Name)

	require.NoError(t, svc.Delete(ctx, "9876543210"))
	_, err = svc.Get(ctx, "9876543210")
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
}

func TestContactDuplicatePhone(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, Contact{Phone: "9876543210", Name: "Asha"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Contact{Phone: "9876543210", Name: "Another"})
	assert.True(t, dErrors.Is(err, dErrors.CodeConflict))
}

func TestContactValidation(t *testing.T) {
	svc := newTestService()

	_, err := svc.Create(context.Background(), Contact{})
	var de *dErrors.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, dErrors.CodeValidation, de.Code)
	assert.Contains(t, de.Fields, "phone")
	assert.Contains(t, de.Fields, "name")
}

func TestContactListSorted(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	for _, phone := range []string{"9000000002", "9000000001", "9000000003"} {
		_, err := svc.Create(ctx, Contact{Phone: phone, Name: "c-" + phone})
		require.NoError(t, err)
	}

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "9000000001", list[0].Phone)
	assert.Equal(t, "9000000003", list[2].Phone)
}
