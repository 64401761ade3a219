package registration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"medregistry/internal/doctors"
	"medregistry/pkg/platform/sentinel"
)

func TestMemorySessionStore_GetMissing(t *testing.T) {
	store := NewMemorySessionStore()

	_, err := store.Get(context.Background(), "absent")
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestMemorySessionStore_PutOverwrites(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	first := WizardSession{
		Key:             "sess-1",
		PersonalDetails: &doctors.Profile{ContactNumber: "9876543210"},
		StartedAt:       time.Now().Add(-time.Hour),
	}
	require.NoError(t, store.Put(ctx, first))

	second := WizardSession{
		Key:             "sess-1",
		PersonalDetails: &doctors.Profile{ContactNumber: "9123456789"},
		StartedAt:       time.Now(),
	}
	require.NoError(t, store.Put(ctx, second))

	got, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, "9123456789", got.PersonalDetails.ContactNumber)
	require.Nil(t, got.Certification)
	require.Empty(t, got.Documents)
}

func TestMemorySessionStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	require.NoError(t, store.Put(ctx, WizardSession{
		Key:             "sess-1",
		PersonalDetails: &doctors.Profile{ContactNumber: "9876543210"},
	}))

	got, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	got.PersonalDetails.ContactNumber = "mutated"

	again, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, "9876543210", again.PersonalDetails.ContactNumber)
}

func TestMemorySessionStore_UpdateMissing(t *testing.T) {
	store := NewMemorySessionStore()

	err := store.Update(context.Background(), "absent", func(*WizardSession) error { return nil })
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestMemorySessionStore_UpdateAbortsOnError(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	require.NoError(t, store.Put(ctx, WizardSession{Key: "sess-1"}))

	wantErr := sentinel.ErrInvalidState
	err := store.Update(ctx, "sess-1", func(session *WizardSession) error {
		session.Documents = append(session.Documents, StagedDocument{DocType: "aadhaar-card"})
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)

	got, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.Empty(t, got.Documents)
}

func TestMemorySessionStore_ConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	require.NoError(t, store.Put(ctx, WizardSession{Key: "sess-1"}))

	const appenders = 32
	var wg sync.WaitGroup
	for i := 0; i < appenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.Update(ctx, "sess-1", func(session *WizardSession) error {
				session.Documents = append(session.Documents, StagedDocument{DocType: "pan-card"})
				return nil
			})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, got.Documents, appenders)
}

func TestMemorySessionStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	require.NoError(t, store.Put(ctx, WizardSession{Key: "sess-1"}))

	require.NoError(t, store.Delete(ctx, "sess-1"))
	_, err := store.Get(ctx, "sess-1")
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	// Deleting an absent session is not an error.
	require.NoError(t, store.Delete(ctx, "sess-1"))
}
