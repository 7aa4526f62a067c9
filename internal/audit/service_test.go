package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sulaiman-F/wthqh-backend/internal/shared/apperr"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/auth"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/telemetry"
)

func TestParseLimit(t *testing.T) {
	cases := map[string]int{
		"":     DefaultLimit,
		"abc":  DefaultLimit,
		"0":    DefaultLimit,
		"-5":   DefaultLimit,
		"10":   10,
		"200":  200,
		"5000": MaxLimit,
	}
	for raw, want := range cases {
		assert.Equal(t, want, ParseLimit(raw), "limit %q", raw)
	}
}

func TestListRequiresAdmin(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	_, err := svc.List(context.Background(), auth.Principal{UserID: "u", Role: auth.RoleMember}, 10)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestRecordAndListNewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	base := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		svc.Now = func() time.Time { return at }
		svc.Record(context.Background(), "u1", ActionFolderCreate, EntityFolder, fmt.Sprintf("f%d", i), map[string]any{"name": i})
	}

	entries, err := svc.List(context.Background(), auth.Principal{UserID: "admin", Role: auth.RoleAdmin}, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "f4", entries[0].EntityID)
	assert.Equal(t, "f2", entries[2].EntityID)
}

type failingRepo struct{ *MemoryRepo }

func (*failingRepo) Insert(context.Context, Entry) error { return errors.New("db down") }

func TestRecordSwallowsFailures(t *testing.T) {
	telemetry.SetOutput(io.Discard)
	defer telemetry.SetOutput(os.Stdout)

	svc := NewService(&failingRepo{MemoryRepo: NewMemoryRepo()})
	assert.NotPanics(t, func() {
		svc.Record(context.Background(), "u1", ActionShareCreate, EntityShare, "s1", nil)
	})

	var nilSvc *Service
	assert.NotPanics(t, func() {
		nilSvc.Record(context.Background(), "u1", ActionShareCreate, EntityShare, "s1", nil)
	})
}
