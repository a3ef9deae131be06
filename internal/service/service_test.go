package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/sportsmap-api/internal/models"
	"github.com/pribylovaa/sportsmap-api/internal/session"
	"github.com/pribylovaa/sportsmap-api/internal/storage"
	"github.com/pribylovaa/sportsmap-api/internal/token"
	"github.com/pribylovaa/sportsmap-api/mocks"
)

// Unit-тесты сервисного слоя: хранилище подменяется gomock-моком единицы
// работы (mocks.MockTx), сессии выпускает настоящий session.Manager.

var errDB = errors.New("db down")

func newSvc(t *testing.T) (*Service, *mocks.MockTx, context.Context) {
	t.Helper()

	codec, err := token.NewCodec("unit-test-secret-unit-test-secret", "HS256")
	require.NoError(t, err)

	svc := New(session.New(codec, 20*time.Minute))
	svc.bcryptCost = bcrypt.MinCost

	ctrl := gomock.NewController(t)
	tx := mocks.NewMockTx(ctrl)

	return svc, tx, storage.WithTx(context.Background(), tx)
}

func mustHash(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func ptr[T any](v T) *T { return &v }

func testUser(t *testing.T) *models.User {
	t.Helper()
	return &models.User{
		ID:           uuid.New(),
		FirstName:    "Ivan",
		LastName:     "Petrov",
		Email:        "user@example.com",
		PasswordHash: mustHash(t, "secret-pass"),
	}
}

func TestRegister_OK(t *testing.T) {
	t.Parallel()

	svc, tx, ctx := newSvc(t)

	tx.EXPECT().UserByEmail(gomock.Any(), "user@example.com").Return(nil, storage.ErrNotFound)
	tx.EXPECT().SaveUser(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *models.User) error {
		require.NotEqual(t, uuid.Nil, u.ID)
		require.Equal(t, "Ivan", u.FirstName)
		require.Equal(t, "user@example.com", u.Email)
		require.True(t, checkPassword(u.PasswordHash, "secret-pass"))
		require.False(t, u.CreatedAt.IsZero())
		return nil
	})

	u, err := svc.Register(ctx, RegisterInput{
		FirstName: " Ivan ",
		LastName:  "Petrov",
		Email:     " User@Example.com ",
		Password:  "secret-pass",
	})
	require.NoError(t, err)
	require.Equal(t, "user@example.com", u.Email)
}

func TestRegister_EmailTaken(t *testing.T) {
	t.Parallel()

	in := RegisterInput{FirstName: "A", LastName: "B", Email: "user@example.com", Password: "secret-pass"}

	t.Run("precheck", func(t *testing.T) {
		t.Parallel()

		svc, tx, ctx := newSvc(t)
		tx.EXPECT().UserByEmail(gomock.Any(), gomock.Any()).Return(&models.User{}, nil)

		_, err := svc.Register(ctx, in)
		require.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("unique_violation", func(t *testing.T) {
		t.Parallel()

		svc, tx, ctx := newSvc(t)
		tx.EXPECT().UserByEmail(gomock.Any(), gomock.Any()).Return(nil, storage.ErrNotFound)
		tx.EXPECT().SaveUser(gomock.Any(), gomock.Any()).Return(storage.ErrAlreadyExists)

		_, err := svc.Register(ctx, in)
		require.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"empty_first_name", RegisterInput{FirstName: " ", LastName: "B", Email: "a@b.c", Password: "secret-pass"}, "first_name"},
		{"empty_last_name", RegisterInput{FirstName: "A", Email: "a@b.c", Password: "secret-pass"}, "last_name"},
		{"bad_email", RegisterInput{FirstName: "A", LastName: "B", Email: "not-an-email", Password: "secret-pass"}, "email"},
		{"display_name_email", RegisterInput{FirstName: "A", LastName: "B", Email: "Bob <a@b.c>", Password: "secret-pass"}, "email"},
		{"short_password", RegisterInput{FirstName: "A", LastName: "B", Email: "a@b.c", Password: "short"}, "password"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, _, ctx := newSvc(t)

			_, err := svc.Register(ctx, tt.in)
			require.ErrorIs(t, err, ErrValidation)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			require.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestRegister_NoTx(t *testing.T) {
	t.Parallel()

	svc, _, _ := newSvc(t)

	_, err := svc.Register(context.Background(), RegisterInput{})
	require.ErrorIs(t, err, storage.ErrNoTx)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()

		svc, tx, ctx := newSvc(t)
		user := testUser(t)
		tx.EXPECT().UserByEmail(gomock.Any(), "user@example.com").Return(user, nil)

		got, sess, err := svc.Login(ctx, "user@example.com", "secret-pass")
		require.NoError(t, err)
		require.Equal(t, user.ID, got.ID)
		require.Equal(t, "user@example.com", sess.Principal)
		require.NotEmpty(t, sess.AccessToken)
		require.NotEmpty(t, sess.RefreshToken)
	})

	t.Run("wrong_password", func(t *testing.T) {
		t.Parallel()

		svc, tx, ctx := newSvc(t)
		tx.EXPECT().UserByEmail(gomock.Any(), gomock.Any()).Return(testUser(t), nil)

		_, _, err := svc.Login(ctx, "user@example.com", "wrong-pass")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown_user", func(t *testing.T) {
		t.Parallel()

		svc, tx, ctx := newSvc(t)
		tx.EXPECT().UserByEmail(gomock.Any(), gomock.Any()).Return(nil, storage.ErrNotFound)
		require.Empty(t, svc.dummyHash)

		_, _, err := svc.Login(ctx, "nobody@example.com", "secret-pass")
		require.ErrorIs(t, err, ErrInvalidCredentials)

		// Для неизвестного email тоже выполняется сравнение bcrypt,
		// причём с той же стоимостью, что и для настоящих хэшей.
		require.NotEmpty(t, svc.dummyHash)
		cost, err := bcrypt.Cost([]byte(svc.dummyHash))
		require.NoError(t, err)
		require.Equal(t, svc.bcryptCost, cost)
	})

	t.Run("empty_password", func(t *testing.T) {
		t.Parallel()

		svc, _, ctx := newSvc(t)

		_, _, err := svc.Login(ctx, "user@example.com", "")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("storage_error", func(t *testing.T) {
		t.Parallel()

		svc, tx, ctx := newSvc(t)
		tx.EXPECT().UserByEmail(gomock.Any(), gomock.Any()).Return(nil, errDB)

		_, _, err := svc.Login(ctx, "user@example.com", "secret-pass")
		require.ErrorIs(t, err, errDB)
		require.NotErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()

		svc, tx, ctx := newSvc(t)
		user := testUser(t)

		orig, err := svc.sessions.CreateSession(user.Email)
		require.NoError(t, err)

		tx.EXPECT().UserByEmail(gomock.Any(), user.Email).Return(user, nil)

		got, sess, err := svc.Refresh(ctx, orig.AccessToken, orig.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, user.ID, got.ID)
		require.Equal(t, user.Email, sess.Principal)
	})

	t.Run("principal_deleted", func(t *testing.T) {
		t.Parallel()

		svc, tx, ctx := newSvc(t)

		orig, err := svc.sessions.CreateSession("gone@example.com")
		require.NoError(t, err)

		tx.EXPECT().UserByEmail(gomock.Any(), "gone@example.com").Return(nil, storage.ErrNotFound)

		_, _, err = svc.Refresh(ctx, orig.AccessToken, orig.RefreshToken)
		require.ErrorIs(t, err, session.ErrInvalidAccessToken)
	})

	t.Run("bad_binding", func(t *testing.T) {
		t.Parallel()

		svc, _, ctx := newSvc(t)

		a, err := svc.sessions.CreateSession("a@example.com")
		require.NoError(t, err)
		b, err := svc.sessions.CreateSession("b@example.com")
		require.NoError(t, err)

		_, _, err = svc.Refresh(ctx, a.AccessToken, b.RefreshToken)
		require.ErrorIs(t, err, session.ErrInvalidRefreshToken)
	})
}

func TestLogout_RevocationDisabled(t *testing.T) {
	t.Parallel()

	svc, _, ctx := newSvc(t)

	sess, err := svc.sessions.CreateSession("user@example.com")
	require.NoError(t, err)

	err = svc.Logout(ctx, sess.AccessToken)
	require.ErrorIs(t, err, session.ErrRevocationUnavailable)
}

func TestCurrentUser(t *testing.T) {
	t.Parallel()

	t.Run("no_principal", func(t *testing.T) {
		t.Parallel()

		svc, _, ctx := newSvc(t)

		_, err := svc.CurrentUser(ctx)
		require.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("principal_deleted", func(t *testing.T) {
		t.Parallel()

		svc, tx, ctx := newSvc(t)
		tx.EXPECT().UserByEmail(gomock.Any(), "gone@example.com").Return(nil, storage.ErrNotFound)

		_, err := svc.CurrentUser(session.WithPrincipal(ctx, "gone@example.com"))
		require.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestResolveUser(t *testing.T) {
	t.Parallel()

	t.Run("caches_user_for_request", func(t *testing.T) {
		t.Parallel()

		svc, tx, ctx := newSvc(t)
		user := testUser(t)
		// Одно чтение на запрос, дальше запись берётся из контекста.
		tx.EXPECT().UserByEmail(gomock.Any(), user.Email).Return(user, nil).Times(1)

		ctx, err := svc.ResolveUser(session.WithPrincipal(ctx, user.Email))
		require.NoError(t, err)

		got, err := svc.CurrentUser(ctx)
		require.NoError(t, err)
		require.Equal(t, user.ID, got.ID)
	})

	t.Run("principal_deleted", func(t *testing.T) {
		t.Parallel()

		svc, tx, ctx := newSvc(t)
		tx.EXPECT().UserByEmail(gomock.Any(), "gone@example.com").Return(nil, storage.ErrNotFound)

		_, err := svc.ResolveUser(session.WithPrincipal(ctx, "gone@example.com"))
		require.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestUpdateSelf(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()

		svc, tx, ctx := newSvc(t)
		user := testUser(t)
		ctx = session.WithPrincipal(ctx, user.Email)

		tx.EXPECT().UserByEmail(gomock.Any(), user.Email).Return(user, nil)
		tx.EXPECT().UpdateUser(gomock.Any(), user.ID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, upd models.UserUpdate) (*models.User, error) {
				require.Equal(t, "Petr", *upd.FirstName)
				require.Nil(t, upd.LastName)
				require.True(t, checkPassword(*upd.PasswordHash, "new-secret-pass"))

				out := *user
				out.FirstName = *upd.FirstName
				return &out, nil
			})

		got, err := svc.UpdateSelf(ctx, UpdateUserInput{FirstName: ptr("Petr"), Password: ptr("new-secret-pass")})
		require.NoError(t, err)
		require.Equal(t, "Petr", got.FirstName)
	})

	t.Run("blank_name", func(t *testing.T) {
		t.Parallel()

		svc, tx, ctx := newSvc(t)
		user := testUser(t)
		ctx = session.WithPrincipal(ctx, user.Email)
		tx.EXPECT().UserByEmail(gomock.Any(), user.Email).Return(user, nil)

		_, err := svc.UpdateSelf(ctx, UpdateUserInput{LastName: ptr("  ")})
		require.ErrorIs(t, err, ErrValidation)
	})
}

func TestDeleteSelf(t *testing.T) {
	t.Parallel()

	svc, tx, ctx := newSvc(t)
	user := testUser(t)
	ctx = session.WithPrincipal(ctx, user.Email)

	tx.EXPECT().UserByEmail(gomock.Any(), user.Email).Return(user, nil)
	tx.EXPECT().DeleteUser(gomock.Any(), user.ID).Return(nil)

	require.NoError(t, svc.DeleteSelf(ctx))
}

func TestUserByID_NotFound(t *testing.T) {
	t.Parallel()

	svc, tx, ctx := newSvc(t)
	id := uuid.New()
	tx.EXPECT().UserByID(gomock.Any(), id).Return(nil, storage.ErrNotFound)

	_, err := svc.UserByID(ctx, id)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestParseID(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	got, err := ParseID(id.String())
	require.NoError(t, err)
	require.Equal(t, id, got)

	_, err = ParseID("42")
	require.ErrorIs(t, err, ErrInvalidID)
}
