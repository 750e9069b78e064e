//go:build integration

package repositories_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/mantavyam/jacob-web/internal/database"
	"github.com/mantavyam/jacob-web/internal/models"
	"github.com/mantavyam/jacob-web/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testDB *database.DB

// TestMain starts one PostgreSQL container for the package and applies the
// embedded migrations to it.
func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("womenrise"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start postgres container: %v\n", err)
		os.Exit(1)
	}

	code := func() int {
		defer func() { _ = container.Terminate(ctx) }()

		connStr, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to get connection string: %v\n", err)
			return 1
		}

		pool, err := pgxpool.New(ctx, connStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create connection pool: %v\n", err)
			return 1
		}
		defer pool.Close()

		sqlDB := stdlib.OpenDB(*pool.Config().ConnConfig)
		err = database.Migrate(ctx, sqlDB)
		_ = sqlDB.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
			return 1
		}

		testDB = database.Wrap(pool, nil)
		return m.Run()
	}()

	os.Exit(code)
}

func cleanup(t *testing.T) {
	t.Helper()
	_, err := testDB.Pool.Exec(context.Background(), "TRUNCATE TABLE complaint_status_history, complaints RESTART IDENTITY CASCADE")
	require.NoError(t, err)
}

func newComplaint(name, state, email, mobile string) *models.Complaint {
	return &models.Complaint{
		Username:    name,
		DateOfBirth: time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC),
		Address:     "12 MG Road",
		State:       state,
		District:    "Central",
		Pin:         "560001",
		Email:       email,
		Mobile:      mobile,
		Gender:      "Female",
		Complaint:   "Facing harassment at workplace, need assistance.",
	}
}

func seed(t *testing.T, repo *repositories.ComplaintRepository, c *models.Complaint) *models.Complaint {
	t.Helper()
	created, err := repo.Create(context.Background(), c)
	require.NoError(t, err)
	return created
}

// reload reads a complaint back through the contact lookup.
func reload(t *testing.T, repo *repositories.ComplaintRepository, c *models.Complaint) *models.Complaint {
	t.Helper()
	found, err := repo.FindByContact(context.Background(), models.CheckQuery{RefID: c.ID, Email: c.Email})
	require.NoError(t, err)
	require.Len(t, found, 1)
	return found[0]
}

func TestComplaintRepository_Create(t *testing.T) {
	cleanup(t)
	repo := repositories.NewComplaintRepository(testDB)

	religion := "Hindu"
	c := newComplaint("Asha Devi", "Karnataka", "asha@example.com", "9876543210")
	c.Religion = &religion

	first := seed(t, repo, c)
	assert.Positive(t, first.ID)
	assert.Equal(t, models.StatusPending, first.Status)
	assert.WithinDuration(t, time.Now(), first.SubmissionDate, time.Minute)
	require.NotNil(t, first.Religion)
	assert.Equal(t, "Hindu", *first.Religion)
	assert.Nil(t, first.Caste)
	assert.Equal(t, "1990-05-01", first.DateOfBirth.Format("2006-01-02"))

	second := seed(t, repo, newComplaint("Meera", "Kerala", "meera@example.com", "9123456780"))
	assert.Greater(t, second.ID, first.ID)

	got := reload(t, repo, first)
	assert.Equal(t, "Asha Devi", got.Username)
}

func TestComplaintRepository_Create_ConstraintViolation(t *testing.T) {
	cleanup(t)
	repo := repositories.NewComplaintRepository(testDB)

	c := newComplaint("Asha Devi", "Karnataka", "asha@example.com", "98765")
	_, err := repo.Create(context.Background(), c)
	assert.ErrorIs(t, err, models.ErrConstraint)
}

func TestComplaintRepository_List(t *testing.T) {
	cleanup(t)
	ctx := context.Background()
	repo := repositories.NewComplaintRepository(testDB)

	a := seed(t, repo, newComplaint("A", "Karnataka", "a@example.com", "9000000001"))
	b := seed(t, repo, newComplaint("B", "Kerala", "b@example.com", "9000000002"))
	c := seed(t, repo, newComplaint("C", "Karnataka", "c@example.com", "9000000003"))

	_, err := repo.UpdateStatus(ctx, c.ID, models.StatusResolved, nil)
	require.NoError(t, err)

	t.Run("newest first", func(t *testing.T) {
		rows, total, err := repo.List(ctx, models.ListFilter{Limit: 50})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		require.Len(t, rows, 3)
		assert.Equal(t, []int64{c.ID, b.ID, a.ID}, []int64{rows[0].ID, rows[1].ID, rows[2].ID})
	})

	t.Run("pagination after ordering", func(t *testing.T) {
		rows, total, err := repo.List(ctx, models.ListFilter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		require.Len(t, rows, 1)
		assert.Equal(t, b.ID, rows[0].ID)
	})

	t.Run("filters combine with AND", func(t *testing.T) {
		rows, total, err := repo.List(ctx, models.ListFilter{Status: models.StatusPending, State: "Karnataka", Limit: 50})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, rows, 1)
		assert.Equal(t, a.ID, rows[0].ID)
	})

	t.Run("no match", func(t *testing.T) {
		rows, total, err := repo.List(ctx, models.ListFilter{State: "Goa", Limit: 50})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, rows)
	})
}

func TestComplaintRepository_Stats(t *testing.T) {
	cleanup(t)
	ctx := context.Background()
	repo := repositories.NewComplaintRepository(testDB)

	seed(t, repo, newComplaint("A", "Karnataka", "a@example.com", "9000000001"))
	seed(t, repo, newComplaint("B", "Kerala", "b@example.com", "9000000002"))
	c := seed(t, repo, newComplaint("C", "Karnataka", "c@example.com", "9000000003"))
	d := seed(t, repo, newComplaint("D", "Assam", "d@example.com", "9000000004"))

	_, err := repo.UpdateStatus(ctx, c.ID, models.StatusInProgress, nil)
	require.NoError(t, err)
	_, err = repo.UpdateStatus(ctx, d.ID, models.StatusClosed, nil)
	require.NoError(t, err)

	stats, err := repo.Stats(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)

	assert.EqualValues(t, 4, stats.Total)
	assert.EqualValues(t, 2, stats.Pending)
	assert.EqualValues(t, 1, stats.InProgress)
	assert.EqualValues(t, 0, stats.Resolved)
	assert.EqualValues(t, 1, stats.Closed)
	assert.EqualValues(t, 4, stats.Recent24h)
	assert.Equal(t, stats.Total, stats.Pending+stats.InProgress+stats.Resolved+stats.Closed)
	assert.Equal(t, []models.StateCount{
		{State: "Karnataka", Count: 2},
		{State: "Assam", Count: 1},
		{State: "Kerala", Count: 1},
	}, stats.ByState)

	future, err := repo.Stats(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, future.Recent24h)
}

func TestComplaintRepository_Stats_Empty(t *testing.T) {
	cleanup(t)
	repo := repositories.NewComplaintRepository(testDB)

	stats, err := repo.Stats(context.Background(), time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Empty(t, stats.ByState)
}

func TestComplaintRepository_UpdateStatus(t *testing.T) {
	cleanup(t)
	ctx := context.Background()
	repo := repositories.NewComplaintRepository(testDB)

	c := seed(t, repo, newComplaint("A", "Karnataka", "a@example.com", "9000000001"))
	ip := "203.0.113.7"

	n, err := repo.UpdateStatus(ctx, c.ID, models.StatusInProgress, &ip)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repo.UpdateStatus(ctx, c.ID, models.StatusResolved, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got := reload(t, repo, c)
	assert.Equal(t, models.StatusResolved, got.Status)
	assert.Equal(t, c.SubmissionDate.UTC(), got.SubmissionDate.UTC(), "submission date never changes")

	history, err := repo.History(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.StatusPending, history[0].OldStatus)
	assert.Equal(t, models.StatusInProgress, history[0].NewStatus)
	require.NotNil(t, history[0].ChangedByIP)
	assert.Equal(t, ip, *history[0].ChangedByIP)
	assert.Equal(t, models.StatusInProgress, history[1].OldStatus)
	assert.Equal(t, models.StatusResolved, history[1].NewStatus)
	assert.Nil(t, history[1].ChangedByIP)
}

func TestComplaintRepository_UpdateStatus_Errors(t *testing.T) {
	cleanup(t)
	ctx := context.Background()
	repo := repositories.NewComplaintRepository(testDB)

	c := seed(t, repo, newComplaint("A", "Karnataka", "a@example.com", "9000000001"))

	_, err := repo.UpdateStatus(ctx, c.ID, "Done", nil)
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	_, err = repo.UpdateStatus(ctx, 999999, models.StatusClosed, nil)
	assert.ErrorIs(t, err, models.ErrNotFound)

	got := reload(t, repo, c)
	assert.Equal(t, models.StatusPending, got.Status)

	history, err := repo.History(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestComplaintRepository_History_UnknownComplaint(t *testing.T) {
	cleanup(t)
	repo := repositories.NewComplaintRepository(testDB)

	_, err := repo.History(context.Background(), 424242)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestComplaintRepository_FindByContact(t *testing.T) {
	cleanup(t)
	ctx := context.Background()
	repo := repositories.NewComplaintRepository(testDB)

	a := seed(t, repo, newComplaint("A", "Karnataka", "asha@example.com", "9000000001"))
	b := seed(t, repo, newComplaint("A", "Karnataka", "asha@example.com", "9000000002"))
	seed(t, repo, newComplaint("M", "Kerala", "meera@example.com", "9000000003"))

	byEmail, err := repo.FindByContact(ctx, models.CheckQuery{Email: "asha@example.com"})
	require.NoError(t, err)
	require.Len(t, byEmail, 2)
	assert.Equal(t, b.ID, byEmail[0].ID)

	byMobile, err := repo.FindByContact(ctx, models.CheckQuery{Mobile: "9000000001"})
	require.NoError(t, err)
	require.Len(t, byMobile, 1)
	assert.Equal(t, a.ID, byMobile[0].ID)

	narrowed, err := repo.FindByContact(ctx, models.CheckQuery{RefID: a.ID, Email: "asha@example.com"})
	require.NoError(t, err)
	require.Len(t, narrowed, 1)
	assert.Equal(t, a.ID, narrowed[0].ID)

	wrongRef, err := repo.FindByContact(ctx, models.CheckQuery{RefID: a.ID, Email: "meera@example.com"})
	require.NoError(t, err)
	assert.Empty(t, wrongRef)

	none, err := repo.FindByContact(ctx, models.CheckQuery{})
	require.NoError(t, err)
	assert.Empty(t, none)
}
