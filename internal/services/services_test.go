package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/justsurfingit/job-portal/internal/auth"
	"github.com/justsurfingit/job-portal/internal/database"
	"github.com/justsurfingit/job-portal/internal/dtos"
	"github.com/justsurfingit/job-portal/internal/events"
	"github.com/justsurfingit/job-portal/internal/models"
	"github.com/justsurfingit/job-portal/internal/storage"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var testSecret = auth.Secret("0123456789abcdef0123456789abcdef")

type memStore struct {
	mu    sync.Mutex
	seq   int
	blobs map[string][]byte
}

func (m *memStore) Store(_ context.Context, folder string, b storage.Blob) (string, error) {
	data, err := io.ReadAll(b.Body)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.blobs == nil {
		m.blobs = map[string][]byte{}
	}
	m.seq++
	ref := fmt.Sprintf("mem://%s/%d-%s", folder, m.seq, b.Filename)
	m.blobs[ref] = data
	return ref, nil
}

func (m *memStore) Delete(_ context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, ref)
	return nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}

type testEnv struct {
	DB           *gorm.DB
	Events       *events.Recorder
	Blobs        *memStore
	Users        *UserService
	Companies    *CompanyService
	Jobs         *JobService
	Applications *ApplicationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Connect("sqlite://:memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	hasher, err := auth.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)
	sessions, err := auth.NewSessionManager(testSecret, time.Hour)
	require.NoError(t, err)

	gate := NewGate(db)
	rec := &events.Recorder{}
	blobs := &memStore{}
	return &testEnv{
		DB:           db,
		Events:       rec,
		Blobs:        blobs,
		Users:        NewUserService(db, gate, hasher, sessions, blobs),
		Companies:    NewCompanyService(db, gate, blobs),
		Jobs:         NewJobService(db, gate),
		Applications: NewApplicationService(db, gate, rec),
	}
}

// register creates an account and returns the identity a session for it
// would carry.
func (e *testEnv) register(t *testing.T, email string, role models.Role) auth.Identity {
	t.Helper()
	acc, err := e.Users.Register(context.Background(), dtos.RegisterRequest{
		FullName:    "Test " + string(role),
		Email:       email,
		Password:    "correct-horse",
		Role:        string(role),
		PhoneNumber: "5550100",
	}, nil)
	require.NoError(t, err)
	return auth.Identity{AccountID: acc.ID, Role: acc.Role}
}

func (e *testEnv) company(t *testing.T, owner auth.Identity, name string) *models.Company {
	t.Helper()
	c, err := e.Companies.Register(context.Background(), owner, dtos.CompanyRegisterRequest{CompanyName: name})
	require.NoError(t, err)
	return c
}

func (e *testEnv) job(t *testing.T, owner auth.Identity, company *models.Company, title string) *models.Job {
	t.Helper()
	j, err := e.Jobs.Post(context.Background(), owner, jobRequest(company, title))
	require.NoError(t, err)
	return j
}

func jobRequest(company *models.Company, title string) dtos.JobPostRequest {
	return dtos.JobPostRequest{
		Title:           title,
		Description:     "Build and run APIs",
		Requirements:    "go, sql",
		Salary:          12,
		Location:        "Remote",
		JobType:         "Full Time",
		ExperienceLevel: 2,
		OpenPositions:   1,
		CompanyID:       company.ID.String(),
	}
}
