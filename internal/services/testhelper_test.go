package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/models"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// A pooled second connection would get its own empty in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.TokenSession{},
		&models.Plan{},
		&models.ClientProfile{},
		&models.Keyword{},
		&models.KeywordRanking{},
		&models.AdminPaymentMethod{},
		&models.Payment{},
		&models.Task{},
		&models.Report{},
		&models.Notification{},
	))
	return db
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func seedAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	admin := &models.User{
		Email:        "admin@example.com",
		PasswordHash: "x",
		FirstName:    "Ada",
		LastName:     "Admin",
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	require.NoError(t, db.Create(admin).Error)
	return admin
}

func seedClient(t *testing.T, db *gorm.DB, email, company string) *models.ClientProfile {
	t.Helper()
	user := &models.User{
		Email:        email,
		PasswordHash: "x",
		FirstName:    "Casey",
		LastName:     "Client",
		Phone:        "555-0100",
		Role:         models.RoleClient,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)

	profile := &models.ClientProfile{
		UserID:      user.ID,
		User:        *user,
		CompanyName: company,
		WebsiteURL:  "https://example.com",
		Industry:    "retail",
		IsActive:    true,
	}
	require.NoError(t, db.Omit("User").Create(profile).Error)
	profile.User = *user
	return profile
}

func seedPayment(t *testing.T, db *gorm.DB, clientID uuid.UUID, amount string, status models.PaymentStatus, due models.Date, paid *models.Date) *models.Payment {
	t.Helper()
	payment := &models.Payment{
		ClientID:      clientID,
		Amount:        decimal.RequireFromString(amount),
		Currency:      "USD",
		Status:        status,
		DueDate:       due,
		PaidDate:      paid,
		InvoiceNumber: "INV-TEST-" + uuid.NewString()[:8],
	}
	require.NoError(t, db.Create(payment).Error)
	return payment
}

func newClientServiceForTest(db *gorm.DB) *ClientService {
	return NewClientService(
		db,
		repository.NewClientRepository(db),
		repository.NewUserRepository(db),
		repository.NewPlanRepository(db),
		repository.NewKeywordRepository(db),
		repository.NewPaymentRepository(db),
		NewPasswordService(),
		testLogger(),
	)
}

func newPaymentServiceForTest(db *gorm.DB) *PaymentService {
	return NewPaymentService(
		db,
		repository.NewPaymentRepository(db),
		repository.NewClientRepository(db),
		repository.NewPlanRepository(db),
		testLogger(),
	)
}

func newKeywordServiceForTest(db *gorm.DB) *KeywordService {
	return NewKeywordService(
		repository.NewKeywordRepository(db),
		repository.NewClientRepository(db),
		testLogger(),
	)
}

func newNotificationServiceForTest(db *gorm.DB) *NotificationService {
	return NewNotificationService(
		db,
		repository.NewNotificationRepository(db),
		repository.NewClientRepository(db),
		testLogger(),
	)
}

func newTaskServiceForTest(db *gorm.DB) *TaskService {
	return NewTaskService(
		repository.NewTaskRepository(db),
		repository.NewClientRepository(db),
		testLogger(),
	)
}

func newDashboardServiceForTest(db *gorm.DB) *DashboardService {
	return NewDashboardService(
		repository.NewClientRepository(db),
		repository.NewPaymentRepository(db),
		repository.NewKeywordRepository(db),
		repository.NewReportRepository(db),
		testLogger(),
	)
}

func newAuthServiceForTest(db *gorm.DB) (*AuthService, *repository.UserRepository) {
	users := repository.NewUserRepository(db)
	tokens := NewTokenService("access-secret", "refresh-secret", time.Hour, 24*time.Hour, nil, testLogger())
	return NewAuthService(users, tokens, NewPasswordService(), testLogger()), users
}

func countNotifications(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&n).Error)
	return n
}

func testCtx() context.Context {
	return context.Background()
}
