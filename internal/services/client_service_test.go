package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/models"
)

func strPtr(s string) *string { return &s }

func TestCreateClientValidatesRequiredFields(t *testing.T) {
	db := newTestDB(t)
	svc := newClientServiceForTest(db)

	_, err := svc.Create(testCtx(), CreateClientInput{Email: "a@b.com"})
	validation, ok := IsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, validation.Fields, "password")
	assert.Contains(t, validation.Fields, "first_name")
	assert.Contains(t, validation.Fields, "last_name")
	assert.Contains(t, validation.Fields, "company_name")
}

func TestCreateClientRejectsDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := newClientServiceForTest(db)
	seedClient(t, db, "taken@example.com", "Acme")

	_, err := svc.Create(testCtx(), CreateClientInput{
		Email:       "Taken@Example.com",
		Password:    "secret123",
		FirstName:   "New",
		LastName:    "Person",
		CompanyName: "Other Co",
	})
	_, ok := IsConflictError(err)
	assert.True(t, ok)
}

func TestCreateClientProvisionsUserAndProfile(t *testing.T) {
	db := newTestDB(t)
	svc := newClientServiceForTest(db)

	profile, err := svc.Create(testCtx(), CreateClientInput{
		Email:       "new@example.com",
		Password:    "secret123",
		FirstName:   "New",
		LastName:    "Person",
		CompanyName: "New Co",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleClient, profile.User.Role)
	assert.True(t, profile.IsActive)

	var userCount int64
	require.NoError(t, db.Model(&models.User{}).Where("email = ?", "new@example.com").Count(&userCount).Error)
	assert.EqualValues(t, 1, userCount)
}

func TestUpdateWithoutChangesCreatesNoNotification(t *testing.T) {
	db := newTestDB(t)
	svc := newClientServiceForTest(db)
	admin := seedAdmin(t, db)
	profile := seedClient(t, db, "c@example.com", "Acme")

	_, err := svc.Update(testCtx(), admin, profile.ID, UpdateClientInput{
		CompanyName: strPtr("Acme"),
		Notes:       strPtr("internal note"),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 0, countNotifications(t, db))
}

func TestAdminUpdateNotifiesClient(t *testing.T) {
	db := newTestDB(t)
	svc := newClientServiceForTest(db)
	admin := seedAdmin(t, db)
	profile := seedClient(t, db, "c@example.com", "Acme")

	_, err := svc.Update(testCtx(), admin, profile.ID, UpdateClientInput{
		CompanyName: strPtr("Acme Global"),
		FirstName:   strPtr("Chris"),
	})
	require.NoError(t, err)

	var notification models.Notification
	require.NoError(t, db.First(&notification).Error)
	assert.Equal(t, models.NotificationBusinessChange, notification.NotificationType)
	assert.Equal(t, models.AudienceClient, notification.TargetAudience)
	assert.Equal(t, "Profile Updated by Admin", notification.Title)
	// Business fields are reported before personal ones.
	assert.Equal(t, models.StringList{"company_name", "first_name"}, notification.ChangedFields)
	assert.Equal(t, "Acme", notification.OldValues["company_name"])
	assert.Equal(t, "Acme Global", notification.NewValues["company_name"])
}

func TestSelfUpdateNotifiesAdmin(t *testing.T) {
	db := newTestDB(t)
	svc := newClientServiceForTest(db)
	profile := seedClient(t, db, "c@example.com", "Acme")

	_, err := svc.SelfUpdate(testCtx(), &profile.User, SelfUpdateInput{
		Phone: strPtr("555-0199"),
	})
	require.NoError(t, err)

	var notification models.Notification
	require.NoError(t, db.First(&notification).Error)
	assert.Equal(t, models.NotificationProfileChange, notification.NotificationType)
	assert.Equal(t, models.AudienceAdmin, notification.TargetAudience)
	assert.Equal(t, "Profile Updated by Client", notification.Title)
	assert.Contains(t, notification.Message, "Acme has updated their profile")
}

func TestChangeSummaryTruncatesAfterThreeLabels(t *testing.T) {
	db := newTestDB(t)
	svc := newClientServiceForTest(db)
	admin := seedAdmin(t, db)
	profile := seedClient(t, db, "c@example.com", "Acme")

	_, err := svc.Update(testCtx(), admin, profile.ID, UpdateClientInput{
		CompanyName: strPtr("B"),
		WebsiteURL:  strPtr("https://b.example.com"),
		Industry:    strPtr("finance"),
		City:        strPtr("Berlin"),
		Country:     strPtr("Germany"),
	})
	require.NoError(t, err)

	var notification models.Notification
	require.NoError(t, db.First(&notification).Error)
	assert.Contains(t, notification.Message, "Company Name, Website URL, Industry and 2 more")
	assert.Len(t, notification.ChangedFields, 5)
}

func TestUpdatePlanAssignmentIsSilent(t *testing.T) {
	db := newTestDB(t)
	svc := newClientServiceForTest(db)
	admin := seedAdmin(t, db)
	profile := seedClient(t, db, "c@example.com", "Acme")

	plan := &models.Plan{Name: "Starter", PlanType: models.PlanSEOStarter}
	require.NoError(t, db.Create(plan).Error)

	updated, err := svc.Update(testCtx(), admin, profile.ID, UpdateClientInput{PlanID: &plan.ID})
	require.NoError(t, err)
	require.NotNil(t, updated.PlanID)
	assert.Equal(t, plan.ID, *updated.PlanID)
	assert.EqualValues(t, 0, countNotifications(t, db))

	updated, err = svc.Update(testCtx(), admin, profile.ID, UpdateClientInput{RemovePlan: true})
	require.NoError(t, err)
	assert.Nil(t, updated.PlanID)
	assert.EqualValues(t, 0, countNotifications(t, db))
}

func TestUpdateUnknownPlanFails(t *testing.T) {
	db := newTestDB(t)
	svc := newClientServiceForTest(db)
	admin := seedAdmin(t, db)
	profile := seedClient(t, db, "c@example.com", "Acme")

	bogus := uuid.New()
	_, err := svc.Update(testCtx(), admin, profile.ID, UpdateClientInput{PlanID: &bogus})
	_, ok := IsNotFoundError(err)
	assert.True(t, ok)
}

func TestSubscriptionStatus(t *testing.T) {
	today := models.NewDate(2026, 9, 1)
	planID := uuid.New()

	profile := &models.ClientProfile{}
	assert.Equal(t, models.SubscriptionNoPlan, profile.SubscriptionStatus(today))

	profile.PlanID = &planID
	assert.Equal(t, models.SubscriptionActive, profile.SubscriptionStatus(today))

	end := models.NewDate(2026, 8, 31)
	profile.SubscriptionEndDate = &end
	assert.Equal(t, models.SubscriptionExpired, profile.SubscriptionStatus(today))

	end = today
	profile.SubscriptionEndDate = &end
	assert.Equal(t, models.SubscriptionActive, profile.SubscriptionStatus(today))
}

func TestResetPasswordRequiresMinimumLength(t *testing.T) {
	db := newTestDB(t)
	svc := newClientServiceForTest(db)
	profile := seedClient(t, db, "c@example.com", "Acme")

	err := svc.ResetPassword(testCtx(), profile.ID, "short")
	_, ok := IsValidationError(err)
	assert.True(t, ok)

	require.NoError(t, svc.ResetPassword(testCtx(), profile.ID, "longenough"))
}
