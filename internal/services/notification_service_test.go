package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/models"
)

func seedNotification(t *testing.T, db *gorm.DB, profile *models.ClientProfile, kind models.NotificationType, audience models.TargetAudience) *models.Notification {
	t.Helper()
	notification := &models.Notification{
		ClientID:         profile.ID,
		NotificationType: kind,
		TargetAudience:   audience,
		Title:            "Test",
	}
	require.NoError(t, db.Create(notification).Error)
	return notification
}

func TestClientCannotSeeOtherClientsNotifications(t *testing.T) {
	db := newTestDB(t)
	svc := newNotificationServiceForTest(db)
	alpha := seedClient(t, db, "alpha@example.com", "Alpha")
	beta := seedClient(t, db, "beta@example.com", "Beta")
	notification := seedNotification(t, db, alpha, models.NotificationBusinessChange, models.AudienceClient)

	_, err := svc.MarkRead(testCtx(), ClientScope(beta.ID), notification.ID)
	_, ok := IsNotFoundError(err)
	assert.True(t, ok)

	_, err = svc.MarkRead(testCtx(), ClientScope(alpha.ID), notification.ID)
	assert.NoError(t, err)
}

func TestAdminScopeExcludesClientAudience(t *testing.T) {
	db := newTestDB(t)
	svc := newNotificationServiceForTest(db)
	profile := seedClient(t, db, "c@example.com", "Acme")
	seedNotification(t, db, profile, models.NotificationBusinessChange, models.AudienceClient)
	seedNotification(t, db, profile, models.NotificationPayment, models.AudienceAdmin)

	adminRows, total, err := svc.List(testCtx(), AdminScope(nil))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, adminRows, 1)
	assert.Equal(t, models.NotificationPayment, adminRows[0].NotificationType)

	clientRows, total, err := svc.List(testCtx(), ClientScope(profile.ID))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, clientRows, 1)
	assert.Equal(t, models.NotificationBusinessChange, clientRows[0].NotificationType)
}

func TestAcknowledgeOnlyAppliesToChangeNotifications(t *testing.T) {
	db := newTestDB(t)
	svc := newNotificationServiceForTest(db)
	profile := seedClient(t, db, "c@example.com", "Acme")
	change := seedNotification(t, db, profile, models.NotificationProfileChange, models.AudienceClient)
	offer := seedNotification(t, db, profile, models.NotificationOffer, models.AudienceClient)

	acked, err := svc.Acknowledge(testCtx(), ClientScope(profile.ID), change.ID)
	require.NoError(t, err)
	assert.True(t, acked.IsAcknowledged)
	assert.True(t, acked.IsRead)
	assert.NotNil(t, acked.AcknowledgedAt)

	_, err = svc.Acknowledge(testCtx(), ClientScope(profile.ID), offer.ID)
	_, ok := IsStateError(err)
	assert.True(t, ok)
}

func TestRespondOfferCreatesAdminFollowUp(t *testing.T) {
	db := newTestDB(t)
	svc := newNotificationServiceForTest(db)
	profile := seedClient(t, db, "c@example.com", "Acme")
	offer := &models.Notification{
		ClientID:         profile.ID,
		NotificationType: models.NotificationOffer,
		TargetAudience:   models.AudienceClient,
		Title:            "Spring Upgrade",
		OfferDetails:     models.JSONB{"discount": "20%"},
	}
	require.NoError(t, db.Create(offer).Error)

	responded, err := svc.RespondOffer(testCtx(), ClientScope(profile.ID), offer.ID, true)
	require.NoError(t, err)
	require.NotNil(t, responded.OfferAccepted)
	assert.True(t, *responded.OfferAccepted)
	assert.NotNil(t, responded.OfferRespondedAt)
	assert.True(t, responded.IsRead)

	var followUp models.Notification
	require.NoError(t, db.Where("target_audience = ?", models.AudienceAdmin).First(&followUp).Error)
	assert.Equal(t, "Offer Accepted", followUp.Title)
	assert.Contains(t, followUp.Message, "Acme has accepted the offer: Spring Upgrade")
	assert.Equal(t, "20%", followUp.OfferDetails["discount"])
}

func TestRespondOfferRejectsNonOffers(t *testing.T) {
	db := newTestDB(t)
	svc := newNotificationServiceForTest(db)
	profile := seedClient(t, db, "c@example.com", "Acme")
	change := seedNotification(t, db, profile, models.NotificationBusinessChange, models.AudienceClient)

	_, err := svc.RespondOffer(testCtx(), ClientScope(profile.ID), change.ID, false)
	_, ok := IsStateError(err)
	assert.True(t, ok)
}

func TestMarkAllReadAndUnreadCount(t *testing.T) {
	db := newTestDB(t)
	svc := newNotificationServiceForTest(db)
	profile := seedClient(t, db, "c@example.com", "Acme")
	seedNotification(t, db, profile, models.NotificationPayment, models.AudienceClient)
	seedNotification(t, db, profile, models.NotificationTask, models.AudienceClient)
	seedNotification(t, db, profile, models.NotificationPayment, models.AudienceAdmin)

	count, err := svc.UnreadCount(testCtx(), ClientScope(profile.ID))
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	updated, err := svc.MarkAllRead(testCtx(), ClientScope(profile.ID))
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated)

	count, err = svc.UnreadCount(testCtx(), ClientScope(profile.ID))
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	// The admin-facing row is untouched.
	count, err = svc.UnreadCount(testCtx(), AdminScope(nil))
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestSendOfferDefaultsExpiry(t *testing.T) {
	db := newTestDB(t)
	svc := newNotificationServiceForTest(db)
	admin := seedAdmin(t, db)
	profile := seedClient(t, db, "c@example.com", "Acme")

	notification, err := svc.SendOffer(testCtx(), admin, SendOfferInput{
		ClientID: profile.ID,
		Title:    "Upgrade",
		Message:  "Move to premium",
	})
	require.NoError(t, err)
	assert.Equal(t, models.NotificationOffer, notification.NotificationType)
	assert.Equal(t, models.AudienceClient, notification.TargetAudience)
	require.NotNil(t, notification.OfferExpiresAt)
	expected := time.Now().AddDate(0, 0, defaultOfferDays)
	assert.WithinDuration(t, expected, *notification.OfferExpiresAt, time.Minute)

	_, err = svc.SendOffer(testCtx(), admin, SendOfferInput{ClientID: profile.ID})
	_, ok := IsValidationError(err)
	assert.True(t, ok)
}
