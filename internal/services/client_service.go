package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/models"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/repository"
)

// trackedField describes one profile attribute whose edits generate change
// notifications. Personal fields live on the User row, business fields on the
// profile; the check order below is the order changed_fields is reported in.
type trackedField struct {
	name     string
	label    string
	business bool
	get      func(p *models.ClientProfile) string
	set      func(p *models.ClientProfile, v string)
}

var trackedFields = []trackedField{
	{"company_name", "Company Name", true,
		func(p *models.ClientProfile) string { return p.CompanyName },
		func(p *models.ClientProfile, v string) { p.CompanyName = v }},
	{"website_url", "Website URL", true,
		func(p *models.ClientProfile) string { return p.WebsiteURL },
		func(p *models.ClientProfile, v string) { p.WebsiteURL = v }},
	{"industry", "Industry", true,
		func(p *models.ClientProfile) string { return p.Industry },
		func(p *models.ClientProfile, v string) { p.Industry = v }},
	{"address", "Address", true,
		func(p *models.ClientProfile) string { return p.Address },
		func(p *models.ClientProfile, v string) { p.Address = v }},
	{"city", "City", true,
		func(p *models.ClientProfile) string { return p.City },
		func(p *models.ClientProfile, v string) { p.City = v }},
	{"state", "State", true,
		func(p *models.ClientProfile) string { return p.State },
		func(p *models.ClientProfile, v string) { p.State = v }},
	{"country", "Country", true,
		func(p *models.ClientProfile) string { return p.Country },
		func(p *models.ClientProfile, v string) { p.Country = v }},
	{"postal_code", "Postal Code", true,
		func(p *models.ClientProfile) string { return p.PostalCode },
		func(p *models.ClientProfile, v string) { p.PostalCode = v }},
	{"first_name", "First Name", false,
		func(p *models.ClientProfile) string { return p.User.FirstName },
		func(p *models.ClientProfile, v string) { p.User.FirstName = v }},
	{"last_name", "Last Name", false,
		func(p *models.ClientProfile) string { return p.User.LastName },
		func(p *models.ClientProfile, v string) { p.User.LastName = v }},
	{"phone", "Phone", false,
		func(p *models.ClientProfile) string { return p.User.Phone },
		func(p *models.ClientProfile, v string) { p.User.Phone = v }},
}

// CreateClientInput carries the combined user + profile payload for client
// provisioning.
type CreateClientInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`

	CompanyName string `json:"company_name"`
	WebsiteURL  string `json:"website_url"`
	Industry    string `json:"industry"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	Country     string `json:"country"`
	PostalCode  string `json:"postal_code"`
	Notes       string `json:"notes"`

	PlanID                *uuid.UUID   `json:"plan_id"`
	SubscriptionStartDate *models.Date `json:"subscription_start_date"`
	SubscriptionEndDate   *models.Date `json:"subscription_end_date"`
}

// UpdateClientInput is the admin-side patch payload. Nil pointers leave the
// current value untouched; RemovePlan clears the plan assignment.
type UpdateClientInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`

	CompanyName *string `json:"company_name"`
	WebsiteURL  *string `json:"website_url"`
	Industry    *string `json:"industry"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	State       *string `json:"state"`
	Country     *string `json:"country"`
	PostalCode  *string `json:"postal_code"`
	Notes       *string `json:"notes"`

	PlanID                *uuid.UUID   `json:"plan_id"`
	RemovePlan            bool         `json:"remove_plan"`
	SubscriptionStartDate *models.Date `json:"subscription_start_date"`
	SubscriptionEndDate   *models.Date `json:"subscription_end_date"`
	IsActive              *bool        `json:"is_active"`
}

// SelfUpdateInput is the client-side patch payload. Notes, plan and
// subscription dates are deliberately absent.
type SelfUpdateInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`

	CompanyName *string `json:"company_name"`
	WebsiteURL  *string `json:"website_url"`
	Industry    *string `json:"industry"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	State       *string `json:"state"`
	Country     *string `json:"country"`
	PostalCode  *string `json:"postal_code"`
}

type ClientService struct {
	db        *gorm.DB
	clients   *repository.ClientRepository
	users     *repository.UserRepository
	plans     *repository.PlanRepository
	keywords  *repository.KeywordRepository
	payments  *repository.PaymentRepository
	passwords *PasswordService
	logger    *logrus.Logger
}

func NewClientService(db *gorm.DB, clients *repository.ClientRepository, users *repository.UserRepository, plans *repository.PlanRepository, keywords *repository.KeywordRepository, payments *repository.PaymentRepository, passwords *PasswordService, logger *logrus.Logger) *ClientService {
	return &ClientService{
		db:        db,
		clients:   clients,
		users:     users,
		plans:     plans,
		keywords:  keywords,
		payments:  payments,
		passwords: passwords,
		logger:    logger,
	}
}

// Create provisions the User(role=client) and its ClientProfile atomically.
func (s *ClientService) Create(ctx context.Context, input CreateClientInput) (*models.ClientProfile, error) {
	fields := map[string]string{}
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Email == "" {
		fields["email"] = "email is required"
	}
	if input.Password == "" {
		fields["password"] = "password is required"
	}
	if input.FirstName == "" {
		fields["first_name"] = "first name is required"
	}
	if input.LastName == "" {
		fields["last_name"] = "last name is required"
	}
	if input.CompanyName == "" {
		fields["company_name"] = "company name is required"
	}
	if len(fields) > 0 {
		return nil, NewValidationErrors(fields)
	}

	exists, err := s.users.EmailExists(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, NewConflictError("user", "a user with this email already exists")
	}

	hash, err := s.passwords.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	var planID *uuid.UUID
	if input.PlanID != nil {
		if _, err := s.plans.GetByID(ctx, *input.PlanID); err == nil {
			planID = input.PlanID
		}
	}

	profile := &models.ClientProfile{
		CompanyName:           input.CompanyName,
		WebsiteURL:            input.WebsiteURL,
		Industry:              input.Industry,
		Address:               input.Address,
		City:                  input.City,
		State:                 input.State,
		Country:               input.Country,
		PostalCode:            input.PostalCode,
		Notes:                 input.Notes,
		PlanID:                planID,
		SubscriptionStartDate: input.SubscriptionStartDate,
		SubscriptionEndDate:   input.SubscriptionEndDate,
		IsActive:              true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user := &models.User{
			Email:        input.Email,
			PasswordHash: hash,
			FirstName:    input.FirstName,
			LastName:     input.LastName,
			Phone:        input.Phone,
			Role:         models.RoleClient,
			IsActive:     true,
		}
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		profile.UserID = user.ID
		profile.User = *user
		if err := tx.Create(profile).Error; err != nil {
			return fmt.Errorf("failed to create client profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"client_id": profile.ID,
		"company":   profile.CompanyName,
	}).Info("Client created")
	return profile, nil
}

func (s *ClientService) Get(ctx context.Context, id uuid.UUID) (*models.ClientProfile, error) {
	profile, err := s.clients.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("client")
		}
		return nil, fmt.Errorf("failed to load client: %w", err)
	}
	return profile, nil
}

func (s *ClientService) GetByUser(ctx context.Context, userID uuid.UUID) (*models.ClientProfile, error) {
	profile, err := s.clients.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("client profile")
		}
		return nil, fmt.Errorf("failed to load client profile: %w", err)
	}
	return profile, nil
}

func (s *ClientService) List(ctx context.Context, filters repository.ClientFilters) ([]models.ClientProfile, int64, error) {
	return s.clients.List(ctx, filters)
}

func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) error {
	profile, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.ClientProfile{}, "id = ?", profile.ID).Error; err != nil {
			return fmt.Errorf("failed to delete client profile: %w", err)
		}
		if err := tx.Delete(&models.User{}, "id = ?", profile.UserID).Error; err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.WithField("client_id", id).Info("Client deleted")
	return nil
}

// ResetPassword lets an admin overwrite a client's password.
func (s *ClientService) ResetPassword(ctx context.Context, clientID uuid.UUID, newPassword string) error {
	if len(newPassword) < 8 {
		return NewValidationError("new_password", "password must be at least 8 characters")
	}
	profile, err := s.Get(ctx, clientID)
	if err != nil {
		return err
	}
	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return err
	}
	profile.User.PasswordHash = hash
	if err := s.users.Update(ctx, &profile.User); err != nil {
		return err
	}
	s.logger.WithField("client_id", clientID).Info("Client password reset")
	return nil
}

// Update applies an admin edit. Tracked-field changes notify the client;
// notes, plan, subscription dates and is_active change silently.
func (s *ClientService) Update(ctx context.Context, actor *models.User, clientID uuid.UUID, input UpdateClientInput) (*models.ClientProfile, error) {
	profile, err := s.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}

	apply := func(p *models.ClientProfile) error {
		applyTracked(p, trackedPatch{
			FirstName: input.FirstName, LastName: input.LastName, Phone: input.Phone,
			CompanyName: input.CompanyName, WebsiteURL: input.WebsiteURL, Industry: input.Industry,
			Address: input.Address, City: input.City, State: input.State,
			Country: input.Country, PostalCode: input.PostalCode,
		})
		if input.Notes != nil {
			p.Notes = *input.Notes
		}
		if input.RemovePlan {
			p.PlanID = nil
			p.Plan = nil
		} else if input.PlanID != nil {
			if _, err := s.plans.GetByID(ctx, *input.PlanID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return NewNotFoundError("plan")
				}
				return fmt.Errorf("failed to load plan: %w", err)
			}
			p.PlanID = input.PlanID
			p.Plan = nil
		}
		if input.SubscriptionStartDate != nil {
			p.SubscriptionStartDate = input.SubscriptionStartDate
		}
		if input.SubscriptionEndDate != nil {
			p.SubscriptionEndDate = input.SubscriptionEndDate
		}
		if input.IsActive != nil {
			p.IsActive = *input.IsActive
		}
		return nil
	}

	if err := s.saveWithChangeTracking(ctx, actor, profile, apply); err != nil {
		return nil, err
	}
	return s.Get(ctx, clientID)
}

// SelfUpdate applies a client's own edit and notifies the admin team about
// tracked changes.
func (s *ClientService) SelfUpdate(ctx context.Context, actor *models.User, input SelfUpdateInput) (*models.ClientProfile, error) {
	profile, err := s.GetByUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	apply := func(p *models.ClientProfile) error {
		applyTracked(p, trackedPatch{
			FirstName: input.FirstName, LastName: input.LastName, Phone: input.Phone,
			CompanyName: input.CompanyName, WebsiteURL: input.WebsiteURL, Industry: input.Industry,
			Address: input.Address, City: input.City, State: input.State,
			Country: input.Country, PostalCode: input.PostalCode,
		})
		return nil
	}

	if err := s.saveWithChangeTracking(ctx, actor, profile, apply); err != nil {
		return nil, err
	}
	return s.GetByUser(ctx, actor.ID)
}

type trackedPatch struct {
	FirstName, LastName, Phone              *string
	CompanyName, WebsiteURL, Industry       *string
	Address, City, State, Country, PostalCode *string
}

func applyTracked(p *models.ClientProfile, patch trackedPatch) {
	assign := func(dst func(*models.ClientProfile, string), v *string) {
		if v != nil {
			dst(p, *v)
		}
	}
	byName := map[string]*string{
		"company_name": patch.CompanyName,
		"website_url":  patch.WebsiteURL,
		"industry":     patch.Industry,
		"address":      patch.Address,
		"city":         patch.City,
		"state":        patch.State,
		"country":      patch.Country,
		"postal_code":  patch.PostalCode,
		"first_name":   patch.FirstName,
		"last_name":    patch.LastName,
		"phone":        patch.Phone,
	}
	for _, field := range trackedFields {
		assign(field.set, byName[field.name])
	}
}

// saveWithChangeTracking snapshots tracked fields, applies the edit, diffs,
// and persists profile + user + notification in one transaction. No diff, no
// notification.
func (s *ClientService) saveWithChangeTracking(ctx context.Context, actor *models.User, profile *models.ClientProfile, apply func(*models.ClientProfile) error) error {
	before := make(map[string]string, len(trackedFields))
	for _, field := range trackedFields {
		before[field.name] = field.get(profile)
	}

	if err := apply(profile); err != nil {
		return err
	}

	var changed []string
	oldValues := models.JSONB{}
	newValues := models.JSONB{}
	anyBusiness := false
	for _, field := range trackedFields {
		after := field.get(profile)
		if before[field.name] == after {
			continue
		}
		changed = append(changed, field.name)
		oldValues[field.name] = before[field.name]
		newValues[field.name] = after
		if field.business {
			anyBusiness = true
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&profile.User).Error; err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		if err := tx.Omit("User", "Plan").Save(profile).Error; err != nil {
			return fmt.Errorf("failed to update client profile: %w", err)
		}
		if len(changed) == 0 {
			return nil
		}
		notification := buildChangeNotification(actor, profile, changed, anyBusiness, oldValues, newValues)
		if err := tx.Create(notification).Error; err != nil {
			return fmt.Errorf("failed to create change notification: %w", err)
		}
		return nil
	})
}

func buildChangeNotification(actor *models.User, profile *models.ClientProfile, changed []string, anyBusiness bool, oldValues, newValues models.JSONB) *models.Notification {
	notificationType := models.NotificationProfileChange
	if anyBusiness {
		notificationType = models.NotificationBusinessChange
	}

	labels := make([]string, 0, len(changed))
	for _, name := range changed {
		for _, field := range trackedFields {
			if field.name == name {
				labels = append(labels, field.label)
				break
			}
		}
	}
	summary := strings.Join(labels, ", ")
	if len(labels) > 3 {
		summary = fmt.Sprintf("%s and %d more", strings.Join(labels[:3], ", "), len(labels)-3)
	}

	audience := models.AudienceAdmin
	title := "Profile Updated by Client"
	message := fmt.Sprintf("%s has updated their profile. Changed: %s.", profile.CompanyName, summary)
	if actor.IsAdmin() {
		audience = models.AudienceClient
		title = "Profile Updated by Admin"
		message = fmt.Sprintf("An administrator has updated your profile. Changed: %s. Please review and confirm the changes.", summary)
	}

	actorID := actor.ID
	return &models.Notification{
		ClientID:         profile.ID,
		NotificationType: notificationType,
		TargetAudience:   audience,
		Title:            title,
		Message:          message,
		ChangedFields:    changed,
		OldValues:        oldValues,
		NewValues:        newValues,
		ChangedByID:      &actorID,
	}
}
