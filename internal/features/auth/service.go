package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trackdoc/internal/common/models"
	"trackdoc/internal/features/audit"
	"trackdoc/internal/features/organization"
	"trackdoc/internal/features/role"
	"trackdoc/internal/features/user"
	"trackdoc/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, username, password, email, orgName string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
}

type AuthServiceImpl struct {
	UserRepo         user.UserRepository
	RoleRepo         role.RoleRepository
	OrganizationRepo organization.OrganizationRepository
	AuditService     audit.AuditService
}

func NewAuthService(userRepo user.UserRepository, roleRepo role.RoleRepository, orgRepo organization.OrganizationRepository, auditService audit.AuditService) AuthService {
	return &AuthServiceImpl{
		UserRepo:         userRepo,
		RoleRepo:         roleRepo,
		OrganizationRepo: orgRepo,
		AuditService:     auditService,
	}
}

// Register creates an organization and its first (admin) user
func (s *AuthServiceImpl) Register(ctx context.Context, username, password, email, orgName string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, errors.New("username and password are required")
	}

	if orgName == "" {
		orgName = fmt.Sprintf("%s's Organization", username)
	}

	newUserID := primitive.NewObjectID()
	newOrg := models.Organization{
		ID:        primitive.NewObjectID(),
		Name:      orgName,
		Slug:      utils.Slugify(orgName) + "-" + primitive.NewObjectID().Hex()[:4],
		OwnerID:   newUserID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.OrganizationRepo.Create(ctx, &newOrg); err != nil {
		return nil, err
	}

	// Set organization context for subsequent calls (roles, user)
	ctx = context.WithValue(ctx, models.TenantIDKey, newOrg.ID.Hex())

	// The first registered user administers the organization
	adminRole, err := s.RoleRepo.FindByName(ctx, "admin")
	var roleIDs []primitive.ObjectID

	switch {
	case err == nil:
		roleIDs = append(roleIDs, adminRole.ID)
	case errors.Is(err, mongo.ErrNoDocuments):
		newRole := role.Role{
			ID:          primitive.NewObjectID(),
			Name:        "admin",
			Description: "Organization administrator",
			Permissions: map[string]map[string]bool{"*": {"*": true}},
			IsSystem:    true,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		if err := s.RoleRepo.Create(ctx, &newRole); err == nil {
			roleIDs = append(roleIDs, newRole.ID)
		}
	default:
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	newUser := models.User{
		ID:        newUserID,
		TenantID:  newOrg.ID,
		Username:  username,
		Password:  string(hashed),
		Email:     email,
		Status:    "active",
		Roles:     roleIDs,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.UserRepo.Create(ctx, &newUser); err != nil {
		return nil, err
	}

	changes := map[string]models.Change{
		"username":  {New: username},
		"email":     {New: email},
		"tenant_id": {New: newOrg.ID.Hex()},
	}
	_ = s.AuditService.LogChange(ctx, models.AuditActionCreate, "user", newUser.ID.Hex(), changes)

	return &newUser, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (string, error) {
	// Global lookup because there is no org context yet
	usr, err := s.UserRepo.FindByUsernameGlobal(ctx, username)
	if err != nil {
		return "", errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usr.Password), []byte(password)); err != nil {
		return "", errors.New("invalid credentials")
	}

	if usr.Status == "suspended" {
		return "", errors.New("account suspended")
	}
	if usr.Status == "inactive" {
		return "", errors.New("account inactive")
	}

	ctx = context.WithValue(ctx, models.TenantIDKey, usr.TenantID.Hex())

	roleIDs := make([]string, 0, len(usr.Roles))
	for _, roleID := range usr.Roles {
		roleIDs = append(roleIDs, roleID.Hex())
	}

	token, err := utils.GenerateToken(usr.ID, usr.TenantID, roleIDs)
	if err != nil {
		return "", err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionLogin, "user", usr.ID.Hex(), nil)

	return token, nil
}
