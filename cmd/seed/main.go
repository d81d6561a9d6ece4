package main

import (
	"context"
	"log"
	"time"

	common_models "trackdoc/internal/common/models"
	"trackdoc/internal/config"
	"trackdoc/internal/database"
	"trackdoc/internal/features/department"
	"trackdoc/internal/features/doctype"
	"trackdoc/internal/features/organization"
	"trackdoc/internal/features/role"
	"trackdoc/internal/features/user"
	"trackdoc/internal/features/workflow"
	"trackdoc/internal/logger"
	"trackdoc/pkg/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var seedRoles = []role.Role{
	{
		Name:        "admin",
		Description: "Full access to everything",
		Permissions: map[string]map[string]bool{"*": {"*": true}},
		IsSystem:    true,
	},
	{
		Name:        "author",
		Description: "Creates and submits documents",
		Permissions: map[string]map[string]bool{
			"documents": {"create": true, "read": true, "update": true, "delete": true},
			"reports":   {"read": true},
		},
	},
	{
		Name:        "approver",
		Description: "Reviews documents routed for approval",
		Permissions: map[string]map[string]bool{
			"documents": {"read": true, "approve": true},
			"reports":   {"read": true},
		},
	},
}

var seedDepartments = []department.Department{
	{Name: "Information Technology", ShortName: "IT", Status: "active"},
	{Name: "Human Resources", ShortName: "HR", Status: "active"},
	{Name: "Finance", ShortName: "FIN", Status: "active"},
}

var seedDocumentTypes = []doctype.DocumentType{
	{Name: "Policy", Prefix: "POL", ApprovalRequired: true, RetentionPeriodMonths: 60, Status: "active"},
	{Name: "Procedure", Prefix: "PRO", ApprovalRequired: true, RetentionPeriodMonths: 36, Status: "active"},
	{Name: "Instruction", Prefix: "INS", ApprovalRequired: false, RetentionPeriodMonths: 24, Status: "active"},
}

// Seed provisions the default organization with an admin account, base
// roles, departments, document types, and a two step approval workflow.
func Seed(
	lc fx.Lifecycle,
	orgRepo organization.OrganizationRepository,
	roleRepo role.RoleRepository,
	userRepo user.UserRepository,
	deptRepo department.DepartmentRepository,
	typeRepo doctype.DocumentTypeRepository,
	workflowRepo workflow.WorkflowRepository,
	logger *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				logger.Info("Starting database seeding")

				orgName := "Default Organization"
				var orgID primitive.ObjectID

				existingOrg, err := orgRepo.FindByName(ctx, orgName)
				if err == nil {
					logger.Info("Organization exists, skipping", zap.String("organization", orgName))
					orgID = existingOrg.ID
				} else {
					newOrg := common_models.Organization{
						ID:        primitive.NewObjectID(),
						Name:      orgName,
						Slug:      utils.Slugify(orgName),
						OwnerID:   primitive.NilObjectID,
						CreatedAt: time.Now(),
						UpdatedAt: time.Now(),
					}
					if err := orgRepo.Create(ctx, &newOrg); err != nil {
						logger.Fatal("Failed to create organization", zap.Error(err))
					}
					logger.Info("Organization created", zap.String("organization", orgName))
					orgID = newOrg.ID
				}

				ctx = context.WithValue(ctx, common_models.TenantIDKey, orgID.Hex())

				createdRoles := make(map[string]primitive.ObjectID)
				for _, r := range seedRoles {
					r.TenantID = orgID
					existing, err := roleRepo.FindByName(ctx, r.Name)
					if err == nil {
						logger.Info("Role exists, updating permissions", zap.String("role", r.Name))
						existing.Permissions = r.Permissions
						existing.UpdatedAt = time.Now()
						if err := roleRepo.Update(ctx, existing.ID.Hex(), existing); err != nil {
							logger.Error("Failed to update role", zap.Error(err))
						}
						createdRoles[r.Name] = existing.ID
						continue
					}

					r.ID = primitive.NewObjectID()
					r.CreatedAt = time.Now()
					r.UpdatedAt = time.Now()
					if err := roleRepo.Create(ctx, &r); err != nil {
						logger.Error("Failed to create role", zap.String("role", r.Name), zap.Error(err))
						continue
					}
					logger.Info("Role created", zap.String("role", r.Name))
					createdRoles[r.Name] = r.ID
				}

				if _, err := userRepo.FindByUsername(ctx, "admin"); err != nil {
					hashed, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
					if err != nil {
						logger.Fatal("Failed to hash admin password", zap.Error(err))
					}
					adminUser := common_models.User{
						ID:        primitive.NewObjectID(),
						TenantID:  orgID,
						Username:  "admin",
						Password:  string(hashed),
						Email:     "admin@example.com",
						Status:    "active",
						Roles:     []primitive.ObjectID{createdRoles["admin"]},
						CreatedAt: time.Now(),
						UpdatedAt: time.Now(),
					}
					if err := userRepo.Create(ctx, &adminUser); err != nil {
						logger.Error("Failed to create admin user", zap.Error(err))
					} else {
						logger.Info("Admin user created", zap.String("username", "admin"))
					}
				} else {
					logger.Info("Admin user exists, skipping")
				}

				for _, d := range seedDepartments {
					if _, err := deptRepo.FindByShortName(ctx, d.ShortName); err == nil {
						logger.Info("Department exists, skipping", zap.String("department", d.ShortName))
						continue
					}
					d.TenantID = orgID
					if err := deptRepo.Create(ctx, &d); err != nil {
						logger.Error("Failed to create department", zap.String("department", d.ShortName), zap.Error(err))
						continue
					}
					logger.Info("Department created", zap.String("department", d.ShortName))
				}

				var typeIDs []primitive.ObjectID
				for _, dt := range seedDocumentTypes {
					if existing, err := typeRepo.FindByPrefix(ctx, dt.Prefix); err == nil {
						logger.Info("Document type exists, skipping", zap.String("prefix", dt.Prefix))
						typeIDs = append(typeIDs, existing.ID)
						continue
					}
					dt.TenantID = orgID
					if err := typeRepo.Create(ctx, &dt); err != nil {
						logger.Error("Failed to create document type", zap.String("prefix", dt.Prefix), zap.Error(err))
						continue
					}
					logger.Info("Document type created", zap.String("prefix", dt.Prefix))
					typeIDs = append(typeIDs, dt.ID)
				}

				workflows, err := workflowRepo.List(ctx)
				if err != nil {
					logger.Error("Failed to list workflows", zap.Error(err))
				} else if len(workflows) == 0 && len(typeIDs) > 0 {
					wf := workflow.WorkflowDefinition{
						TenantID:        orgID,
						Name:            "Standard approval",
						Description:     "Department review followed by management sign-off",
						DocumentTypeIDs: typeIDs,
						Active:          true,
						Steps: workflowStepSeeds{
							{Name: "Department review", Order: 1, Role: "approver", Required: true},
							{Name: "Management sign-off", Order: 2, Role: "admin", Required: true},
						}.build(createdRoles),
					}
					if err := workflowRepo.Create(ctx, &wf); err != nil {
						logger.Error("Failed to create default workflow", zap.Error(err))
					} else {
						logger.Info("Default workflow created", zap.String("workflow", wf.Name))
					}
				}

				logger.Info("Seeding complete")
			}()
			return nil
		},
	})
}

type workflowStepSeed struct {
	Name     string
	Order    int
	Role     string
	Required bool
}

type workflowStepSeeds []workflowStepSeed

func (s workflowStepSeeds) build(roles map[string]primitive.ObjectID) []workflow.WorkflowStep {
	steps := make([]workflow.WorkflowStep, 0, len(s))
	for _, seed := range s {
		step := workflow.WorkflowStep{
			ID:       uuid.NewString(),
			Name:     seed.Name,
			Order:    seed.Order,
			Required: seed.Required,
		}
		if roleID, ok := roles[seed.Role]; ok {
			step.ApproverRoles = []primitive.ObjectID{roleID}
		}
		steps = append(steps, step)
	}
	return steps
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			database.NewDatabase,
			organization.NewOrganizationRepository,
			role.NewRoleRepository,
			user.NewUserRepository,
			department.NewDepartmentRepository,
			doctype.NewDocumentTypeRepository,
			workflow.NewWorkflowRepository,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal(err)
	}

	<-app.Done()
}
