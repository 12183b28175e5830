package catalog

import (
	"context"
	"testing"

	"cvportal/internal/apperr"
	"cvportal/internal/logger"
	"cvportal/internal/models"
	"cvportal/internal/rbac"
	"cvportal/internal/reference"
	"cvportal/internal/store"

	"github.com/stretchr/testify/suite"
)

func ptr[T any](v T) *T { return &v }

var (
	admin     = rbac.Actor{ID: 1, Username: "admin", Role: rbac.RoleAdmin}
	superUser = rbac.Actor{ID: 2, Username: "super", Role: rbac.RoleSuperUser}
	manager   = rbac.Actor{ID: 3, Username: "manager", Role: rbac.RoleManager}
)

type CatalogSuite struct {
	suite.Suite
	ctx context.Context
	p   *store.Provider
	svc *Service
}

func TestCatalogSuite(t *testing.T) {
	suite.Run(t, new(CatalogSuite))
}

func (s *CatalogSuite) SetupTest() {
	p, err := store.NewMemory(logger.Nop())
	s.Require().NoError(err)
	s.p = p
	s.ctx = context.Background()
	s.svc = NewService(p, nil, logger.Nop())
}

func (s *CatalogSuite) TearDownTest() {
	_ = s.p.Close()
}

func (s *CatalogSuite) TestSeed_OnlyFillsEmptyTables() {
	s.Require().NoError(s.svc.Seed(s.ctx))
	positions, err := s.svc.ListPositions(s.ctx, "")
	s.Require().NoError(err)
	want := 0
	for _, roles := range reference.Departments {
		want += len(roles)
	}
	s.Len(positions, want)

	s.Require().NoError(s.svc.DeletePosition(s.ctx, admin, positions[0].ID))
	s.Require().NoError(s.svc.Seed(s.ctx))
	again, err := s.svc.ListPositions(s.ctx, "")
	s.Require().NoError(err)
	s.Len(again, want-1)

	sap, err := s.svc.ListPositions(s.ctx, "SAP")
	s.Require().NoError(err)
	s.Len(sap, len(reference.Departments["SAP"]))

	quals, err := s.svc.ListQualifications(s.ctx, "Degree")
	s.Require().NoError(err)
	s.Len(quals, len(reference.QualificationTypes["Degree"]))
}

func (s *CatalogSuite) TestPositionLifecycle() {
	p, err := s.svc.CreatePosition(s.ctx, superUser, PositionInput{Department: ptr("SAP"), RoleTitle: ptr("SAP Trainer"), KLevel: ptr("K2")})
	s.Require().NoError(err)

	_, err = s.svc.CreatePosition(s.ctx, admin, PositionInput{Department: ptr("SAP"), RoleTitle: ptr("SAP Trainer")})
	s.ErrorIs(err, apperr.ErrConflict)

	got, err := s.svc.UpdatePosition(s.ctx, superUser, p.ID, PositionInput{KLevel: ptr("K3")})
	s.Require().NoError(err)
	s.Equal("K3", got.KLevel)
	s.Equal("SAP Trainer", got.RoleTitle)

	_, err = s.svc.UpdatePosition(s.ctx, superUser, p.ID, PositionInput{KLevel: ptr("K9")})
	var ve *apperr.ValidationError
	s.ErrorAs(err, &ve)

	s.ErrorIs(s.svc.DeletePosition(s.ctx, superUser, p.ID), apperr.ErrForbidden)
	s.NoError(s.svc.DeletePosition(s.ctx, admin, p.ID))
	s.ErrorIs(s.svc.DeletePosition(s.ctx, admin, p.ID), apperr.ErrNotFound)
}

func (s *CatalogSuite) TestPositionRequiresFieldsAndCapability() {
	_, err := s.svc.CreatePosition(s.ctx, manager, PositionInput{})
	s.ErrorIs(err, apperr.ErrForbidden)

	_, err = s.svc.CreatePosition(s.ctx, admin, PositionInput{})
	var ve *apperr.ValidationError
	s.Require().ErrorAs(err, &ve)
	s.Contains(ve.Fields, "department")
	s.Contains(ve.Fields, "roleTitle")

	_, err = s.svc.UpdatePosition(s.ctx, admin, 404, PositionInput{KLevel: ptr("K1")})
	s.ErrorIs(err, apperr.ErrNotFound)
}

func (s *CatalogSuite) TestBlankValuesAreRejectedAfterTrimming() {
	p, err := s.svc.CreatePosition(s.ctx, admin, PositionInput{Department: ptr("  SAP "), RoleTitle: ptr(" Basis Consultant ")})
	s.Require().NoError(err)
	s.Equal("SAP", p.Department)
	s.Equal("Basis Consultant", p.RoleTitle)

	_, err = s.svc.UpdatePosition(s.ctx, admin, p.ID, PositionInput{Department: ptr("   "), RoleTitle: ptr("\t")})
	var ve *apperr.ValidationError
	s.Require().ErrorAs(err, &ve)
	s.Contains(ve.Fields, "department")
	s.Contains(ve.Fields, "roleTitle")

	var stored models.Position
	s.Require().NoError(s.p.DB(s.ctx).First(&stored, p.ID).Error)
	s.Equal("SAP", stored.Department)
	s.Equal("Basis Consultant", stored.RoleTitle)

	q, err := s.svc.CreateQualification(s.ctx, admin, QualificationInput{QualificationType: ptr("Degree"), Name: ptr("BSc Physics")})
	s.Require().NoError(err)
	_, err = s.svc.UpdateQualification(s.ctx, admin, q.ID, QualificationInput{Name: ptr("  ")})
	s.Require().ErrorAs(err, &ve)
	s.Contains(ve.Fields, "name")
}

func (s *CatalogSuite) TestQualificationLifecycle() {
	q, err := s.svc.CreateQualification(s.ctx, superUser, QualificationInput{QualificationType: ptr("Degree"), Name: ptr("BA Economics")})
	s.Require().NoError(err)

	_, err = s.svc.CreateQualification(s.ctx, superUser, QualificationInput{QualificationType: ptr("Degree"), Name: ptr("BA Economics")})
	s.ErrorIs(err, apperr.ErrConflict)

	_, err = s.svc.CreateQualification(s.ctx, manager, QualificationInput{QualificationType: ptr("Degree"), Name: ptr("X")})
	s.ErrorIs(err, apperr.ErrForbidden)

	got, err := s.svc.UpdateQualification(s.ctx, superUser, q.ID, QualificationInput{Name: ptr("BCom Economics")})
	s.Require().NoError(err)
	s.Equal("BCom Economics", got.Name)

	s.ErrorIs(s.svc.DeleteQualification(s.ctx, superUser, q.ID), apperr.ErrForbidden)
	s.NoError(s.svc.DeleteQualification(s.ctx, admin, q.ID))
}

func (s *CatalogSuite) TestCatalogChangesAreNotAudited() {
	_, err := s.svc.CreatePosition(s.ctx, admin, PositionInput{Department: ptr("SAP"), RoleTitle: ptr("X")})
	s.Require().NoError(err)
	var n int64
	s.Require().NoError(s.p.DB(s.ctx).Model(&models.VersionHistoryEntry{}).Count(&n).Error)
	s.Zero(n)
}
